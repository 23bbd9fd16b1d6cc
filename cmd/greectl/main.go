// Greectl controls a Gree-protocol air conditioner on the local network.
//
// It discovers the unit, binds to it and then either prints its status, follows
// status reports, or sends a command. Settings come from the greelink config file
// and can be overridden with flags.
//
// Usage:
//
//	greectl [command] [flags]
//
// See 'greectl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/greelink/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "greectl",
	Short: "Gree air conditioner control utility",
	Long: `A command line client for Gree-protocol air conditioners.

greectl scans for the unit at --host (a unicast or broadcast address), binds to it
and talks to it over the encrypted UDP protocol on port 7000. Both the original
AES-ECB and the newer AES-GCM firmware are supported; the version is negotiated
automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("greectl %s\n", version.Full())
	},
}
