package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/greelink/internal/logging"
	"github.com/muurk/greelink/internal/session"
	"github.com/muurk/greelink/internal/transport"
	"github.com/muurk/greelink/internal/ui"
)

// dashboardCmd runs the interactive view
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive live view of the appliance",
	Long: `Bind to the appliance and show its state as it changes. Keys toggle power,
step the set point, and cycle mode and fan speed; press ? for the full list.

Console logging would corrupt the screen, so logs only go to the configured log
file while the dashboard runs.`,
	Example: `  greectl dashboard --host 192.168.1.40`,
	RunE:    runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logging.InitializeFileOnly(cfg.Logging.Level, cfg.LogFile()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	var p *tea.Program
	sc := cfg.SessionConfig()
	sc.OnConnected = func(info session.DeviceInfo) { p.Send(ui.ConnectedMsg(info)) }
	sc.OnStatus = func(props session.Properties) { p.Send(ui.StatusMsg(props)) }
	sc.OnUpdate = func(props session.Properties) { p.Send(ui.UpdateMsg(props)) }

	udp, err := transport.NewUDP(transport.UDPConfig{LoggerFactory: logging.PionFactory()})
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}
	s := session.New(sc, udp)
	p = tea.NewProgram(ui.NewDashboardModel(cfg.Device.Host, s), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		defer udp.Close()
		err := s.Run(ctx)
		p.Send(ui.SessionEndedMsg{Err: err})
	}()

	final, err := p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	if err != nil && !interrupted {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	if m, ok := final.(ui.DashboardModel); ok && m.Err != nil {
		return fmt.Errorf("cannot reach appliance: %w", m.Err)
	}
	return nil
}
