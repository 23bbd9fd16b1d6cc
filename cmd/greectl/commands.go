package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/greelink/internal/catalog"
	"github.com/muurk/greelink/internal/config"
	"github.com/muurk/greelink/internal/feed"
	"github.com/muurk/greelink/internal/logging"
	"github.com/muurk/greelink/internal/metrics"
	"github.com/muurk/greelink/internal/session"
	"github.com/muurk/greelink/internal/transport"
	"github.com/muurk/greelink/internal/ui"
)

// Global flags
var (
	configPath string
	host       string
	port       int
	localPort  int
	logLevel   string
)

// Command flags
var (
	timeout       time.Duration
	outputFormat  string
	metricsListen string
	feedListen    string
	advertise     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Appliance or broadcast address")
	rootCmd.PersistentFlags().IntVar(&port, "port", 7000, "Appliance UDP port")
	rootCmd.PersistentFlags().IntVar(&localPort, "local-port", 0, "Local UDP port (0 = ephemeral)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Device.Host = host
	}
	if flags.Changed("port") {
		cfg.Device.Port = port
	}
	if flags.Changed("local-port") {
		cfg.Device.LocalPort = localPort
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Lookup("metrics-listen") != nil && flags.Changed("metrics-listen") {
		cfg.Metrics.Listen = metricsListen
	}
	if flags.Lookup("feed-listen") != nil && flags.Changed("feed-listen") {
		cfg.Feed.Listen = feedListen
	}
	if flags.Lookup("advertise") != nil && flags.Changed("advertise") {
		cfg.Feed.Advertise = advertise
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.InitializeWithFile(cfg.Logging.Level, cfg.LogFile()); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

// startSession binds a UDP transport and runs a session until ctx ends.
// The returned channel yields Run's result.
func startSession(ctx context.Context, sc session.Config, opts ...session.Option) (*session.Session, <-chan error, error) {
	udp, err := transport.NewUDP(transport.UDPConfig{LoggerFactory: logging.PionFactory()})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transport: %w", err)
	}

	s := session.New(sc, udp, opts...)
	done := make(chan error, 1)
	go func() {
		defer udp.Close()
		done <- s.Run(ctx)
	}()
	return s, done, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// statusCmd prints one status report
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current state of the appliance",
	Long: `Bind to the appliance, wait for the first status report and print it.`,
	Example: `  # Query a unit by address
  greectl status --host 192.168.1.40

  # Discover via broadcast and print JSON
  greectl status --host 192.168.1.255 --format json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "How long to wait for the appliance")
	statusCmd.Flags().StringVar(&outputFormat, "format", "auto", "Output format (auto, panel, detailed, compact, json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	statuses := make(chan session.Properties, 1)
	sc := cfg.SessionConfig()
	sc.OnStatus = func(p session.Properties) {
		select {
		case statuses <- p:
		default:
		}
	}

	s, done, err := startSession(ctx, sc)
	if err != nil {
		return err
	}

	select {
	case p := <-statuses:
		out, err := formatStatus(s.Device().DeviceInfo, p, outputFormat)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	case err := <-done:
		if err != nil {
			return fmt.Errorf("cannot reach appliance: %w", err)
		}
		return fmt.Errorf("no status from %s (state: %s)", cfg.Device.Host, s.State())
	case <-ctx.Done():
		return fmt.Errorf("no status from %s within %s (state: %s)", cfg.Device.Host, timeout, s.State())
	}
}

// watchCmd follows the appliance
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay connected and print every status change",
	Long: `Bind to the appliance and print status reports and command results as they
arrive. With --metrics-listen, packet and property counters are served in the
Prometheus text format on /metrics. With --feed-listen, every change is pushed as
JSON to WebSocket clients on /ws; add --advertise to announce the feed over mDNS
as ` + feed.ServiceType + `.`,
	Example: `  greectl watch --host 192.168.1.40
  greectl watch --host 192.168.1.40 --metrics-listen 127.0.0.1:9107
  greectl watch --host 192.168.1.40 --feed-listen :8765 --advertise`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Address for the Prometheus /metrics endpoint (disabled if empty)")
	watchCmd.Flags().StringVar(&feedListen, "feed-listen", "", "Address for the WebSocket status feed on /ws (disabled if empty)")
	watchCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the status feed over mDNS")
}

// serve runs an HTTP server on addr until ctx ends.
func serve(ctx context.Context, name, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server failed", zap.String("server", name), zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logging.Info("Serving "+name, zap.String("addr", addr))
}

// advertiseFeed announces the feed under the configured instance name, falling
// back to the host name.
func advertiseFeed(cfg *config.Config) (feed.MDNSServer, error) {
	p, err := feed.PortOf(cfg.Feed.Listen)
	if err != nil {
		return nil, fmt.Errorf("invalid feed address %q: %w", cfg.Feed.Listen, err)
	}
	instance := cfg.Feed.Instance
	if instance == "" {
		if instance, err = os.Hostname(); err != nil {
			instance = "greelink"
		}
	}
	return feed.Advertise(feed.AdvertiseConfig{Instance: instance, Port: p})
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	var opts []session.Option
	if cfg.Metrics.Listen != "" {
		reg := metrics.NewRegistry()
		opts = append(opts, session.WithMetrics(metrics.NewSessionMetrics(reg)))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		serve(ctx, "metrics", cfg.Metrics.Listen, mux)
	}

	var hub *feed.Hub
	if cfg.Feed.Listen != "" {
		hub = feed.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		serve(ctx, "feed", cfg.Feed.Listen, mux)

		if cfg.Feed.Advertise {
			adv, err := advertiseFeed(cfg)
			if err != nil {
				return err
			}
			defer adv.Shutdown()
		}
	}

	var last session.Properties
	sc := cfg.SessionConfig()
	sc.OnConnected = func(info session.DeviceInfo) {
		fmt.Printf("Connected to %s (%s) at %s:%d, %s\n", displayName(info), info.ID, info.Host, info.Port, info.Version)
		if hub != nil {
			hub.Connected(info)
		}
	}
	sc.OnStatus = func(p session.Properties) {
		if changes := diffProperties(last, p); changes != "" {
			fmt.Printf("%s status  %s\n", time.Now().Format("15:04:05"), changes)
			if hub != nil {
				hub.Publish(feed.KindStatus, p)
			}
		}
		last = p
	}
	sc.OnUpdate = func(p session.Properties) {
		fmt.Printf("%s update  %s\n", time.Now().Format("15:04:05"), formatCompact(p))
		if hub != nil {
			hub.Publish(feed.KindUpdate, p)
		}
		last = p
	}

	_, done, err := startSession(ctx, sc, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("Scanning for %s:%d...\n", cfg.Device.Host, cfg.Device.Port)
	if err := <-done; err != nil {
		return fmt.Errorf("cannot reach appliance: %w", err)
	}
	return nil
}

// setCmd sends one command
var setCmd = &cobra.Command{
	Use:   "set <name> <value> [<name> <value>...]",
	Short: "Change one or more settings",
	Long: `Bind to the appliance and send one command containing every name/value pair.

Names: ` + strings.Join(catalog.Names(), ", ") + `

Values are integers, on/off, or the named values of the setting (for example
mode: auto, cool, dry, fan, heat; fanSpeed: auto, low, mediumLow, medium,
mediumHigh, high).`,
	Example: `  greectl set power on --host 192.168.1.40
  greectl set mode cool temperature 24 --host 192.168.1.40
  greectl set swingVert fixedMid`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected name/value pairs, got %d arguments", len(args))
		}
		return nil
	},
	RunE: runSet,
}

func init() {
	setCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "How long to wait for the appliance")
}

func runSet(cmd *cobra.Command, args []string) error {
	codes, values, err := parsePairs(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	connected := make(chan struct{}, 1)
	results := make(chan session.Properties, 1)
	sc := cfg.SessionConfig()
	sc.OnConnected = func(session.DeviceInfo) { connected <- struct{}{} }
	sc.OnUpdate = func(p session.Properties) {
		select {
		case results <- p:
		default:
		}
	}

	s, done, err := startSession(ctx, sc)
	if err != nil {
		return err
	}

	select {
	case <-connected:
	case err := <-done:
		return fmt.Errorf("cannot reach appliance: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("appliance did not bind within %s (state: %s)", timeout, s.State())
	}

	if err := s.SendCommand(codes, values); err != nil {
		return err
	}

	select {
	case p := <-results:
		fmt.Println(formatCompact(pick(p, codes)))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("no confirmation within %s; the command may still have been applied", timeout)
	}
}

// configCmd manages the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fmt.Println(configPath)
			return nil
		}
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with defaults and the given flags",
	Example: `  greectl config init --host 192.168.1.40`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if cmd.Flags().Changed("host") {
			cfg.Device.Host = host
		}
		if cmd.Flags().Changed("port") {
			cfg.Device.Port = port
		}
		if cmd.Flags().Changed("local-port") {
			cfg.Device.LocalPort = localPort
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		fmt.Println("Configuration saved")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

// parsePairs turns "name value" arguments into codes and wire values.
// temperatureUnit is sent before temperature when both are given.
func parsePairs(args []string) ([]string, []int, error) {
	var codes []string
	var values []int
	for i := 0; i < len(args); i += 2 {
		name, text := args[i], args[i+1]
		code, ok := catalog.Lookup(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown setting %q (known: %s)", name, strings.Join(catalog.Names(), ", "))
		}
		v, err := catalog.ParseValue(name, text)
		if err != nil {
			return nil, nil, err
		}
		codes = append(codes, code)
		values = append(values, v)
	}

	unit, temp := indexOf(codes, catalog.CodeTemperatureUnit), indexOf(codes, catalog.CodeTemperature)
	if unit > temp && temp >= 0 {
		codes[unit], codes[temp] = codes[temp], codes[unit]
		values[unit], values[temp] = values[temp], values[unit]
	}
	return codes, values, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func pick(p session.Properties, codes []string) session.Properties {
	out := make(session.Properties, len(codes))
	for _, c := range codes {
		if v, ok := p[c]; ok {
			out[c] = v
		}
	}
	return out
}

func displayName(info session.DeviceInfo) string {
	if info.Name != "" {
		return info.Name
	}
	return "appliance"
}

// formatStatus renders a status report in the requested format.
// "auto" picks the panel on a terminal and the detailed text otherwise.
func formatStatus(info session.DeviceInfo, p session.Properties, format string) (string, error) {
	if format == "auto" {
		format = "detailed"
		if ui.IsTerminal() {
			format = "panel"
		}
	}

	switch format {
	case "panel":
		return ui.NewPanel(info, p).Render(), nil
	case "compact":
		return formatCompact(p), nil
	case "json":
		out := struct {
			ID         string             `json:"id"`
			Name       string             `json:"name,omitempty"`
			Firmware   string             `json:"firmware,omitempty"`
			Address    string             `json:"address"`
			Version    int                `json:"version"`
			Properties session.Properties `json:"properties"`
		}{
			ID:         info.ID,
			Name:       info.Name,
			Firmware:   info.Firmware,
			Address:    fmt.Sprintf("%s:%d", info.Host, info.Port),
			Version:    int(info.Version),
			Properties: p,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(data), nil
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%s (%s)\n", displayName(info), info.ID)
		fmt.Fprintf(&b, "  Address:  %s:%d\n", info.Host, info.Port)
		if info.Firmware != "" {
			fmt.Fprintf(&b, "  Firmware: %s\n", info.Firmware)
		}
		fmt.Fprintf(&b, "  Protocol: %s\n\n", info.Version)
		for _, e := range catalog.Entries() {
			if v, ok := p[e.Code]; ok {
				fmt.Fprintf(&b, "  %-20s %v\n", e.Name, v)
			}
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}
}

// formatCompact renders properties as name=value pairs in catalog order.
func formatCompact(p session.Properties) string {
	var parts []string
	seen := make(map[string]bool, len(p))
	for _, e := range catalog.Entries() {
		if v, ok := p[e.Code]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", e.Name, v))
			seen[e.Code] = true
		}
	}
	var extra []string
	for code := range p {
		if !seen[code] {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	for _, code := range extra {
		parts = append(parts, fmt.Sprintf("%s=%v", code, p[code]))
	}
	return strings.Join(parts, " ")
}

// diffProperties renders the properties of cur that differ from prev.
func diffProperties(prev, cur session.Properties) string {
	changed := make(session.Properties)
	for code, v := range cur {
		if old, ok := prev[code]; !ok || !reflect.DeepEqual(old, v) {
			changed[code] = v
		}
	}
	if len(changed) == 0 {
		return ""
	}
	return formatCompact(changed)
}
