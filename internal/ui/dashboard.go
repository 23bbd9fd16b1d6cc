package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/greelink/internal/catalog"
	"github.com/muurk/greelink/internal/session"
)

// Set point limits accepted by the appliances
const (
	MinCelsius    = 16
	MaxCelsius    = 30
	MinFahrenheit = 61
	MaxFahrenheit = 86
)

// Controller is the part of a session the dashboard drives.
type Controller interface {
	SetPower(on bool) error
	SetTemperature(value int, unit catalog.TemperatureUnit) error
	SetMode(m catalog.Mode) error
	SetFanSpeed(f catalog.FanSpeed) error
}

// Messages forwarded from the session
type (
	ConnectedMsg session.DeviceInfo
	StatusMsg    session.Properties
	UpdateMsg    session.Properties

	// SessionEndedMsg reports that Run returned; the dashboard quits.
	SessionEndedMsg struct{ Err error }
)

type commandResultMsg struct {
	action string
	err    error
}

type dashboardKeyMap struct {
	Power  key.Binding
	Warmer key.Binding
	Cooler key.Binding
	Mode   key.Binding
	Fan    key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.Warmer, k.Cooler, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Power, k.Warmer, k.Cooler},
		{k.Mode, k.Fan},
		{k.Help, k.Quit},
	}
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Power: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "power"),
		),
		Warmer: key.NewBinding(
			key.WithKeys("+", "=", "up", "k"),
			key.WithHelp("+/↑", "warmer"),
		),
		Cooler: key.NewBinding(
			key.WithKeys("-", "down", "j"),
			key.WithHelp("-/↓", "cooler"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "next mode"),
		),
		Fan: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "next fan speed"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DashboardModel is the live view of one appliance.
type DashboardModel struct {
	Target     string // address being scanned
	Device     *session.DeviceInfo
	Props      session.Properties
	LastUpdate time.Time
	Message    string // result of the last key press
	Err        error  // set when the session ended with an error

	Width   int
	Spinner spinner.Model
	Help    help.Model
	Keys    dashboardKeyMap

	ctrl Controller
	now  func() time.Time
}

// NewDashboardModel returns a dashboard that sends commands through ctrl.
func NewDashboardModel(target string, ctrl Controller) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return DashboardModel{
		Target:  target,
		Width:   MaxContentWidth,
		Spinner: s,
		Help:    help.New(),
		Keys:    newDashboardKeyMap(),
		ctrl:    ctrl,
		now:     time.Now,
	}
}

// Init starts the scanning spinner.
func (m DashboardModel) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles session messages and key presses.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = clampWidth(msg.Width)
		m.Help.Width = m.Width
		return m, nil

	case spinner.TickMsg:
		if m.Props != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case ConnectedMsg:
		info := session.DeviceInfo(msg)
		m.Device = &info
		return m, nil

	case StatusMsg:
		m.Props = session.Properties(msg)
		m.LastUpdate = m.now()
		return m, nil

	case UpdateMsg:
		m.Props = session.Properties(msg)
		m.LastUpdate = m.now()
		return m, nil

	case SessionEndedMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case commandResultMsg:
		if msg.err != nil {
			m.Message = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.Message = msg.action + " sent"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	}

	if m.Device == nil || m.Props == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Power):
		on, _ := m.Props.Int(catalog.CodePower)
		return m, m.send("power", func() error { return m.ctrl.SetPower(on != 1) })

	case key.Matches(msg, m.Keys.Warmer):
		return m.stepTemperature(1)

	case key.Matches(msg, m.Keys.Cooler):
		return m.stepTemperature(-1)

	case key.Matches(msg, m.Keys.Mode):
		cur, _ := m.Props.Int(catalog.CodeMode)
		next := catalog.Mode((cur + 1) % (int(catalog.ModeHeat) + 1))
		return m, m.send("mode "+catalog.ValueName("mode", int(next)), func() error { return m.ctrl.SetMode(next) })

	case key.Matches(msg, m.Keys.Fan):
		cur, _ := m.Props.Int(catalog.CodeFanSpeed)
		next := catalog.FanSpeed((cur + 1) % (int(catalog.FanHigh) + 1))
		return m, m.send("fan "+catalog.ValueName("fanSpeed", int(next)), func() error { return m.ctrl.SetFanSpeed(next) })
	}
	return m, nil
}

func (m DashboardModel) stepTemperature(delta int) (tea.Model, tea.Cmd) {
	cur, ok := m.Props.Int(catalog.CodeTemperature)
	if !ok {
		return m, nil
	}
	u, _ := m.Props.Int(catalog.CodeTemperatureUnit)
	unit := catalog.TemperatureUnit(u)
	lo, hi := MinCelsius, MaxCelsius
	if unit == catalog.Fahrenheit {
		lo, hi = MinFahrenheit, MaxFahrenheit
	}

	next := min(max(cur+delta, lo), hi)
	if next == cur {
		m.Message = fmt.Sprintf("temperature limit %d reached", cur)
		return m, nil
	}
	return m, m.send(fmt.Sprintf("temperature %d", next), func() error {
		return m.ctrl.SetTemperature(next, unit)
	})
}

// send runs fn as a Bubble Tea command. Session setters only enqueue, so fn
// returns without waiting for the appliance.
func (m DashboardModel) send(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{action: action, err: fn()}
	}
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("greelink") + " " + SubtitleStyle.Render(m.Target))
	b.WriteString("\n\n")

	switch {
	case m.Device == nil:
		b.WriteString(m.Spinner.View() + " Scanning for appliance...")
	case m.Props == nil:
		b.WriteString(m.Spinner.View() + " Bound, waiting for first status...")
	default:
		panel := &Panel{Info: *m.Device, Props: m.Props, Width: m.Width}
		b.WriteString(panel.Render())
		b.WriteString("\n")
		b.WriteString(StatusLineStyle.Render(m.statusLine()))
	}

	if m.Message != "" {
		b.WriteString("\n")
		style := SubtitleStyle
		if strings.Contains(m.Message, "failed") {
			style = ErrorStyle
		}
		b.WriteString(style.Render(m.Message))
	}

	b.WriteString("\n\n")
	b.WriteString(m.Help.View(m.Keys))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m DashboardModel) statusLine() string {
	line := "Set point " + FormatTemperature(m.Props)
	if !m.LastUpdate.IsZero() {
		line += " · updated " + m.LastUpdate.Format("15:04:05")
	}
	return line
}
