package ui

import (
	"fmt"
	"net"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/greelink/internal/catalog"
	"github.com/muurk/greelink/internal/session"
)

// Panel is a bordered view of one appliance.
type Panel struct {
	Info  session.DeviceInfo
	Props session.Properties
	Width int
}

// NewPanel sizes the panel to the terminal.
func NewPanel(info session.DeviceInfo, props session.Properties) *Panel {
	return &Panel{Info: info, Props: props, Width: GetTerminalWidth()}
}

// Render returns the styled panel.
func (p *Panel) Render() string {
	width := clampWidth(p.Width)

	name := p.Info.Name
	if name == "" {
		name = "appliance"
	}
	title := TitleStyle.Render(name) + " " + SubtitleStyle.Render(p.Info.ID)

	addr := net.JoinHostPort(p.Info.Host, strconv.Itoa(p.Info.Port))
	sub := addr + " · " + p.Info.Version.String()
	if p.Info.Firmware != "" {
		sub += " · fw " + p.Info.Firmware
	}

	lines := []string{title, SubtitleStyle.Render(sub), ""}
	lines = append(lines, PropertyRows(p.Props)...)

	return PanelStyle(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// PropertyRows renders one "name value" row per property, catalog codes first in
// poll order and unknown codes after them sorted by code.
func PropertyRows(props session.Properties) []string {
	var rows []string
	seen := make(map[string]bool, len(props))
	for _, e := range catalog.Entries() {
		v, ok := props[e.Code]
		if !ok {
			continue
		}
		seen[e.Code] = true
		rows = append(rows, row(e.Name, v))
	}

	var extra []string
	for code := range props {
		if !seen[code] {
			extra = append(extra, code)
		}
	}
	sort.Strings(extra)
	for _, code := range extra {
		rows = append(rows, row(code, props[code]))
	}
	return rows
}

func row(name string, v any) string {
	text := fmt.Sprint(v)
	if n, ok := v.(int); ok {
		text = catalog.ValueName(name, n)
	}
	style := ValueStyle
	if text == "on" {
		style = OnStyle
	}
	return KeyStyle.Render(name) + style.Render(text)
}

// FormatTemperature renders a set point with its unit suffix.
func FormatTemperature(props session.Properties) string {
	t, ok := props.Int(catalog.CodeTemperature)
	if !ok {
		return "-"
	}
	unit := "°C"
	if u, _ := props.Int(catalog.CodeTemperatureUnit); u == int(catalog.Fahrenheit) {
		unit = "°F"
	}
	return strconv.Itoa(t) + unit
}
