// Package ui renders appliance state for the terminal.
//
// Panel draws a bordered status box used by "greectl status". DashboardModel is a
// Bubble Tea model for "greectl dashboard": it shows live properties as the
// session reports them and turns key presses into commands.
//
// The session runs outside the Bubble Tea program and forwards its callbacks
// with tea.Program.Send:
//
//	m := ui.NewDashboardModel("192.168.1.40", sess)
//	p := tea.NewProgram(m)
//	sc.OnConnected = func(info session.DeviceInfo) { p.Send(ui.ConnectedMsg(info)) }
//	sc.OnStatus = func(props session.Properties) { p.Send(ui.StatusMsg(props)) }
//	_, err := p.Run()
package ui
