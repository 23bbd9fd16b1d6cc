// Package session drives one appliance from discovery to a bound, polled session.
//
// # Lifecycle
//
// A Session moves through four states and never leaves the last one:
//
//	Disconnected ──Run──▶ AwaitingHandshake ──dev──▶ AwaitingBindConfirmation ──bindok──▶ Bound
//
// Run binds the transport, enables broadcast and sends the discovery scan to the
// configured host. Failures of that step are retried every ReconnectDelay until the
// context ends. The dev reply fixes the device id and the encryption version; the
// bind request is then sent to the reply's source. Once bindok delivers the session
// key the session is Bound: status is requested at once and then every
// PollInterval, and commands may be sent.
//
// # Concurrency
//
// All reactions (inbound datagrams, poll ticks, queued commands) run on the single
// goroutine started by Run. The transport read loop only enqueues. Accessors take a
// read lock and return copies, so they are safe from any goroutine.
//
// # Errors
//
// Datagrams that fail to decode or arrive out of sequence are logged, counted and
// dropped. They never change state and never reach the caller. SendCommand returns
// an error only when the call itself is invalid (not bound, mismatched lists).
//
// Example:
//
//	s := session.New(session.Config{
//	    Host: "192.168.1.255",
//	    OnStatus: func(p session.Properties) {
//	        fmt.Println(p)
//	    },
//	}, udp)
//	go s.Run(ctx)
package session
