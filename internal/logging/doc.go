// Package logging provides structured logging for greelink.
//
// This package wraps a global zap logger with convenience functions used throughout
// the session, transport and CLI code, plus protocol-specific helpers for packet
// dumps.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Packet hex dumps, poll ticks, envelope details
//   - Info: Handshake progress, bind confirmation, commands sent
//   - Warn: Dropped datagrams (decode failures, out-of-sequence payloads), retries
//   - Error: Failures the session cannot absorb
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Device bound",
//	    zap.String("device_id", "f4911e000001"),
//	    zap.String("addr", "192.168.1.40:7000"),
//	    zap.Stringer("version", protocol.V2),
//	)
//
// # Configuration
//
// Logging is silent unless a level is given or GREELINK_LOG_LEVEL is set:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// InitializeWithFile additionally writes every entry to a size-rotated file through
// lumberjack.
//
// # pion Integration
//
// PionFactory adapts the global logger to pion's LoggerFactory so that pion
// networking components (the virtual network used in tests, for example) log through
// the same sink.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
