// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// Every record is also written to an in-memory ring buffer backing the
// /api/logs endpoint, and handed to the registered callback for SSE
// streaming.
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"engine":  "debug",  // Per-module overrides
//			"surface": "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("engine")
//	logger.Info("Link established", "send_port", 9000)
//	logger.Debug("Probe sent", "reply_addr", "/heartbeat")
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("surface").With("device", name)
//	logger.Info("Device opened")  // Includes device in all logs
//
// # Output Destinations
//
// The system automatically detects available outputs:
//
//	Journal available + stdout available → MultiHandler (both)
//	Journal available only              → JournalHandler
//	Stdout available only               → TextHandler or JSONHandler
//
// Journal availability is checked via [github.com/coreos/go-systemd/v22/journal.Enabled].
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t loopbridge              # All loopbridge logs
//	journalctl -t loopbridge -f           # Follow live
//	journalctl -t loopbridge --since "5m" # Last 5 minutes
//	journalctl -t loopbridge -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t loopbridge MODULE=engine
//	journalctl -t loopbridge CODE=hardware_write_error
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only, and can be changed at
// runtime through UpdateLevels when the config file is reloaded.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	engine = "debug"
//	surface = "warn"
package logging
