// Package logging provides structured logging for the NE101 tools.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used across the configuration client and the device emulator.
// Output is silent unless a level is passed to Initialize or set in the
// NE101_LOG_LEVEL environment variable, so CLI output stays clean.
//
// # Log Levels
//
//   - Debug: every device request and response, state transitions
//   - Info: session lifecycle, emulator start and stop
//   - Warn: failed requests, failed startup steps
//   - Error: unrecoverable failures
//
// # Structured Logging
//
//	logging.Info("Session initialized",
//	    zap.String("device", "http://192.168.1.1"),
//	    zap.String("netmod", "wifi"),
//	)
//
// # Specialized Logging
//
// Device traffic carries a request id so a request and its response can be
// matched in the output:
//
//	logging.LogRequest(id, "GET", "/api/v1/capture/getCapParam", 0)
//	logging.LogResponse(id, "/api/v1/capture/getCapParam", 200, elapsed)
//
// State machines report their moves with LogTransition:
//
//	logging.LogTransition("wifi", "idle", "connecting", zap.String("ssid", "Office"))
//
// # Configuration
//
//	if err := logging.Initialize(flagLogLevel); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
