// Package notify defines the ports sections use to talk to the person at
// the keyboard, and the process-wide implementations behind them.
//
// There are three ports:
//
//   - Notifier: one global success/error banner that clears itself after a
//     few seconds. Channel implements it and fans out to Sinks such as the
//     terminal and the desktop notification center.
//   - Dialog: one modal at a time. A plain tip (optionally cancellable), a
//     password prompt for a Wi-Fi network, or the firmware upgrade progress
//     bar. Modal wraps any Dialog and enforces the one-at-a-time rule.
//   - Spinner: an opaque busy indicator shown around uploads.
//
// Sections depend on the interfaces only. Recorder is a scripted
// implementation of all three for tests.
package notify
