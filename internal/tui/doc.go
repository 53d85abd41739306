// Package tui is the full-screen dashboard for one NE101 camera.
//
// The application has three screens:
//
//	discovery   scan results as cards, plus manual address entry
//	connecting  shown while the session is opened
//	dashboard   one page per parameter group, with live MQTT and Wi-Fi status
//
// Sections talk to the user through notify ports. Bridge implements those
// ports by posting messages into the running program: banners and spinner
// messages are fire-and-forget, while tips, password prompts and the
// upgrade bar open a modal on the dashboard and block the calling
// goroutine until it is answered. Device operations therefore always run
// in tea.Cmd goroutines, never in Update.
//
// Usage:
//
//	err := tui.Run(ctx, tui.Config{
//		Scan:    scan,
//		Connect: open,
//	})
package tui
