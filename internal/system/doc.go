// Package system manages device identity: name, firmware and hardware
// versions, battery, NTP, the device clock, sleep and firmware upgrade.
//
// Upgrade follows the device's own page. The user confirms, a progress
// dialog opens, and the image is posted as a raw octet stream. A 1000
// result is followed by a settle delay while the device writes and checks
// the image, after which the progress dialog completes and closes and a
// success tip is shown. Any other outcome closes the dialog and shows a
// failure tip. Either tip, once acknowledged, triggers the reload hook.
package system
