// Package session wires every configuration section to one device and
// runs the startup sequence.
//
// The device serves one request at a time, so startup is strictly
// sequential: time sync, device identity, image, capture, upload schedule,
// data-report platform, then either the cellular or the Wi-Fi section
// depending on the network mode the device reported. A failed step is
// logged and reported but never stops the steps after it.
package session
