// Package wifi drives the camera's station-mode connection.
//
// A Machine holds the scanned network list and exactly one connection
// State. Entry statuses are derived from that State, so at most one entry
// can ever show connecting or connected. Selecting a new network resets
// the previous one before the request is sent; a result for an attempt
// that has since been superseded is discarded.
//
// Refresh and ChangeRegion are single-flight: a call made while another is
// outstanding returns immediately without touching the device.
package wifi
