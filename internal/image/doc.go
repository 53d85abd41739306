// Package image manages the fill light and camera sensor parameter groups.
//
// The light group carries a read-only luminance reading alongside its
// settings. It is never echoed back to the device, and RefreshLuminance
// re-reads the light group without touching the camera group.
//
// Fill light schedule entries are normalized the same way capture times
// are, with two additions: an empty start hour means 23 and an empty end
// hour means 07, and a schedule whose start equals its end has its end
// pushed forward by one minute so the window is never empty.
package image
