// Package codec converts between the register encodings an NE101 camera
// stores and the values a person reads and types.
//
// Every conversion is pure. Display input is clamped to its domain before it
// is converted back to a register value, so a conversion never fails:
//
//	reg := codec.BlindTimeRegister(3.0) // 5
//	codec.BlindTimeDisplay(reg)         // 3.0
//
// # PIR trigger fields
//
//	Field        Register   Display           Formula
//	sensitivity  0..255     0..255            identity
//	blind time   0..15      0.5s..8.0s        reg*0.5 + 0.5
//	pulse count  0..3       1..4              reg + 1
//	window time  0..3       2s..8s            reg*2 + 2
//
// # Other helpers
//
// ClampTimeField normalizes one hour, minute or second field. AddMinute
// advances an "HH:MM" pair. FrameSize maps camera resolution enums to labels,
// SignalLevel buckets RSSI readings for rendering, and PosixTZ renders a
// location in the POSIX TZ form the firmware wants for clock sync.
package codec
