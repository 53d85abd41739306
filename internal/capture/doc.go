// Package capture is the capture and trigger configuration section.
//
// The capture group must be read before the trigger group, because
// whether a trigger mode is shown at all depends on the capture group's
// trigger-capture flag. Writes go the other way: the capture group is
// written first, and only once the device acknowledges it does the section
// act on trigger capture being switched off (remember the mode, write 0)
// or on (restore the mode, write it, re-read the trigger group).
package capture
