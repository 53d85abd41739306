package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Upper bounds for the fields of a time of day.
const (
	HourMax   = 23
	MinuteMax = 59
	SecondMax = 59
)

// ClampTimeField normalizes a single hour, minute or second entry to two
// digits. Empty, non-numeric and non-positive input becomes "00"; anything
// above max becomes max. Fractional input is truncated.
func ClampTimeField(raw string, max int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "00"
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return "00"
	}
	if v > float64(max) {
		return fmt.Sprintf("%02d", max)
	}
	return fmt.Sprintf("%02d", int(v))
}

// ClockTime formats a timed-node time as "HH:MM:SS" from raw fields, clamping
// each one independently.
func ClockTime(hour, minute, second string) string {
	return ClampTimeField(hour, HourMax) + ":" +
		ClampTimeField(minute, MinuteMax) + ":" +
		ClampTimeField(second, SecondMax)
}

// SplitHourMinute splits an "HH:MM" string. Missing parts come back empty.
func SplitHourMinute(s string) (hour, minute string) {
	hour, minute, _ = strings.Cut(s, ":")
	return hour, minute
}

// AddMinute advances an already clamped hour and minute by one minute,
// wrapping 23:59 to 00:00.
func AddMinute(hour, minute string) (string, string) {
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	m++
	if m > MinuteMax {
		m = 0
		h++
	}
	if h > HourMax {
		h = 0
	}
	return fmt.Sprintf("%02d", h), fmt.Sprintf("%02d", m)
}

// PosixTZ renders the zone in effect at t as a POSIX TZ string such as
// "CST-8" or "<+0530>-5:30". POSIX offsets are west-positive, the opposite
// of the usual UTC offset sign.
func PosixTZ(t time.Time) string {
	name, offset := t.Zone()

	west := -offset
	sign := ""
	if west < 0 {
		sign = "-"
		west = -west
	}
	h, m := west/3600, (west%3600)/60
	off := fmt.Sprintf("%s%d", sign, h)
	if m != 0 {
		off += fmt.Sprintf(":%02d", m)
	}

	if !isAlphaZone(name) {
		name = numericZoneName(offset)
	}
	return name + off
}

func isAlphaZone(name string) bool {
	if len(name) < 3 {
		return false
	}
	for _, r := range name {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// numericZoneName quotes an unnamed zone the way POSIX requires, for
// example "<+08>" or "<-0330>".
func numericZoneName(offset int) string {
	if offset == 0 {
		return "UTC"
	}
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	h, m := offset/3600, (offset%3600)/60
	if m == 0 {
		return fmt.Sprintf("<%c%02d>", sign, h)
	}
	return fmt.Sprintf("<%c%02d%02d>", sign, h, m)
}
