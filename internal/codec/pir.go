package codec

import (
	"math"
	"strconv"
	"strings"
)

// Register and display bounds for the PIR trigger fields.
const (
	SensitivityMin = 0
	SensitivityMax = 255

	BlindTimeRegMax = 15
	PulseRegMax     = 3
	WindowRegMax    = 3

	BlindTimeMin = 0.5
	BlindTimeMax = 8.0
	PulseMin     = 1.0
	PulseMax     = 4.0
	WindowMin    = 2.0
	WindowMax    = 8.0
)

// DefaultSensitivity is used when a sensitivity entry is not a number.
const DefaultSensitivity = 15

// ParseDisplay parses a display value typed by a user. Anything that is not
// a number yields NaN, which every Register function clamps to its lower
// bound.
func ParseDisplay(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SensitivityDisplay returns the display value for a sensitivity register.
func SensitivityDisplay(reg int) float64 {
	return float64(clampInt(reg, SensitivityMin, SensitivityMax))
}

// SensitivityRegister clamps display to [0,255] and rounds it.
// A non-numeric display falls back to DefaultSensitivity.
func SensitivityRegister(display float64) int {
	if math.IsNaN(display) {
		return DefaultSensitivity
	}
	return int(math.Round(clamp(display, SensitivityMin, SensitivityMax)))
}

// BlindTimeDisplay returns seconds of blind time for a register value.
func BlindTimeDisplay(reg int) float64 {
	return float64(clampInt(reg, 0, BlindTimeRegMax))*0.5 + 0.5
}

// BlindTimeRegister is the inverse of BlindTimeDisplay.
func BlindTimeRegister(display float64) int {
	d := clamp(display, BlindTimeMin, BlindTimeMax)
	return int(math.Round((d - 0.5) * 2))
}

// PulseDisplay returns the pulse count for a register value.
func PulseDisplay(reg int) float64 {
	return float64(clampInt(reg, 0, PulseRegMax) + 1)
}

// PulseRegister is the inverse of PulseDisplay.
func PulseRegister(display float64) int {
	d := clamp(display, PulseMin, PulseMax)
	return int(math.Round(d - 1))
}

// WindowDisplay returns seconds of window time for a register value.
func WindowDisplay(reg int) float64 {
	return float64(clampInt(reg, 0, WindowRegMax))*2 + 2
}

// WindowRegister is the inverse of WindowDisplay.
func WindowRegister(display float64) int {
	d := clamp(display, WindowMin, WindowMax)
	return int(math.Round((d - 2) / 2))
}
