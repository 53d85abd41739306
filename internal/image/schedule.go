package image

import (
	"strings"

	"github.com/muurk/ne101/internal/codec"
)

// Fallback hours for an empty light schedule field.
const (
	DefaultStartHour = "23"
	DefaultEndHour   = "07"
)

func clampHour(raw, fallback string) string {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	return codec.ClampTimeField(raw, codec.HourMax)
}

// NormalizeSchedule clamps raw light schedule fields and returns the start
// and end as "HH:MM". An end equal to the start is advanced one minute.
func NormalizeSchedule(startHour, startMinute, endHour, endMinute string) (start, end string) {
	sh := clampHour(startHour, DefaultStartHour)
	sm := codec.ClampTimeField(startMinute, codec.MinuteMax)
	eh := clampHour(endHour, DefaultEndHour)
	em := codec.ClampTimeField(endMinute, codec.MinuteMax)

	if sh == eh && sm == em {
		eh, em = codec.AddMinute(eh, em)
	}
	return sh + ":" + sm, eh + ":" + em
}
