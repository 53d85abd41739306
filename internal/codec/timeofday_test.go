package codec

import (
	"testing"
	"time"
)

func TestClampTimeField(t *testing.T) {
	tests := []struct {
		raw  string
		max  int
		want string
	}{
		{"", HourMax, "00"},
		{"0", HourMax, "00"},
		{"-3", MinuteMax, "00"},
		{"7", HourMax, "07"},
		{"23", HourMax, "23"},
		{"24", HourMax, "23"},
		{"99", MinuteMax, "59"},
		{"5.7", MinuteMax, "05"},
		{"xx", SecondMax, "00"},
		{" 12 ", HourMax, "12"},
	}
	for _, tt := range tests {
		if got := ClampTimeField(tt.raw, tt.max); got != tt.want {
			t.Errorf("ClampTimeField(%q, %d) = %q, want %q", tt.raw, tt.max, got, tt.want)
		}
	}
}

func TestClockTime(t *testing.T) {
	if got := ClockTime("8", "75", ""); got != "08:59:00" {
		t.Errorf("ClockTime = %q, want 08:59:00", got)
	}
}

func TestAddMinute(t *testing.T) {
	tests := []struct {
		h, m         string
		wantH, wantM string
	}{
		{"07", "00", "07", "01"},
		{"07", "59", "08", "00"},
		{"23", "59", "00", "00"},
		{"00", "00", "00", "01"},
	}
	for _, tt := range tests {
		h, m := AddMinute(tt.h, tt.m)
		if h != tt.wantH || m != tt.wantM {
			t.Errorf("AddMinute(%s:%s) = %s:%s, want %s:%s", tt.h, tt.m, h, m, tt.wantH, tt.wantM)
		}
	}
}

func TestSplitHourMinute(t *testing.T) {
	h, m := SplitHourMinute("23:05")
	if h != "23" || m != "05" {
		t.Errorf("SplitHourMinute = %s, %s", h, m)
	}
	h, m = SplitHourMinute("")
	if h != "" || m != "" {
		t.Errorf("SplitHourMinute(empty) = %q, %q", h, m)
	}
}

func TestPosixTZ(t *testing.T) {
	tests := []struct {
		name   string
		zone   string
		offset int
		want   string
	}{
		{"utc", "UTC", 0, "UTC0"},
		{"east named", "CST", 8 * 3600, "CST-8"},
		{"west named", "EST", -5 * 3600, "EST5"},
		{"half hour", "IST", 5*3600 + 1800, "IST-5:30"},
		{"numeric east", "+08", 8 * 3600, "<+08>-8"},
		{"numeric west half", "-0330", -(3*3600 + 1800), "<-0330>3:30"},
		{"unnamed utc", "", 0, "UTC0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := time.FixedZone(tt.zone, tt.offset)
			got := PosixTZ(time.Date(2026, 1, 1, 0, 0, 0, 0, loc))
			if got != tt.want {
				t.Errorf("PosixTZ = %q, want %q", got, tt.want)
			}
		})
	}
}
