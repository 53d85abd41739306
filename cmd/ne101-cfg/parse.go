package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/muurk/ne101/internal/deviceconfig"
)

// parseOnOff accepts on/off and the usual boolean spellings.
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "enable", "enabled", "true", "yes", "1":
		return true, nil
	case "off", "disable", "disabled", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

var dayNames = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"daily": deviceconfig.EveryDay, "everyday": deviceconfig.EveryDay,
}

// parseDay accepts a weekday name, "daily", or the firmware's 0-7 value.
func parseDay(s string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if day, ok := dayNames[key]; ok {
		return day, nil
	}
	day, err := strconv.Atoi(key)
	if err != nil || day < 0 || day > deviceconfig.EveryDay {
		return 0, fmt.Errorf("invalid day %q (use sun..sat, daily or 0-7)", s)
	}
	return day, nil
}

// parseClock splits "HH:MM" or "HH:MM:SS" into raw fields. Range checks
// happen when the schedule entry is built.
func parseClock(s string) (hour, minute, second string, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", "", fmt.Errorf("invalid time %q (use HH:MM or HH:MM:SS)", s)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return "", "", "", fmt.Errorf("invalid time %q (use HH:MM or HH:MM:SS)", s)
		}
	}
	second = "00"
	if len(parts) == 3 {
		second = parts[2]
	}
	return parts[0], parts[1], second, nil
}

// parseEntry converts a 1-based list position to an index.
func parseEntry(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid entry %q (use the number shown in the list)", s)
	}
	return n - 1, nil
}

// parseChoice maps a keyword to its value from choices.
func parseChoice(kind, s string, choices map[string]int) (int, error) {
	if v, ok := choices[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	names := make([]string, 0, len(choices))
	for k := range choices {
		names = append(names, k)
	}
	sort.Strings(names)
	return 0, fmt.Errorf("invalid %s %q (use %s)", kind, s, strings.Join(names, ", "))
}
