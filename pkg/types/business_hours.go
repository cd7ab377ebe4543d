package types

import (
	"fmt"
	"strings"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayHours is the opening window for a single weekday. Times are HH:MM.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed"`
}

// BusinessHours maps lower-case weekday names to opening windows.
type BusinessHours map[string]DayHours

// Validate checks weekday keys and HH:MM windows.
func (b BusinessHours) Validate() error {
	for day, hours := range b {
		if !isWeekday(day) {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if hours.Closed {
			continue
		}
		if !isClock(hours.Open) || !isClock(hours.Close) {
			return fmt.Errorf("%s: open/close must be HH:MM", day)
		}
		if hours.Open >= hours.Close {
			return fmt.Errorf("%s: open must be before close", day)
		}
	}
	return nil
}

func isWeekday(day string) bool {
	for _, d := range weekdays {
		if d == strings.ToLower(day) {
			return true
		}
	}
	return false
}

func isClock(v string) bool {
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	h := (int(v[0]-'0'))*10 + int(v[1]-'0')
	m := (int(v[3]-'0'))*10 + int(v[4]-'0')
	for _, c := range []byte{v[0], v[1], v[3], v[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	return h < 24 && m < 60
}
