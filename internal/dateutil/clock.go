package dateutil

import "fmt"

// ClockLayout is the time-of-day format used at external boundaries.
const ClockLayout = "15:04"

// MinutesPerDay bounds ClockTime values; 24:00 is a valid exclusive end.
const MinutesPerDay = 24 * 60

// ClockTime is a time of day expressed as minutes since midnight.
type ClockTime int

// ParseClock parses an HH:MM 24-hour string.
func ParseClock(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

// MustParseClock is ParseClock that panics on error.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Hour returns the hour component (0-24).
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 60 }

// Valid reports whether c lies within a single day.
func (c ClockTime) Valid() bool { return c >= 0 && c <= MinutesPerDay }

// AddMinutes shifts c by n minutes, clamping to the [00:00, 24:00] range.
func (c ClockTime) AddMinutes(n int) ClockTime {
	v := int(c) + n
	if v < 0 {
		v = 0
	}
	if v > MinutesPerDay {
		v = MinutesPerDay
	}
	return ClockTime(v)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Half-open semantics: ranges that merely touch at a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd ClockTime) bool {
	return aStart < bEnd && bStart < aEnd
}
