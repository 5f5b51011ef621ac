// Package timesource reads the reference clock and exposes it as the
// calendar tuple pushed to the camera.
package timesource

import (
	"fmt"
	"time"
)

const (
	minYear = 2000
	maxYear = 2099
)

// Snapshot is a calendar timestamp read from the time source. It is read
// fresh before every apply attempt and never cached.
type Snapshot struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

func FromTime(t time.Time) Snapshot {
	return Snapshot{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Validate checks every field against its calendar range. Years are limited
// to the span a two-digit year can represent.
func (s Snapshot) Validate() error {
	switch {
	case s.Year < minYear || s.Year > maxYear:
		return fmt.Errorf("year %d out of range %d..%d", s.Year, minYear, maxYear)
	case s.Month < 1 || s.Month > 12:
		return fmt.Errorf("month %d out of range 1..12", s.Month)
	case s.Day < 1 || s.Day > daysIn(s.Year, s.Month):
		return fmt.Errorf("day %d out of range for %04d-%02d", s.Day, s.Year, s.Month)
	case s.Hour < 0 || s.Hour > 23:
		return fmt.Errorf("hour %d out of range 0..23", s.Hour)
	case s.Minute < 0 || s.Minute > 59:
		return fmt.Errorf("minute %d out of range 0..59", s.Minute)
	case s.Second < 0 || s.Second > 59:
		return fmt.Errorf("second %d out of range 0..59", s.Second)
	}

	return nil
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", s.Year, s.Month, s.Day, s.Hour, s.Minute, s.Second)
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
