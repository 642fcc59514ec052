package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a plain calendar day (YYYY-MM-DD) with no timezone attached. It is
// stored and transported as-is; it only becomes a time.Time at the moment a
// comparison against the clock is needed, in an explicitly chosen location.
type Date string

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(t.Format("2006-01-02")), nil
}

func (d Date) String() string { return string(d) }

// TimeOfDay is a wall-clock time (HH:MM), also timezone-free.
type TimeOfDay string

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("invalid time %q: hour out of range", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid time %q: minute out of range", s)
	}
	return TimeOfDay(fmt.Sprintf("%02d:%02d", h, m)), nil
}

func (t TimeOfDay) String() string { return string(t) }

// StartTime combines a date and time-of-day into an instant in the given
// location. The fields are parsed directly so the calendar day can never
// drift through a UTC round-trip.
func StartTime(d Date, t TimeOfDay, loc *time.Location) time.Time {
	var year, month, day, hour, min int
	fmt.Sscanf(string(d), "%d-%d-%d", &year, &month, &day)
	fmt.Sscanf(string(t), "%d:%d", &hour, &min)
	return time.Date(year, time.Month(month), day, hour, min, 0, 0, loc)
}
