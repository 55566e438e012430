package journal

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// TotalWeeks is the length of the yearly plan.
const TotalWeeks = 52

// DateLayout is the wire format of profile start dates.
const DateLayout = "2006-01-02"

var ErrInvalidWeek = errors.New("week must be between 1 and 52")
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// ValidWeek reports whether w is a week of the plan.
func ValidWeek(w int) bool {
	return w >= 1 && w <= TotalWeeks
}

// CurrentWeek returns the active week for a plan starting on startDate.
// No start date means week 1. The result is clamped to [1, 52].
func CurrentWeek(startDate *time.Time, now time.Time) int {
	if startDate == nil || startDate.IsZero() {
		return 1
	}

	start := utcMidnight(*startDate)
	days := int(math.Floor(now.Sub(start).Hours() / 24))
	if days < 0 {
		return 1
	}
	return clampWeek(days/7 + 1)
}

// ScheduledDate is the day week becomes current, or nil without a start date.
func ScheduledDate(startDate *time.Time, week int) *time.Time {
	if startDate == nil || startDate.IsZero() {
		return nil
	}
	d := utcMidnight(*startDate).AddDate(0, 0, (week-1)*7)
	return &d
}

// ParseStartDate parses a YYYY-MM-DD date. Blank input yields nil.
func ParseStartDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return &t, nil
}

// FormatDate renders d as YYYY-MM-DD, or "" when nil.
func FormatDate(d *time.Time) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.UTC().Format(DateLayout)
}

func utcMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clampWeek(w int) int {
	if w < 1 {
		return 1
	}
	if w > TotalWeeks {
		return TotalWeeks
	}
	return w
}
