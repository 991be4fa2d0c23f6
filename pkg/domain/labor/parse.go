package labor

import (
	"fmt"
	"strings"
	"time"
)

var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
}

// ParseTimestamp reads a timestamp in one of the accepted absolute layouts,
// or a bare clock time anchored to day's date and location.
func ParseTimestamp(s string, day time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	loc := day.Location()
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	if t, ok := parseClock(s, day); ok {
		return t, true
	}
	return time.Time{}, false
}

// TargetOnDay resolves a time of day such as "14:00" or "2:00PM" onto day.
func TargetOnDay(day time.Time, clock string) (time.Time, error) {
	t, ok := parseClock(strings.TrimSpace(clock), day)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q is not a time of day", ErrInvalidTime, clock)
	}
	return t, nil
}

func parseClock(s string, day time.Time) (time.Time, bool) {
	if day.IsZero() {
		return time.Time{}, false
	}
	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		c, err := time.Parse(layout, upper)
		if err != nil {
			continue
		}
		y, m, d := day.Date()
		return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, day.Location()), true
	}
	return time.Time{}, false
}
