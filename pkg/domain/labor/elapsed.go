package labor

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// ElapsedHours converts a shift interval into worked hours.
//
// A nil end means the shift is still running and now is used instead. Zero
// timestamps yield 0. A negative difference between a recorded end and the
// start, smaller than a day, is read as a wall-clock shift crossing midnight
// and gets 24h added; any other negative difference floors to 0. Unpaid break
// minutes are subtracted and the result is never negative.
func ElapsedHours(start time.Time, end *time.Time, unpaidBreakMinutes float64, now time.Time) float64 {
	if start.IsZero() {
		return 0
	}

	stop := now
	recorded := end != nil
	if recorded {
		stop = *end
	}
	if stop.IsZero() {
		return 0
	}

	raw := stop.Sub(start)
	if raw < 0 {
		if !recorded {
			return 0
		}
		wrapped, ok := recordedEnd(start, stop)
		if !ok {
			return 0
		}
		raw = wrapped.Sub(start)
	}

	return clampHours(raw.Hours() - breakHours(unpaidBreakMinutes))
}

// recordedEnd places a recorded end on the timeline of start. An end less than
// a day before start is a shift crossing midnight and moves to the next day.
func recordedEnd(start, end time.Time) (time.Time, bool) {
	raw := end.Sub(start)
	if raw >= 0 {
		return end, true
	}
	if raw <= -day {
		return time.Time{}, false
	}
	return end.Add(day), true
}

// ElapsedHoursText is ElapsedHours over unparsed form values. Empty end means
// the shift is still running. Unparseable start or end yields 0 and an
// unparseable break value counts as no break.
func ElapsedHoursText(start, end, unpaidBreakMinutes string, now time.Time) float64 {
	s, ok := ParseTimestamp(start, now)
	if !ok {
		return 0
	}

	var e *time.Time
	if strings.TrimSpace(end) != "" {
		t, ok := ParseTimestamp(end, now)
		if !ok {
			return 0
		}
		e = &t
	}

	breaks, err := strconv.ParseFloat(strings.TrimSpace(unpaidBreakMinutes), 64)
	if err != nil {
		breaks = 0
	}

	return ElapsedHours(s, e, breaks, now)
}

func clampHours(h float64) float64 {
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return h
}
