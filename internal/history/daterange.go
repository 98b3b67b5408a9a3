// Package history turns user-selected date ranges into backend queries and
// keeps paginated call-history fetches race-free. All business-day math
// happens in fixed US Eastern time no matter where the host runs.
package history

import (
	"errors"
	"math"
	"time"
	_ "time/tzdata"
)

// MaxRangeDays is the widest selectable range, inclusive.
const MaxRangeDays = 31

// Eastern is the fixed display timezone all date boundaries are computed in.
var Eastern *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// tzdata is linked in; this cannot fail on a working build.
		panic("history: failed to load America/New_York: " + err.Error())
	}
	Eastern = loc
}

// ErrRangeTooLarge rejects selections spanning more than MaxRangeDays.
var ErrRangeTooLarge = errors.New("history: date range exceeds 31 days")

// DateRange is a normalized [start-of-day, end-of-day] window in Eastern.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Today returns the current Eastern calendar day.
func Today() DateRange {
	now := time.Now().In(Eastern)
	return DateRange{From: startOfDay(now), To: endOfDay(now)}
}

// Select applies the selection policy: a cleared start date falls back to
// today; a span over MaxRangeDays is rejected and the previous range is
// retained; a single-day pick normalizes to that day's full window.
func Select(prev DateRange, from, to *time.Time) (DateRange, error) {
	if from == nil {
		return Today(), nil
	}

	end := *from
	if to != nil {
		end = *to
	}

	if spanDays(*from, end) > MaxRangeDays {
		return prev, ErrRangeTooLarge
	}

	return DateRange{From: startOfDay(*from), To: endOfDay(end)}, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as an Eastern date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, Eastern)
}

// StartParam serializes the range start for the backend, as the Eastern
// calendar day.
func (r DateRange) StartParam() string {
	return r.From.In(Eastern).Format("2006-01-02")
}

// EndParam serializes the range end for the backend.
func (r DateRange) EndParam() string {
	return r.To.In(Eastern).Format("2006-01-02")
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func spanDays(from, to time.Time) int {
	return int(math.Ceil(math.Abs(to.Sub(from).Hours()) / 24))
}

func startOfDay(t time.Time) time.Time {
	t = t.In(Eastern)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Eastern)
}

func endOfDay(t time.Time) time.Time {
	t = t.In(Eastern)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), Eastern)
}
