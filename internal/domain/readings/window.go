package readings

import (
	"fmt"
	"strings"
	"time"
)

// WindowKind classifies how a time window was derived.
type WindowKind string

const (
	// WindowAll places no time bound on the query.
	WindowAll WindowKind = "all"
	// WindowPoint brackets a specific timestamp by one hour on each side.
	WindowPoint WindowKind = "point"
	// WindowDay covers a single calendar day.
	WindowDay WindowKind = "day"
	// WindowMonth covers a full calendar month.
	WindowMonth WindowKind = "month"
)

// ClockRange narrows a day window to a span of wall-clock time, inclusive on
// both ends.
type ClockRange struct {
	From time.Duration // offset from midnight
	To   time.Duration
}

// TimeWindow is the resolved query interval. Start/End are meaningful only
// when Kind is not WindowAll; End is exclusive for day windows and inclusive
// otherwise. Instant is set for point windows so closest-match analysis can
// rank candidates by distance. Clock, when non-nil, further restricts rows to
// a wall-clock span within the window.
type TimeWindow struct {
	Kind    WindowKind
	Start   time.Time
	End     time.Time
	Instant time.Time
	Clock   *ClockRange
}

// Bounded reports whether the window constrains time at all.
func (w TimeWindow) Bounded() bool { return w.Kind != WindowAll }

// EndExclusive reports whether End is an exclusive bound.
func (w TimeWindow) EndExclusive() bool { return w.Kind == WindowDay }

// Contains reports whether t falls inside the window, honoring the bound
// semantics and any clock narrowing.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.Bounded() {
		if t.Before(w.Start) {
			return false
		}
		if w.EndExclusive() {
			if !t.Before(w.End) {
				return false
			}
		} else if t.After(w.End) {
			return false
		}
	}
	if w.Clock != nil {
		offset := time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second
		if offset < w.Clock.From || offset > w.Clock.To {
			return false
		}
	}
	return true
}

// DateFilter is a parsed calendar filter: either a whole month or one day.
type DateFilter struct {
	Year  int
	Month time.Month
	Day   int // zero when the filter covers the whole month
}

// ParseDateFilter parses "YYYY-MM" or "YYYY-MM-DD".
func ParseDateFilter(s string) (DateFilter, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01", s); err == nil {
		return DateFilter{Year: t.Year(), Month: t.Month()}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateFilter{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
	}
	return DateFilter{}, fmt.Errorf("%w: date filter must be YYYY-MM or YYYY-MM-DD, got %q", ErrInvalidArgument, s)
}

const pointRadius = time.Hour

// ResolveWindow turns the request's time components into a concrete window.
// Precedence: a specific timestamp wins over a date filter, which wins over
// no bound at all. The bounds apply to every reading type; only the
// time-of-day narrowing is skipped for sleep, whose rows are keyed by date.
func ResolveWindow(specific *time.Time, date *DateFilter, timeRange string, readingType Type) TimeWindow {
	if specific != nil {
		return TimeWindow{
			Kind:    WindowPoint,
			Start:   specific.Add(-pointRadius),
			End:     specific.Add(pointRadius),
			Instant: *specific,
		}
	}

	if date != nil {
		if date.Day != 0 {
			start := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC)
			w := TimeWindow{Kind: WindowDay, Start: start, End: start.AddDate(0, 0, 1)}
			if readingType != TypeSleep {
				w.Clock = clockRange(timeRange)
			}
			return w
		}
		start := time.Date(date.Year, date.Month, 1, 0, 0, 0, 0, time.UTC)
		// AddDate normalizes, so this lands on the month's true last day,
		// February in leap years included.
		end := start.AddDate(0, 1, 0).Add(-time.Second)
		return TimeWindow{Kind: WindowMonth, Start: start, End: end}
	}

	return TimeWindow{Kind: WindowAll}
}

// clockRange maps a time-of-day label to its wall-clock span. Afternoon is
// accepted but applies no narrowing; unknown labels are ignored the same way.
func clockRange(label string) *ClockRange {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "morning", "am":
		return &ClockRange{From: 6 * time.Hour, To: 12 * time.Hour}
	case "night", "evening", "pm":
		return &ClockRange{From: 18 * time.Hour, To: 23*time.Hour + 59*time.Minute}
	default:
		return nil
	}
}
