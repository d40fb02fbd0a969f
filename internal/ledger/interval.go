package ledger

import "time"

// Interval is the time a match occupies for one of its players: the half-open
// range [Start, End) once an end is known, or the single instant Start while
// the match is only scheduled.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// Point is the interval of a scheduled match.
func Point(start time.Time) Interval {
	return Interval{Start: start}
}

// Span is the interval of a completed match.
func Span(start, end time.Time) Interval {
	return Interval{Start: start, End: &end}
}

// Scheduled reports whether the interval is a single instant.
func (i Interval) Scheduled() bool {
	return i.End == nil
}

// Overlaps reports whether two intervals of the same player conflict.
func (i Interval) Overlaps(o Interval) bool {
	switch {
	case i.Scheduled() && o.Scheduled():
		return i.Start.Equal(o.Start)
	case i.Scheduled():
		return o.contains(i.Start)
	case o.Scheduled():
		return i.contains(o.Start)
	default:
		return i.Start.Before(*o.End) && o.Start.Before(*i.End)
	}
}

func (i Interval) contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(*i.End)
}
