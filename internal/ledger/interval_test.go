package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"scheduled at same start", Point(at(10, 0)), Point(at(10, 0)), true},
		{"scheduled at different starts", Point(at(10, 0)), Point(at(10, 1)), false},
		{"scheduled at completed start", Point(at(10, 0)), Span(at(10, 0), at(11, 0)), true},
		{"scheduled inside completed", Point(at(10, 30)), Span(at(10, 0), at(11, 0)), true},
		{"scheduled at completed end", Point(at(11, 0)), Span(at(10, 0), at(11, 0)), false},
		{"scheduled before completed", Point(at(9, 59)), Span(at(10, 0), at(11, 0)), false},
		{"completed partially overlapping", Span(at(10, 0), at(11, 0)), Span(at(10, 30), at(10, 45)), true},
		{"completed back to back", Span(at(10, 0), at(11, 0)), Span(at(11, 0), at(12, 0)), false},
		{"completed containing", Span(at(9, 0), at(12, 0)), Span(at(10, 0), at(11, 0)), true},
		{"completed disjoint", Span(at(9, 0), at(9, 30)), Span(at(10, 0), at(11, 0)), false},
		{"zero length completed never overlaps", Span(at(10, 0), at(10, 0)), Span(at(10, 0), at(10, 0)), false},
		{"scheduled at zero length completed", Point(at(10, 0)), Span(at(10, 0), at(10, 0)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}
