package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuietHours is a daily window, in local time-of-day, during which nothing
// is delivered.
type QuietHours struct {
	Enabled bool
	Start   string // "HH:MM" or "HH:MM:SS"
	End     string
}

// Contains reports whether now, converted to loc, falls inside [Start, End).
// When End is earlier than Start the window spans midnight. Equal bounds
// form an empty window.
func (q QuietHours) Contains(now time.Time, loc *time.Location) (bool, error) {
	if !q.Enabled {
		return false, nil
	}

	start, err := parseTimeOfDay(q.Start)
	if err != nil {
		return false, err
	}
	end, err := parseTimeOfDay(q.End)
	if err != nil {
		return false, err
	}

	if loc != nil {
		now = now.In(loc)
	}
	cur := now.Hour()*3600 + now.Minute()*60 + now.Second()

	switch {
	case start == end:
		return false, nil
	case start < end:
		return cur >= start && cur < end, nil
	default:
		return cur >= start || cur < end, nil
	}
}

// parseTimeOfDay returns seconds since midnight.
func parseTimeOfDay(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	limits := []int{23, 59, 59}
	units := []int{3600, 60, 1}
	total := 0
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || len(part) != 2 || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		total += v * units[i]
	}
	return total, nil
}
