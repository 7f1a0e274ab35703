package settings

import (
	"strconv"
	"strings"
	"time"
)

// parseMinutes converts "HH:MM" to minutes since midnight.
func parseMinutes(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

// Allows reports whether styling may be active at t. A disabled schedule
// always allows. With start < end the window is [start, end) within one
// day; with start >= end it spans midnight, so the window is everything at
// or after start plus everything before end.
func (s Schedule) Allows(t time.Time) bool {
	if !s.Enabled {
		return true
	}
	start, okStart := parseMinutes(s.Start)
	end, okEnd := parseMinutes(s.End)
	if !okStart || !okEnd {
		// A sanitized record cannot get here; an unparseable window must
		// not lock the user out of their theme.
		return true
	}
	now := t.Hour()*60 + t.Minute()
	if start < end {
		return now >= start && now < end
	}
	return now >= start || now < end
}

// NextBoundary returns the earlier of the next start or end instant after
// t. The second return is false when the schedule is disabled or
// unparseable, meaning there is no boundary to wait for.
func (s Schedule) NextBoundary(t time.Time) (time.Time, bool) {
	if !s.Enabled {
		return time.Time{}, false
	}
	start, okStart := parseMinutes(s.Start)
	end, okEnd := parseMinutes(s.End)
	if !okStart || !okEnd {
		return time.Time{}, false
	}

	next := func(minutes int) time.Time {
		day := time.Date(t.Year(), t.Month(), t.Day(), minutes/60, minutes%60, 0, 0, t.Location())
		if !day.After(t) {
			day = day.AddDate(0, 0, 1)
		}
		return day
	}

	ns, ne := next(start), next(end)
	if ns.Before(ne) {
		return ns, true
	}
	return ne, true
}
