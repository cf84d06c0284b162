package model

import "fmt"

type span struct {
	start int
	end   int
}

func eventSpan(e Event) (span, bool) {
	if _, err := ParseDate(e.Date); err != nil {
		return span{}, false
	}
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return span{}, false
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return span{}, false
	}
	return span{start: start, end: end}, true
}

// Overlaps reports whether a and b share a date and their half-open
// [start, end) intervals intersect. Back-to-back events do not overlap.
func Overlaps(a, b Event) bool {
	if a.Date != b.Date {
		return false
	}
	sa, ok := eventSpan(a)
	if !ok {
		return false
	}
	sb, ok := eventSpan(b)
	if !ok {
		return false
	}
	return sa.start < sb.end && sb.start < sa.end
}

// FindOverlaps returns the pool members that overlap candidate, in pool
// order. Callers editing an event must remove it from pool themselves.
func FindOverlaps(candidate Event, pool []Event) []Event {
	out := make([]Event, 0)
	if _, ok := eventSpan(candidate); !ok {
		return out
	}
	for _, other := range pool {
		if Overlaps(candidate, other) {
			out = append(out, other)
		}
	}
	return out
}

// FindSeriesOverlaps checks every candidate against pool and returns each
// conflicting pool member once, in pool order.
func FindSeriesOverlaps(candidates []Event, pool []Event) []Event {
	hit := make([]bool, len(pool))
	for _, c := range candidates {
		if _, ok := eventSpan(c); !ok {
			continue
		}
		for i, other := range pool {
			if !hit[i] && Overlaps(c, other) {
				hit[i] = true
			}
		}
	}
	out := make([]Event, 0)
	for i, other := range pool {
		if hit[i] {
			out = append(out, other)
		}
	}
	return out
}

func FormatOverlapEntry(e Event) string {
	return fmt.Sprintf("%s (%s %s-%s)", e.Title, e.Date, e.StartTime, e.EndTime)
}

// ExcludeIDs returns pool without the events whose id is in ids.
func ExcludeIDs(pool []Event, ids ...string) []Event {
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	out := make([]Event, 0, len(pool))
	for _, e := range pool {
		if _, ok := skip[e.ID]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ExcludeSeries returns pool without the members of series repeatID.
func ExcludeSeries(pool []Event, repeatID string) []Event {
	out := make([]Event, 0, len(pool))
	for _, e := range pool {
		if repeatID != "" && e.Repeat.ID == repeatID {
			continue
		}
		out = append(out, e)
	}
	return out
}
