package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps events in process. It backs tests and throwaway
// sessions started with --memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	events map[string]Event
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[string]Event), now: time.Now}
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) CreateEvents(_ context.Context, in []Event) ([]Event, error) {
	rows := prepareNew(in, r.now().UTC())
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, len(rows))
	for _, ev := range rows {
		if _, ok := r.events[ev.ID]; ok {
			return nil, ErrDuplicate
		}
		if _, ok := seen[ev.ID]; ok {
			return nil, ErrDuplicate
		}
		seen[ev.ID] = struct{}{}
	}
	for _, ev := range rows {
		r.events[ev.ID] = ev
	}
	return rows, nil
}

func (r *MemoryRepository) GetEvent(_ context.Context, id string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return ev, nil
}

func (r *MemoryRepository) UpdateEvent(ctx context.Context, in Event) error {
	return r.UpdateEvents(ctx, []Event{in})
}

func (r *MemoryRepository) UpdateEvents(_ context.Context, in []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range in {
		if _, ok := r.events[ev.ID]; !ok {
			return ErrNotFound
		}
	}
	now := r.now().UTC()
	for _, ev := range in {
		ev.CreatedAt = r.events[ev.ID].CreatedAt
		ev.UpdatedAt = now
		r.events[ev.ID] = ev
	}
	return nil
}

func (r *MemoryRepository) DeleteEvent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *MemoryRepository) DeleteEvents(_ context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := r.events[id]; ok {
			delete(r.events, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteSeries(_ context.Context, repeatID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ev := range r.events {
		if repeatID != "" && ev.RepeatID == repeatID {
			delete(r.events, id)
			n++
		}
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

func (r *MemoryRepository) ListEvents(_ context.Context, filter EventListFilter) ([]Event, error) {
	r.mu.RLock()
	out := make([]Event, 0, len(r.events))
	for _, ev := range r.events {
		if filter.matches(ev) {
			out = append(out, ev)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []Event{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}
