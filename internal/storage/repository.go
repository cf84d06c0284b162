package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: duplicate id")
)

// Repository persists events and the series they belong to. Batch writes are
// atomic: either every row is written or none is.
type Repository interface {
	CreateEvents(ctx context.Context, in []Event) ([]Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	UpdateEvent(ctx context.Context, in Event) error
	UpdateEvents(ctx context.Context, in []Event) error
	DeleteEvent(ctx context.Context, id string) error
	DeleteEvents(ctx context.Context, ids []string) (int, error)
	DeleteSeries(ctx context.Context, repeatID string) (int, error)
	ListEvents(ctx context.Context, filter EventListFilter) ([]Event, error)
	Close() error
}
