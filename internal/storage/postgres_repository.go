package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores events in PostgreSQL through a pgx pool. The
// schema and time encoding match the SQLite repository so both drivers read
// each other's dumps.
type PostgresRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresRepository(pool *pgxpool.Pool) (*PostgresRepository, error) {
	if pool == nil {
		return nil, errors.New("storage: nil pool")
	}
	return &PostgresRepository{pool: pool, now: time.Now}, nil
}

// OpenPostgres connects to dsn and bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	repo, err := NewPostgresRepository(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	schema, err := Schema()
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) CreateEvents(ctx context.Context, in []Event) ([]Event, error) {
	rows := prepareNew(in, r.now().UTC())
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, ev := range rows {
			_, err := tx.Exec(ctx, `
				INSERT INTO events (`+eventColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
				ev.ID, ev.Title, ev.Description, ev.Location, ev.Category, ev.Date, ev.StartTime, ev.EndTime,
				ev.RepeatType, ev.RepeatInterval, nullString(ev.RepeatEndDate), nullString(ev.RepeatID), ev.NotificationTime,
				mustTime(ev.CreatedAt), mustTime(ev.UpdatedAt),
			)
			if err != nil {
				return mapPgError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) GetEvent(ctx context.Context, id string) (Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanPgEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	return ev, nil
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, in Event) error {
	return r.UpdateEvents(ctx, []Event{in})
}

func (r *PostgresRepository) UpdateEvents(ctx context.Context, in []Event) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, ev := range in {
			tag, err := tx.Exec(ctx, `
				UPDATE events
				SET title = $1, description = $2, location = $3, category = $4, date = $5, start_time = $6, end_time = $7,
					repeat_type = $8, repeat_interval = $9, repeat_end_date = $10, repeat_id = $11, notification_time = $12, updated_at = $13
				WHERE id = $14`,
				ev.Title, ev.Description, ev.Location, ev.Category, ev.Date, ev.StartTime, ev.EndTime,
				ev.RepeatType, ev.RepeatInterval, nullString(ev.RepeatEndDate), nullString(ev.RepeatID), ev.NotificationTime,
				mustTime(r.now()), ev.ID,
			)
			if err != nil {
				return fmt.Errorf("update %s: %w", ev.ID, err)
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteEvents(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) DeleteSeries(ctx context.Context, repeatID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE repeat_id = $1`, repeatID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context, filter EventListFilter) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.RepeatID != "" {
		clauses = append(clauses, "repeat_id = "+next(filter.RepeatID))
	}
	if filter.From != "" {
		clauses = append(clauses, "date >= "+next(filter.From))
	}
	if filter.To != "" {
		clauses = append(clauses, "date <= "+next(filter.To))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date ASC, start_time ASC, created_at ASC`
	if filter.Limit > 0 {
		query += " LIMIT " + next(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + next(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		ev, scanErr := scanPgEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanPgEvent(s scanner) (Event, error) {
	var out Event
	var endDate *string
	var repeatID *string
	var created string
	var updated string
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &out.Location, &out.Category, &out.Date, &out.StartTime, &out.EndTime,
		&out.RepeatType, &out.RepeatInterval, &endDate, &repeatID, &out.NotificationTime, &created, &updated); err != nil {
		return Event{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Event{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Event{}, err
	}
	if endDate != nil {
		out.RepeatEndDate = *endDate
	}
	if repeatID != nil {
		out.RepeatID = *repeatID
	}
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
