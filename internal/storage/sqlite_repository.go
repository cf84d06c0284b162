package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

const eventColumns = `id, title, description, location, category, date, start_time, end_time,
	repeat_type, repeat_interval, repeat_end_date, repeat_id, notification_time, created_at, updated_at`

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens path, applies migrations and returns a ready repository.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateEvents(ctx context.Context, in []Event) ([]Event, error) {
	rows := prepareNew(in, r.now().UTC())
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		for _, ev := range rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO events (`+eventColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				ev.ID, ev.Title, ev.Description, ev.Location, ev.Category, ev.Date, ev.StartTime, ev.EndTime,
				ev.RepeatType, ev.RepeatInterval, nullString(ev.RepeatEndDate), nullString(ev.RepeatID), ev.NotificationTime,
				mustTime(ev.CreatedAt), mustTime(ev.UpdatedAt),
			)
			if err != nil {
				return mapSQLiteError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SQLiteRepository) GetEvent(ctx context.Context, id string) (Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	return ev, nil
}

func (r *SQLiteRepository) UpdateEvent(ctx context.Context, in Event) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return r.updateEvent(ctx, tx, in)
	})
}

func (r *SQLiteRepository) UpdateEvents(ctx context.Context, in []Event) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, ev := range in {
			if err := r.updateEvent(ctx, tx, ev); err != nil {
				return fmt.Errorf("update %s: %w", ev.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) updateEvent(ctx context.Context, tx *sql.Tx, in Event) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, location = ?, category = ?, date = ?, start_time = ?, end_time = ?,
			repeat_type = ?, repeat_interval = ?, repeat_end_date = ?, repeat_id = ?, notification_time = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, in.Description, in.Location, in.Category, in.Date, in.StartTime, in.EndTime,
		in.RepeatType, in.RepeatInterval, nullString(in.RepeatEndDate), nullString(in.RepeatID), in.NotificationTime,
		mustTime(r.now()), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteEvents(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *SQLiteRepository) DeleteSeries(ctx context.Context, repeatID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE repeat_id = ?`, repeatID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrNotFound
	}
	return int(affected), nil
}

func (r *SQLiteRepository) ListEvents(ctx context.Context, filter EventListFilter) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.RepeatID != "" {
		clauses = append(clauses, "repeat_id = ?")
		args = append(args, filter.RepeatID)
	}
	if filter.From != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.To)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date ASC, start_time ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		ev, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func mapSQLiteError(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && (se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (Event, error) {
	var out Event
	var endDate sql.NullString
	var repeatID sql.NullString
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
	out.RepeatEndDate = endDate.String
	out.RepeatID = repeatID.String
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
