package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/storage"
)

var (
	ErrNotFound       = errors.New("service: event not found")
	ErrSeriesNotFound = errors.New("service: series not found")
	ErrNotInSeries    = errors.New("service: event is not part of a series")
)

// OverlapError is returned when a save would collide with existing events
// and the caller did not opt in to overlaps.
type OverlapError struct {
	Conflicts []model.Event
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("service: overlaps %d existing event(s)", len(e.Conflicts))
}

// Lines renders one warning entry per conflicting event.
func (e *OverlapError) Lines() []string {
	out := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		out = append(out, model.FormatOverlapEntry(c))
	}
	return out
}

type SaveOptions struct {
	AllowOverlap bool
}

// SeriesPatch carries the fields of a bulk series edit. Nil fields are left
// untouched on every member.
type SeriesPatch struct {
	Title            *string
	Description      *string
	Location         *string
	Category         *string
	StartTime        *string
	EndTime          *string
	NotificationTime *int
	EndDate          *string
}

type EventService struct {
	repo   storage.Repository
	expand model.ExpandOptions
}

func NewEventService(repo storage.Repository, expand model.ExpandOptions) *EventService {
	return &EventService{repo: repo, expand: expand}
}

func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	rows, err := s.repo.ListEvents(ctx, storage.EventListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return fromEntities(rows), nil
}

// ListEvents lets the service act as the notification poller's source.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.List(ctx)
}

func (s *EventService) Get(ctx context.Context, id string) (model.Event, error) {
	row, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, mapNotFound(err, ErrNotFound)
	}
	return fromEntity(row), nil
}

func (s *EventService) SeriesMembers(ctx context.Context, repeatID string) ([]model.Event, error) {
	if strings.TrimSpace(repeatID) == "" {
		return nil, ErrSeriesNotFound
	}
	rows, err := s.repo.ListEvents(ctx, storage.EventListFilter{RepeatID: repeatID})
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrSeriesNotFound
	}
	return fromEntities(rows), nil
}

// Create validates draft, expands it when recurring, and persists every
// occurrence in one batch. Nothing is written when overlaps are found and
// opts.AllowOverlap is false.
func (s *EventService) Create(ctx context.Context, draft model.Event, opts SaveOptions) ([]model.Event, error) {
	draft = draft.Normalize()
	draft.ID = ""
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	candidates := []model.Event{draft}
	if draft.IsRecurring() {
		expanded, err := model.Expand(draft, draft.Repeat, s.expand)
		if err != nil {
			return nil, err
		}
		candidates = expanded
	}

	pool, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOverlaps(candidates, pool, opts); err != nil {
		return nil, err
	}

	rows, err := s.repo.CreateEvents(ctx, toEntities(candidates))
	if err != nil {
		return nil, fmt.Errorf("create events: %w", err)
	}
	created := fromEntities(rows)
	appLog.Info("events created", "title", draft.Title, "count", len(created), "series", created[0].Repeat.ID)
	return created, nil
}

// Update rewrites one stored event as given. The event itself is excluded
// from the overlap pool.
func (s *EventService) Update(ctx context.Context, ev model.Event, opts SaveOptions) (model.Event, error) {
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}
	if _, err := s.Get(ctx, ev.ID); err != nil {
		return model.Event{}, err
	}
	pool, err := s.List(ctx)
	if err != nil {
		return model.Event{}, err
	}
	if err := checkOverlaps([]model.Event{ev}, model.ExcludeIDs(pool, ev.ID), opts); err != nil {
		return model.Event{}, err
	}
	if err := s.repo.UpdateEvent(ctx, toEntity(ev)); err != nil {
		return model.Event{}, mapNotFound(err, ErrNotFound)
	}
	appLog.Info("event updated", "id", ev.ID, "date", ev.Date)
	return ev, nil
}

// UpdateOccurrence edits a single series member and breaks it out of its
// series.
func (s *EventService) UpdateOccurrence(ctx context.Context, ev model.Event, opts SaveOptions) (model.Event, error) {
	return s.Update(ctx, ev.DetachFromSeries(), opts)
}

// UpdateSeries applies patch to every member of repeatID. Shortening the
// series end date drops members past the new end.
func (s *EventService) UpdateSeries(ctx context.Context, repeatID string, patch SeriesPatch, opts SaveOptions) ([]model.Event, error) {
	members, err := s.SeriesMembers(ctx, repeatID)
	if err != nil {
		return nil, err
	}

	kept := make([]model.Event, 0, len(members))
	dropped := make([]string, 0)
	for _, m := range members {
		patch.apply(&m)
		if m.Repeat.EndDate != "" && m.Date > m.Repeat.EndDate {
			dropped = append(dropped, m.ID)
			continue
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		kept = append(kept, m)
	}

	pool, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOverlaps(kept, model.ExcludeSeries(pool, repeatID), opts); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateEvents(ctx, toEntities(kept)); err != nil {
		return nil, mapNotFound(err, ErrNotFound)
	}
	if len(dropped) > 0 {
		if _, err := s.repo.DeleteEvents(ctx, dropped); err != nil {
			return nil, fmt.Errorf("trim series: %w", err)
		}
	}
	appLog.Info("series updated", "series", repeatID, "updated", len(kept), "trimmed", len(dropped))
	return kept, nil
}

func (p SeriesPatch) apply(e *model.Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.NotificationTime != nil {
		e.NotificationTime = *p.NotificationTime
	}
	if p.EndDate != nil {
		e.Repeat.EndDate = *p.EndDate
	}
}

// Move changes the date of one event. A moved series member leaves its
// series.
func (s *EventService) Move(ctx context.Context, id, date string, opts SaveOptions) (model.Event, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	if _, err := model.ParseDate(date); err != nil {
		return model.Event{}, &model.ValidationError{Field: "date", Err: err}
	}
	ev.Date = date
	if ev.InSeries() {
		ev = ev.DetachFromSeries()
	}
	return s.Update(ctx, ev, opts)
}

// MoveSeries shifts every member of the series containing id by the number
// of days between that member's date and date. The series end date shifts
// with it.
func (s *EventService) MoveSeries(ctx context.Context, id, date string, opts SaveOptions) ([]model.Event, error) {
	anchor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	target, err := model.ParseDate(date)
	if err != nil {
		return nil, &model.ValidationError{Field: "date", Err: err}
	}
	if !anchor.InSeries() {
		moved, err := s.Move(ctx, id, date, opts)
		if err != nil {
			return nil, err
		}
		return []model.Event{moved}, nil
	}
	from, err := model.ParseDate(anchor.Date)
	if err != nil {
		return nil, &model.ValidationError{Field: "date", Err: err}
	}
	days := int(target.Sub(from).Hours() / 24)

	members, err := s.SeriesMembers(ctx, anchor.Repeat.ID)
	if err != nil {
		return nil, err
	}
	shifted := make([]model.Event, 0, len(members))
	for _, m := range members {
		d, err := model.ParseDate(m.Date)
		if err != nil {
			return nil, &model.ValidationError{Field: "date", Err: err}
		}
		m.Date = model.FormatDate(d.AddDate(0, 0, days))
		if m.Repeat.EndDate != "" {
			if end, err := model.ParseDate(m.Repeat.EndDate); err == nil {
				m.Repeat.EndDate = model.FormatDate(end.AddDate(0, 0, days))
			}
		}
		shifted = append(shifted, m)
	}

	pool, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOverlaps(shifted, model.ExcludeSeries(pool, anchor.Repeat.ID), opts); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEvents(ctx, toEntities(shifted)); err != nil {
		return nil, mapNotFound(err, ErrNotFound)
	}
	appLog.Info("series moved", "series", anchor.Repeat.ID, "days", days, "count", len(shifted))
	return shifted, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return mapNotFound(err, ErrNotFound)
	}
	appLog.Info("event deleted", "id", id)
	return nil
}

func (s *EventService) DeleteSeries(ctx context.Context, repeatID string) (int, error) {
	if strings.TrimSpace(repeatID) == "" {
		return 0, ErrSeriesNotFound
	}
	n, err := s.repo.DeleteSeries(ctx, repeatID)
	if err != nil {
		return 0, mapNotFound(err, ErrSeriesNotFound)
	}
	appLog.Info("series deleted", "series", repeatID, "count", n)
	return n, nil
}

// Import stores already-expanded events, typically decoded from an iCalendar
// file. Invalid entries are skipped; series ids are remapped so a repeated
// import never joins an existing series.
func (s *EventService) Import(ctx context.Context, events []model.Event) ([]model.Event, int, error) {
	newID := s.expand.NewSeriesID
	if newID == nil {
		newID = uuid.NewString
	}
	remap := make(map[string]string)
	accepted := make([]model.Event, 0, len(events))
	skipped := 0
	for _, e := range events {
		e = e.Normalize()
		e.ID = ""
		if err := e.Validate(); err != nil {
			appLog.Error("import skipped event", err, "title", e.Title)
			skipped++
			continue
		}
		if e.Repeat.ID != "" {
			if _, ok := remap[e.Repeat.ID]; !ok {
				remap[e.Repeat.ID] = newID()
			}
			e.Repeat.ID = remap[e.Repeat.ID]
		}
		accepted = append(accepted, e)
	}
	if len(accepted) == 0 {
		return []model.Event{}, skipped, nil
	}
	rows, err := s.repo.CreateEvents(ctx, toEntities(accepted))
	if err != nil {
		return nil, skipped, fmt.Errorf("import events: %w", err)
	}
	appLog.Info("events imported", "count", len(rows), "skipped", skipped)
	return fromEntities(rows), skipped, nil
}

func checkOverlaps(candidates, pool []model.Event, opts SaveOptions) error {
	conflicts := model.FindSeriesOverlaps(candidates, pool)
	if len(conflicts) == 0 {
		return nil
	}
	if opts.AllowOverlap {
		appLog.Debug("saving despite overlaps", "conflicts", len(conflicts))
		return nil
	}
	return &OverlapError{Conflicts: conflicts}
}

func mapNotFound(err, target error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return target
	}
	return err
}
