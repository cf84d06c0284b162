package service

import (
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/storage"
)

func toEntity(e model.Event) storage.Event {
	e = e.Normalize()
	return storage.Event{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Location:         e.Location,
		Category:         e.Category,
		Date:             e.Date,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		RepeatType:       string(e.Repeat.Type),
		RepeatInterval:   e.Repeat.Interval,
		RepeatEndDate:    e.Repeat.EndDate,
		RepeatID:         e.Repeat.ID,
		NotificationTime: e.NotificationTime,
	}
}

func fromEntity(in storage.Event) model.Event {
	return model.Event{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Category:    in.Category,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Repeat: model.RepeatRule{
			Type:     model.RepeatType(in.RepeatType),
			Interval: in.RepeatInterval,
			EndDate:  in.RepeatEndDate,
			ID:       in.RepeatID,
		},
		NotificationTime: in.NotificationTime,
	}.Normalize()
}

func toEntities(in []model.Event) []storage.Event {
	out := make([]storage.Event, 0, len(in))
	for _, e := range in {
		out = append(out, toEntity(e))
	}
	return out
}

func fromEntities(in []storage.Event) []model.Event {
	out := make([]model.Event, 0, len(in))
	for _, e := range in {
		out = append(out, fromEntity(e))
	}
	return out
}
