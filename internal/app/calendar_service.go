package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agrolink/agrolink/internal/storage"
)

type CalendarService struct {
	events storage.CalendarRepository
	logger *slog.Logger
}

func NewCalendarService(events storage.CalendarRepository, logger *slog.Logger) *CalendarService {
	return &CalendarService{
		events: events,
		logger: serviceLogger(logger, "calendar"),
	}
}

func (s *CalendarService) Create(ctx context.Context, req CreateEventRequest) (int64, error) {
	if strings.TrimSpace(req.Title) == "" {
		return 0, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.EventDate.IsZero() {
		return 0, fmt.Errorf("%w: event date is required", ErrValidation)
	}

	event := &storage.CalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate.UTC().Truncate(time.Millisecond),
		EventType:   req.EventType,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Error("create calendar event failed", "error", err)
		return 0, nil
	}
	return event.ID, nil
}

func (s *CalendarService) List(ctx context.Context) []storage.CalendarEvent {
	events, err := s.events.List(ctx)
	if err != nil {
		s.logger.Error("list calendar events failed", "error", err)
		return []storage.CalendarEvent{}
	}
	return events
}

// ListBetween returns events dated in [from, to).
func (s *CalendarService) ListBetween(ctx context.Context, from, to time.Time) []storage.CalendarEvent {
	if !to.After(from) {
		return []storage.CalendarEvent{}
	}
	events, err := s.events.ListBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("list calendar events in range failed", "from", from, "to", to, "error", err)
		return []storage.CalendarEvent{}
	}
	return events
}

func (s *CalendarService) Delete(ctx context.Context, id int64) bool {
	removed, err := s.events.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete calendar event failed", "event_id", id, "error", err)
		return false
	}
	return removed
}
