package storage

import (
	"context"
	"fmt"
	"time"
)

const calendarEventColumns = `id, title, description, eventDate, eventType`

type calendarRepository struct {
	store *Store
}

func (r *calendarRepository) Create(ctx context.Context, event *CalendarEvent) error {
	if event == nil {
		return fmt.Errorf("create calendar event: event is nil")
	}
	db, err := r.store.conn(ctx)
	if err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO calendar_events(title, description, eventDate, eventType)
		VALUES(?, ?, ?, ?)
	`, event.Title, event.Description, toMillis(event.EventDate), event.EventType)
	if err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create calendar event: last insert id: %w", err)
	}
	event.ID = id
	return nil
}

func (r *calendarRepository) List(ctx context.Context) ([]CalendarEvent, error) {
	return r.list(ctx, "list calendar events", `
		SELECT `+calendarEventColumns+`
		FROM calendar_events
		ORDER BY eventDate ASC, id ASC
	`)
}

// ListBetween returns events with from <= eventDate < to.
func (r *calendarRepository) ListBetween(ctx context.Context, from, to time.Time) ([]CalendarEvent, error) {
	return r.list(ctx, "list calendar events between", `
		SELECT `+calendarEventColumns+`
		FROM calendar_events
		WHERE eventDate >= ? AND eventDate < ?
		ORDER BY eventDate ASC, id ASC
	`, toMillis(from), toMillis(to))
}

func (r *calendarRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.store, "calendar_events", id)
}

func (r *calendarRepository) list(ctx context.Context, op, query string, args ...any) ([]CalendarEvent, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rows []calendarEventRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]CalendarEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}
