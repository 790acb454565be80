package storage

import (
	"context"
	"fmt"
)

type newsRepository struct {
	store *Store
}

func (r *newsRepository) Create(ctx context.Context, item *NewsItem) error {
	if item == nil {
		return fmt.Errorf("create news: item is nil")
	}
	db, err := r.store.conn(ctx)
	if err != nil {
		return fmt.Errorf("create news: %w", err)
	}

	item.Timestamp = r.store.nowUTC()
	result, err := db.ExecContext(ctx, `
		INSERT INTO news(title, content, timestamp)
		VALUES(?, ?, ?)
	`, item.Title, item.Content, toMillis(item.Timestamp))
	if err != nil {
		return fmt.Errorf("create news: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create news: last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (r *newsRepository) List(ctx context.Context) ([]NewsItem, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}

	var rows []newsRow
	if err := db.SelectContext(ctx, &rows, `
		SELECT id, title, content, timestamp
		FROM news
		ORDER BY timestamp DESC, id DESC
	`); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}

	out := make([]NewsItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

func (r *newsRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.store, "news", id)
}
