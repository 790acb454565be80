package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const equipmentColumns = `id, title, description, price, sellerName, sellerPhone, imageUrl, images, userId, createdAt`

type equipmentRepository struct {
	store *Store
}

func (r *equipmentRepository) Create(ctx context.Context, item *Equipment) error {
	if item == nil {
		return fmt.Errorf("create equipment: item is nil")
	}
	db, err := r.store.conn(ctx)
	if err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}

	images, err := packImages(item.Images)
	if err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}

	item.CreatedAt = r.store.nowUTC()
	result, err := db.ExecContext(ctx, `
		INSERT INTO equipment(title, description, price, sellerName, sellerPhone, imageUrl, images, userId, createdAt)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.Title, item.Description, item.Price, item.SellerName, item.SellerPhone, item.ImageURL, images, nullID(item.OwnerID), toMillis(item.CreatedAt))
	if err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create equipment: last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (r *equipmentRepository) List(ctx context.Context) ([]Equipment, error) {
	return r.list(ctx, "list equipment", `
		SELECT `+equipmentColumns+`
		FROM equipment
		ORDER BY createdAt DESC, id DESC
	`)
}

func (r *equipmentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Equipment, error) {
	return r.list(ctx, "list equipment by owner", `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE userId = ?
		ORDER BY createdAt DESC, id DESC
	`, ownerID)
}

func (r *equipmentRepository) Get(ctx context.Context, id int64) (*Equipment, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get equipment: %w", err)
	}

	var row equipmentRow
	if err := db.GetContext(ctx, &row, `SELECT `+equipmentColumns+` FROM equipment WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	item, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return item, nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return false, fmt.Errorf("delete equipment: %w", err)
	}

	result, err := db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ? AND userId = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete equipment: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete equipment: rows affected: %w", err)
	}
	return count > 0, nil
}

func (r *equipmentRepository) list(ctx context.Context, op, query string, args ...any) ([]Equipment, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rows []equipmentRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]Equipment, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *item)
	}
	return out, nil
}
