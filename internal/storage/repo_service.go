package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const serviceColumns = `id, serviceName, toolType, description, price,
	COALESCE(priceUnit, 'ha') AS priceUnit, providerName, providerPhone, imageUrl, userId, createdAt`

type serviceRepository struct {
	store *Store
}

func (r *serviceRepository) Create(ctx context.Context, service *Service) error {
	if service == nil {
		return fmt.Errorf("create service: service is nil")
	}
	db, err := r.store.conn(ctx)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	if service.PriceUnit == "" {
		service.PriceUnit = PriceUnitHectare
	}
	service.CreatedAt = r.store.nowUTC()
	result, err := db.ExecContext(ctx, `
		INSERT INTO services(serviceName, toolType, description, price, priceUnit, providerName, providerPhone, imageUrl, userId, createdAt)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, service.ServiceName, service.ToolType, service.Description, service.Price, string(service.PriceUnit),
		service.ProviderName, service.ProviderPhone, service.ImageURL, nullID(service.OwnerID), toMillis(service.CreatedAt))
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create service: last insert id: %w", err)
	}
	service.ID = id
	return nil
}

func (r *serviceRepository) List(ctx context.Context) ([]Service, error) {
	return r.list(ctx, "list services", `
		SELECT `+serviceColumns+`
		FROM services
		ORDER BY createdAt DESC, id DESC
	`)
}

func (r *serviceRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Service, error) {
	return r.list(ctx, "list services by owner", `
		SELECT `+serviceColumns+`
		FROM services
		WHERE userId = ?
		ORDER BY createdAt DESC, id DESC
	`, ownerID)
}

func (r *serviceRepository) Get(ctx context.Context, id int64) (*Service, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}

	var row serviceRow
	if err := db.GetContext(ctx, &row, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return row.toDomain(), nil
}

func (r *serviceRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.store, "services", id)
}

func (r *serviceRepository) list(ctx context.Context, op, query string, args ...any) ([]Service, error) {
	db, err := r.store.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rows []serviceRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]Service, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

// deleteByID removes a row by id alone; only the listing tables without an
// ownership check use it.
func deleteByID(ctx context.Context, store *Store, table string, id int64) (bool, error) {
	db, err := store.conn(ctx)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}

	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: rows affected: %w", table, err)
	}
	return count > 0, nil
}
