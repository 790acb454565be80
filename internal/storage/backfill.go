package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Reserved account that owns equipment listed before listings had owners.
const (
	AdminEmail    = "admin@agrolink.lt"
	adminPassword = "admin123"
	adminName     = "Administratorius"
	adminPhone    = "+370 600 00000"
)

// backfillOwners creates the reserved admin and hands it every ownerless
// equipment row. The admin row doubles as the done-marker: when it exists
// nothing is touched. Callers hold migrateMu.
func (s *Store) backfillOwners(ctx context.Context) (BackfillResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("backfill owners: begin tx: %w", err)
	}

	var adminID int64
	err = tx.GetContext(ctx, &adminID, `SELECT id FROM users WHERE email = ?`, AdminEmail)
	switch {
	case err == nil:
		_ = tx.Rollback()
		return BackfillResult{AdminID: adminID}, nil
	case !errors.Is(err, sql.ErrNoRows):
		_ = tx.Rollback()
		return BackfillResult{}, fmt.Errorf("backfill owners: lookup admin: %w", err)
	}

	inserted, err := tx.ExecContext(ctx, `
		INSERT INTO users(email, password, name, phone, createdAt)
		VALUES(?, ?, ?, ?, ?)
	`, AdminEmail, adminPassword, adminName, adminPhone, toMillis(s.nowUTC()))
	if err != nil {
		_ = tx.Rollback()
		return BackfillResult{}, fmt.Errorf("backfill owners: insert admin: %w", err)
	}
	adminID, err = inserted.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return BackfillResult{}, fmt.Errorf("backfill owners: admin id: %w", err)
	}

	updated, err := tx.ExecContext(ctx, `UPDATE equipment SET userId = ? WHERE userId IS NULL`, adminID)
	if err != nil {
		_ = tx.Rollback()
		return BackfillResult{}, fmt.Errorf("backfill owners: assign equipment: %w", err)
	}
	reassigned, err := updated.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return BackfillResult{}, fmt.Errorf("backfill owners: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return BackfillResult{}, fmt.Errorf("backfill owners: commit: %w", err)
	}
	return BackfillResult{AdminID: adminID, Created: true, Reassigned: reassigned}, nil
}
