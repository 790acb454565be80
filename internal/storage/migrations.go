package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const legacyServicePriceColumn = "pricePerHectare"

type tableSpec struct {
	name       string
	definition string
}

type columnSpec struct {
	table      string
	name       string
	definition string
}

// tables carry the full current column set. Files created by older releases
// keep their original definitions and are brought forward by addedColumns.
var tables = []tableSpec{
	{
		name: "users",
		definition: `CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT,
			createdAt INTEGER
		)`,
	},
	{
		name: "equipment",
		definition: `CREATE TABLE IF NOT EXISTS equipment (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			price REAL,
			sellerName TEXT,
			sellerPhone TEXT,
			imageUrl TEXT,
			images TEXT,
			userId INTEGER,
			createdAt INTEGER,
			FOREIGN KEY (userId) REFERENCES users (id)
		)`,
	},
	{
		name: "services",
		definition: `CREATE TABLE IF NOT EXISTS services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			serviceName TEXT NOT NULL,
			toolType TEXT,
			description TEXT,
			price REAL,
			priceUnit TEXT DEFAULT 'ha',
			providerName TEXT,
			providerPhone TEXT,
			imageUrl TEXT,
			userId INTEGER,
			createdAt INTEGER,
			FOREIGN KEY (userId) REFERENCES users (id)
		)`,
	},
	{
		name: "news",
		definition: `CREATE TABLE IF NOT EXISTS news (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT,
			timestamp INTEGER
		)`,
	},
	{
		name: "calendar_events",
		definition: `CREATE TABLE IF NOT EXISTS calendar_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			eventDate INTEGER,
			eventType TEXT
		)`,
	},
}

// addedColumns lists every column introduced after its table first shipped.
// Each entry is applied independently, so the order only matters within a
// table and no entry relies on another being applied in the same run.
var addedColumns = []columnSpec{
	{table: "equipment", name: "createdAt", definition: `INTEGER`},
	{table: "equipment", name: "images", definition: `TEXT`},
	{table: "equipment", name: "userId", definition: `INTEGER`},
	{table: "services", name: "createdAt", definition: `INTEGER`},
	{table: "services", name: "toolType", definition: `TEXT`},
	{table: "services", name: "imageUrl", definition: `TEXT`},
	{table: "services", name: "userId", definition: `INTEGER`},
	{table: "services", name: "price", definition: `REAL`},
	{table: "services", name: "priceUnit", definition: `TEXT DEFAULT 'ha'`},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_equipment_user_id ON equipment(userId)`,
	`CREATE INDEX IF NOT EXISTS idx_equipment_created_at ON equipment(createdAt)`,
	`CREATE INDEX IF NOT EXISTS idx_services_created_at ON services(createdAt)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_events_event_date ON calendar_events(eventDate)`,
}

// EnsureSchema brings the file up to the current schema and runs the
// ownership backfill. It is safe to call any number of times; structural
// failures are returned wrapped in ErrSchemaInit, backfill failures are only
// logged.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()

	if err := s.migrateStructure(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaInit, err)
	}

	result, err := s.backfillOwners(ctx)
	if err != nil {
		s.logger.Warn("ownership backfill failed; legacy equipment stays ownerless", "error", err)
		return nil
	}
	if result.Created {
		s.logger.Info("created admin user and assigned legacy equipment",
			"admin_id", result.AdminID,
			"reassigned", result.Reassigned,
		)
	}
	return nil
}

func (s *Store) migrateStructure(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema migration: %w", err)
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, table.definition); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("create table %s: %w", table.name, err)
		}
	}

	for _, column := range addedColumns {
		added, err := addColumnIfAbsent(ctx, tx, column)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if added {
			s.logger.Info("added column", "table", column.table, "column", column.name)
		}
	}

	for _, stmt := range indexes {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("create index: %w", err)
		}
	}

	copied, err := copyLegacyServicePrice(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if copied > 0 {
		s.logger.Info("copied legacy service prices", "rows", copied)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema migration: %w", err)
	}
	return nil
}

func addColumnIfAbsent(ctx context.Context, tx *sqlx.Tx, column columnSpec) (bool, error) {
	exists, err := columnExists(ctx, tx, column.table, column.name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	stmt := `ALTER TABLE ` + column.table + ` ADD COLUMN ` + column.name + ` ` + column.definition
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		if isDuplicateColumn(err) {
			return false, nil
		}
		return false, fmt.Errorf("add %s.%s: %w", column.table, column.name, err)
	}
	return true, nil
}

// copyLegacyServicePrice fills price from the deprecated per-hectare column.
// A price that is already set is never overwritten.
func copyLegacyServicePrice(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	exists, err := columnExists(ctx, tx, "services", legacyServicePriceColumn)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE services
		SET price = `+legacyServicePriceColumn+`
		WHERE price IS NULL AND `+legacyServicePriceColumn+` IS NOT NULL
	`)
	if err != nil {
		return 0, fmt.Errorf("copy legacy service price: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("copy legacy service price: rows affected: %w", err)
	}
	return count, nil
}

func columnExists(ctx context.Context, tx *sqlx.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, `PRAGMA table_info(`+table+`)`)
	if err != nil {
		return false, fmt.Errorf("query table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dfltVal sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dfltVal, &pk); err != nil {
			return false, fmt.Errorf("scan table info %s: %w", table, err)
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate table info %s: %w", table, err)
	}
	return false, nil
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
