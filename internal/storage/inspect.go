package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type TableReport struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int64    `json:"rows"`
}

// SchemaReport describes the state of a store file for diagnostics.
type SchemaReport struct {
	Path               string        `json:"path"`
	JournalMode        string        `json:"journal_mode"`
	Tables             []TableReport `json:"tables"`
	AdminID            int64         `json:"admin_id,omitempty"`
	OwnerlessEquipment int64         `json:"ownerless_equipment"`
	LegacyPriceColumn  bool          `json:"legacy_price_column"`
}

// Inspect reports the columns and row counts of every store table. It runs
// the lazy initialization first, so the report reflects the current schema.
func (s *Store) Inspect(ctx context.Context) (SchemaReport, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return SchemaReport{}, fmt.Errorf("inspect store: %w", err)
	}

	report := SchemaReport{Path: s.path, Tables: make([]TableReport, 0, len(tables))}
	if err := db.GetContext(ctx, &report.JournalMode, `PRAGMA journal_mode`); err != nil {
		return SchemaReport{}, fmt.Errorf("inspect store: journal mode: %w", err)
	}

	for _, table := range tables {
		columns := []string{}
		if err := db.SelectContext(ctx, &columns, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, table.name); err != nil {
			return SchemaReport{}, fmt.Errorf("inspect store: columns of %s: %w", table.name, err)
		}
		var rows int64
		if err := db.GetContext(ctx, &rows, `SELECT COUNT(1) FROM `+table.name); err != nil {
			return SchemaReport{}, fmt.Errorf("inspect store: count %s: %w", table.name, err)
		}
		report.Tables = append(report.Tables, TableReport{Name: table.name, Columns: columns, Rows: rows})

		if table.name == "services" {
			for _, column := range columns {
				if column == legacyServicePriceColumn {
					report.LegacyPriceColumn = true
				}
			}
		}
	}

	err = db.GetContext(ctx, &report.AdminID, `SELECT id FROM users WHERE email = ?`, AdminEmail)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return SchemaReport{}, fmt.Errorf("inspect store: admin: %w", err)
	}
	if err := db.GetContext(ctx, &report.OwnerlessEquipment, `SELECT COUNT(1) FROM equipment WHERE userId IS NULL`); err != nil {
		return SchemaReport{}, fmt.Errorf("inspect store: ownerless equipment: %w", err)
	}
	return report, nil
}

func (r SchemaReport) Table(name string) (TableReport, bool) {
	for _, table := range r.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return TableReport{}, false
}
