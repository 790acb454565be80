package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agrolink/agrolink/internal/storage"
)

type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type Bundle struct {
	GeneratedAt string                `json:"generated_at"`
	GOOS        string                `json:"goos"`
	GOARCH      string                `json:"goarch"`
	Version     map[string]any        `json:"version,omitempty"`
	Config      map[string]any        `json:"config,omitempty"`
	Store       *storage.SchemaReport `json:"store,omitempty"`
	Checks      []Check               `json:"checks,omitempty"`
	Notes       []string              `json:"notes,omitempty"`
}

func NewBundle() Bundle {
	return Bundle{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339Nano),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
	}
}

// StoreChecks turns a schema report into pass/fail checks.
func StoreChecks(report storage.SchemaReport) []Check {
	checks := make([]Check, 0, 4)

	missing := 0
	for _, table := range report.Tables {
		if len(table.Columns) == 0 {
			missing++
		}
	}
	checks = append(checks, Check{
		Name:    "tables",
		OK:      missing == 0 && len(report.Tables) > 0,
		Message: fmt.Sprintf("%d tables, %d missing", len(report.Tables), missing),
	})

	checks = append(checks, Check{
		Name:    "journal",
		OK:      report.JournalMode == "wal",
		Message: "journal_mode=" + report.JournalMode,
	})

	if report.AdminID > 0 {
		checks = append(checks, Check{Name: "admin", OK: true, Message: fmt.Sprintf("%s has id %d", storage.AdminEmail, report.AdminID)})
	} else {
		checks = append(checks, Check{Name: "admin", OK: false, Message: "ownership backfill has not run"})
	}

	checks = append(checks, Check{
		Name:    "ownership",
		OK:      report.OwnerlessEquipment == 0,
		Message: fmt.Sprintf("%d equipment rows without owner", report.OwnerlessEquipment),
	})
	return checks
}

func WriteBundle(outputPath string, bundle Bundle) error {
	if outputPath == "" {
		return fmt.Errorf("write debug bundle: output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o700); err != nil {
		return fmt.Errorf("write debug bundle: create output directory: %w", err)
	}

	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("write debug bundle: marshal json: %w", err)
	}
	if err := os.WriteFile(outputPath, payload, 0o600); err != nil {
		return fmt.Errorf("write debug bundle: %w", err)
	}
	return nil
}
