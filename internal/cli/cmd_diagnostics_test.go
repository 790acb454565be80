package cli

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	debugpkg "github.com/agrolink/agrolink/internal/debug"
	"github.com/agrolink/agrolink/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestStatusReportsRowCounts(t *testing.T) {
	t.Parallel()

	h := newCLIHarness(t)
	h.registerUser("ona@example.com", "Ona")

	out, err := h.run("--json", "status")
	require.NoError(t, err)

	var report storage.SchemaReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, h.dbPath, report.Path)
	users, ok := report.Table("users")
	require.True(t, ok)
	require.EqualValues(t, 2, users.Rows)

	out, err = h.run("status")
	require.NoError(t, err)
	require.Contains(t, out, "equipment")
	require.Contains(t, out, h.dbPath)
}

func TestDoctorPassesOnFreshStore(t *testing.T) {
	t.Parallel()

	h := newCLIHarness(t)
	out, err := h.run("--json", "doctor")
	require.NoError(t, err)

	var payload struct {
		Checks []debugpkg.Check `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.NotEmpty(t, payload.Checks)
	for _, check := range payload.Checks {
		require.Truef(t, check.OK, "%s: %s", check.Name, check.Message)
	}
}

func TestDoctorReportsBrokenStore(t *testing.T) {
	t.Parallel()

	h := newCLIHarness(t)
	raw, err := sql.Open("sqlite", h.dbPath)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE VIEW services AS SELECT 1 AS id`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	out, err := h.run("doctor")
	require.Error(t, err)
	require.Equal(t, ExitCodeIO, exitCode(err))
	require.Contains(t, out, "store: fail")
}

func TestDebugBundleWritesStoreReport(t *testing.T) {
	t.Parallel()

	h := newCLIHarness(t)
	output := filepath.Join(t.TempDir(), "bundle.json")

	out, err := h.run("--json", "debug", "bundle", "--output", output)
	require.NoError(t, err)
	require.Contains(t, out, output)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var bundle debugpkg.Bundle
	require.NoError(t, json.Unmarshal(raw, &bundle))
	require.Equal(t, "1.2.3", bundle.Version["version"])
	require.NotNil(t, bundle.Store)
	require.Equal(t, h.dbPath, bundle.Store.Path)
	require.Equal(t, h.dbPath, bundle.Config["db_path"])
}

func TestDebugBundleRequiresOutput(t *testing.T) {
	t.Parallel()

	h := newCLIHarness(t)
	_, err := h.run("debug", "bundle")
	require.Equal(t, ExitCodeUsage, exitCode(err))
}
