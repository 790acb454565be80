package debug

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/agrolink/agrolink/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestWriteBundleWritesJSONFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bundle.json")
	bundle := NewBundle()
	bundle.Version = map[string]any{"version": "1.2.3"}
	bundle.Store = &storage.SchemaReport{Path: "/tmp/agrolink.db", JournalMode: "wal"}

	require.NoError(t, WriteBundle(path, bundle))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Bundle
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, bundle.GOOS, decoded.GOOS)
	require.Equal(t, "1.2.3", decoded.Version["version"])
	require.Equal(t, "/tmp/agrolink.db", decoded.Store.Path)
}

func TestWriteBundleRequiresOutputPath(t *testing.T) {
	t.Parallel()

	err := WriteBundle("", NewBundle())
	require.Error(t, err)
	require.Contains(t, err.Error(), "output path is required")
}

func TestStoreChecksFlagOwnerlessEquipment(t *testing.T) {
	t.Parallel()

	healthy := StoreChecks(storage.SchemaReport{
		JournalMode: "wal",
		Tables:      []storage.TableReport{{Name: "users", Columns: []string{"id"}}},
		AdminID:     1,
	})
	for _, check := range healthy {
		require.Truef(t, check.OK, "check %s: %s", check.Name, check.Message)
	}

	degraded := StoreChecks(storage.SchemaReport{
		JournalMode:        "delete",
		Tables:             []storage.TableReport{{Name: "users", Columns: []string{"id"}}},
		OwnerlessEquipment: 3,
	})
	failed := map[string]bool{}
	for _, check := range degraded {
		if !check.OK {
			failed[check.Name] = true
		}
	}
	require.Equal(t, map[string]bool{"journal": true, "admin": true, "ownership": true}, failed)
}
