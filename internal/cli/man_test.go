package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateManPagesWritesCommandTree(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "man")
	require.NoError(t, GenerateManPages(dir, testBuildInfo()))

	for _, name := range []string{"agrolink.1", "agrolink-equipment-add.1", "agrolink-migrate.1"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoErrorf(t, err, "missing %s", name)
		require.Contains(t, string(raw), "AGROLINK")
	}
}
