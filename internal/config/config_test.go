package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigPrecedenceFlagOverEnv(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[storage]
path = "/data/file.db"
`)

	flagPath := "/data/flag.db"
	cfg, _, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		DotEnvPath: missingDotEnv(t),
		Env: map[string]string{
			"AGROLINK_DB_PATH": "/data/env.db",
		},
		Flags: FlagOverrides{
			DBPath: &flagPath,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "/data/flag.db", cfg.Storage.Path)
}

func TestLoadConfigPrecedenceEnvOverDotEnv(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[logging]
level = "warn"
`)
	dotEnvPath := writeDotEnvFile(t, "AGROLINK_LOG_LEVEL=debug\nAGROLINK_LOG_FORMAT=json\n")

	cfg, report, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		DotEnvPath: dotEnvPath,
		Env: map[string]string{
			"AGROLINK_LOG_LEVEL": "error",
			"AGROLINK_HOME":      t.TempDir(),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "error", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, dotEnvPath, report.DotEnvPath)
}

func TestLoadConfigPrecedenceDotEnvOverFile(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[storage]
busy_timeout = "2s"
`)
	dotEnvPath := writeDotEnvFile(t, "AGROLINK_BUSY_TIMEOUT=9s\n")

	cfg, _, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		DotEnvPath: dotEnvPath,
		Env:        map[string]string{"AGROLINK_HOME": t.TempDir()},
	})
	require.NoError(t, err)
	require.Equal(t, 9*time.Second, cfg.Storage.BusyTimeout)
}

func TestLoadConfigPrecedenceFileOverDefault(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[storage]
busy_timeout = "2s"
`)

	cfg, report, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		DotEnvPath: missingDotEnv(t),
		Env:        map[string]string{"AGROLINK_HOME": t.TempDir()},
	})
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Storage.BusyTimeout)
	require.Equal(t, cfgPath, report.ConfigPath)
	require.Empty(t, report.DotEnvPath)
}

func TestLoadConfigFromTOMLParsesAllSupportedFields(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[storage]
path = "/srv/agrolink/agrolink.db"
mode = "local"
busy_timeout = "7s"

[logging]
level = "debug"
format = "json"
file = "/tmp/agrolink.log"
max_size_mb = 42
max_files = 9
`)

	cfg, _, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		DotEnvPath: missingDotEnv(t),
	})
	require.NoError(t, err)
	require.Equal(t, "/srv/agrolink/agrolink.db", cfg.Storage.Path)
	require.Equal(t, StorageModeLocal, cfg.Storage.Mode)
	require.Equal(t, 7*time.Second, cfg.Storage.BusyTimeout)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "/tmp/agrolink.log", cfg.Logging.File)
	require.Equal(t, 42, cfg.Logging.MaxSizeMB)
	require.Equal(t, 9, cfg.Logging.MaxFiles)
}

func TestLoadConfigDefaultsPathUnderDataHome(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	cfg, report, err := Load(LoadOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		DotEnvPath: missingDotEnv(t),
		Env:        map[string]string{"AGROLINK_HOME": home},
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, DBFileName), cfg.Storage.Path)
	require.Empty(t, report.ConfigPath)
	require.Empty(t, report.Warnings)
}

func TestLoadConfigRemoteModeIsAcceptedWithWarning(t *testing.T) {
	t.Parallel()

	cfg, report, err := Load(LoadOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		DotEnvPath: missingDotEnv(t),
		Env: map[string]string{
			"AGROLINK_HOME":         t.TempDir(),
			"AGROLINK_STORAGE_MODE": "remote",
		},
	})
	require.NoError(t, err)
	require.Equal(t, StorageModeRemote, cfg.Storage.Mode)
	require.Len(t, report.Warnings, 1)
}

func TestLoadConfigValidationRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{name: "unknown-mode", contents: "[storage]\nmode = \"cloud\"\n"},
		{name: "negative-busy-timeout", contents: "[storage]\nbusy_timeout = \"-1s\"\n"},
		{name: "huge-busy-timeout", contents: "[storage]\nbusy_timeout = \"2m\"\n"},
		{name: "bad-duration", contents: "[storage]\nbusy_timeout = \"soon\"\n"},
		{name: "unknown-level", contents: "[logging]\nlevel = \"loud\"\n"},
		{name: "unknown-format", contents: "[logging]\nformat = \"xml\"\n"},
		{name: "negative-rotation", contents: "[logging]\nmax_files = -1\n"},
		{name: "malformed-toml", contents: "[storage\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfgPath := writeConfigFile(t, tt.contents)
			_, _, err := Load(LoadOptions{
				ConfigPath: cfgPath,
				DotEnvPath: missingDotEnv(t),
				Env:        map[string]string{"AGROLINK_HOME": t.TempDir()},
			})
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[logging]
max_size_mb = 3
`)

	cfg, report, err := Load(LoadOptions{
		DotEnvPath: missingDotEnv(t),
		Env: map[string]string{
			"AGROLINK_CONFIG_PATH": cfgPath,
			"AGROLINK_HOME":        t.TempDir(),
		},
	})
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Logging.MaxSizeMB)
	require.Equal(t, cfgPath, report.ConfigPath)
}

func TestDataDirPrefersAgrolinkHome(t *testing.T) {
	t.Parallel()

	dir, err := DataDir(map[string]string{"AGROLINK_HOME": "/opt/agrolink"})
	require.NoError(t, err)
	require.Equal(t, "/opt/agrolink", dir)
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o600))
	return p
}

func writeDotEnvFile(t *testing.T, contents string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o600))
	return p
}

func missingDotEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".env")
}
