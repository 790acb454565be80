package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agrolink/agrolink/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRedactionSensitiveFields(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"password", "Password", "new_password", "secret", "token", "api_key", "authorization"} {
		out := logSingleField(t, key, "hunter2")
		require.Equalf(t, "[REDACTED]", out[key], "field %s", key)
	}
}

func TestRedactionMasksEmail(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "email", "jonas@agrolink.lt")
	require.Equal(t, "j***@agrolink.lt", out["email"])

	out = logSingleField(t, "email", "not-an-email")
	require.Equal(t, "[REDACTED]", out["email"])
}

func TestRedactionMasksPhone(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "phone", "+370 600 12345")
	require.Equal(t, "***345", out["phone"])
}

func TestRedactionAppliesToGroupsAndWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewRedactingHandler(base)).With("password", "from-with")
	logger.Info("test", slog.Group("user", slog.String("password", "nested"), slog.String("name", "Ona")))

	require.NotContains(t, buf.String(), "from-with")
	require.NotContains(t, buf.String(), "nested")
	require.Contains(t, buf.String(), "Ona")
}

func TestNonSensitiveFieldsPassThrough(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "title", "Plough")
	require.Equal(t, "Plough", out["title"])
}

func TestNewBuildsJSONLoggerAtLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("dropped")
	logger.Warn("kept", "password", "pw")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &out))
	require.Equal(t, "kept", out["msg"])
	require.Equal(t, "[REDACTED]", out["password"])
}

func TestNewRejectsUnknownLevelAndFormat(t *testing.T) {
	t.Parallel()

	_, _, err := New(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
	_, _, err = New(config.LoggingConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestNewWritesToRotatingFile(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "logs", "agrolink.log")
	var stderr bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{Level: "info", Format: "text", File: logPath}, &stderr)
	require.NoError(t, err)

	logger.Info("hello from file")
	require.NoError(t, closer.Close())

	require.Empty(t, stderr.String())
	files, err := filepath.Glob(logPath)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestLogRotationCreatesNewFileAfterTenMiB(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, "agrolink.log")

	writer, err := NewRotatingWriter(RotationConfig{
		File:      logPath,
		MaxSizeMB: 10,
		MaxFiles:  5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chunk := bytes.Repeat([]byte("a"), 1024*1024)
	for i := 0; i < 11; i++ {
		_, err = writer.Write(chunk)
		require.NoError(t, err)
	}

	files, err := filepath.Glob(filepath.Join(logDir, "agrolink*"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(files), 2)
}

func TestLogRotationRetainsMaxFiles(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, "agrolink.log")

	writer, err := NewRotatingWriter(RotationConfig{
		File:      logPath,
		MaxSizeMB: 1,
		MaxFiles:  3,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chunk := bytes.Repeat([]byte("b"), 1024*1024)
	for i := 0; i < 12; i++ {
		_, err := writer.Write(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	require.Eventually(t, func() bool {
		files, err := filepath.Glob(filepath.Join(logDir, "agrolink*"))
		if err != nil {
			return false
		}
		backups := 0
		for _, f := range files {
			if f != logPath {
				backups++
			}
		}
		return backups <= 3
	}, 2*time.Second, 20*time.Millisecond)
}

func logSingleField(t *testing.T, key, value string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewRedactingHandler(base))
	logger.Info("test", key, value)

	line := bytes.TrimSpace(buf.Bytes())
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(line, &out))
	return out
}
