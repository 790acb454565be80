//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	repoRoot         string
	integrationBin   string
	integrationCache string
)

func TestMain(m *testing.M) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		fmt.Fprintln(os.Stderr, "integration: resolve current file")
		os.Exit(1)
	}
	repoRoot = filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))

	tmpDir, err := os.MkdirTemp(repoRoot, ".integration-bin-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration: create temp dir: %v\n", err)
		os.Exit(1)
	}

	integrationCache = filepath.Join(tmpDir, "gocache")
	if err := os.MkdirAll(integrationCache, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "integration: create gocache: %v\n", err)
		os.Exit(1)
	}

	integrationBin = filepath.Join(tmpDir, "agrolink")
	buildCmd := exec.Command("go", "build", "-o", integrationBin, "./cmd/agrolink")
	buildCmd.Dir = repoRoot
	buildCmd.Env = append(os.Environ(), "GOCACHE="+integrationCache)
	if output, err := buildCmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "integration: build cli: %v\n%s\n", err, string(output))
		os.Exit(1)
	}

	code := m.Run()
	_ = os.RemoveAll(tmpDir)
	os.Exit(code)
}

type cliHarness struct {
	home   string
	dbPath string
	config string
}

type cliResult struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()

	base, err := os.MkdirTemp(repoRoot, ".integration-run-")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(base)
	})

	return &cliHarness{
		home:   base,
		dbPath: filepath.Join(base, "agrolink.db"),
		config: filepath.Join(base, "config.toml"),
	}
}

func (h *cliHarness) env() []string {
	return []string{
		"AGROLINK_HOME=" + h.home,
		"AGROLINK_DB_PATH=" + h.dbPath,
		"AGROLINK_CONFIG_PATH=" + h.config,
		"AGROLINK_LOG_FORMAT=json",
		"GOCACHE=" + integrationCache,
	}
}

func (h *cliHarness) run(timeout time.Duration, args ...string) cliResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr strings.Builder
	cmd := exec.CommandContext(ctx, integrationBin, args...)
	cmd.Dir = h.home
	cmd.Env = append(os.Environ(), h.env()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	res := cliResult{
		stdout: strings.TrimSpace(stdout.String()),
		stderr: strings.TrimSpace(stderr.String()),
		err:    err,
	}
	if err == nil {
		return res
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res
	}
	res.exitCode = -1
	if ctx.Err() != nil {
		res.stderr = strings.TrimSpace(res.stderr + "\n" + ctx.Err().Error())
	}
	return res
}

func requireSuccess(t *testing.T, res cliResult, command ...string) string {
	t.Helper()
	require.NoError(t, res.err, "command failed: %s\nstderr:\n%s", strings.Join(command, " "), res.stderr)
	require.Equal(t, 0, res.exitCode)
	return res.stdout
}

func requireExit(t *testing.T, res cliResult, code int, command ...string) string {
	t.Helper()
	require.Error(t, res.err, "command unexpectedly succeeded: %s\noutput:\n%s", strings.Join(command, " "), res.stdout)
	require.Equal(t, code, res.exitCode, "stderr:\n%s", res.stderr)
	return res.stderr
}

func TestIntegrationMarketplaceLifecycle(t *testing.T) {
	h := newHarness(t)

	out := requireSuccess(t, h.run(10*time.Second, "--json", "user", "register",
		"--email", "jonas@example.com", "--password", "pieva", "--name", "Jonas", "--phone", "+37061234567"), "user register")
	var user struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	require.NotZero(t, user.ID)
	owner := fmt.Sprint(user.ID)

	requireSuccess(t, h.run(10*time.Second, "equipment", "add", "--owner", owner, "--title", "Plough", "--price", "1200",
		"--image", "https://img.example/1.jpg", "--image", "https://img.example/2.jpg"), "equipment add")
	requireSuccess(t, h.run(10*time.Second, "service", "add", "--owner", owner, "--name", "Ploughing", "--price", "40", "--unit", "ha"), "service add")

	out = requireSuccess(t, h.run(10*time.Second, "--json", "equipment", "mine", "--owner", owner), "equipment mine")
	var items []struct {
		ID     int64    `json:"id"`
		Images []string `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	require.Equal(t, []string{"https://img.example/1.jpg", "https://img.example/2.jpg"}, items[0].Images)

	id := fmt.Sprint(items[0].ID)
	requireExit(t, h.run(10*time.Second, "equipment", "rm", id, "--owner", "999"), 3, "equipment rm wrong owner")
	requireSuccess(t, h.run(10*time.Second, "equipment", "rm", id, "--owner", owner), "equipment rm")

	requireSuccess(t, h.run(10*time.Second, "doctor"), "doctor")
}

func TestIntegrationExitCodes(t *testing.T) {
	h := newHarness(t)

	requireSuccess(t, h.run(10*time.Second, "user", "register", "--email", "a@example.com", "--password", "x", "--name", "A"), "register")
	requireExit(t, h.run(10*time.Second, "user", "register", "--email", "a@example.com", "--password", "y", "--name", "B"), 4, "register duplicate")
	requireExit(t, h.run(10*time.Second, "user", "login", "--email", "a@example.com", "--password", "wrong"), 5, "login wrong password")
	requireExit(t, h.run(10*time.Second, "--bogus"), 2, "unknown flag")
	stderr := requireExit(t, h.run(10*time.Second, "equipment", "show", "424242"), 3, "show missing")
	require.Contains(t, stderr, "agrolink:")
}

func TestIntegrationLogsNeverCarryPasswords(t *testing.T) {
	h := newHarness(t)

	res := h.run(10*time.Second, "--log-level", "debug", "user", "register",
		"--email", "secret@example.com", "--password", "hunter2", "--name", "S")
	requireSuccess(t, res, "register")
	require.NotContains(t, res.stderr, "hunter2")
	require.NotContains(t, res.stderr, "secret@example.com")
}

func TestIntegrationConcurrentCLIEquipmentList(t *testing.T) {
	h := newHarness(t)

	requireSuccess(t, h.run(10*time.Second, "migrate"), "migrate")
	requireSuccess(t, h.run(10*time.Second, "equipment", "add", "--owner", "1", "--title", "Shared harrow", "--price", "10"), "equipment add")

	var wg sync.WaitGroup
	errCh := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := h.run(10*time.Second, "equipment", "ls")
			if res.err != nil {
				errCh <- fmt.Errorf("exit=%d stderr=%s", res.exitCode, res.stderr)
				return
			}
			if !strings.Contains(res.stdout, "Shared harrow") {
				errCh <- fmt.Errorf("missing equipment in output: %s", res.stdout)
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}
}
