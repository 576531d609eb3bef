package bridge

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bouldertools/sisyphus/internal/archive"
	"github.com/bouldertools/sisyphus/internal/deps"
	"github.com/bouldertools/sisyphus/internal/tmux"
)

func hasTmux() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	return New(tmux.NewTmux(), t.TempDir())
}

func TestIsSymbolic(t *testing.T) {
	symbolic := []string{
		"Enter", "Tab", "Escape", "Space",
		"Up", "Down", "Left", "Right",
		"BSpace", "PgUp", "PgDn", "Home", "End", "DC",
		"C-c", "C-x", "M-a",
	}
	for _, k := range symbolic {
		assert.True(t, IsSymbolic(k), k)
	}

	literal := []string{"hello", "enter", "ls -la", "q", "Ctrl-c", ""}
	for _, k := range literal {
		assert.False(t, IsSymbolic(k), k)
	}
}

func TestStartEmptyCommand(t *testing.T) {
	b := newTestBridge(t)
	err := b.Start("s1", "", 0, 0)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestSendEmptyKeys(t *testing.T) {
	b := newTestBridge(t)
	err := b.Send("s1", "")
	assert.ErrorIs(t, err, ErrEmptyKeys)
}

func TestRecoverNoArchives(t *testing.T) {
	b := newTestBridge(t)
	out, err := b.Recover("ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "no interrupted logs found")
	assert.Contains(t, out, "ghost")
}

func TestRecoverReturnsTrailingLines(t *testing.T) {
	dir := t.TempDir()
	b := New(tmux.NewTmux(), dir)

	var lines []string
	for i := 0; i < 80; i++ {
		lines = append(lines, "line")
	}
	lines[79] = "last"
	path := filepath.Join(dir, "agent_interaction_s1_INTERRUPTED_20240101_000000.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	out, err := b.Recover("s1")
	require.NoError(t, err)
	got := strings.Split(out, "\n")
	assert.Len(t, got, recoverLines)
	assert.Equal(t, "last", got[len(got)-1])
}

func TestScreenshotRendererMissing(t *testing.T) {
	b := newTestBridge(t)
	b.checkRenderer = func() error { return deps.ErrRendererMissing }

	_, err := b.Screenshot("s1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, deps.ErrRendererMissing)
	assert.NotErrorIs(t, err, tmux.ErrSessionNotFound)
}

func TestSendMissingSession(t *testing.T) {
	if !hasTmux() {
		t.Skip("tmux not installed")
	}
	b := newTestBridge(t)

	err := b.Send("no-such-session", "Enter")
	require.Error(t, err)
	assert.ErrorIs(t, err, tmux.ErrSessionNotFound)
	assert.Contains(t, err.Error(), "no-such-session")
	assert.False(t, archive.HasActiveLog(b.logsDir, "no-such-session"))
}

func TestStartStopLifecycle(t *testing.T) {
	if !hasTmux() {
		t.Skip("tmux not installed")
	}
	b := newTestBridge(t)
	name := "bridge-test-lifecycle"
	t.Cleanup(func() { _ = b.tm.KillSession(tmuxName(name)) })

	require.NoError(t, b.Start(name, "sleep 60", 0, 0))
	assert.True(t, archive.HasActiveLog(b.logsDir, name))

	// Starting over a live name fails and leaves the session running.
	err := b.Start(name, "sleep 60", 0, 0)
	assert.ErrorIs(t, err, tmux.ErrSessionExists)

	records, err := b.List()
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, findStatus(t, records, name))

	require.NoError(t, b.Stop(name))
	assert.False(t, archive.HasActiveLog(b.logsDir, name))

	records, err = b.List()
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, findStatus(t, records, name))

	archives, err := filepath.Glob(filepath.Join(b.logsDir, "agent_interaction_"+name+"_*.log"))
	require.NoError(t, err)
	assert.Len(t, archives, 1)

	err = b.Stop(name)
	assert.ErrorIs(t, err, tmux.ErrSessionNotFound)
}

func findStatus(t *testing.T, records []Record, name string) Status {
	t.Helper()
	for _, r := range records {
		if r.Name == name {
			return r.Status
		}
	}
	t.Fatalf("session %q not in list", name)
	return ""
}

func TestListReportsInterrupted(t *testing.T) {
	if !hasTmux() {
		t.Skip("tmux not installed")
	}
	b := newTestBridge(t)
	name := "bridge-test-vanish"
	t.Cleanup(func() { _ = b.tm.KillSession(tmuxName(name)) })

	require.NoError(t, b.Start(name, "sleep 60", 0, 0))

	// The session dies without a stop.
	require.NoError(t, b.tm.KillSession(tmuxName(name)))

	records, err := b.List()
	require.NoError(t, err)
	assert.Equal(t, StatusInterrupted, findStatus(t, records, name))
}

func TestStartRotatesStaleLog(t *testing.T) {
	if !hasTmux() {
		t.Skip("tmux not installed")
	}
	b := newTestBridge(t)
	name := "bridge-test-stale"
	t.Cleanup(func() { _ = b.tm.KillSession(tmuxName(name)) })

	// Simulate an unclean prior exit: active log present, no session.
	require.NoError(t, b.audit(name, "send", "q"))
	require.NoError(t, os.WriteFile(
		archive.ActiveLogPath(b.logsDir, name), []byte("stale contents\n"), 0644))

	require.NoError(t, b.Start(name, "sleep 60", 120, 30))

	interrupted, err := archive.LatestInterrupted(b.logsDir, name)
	require.NoError(t, err)
	require.NotEmpty(t, interrupted)
	old, err := os.ReadFile(interrupted)
	require.NoError(t, err)
	assert.Equal(t, "stale contents\n", string(old))

	// New log starts fresh: only the start audit line.
	fresh, err := os.ReadFile(archive.ActiveLogPath(b.logsDir, name))
	require.NoError(t, err)
	assert.NotContains(t, string(fresh), "stale contents")
	assert.Contains(t, string(fresh), "start")
}

func TestCaptureAndCursor(t *testing.T) {
	if !hasTmux() {
		t.Skip("tmux not installed")
	}
	b := newTestBridge(t)
	name := "bridge-test-capture"
	t.Cleanup(func() { _ = b.tm.KillSession(tmuxName(name)) })

	require.NoError(t, b.Start(name, "sleep 60", 0, 0))

	_, err := b.Capture(name)
	require.NoError(t, err)

	pos, err := b.Cursor(name)
	require.NoError(t, err)
	assert.Regexp(t, `^\d+,\d+$`, pos)

	out, err := b.Inspect(name)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cursor: "))

	require.NoError(t, b.Stop(name))
}

func TestScreenshotDefaultPath(t *testing.T) {
	if !hasTmux() {
		t.Skip("tmux not installed")
	}
	b := newTestBridge(t)
	name := "bridge-test-shot"
	t.Cleanup(func() { _ = b.tm.KillSession(tmuxName(name)) })

	require.NoError(t, b.Start(name, "sleep 60", 0, 0))

	b.checkRenderer = func() error { return nil }
	b.render = func(ansi, outPath string) error {
		return os.WriteFile(outPath, []byte("png"), 0644)
	}

	path, err := b.Screenshot(name, "")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "screenshot_"+name+"_")
	assert.FileExists(t, path)

	require.NoError(t, b.Stop(name))
}
