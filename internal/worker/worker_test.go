package worker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgent writes a shell script that stands in for the agent binary.
func fakeAgent(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake agent scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-agent")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name string
		out  string
		ok   bool
	}{
		{"clean", `{"type":"result","result":"did work","session_id":"s-1","num_turns":7,"duration_ms":1234}`, true},
		{"leading noise", "warning: something\n{\"result\":\"ok\",\"session_id\":\"s-2\"}", true},
		{"empty", "", false},
		{"no json", "plain text output", false},
		{"truncated", `{"result":"oops`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseEnvelope([]byte(tt.out))
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestInvokeParsesResult(t *testing.T) {
	bin := fakeAgent(t, `echo '{"type":"result","result":"step done","session_id":"sess-42","num_turns":3,"duration_ms":900}'`)

	r := NewRunner(bin, "", "")
	res, err := r.Invoke(context.Background(), "do the thing", "")
	require.NoError(t, err)

	assert.Equal(t, "step done", res.Message)
	assert.Equal(t, "sess-42", res.SessionID)
	assert.Equal(t, 3, res.NumTurns)
	assert.Equal(t, int64(900), res.DurationMS)
	assert.Zero(t, res.ExitCode)
	assert.Contains(t, res.RawOutput, "step done")
}

func TestInvokeGarbledOutputFallsBackToDefaults(t *testing.T) {
	bin := fakeAgent(t, `echo 'not json at all'`)

	r := NewRunner(bin, "", "")
	res, err := r.Invoke(context.Background(), "task", "")
	require.NoError(t, err)

	assert.Equal(t, DefaultMessage, res.Message)
	assert.Empty(t, res.SessionID)
	assert.Zero(t, res.NumTurns)
	assert.Zero(t, res.DurationMS)
}

func TestInvokeNonzeroExitIsNotAnError(t *testing.T) {
	bin := fakeAgent(t, `echo "crash" >&2; exit 3`)

	r := NewRunner(bin, "", "")
	res, err := r.Invoke(context.Background(), "task", "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, DefaultMessage, res.Message)
	assert.Contains(t, res.RawOutput, "crash")
}

func TestInvokeMissingBinaryIsNotAnError(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "does-not-exist"), "", "")
	res, err := r.Invoke(context.Background(), "task", "")
	require.NoError(t, err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestInvokeThreadsResumeToken(t *testing.T) {
	// The fake agent echoes its arguments back so we can see the flags.
	bin := fakeAgent(t, `echo "$@"`)

	r := NewRunner(bin, "opus", "")
	res, err := r.Invoke(context.Background(), "continue", "sess-99")
	require.NoError(t, err)

	assert.Contains(t, res.RawOutput, "--resume sess-99")
	assert.Contains(t, res.RawOutput, "--model opus")
	assert.Contains(t, res.RawOutput, "--output-format json")
}

func TestInvokeFreshWhenNoToken(t *testing.T) {
	bin := fakeAgent(t, `echo "$@"`)

	r := NewRunner(bin, "", "")
	res, err := r.Invoke(context.Background(), "start", "")
	require.NoError(t, err)
	assert.NotContains(t, res.RawOutput, "--resume")
}

func TestInvokeCanceledContext(t *testing.T) {
	bin := fakeAgent(t, `sleep 30`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	r := NewRunner(bin, "", "")
	_, err := r.Invoke(ctx, "task", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvokeRunsInWorkDir(t *testing.T) {
	bin := fakeAgent(t, `pwd`)
	dir := t.TempDir()

	r := NewRunner(bin, "", dir)
	res, err := r.Invoke(context.Background(), "task", "")
	require.NoError(t, err)

	got, evalErr := filepath.EvalSymlinks(firstLine(res.RawOutput))
	require.NoError(t, evalErr)
	want, evalErr := filepath.EvalSymlinks(dir)
	require.NoError(t, evalErr)
	assert.Equal(t, want, got)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
