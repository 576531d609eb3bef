// Package tmux wraps the tmux binary for managing agent terminal sessions.
//
// All state lives in the tmux server's session table; this package holds no
// session state of its own. Callers re-query existence before every
// operation rather than caching it.
package tmux

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Sentinel errors classified from tmux stderr.
var (
	// ErrNoServer indicates no tmux server is running.
	ErrNoServer = errors.New("no tmux server running")

	// ErrSessionExists indicates a session with that name already exists.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionNotFound indicates the named session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
)

// Default pane geometry when the caller doesn't specify one.
const (
	DefaultWidth  = 200
	DefaultHeight = 50
)

// Tmux wraps tmux operations for named sessions.
type Tmux struct {
	// BinPath is the path to the tmux binary (default "tmux").
	BinPath string
}

// NewTmux creates a Tmux wrapper using the default binary path.
func NewTmux() *Tmux {
	return &Tmux{BinPath: "tmux"}
}

// run executes a tmux command and returns stdout, classifying errors.
func (t *Tmux) run(args ...string) (string, error) {
	cmd := exec.Command(t.BinPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return stdout.String(), t.wrapError(err, stderr.String(), args)
	}
	return stdout.String(), nil
}

// wrapError maps tmux stderr text to sentinel errors.
func (t *Tmux) wrapError(err error, stderr string, args []string) error {
	switch {
	case strings.Contains(stderr, "no server running"),
		strings.Contains(stderr, "error connecting to"):
		return ErrNoServer
	case strings.Contains(stderr, "duplicate session"):
		return ErrSessionExists
	case strings.Contains(stderr, "session not found"),
		strings.Contains(stderr, "can't find session"),
		strings.Contains(stderr, "can't find pane"):
		return ErrSessionNotFound
	}
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		return fmt.Errorf("tmux %s: %w", strings.Join(args, " "), err)
	}
	return fmt.Errorf("tmux %s: %s", strings.Join(args, " "), msg)
}

// HasSession checks whether a session exists.
// A missing server counts as "does not exist", not an error.
func (t *Tmux) HasSession(name string) (bool, error) {
	// "=" forces exact match; otherwise tmux prefix-matches names.
	_, err := t.run("has-session", "-t", "="+name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrNoServer) {
		return false, nil
	}
	return false, err
}

// NewSession creates a detached session of the given size running command.
// Width/height of 0 fall back to the defaults. Returns ErrSessionExists if
// the name is taken.
func (t *Tmux) NewSession(name, command string, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	args := []string{
		"new-session", "-d",
		"-s", name,
		"-x", strconv.Itoa(width),
		"-y", strconv.Itoa(height),
	}
	if command != "" {
		args = append(args, command)
	}
	_, err := t.run(args...)
	return err
}

// KillSession terminates a session.
func (t *Tmux) KillSession(name string) error {
	_, err := t.run("kill-session", "-t", "="+name)
	return err
}

// ListSessions returns the names of all sessions.
// No running server yields an empty list, not an error.
func (t *Tmux) ListSessions() ([]string, error) {
	out, err := t.run("list-sessions", "-F", "#{session_name}")
	if err != nil {
		if errors.Is(err, ErrNoServer) {
			return nil, nil
		}
		return nil, err
	}
	var sessions []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			sessions = append(sessions, line)
		}
	}
	return sessions, nil
}

// SendKeys sends a key name or sequence to a session. Key names use tmux
// syntax (Enter, Escape, C-c, Up, ...). Use SendKeysLiteral for text that
// must not be interpreted.
func (t *Tmux) SendKeys(name, keys string) error {
	_, err := t.run("send-keys", "-t", "="+name+":", keys)
	return err
}

// SendKeysLiteral sends text verbatim, without key-name interpretation.
func (t *Tmux) SendKeysLiteral(name, text string) error {
	_, err := t.run("send-keys", "-t", "="+name+":", "-l", text)
	return err
}

// CapturePane returns the visible pane contents as plain text.
func (t *Tmux) CapturePane(name string) (string, error) {
	return t.run("capture-pane", "-t", "="+name+":", "-p")
}

// CapturePaneANSI returns the visible pane contents with escape
// sequences for colors and attributes preserved.
func (t *Tmux) CapturePaneANSI(name string) (string, error) {
	return t.run("capture-pane", "-t", "="+name+":", "-p", "-e")
}

// CursorPos returns the cursor position in the session's active pane.
func (t *Tmux) CursorPos(name string) (int, int, error) {
	out, err := t.run("display-message", "-t", "="+name+":", "-p", "#{cursor_x},#{cursor_y}")
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Split(strings.TrimSpace(out), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected cursor output %q", strings.TrimSpace(out))
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing cursor x: %w", err)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing cursor y: %w", err)
	}
	return x, y, nil
}
