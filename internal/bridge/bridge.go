// Package bridge manages named terminal sessions for agents to drive and
// observe interactive applications.
//
// Each session is a detached tmux session named agent_<name> with a
// per-session interaction log under the logs directory. The bridge keeps a
// registry of session records but treats the tmux session table as the
// source of truth: every operation reconciles its record against tmux
// before acting. Mutations on the same name are serialized across
// processes with a file lock under logs/.locks.
package bridge

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/bouldertools/sisyphus/internal/archive"
	"github.com/bouldertools/sisyphus/internal/deps"
	"github.com/bouldertools/sisyphus/internal/tmux"
)

// sessionPrefix namespaces bridge sessions in the tmux session table so
// unrelated sessions on the same server are never touched.
const sessionPrefix = "agent_"

// recoverLines is how much of an interrupted log Recover returns.
const recoverLines = 50

var (
	// ErrEmptyCommand is returned by Start when no command is given.
	ErrEmptyCommand = errors.New("command required")

	// ErrEmptyKeys is returned by Send when no keys are given.
	ErrEmptyKeys = errors.New("keys required")
)

// Status of a session record.
type Status string

const (
	StatusRunning     Status = "running"
	StatusStopped     Status = "stopped"
	StatusInterrupted Status = "interrupted"
)

// Record describes one named session.
type Record struct {
	Name   string
	Status Status
}

// Bridge operates named sessions against a tmux server and a logs
// directory. Safe for use from one process at a time per name; cross-name
// operations are independent.
type Bridge struct {
	tm      *tmux.Tmux
	logsDir string

	// registry caches records keyed by session name, reconciled against
	// tmux on every lookup.
	registry map[string]*Record

	// checkRenderer and render are swapped out in tests.
	checkRenderer func() error
	render        func(ansi, outPath string) error
}

// New returns a Bridge over the given tmux wrapper and logs directory.
func New(tm *tmux.Tmux, logsDir string) *Bridge {
	return &Bridge{
		tm:            tm,
		logsDir:       logsDir,
		registry:      make(map[string]*Record),
		checkRenderer: deps.RendererAvailable,
		render:        renderImage,
	}
}

func tmuxName(name string) string {
	return sessionPrefix + name
}

// lock serializes cross-process mutations for one session name. Callers
// must Unlock the returned lock.
func (b *Bridge) lock(name string) (*flock.Flock, error) {
	dir := filepath.Join(b.logsDir, ".locks")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	fl := flock.New(filepath.Join(dir, name+".lock"))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("locking session %s: %w", name, err)
	}
	return fl, nil
}

// reconcile refreshes the registry record for name against the tmux
// session table and returns the record plus whether the session is live.
func (b *Bridge) reconcile(name string) (*Record, bool, error) {
	alive, err := b.tm.HasSession(tmuxName(name))
	if err != nil {
		return nil, false, err
	}
	rec, ok := b.registry[name]
	if !ok {
		rec = &Record{Name: name}
		b.registry[name] = rec
	}
	if alive {
		rec.Status = StatusRunning
	} else if rec.Status == StatusRunning {
		// It was running when we last looked; the process went away
		// without a stop.
		rec.Status = StatusInterrupted
	}
	return rec, alive, nil
}

func (b *Bridge) audit(name, op, detail string) error {
	return archive.AppendAudit(b.logsDir, name, op, detail)
}

// requireLive returns an error naming the session when it is not running.
func (b *Bridge) requireLive(name string) error {
	_, alive, err := b.reconcile(name)
	if err != nil {
		return err
	}
	if !alive {
		return fmt.Errorf("session %q: %w", name, tmux.ErrSessionNotFound)
	}
	return nil
}

// Start creates a new session running command at the given size. A stale
// active log from a prior unclean exit is archived with an INTERRUPTED tag
// before the new log begins. Starting over a live name is an error.
func (b *Bridge) Start(name, command string, width, height int) error {
	if command == "" {
		return ErrEmptyCommand
	}
	fl, err := b.lock(name)
	if err != nil {
		return err
	}
	defer fl.Unlock()

	rec, alive, err := b.reconcile(name)
	if err != nil {
		return err
	}
	if alive {
		return fmt.Errorf("session %q: %w", name, tmux.ErrSessionExists)
	}

	if archive.HasActiveLog(b.logsDir, name) {
		if _, err := archive.RotateInterrupted(b.logsDir, name); err != nil {
			return err
		}
	}

	if width <= 0 {
		width = tmux.DefaultWidth
	}
	if height <= 0 {
		height = tmux.DefaultHeight
	}
	if err := b.tm.NewSession(tmuxName(name), command, width, height); err != nil {
		return err
	}
	rec.Status = StatusRunning

	return b.audit(name, "start", fmt.Sprintf("cmd=%q size=%dx%d", command, width, height))
}

// Send forwards keys to a live session. Recognized tmux key names (Enter,
// Up, C-c, ...) are sent symbolically; everything else is sent as literal
// text.
func (b *Bridge) Send(name, keys string) error {
	if keys == "" {
		return ErrEmptyKeys
	}
	fl, err := b.lock(name)
	if err != nil {
		return err
	}
	defer fl.Unlock()

	if err := b.requireLive(name); err != nil {
		return err
	}
	if IsSymbolic(keys) {
		err = b.tm.SendKeys(tmuxName(name), keys)
	} else {
		err = b.tm.SendKeysLiteral(tmuxName(name), keys)
	}
	if err != nil {
		return err
	}
	return b.audit(name, "send", keys)
}

// Capture returns the session's visible screen as plain text.
func (b *Bridge) Capture(name string) (string, error) {
	if err := b.requireLive(name); err != nil {
		return "", err
	}
	out, err := b.tm.CapturePane(tmuxName(name))
	if err != nil {
		return "", err
	}
	if err := b.audit(name, "capture", fmt.Sprintf("%d bytes", len(out))); err != nil {
		return "", err
	}
	return out, nil
}

// CaptureANSI returns the screen with color and attribute escape
// sequences preserved.
func (b *Bridge) CaptureANSI(name string) (string, error) {
	if err := b.requireLive(name); err != nil {
		return "", err
	}
	out, err := b.tm.CapturePaneANSI(tmuxName(name))
	if err != nil {
		return "", err
	}
	if err := b.audit(name, "capture-ansi", fmt.Sprintf("%d bytes", len(out))); err != nil {
		return "", err
	}
	return out, nil
}

// Cursor returns the cursor position formatted as "x,y".
func (b *Bridge) Cursor(name string) (string, error) {
	if err := b.requireLive(name); err != nil {
		return "", err
	}
	x, y, err := b.tm.CursorPos(tmuxName(name))
	if err != nil {
		return "", err
	}
	pos := fmt.Sprintf("%d,%d", x, y)
	if err := b.audit(name, "cursor", pos); err != nil {
		return "", err
	}
	return pos, nil
}

// Inspect returns the cursor position followed by the plain-text screen.
func (b *Bridge) Inspect(name string) (string, error) {
	if err := b.requireLive(name); err != nil {
		return "", err
	}
	x, y, err := b.tm.CursorPos(tmuxName(name))
	if err != nil {
		return "", err
	}
	screen, err := b.tm.CapturePane(tmuxName(name))
	if err != nil {
		return "", err
	}
	if err := b.audit(name, "inspect", fmt.Sprintf("cursor=%d,%d", x, y)); err != nil {
		return "", err
	}
	return fmt.Sprintf("cursor: %d,%d\n%s", x, y, screen), nil
}

// Screenshot renders the session's ANSI capture to an image file and
// returns the file path. An empty file gets a timestamped default under
// the logs directory. A missing renderer is reported as
// deps.ErrRendererMissing, distinct from a missing session.
func (b *Bridge) Screenshot(name, file string) (string, error) {
	if err := b.checkRenderer(); err != nil {
		return "", err
	}
	if err := b.requireLive(name); err != nil {
		return "", err
	}
	ansi, err := b.tm.CapturePaneANSI(tmuxName(name))
	if err != nil {
		return "", err
	}
	if file == "" {
		stamp := time.Now().Format("20060102_150405")
		file = filepath.Join(b.logsDir, fmt.Sprintf("screenshot_%s_%s.png", name, stamp))
	}
	if err := b.render(ansi, file); err != nil {
		return "", fmt.Errorf("rendering screenshot: %w", err)
	}
	if err := b.audit(name, "screenshot", file); err != nil {
		return "", err
	}
	return file, nil
}

func renderImage(ansi, outPath string) error {
	cmd := exec.Command(deps.RendererBin, "-o", outPath)
	cmd.Stdin = strings.NewReader(ansi)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %s", deps.RendererBin, msg)
		}
		return fmt.Errorf("%s: %w", deps.RendererBin, err)
	}
	return nil
}

// Recover returns the trailing lines of the most recent INTERRUPTED
// archive for name. No interrupted archives is not an error; the returned
// message says so.
func (b *Bridge) Recover(name string) (string, error) {
	path, err := archive.LatestInterrupted(b.logsDir, name)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "no interrupted logs found for " + name, nil
	}
	lines, err := archive.Tail(path, recoverLines)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// Stop terminates a live session and rotates its log to a clean archive.
func (b *Bridge) Stop(name string) error {
	fl, err := b.lock(name)
	if err != nil {
		return err
	}
	defer fl.Unlock()

	rec, alive, err := b.reconcile(name)
	if err != nil {
		return err
	}
	if !alive {
		return fmt.Errorf("session %q: %w", name, tmux.ErrSessionNotFound)
	}
	if err := b.audit(name, "stop", ""); err != nil {
		return err
	}
	if err := b.tm.KillSession(tmuxName(name)); err != nil {
		return err
	}
	rec.Status = StatusStopped
	if _, err := archive.Rotate(b.logsDir, name); err != nil {
		return err
	}
	return nil
}

// List returns a record for every live bridge session, plus any session
// this bridge has operated on, reconciled against the tmux session table.
// A registered session that disappeared without a stop shows as
// interrupted.
func (b *Bridge) List() ([]Record, error) {
	sessions, err := b.tm.ListSessions()
	if err != nil {
		return nil, err
	}
	live := make(map[string]bool)
	for _, s := range sessions {
		if strings.HasPrefix(s, sessionPrefix) {
			live[strings.TrimPrefix(s, sessionPrefix)] = true
		}
	}

	for name := range live {
		if _, ok := b.registry[name]; !ok {
			b.registry[name] = &Record{Name: name}
		}
	}
	records := make([]Record, 0, len(b.registry))
	for name, rec := range b.registry {
		if live[name] {
			rec.Status = StatusRunning
		} else if rec.Status == StatusRunning {
			rec.Status = StatusInterrupted
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}
