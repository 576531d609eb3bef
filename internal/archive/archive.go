// Package archive manages rotation of per-session interaction logs.
//
// Each named session writes to a single active log. When the session stops
// cleanly the log is rotated to a timestamped archive; when a stale log is
// discovered at the next start (the prior session never stopped), it is
// rotated with an INTERRUPTED tag instead. Archives are renames of the
// active log and are never written to again.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Timestamp layout used in archive filenames: YYYYMMDD_HHMMSS.
const stampLayout = "20060102_150405"

const logPrefix = "agent_interaction_"

// interruptedTag marks archives rotated from an uncleanly ended session.
const interruptedTag = "INTERRUPTED"

// ActiveLogPath returns the active log path for a session name.
func ActiveLogPath(dir, name string) string {
	return filepath.Join(dir, logPrefix+name+".log")
}

// Rotate renames the active log for name to a clean-stop archive and
// returns the archive path. A missing active log is a no-op ("", nil).
func Rotate(dir, name string) (string, error) {
	return rotate(dir, name, "")
}

// RotateInterrupted renames the active log for name to an INTERRUPTED
// archive and returns the archive path. A missing active log is a no-op.
func RotateInterrupted(dir, name string) (string, error) {
	return rotate(dir, name, interruptedTag)
}

func rotate(dir, name, tag string) (string, error) {
	active := ActiveLogPath(dir, name)
	if _, err := os.Stat(active); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("checking active log: %w", err)
	}

	stamp := time.Now().Format(stampLayout)
	base := logPrefix + name
	if tag != "" {
		base += "_" + tag
	}
	archived := filepath.Join(dir, base+"_"+stamp+".log")
	if err := os.Rename(active, archived); err != nil {
		return "", fmt.Errorf("archiving log: %w", err)
	}
	return archived, nil
}

// LatestInterrupted returns the newest INTERRUPTED archive for name, or ""
// if none exist. Archives sort by their embedded timestamp, which matches
// lexical order.
func LatestInterrupted(dir, name string) (string, error) {
	pattern := filepath.Join(dir, logPrefix+name+"_"+interruptedTag+"_*.log")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Tail returns the trailing n lines of a file.
func Tail(path string, n int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// HasActiveLog reports whether an un-rotated active log exists for name.
// Its presence at start time means the prior session never stopped cleanly.
func HasActiveLog(dir, name string) bool {
	_, err := os.Stat(ActiveLogPath(dir, name))
	return err == nil
}

// AppendAudit appends a timestamped audit line to the active log, creating
// it if needed. The audit trail records bridge operations independent of
// the terminal application's own output.
func AppendAudit(dir, name, op, detail string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(ActiveLogPath(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), op)
	if detail != "" {
		line += ": " + detail
	}
	_, err = f.WriteString(line + "\n")
	return err
}
