// Package mission tracks shared mission state across worker restarts: the
// completion artifact the worker appends to, and the small persisted state
// object (iteration counter, resumption token) the supervisor threads
// through each iteration.
package mission

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Sentinel is the literal marker whose presence in the completion artifact
// signals that the mission is done. Matching is case-sensitive and exact.
const Sentinel = "MISSION_ACCOMPLISHED"

// IsComplete reports whether the sentinel appears anywhere in the artifact.
// A missing artifact means "not complete", never an error. The check is a
// pure read and safe to call repeatedly.
func IsComplete(path, sentinel string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), sentinel)
}

// EnsureArtifact creates an empty completion artifact if none exists.
// Existing content is never touched.
func EnsureArtifact(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking artifact: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("creating artifact: %w", err)
	}
	return f.Close()
}

// Excerpt returns up to maxBytes of the artifact's tail, suitable for
// forwarding in a notification. Missing artifact yields "". The cut lands
// on a rune boundary so the excerpt never starts mid-character.
func Excerpt(path string, maxBytes int) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	s := strings.TrimSpace(string(data))
	if len(s) <= maxBytes {
		return s
	}
	cut := len(s) - maxBytes
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}
