// Package deps checks the external tools the session bridge relies on:
// the terminal multiplexer, the ANSI-to-image renderer used for
// screenshots, and a monospace font for the renderer to draw with.
package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// External binaries the bridge shells out to.
const (
	// MultiplexerBin hosts the named sessions.
	MultiplexerBin = "tmux"

	// RendererBin converts ANSI captures into images.
	RendererBin = "textimg"

	// FontFamily is the monospace family the renderer needs. Lookup goes
	// through fc-list, so fontconfig has to be present too.
	FontFamily = "DejaVu Sans Mono"
)

// ErrRendererMissing distinguishes a missing renderer from other failures
// so screenshot can report it separately from "session not found".
var ErrRendererMissing = fmt.Errorf("screenshot renderer %q not installed", RendererBin)

// Status of a single dependency check.
type Status int

const (
	StatusOK Status = iota
	StatusMissing
)

// CheckResult reports one dependency's availability.
type CheckResult struct {
	Name    string
	Status  Status
	Message string
}

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// runFontList is swapped out in tests; the default shells out to fc-list.
var runFontList = func() (string, error) {
	out, err := exec.Command("fc-list", ":family").Output()
	return string(out), err
}

// CheckMultiplexer verifies the terminal multiplexer is installed.
func CheckMultiplexer() CheckResult {
	return checkBinary("multiplexer", MultiplexerBin)
}

// CheckRenderer verifies the screenshot renderer is installed.
func CheckRenderer() CheckResult {
	return checkBinary("renderer", RendererBin)
}

// RendererAvailable returns ErrRendererMissing when the renderer binary
// cannot be found. Used by the screenshot operation.
func RendererAvailable() error {
	if _, err := lookPath(RendererBin); err != nil {
		return ErrRendererMissing
	}
	return nil
}

// CheckFont verifies the renderer font is discoverable via fontconfig.
func CheckFont() CheckResult {
	out, err := runFontList()
	if err != nil {
		return CheckResult{
			Name:    "font",
			Status:  StatusMissing,
			Message: "fc-list unavailable; cannot verify font " + FontFamily,
		}
	}
	if !strings.Contains(out, FontFamily) {
		return CheckResult{
			Name:    "font",
			Status:  StatusMissing,
			Message: fmt.Sprintf("font %q not found", FontFamily),
		}
	}
	return CheckResult{
		Name:    "font",
		Status:  StatusOK,
		Message: FontFamily,
	}
}

// RunAll runs every dependency check. It never stops early: each
// dependency reports its own status even when an earlier one is missing.
func RunAll() []CheckResult {
	return []CheckResult{
		CheckMultiplexer(),
		CheckRenderer(),
		CheckFont(),
	}
}

// AnyMissing reports whether any result is a missing dependency.
func AnyMissing(results []CheckResult) bool {
	for _, r := range results {
		if r.Status != StatusOK {
			return true
		}
	}
	return false
}

func checkBinary(name, bin string) CheckResult {
	path, err := lookPath(bin)
	if err != nil {
		var execErr *exec.Error
		msg := fmt.Sprintf("%s not found in PATH", bin)
		if errors.As(err, &execErr) && execErr.Err != exec.ErrNotFound {
			msg = fmt.Sprintf("%s: %v", bin, execErr.Err)
		}
		return CheckResult{Name: name, Status: StatusMissing, Message: msg}
	}
	return CheckResult{Name: name, Status: StatusOK, Message: path}
}
