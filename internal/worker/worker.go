// Package worker wraps a single invocation of the autonomous agent CLI.
// It is the only place that understands the agent's output envelope and
// how to extract a resumption token from it; everything upstream sees a
// strict typed Result with defaults already applied.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
)

// DefaultMessage is substituted when the agent returns no usable message.
const DefaultMessage = "No message returned"

// Runner invokes the external agent binary. The zero value is unusable;
// use NewRunner.
type Runner struct {
	// Binary is the agent CLI (default "claude").
	Binary string
	// Model selects the model; empty uses the CLI default.
	Model string
	// WorkDir confines the agent to a working directory. The boundary is
	// enforced by the agent's own sandboxing; we only pass it through.
	WorkDir string
	// ExtraArgs are appended verbatim to every invocation.
	ExtraArgs []string
}

// NewRunner creates a Runner with defaults applied.
func NewRunner(binary, model, workDir string) *Runner {
	if binary == "" {
		binary = "claude"
	}
	return &Runner{Binary: binary, Model: model, WorkDir: workDir}
}

// Result is one invocation's outcome. A nonzero ExitCode is not an error:
// the supervisor treats worker failure as "retry the whole task".
type Result struct {
	// RawOutput is the combined stdout+stderr, verbatim.
	RawOutput string
	// Message is the agent's final message (DefaultMessage if absent).
	Message string
	// SessionID is the resumption token for the next invocation, if any.
	SessionID string
	// NumTurns and DurationMS come from the agent's result envelope;
	// zero when the envelope is missing or garbled.
	NumTurns   int
	DurationMS int64
	ExitCode   int
}

// envelope is the agent CLI's JSON result shape (--output-format json).
type envelope struct {
	Type       string `json:"type"`
	Result     string `json:"result"`
	SessionID  string `json:"session_id"`
	NumTurns   int    `json:"num_turns"`
	DurationMS int64  `json:"duration_ms"`
	IsError    bool   `json:"is_error"`
}

// Invoke runs the agent once, blocking until it exits or ctx is canceled.
// A resumeToken from a prior invocation is threaded in with --resume so the
// agent continues that conversation; empty starts fresh. Only context
// cancellation is returned as an error — worker crashes and garbled output
// degrade to defaults instead.
func (r *Runner) Invoke(ctx context.Context, instruction, resumeToken string) (Result, error) {
	args := []string{
		"-p", instruction,
		"--output-format", "json",
		"--dangerously-skip-permissions",
	}
	if r.Model != "" {
		args = append(args, "--model", r.Model)
	}
	if resumeToken != "" {
		args = append(args, "--resume", resumeToken)
	}
	args = append(args, r.ExtraArgs...)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		RawOutput: stdout.String() + stderr.String(),
		Message:   DefaultMessage,
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Binary missing or not startable. Still non-fatal to the
			// loop; report it through the exit code.
			res.ExitCode = -1
			res.Message = err.Error()
			return res, nil
		}
	}

	if env, ok := parseEnvelope(stdout.Bytes()); ok {
		if strings.TrimSpace(env.Result) != "" {
			res.Message = env.Result
		}
		res.SessionID = env.SessionID
		res.NumTurns = env.NumTurns
		res.DurationMS = env.DurationMS
	}
	return res, nil
}

// parseEnvelope extracts the result envelope from agent stdout. The CLI
// prints one JSON object, but warnings may precede it, so we scan from the
// first '{'. Garbled output reports ok=false.
func parseEnvelope(out []byte) (envelope, bool) {
	start := bytes.IndexByte(out, '{')
	if start < 0 {
		return envelope{}, false
	}
	var env envelope
	dec := json.NewDecoder(bytes.NewReader(out[start:]))
	if err := dec.Decode(&env); err != nil {
		return envelope{}, false
	}
	return env, true
}
