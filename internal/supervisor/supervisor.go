// Package supervisor runs the mission loop: invoke the worker, check the
// completion artifact for the sentinel, cool down, repeat. The worker is
// crash-prone by assumption, so a failed iteration is retried whole rather
// than resumed mid-step; the only thing that stops the loop early is
// cancellation of the run context.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bouldertools/sisyphus/internal/config"
	"github.com/bouldertools/sisyphus/internal/mission"
	"github.com/bouldertools/sisyphus/internal/notify"
	"github.com/bouldertools/sisyphus/internal/worker"
)

// Cooldown between iterations. Fixed by design: the loop retries the whole
// task, it does not back off.
const Cooldown = 10 * time.Second

// excerptBytes bounds how much of the artifact tail rides along on the
// success notification.
const excerptBytes = 1500

// resumeInstruction is the generic instruction for every iteration after
// the first. The full mission text is only sent once; later iterations
// continue from the shared mission log and persisted state.
const resumeInstruction = "Continue the mission. Read the shared mission log " +
	"and the project state, then resume from where the previous iteration left off."

var (
	// ErrInterrupted means the run context was canceled; the supervisor
	// has already logged the emergency exit and notified.
	ErrInterrupted = errors.New("supervisor interrupted")

	// ErrIterationLimit means the optional iteration bound was reached
	// before the mission completed.
	ErrIterationLimit = errors.New("iteration limit reached before mission completion")
)

// Invoker runs one worker iteration. *worker.Runner implements it; tests
// substitute fakes.
type Invoker interface {
	Invoke(ctx context.Context, instruction, resumeToken string) (worker.Result, error)
}

// Supervisor owns the iteration loop.
type Supervisor struct {
	cfg      *config.Config
	inv      Invoker
	notifier *notify.Notifier
	log      *slog.Logger

	// MaxIterations bounds the run when > 0; 0 means run until the
	// sentinel appears or the context is canceled.
	MaxIterations int

	cooldown time.Duration
}

// New assembles a Supervisor. A nil logger defaults to slog.Default().
func New(cfg *config.Config, inv Invoker, notifier *notify.Notifier, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		cfg:      cfg,
		inv:      inv,
		notifier: notifier,
		log:      logger,
		cooldown: Cooldown,
	}
}

// newRunID mints a unique identifier for one supervisor run.
func newRunID() string {
	return fmt.Sprintf("run-%s-%s",
		time.Now().Format("20060102-150405"),
		uuid.NewString()[:8])
}

// Run executes the loop until the mission completes, the iteration bound
// is hit, or ctx is canceled. Completion returns nil; cancellation returns
// ErrInterrupted after the cleanup path has run.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := mission.EnsureArtifact(s.cfg.ArtifactPath()); err != nil {
		return err
	}

	statePath := s.cfg.StatePath()
	st, err := mission.LoadState(statePath)
	if err != nil {
		return err
	}
	runID := newRunID()
	if st == nil {
		st = mission.NewState(runID)
	} else {
		// Prior iteration counter and resume token carry over; the run
		// itself is new.
		st.RunID = runID
		s.log.Info("resuming prior state",
			"iteration", st.Iteration, "has_token", st.ResumeToken != "")
	}

	missionText, err := s.missionInstruction(st.Iteration)
	if err != nil {
		return err
	}

	s.log.Info("mission started", "run_id", runID, "model", s.cfg.Model)
	s.notifier.Send(ctx, notify.Event{
		Kind:    notify.EventStarted,
		Message: fmt.Sprintf("Mission started (run %s, iteration %d)", runID, st.Iteration),
		Model:   s.cfg.Model,
	})

	for {
		if err := ctx.Err(); err != nil {
			return s.interrupted(st)
		}

		instruction := resumeInstruction
		if st.Iteration == 1 {
			instruction = missionText
		}

		s.log.Info("iteration starting",
			"iteration", st.Iteration, "resume", st.ResumeToken != "")
		res, err := s.inv.Invoke(ctx, instruction, st.ResumeToken)

		if werr := s.appendRunLog(runID, res.RawOutput); werr != nil {
			s.log.Warn("writing mission log", "error", werr)
		}
		if err != nil {
			return s.interrupted(st)
		}

		if res.ExitCode != 0 {
			// Worker crash. Not fatal: an incomplete artifact just means
			// another iteration.
			s.log.Warn("worker exited nonzero",
				"iteration", st.Iteration, "exit_code", res.ExitCode)
		}
		if res.SessionID != "" {
			st.ResumeToken = res.SessionID
		}
		s.log.Info("iteration finished",
			"iteration", st.Iteration,
			"turns", res.NumTurns,
			"duration_ms", res.DurationMS,
			"message", res.Message)

		if mission.IsComplete(s.cfg.ArtifactPath(), mission.Sentinel) {
			s.log.Info("mission accomplished", "iterations", st.Iteration)
			msg := fmt.Sprintf("Mission accomplished after %d iteration(s)", st.Iteration)
			if excerpt := mission.Excerpt(s.cfg.ArtifactPath(), excerptBytes); excerpt != "" {
				msg += "\n" + excerpt
			}
			s.notifier.Send(ctx, notify.Event{
				Kind:    notify.EventMissionAccomplished,
				Message: msg,
				Model:   s.cfg.Model,
			})
			return mission.ClearState(statePath)
		}

		if s.MaxIterations > 0 && st.Iteration >= s.MaxIterations {
			if err := mission.SaveState(statePath, st); err != nil {
				s.log.Warn("persisting state", "error", err)
			}
			return ErrIterationLimit
		}

		s.notifier.Send(ctx, notify.Event{
			Kind:    notify.EventIterationComplete,
			Message: fmt.Sprintf("Iteration %d complete: %s", st.Iteration, res.Message),
			Model:   s.cfg.Model,
		})

		st.Iteration++
		if err := mission.SaveState(statePath, st); err != nil {
			s.log.Warn("persisting state", "error", err)
		}

		select {
		case <-time.After(s.cooldown):
		case <-ctx.Done():
			return s.interrupted(st)
		}
	}
}

// missionInstruction loads the full mission text. Only iteration 1 sends
// it, so resumed runs past the first iteration tolerate a missing file.
func (s *Supervisor) missionInstruction(iteration int) (string, error) {
	data, err := os.ReadFile(s.cfg.MissionFilePath())
	if err != nil {
		if iteration > 1 && os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading mission file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// interrupted is the single cleanup path for a canceled run: persist
// state, log the emergency exit, notify once. The notification uses a
// fresh context because the run context is already dead.
func (s *Supervisor) interrupted(st *mission.State) error {
	if err := mission.SaveState(s.cfg.StatePath(), st); err != nil {
		s.log.Warn("persisting state", "error", err)
	}
	s.log.Error("emergency exit", "iteration", st.Iteration)

	nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.notifier.Send(nctx, notify.Event{
		Kind:    notify.EventInterrupted,
		Message: fmt.Sprintf("Mission interrupted during iteration %d", st.Iteration),
		Model:   s.cfg.Model,
	})
	return ErrInterrupted
}

// appendRunLog appends raw worker output verbatim to the run's mission log.
func (s *Supervisor) appendRunLog(runID, raw string) error {
	if raw == "" {
		return nil
	}
	dir := s.cfg.LogsPath()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(
		filepath.Join(dir, fmt.Sprintf("mission_%s.log", runID)),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if !strings.HasSuffix(raw, "\n") {
		raw += "\n"
	}
	_, err = f.WriteString(raw)
	return err
}
