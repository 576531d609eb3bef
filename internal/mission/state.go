package mission

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State is the supervisor's persisted iteration state. It survives
// supervisor restarts so a new run can pick up the iteration counter and
// resumption token from the previous one.
type State struct {
	RunID       string    `json:"run_id"`
	Iteration   int       `json:"iteration"`
	ResumeToken string    `json:"resume_token,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewState returns the initial state for a fresh run.
func NewState(runID string) *State {
	return &State{RunID: runID, Iteration: 1, UpdatedAt: time.Now().UTC()}
}

// LoadState reads persisted state from path. A missing file returns
// (nil, nil): no prior run to resume.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	if st.Iteration < 1 {
		st.Iteration = 1
	}
	return &st, nil
}

// SaveState writes state to path atomically (temp file + rename) so a
// crash mid-write never leaves a truncated state file.
func SaveState(path string, st *State) error {
	st.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// ClearState removes the persisted state file. Called after a mission
// completes so the next run starts fresh.
func ClearState(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
