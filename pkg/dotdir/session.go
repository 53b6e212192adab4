package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	sessionFile = "session.json"
)

// SessionState is the resumable query the CLI last started and has not yet
// stopped.
type SessionState struct {
	// ID is the server-issued session id.
	ID string `json:"id"`

	// URL is the index the session lives on.
	URL string `json:"url"`

	// Namespace is the namespace the query ran in, empty for the default.
	Namespace string `json:"namespace,omitempty"`

	// Fetched counts results returned so far, including the first batch.
	Fetched int `json:"fetched"`

	// Pages counts pages printed so far.
	Pages int `json:"pages"`

	// StartedAt is when the query was started.
	StartedAt time.Time `json:"started_at"`
}

// LoadSessionState loads the session state from a target .upvector/session.json.
// Returns nil, nil if no session is in progress.
func (m *Manager) LoadSessionState(overrideDir string) (*SessionState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}

	state := &SessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing session state: %w", err)
	}
	if state.ID == "" {
		return nil, errors.New("session state has no id")
	}

	return state, nil
}

// SaveSessionState persists the session state to a target .upvector/session.json.
func (m *Manager) SaveSessionState(state *SessionState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil session state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, sessionFile), data, 0o600); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}

	return nil
}

// ClearSessionState removes the session state file. Returns nil if the file
// doesn't exist.
func (m *Manager) ClearSessionState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, sessionFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing session state: %w", err)
	}

	return nil
}
