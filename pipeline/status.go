package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	StateIdle    = "idle"
	StateRunning = "running"
)

// Status is the content of the status file
type Status struct {
	Status    string     `json:"status"`           // "idle" | "running"
	RunID     string     `json:"run_id,omitempty"` // current or last run
	Since     *time.Time `json:"since,omitempty"`  // when the current run started
	LastError string     `json:"last_error,omitempty"`
}

// SetStatus writes s to path. Since is stamped when the state is running.
func SetStatus(path string, s Status) error {
	if s.Status == StateRunning && s.Since == nil {
		now := time.Now()
		s.Since = &now
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetStatus reads the status file.
// Returns idle if the file doesn't exist or is invalid
func GetStatus(path string) Status {
	data, err := os.ReadFile(path)
	if err != nil {
		return Status{Status: StateIdle}
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return Status{Status: StateIdle}
	}

	return s
}
