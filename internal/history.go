package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// HistoryLogger appends pipeline events to a JSONL file, one object per line.
type HistoryLogger struct {
	file   *os.File
	mu     sync.Mutex
	seqNum int64
	source string
}

// HistoryEntry is a single line of the history file
type HistoryEntry struct {
	Seq       int64  `json:"seq"`
	Timestamp string `json:"ts"`
	Source    string `json:"src"`  // "run" or "watch"
	Type      string `json:"type"` // "start", "stage", "finish", "error", "info"
	RunID     string `json:"run_id,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Result    any    `json:"result,omitempty"`
	Error     any    `json:"error,omitempty"`
	Message   string `json:"msg,omitempty"`
}

// NewHistoryLogger opens path for appending, creating its parent directory.
func NewHistoryLogger(path, source string) (*HistoryLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	return &HistoryLogger{file: f, source: source}, nil
}

// Log writes an entry to the history file. A nil logger drops it.
func (h *HistoryLogger) Log(entry HistoryEntry) {
	if h == nil || h.file == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seqNum++
	entry.Seq = h.seqNum
	entry.Timestamp = time.Now().Format(time.RFC3339Nano)
	entry.Source = h.source

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = h.file.Write(append(data, '\n'))
}

// LogStage records a completed pipeline stage
func (h *HistoryLogger) LogStage(runID, stage string, took time.Duration, result any) {
	h.Log(HistoryEntry{Type: "stage", RunID: runID, Stage: stage, Duration: took.String(), Result: result})
}

// LogError records a failure, optionally tied to a run and stage
func (h *HistoryLogger) LogError(runID, stage string, err error) {
	entry := HistoryEntry{Type: "error", RunID: runID, Stage: stage}
	if err != nil {
		entry.Error = err.Error()
	}
	h.Log(entry)
}

func (h *HistoryLogger) LogInfo(format string, v ...any) {
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	h.Log(HistoryEntry{Type: "info", Message: msg})
}

// ReadHistory returns every entry in the file at path, oldest first.
func ReadHistory(path string) ([]HistoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []HistoryEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e HistoryEntry
		if err := dec.Decode(&e); err != nil {
			return entries, fmt.Errorf("decode history entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close closes the history file
func (h *HistoryLogger) Close() error {
	if h != nil && h.file != nil {
		return h.file.Close()
	}
	return nil
}
