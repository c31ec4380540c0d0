package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Event levels.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Event is one line of .supercraft/events.jsonl.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Type    string         `json:"type"` // task.started, state.restored, ...
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// TaskID returns the task the event concerns, or "".
func (e Event) TaskID() string {
	id, _ := e.Data["task_id"].(string)
	return id
}

// EventFilter selects events. Zero fields match everything; Since and Until
// are inclusive.
type EventFilter struct {
	Since  *time.Time
	Until  *time.Time
	Type   string
	Level  string
	TaskID string
}

// Match reports whether e satisfies every criterion set on f.
func (f EventFilter) Match(e Event) bool {
	switch {
	case f.Since != nil && e.Time.Before(*f.Since):
		return false
	case f.Until != nil && e.Time.After(*f.Until):
		return false
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.Level != "" && e.Level != f.Level:
		return false
	case f.TaskID != "" && e.TaskID() != f.TaskID:
		return false
	}
	return true
}

// EventLog is an append-only store of lifecycle events.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog keeps one JSON object per line. The append handle is
// opened lazily on the first write, so reading a project that has never
// logged anything leaves the filesystem untouched.
type jsonlEventLog struct {
	mu     sync.Mutex
	fs     afero.Fs
	path   string
	append afero.File
}

// NewJSONLEventLog returns an EventLog stored at path on fs.
func NewJSONLEventLog(fs afero.Fs, path string) EventLog {
	return &jsonlEventLog{fs: fs, path: path}
}

func encodeEvent(e Event) ([]byte, error) {
	line, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

func (l *jsonlEventLog) Write(event Event) error {
	line, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.append == nil {
		f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening event log %s: %w", l.path, err)
		}
		l.append = f
	}
	if _, err := l.append.Write(line); err != nil {
		return fmt.Errorf("appending to event log: %w", err)
	}
	return nil
}

// Read returns matching events in the order they were written. Lines that
// do not decode are skipped; a log that does not exist yet is empty.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading event log %s: %w", l.path, err)
	}

	var events []Event
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var e Event
		if json.Unmarshal(line, &e) != nil {
			continue
		}
		if filter.Match(e) {
			events = append(events, e)
		}
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.append == nil {
		return nil
	}
	f := l.append
	l.append = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

// Recorder is the EventLogger the core services write through. Every
// event is recorded at INFO with the event type as its message.
type Recorder struct {
	Log EventLog
	Now func() time.Time
}

func (r *Recorder) LogEvent(eventType string, data map[string]any) error {
	at := time.Now()
	if r.Now != nil {
		at = r.Now()
	}
	return r.Log.Write(Event{
		Time:    at.UTC(),
		Level:   LevelInfo,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
