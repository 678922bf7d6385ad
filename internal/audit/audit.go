// Package audit provides a JSON-lines audit trail of mutating operations.
// The CLI records external-registry adds and removals, room-registry
// changes, and overlay start/stop in it; mod-profile edits (enable,
// disable, force-last) and external-entry comments are not recorded.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is a single audited action.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Component string                 `json:"component"`
	Action    string                 `json:"action"`
	Target    string                 `json:"target,omitempty"`
	Success   bool                   `json:"success"`
	Reason    string                 `json:"reason,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int
	MaxBackups int
}

// Logger writes audit events to a JSON-lines file, rotating when the file
// grows past RotationConfig.MaxSizeMB.
type Logger struct {
	path     string
	mu       sync.Mutex
	file     *os.File
	rotation RotationConfig
}

// NewLogger creates (or reopens) a file-backed audit logger.
func NewLogger(path string, rotation RotationConfig) (*Logger, error) {
	if rotation.MaxSizeMB <= 0 {
		rotation.MaxSizeMB = 10
	}
	if rotation.MaxBackups <= 0 {
		rotation.MaxBackups = 10
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("audit: creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: opening log: %w", err)
	}
	return &Logger{path: path, file: f, rotation: rotation}, nil
}

// Log appends an event, rotating first if the file has grown too large.
func (l *Logger) Log(ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	if info, err := l.file.Stat(); err == nil {
		maxBytes := int64(l.rotation.MaxSizeMB) * 1024 * 1024
		if info.Size() >= maxBytes {
			if err := l.rotateLocked(); err != nil {
				return err
			}
		}
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}
	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

func (l *Logger) rotateLocked() error {
	if err := l.file.Close(); err != nil {
		return err
	}

	for i := l.rotation.MaxBackups - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", l.path, i)
		dst := fmt.Sprintf("%s.%d", l.path, i+1)
		if _, err := os.Stat(src); err == nil {
			_ = os.Rename(src, dst)
		}
	}
	if _, err := os.Stat(l.path); err == nil {
		_ = os.Rename(l.path, l.path+".1")
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: reopening log after rotation: %w", err)
	}
	l.file = f
	return nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Query reads every event from the log, skipping malformed lines. Meant for
// small audit logs inspected via the CLI, not a high-volume query path.
func (l *Logger) Query() ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}
