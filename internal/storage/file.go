package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxEventLine bounds one JSONL line; chat turns carry free text.
const maxEventLine = 4 << 20

// FileRecorder appends chat events to a JSONL file. The file stays open for
// appends until Close.
type FileRecorder struct {
	path string
	now  func() time.Time

	mu  sync.Mutex
	out *os.File
}

func NewFileRecorder(path string) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chat log dir: %w", err)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat log: %w", err)
	}
	return &FileRecorder{path: path, now: time.Now, out: out}, nil
}

// AppendEvent writes event as one line. A zero Timestamp is set to now.
func (r *FileRecorder) AppendEvent(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode chat event: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		return fmt.Errorf("chat log %s is closed", r.path)
	}
	if _, err := r.out.Write(line); err != nil {
		return fmt.Errorf("failed to write chat event: %w", err)
	}
	return nil
}

func (r *FileRecorder) LoadEvents() ([]Event, error) {
	return r.load(func(Event) bool { return true })
}

func (r *FileRecorder) LoadEventsBetween(from, to time.Time) ([]Event, error) {
	return r.load(func(ev Event) bool {
		return !ev.Timestamp.Before(from) && ev.Timestamp.Before(to)
	})
}

// load scans the log, skipping blank lines and lines that fail to decode.
func (r *FileRecorder) load(keep func(Event) bool) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat log: %w", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	events := []Event{}
	for s.Scan() {
		var ev Event
		if len(s.Bytes()) == 0 || json.Unmarshal(s.Bytes(), &ev) != nil {
			continue
		}
		if keep(ev) {
			events = append(events, ev)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat log: %w", err)
	}
	return events, nil
}

func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		return nil
	}
	err := r.out.Close()
	r.out = nil
	return err
}
