package eventstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/pkg/logger"
)

// FileStore keeps the event log as line-delimited JSON on disk with an
// in-memory index for queries. All durable writes go through a single
// writer goroutine, so concurrent appends can never interleave on the
// file. The in-memory index is authoritative for the process lifetime: a
// failed disk append is logged and counted but does not fail the request.
type FileStore struct {
	mu     sync.RWMutex
	log    []domain.Event
	index  map[string][]domain.Event
	writes chan domain.Event
	done   chan struct{}
	file   *os.File
	logger *logger.Logger

	// onAppendFailure is invoked when a durable append fails (metrics).
	onAppendFailure func()
}

// NewFileStore opens (or creates) the log at path and loads any existing
// events. A missing file starts empty; corrupt lines are skipped so a
// damaged log never fails startup.
func NewFileStore(path string, lg *logger.Logger) (*FileStore, error) {
	if lg == nil {
		lg = logger.Default()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	s := &FileStore{
		index:  make(map[string][]domain.Event),
		writes: make(chan domain.Event, 256),
		done:   make(chan struct{}),
		logger: lg,
	}
	s.load(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log %s: %w", path, err)
	}
	s.file = f

	go s.writer()
	return s, nil
}

// SetAppendFailureHook installs a callback fired on durable append errors.
func (s *FileStore) SetAppendFailureHook(fn func()) { s.onAppendFailure = fn }

// load reads existing events from disk, tolerating a missing file and
// skipping lines that fail to parse.
func (s *FileStore) load(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	skipped := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var evt domain.Event
		if err := json.Unmarshal(line, &evt); err != nil || evt.TrackingID == "" {
			skipped++
			continue
		}
		s.log = append(s.log, evt)
		s.index[evt.TrackingID] = append(s.index[evt.TrackingID], evt)
	}
	if skipped > 0 {
		s.logger.Warn("event log contained unreadable lines, skipped", "path", path, "skipped", skipped)
	}
	if len(s.log) > 0 {
		s.logger.Info("event log loaded", "path", path, "events", len(s.log))
	}
}

// writer is the single owner of the file handle.
func (s *FileStore) writer() {
	defer close(s.done)
	for evt := range s.writes {
		data, err := json.Marshal(evt)
		if err == nil {
			_, err = s.file.Write(append(data, '\n'))
		}
		if err != nil {
			s.logger.Error("durable append failed, in-memory index retains event",
				"tracking_id", evt.TrackingID, "type", string(evt.Type), "error", err.Error())
			if s.onAppendFailure != nil {
				s.onAppendFailure()
			}
		}
	}
}

// Append records evt in the in-memory index immediately and hands the
// durable write to the writer goroutine.
func (s *FileStore) Append(_ context.Context, evt domain.Event) error {
	if evt.TrackingID == "" {
		return fmt.Errorf("eventstore: event missing tracking id")
	}

	s.mu.Lock()
	s.log = append(s.log, evt)
	s.index[evt.TrackingID] = append(s.index[evt.TrackingID], evt)
	s.mu.Unlock()

	s.writes <- evt
	return nil
}

// Query implements Store.
func (s *FileStore) Query(_ context.Context, trackingID string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events, ok := s.index[trackingID]
	if !ok || len(events) == 0 {
		return nil, ErrNotFound
	}
	out := make([]domain.Event, len(events))
	copy(out, events)
	return out, nil
}

// All implements Store.
func (s *FileStore) All(_ context.Context) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, len(s.log))
	copy(out, s.log)
	return out, nil
}

// Close flushes pending writes and releases the file.
func (s *FileStore) Close() error {
	close(s.writes)
	<-s.done
	return s.file.Close()
}
