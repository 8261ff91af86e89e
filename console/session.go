package console

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/panyam/sigplot/core"
	"github.com/panyam/sigplot/viz"
)

// Session is the mutual-exclusion boundary around one PlotController.
// The controller itself is single-threaded; every producer (REST,
// websocket, MQTT, generator feed) and reader goes through a Session,
// which serializes them and fans out a change notification after each
// mutation.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.RWMutex
	controller *PlotController
	opts       viz.BuilderOptions
	archive    *SampleArchive

	subMu       sync.RWMutex
	subscribers map[string]chan struct{}
}

// NewSession creates a session with its own controller.
func NewSession(specs []core.SignalSpec, windowMs int64, opts viz.BuilderOptions) (*Session, error) {
	pc, err := NewPlotController(specs, windowMs, opts)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now(),
		controller:  pc,
		opts:        opts,
		subscribers: make(map[string]chan struct{}),
	}, nil
}

// Replace swaps in a full snapshot and notifies subscribers.
func (s *Session) Replace(batch map[string][]core.Sample) error {
	s.mu.Lock()
	err := s.controller.Replace(batch)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Append merges new samples and notifies subscribers.
func (s *Session) Append(batch map[string][]core.Sample) error {
	s.mu.Lock()
	err := s.controller.Append(batch)
	archive := s.archive
	s.mu.Unlock()
	if err != nil {
		return err
	}
	// Archiving is best effort; a failed write never undoes an append.
	if archive != nil {
		if err := archive.Record(s.ID, batch); err != nil {
			core.Error("archive write failed: %v", err)
		}
	}
	s.notify()
	return nil
}

// AttachArchive starts persisting every accepted append to the archive.
func (s *Session) AttachArchive(archive *SampleArchive) {
	s.mu.Lock()
	s.archive = archive
	s.mu.Unlock()
}

// Clear empties every buffer and notifies subscribers.
func (s *Session) Clear() {
	s.mu.Lock()
	s.controller.Clear()
	s.mu.Unlock()
	s.notify()
}

// Config returns a freshly built chart document.
func (s *Session) Config() (*viz.ChartConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller.Config()
}

// BufferedData returns a copy of every signal's current samples.
func (s *Session) BufferedData() map[string][]core.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller.BufferedData()
}

// Specs returns the configured signal list in display order.
func (s *Session) Specs() []core.SignalSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller.Specs()
}

// WindowMs returns the sliding window width.
func (s *Session) WindowMs() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller.WindowMs()
}

// SessionStats summarizes what a session currently holds.
type SessionStats struct {
	Signals  int   `json:"signals"`
	Points   int   `json:"points"`
	SpanMs   int64 `json:"spanMs"`
	WindowMs int64 `json:"windowMs"`
}

// Stats counts buffered points and the time span they cover.
func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := SessionStats{
		Signals:  len(s.controller.Specs()),
		WindowMs: s.controller.WindowMs(),
	}
	var earliest, latest int64
	found := false
	for _, samples := range s.controller.BufferedData() {
		stats.Points += len(samples)
		if len(samples) == 0 {
			continue
		}
		first := samples[0].TimestampMs
		last := samples[len(samples)-1].TimestampMs
		if !found {
			earliest, latest = first, last
			found = true
			continue
		}
		if first < earliest {
			earliest = first
		}
		if last > latest {
			latest = last
		}
	}
	if found {
		stats.SpanMs = latest - earliest
	}
	return stats
}

// Reconfigure replaces the signal list and window width, carrying over
// buffered data for signals that survive the change.  Buffers for
// signals only present in the new list start empty; data for dropped
// signals is discarded.
func (s *Session) Reconfigure(specs []core.SignalSpec, windowMs int64) error {
	s.mu.Lock()
	pc, err := NewPlotController(specs, windowMs, s.opts)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	carried := make(map[string][]core.Sample)
	old := s.controller.BufferedData()
	for _, spec := range pc.Specs() {
		if samples, ok := old[spec.Name]; ok && len(samples) > 0 {
			carried[spec.Name] = samples
		}
	}
	if err := pc.Replace(carried); err != nil {
		s.mu.Unlock()
		return err
	}
	s.controller = pc
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe registers a change listener.  The returned channel holds
// at most one pending notification; bursts of mutations coalesce.
func (s *Session) Subscribe() (string, <-chan struct{}) {
	id := uuid.New().String()
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subscribers[id] = ch
	s.subMu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener.
func (s *Session) Unsubscribe(id string) {
	s.subMu.Lock()
	delete(s.subscribers, id)
	s.subMu.Unlock()
}

func (s *Session) notify() {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
