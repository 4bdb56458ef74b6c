package player

import (
	"context"
	"sync"
	"time"

	"tracktide/model"
)

// MockSource is a test double for Source. Load succeeds immediately unless
// an error has been queued for the song, and emitted events can be driven
// from the test.
type MockSource struct {
	mu sync.Mutex

	events     Events
	loadErrs   map[int64]error
	loadDelays map[int64]time.Duration
	loadCalls  []int64
	paused     bool
	stopped    bool
	resumeErr  error
	seekCalls  []time.Duration
	volume     float64
	stopCalls  int
	closeCalls int
}

var _ Source = (*MockSource)(nil)

// NewMockSource creates a mock source for testing.
func NewMockSource() *MockSource {
	return &MockSource{
		loadErrs:   make(map[int64]error),
		loadDelays: make(map[int64]time.Duration),
		volume:     1.0,
	}
}

// DelayLoad makes Load for the given song id take at least d.
func (m *MockSource) DelayLoad(songID int64, d time.Duration) {
	m.mu.Lock()
	m.loadDelays[songID] = d
	m.mu.Unlock()
}

// FailLoad makes Load return err for the given song id.
func (m *MockSource) FailLoad(songID int64, err error) {
	m.mu.Lock()
	m.loadErrs[songID] = err
	m.mu.Unlock()
}

// FailResume makes the next Resume call return err.
func (m *MockSource) FailResume(err error) {
	m.mu.Lock()
	m.resumeErr = err
	m.mu.Unlock()
}

// LoadCalls returns the song ids passed to Load, in order.
func (m *MockSource) LoadCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.loadCalls))
	copy(out, m.loadCalls)
	return out
}

// SimulateFinished fires the finished event, as if the track ended.
func (m *MockSource) SimulateFinished() {
	m.mu.Lock()
	ev := m.events
	m.mu.Unlock()
	if ev.OnFinished != nil {
		ev.OnFinished()
	}
}

// SimulateError fires the error event, as if playback failed mid-track.
func (m *MockSource) SimulateError(err error) {
	m.mu.Lock()
	ev := m.events
	m.mu.Unlock()
	if ev.OnError != nil {
		ev.OnError(err)
	}
}

func (m *MockSource) SetEvents(ev Events) {
	m.mu.Lock()
	m.events = ev
	m.mu.Unlock()
}

func (m *MockSource) Load(_ context.Context, song model.Song) error {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, song.ID)
	delay := m.loadDelays[song.ID]
	err := m.loadErrs[song.ID]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.paused = false
	m.stopped = false
	m.mu.Unlock()
	return nil
}

func (m *MockSource) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

func (m *MockSource) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.paused = false
	return nil
}

func (m *MockSource) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.stopCalls++
	m.mu.Unlock()
}

// Stopped reports whether Stop has been called since the last Load.
func (m *MockSource) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func (m *MockSource) Seek(pos time.Duration) error {
	m.mu.Lock()
	m.seekCalls = append(m.seekCalls, pos)
	m.mu.Unlock()
	return nil
}

// SeekCalls returns the positions passed to Seek, in order.
func (m *MockSource) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.seekCalls))
	copy(out, m.seekCalls)
	return out
}

func (m *MockSource) SetVolume(level float64) {
	m.mu.Lock()
	m.volume = level
	m.mu.Unlock()
}

func (m *MockSource) Position() time.Duration { return 0 }

func (m *MockSource) Duration() time.Duration { return 0 }

func (m *MockSource) Close() error {
	m.mu.Lock()
	m.closeCalls++
	m.mu.Unlock()
	return nil
}
