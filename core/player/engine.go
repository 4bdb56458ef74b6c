package player

import (
	"context"
	"sync"
	"time"

	"tracktide/core/session"
	"tracktide/logger"
	"tracktide/model"
)

const (
	// defaultAdvanceDelay is how long a playback error stays on screen
	// before the engine moves on to the next queued song.
	defaultAdvanceDelay = 2 * time.Second
	loadTimeout         = 30 * time.Second
)

// Engine drives playback: it owns the queue, the state machine, and the
// audio source. All methods are safe for concurrent use.
//
// The current song is tracked separately from the queue index. The queue
// index is -1 whenever the current song was not picked from the queue, so
// an ad-hoc track can play while the queue stays untouched, and clearing
// the queue never interrupts playback.
//
// Loading a track is asynchronous. Every attempt gets a generation number;
// when a load resolves, its result is dropped unless its generation is still
// the latest, so a quick "play A, play B" never lets a slow A clobber B.
type Engine struct {
	mu      sync.Mutex
	source  Source
	queue   *Queue
	current *model.Song

	state      State
	playErr    *PlayError
	generation uint64
	volume     float64
	position   time.Duration
	duration   time.Duration

	advanceDelay time.Duration
	onPlay       func(model.Song)
}

// NewEngine creates an engine over the given audio source.
func NewEngine(source Source) *Engine {
	e := &Engine{
		source:       source,
		queue:        NewQueue(),
		state:        Stopped,
		volume:       1.0,
		advanceDelay: defaultAdvanceDelay,
	}
	source.SetEvents(Events{
		OnPosition: e.handlePosition,
		OnDuration: e.handleDuration,
		OnFinished: e.handleFinished,
		OnError:    e.handleError,
	})
	return e
}

// SetOnPlay registers a hook invoked whenever a track starts playing. The
// hook runs on its own goroutine and its outcome never affects playback;
// it is used to record play history.
func (e *Engine) SetOnPlay(fn func(model.Song)) {
	e.mu.Lock()
	e.onPlay = fn
	e.mu.Unlock()
}

// SetAdvanceDelay overrides the pause between a playback error and the
// automatic advance to the next song.
func (e *Engine) SetAdvanceDelay(d time.Duration) {
	e.mu.Lock()
	e.advanceDelay = d
	e.mu.Unlock()
}

// BindSession stops playback when the session ends, including logouts
// performed by another process.
func (e *Engine) BindSession(s *session.Store) {
	s.Subscribe(func() {
		if !s.LoggedIn() {
			e.Stop()
		}
	})
}

// Play starts the given song. A song already in the queue becomes the
// current queue position; anything else plays ad hoc, leaving the queue
// untouched and the queue index at -1.
func (e *Engine) Play(song model.Song) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx := e.queue.IndexOf(song.ID); idx >= 0 {
		e.queue.JumpTo(idx)
	} else {
		e.queue.Deselect()
	}
	e.startLocked(song)
}

// SetCurrentQueue replaces the queue wholesale and points the queue index
// at the song with selectedID, or -1 when the id is not in the list.
// Playback is untouched; callers pair this with Play.
func (e *Engine) SetCurrentQueue(songs []model.Song, selectedID int64) {
	e.mu.Lock()
	e.queue.Replace(songs, selectedID)
	e.mu.Unlock()
}

// PlayPause toggles between Playing and Paused. A no-op when no track is
// current.
func (e *Engine) PlayPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return
	}
	switch e.state {
	case Playing:
		e.source.Pause()
		e.state = Paused
	case Paused:
		if err := e.source.Resume(); err != nil {
			// The output is gone; surface the error but keep the paused
			// position so the user can retry.
			e.playErr = asPlayError(e.current, err)
			return
		}
		e.state = Playing
	case Stopped:
		e.startLocked(*e.current)
	}
}

// Next moves to the next queued song. When the queue cannot advance it
// restarts the current song from the beginning.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.advanceLocked()
}

// Previous moves to the previous queued song. At the head it restarts the
// current song from the beginning.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prev := e.queue.Previous(); prev != nil {
		e.startLocked(*prev)
		return
	}
	if e.current != nil {
		e.startLocked(*e.current)
	}
}

// SeekTo jumps to the given position in the current track. Ignored when
// nothing is loaded.
func (e *Engine) SeekTo(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.IsActive() {
		return
	}
	if err := e.source.Seek(pos); err != nil {
		logger.Warn("[Player] seek failed", logger.ErrorField(err))
		return
	}
	e.position = pos
}

// SetVolume sets the volume level (0.0 to 1.0).
func (e *Engine) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	e.mu.Lock()
	e.volume = level
	e.mu.Unlock()

	e.source.SetVolume(level)
}

// Volume returns the current volume level.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// AddToQueue appends a song without changing playback.
func (e *Engine) AddToQueue(song model.Song) {
	e.mu.Lock()
	e.queue.Add(song)
	e.mu.Unlock()
}

// RemoveFromQueue removes the song at the given index. The current song
// keeps playing; indexes shift so the rest of the queue still plays in
// order.
func (e *Engine) RemoveFromQueue(index int) {
	e.mu.Lock()
	e.queue.RemoveAt(index)
	e.mu.Unlock()
}

// ClearQueue empties the queue and resets the queue index. The current
// track keeps playing.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	e.queue.Clear()
	e.mu.Unlock()
}

// Stop halts playback, clears the current track and the last error, and
// resets the position. The queue is kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// ClearError dismisses the last playback error.
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.playErr = nil
	e.mu.Unlock()
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns the current song, or nil.
func (e *Engine) Current() *model.Song {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil
	}
	song := *e.current
	return &song
}

// QueueSongs returns a snapshot of the queue.
func (e *Engine) QueueSongs() []model.Song {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Songs()
}

// QueueIndex returns the queue index of the current song, or -1 when the
// current song did not come from the queue.
func (e *Engine) QueueIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.CurrentIndex()
}

// Position returns the playback position within the current track.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Duration returns the duration of the current track.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// PlaybackError returns the last playback error, or nil.
func (e *Engine) PlaybackError() *PlayError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playErr
}

// advanceLocked implements the next-track rule shared by Next and natural
// end of track: advance when the queue has a next song, otherwise restart
// whatever is current. Callers hold e.mu.
func (e *Engine) advanceLocked() {
	if next := e.queue.Next(); next != nil {
		e.startLocked(*next)
		return
	}
	if e.current != nil {
		e.startLocked(*e.current)
	}
}

// startLocked kicks off an asynchronous load of the given song, making it
// current. Callers hold e.mu.
func (e *Engine) startLocked(song model.Song) {
	e.generation++
	gen := e.generation
	e.playErr = nil
	e.position = 0
	e.duration = time.Duration(song.Duration) * time.Second
	e.current = &song

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := e.source.Load(ctx, song)

		e.mu.Lock()
		if gen != e.generation {
			// A newer play attempt superseded this one.
			e.mu.Unlock()
			return
		}
		if err != nil {
			e.failLocked(song, err, gen)
			e.mu.Unlock()
			return
		}
		e.state = Playing
		onPlay := e.onPlay
		e.mu.Unlock()

		if onPlay != nil {
			go onPlay(song)
		}
	}()
}

// failLocked records a playback error and schedules the automatic advance
// when more songs are queued. Callers hold e.mu.
func (e *Engine) failLocked(song model.Song, err error, gen uint64) {
	e.playErr = asPlayError(&song, err)
	e.state = Stopped
	e.current = nil

	logger.Warn("[Player] playback failed",
		logger.Int64("songId", song.ID),
		logger.String("title", song.Title),
		logger.String("kind", e.playErr.Kind.String()),
		logger.ErrorField(err))

	if !e.queue.HasNext() {
		return
	}

	time.AfterFunc(e.advanceDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if gen != e.generation {
			// The user already moved on.
			return
		}
		if next := e.queue.Next(); next != nil {
			e.startLocked(*next)
		}
	})
}

// stopLocked invalidates any in-flight load and resets playback. Callers
// hold e.mu.
func (e *Engine) stopLocked() {
	e.generation++
	e.source.Stop()
	e.state = Stopped
	e.current = nil
	e.playErr = nil
	e.position = 0
	e.duration = 0
}

func (e *Engine) handlePosition(pos time.Duration) {
	e.mu.Lock()
	e.position = pos
	e.mu.Unlock()
}

func (e *Engine) handleDuration(d time.Duration) {
	e.mu.Lock()
	e.duration = d
	e.mu.Unlock()
}

// handleFinished reacts to natural end of track exactly like Next: advance
// through the queue, or restart the current song at the tail.
func (e *Engine) handleFinished() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Playing {
		return
	}
	e.advanceLocked()
}

// handleError reacts to a failure reported mid-playback.
func (e *Engine) handleError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.IsActive() {
		return
	}
	song := model.Song{}
	if e.current != nil {
		song = *e.current
	}
	e.failLocked(song, err, e.generation)
}

// asPlayError wraps err, preserving an existing classification.
func asPlayError(song *model.Song, err error) *PlayError {
	if pe, ok := err.(*PlayError); ok {
		return pe
	}
	pe := &PlayError{Kind: ErrorGeneric, Err: err}
	if song != nil {
		pe.Song = *song
	}
	return pe
}
