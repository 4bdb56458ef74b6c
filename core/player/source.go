package player

import (
	"context"
	"fmt"
	"time"

	"tracktide/model"
)

// State represents the playback state machine.
//
// Valid transitions:
//   - Stopped -> Playing (via Play)
//   - Playing -> Paused  (via PlayPause)
//   - Playing -> Stopped (via Stop)
//   - Paused  -> Playing (via PlayPause)
//   - Paused  -> Stopped (via Stop)
//
// Invalid transitions are ignored.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// ErrorKind classifies a playback failure for the UI.
type ErrorKind int

const (
	// ErrorGeneric covers network failures and everything unclassified.
	ErrorGeneric ErrorKind = iota
	// ErrorUnsupported means the audio data could not be decoded.
	ErrorUnsupported
	// ErrorBlocked means the catalog refused to serve the preview.
	ErrorBlocked
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorUnsupported:
		return "unsupported"
	case ErrorBlocked:
		return "blocked"
	default:
		return "generic"
	}
}

// PlayError is a playback failure attributed to a specific song.
type PlayError struct {
	Kind ErrorKind
	Song model.Song
	Err  error
}

func (e *PlayError) Error() string {
	return fmt.Sprintf("play %q: %v", e.Song.Title, e.Err)
}

func (e *PlayError) Unwrap() error { return e.Err }

// Events receives asynchronous notifications from a Source. Callbacks may
// fire from internal goroutines; the Engine handles synchronization.
type Events struct {
	OnPosition func(pos time.Duration)
	OnDuration func(d time.Duration)
	OnFinished func()
	OnError    func(err error)
}

// Source is an audio backend. One track plays at a time: Load replaces
// whatever was playing before.
type Source interface {
	// Load fetches the song's preview audio and starts playback. A failure
	// is returned as a *PlayError.
	Load(ctx context.Context, song model.Song) error
	Pause()
	// Resume restarts a paused track. It fails when the underlying output
	// has been lost since the pause.
	Resume() error
	Stop()
	Seek(pos time.Duration) error
	SetVolume(level float64)
	Position() time.Duration
	Duration() time.Duration
	SetEvents(ev Events)
	Close() error
}
