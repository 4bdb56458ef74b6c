package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"tracktide/model"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// sampleRate is the fixed output rate. Tracks with a different native rate
// are resampled, because the speaker can only be initialized once.
const sampleRate = beep.SampleRate(44100)

var (
	speakerOnce    sync.Once
	speakerInitErr error
)

// BeepSource plays catalog preview clips through the system audio output.
type BeepSource struct {
	mu sync.Mutex

	httpClient *http.Client
	events     Events

	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	volumeLevel float64
	tickerStop  chan struct{}
}

var _ Source = (*BeepSource)(nil)

// NewBeepSource creates a source backed by the gopxl/beep speaker.
func NewBeepSource() *BeepSource {
	return &BeepSource{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		volumeLevel: 1.0,
	}
}

// SetEvents registers the event callbacks. Must be called before Load.
func (b *BeepSource) SetEvents(ev Events) {
	b.mu.Lock()
	b.events = ev
	b.mu.Unlock()
}

// Load downloads the song's preview clip and starts playing it.
func (b *BeepSource) Load(ctx context.Context, song model.Song) error {
	if song.Preview == "" {
		return &PlayError{Kind: ErrorBlocked, Song: song, Err: errors.New("no preview available")}
	}

	data, err := b.fetch(ctx, song)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return &PlayError{Kind: ErrorUnsupported, Song: song, Err: err}
	}

	speakerOnce.Do(func() {
		speakerInitErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if speakerInitErr != nil {
		streamer.Close()
		return &PlayError{Kind: ErrorGeneric, Song: song, Err: speakerInitErr}
	}

	b.Stop()

	var playStream beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		playStream = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	b.mu.Lock()
	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{Streamer: playStream}
	b.volume = &effects.Volume{
		Streamer: b.ctrl,
		Base:     2,
		Volume:   levelToVolume(b.volumeLevel),
		Silent:   b.volumeLevel <= 0,
	}
	b.tickerStop = make(chan struct{})
	events := b.events
	stop := b.tickerStop
	b.mu.Unlock()

	if events.OnDuration != nil {
		events.OnDuration(format.SampleRate.D(streamer.Len()))
	}

	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		if events.OnFinished != nil {
			events.OnFinished()
		}
	})))

	go b.tickPosition(stop, events)

	return nil
}

// fetch downloads the preview clip, mapping HTTP refusals to the blocked
// error kind.
func (b *BeepSource) fetch(ctx context.Context, song model.Song) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, song.Preview, nil)
	if err != nil {
		return nil, &PlayError{Kind: ErrorGeneric, Song: song, Err: err}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &PlayError{Kind: ErrorGeneric, Song: song, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnavailableForLegalReasons:
		return nil, &PlayError{Kind: ErrorBlocked, Song: song, Err: fmt.Errorf("preview refused: %s", resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, &PlayError{Kind: ErrorGeneric, Song: song, Err: fmt.Errorf("preview fetch: %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &PlayError{Kind: ErrorGeneric, Song: song, Err: err}
	}
	return data, nil
}

// tickPosition reports the playback position twice a second until stopped.
func (b *BeepSource) tickPosition(stop <-chan struct{}, events Events) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if events.OnPosition != nil {
				events.OnPosition(b.Position())
			}
		case <-stop:
			return
		}
	}
}

func (b *BeepSource) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = true
	speaker.Unlock()
}

func (b *BeepSource) Resume() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return errors.New("nothing loaded")
	}
	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (b *BeepSource) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return
	}

	speaker.Clear()
	close(b.tickerStop)
	b.streamer.Close()
	b.streamer = nil
	b.ctrl = nil
	b.volume = nil
}

func (b *BeepSource) Seek(pos time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return errors.New("nothing loaded")
	}

	n := b.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if n >= b.streamer.Len() {
		n = b.streamer.Len() - 1
	}

	speaker.Lock()
	err := b.streamer.Seek(n)
	speaker.Unlock()
	return err
}

// SetVolume maps a linear 0..1 level onto beep's base-2 logarithmic scale.
func (b *BeepSource) SetVolume(level float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.volumeLevel = level
	if b.volume == nil {
		return
	}
	speaker.Lock()
	b.volume.Volume = levelToVolume(level)
	b.volume.Silent = level <= 0
	speaker.Unlock()
}

func (b *BeepSource) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(pos)
}

func (b *BeepSource) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}
	return b.format.SampleRate.D(b.streamer.Len())
}

func (b *BeepSource) Close() error {
	b.Stop()
	return nil
}

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale with base 2: 0 means unchanged, -1 half,
// -2 quarter. 1.0 -> 0, 0.5 -> -1, 0 -> effectively silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
