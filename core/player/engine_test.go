package player

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tracktide/core/session"
	"tracktide/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newTestEngine() (*Engine, *MockSource) {
	src := NewMockSource()
	e := NewEngine(src)
	e.SetAdvanceDelay(10 * time.Millisecond)
	return e, src
}

// playQueue installs the queue and starts the song at idx, the way callers
// pair SetCurrentQueue with Play.
func playQueue(e *Engine, songs []model.Song, idx int) {
	e.SetCurrentQueue(songs, songs[idx].ID)
	e.Play(songs[idx])
}

func waitState(t *testing.T, e *Engine, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return e.State() == want }, waitFor, tick,
		"state = %v, want %v", e.State(), want)
}

func TestSetCurrentQueueDoesNotStartPlayback(t *testing.T) {
	e, src := newTestEngine()

	e.SetCurrentQueue([]model.Song{song(1, "a"), song(2, "b"), song(3, "c")}, 2)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, Stopped, e.State())
	assert.Nil(t, e.Current())
	assert.Empty(t, src.LoadCalls())
	assert.Equal(t, 1, e.QueueIndex())
}

func TestSetCurrentQueueIndexRoundTrip(t *testing.T) {
	e, src := newTestEngine()
	list := []model.Song{song(1, "a"), song(2, "b"), song(3, "c")}

	e.SetCurrentQueue(list, 3)
	assert.Equal(t, 2, e.QueueIndex())

	e.SetCurrentQueue(list, 42)
	assert.Equal(t, -1, e.QueueIndex())
	assert.Empty(t, src.LoadCalls())
}

func TestPlayQueuedSongSelectsIt(t *testing.T) {
	e, src := newTestEngine()
	list := []model.Song{song(1, "a"), song(2, "b"), song(3, "c")}
	e.SetCurrentQueue(list, 1)

	e.Play(list[1])

	waitState(t, e, Playing)
	assert.Equal(t, 1, e.QueueIndex())
	require.NotNil(t, e.Current())
	assert.Equal(t, int64(2), e.Current().ID)
	assert.Equal(t, []int64{2}, src.LoadCalls())
}

func TestPlayOutsideQueueLeavesQueueUntouched(t *testing.T) {
	e, _ := newTestEngine()
	playQueue(e, []model.Song{song(1, "a"), song(2, "b")}, 0)
	waitState(t, e, Playing)

	e.Play(song(5, "ad hoc"))

	require.Eventually(t, func() bool {
		cur := e.Current()
		return e.State() == Playing && cur != nil && cur.ID == 5
	}, waitFor, tick)
	assert.Equal(t, 2, len(e.QueueSongs()))
	assert.Equal(t, -1, e.QueueIndex())
}

func TestAutoAdvanceAfterLoadFailure(t *testing.T) {
	e, src := newTestEngine()
	src.FailLoad(1, errors.New("boom"))

	playQueue(e, []model.Song{song(1, "a"), song(2, "b")}, 0)

	// The error surfaces first, then the engine moves on by itself.
	require.Eventually(t, func() bool { return e.PlaybackError() != nil }, waitFor, tick)
	require.Eventually(t, func() bool {
		cur := e.Current()
		return e.State() == Playing && cur != nil && cur.ID == 2
	}, waitFor, tick)
	assert.Equal(t, []int64{1, 2}, src.LoadCalls())
}

func TestNoAutoAdvanceAtTail(t *testing.T) {
	e, src := newTestEngine()
	src.FailLoad(1, errors.New("boom"))

	playQueue(e, []model.Song{song(1, "a")}, 0)

	require.Eventually(t, func() bool { return e.PlaybackError() != nil }, waitFor, tick)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, Stopped, e.State())
	assert.Equal(t, []int64{1}, src.LoadCalls())
	assert.NotNil(t, e.PlaybackError())
}

func TestNextAtTailRestartsCurrent(t *testing.T) {
	e, src := newTestEngine()
	playQueue(e, []model.Song{song(1, "a")}, 0)
	waitState(t, e, Playing)

	e.Next()

	require.Eventually(t, func() bool { return len(src.LoadCalls()) == 2 }, waitFor, tick)
	assert.Equal(t, []int64{1, 1}, src.LoadCalls())
	assert.Equal(t, 0, e.QueueIndex())
}

func TestPreviousAtHeadRestartsCurrent(t *testing.T) {
	e, src := newTestEngine()
	playQueue(e, []model.Song{song(1, "a"), song(2, "b")}, 0)
	waitState(t, e, Playing)

	e.Previous()

	require.Eventually(t, func() bool { return len(src.LoadCalls()) == 2 }, waitFor, tick)
	assert.Equal(t, []int64{1, 1}, src.LoadCalls())
}

func TestFinishedAdvancesThroughQueue(t *testing.T) {
	e, src := newTestEngine()
	playQueue(e, []model.Song{song(1, "a"), song(2, "b")}, 0)
	waitState(t, e, Playing)

	src.SimulateFinished()

	require.Eventually(t, func() bool {
		cur := e.Current()
		return e.State() == Playing && cur != nil && cur.ID == 2
	}, waitFor, tick)
}

func TestFinishedAtTailRestartsCurrent(t *testing.T) {
	e, src := newTestEngine()
	playQueue(e, []model.Song{song(1, "a")}, 0)
	waitState(t, e, Playing)

	src.SimulateFinished()

	// End of track behaves like Next, which at the tail replays the song.
	require.Eventually(t, func() bool { return len(src.LoadCalls()) == 2 }, waitFor, tick)
	assert.Equal(t, []int64{1, 1}, src.LoadCalls())
	waitState(t, e, Playing)
	assert.Equal(t, 1, len(e.QueueSongs()))
}

func TestClearQueueKeepsPlaying(t *testing.T) {
	e, _ := newTestEngine()
	playQueue(e, []model.Song{song(1, "a"), song(2, "b")}, 0)
	waitState(t, e, Playing)

	e.ClearQueue()

	assert.Equal(t, Playing, e.State())
	require.NotNil(t, e.Current())
	assert.Equal(t, int64(1), e.Current().ID)
	assert.Empty(t, e.QueueSongs())
	assert.Equal(t, -1, e.QueueIndex())
}

func TestStopClearsCurrentTrack(t *testing.T) {
	e, src := newTestEngine()
	playQueue(e, []model.Song{song(1, "a")}, 0)
	waitState(t, e, Playing)

	e.Stop()

	assert.Equal(t, Stopped, e.State())
	assert.Nil(t, e.Current())
	assert.Nil(t, e.PlaybackError())

	// With no current track PlayPause must not restart anything.
	e.PlayPause()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, Stopped, e.State())
	assert.Equal(t, []int64{1}, src.LoadCalls())
}

func TestRemoveFromQueueKeepsCurrentSong(t *testing.T) {
	e, _ := newTestEngine()
	playQueue(e, []model.Song{song(1, "a"), song(2, "b"), song(3, "c")}, 2)
	waitState(t, e, Playing)

	e.RemoveFromQueue(0)

	assert.Equal(t, 1, e.QueueIndex())
	require.NotNil(t, e.Current())
	assert.Equal(t, int64(3), e.Current().ID)
}

func TestStaleLoadDiscarded(t *testing.T) {
	e, src := newTestEngine()
	src.DelayLoad(1, 50*time.Millisecond)

	e.Play(song(1, "slow"))
	e.Play(song(2, "fast"))

	require.Eventually(t, func() bool {
		cur := e.Current()
		return e.State() == Playing && cur != nil && cur.ID == 2
	}, waitFor, tick)

	// Let the slow load resolve; it must not take over.
	time.Sleep(80 * time.Millisecond)
	require.NotNil(t, e.Current())
	assert.Equal(t, int64(2), e.Current().ID)
	assert.Equal(t, Playing, e.State())
}

func TestPlayPauseToggle(t *testing.T) {
	e, _ := newTestEngine()
	playQueue(e, []model.Song{song(1, "a")}, 0)
	waitState(t, e, Playing)

	e.PlayPause()
	assert.Equal(t, Paused, e.State())

	e.PlayPause()
	assert.Equal(t, Playing, e.State())
}

func TestResumeFailureStaysPaused(t *testing.T) {
	e, src := newTestEngine()
	playQueue(e, []model.Song{song(1, "a")}, 0)
	waitState(t, e, Playing)

	e.PlayPause()
	require.Equal(t, Paused, e.State())

	src.FailResume(errors.New("output lost"))
	e.PlayPause()

	assert.Equal(t, Paused, e.State())
	require.NotNil(t, e.Current())
	assert.NotNil(t, e.PlaybackError())
}

func TestOnPlayHookFires(t *testing.T) {
	e, _ := newTestEngine()
	played := make(chan int64, 1)
	e.SetOnPlay(func(s model.Song) { played <- s.ID })

	e.Play(song(1, "a"))

	select {
	case id := <-played:
		assert.Equal(t, int64(1), id)
	case <-time.After(waitFor):
		t.Fatal("onPlay hook never fired")
	}
}

func TestLogoutStopsPlayback(t *testing.T) {
	e, src := newTestEngine()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Set("tok", nil))

	e.BindSession(store)
	playQueue(e, []model.Song{song(1, "a")}, 0)
	waitState(t, e, Playing)

	require.NoError(t, store.Clear())

	assert.Equal(t, Stopped, e.State())
	assert.Nil(t, e.Current())
	assert.True(t, src.Stopped())
}

func TestClearErrorDismisses(t *testing.T) {
	e, src := newTestEngine()
	src.FailLoad(1, errors.New("boom"))

	playQueue(e, []model.Song{song(1, "a")}, 0)
	require.Eventually(t, func() bool { return e.PlaybackError() != nil }, waitFor, tick)

	e.ClearError()

	assert.Nil(t, e.PlaybackError())
}
