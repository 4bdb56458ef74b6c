package player

import "tracktide/model"

// Queue holds the songs scheduled for playback and tracks which one is
// current. It is not safe for concurrent use; the Engine serializes access.
type Queue struct {
	songs        []model.Song
	currentIndex int // -1 if nothing playing
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{currentIndex: -1}
}

// Current returns the current song, or nil if none.
func (q *Queue) Current() *model.Song {
	if q.currentIndex < 0 || q.currentIndex >= len(q.songs) {
		return nil
	}
	return &q.songs[q.currentIndex]
}

// CurrentIndex returns the index of the current song (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// HasNext returns true if there is a song after the current one.
func (q *Queue) HasNext() bool {
	return q.currentIndex < len(q.songs)-1
}

// HasPrevious returns true if there is a song before the current one.
func (q *Queue) HasPrevious() bool {
	return q.currentIndex > 0
}

// Next advances to the next song and returns it, or nil at the tail.
func (q *Queue) Next() *model.Song {
	if !q.HasNext() {
		return nil
	}
	q.currentIndex++
	return q.Current()
}

// Previous steps back to the previous song and returns it, or nil at the
// head.
func (q *Queue) Previous() *model.Song {
	if !q.HasPrevious() {
		return nil
	}
	q.currentIndex--
	return q.Current()
}

// JumpTo sets the current index. Returns the song there, or nil if the
// index is out of range.
func (q *Queue) JumpTo(index int) *model.Song {
	if index < 0 || index >= len(q.songs) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// IndexOf returns the index of the song with the given id, or -1.
func (q *Queue) IndexOf(songID int64) int {
	for i := range q.songs {
		if q.songs[i].ID == songID {
			return i
		}
	}
	return -1
}

// Add appends songs without changing playback.
func (q *Queue) Add(songs ...model.Song) {
	q.songs = append(q.songs, songs...)
}

// Replace swaps in a new list and makes the song with selectedID current.
// When selectedID is absent from the list the index resets to -1. Returns
// the new current song, or nil.
func (q *Queue) Replace(songs []model.Song, selectedID int64) *model.Song {
	q.songs = append([]model.Song(nil), songs...)
	q.currentIndex = q.IndexOf(selectedID)
	return q.Current()
}

// Deselect resets the current index without touching the songs. Used when
// playback moves to a track outside the queue.
func (q *Queue) Deselect() {
	q.currentIndex = -1
}

// RemoveAt removes the song at the given index and keeps the current song
// pointing at the same track when possible. Removing the current song leaves
// the index on its successor, clamped at the tail.
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.songs) {
		return false
	}
	q.songs = append(q.songs[:index], q.songs[index+1:]...)

	if q.currentIndex > index {
		q.currentIndex--
	} else if q.currentIndex == index && q.currentIndex >= len(q.songs) {
		q.currentIndex = len(q.songs) - 1
	}
	return true
}

// Clear removes all songs and resets playback.
func (q *Queue) Clear() {
	q.songs = nil
	q.currentIndex = -1
}

// Songs returns a copy of the queued songs.
func (q *Queue) Songs() []model.Song {
	out := make([]model.Song, len(q.songs))
	copy(out, q.songs)
	return out
}

// Len returns the number of queued songs.
func (q *Queue) Len() int {
	return len(q.songs)
}

// IsEmpty returns true if the queue has no songs.
func (q *Queue) IsEmpty() bool {
	return len(q.songs) == 0
}
