package session

import (
	"os"
	"path/filepath"
	"time"

	"tracktide/logger"

	"github.com/fsnotify/fsnotify"
)

// pollInterval bounds how stale a cross-process session change can go
// unnoticed when filesystem events are unavailable.
const pollInterval = 30 * time.Second

type watcher struct {
	stop chan struct{}
}

// Watch starts observing the session file for changes made by other
// processes. The watch covers the containing directory because the file is
// replaced by rename on every save. A periodic re-read backs up the event
// stream on filesystems where fsnotify is unreliable.
func (s *Store) Watch() error {
	s.mu.Lock()
	if s.watch != nil {
		s.mu.Unlock()
		return nil
	}
	w := &watcher{stop: make(chan struct{})}
	s.watch = w
	s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return err
	}

	go func() {
		defer fw.Close()

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case event := <-fw.Events:
				if event.Name != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					s.reload()
				}
			case err := <-fw.Errors:
				logger.Warn("[Session] watcher error", logger.ErrorField(err))
			case <-ticker.C:
				s.reload()
			case <-w.stop:
				return
			}
		}
	}()

	return nil
}

// StopWatch stops the file watcher started by Watch.
func (s *Store) StopWatch() {
	s.mu.Lock()
	w := s.watch
	s.watch = nil
	s.mu.Unlock()

	if w != nil {
		close(w.stop)
	}
}
