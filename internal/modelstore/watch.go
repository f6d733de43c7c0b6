package modelstore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// dirRetryInterval is how often Watch looks for a model directory that does
// not exist yet.
var dirRetryInterval = 2 * time.Second

// Watch reloads the model each time the artifact is written or replaced.
// It runs until ctx is cancelled. The parent directory is watched so that
// atomic saves (write to temp, rename over) and late-arriving files are seen.
// If the directory does not exist yet, Watch waits for it to appear and then
// tries a load straight away.
//
// A failed reload is logged and the previous model stays active.
// In per_request mode Watch returns immediately.
func (s *Store) Watch(ctx context.Context) error {
	if s.mode != ModeStartup {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	dir := filepath.Dir(target)

	waited, err := addWhenPresent(ctx, watcher, dir)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	if waited {
		s.reloadLogged(target)
	}

	s.log.WithField("path", target).Info("watching model artifact for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reloadLogged(target)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Error("model watcher error")
		}
	}
}

// addWhenPresent adds dir to watcher, polling while dir does not exist.
// It reports whether it had to wait.
func addWhenPresent(ctx context.Context, watcher *fsnotify.Watcher, dir string) (bool, error) {
	waited := false
	for {
		err := watcher.Add(dir)
		if err == nil {
			return waited, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return waited, err
		}
		waited = true

		select {
		case <-ctx.Done():
			return waited, nil
		case <-time.After(dirRetryInterval):
		}
	}
}

func (s *Store) reloadLogged(target string) {
	if err := s.Reload(); err != nil {
		s.log.WithError(err).WithField("path", target).Error("model reload failed, keeping previous model")
		return
	}
	s.log.WithField("path", target).Info("model reloaded")
}
