package scriptstore

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watch stores script files of dir again whenever they are created or
// written, until ctx is done. Removing a file keeps its last stored script.
func (s *Store) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create script watcher")
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return errors.Wrapf(err, "failed to watch %s", dir)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if _, isScript := scriptFileExtensions[strings.ToLower(filepath.Ext(event.Name))]; !isScript {
					continue
				}
				s.reload(event.Name)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.LogWarnf("script watcher error: %s", err)
			}
		}
	}()

	s.LogInfof("watching %s for script changes", dir)

	return nil
}

func (s *Store) reload(path string) {
	script, err := ReadScriptFile(path)
	if err != nil {
		s.LogWarnf("ignoring changed script file: %s", err)
		return
	}
	if err := s.Put(script); err != nil {
		s.LogWarnf("ignoring changed script file %s: %s", path, err)
		return
	}
	s.LogInfof("reloaded script %s from %s", script.Name, path)
}
