package server

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchConfig reloads the pipeline when the config file changes. The watch
// is on the directory because editors typically replace the file rather
// than writing it in place.
func (s *Server) watchConfig(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn().Err(err).Msg("config watch unavailable")
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(s.cfgPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Warn().Err(err).Str("dir", dir).Msg("config watch unavailable")
		return
	}

	target := filepath.Clean(s.cfgPath)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(); err != nil {
				// Keep serving with the previous pipeline on a bad edit.
				s.logger.Error().Err(err).Msg("config reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Msg("config watch error")
		}
	}
}
