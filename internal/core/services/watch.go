package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/oceanum-labs/oceanrag/internal/logger"
)

// Watcher re-ingests supported files as they appear or change in a
// directory. Deduplication makes redundant events harmless: a rewrite
// that leaves filename and size unchanged is skipped by the ingestor.
type Watcher struct {
	ingestor *Ingestor
}

// NewWatcher creates a directory watcher over the given ingestor.
func NewWatcher(ingestor *Ingestor) *Watcher {
	return &Watcher{ingestor: ingestor}
}

// Watch blocks processing file events for dir until the context is
// cancelled. Create and Write events trigger ingestion; removals are
// ignored since the corpus only grows outside administrative resets.
func (w *Watcher) Watch(ctx context.Context, dir, organization string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching directory: %s", dir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !supportedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			// Editors often write via create-then-rename, so Create and
			// Write are handled the same way.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug("watch event: %s", event)
				result := w.ingestor.IngestFile(ctx, event.Name, organization)
				if result.Err != nil {
					logger.Warn("ingest %s: %v", result.Filename, result.Err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		case <-ctx.Done():
			logger.Info("watcher shutting down")
			return ctx.Err()
		}
	}
}
