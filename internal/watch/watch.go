// ============================================================================
// pnc - Polish Notation Calculator
// ============================================================================
//
// Package:     watch
// Description: Re-run a callback when a file changes
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher
type Options struct {
	Debounce time.Duration
	Logger   *mdwlog.Logger
}

// Watcher watches a single file. The parent directory is watched so that
// editors which replace the file on save are noticed as well.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *mdwlog.Logger
}

// New creates a watcher for path
func New(path string, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: opts.Debounce,
		logger:   opts.Logger.WithField("component", "pnc-watch"),
	}
}

// Run calls onChange after each burst of writes to the file and blocks until
// ctx is done. onChange runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create watcher").
			WithCode(mdwerror.CodeIO).
			WithOperation("watch.Run")
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return mdwerror.Wrap(err, "failed to watch directory").
			WithCode(mdwerror.CodeIO).
			WithOperation("watch.Run").
			WithDetail("path", dir)
	}

	w.logger.Info("Watching for changes", mdwlog.Fields{"path": w.path})

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("File event", mdwlog.Fields{"op": event.Op.String()})
			timer.Reset(w.debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnWithErr("Watcher error", err)
		}
	}
}
