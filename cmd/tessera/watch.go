package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is the quiet period after the last change before a reload.
var watchDebounce = 200 * time.Millisecond

// watchSite calls reload once changes below root settle, until ctx is
// canceled. Directories created later are watched too.
func watchSite(ctx context.Context, root string, logger *slog.Logger, reload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch site: %w", err)
	}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if d.Name() == ".git" {
			return fs.SkipDir
		}
		return w.Add(p)
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to watch site: %w", err)
	}

	go func() {
		defer w.Close()
		fire := make(chan struct{}, 1)
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Chmod {
					continue
				}
				if ev.Has(fsnotify.Create) {
					if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
						w.Add(ev.Name)
					}
				}
				logger.Debug("site changed", "file", ev.Name, "op", ev.Op.String())
				if timer == nil {
					timer = time.AfterFunc(watchDebounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				} else {
					timer.Reset(watchDebounce)
				}
			case <-fire:
				reload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "error", err)
			}
		}
	}()
	return nil
}
