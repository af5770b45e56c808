package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch discovers dir once, then re-discovers it whenever a file matching
// pattern is created, written, removed or renamed. Every published
// snapshot, including the first, is passed to onUpdate, which may be nil.
// Bursts of events within the debounce interval trigger one pass.
//
// Watch blocks until ctx is done and returns ctx.Err(), or an error if the
// directory cannot be watched.
func (c *Catalog) Watch(ctx context.Context, dir, pattern string, onUpdate func(*Snapshot)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: watch: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("catalog: watch %s: %w", dir, err)
	}

	rediscover := func() {
		sources, err := DirSources(dir, pattern)
		if err != nil {
			c.log.Warn("catalog: rescan failed", "dir", dir, "err", err)
			return
		}
		snap := c.Discover(sources)
		if onUpdate != nil {
			onUpdate(snap)
		}
	}
	rediscover()

	timer := time.NewTimer(c.debounce)
	timer.Stop()
	defer timer.Stop()

	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevant == 0 || !matches(pattern, event.Name) {
				continue
			}
			c.log.Debug("catalog: source changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(c.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("catalog: watcher error", "dir", dir, "err", err)
		case <-timer.C:
			rediscover()
		}
	}
}
