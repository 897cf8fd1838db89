package jsonenv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDelay groups bursts of file events (editors often write a file several times).
const debounceDelay = 100 * time.Millisecond

// Watch loads the folder, then reloads it whenever a candidate file changes.
// Returns: reloads channel, errors channel, initial load error.
// The first Reload (Version 1, Cause "initial") reports the initial load. Reloads are
// sequential loads with the same Config, so only Overwrite replaces values that changed.
// Both channels are closed when ctx is done. Watch requires the real file system.
func (l *Loader) Watch(ctx context.Context) (<-chan Reload, <-chan error, error) {
	if err := l.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("jsonenv: initial load failed: %w", err)
	}

	cfg, err := Resolve(l.cfg)
	if err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("jsonenv: create watcher: %w", err)
	}
	if err := watcher.Add(cfg.Folder); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("jsonenv: watch %s: %w", cfg.Folder, err)
	}

	reloadCh := make(chan Reload)
	errorCh := make(chan error)

	go l.watchLoop(ctx, watcher, cfg, reloadCh, errorCh)

	return reloadCh, errorCh, nil
}

// watchLoop owns the watcher and both channels; every send happens on this goroutine.
func (l *Loader) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, cfg Config, reloadCh chan<- Reload, errorCh chan<- error) {
	defer close(errorCh)
	defer close(reloadCh)
	defer watcher.Close()

	version := int64(1)
	select {
	case reloadCh <- Reload{Version: version, LoadedAt: time.Now(), Cause: "initial"}:
	case <-ctx.Done():
		return
	}

	filter := cfg.folderFilter()

	var (
		timer *time.Timer
		fire  <-chan time.Time
		cause string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if event.Op == fsnotify.Chmod || !filter.Allows(name) {
				continue
			}

			cause = strings.ToLower(event.Op.String()) + ":" + name
			l.logger.Debug("file changed", zap.String("event", cause))

			if timer == nil {
				timer = time.NewTimer(debounceDelay)
			} else {
				timer.Reset(debounceDelay)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			select {
			case errorCh <- fmt.Errorf("jsonenv: watch %s: %w", cfg.Folder, err):
			case <-ctx.Done():
				return
			}

		case <-fire:
			fire = nil

			if err := l.Load(ctx); err != nil {
				l.logger.Warn("reload failed", zap.String("cause", cause), zap.Error(err))
				select {
				case errorCh <- fmt.Errorf("jsonenv: reload failed: %w", err):
				case <-ctx.Done():
					return
				}
				continue
			}

			version++
			select {
			case reloadCh <- Reload{Version: version, LoadedAt: time.Now(), Cause: cause}:
			case <-ctx.Done():
				return
			}
		}
	}
}
