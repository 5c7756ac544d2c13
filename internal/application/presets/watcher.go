package presets

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher refreshes a Registry when JSON files in its directory change.
// Bursts of events are coalesced into one refresh.
type Watcher struct {
	registry *Registry
	logger   logging.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a refresh fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher for registry's directory.
func NewWatcher(registry *Registry, logger logging.Logger, opts ...WatcherOption) *Watcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	w := &Watcher{
		registry: registry,
		logger:   logger.Named("preset-watcher"),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the directory is registered.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePresetLoadFailed, "create watcher")
	}
	if err := fw.Add(w.registry.Dir()); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, errors.ErrCodePresetLoadFailed, "watch preset directory").
			WithDetail("dir=" + w.registry.Dir())
	}
	w.watcher = fw
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			trigger = timer.C

		case <-trigger:
			trigger = nil
			if _, err := w.registry.Refresh(context.Background()); err != nil {
				w.logger.Error("preset refresh failed", logging.Err(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Err(err))
		}
	}
}

// Stop ends watching and waits for the loop to exit. Safe to call twice.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		if w.stop == nil {
			return
		}
		close(w.stop)
		_ = w.watcher.Close()
		<-w.done
	})
}

//Personal.AI order the ending
