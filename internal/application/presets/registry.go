// Package presets provides the application services around presets: the
// on-disk registry, its hot-reload watcher and the lexicon extender.
package presets

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/turtacn/TextCoder/internal/domain/preset"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
)

// Registry holds the presets found in a directory, keyed "name@version".
// It is safe for concurrent use; a refresh swaps the whole set at once.
type Registry struct {
	dir    string
	logger logging.Logger

	mu        sync.RWMutex
	presets   map[string]*preset.Preset
	loaded    bool
	onRefresh []func(count int)
}

// NewRegistry creates a registry for dir. Nothing is read until the first
// Refresh, List or Get.
func NewRegistry(dir string, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		dir:     dir,
		logger:  logger,
		presets: make(map[string]*preset.Preset),
	}
}

// Dir returns the watched directory.
func (r *Registry) Dir() string { return r.dir }

// OnRefresh registers fn to run after every successful Refresh.
func (r *Registry) OnRefresh(fn func(count int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRefresh = append(r.onRefresh, fn)
}

// Refresh re-reads every *.json file in the directory and returns the new
// preset count. A missing directory yields an empty registry. Files that
// fail to decode are logged and skipped. When two files share a key the one
// whose path sorts last wins.
func (r *Registry) Refresh(ctx context.Context) (int, error) {
	loaded, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.presets = loaded
	r.loaded = true
	hooks := append([]func(int){}, r.onRefresh...)
	r.mu.Unlock()

	r.logger.Info("presets refreshed",
		logging.String("dir", r.dir),
		logging.Int("count", len(loaded)))
	for _, fn := range hooks {
		fn(len(loaded))
	}
	return len(loaded), nil
}

func (r *Registry) load(ctx context.Context) (map[string]*preset.Preset, error) {
	out := make(map[string]*preset.Preset)
	if _, err := os.Stat(r.dir); os.IsNotExist(err) {
		return out, nil
	}
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePresetLoadFailed, "list preset files").
			WithDetail("dir=" + r.dir)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodePresetLoadFailed, "read preset file").
				WithDetail("path=" + path)
		}
		p, err := preset.Parse(data, preset.StemOf(path))
		if err != nil {
			r.logger.Warn("skipping unreadable preset",
				logging.String("path", path), logging.Err(err))
			continue
		}
		out[p.Key()] = p
	}
	return out, nil
}

func (r *Registry) ensureLoaded() {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return
	}
	if _, err := r.Refresh(context.Background()); err != nil {
		r.logger.Error("initial preset load failed", logging.Err(err))
	}
}

// List returns the sorted preset keys.
func (r *Registry) List() []string {
	r.ensureLoaded()
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.presets))
	for k := range r.presets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the preset stored under key, or PRE_001.
func (r *Registry) Get(key string) (*preset.Preset, error) {
	r.ensureLoaded()
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[key]
	if !ok {
		return nil, errors.New(errors.ErrCodePresetNotFound, "Unknown preset "+key)
	}
	return p, nil
}

// Len returns the number of loaded presets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presets)
}

//Personal.AI order the ending
