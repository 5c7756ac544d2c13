// Package coding is the application service in front of the rule engine: it
// resolves the engine for a request (base lexicon or preset overlay), codes
// rows, and fans results out to the optional cache, run store, bus and
// metrics.
package coding

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/TextCoder/internal/domain/lexicon"
	"github.com/turtacn/TextCoder/internal/domain/preset"
	"github.com/turtacn/TextCoder/internal/domain/run"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/internal/intelligence/rules"
	"github.com/turtacn/TextCoder/pkg/errors"
	codingtypes "github.com/turtacn/TextCoder/pkg/types/coding"
)

// PresetSource resolves presets by "name@version" key.
type PresetSource interface {
	Get(key string) (*preset.Preset, error)
	List() []string
}

// ResultCache caches coded results across processes.
type ResultCache interface {
	Get(ctx context.Context, key string) (codingtypes.Result, bool, error)
	Set(ctx context.Context, key string, res codingtypes.Result) error
}

// purgeTimeout bounds the result-cache purge that follows a preset refresh.
const purgeTimeout = 10 * time.Second

// identityPurger is implemented by result caches that can drop entries by
// lexicon identity prefix.
type identityPurger interface {
	PurgeIdentity(ctx context.Context, prefix string) (int64, error)
}

// ResultPublisher announces finished runs.
type ResultPublisher interface {
	PublishResult(ctx context.Context, res codingtypes.JobResult) error
}

// Metrics receives coding observations.
type Metrics interface {
	ObserveText(source, preset string, res codingtypes.Result, d time.Duration)
	ObserveRequest(source string, rows int)
	EngineBuilt(kind string)
	CacheLookup(cache string, hit bool)
}

// CacheKeyFunc derives the result-cache key of text for an engine.
type CacheKeyFunc func(identity, engineVersion, text string) string

// Service codes texts.
type Service struct {
	base          lexicon.Config
	presets       PresetSource
	engines       *EngineCache
	engineVersion string

	cache     ResultCache
	cacheKey  CacheKeyFunc
	runs      run.Repository
	publisher ResultPublisher
	metrics   Metrics
	logger    logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEngineVersion overrides the code_version reported on every row.
func WithEngineVersion(v string) Option {
	return func(s *Service) {
		if v != "" {
			s.engineVersion = v
		}
	}
}

// WithEngineCache shares an engine cache between services.
func WithEngineCache(c *EngineCache) Option {
	return func(s *Service) {
		if c != nil {
			s.engines = c
		}
	}
}

// WithResultCache enables result caching under keys built by keyFn.
func WithResultCache(c ResultCache, keyFn CacheKeyFunc) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheKey = keyFn
	}
}

// WithRunRepository persists every non-empty run.
func WithRunRepository(r run.Repository) Option {
	return func(s *Service) { s.runs = r }
}

// WithPublisher announces API and batch runs on the bus.
func WithPublisher(p ResultPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records coding metrics.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a Service coding against base. presets may be nil, in
// which case every preset lookup fails with PRE_001.
func NewService(base lexicon.Config, presets PresetSource, opts ...Option) *Service {
	s := &Service{
		base:          base,
		presets:       presets,
		engines:       NewEngineCache(),
		engineVersion: codingtypes.EngineVersion,
		logger:        logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EngineVersion returns the reported code_version.
func (s *Service) EngineVersion() string { return s.engineVersion }

// Engines exposes the engine cache.
func (s *Service) Engines() *EngineCache { return s.engines }

// Presets lists the available preset keys.
func (s *Service) Presets() []string {
	if s.presets == nil {
		return []string{}
	}
	return s.presets.List()
}

// InvalidatePresets drops every preset engine so the next request rebuilds
// from the refreshed registry.
func (s *Service) InvalidatePresets() {
	n := s.engines.InvalidatePresets()
	s.logger.Info("preset engines invalidated", logging.Int("dropped", n))

	p, ok := s.cache.(identityPurger)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()
	purged, err := p.PurgeIdentity(ctx, PresetEngineKey(""))
	if err != nil {
		s.logger.Warn("purging preset results failed", logging.Err(err))
		return
	}
	s.logger.Info("preset results purged", logging.Int64("dropped", purged))
}

// Engine resolves the engine for presetKey ("" for the base lexicon) and
// returns it with the preset_version to report.
func (s *Service) Engine(presetKey string) (*rules.Engine, string, error) {
	if presetKey == "" {
		e, err := s.engines.Get(DefaultEngineKey, func() (*rules.Engine, error) {
			return s.build("default", s.base), nil
		})
		return e, codingtypes.AdHocPresetVersion, err
	}

	if s.presets == nil {
		return nil, "", errors.New(errors.ErrCodePresetNotFound, "Unknown preset "+presetKey)
	}
	if _, err := s.presets.Get(presetKey); err != nil {
		return nil, "", err
	}
	e, err := s.engines.Get(PresetEngineKey(presetKey), func() (*rules.Engine, error) {
		// Read again: a refresh may have replaced the preset since the check.
		p, err := s.presets.Get(presetKey)
		if err != nil {
			return nil, err
		}
		return s.build("preset", p.Apply(s.base)), nil
	})
	return e, preset.VersionOf(presetKey), err
}

// build compiles an engine. A degraded lexicon is logged, not fatal: the
// engine still codes.
func (s *Service) build(kind string, cfg lexicon.Config) *rules.Engine {
	start := time.Now()
	e, err := rules.New(cfg)
	if err != nil {
		s.logger.Warn("engine built from degraded lexicon",
			logging.String("kind", kind),
			logging.String("code", errors.GetCode(err).String()),
			logging.Err(err))
	}
	s.logger.Debug("engine built",
		logging.String("kind", kind),
		logging.String("fingerprint", e.Fingerprint()),
		logging.Duration("elapsed", time.Since(start)))
	if s.metrics != nil {
		s.metrics.EngineBuilt(kind)
	}
	return e
}

// Analyze codes one text.
func (s *Service) Analyze(ctx context.Context, presetKey, text string) (codingtypes.Result, error) {
	e, _, err := s.Engine(presetKey)
	if err != nil {
		return codingtypes.Result{}, err
	}
	return s.analyze(ctx, e, "cli", presetKey, text), nil
}

// Code serves POST /code.
func (s *Service) Code(ctx context.Context, req codingtypes.CodeRequest) (*codingtypes.CodeResponse, error) {
	return s.CodeRows(ctx, run.SourceAPI, req.Preset, req.Rows)
}

// CodeRows codes rows in order. The response is index-aligned with rows.
// Persistence and publishing failures are logged and do not fail the call.
func (s *Service) CodeRows(ctx context.Context, src run.Source, presetKey string, rows []codingtypes.InRow) (*codingtypes.CodeResponse, error) {
	e, presetVersion, err := s.Engine(presetKey)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveRequest(string(src), len(rows))
	}

	resp := &codingtypes.CodeResponse{Results: make([]codingtypes.CodedRow, len(rows))}
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCodingFailed, "coding cancelled")
		}
		resp.Results[i] = codingtypes.CodedRow{
			Row:           r.Row,
			CodeVersion:   s.engineVersion,
			PresetVersion: presetVersion,
			Coded:         s.analyze(ctx, e, string(src), presetKey, r.Text),
		}
	}

	resp.RunID = s.Record(ctx, src, presetKey, presetVersion, e.Fingerprint(), rows, resp.Results)
	s.logger.Info("rows coded",
		logging.String("source", string(src)),
		logging.String("preset_version", presetVersion),
		logging.Int("rows", len(rows)))
	return resp, nil
}

// Record persists and announces a finished run and returns its id, or ""
// when the run was empty or not persisted. Failures are logged only.
func (s *Service) Record(ctx context.Context, src run.Source, presetKey, presetVersion, fingerprint string, rows []codingtypes.InRow, results []codingtypes.CodedRow) string {
	if len(results) == 0 {
		return ""
	}
	rec := run.NewCodingRun(src, presetKey, presetVersion, s.engineVersion, fingerprint, rows, results)
	var runID string
	if s.runs != nil {
		if err := s.runs.Save(ctx, rec); err != nil {
			s.logger.Error("failed to persist coding run",
				logging.String("run_id", rec.ID.String()),
				logging.Err(err))
		} else {
			runID = rec.ID.String()
		}
	}
	if s.publisher != nil && src != run.SourceWorker {
		ev := codingtypes.JobResult{JobID: rec.ID.String(), RunID: runID, Results: results}
		if err := s.publisher.PublishResult(ctx, ev); err != nil {
			s.logger.Warn("failed to publish coding result",
				logging.String("run_id", rec.ID.String()),
				logging.Err(err))
		}
	}
	return runID
}

// CodeText codes one text with an engine obtained from Engine, going through
// the result cache and metrics. It is safe for concurrent use.
func (s *Service) CodeText(ctx context.Context, e *rules.Engine, src run.Source, presetKey, text string) codingtypes.Result {
	return s.analyze(ctx, e, string(src), presetKey, text)
}

func (s *Service) analyze(ctx context.Context, e *rules.Engine, source, presetKey, text string) codingtypes.Result {
	var key string
	if s.cache != nil && s.cacheKey != nil {
		identity := e.Fingerprint()
		if presetKey != "" {
			identity = PresetEngineKey(identity)
		}
		key = s.cacheKey(identity, s.engineVersion, text)
		res, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("result cache read failed", logging.Err(err))
		}
		if s.metrics != nil && err == nil {
			s.metrics.CacheLookup("result", hit)
		}
		if hit {
			return res
		}
	}

	start := time.Now()
	res := e.Analyze(text)
	if s.metrics != nil {
		s.metrics.ObserveText(source, presetKey, res, time.Since(start))
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.logger.Warn("result cache write failed", logging.Err(err))
		}
	}
	return res
}

// GetRun returns a persisted run, or COD_003 when persistence is disabled.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*run.CodingRun, error) {
	if s.runs == nil {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run persistence is disabled")
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]*run.CodingRun, error) {
	if s.runs == nil {
		return []*run.CodingRun{}, nil
	}
	return s.runs.List(ctx, limit)
}

//Personal.AI order the ending
