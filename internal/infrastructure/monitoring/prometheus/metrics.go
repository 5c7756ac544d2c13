package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// Duration buckets in seconds.
var (
	DefaultHTTPDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultCodingDurationBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .5}
	DefaultBatchSizeBuckets      = []float64{1, 5, 10, 50, 100, 500, 1000, 5000}
)

// AppMetrics holds every TextCoder metric family.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Coding
	TextsCodedTotal    CounterVec
	CodingDuration     HistogramVec
	RequestRows        HistogramVec
	DimensionPositives CounterVec
	EngineBuildsTotal  CounterVec
	CacheHitsTotal     CounterVec
	CacheMissesTotal   CounterVec

	// Presets
	PresetsLoaded        GaugeVec
	PresetRefreshesTotal CounterVec

	// Worker
	JobsTotal CounterVec
}

// NewAppMetrics registers all metrics with collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route"),
		HTTPActiveRequests:  collector.RegisterGauge("http_active_requests", "In-flight HTTP requests"),

		TextsCodedTotal:    collector.RegisterCounter("texts_coded_total", "Texts coded by the rule engine", "source", "preset"),
		CodingDuration:     collector.RegisterHistogram("coding_duration_seconds", "Time to code one text", DefaultCodingDurationBuckets, "source"),
		RequestRows:        collector.RegisterHistogram("request_rows", "Rows per coding request", DefaultBatchSizeBuckets, "source"),
		DimensionPositives: collector.RegisterCounter("dimension_positives_total", "Coded texts on which a dimension fired", "dimension"),
		EngineBuildsTotal:  collector.RegisterCounter("engine_builds_total", "Rule engines compiled", "kind"),
		CacheHitsTotal:     collector.RegisterCounter("cache_hits_total", "Cache hits", "cache"),
		CacheMissesTotal:   collector.RegisterCounter("cache_misses_total", "Cache misses", "cache"),

		PresetsLoaded:        collector.RegisterGauge("presets_loaded", "Presets currently in the registry"),
		PresetRefreshesTotal: collector.RegisterCounter("preset_refreshes_total", "Preset registry refreshes", "trigger"),

		JobsTotal: collector.RegisterCounter("jobs_total", "Coding jobs handled by the worker", "status"),
	}
}

// ObserveText records one coded text.
func (m *AppMetrics) ObserveText(source, preset string, res coding.Result, d time.Duration) {
	if preset == "" {
		preset = "default"
	}
	m.TextsCodedTotal.WithLabelValues(source, preset).Inc()
	m.CodingDuration.WithLabelValues(source).Observe(d.Seconds())
	for _, dim := range res.Positives() {
		m.DimensionPositives.WithLabelValues(dim).Inc()
	}
}

// ObserveRequest records the row count of one coding request.
func (m *AppMetrics) ObserveRequest(source string, rows int) {
	m.RequestRows.WithLabelValues(source).Observe(float64(rows))
}

// EngineBuilt counts an engine compilation; kind is "default" or "preset".
func (m *AppMetrics) EngineBuilt(kind string) {
	m.EngineBuildsTotal.WithLabelValues(kind).Inc()
}

// CacheLookup counts a hit or miss on the named cache.
func (m *AppMetrics) CacheLookup(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// PresetsRefreshed records a registry refresh that left n presets loaded.
func (m *AppMetrics) PresetsRefreshed(trigger string, n int) {
	m.PresetRefreshesTotal.WithLabelValues(trigger).Inc()
	m.PresetsLoaded.WithLabelValues().Set(float64(n))
}

// ObserveHTTP records one completed HTTP request.
func (m *AppMetrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// JobHandled counts a worker job by outcome.
func (m *AppMetrics) JobHandled(status string) {
	m.JobsTotal.WithLabelValues(status).Inc()
}

//Personal.AI order the ending
