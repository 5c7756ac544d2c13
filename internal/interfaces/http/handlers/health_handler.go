package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/TextCoder/pkg/types/common"
)

// HealthChecker is a backend that can report its health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	disabled []string
	version  string
	timeout  time.Duration
}

// NewHealthHandler returns a HealthHandler. disabled names backends that are
// switched off in configuration; they are reported but never checked.
func NewHealthHandler(version string, disabled []string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		disabled: disabled,
		version:  version,
		timeout:  5 * time.Second,
	}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": string(common.HealthUp), "version": h.version})
}

// Readiness handles GET /readyz. Any failing backend yields 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	for _, name := range h.disabled {
		components = append(components, common.ComponentHealth{Name: name, Status: common.HealthDisabled})
	}
	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	report := common.HealthReport{
		Status:     common.Overall(components),
		Version:    h.version,
		Components: components,
	}
	status := http.StatusOK
	if report.Status == common.HealthDown {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// checkAll runs every checker concurrently.
func (h *HealthHandler) checkAll(ctx context.Context) []common.ComponentHealth {
	results := make([]common.ComponentHealth, len(h.checkers))
	var wg sync.WaitGroup
	for i, c := range h.checkers {
		wg.Add(1)
		go func(i int, c HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := c.Check(ctx)
			ch := common.ComponentHealth{Name: c.Name(), Status: common.HealthUp, Latency: time.Since(start)}
			if err != nil {
				ch.Status = common.HealthDown
				ch.Message = err.Error()
			}
			results[i] = ch
		}(i, c)
	}
	wg.Wait()
	return results
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.ComponentName }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

//Personal.AI order the ending
