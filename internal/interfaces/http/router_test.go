package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/TextCoder/internal/application/coding"
	"github.com/turtacn/TextCoder/internal/application/presets"
	"github.com/turtacn/TextCoder/internal/domain/lexicon"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/TextCoder/internal/interfaces/http/handlers"
	"github.com/turtacn/TextCoder/internal/interfaces/http/middleware"
	codingtypes "github.com/turtacn/TextCoder/pkg/types/coding"
)

const templesPreset = `{
  "meta": {"name": "temples", "version": "1.2.0"},
  "lexicons": {"setting.sacred_tokens": ["pagoda"]}
}`

type RouterSuite struct {
	suite.Suite
	dir      string
	registry *presets.Registry
	svc      *coding.Service
	router   http.Handler
}

func (s *RouterSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.registry = presets.NewRegistry(s.dir, nil)
	s.svc = coding.NewService(lexicon.Default(), s.registry)
	s.registry.OnRefresh(func(int) { s.svc.InvalidatePresets() })

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "textcoder", Subsystem: "router"}, nil)
	s.Require().NoError(err)
	metrics := prometheus.NewAppMetrics(collector)

	s.router = NewRouter(RouterConfig{
		CodingHandler:    handlers.NewCodingHandler(s.svc, nil),
		PresetHandler:    handlers.NewPresetHandler(s.registry, presets.NewExtender(s.registry, lexicon.DefaultSpellingMap()), nil),
		WebhookHandler:   handlers.NewWebhookHandler("s3cret", s.registry, metrics, nil),
		HealthHandler:    handlers.NewHealthHandler(codingtypes.EngineVersion, []string{"redis"}),
		CORS:             middleware.DefaultCORSConfig(),
		MaxBodySize:      1 << 20,
		MetricsCollector: collector,
		HTTPObserver:     metrics,
	})
}

func (s *RouterSuite) do(method, path string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) code(preset string, texts ...string) *httptest.ResponseRecorder {
	req := codingtypes.CodeRequest{Preset: preset}
	for i, t := range texts {
		req.Rows = append(req.Rows, codingtypes.InRow{Row: i, Text: t})
	}
	body, _ := json.Marshal(req)
	return s.do(http.MethodPost, "/code", body, nil)
}

func (s *RouterSuite) TestCode_DefaultLexicon() {
	w := s.code("", "I prayed to God in the chapel.", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp codingtypes.CodeResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Results, 2)
	s.Equal(codingtypes.EngineVersion, resp.Results[0].CodeVersion)
	s.Equal(codingtypes.AdHocPresetVersion, resp.Results[0].PresetVersion)
	s.Equal(1, resp.Results[0].Coded.AgentSupernatural)
	s.Contains(resp.Results[0].Coded.SettingHits, "chapel")
	s.Equal(1, resp.Results[1].Coded.Conf)
	s.NotEmpty(w.Header().Get("Content-Type"))
}

func (s *RouterSuite) TestCode_UnknownPresetIs400() {
	w := s.code("ghost@9.9.9", "hello")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Unknown preset ghost@9.9.9")
}

func (s *RouterSuite) TestWebhookRefreshMakesPresetAvailable() {
	w := s.do(http.MethodGet, "/presets", nil, nil)
	s.JSONEq(`{"presets":[]}`, w.Body.String())

	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "temples.json"), []byte(templesPreset), 0o644))

	body := []byte(`{"ref":"refs/heads/main"}`)
	w = s.do(http.MethodPost, "/gh/webhook", body, map[string]string{
		handlers.SignatureHeader: handlers.Sign([]byte("s3cret"), body),
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"ok":true,"count":1}`, w.Body.String())

	w = s.do(http.MethodGet, "/presets", nil, nil)
	s.JSONEq(`{"presets":["temples@1.2.0"]}`, w.Body.String())

	w = s.code("temples@1.2.0", "We meditated inside the pagoda.")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp codingtypes.CodeResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("1.2.0", resp.Results[0].PresetVersion)
	s.Contains(resp.Results[0].Coded.SettingHits, "pagoda")
}

func (s *RouterSuite) TestWebhookBadSignature() {
	w := s.do(http.MethodPost, "/gh/webhook", []byte(`{}`), map[string]string{handlers.SignatureHeader: "sha256=00"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestValidatePreset() {
	w := s.do(http.MethodPost, "/validate_preset", []byte(templesPreset), nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"ok":true}`, w.Body.String())
}

func (s *RouterSuite) TestExtendLexicon() {
	w := s.do(http.MethodPost, "/extend_lexicon", []byte(`{"categories":["agent"],"keywords":{"agent.supernatural_nouns":["angel"]}}`), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var res codingtypes.ExtendResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.NotEmpty(res.Proposed["agent.supernatural_nouns"])
}

func (s *RouterSuite) TestProbesAndMetrics() {
	w := s.do(http.MethodGet, "/healthz", nil, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/readyz", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"disabled"`)

	s.code("", "hello")
	w = s.do(http.MethodGet, "/metrics", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "textcoder_router_http_requests_total")
}

func (s *RouterSuite) TestUnregisteredRoutes() {
	w := s.do(http.MethodPost, "/jobs", []byte(`{}`), nil)
	s.Equal(http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/runs/"+"00000000-0000-0000-0000-000000000000", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func TestNewRouter_Empty(t *testing.T) {
	r := NewRouter(RouterConfig{CORS: middleware.DefaultCORSConfig()})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/code", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), nil)
	require.NotNil(t, srv.Handler())
	assert.NoError(t, srv.Stop(context.Background()))
}

//Personal.AI order the ending
