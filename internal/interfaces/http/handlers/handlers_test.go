package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/TextCoder/internal/domain/run"
	"github.com/turtacn/TextCoder/internal/testutil"
	apperrors "github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────────────────────────────────────

type MockCodingService struct{ mock.Mock }

func (m *MockCodingService) Code(ctx context.Context, req coding.CodeRequest) (*coding.CodeResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*coding.CodeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCodingService) GetRun(ctx context.Context, id uuid.UUID) (*run.CodingRun, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*run.CodingRun), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCodingService) ListRuns(ctx context.Context, limit int) ([]*run.CodingRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*run.CodingRun), args.Error(1)
}

type staticCatalog []string

func (c staticCatalog) List() []string { return c }

type MockExtender struct{ mock.Mock }

func (m *MockExtender) ExtendLexicon(req coding.ExtendRequest) (*coding.ExtendResult, error) {
	args := m.Called(req)
	if r := args.Get(0); r != nil {
		return r.(*coding.ExtendResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type countingRefresher struct {
	n     int
	calls int
	err   error
}

func (c *countingRefresher) Refresh(context.Context) (int, error) {
	c.calls++
	return c.n, c.err
}

type MockJobPublisher struct{ mock.Mock }

func (m *MockJobPublisher) PublishJob(ctx context.Context, job coding.Job) error {
	return m.Called(ctx, job).Error(0)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var e common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Coding
// ─────────────────────────────────────────────────────────────────────────────

func TestCodingHandler_Code(t *testing.T) {
	svc := new(MockCodingService)
	req := coding.CodeRequest{Rows: []coding.InRow{{Row: 3, Text: "I prayed."}}, Preset: "temples@1.2.0"}
	resp := &coding.CodeResponse{Results: []coding.CodedRow{{Row: 3, CodeVersion: "0.3.0", PresetVersion: "1.2.0"}}}
	svc.On("Code", mock.Anything, req).Return(resp, nil)

	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	NewCodingHandler(svc, nil).Code(w, httptest.NewRequest(http.MethodPost, "/code", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var got coding.CodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *resp, got)
}

func TestCodingHandler_CodeUnknownPresetIs400(t *testing.T) {
	svc := new(MockCodingService)
	svc.On("Code", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrCodePresetNotFound, "Unknown preset ghost@1.0.0"))

	w := httptest.NewRecorder()
	NewCodingHandler(svc, nil).Code(w, httptest.NewRequest(http.MethodPost, "/code",
		strings.NewReader(`{"rows":[],"preset":"ghost@1.0.0"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "Unknown preset ghost@1.0.0", e.Detail)
	assert.Equal(t, "PRE_001", e.Code)
}

func TestCodingHandler_CodeMalformedBodyIs422(t *testing.T) {
	w := httptest.NewRecorder()
	NewCodingHandler(new(MockCodingService), nil).Code(w, httptest.NewRequest(http.MethodPost, "/code", strings.NewReader(`{"rows":`)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCodingHandler_InternalErrorIsMasked(t *testing.T) {
	svc := new(MockCodingService)
	svc.On("Code", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection reset"))
	log := testutil.NewRecordingLogger()

	w := httptest.NewRecorder()
	NewCodingHandler(svc, log).Code(w, httptest.NewRequest(http.MethodPost, "/code", strings.NewReader(`{"rows":[]}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.True(t, log.HasMessage("error", "request failed"))
}

func routeRun(h *CodingHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/runs/{runID}", h.GetRun)
	return r
}

func TestCodingHandler_GetRun(t *testing.T) {
	svc := new(MockCodingService)
	id := uuid.New()
	svc.On("GetRun", mock.Anything, id).Return(&run.CodingRun{ID: id, Source: run.SourceAPI, RowCount: 1}, nil)

	w := httptest.NewRecorder()
	routeRun(NewCodingHandler(svc, nil)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+id.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestCodingHandler_GetRunErrors(t *testing.T) {
	svc := new(MockCodingService)
	svc.On("GetRun", mock.Anything, mock.Anything).Return(nil, apperrors.New(apperrors.ErrCodeRunNotFound, "coding run not found"))
	h := routeRun(NewCodingHandler(svc, nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCodingHandler_ListRunsCapsLimit(t *testing.T) {
	svc := new(MockCodingService)
	svc.On("ListRuns", mock.Anything, 100).Return([]*run.CodingRun{}, nil)

	w := httptest.NewRecorder()
	NewCodingHandler(svc, nil).ListRuns(w, httptest.NewRequest(http.MethodGet, "/runs?limit=5000", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs":[]}`, w.Body.String())
}

// ─────────────────────────────────────────────────────────────────────────────
// Presets
// ─────────────────────────────────────────────────────────────────────────────

func TestPresetHandler_List(t *testing.T) {
	w := httptest.NewRecorder()
	NewPresetHandler(staticCatalog{"a@1.0.0", "b@0.0.0"}, nil, nil).List(w, httptest.NewRequest(http.MethodGet, "/presets", nil))
	assert.JSONEq(t, `{"presets":["a@1.0.0","b@0.0.0"]}`, w.Body.String())

	w = httptest.NewRecorder()
	NewPresetHandler(staticCatalog(nil), nil, nil).List(w, httptest.NewRequest(http.MethodGet, "/presets", nil))
	assert.JSONEq(t, `{"presets":[]}`, w.Body.String())
}

func TestPresetHandler_Validate(t *testing.T) {
	h := NewPresetHandler(staticCatalog{}, nil, nil)

	w := httptest.NewRecorder()
	h.Validate(w, httptest.NewRequest(http.MethodPost, "/validate_preset",
		strings.NewReader(`{"meta":{"name":"x","version":"1.0.0"}}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Validate(w, httptest.NewRequest(http.MethodPost, "/validate_preset", strings.NewReader(`{"lexicons":5}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	var res coding.ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
}

func TestPresetHandler_Extend(t *testing.T) {
	ext := new(MockExtender)
	want := &coding.ExtendResult{
		Proposed:  map[string][]coding.Proposal{"agents.religious": {{Term: "angels", Source: "inflection", Base: "angel"}}},
		Conflicts: []string{},
		Notes:     []string{},
	}
	ext.On("ExtendLexicon", mock.MatchedBy(func(r coding.ExtendRequest) bool {
		return len(r.Categories) == 1 && r.Categories[0] == "agents"
	})).Return(want, nil)

	w := httptest.NewRecorder()
	NewPresetHandler(staticCatalog{}, ext, nil).Extend(w, httptest.NewRequest(http.MethodPost, "/extend_lexicon",
		strings.NewReader(`{"categories":["agents"]}`)))
	require.Equal(t, http.StatusOK, w.Code)
	var got coding.ExtendResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *want, got)
}

func TestPresetHandler_ExtendUnknownBase(t *testing.T) {
	ext := new(MockExtender)
	ext.On("ExtendLexicon", mock.Anything).Return(nil, apperrors.New(apperrors.ErrCodePresetNotFound, "Unknown preset z@1"))

	w := httptest.NewRecorder()
	NewPresetHandler(staticCatalog{}, ext, nil).Extend(w, httptest.NewRequest(http.MethodPost, "/extend_lexicon",
		strings.NewReader(`{"base_preset":"z@1","categories":[]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Webhook
// ─────────────────────────────────────────────────────────────────────────────

func TestVerifySignature(t *testing.T) {
	secret := []byte("s3cret")
	body := []byte(`{"ref":"main"}`)
	sig := Sign(secret, body)

	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.True(t, VerifySignature(secret, body, sig))
	assert.False(t, VerifySignature(secret, []byte(`{}`), sig))
	assert.False(t, VerifySignature([]byte("other"), body, sig))
	assert.False(t, VerifySignature(secret, body, strings.TrimPrefix(sig, "sha256=")))
	assert.False(t, VerifySignature(secret, body, ""))
}

type refreshCounter struct {
	trigger string
	n       int
}

func (r *refreshCounter) PresetsRefreshed(trigger string, n int) { r.trigger, r.n = trigger, n }

func TestWebhookHandler_ValidSignatureRefreshes(t *testing.T) {
	ref := &countingRefresher{n: 4}
	metrics := &refreshCounter{}
	h := NewWebhookHandler("s3cret", ref, metrics, nil)
	body := []byte(`{"ref":"refs/heads/main"}`)

	req := httptest.NewRequest(http.MethodPost, "/gh/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, Sign([]byte("s3cret"), body))
	w := httptest.NewRecorder()
	h.Handle(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"count":4}`, w.Body.String())
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, "webhook", metrics.trigger)
	assert.Equal(t, 4, metrics.n)
}

func TestWebhookHandler_BadSignatureIs401(t *testing.T) {
	ref := &countingRefresher{}
	h := NewWebhookHandler("s3cret", ref, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/gh/webhook", strings.NewReader(`{}`))
	req.Header.Set(SignatureHeader, "sha256=deadbeef")
	w := httptest.NewRecorder()
	h.Handle(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid signature", decodeError(t, w).Detail)
	assert.Zero(t, ref.calls)
}

// ─────────────────────────────────────────────────────────────────────────────
// Jobs
// ─────────────────────────────────────────────────────────────────────────────

func TestJobHandler_SubmitGeneratesID(t *testing.T) {
	pub := new(MockJobPublisher)
	pub.On("PublishJob", mock.Anything, mock.MatchedBy(func(j coding.Job) bool {
		_, err := uuid.Parse(j.JobID)
		return err == nil && len(j.Rows) == 1
	})).Return(nil)

	w := httptest.NewRecorder()
	NewJobHandler(pub, nil).Submit(w, httptest.NewRequest(http.MethodPost, "/jobs",
		strings.NewReader(`{"rows":[{"row":0,"text":"I saw a light."}]}`)))

	require.Equal(t, http.StatusAccepted, w.Code)
	var acc coding.JobAccepted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acc))
	assert.NotEmpty(t, acc.JobID)
	pub.AssertExpectations(t)
}

func TestJobHandler_RejectsEmptyJob(t *testing.T) {
	pub := new(MockJobPublisher)
	w := httptest.NewRecorder()
	NewJobHandler(pub, nil).Submit(w, httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"rows":[]}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	pub.AssertNotCalled(t, "PublishJob", mock.Anything, mock.Anything)
}

func TestJobHandler_PublishFailure(t *testing.T) {
	pub := new(MockJobPublisher)
	pub.On("PublishJob", mock.Anything, mock.Anything).Return(apperrors.New(apperrors.ErrCodeMessageQueueError, "broker down"))

	w := httptest.NewRecorder()
	NewJobHandler(pub, nil).Submit(w, httptest.NewRequest(http.MethodPost, "/jobs",
		strings.NewReader(`{"job_id":"j1","rows":[{"row":0,"text":"x"}]}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

//Personal.AI order the ending
