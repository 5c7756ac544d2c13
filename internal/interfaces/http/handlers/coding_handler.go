package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/turtacn/TextCoder/internal/domain/run"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// CodingService is the application service behind /code and /runs.
type CodingService interface {
	Code(ctx context.Context, req coding.CodeRequest) (*coding.CodeResponse, error)
	GetRun(ctx context.Context, id uuid.UUID) (*run.CodingRun, error)
	ListRuns(ctx context.Context, limit int) ([]*run.CodingRun, error)
}

// CodingHandler serves coding requests and persisted runs.
type CodingHandler struct {
	svc    CodingService
	logger logging.Logger
}

// NewCodingHandler returns a CodingHandler.
func NewCodingHandler(svc CodingService, logger logging.Logger) *CodingHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CodingHandler{svc: svc, logger: logger}
}

// Code handles POST /code.
func (h *CodingHandler) Code(w http.ResponseWriter, r *http.Request) {
	var req coding.CodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if req.Rows == nil {
		req.Rows = []coding.InRow{}
	}
	resp, err := h.svc.Code(r.Context(), req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRun handles GET /runs/{runID}.
func (h *CodingHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id", errors.ErrCodeBadRequest)
		return
	}
	cr, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cr)
}

// ListRuns handles GET /runs.
func (h *CodingHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.ListRuns(r.Context(), parseLimit(r, 20, 100))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

//Personal.AI order the ending
