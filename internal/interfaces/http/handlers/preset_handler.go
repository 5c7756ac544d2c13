package handlers

import (
	"io"
	"net/http"

	"github.com/turtacn/TextCoder/internal/domain/preset"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// PresetCatalog lists loaded presets.
type PresetCatalog interface {
	List() []string
}

// LexiconExtender proposes lexicon additions.
type LexiconExtender interface {
	ExtendLexicon(req coding.ExtendRequest) (*coding.ExtendResult, error)
}

// PresetHandler serves preset listing, validation and extension.
type PresetHandler struct {
	catalog  PresetCatalog
	extender LexiconExtender
	logger   logging.Logger
}

// NewPresetHandler returns a PresetHandler.
func NewPresetHandler(catalog PresetCatalog, extender LexiconExtender, logger logging.Logger) *PresetHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PresetHandler{catalog: catalog, extender: extender, logger: logger}
}

// List handles GET /presets.
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	keys := h.catalog.List()
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, coding.PresetList{Presets: keys})
}

// Validate handles POST /validate_preset. Validation failures are reported
// in the body with status 200.
func (h *PresetHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeAppError(w, h.logger, errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read request body"))
		return
	}
	writeJSON(w, http.StatusOK, preset.Validate(body))
}

// Extend handles POST /extend_lexicon.
func (h *PresetHandler) Extend(w http.ResponseWriter, r *http.Request) {
	var req coding.ExtendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.extender.ExtendLexicon(req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
