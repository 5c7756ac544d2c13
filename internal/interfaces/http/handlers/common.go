// Package handlers implements the HTTP endpoints of the coding service.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/common"
)

var validate = validator.New()

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes {"detail", "code"}.
func writeError(w http.ResponseWriter, statusCode int, detail string, code errors.ErrorCode) {
	writeJSON(w, statusCode, common.ErrorResponse{Detail: detail, Code: code.String()})
}

// writeAppError maps err to its HTTP status. Server-side failures are logged
// and masked.
func writeAppError(w http.ResponseWriter, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	var ae *errors.AppError
	if status >= http.StatusInternalServerError || !errors.As(err, &ae) {
		logger.Error("request failed", logging.String("code", code.String()), logging.Err(err))
		if ae != nil && status == http.StatusBadGateway {
			writeError(w, status, ae.Message, code)
			return
		}
		writeError(w, status, errors.DefaultMessageForCode(errors.ErrCodeInternal), code)
		return
	}
	writeError(w, status, ae.Message, code)
}

// decodeJSON reads a JSON body into dst and runs its validate tags.
func decodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "malformed JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Newf(errors.ErrCodeValidation, "field %s failed %s", verrs[0].Namespace(), verrs[0].Tag())
		}
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid request body")
	}
	return nil
}

// parseLimit reads ?limit=, defaulting to def and capped at max.
func parseLimit(r *http.Request, def, max int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > max {
				return max
			}
			return n
		}
	}
	return def
}

//Personal.AI order the ending
