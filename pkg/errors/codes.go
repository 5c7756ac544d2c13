package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
)

// Sentinel codes that are never looked up in the status table.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Configuration Error Codes
const (
	ErrCodeConfigInvalid ErrorCode = "CFG_001"
)

// Lexicon Error Codes
const (
	// ErrCodeLexiconIncomplete marks an engine built from a lexicon that left
	// every pattern registration empty. The engine is still usable.
	ErrCodeLexiconIncomplete ErrorCode = "LEX_001"
	ErrCodeLexiconMalformed  ErrorCode = "LEX_002"
	ErrCodeLexiconLoadFailed ErrorCode = "LEX_003"
)

// Preset Error Codes
const (
	ErrCodePresetNotFound   ErrorCode = "PRE_001"
	ErrCodePresetInvalid    ErrorCode = "PRE_002"
	ErrCodePresetLoadFailed ErrorCode = "PRE_003"
)

// Coding Error Codes
const (
	ErrCodeCodingFailed      ErrorCode = "COD_001"
	ErrCodeUnknownTextColumn ErrorCode = "COD_002"
	ErrCodeRunNotFound       ErrorCode = "COD_003"
)

// Integration Error Codes
const (
	ErrCodeWebhookSignature ErrorCode = "HOOK_001"
	ErrCodeExportFailed     ErrorCode = "EXP_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,

	ErrCodeConfigInvalid: http.StatusInternalServerError,

	ErrCodeLexiconIncomplete: http.StatusUnprocessableEntity,
	ErrCodeLexiconMalformed:  http.StatusUnprocessableEntity,
	ErrCodeLexiconLoadFailed: http.StatusInternalServerError,

	// Unknown presets are a client mistake on /code.
	ErrCodePresetNotFound:   http.StatusBadRequest,
	ErrCodePresetInvalid:    http.StatusBadRequest,
	ErrCodePresetLoadFailed: http.StatusInternalServerError,

	ErrCodeCodingFailed:      http.StatusInternalServerError,
	ErrCodeUnknownTextColumn: http.StatusBadRequest,
	ErrCodeRunNotFound:       http.StatusNotFound,

	ErrCodeWebhookSignature: http.StatusUnauthorized,
	ErrCodeExportFailed:     http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeStorageError:       "object storage error",

	ErrCodeConfigInvalid: "invalid configuration",

	ErrCodeLexiconIncomplete: "lexicon leaves every pattern empty",
	ErrCodeLexiconMalformed:  "lexicon section has an unexpected shape",
	ErrCodeLexiconLoadFailed: "failed to load lexicon",

	ErrCodePresetNotFound:   "unknown preset",
	ErrCodePresetInvalid:    "invalid preset",
	ErrCodePresetLoadFailed: "failed to load presets",

	ErrCodeCodingFailed:      "coding failed",
	ErrCodeUnknownTextColumn: "text column not found",
	ErrCodeRunNotFound:       "coding run not found",

	ErrCodeWebhookSignature: "bad signature",
	ErrCodeExportFailed:     "export failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
