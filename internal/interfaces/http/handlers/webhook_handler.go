package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Hub-Signature-256"

// PresetRefresher reloads presets from disk.
type PresetRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// RefreshMetrics counts preset refreshes.
type RefreshMetrics interface {
	PresetsRefreshed(trigger string, n int)
}

// WebhookHandler refreshes presets on a signed push notification.
type WebhookHandler struct {
	secret    []byte
	refresher PresetRefresher
	metrics   RefreshMetrics
	logger    logging.Logger
}

// NewWebhookHandler returns a WebhookHandler. metrics may be nil.
func NewWebhookHandler(secret string, refresher PresetRefresher, metrics RefreshMetrics, logger logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &WebhookHandler{secret: []byte(secret), refresher: refresher, metrics: metrics, logger: logger}
}

// Sign returns the header value for body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares header against the signature of body in
// constant time.
func VerifySignature(secret, body []byte, header string) bool {
	if !strings.HasPrefix(header, "sha256=") {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(header))
}

// Handle handles POST /gh/webhook.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeAppError(w, h.logger, errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read request body"))
		return
	}
	if !VerifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		h.logger.Warn("webhook signature rejected", logging.String("remote_addr", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "Invalid signature", errors.ErrCodeWebhookSignature)
		return
	}

	n, err := h.refresher.Refresh(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.PresetsRefreshed("webhook", n)
	}
	writeJSON(w, http.StatusOK, coding.WebhookResult{OK: true, Count: n})
}

//Personal.AI order the ending
