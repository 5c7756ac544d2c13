package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/TextCoder/pkg/types/common"
)

func okCheck(name string) CheckFunc {
	return CheckFunc{ComponentName: name, Fn: func(context.Context) error { return nil }}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("0.3.0", nil)
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"up","version":"0.3.0"}`, w.Body.String())
}

func TestHealthHandler_ReadinessAllUp(t *testing.T) {
	h := NewHealthHandler("0.3.0", []string{"kafka"}, okCheck("redis"), okCheck("postgres"))
	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var rep common.HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, common.HealthUp, rep.Status)
	require.Len(t, rep.Components, 3)
	assert.Equal(t, "kafka", rep.Components[0].Name)
	assert.Equal(t, common.HealthDisabled, rep.Components[0].Status)
	assert.Equal(t, "postgres", rep.Components[1].Name)
}

func TestHealthHandler_ReadinessDown(t *testing.T) {
	bad := CheckFunc{ComponentName: "redis", Fn: func(context.Context) error { return errors.New("connection refused") }}
	h := NewHealthHandler("0.3.0", nil, bad, okCheck("postgres"))
	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var rep common.HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, common.HealthDown, rep.Status)
	assert.Equal(t, "connection refused", rep.Components[1].Message)
}

//Personal.AI order the ending
