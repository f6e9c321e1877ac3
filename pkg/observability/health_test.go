package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func TestHealthChecker_Check(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(h *HealthChecker)
		wantStatus string
	}{
		{
			name:       "no checks",
			setup:      func(h *HealthChecker) {},
			wantStatus: StatusHealthy,
		},
		{
			name: "all healthy",
			setup: func(h *HealthChecker) {
				h.AddCheck("plugins", true, healthy)
				h.AddCheck("notifications", false, healthy)
			},
			wantStatus: StatusHealthy,
		},
		{
			name: "optional check failing",
			setup: func(h *HealthChecker) {
				h.AddCheck("plugins", true, healthy)
				h.AddCheck("webhook", false, failing("unreachable"))
			},
			wantStatus: StatusDegraded,
		},
		{
			name: "critical check failing",
			setup: func(h *HealthChecker) {
				h.AddCheck("plugins", true, failing("not loaded"))
				h.AddCheck("webhook", false, failing("unreachable"))
			},
			wantStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker()
			tt.setup(h)

			status := h.Check(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
		})
	}
}

func TestHealthChecker_ComponentDetails(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("plugins", true, failing("not loaded"))
	h.AddCheck("webhook", false, healthy)

	status := h.Check(context.Background())
	require.Len(t, status.Components, 2)
	assert.Equal(t, StatusUnhealthy, status.Components["plugins"].Status)
	assert.Equal(t, "not loaded", status.Components["plugins"].Message)
	assert.Equal(t, StatusHealthy, status.Components["webhook"].Status)
}

func TestHealthChecker_AddCheckReplaces(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("plugins", true, failing("not loaded"))
	h.AddCheck("plugins", true, healthy)

	assert.Equal(t, StatusHealthy, h.Check(context.Background()).Status)
}

func TestHealthRoutes(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("plugins", true, failing("not loaded"))

	mux := http.NewServeMux()
	RegisterHealthRoutes(mux, h)

	tests := []struct {
		path       string
		wantCode   int
		wantStatus string
	}{
		{"/health/live", http.StatusOK, StatusHealthy},
		{"/health/ready", http.StatusServiceUnavailable, StatusUnhealthy},
		{"/health", http.StatusServiceUnavailable, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}
