package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCronAuth(t *testing.T) {
	tests := []struct {
		name         string
		secret       string
		header       string
		expectedCode int
	}{
		{
			name:         "Valid secret",
			secret:       "cron-secret",
			header:       "Bearer cron-secret",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Wrong secret",
			secret:       "cron-secret",
			header:       "Bearer wrong",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Missing header",
			secret:       "cron-secret",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Unconfigured secret never matches",
			secret:       "",
			header:       "Bearer ",
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/cron/contributions", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			CronAuth(tt.secret)(okHandler()).ServeHTTP(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestAdminAuth(t *testing.T) {
	jwtService := NewJWTService("test-secret")
	adminToken, err := jwtService.GenerateJWT(1, time.Now().Add(time.Hour))
	require.NoError(t, err)
	userToken, err := jwtService.GenerateJWT(2, time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		expectedCode int
	}{
		{
			name:         "Admin token",
			header:       "Bearer " + adminToken,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Non-admin token",
			header:       "Bearer " + userToken,
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Invalid token",
			header:       "Bearer nope",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Missing header",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/contributions/runs", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			AdminAuth(jwtService, 1)(okHandler()).ServeHTTP(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
