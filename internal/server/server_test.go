package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnect/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerWithDepsRequiresStore(t *testing.T) {
	_, err := NewServerWithDeps(&config.Config{JWTSecret: "x"}, Deps{})
	assert.Error(t, err)
}

func TestLivenessCheck(t *testing.T) {
	env := newTestServer(t, testServerOptions{})

	status, body := doJSON(t, env.app, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", decode[map[string]any](t, body)["status"])
}

type readiness struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Checks  struct {
		Store   string `json:"store"`
		Backend string `json:"backend"`
		Redis   string `json:"redis"`
		WS      int    `json:"ws"`
	} `json:"checks"`
}

func TestReadinessCheck(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		env := newTestServer(t, testServerOptions{})

		for _, path := range []string{"/health/ready", "/health", "/api"} {
			status, body := doJSON(t, env.app, http.MethodGet, path, "", nil)
			require.Equal(t, http.StatusOK, status, path)

			got := decode[readiness](t, body)
			assert.Equal(t, "API Running", got.Message)
			assert.Equal(t, "healthy", got.Status)
			assert.Equal(t, "healthy", got.Checks.Store)
			assert.Equal(t, "sql", got.Checks.Backend)
			assert.Equal(t, "disabled", got.Checks.Redis)
		}
	})

	t.Run("redis down degrades", func(t *testing.T) {
		env := newTestServer(t, testServerOptions{redis: true})

		status, body := doJSON(t, env.app, http.MethodGet, "/health/ready", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "healthy", decode[readiness](t, body).Checks.Redis)

		env.mr.Close()

		status, body = doJSON(t, env.app, http.MethodGet, "/health/ready", "", nil)
		require.Equal(t, http.StatusOK, status)
		got := decode[readiness](t, body)
		assert.Equal(t, "degraded", got.Status)
		assert.Equal(t, "unhealthy", got.Checks.Redis)
	})
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestServer(t, testServerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	env := newTestServer(t, testServerOptions{})

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"configured origin", "http://localhost:3000", true},
		{"unknown origin", "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "x-auth-token")

			resp, err := env.app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			if !tt.allowed {
				assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
				return
			}
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
			assert.Equal(t, tt.origin, resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "x-auth-token")
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestServer(t, testServerOptions{})

	status, body := doJSON(t, env.app, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, decode[msgBody](t, body).Msg)
}
