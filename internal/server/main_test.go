package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/events"
	"devconnect/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type testServerOptions struct {
	flags     string
	githubURL string
	redis     bool
	env       string
}

type testEnv struct {
	srv    *Server
	app    *fiber.App
	events *events.Recorder
	mr     *miniredis.Miniredis
}

func testConfig(opts testServerOptions) *config.Config {
	flags := opts.flags
	if flags == "" {
		flags = "github_lookup=on,realtime_feed=on"
	}
	env := opts.env
	if env == "" {
		env = "test"
	}
	return &config.Config{
		Port:         "0",
		Env:          env,
		DBDriver:     config.DriverSQLite,
		JWTSecret:    "test_secret",
		JWTTTLHours:  1,
		FeatureFlags: flags,
		GitHubAPIURL: opts.githubURL,
	}
}

func newTestServer(t *testing.T, opts testServerOptions) *testEnv {
	t.Helper()

	cfg := testConfig(opts)
	db, err := database.Open(sqlite.Open("file::memory:"), cfg)
	require.NoError(t, err)

	env := &testEnv{events: &events.Recorder{}}
	deps := Deps{Store: repository.NewGormStore(db), Events: env.events}
	if opts.redis {
		env.mr = miniredis.RunT(t)
		deps.Redis = redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
	}

	env.srv = newServerFromDeps(t, cfg, deps)
	env.app = env.srv.App()
	return env
}

func newServerFromDeps(t *testing.T, cfg *config.Config, deps Deps) *Server {
	t.Helper()
	s, err := NewServerWithDeps(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// doJSON sends body as JSON and returns the status and raw response body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// register creates an account and returns its token.
func register(t *testing.T, app *fiber.App, name string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/users", "", map[string]string{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	return decode[tokenResponse](t, body).Token
}

// accountID resolves the id behind token.
func accountID(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	return decode[map[string]any](t, body)["_id"].(string)
}

type errorsBody struct {
	Errors []struct {
		Msg   string `json:"msg"`
		Param string `json:"param"`
	} `json:"errors"`
}

type msgBody struct {
	Msg  string `json:"msg"`
	Code string `json:"code"`
}
