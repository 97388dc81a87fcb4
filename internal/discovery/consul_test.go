package discovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"devconnect/internal/config"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(addr string) *config.Config {
	return &config.Config{
		Port:           "5000",
		Env:            "test",
		ConsulAddress:  addr,
		ServiceName:    "devconnect-api",
		ServiceID:      "devconnect-api-1",
		ServiceAddress: "10.0.0.7",
	}
}

func TestNewServiceRegistry_Disabled(t *testing.T) {
	t.Parallel()
	sr, err := NewServiceRegistry(testConfig(""))
	require.NoError(t, err)
	assert.Nil(t, sr)
	assert.NoError(t, sr.Register())
	assert.NoError(t, sr.Deregister())
}

func TestRegistration(t *testing.T) {
	t.Parallel()
	sr, err := NewServiceRegistry(testConfig("127.0.0.1:8500"))
	require.NoError(t, err)

	reg, err := sr.Registration()
	require.NoError(t, err)
	assert.Equal(t, "devconnect-api-1", reg.ID)
	assert.Equal(t, 5000, reg.Port)
	assert.Equal(t, "http://10.0.0.7:5000/health/live", reg.Check.HTTP)
	assert.Equal(t, "http", reg.Meta["protocol"])

	bad := testConfig("127.0.0.1:8500")
	bad.Port = "eighty"
	sr, err = NewServiceRegistry(bad)
	require.NoError(t, err)
	_, err = sr.Registration()
	assert.Error(t, err)
}

func TestRegisterAndDeregister(t *testing.T) {
	t.Parallel()
	var (
		mu       sync.Mutex
		paths    []string
		received api.AgentServiceRegistration
	)
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/v1/agent/service/register" {
			_ = json.NewDecoder(r.Body).Decode(&received)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer agent.Close()

	sr, err := NewServiceRegistry(testConfig(agent.URL))
	require.NoError(t, err)

	require.NoError(t, sr.Register())
	require.NoError(t, sr.Deregister())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PUT /v1/agent/service/register",
		"PUT /v1/agent/service/deregister/devconnect-api-1",
	}, paths)
	assert.Equal(t, "devconnect-api", received.Name)
	assert.Equal(t, "10.0.0.7", received.Address)
}

func TestRegister_AgentFailure(t *testing.T) {
	t.Parallel()
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer agent.Close()

	sr, err := NewServiceRegistry(testConfig(agent.URL))
	require.NoError(t, err)
	assert.Error(t, sr.Register())
}
