package featureflags

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	t.Parallel()
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")
	id := uuid.NewString()

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, id), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, id), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	t.Parallel()
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")
	id := uuid.NewString()

	assert.True(t, m.Enabled("always", id))
	assert.False(t, m.Enabled("never", id))
	assert.False(t, m.Enabled("broken", id))

	first := m.Enabled("canary", id)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", id), "rollout must be deterministic per account")
	}
	assert.Equal(t, first, m.Enabled("canary", strings.ToUpper(id)), "rollout ignores id case")
	assert.False(t, m.Enabled("canary", ""), "percentage rollout requires an account")
}

func TestEnabled_RolloutSpreads(t *testing.T) {
	t.Parallel()
	m := NewManager("half=50%")

	on := 0
	for i := 0; i < 1000; i++ {
		if m.Enabled("half", uuid.NewString()) {
			on++
		}
	}
	assert.InDelta(t, 500, on, 100)
}

func TestEnabledGlobally(t *testing.T) {
	t.Parallel()
	m := NewManager("realtime_feed=on,github_lookup=30%,full=100%")

	assert.True(t, m.EnabledGlobally(RealtimeFeed))
	assert.True(t, m.EnabledGlobally("full"))
	assert.False(t, m.EnabledGlobally(GitHubLookup))
	assert.False(t, (*Manager)(nil).EnabledGlobally(RealtimeFeed))
}

func TestParseAndSnapshot(t *testing.T) {
	t.Parallel()
	m := NewManager(" bad ,x=on, y = 20% ,z=off, =on ")

	assert.Equal(t, map[string]string{"x": "on", "y": "20%", "z": "off"}, m.Raw())
	assert.Equal(t, []string{"x", "y", "z"}, m.Names())

	snap := m.Snapshot(uuid.NewString())
	assert.Len(t, snap, 3)
	assert.True(t, snap["x"])
	assert.False(t, snap["z"])
}
