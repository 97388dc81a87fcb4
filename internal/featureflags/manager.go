// Package featureflags evaluates the FEATURE_FLAGS setting.
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags known to the API.
const (
	GitHubLookup = "github_lookup"
	RealtimeFeed = "realtime_feed"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "github_lookup=on,realtime_feed=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for an account.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout over the account id, e.g. 25%)
func (m *Manager) Enabled(name, accountID string) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	accountID = normalize(accountID)
	if accountID == "" {
		return false
	}
	return rolloutBucket(name, accountID) < pct
}

// EnabledGlobally reports whether a flag is switched fully on, independent of
// any account. Percentage rollouts count as off.
func (m *Manager) EnabledGlobally(name string) bool {
	if m == nil {
		return false
	}
	switch m.flags[normalize(name)] {
	case "on", "true", "1", "100%":
		return true
	}
	return false
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.flags))
	for k := range m.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.Names()))
	for _, k := range m.Names() {
		out[k] = m.flags[k]
	}
	return out
}

// Snapshot returns evaluated flag status for one account.
func (m *Manager) Snapshot(accountID string) map[string]bool {
	out := make(map[string]bool)
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, accountID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + accountID))
	return int(h.Sum32() % 100)
}
