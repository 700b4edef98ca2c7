package mockservice

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAdapter is the backend the mock reports when a scenario names none.
const DefaultAdapter = "claude"

// RouteBehavior replaces one route's response verbatim. Body bytes are sent
// exactly as written, so malformed payloads survive the trip.
type RouteBehavior struct {
	Status      int    `yaml:"status"`
	Body        string `yaml:"body"`
	ContentType string `yaml:"contentType"` // default application/json
}

// Scenario describes how the mock responds to the harness. Zero values give
// a healthy service; per-route overrides reproduce broken servers.
type Scenario struct {
	Name         string `yaml:"name"`
	Adapter      string `yaml:"adapter"`
	Healthy      *bool  `yaml:"healthy"` // nil means healthy
	SeedSessions int    `yaml:"seedSessions"`

	// Overrides. SessionLookup applies to every GET /v1/agent/sessions/:id,
	// known and unknown IDs alike.
	Health        *RouteBehavior `yaml:"health"`
	SessionList   *RouteBehavior `yaml:"sessionList"`
	SessionLookup *RouteBehavior `yaml:"sessionLookup"`
}

// IsHealthy reports the healthy flag the scenario advertises.
func (s *Scenario) IsHealthy() bool {
	return s.Healthy == nil || *s.Healthy
}

func (s *Scenario) normalize() {
	if s.Adapter == "" {
		s.Adapter = DefaultAdapter
	}
}

// validate rejects scenario values the mock cannot serve.
func (s *Scenario) validate() error {
	var errs []string

	if s.SeedSessions < 0 {
		errs = append(errs, fmt.Sprintf("seedSessions must not be negative, got %d", s.SeedSessions))
	}

	overrides := []struct {
		key      string
		behavior *RouteBehavior
	}{
		{"health", s.Health},
		{"sessionList", s.SessionList},
		{"sessionLookup", s.SessionLookup},
	}
	for _, o := range overrides {
		if o.behavior == nil {
			continue
		}
		if o.behavior.Status < 100 || o.behavior.Status > 599 {
			errs = append(errs, fmt.Sprintf("%s.status must be between 100 and 599, got %d", o.key, o.behavior.Status))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Presets returns the built-in scenarios, keyed by name. Together they
// reproduce every server behavior the harness must detect.
func Presets() map[string]Scenario {
	unhealthy := false
	return map[string]Scenario{
		"healthy": {
			Name: "healthy",
		},
		"active": {
			Name:         "active",
			SeedSessions: 3,
		},
		"degraded": {
			Name:    "degraded",
			Healthy: &unhealthy,
		},
		"missing-fields": {
			Name:   "missing-fields",
			Health: &RouteBehavior{Status: 200, Body: `{}`},
		},
		"malformed-sessions": {
			Name:        "malformed-sessions",
			SessionList: &RouteBehavior{Status: 200, Body: `{"sessions":{}}`},
		},
		"lookup-found": {
			Name:          "lookup-found",
			SessionLookup: &RouteBehavior{Status: 200, Body: `{"id":"non-existent","state":"ACTIVE"}`},
		},
		"lookup-error": {
			Name:          "lookup-error",
			SessionLookup: &RouteBehavior{Status: 500, Body: `oops`, ContentType: "text/plain"},
		},
	}
}

// PresetNames returns the built-in scenario names in stable order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveScenario returns the scenario selected by cfg: the YAML file when
// one is configured, otherwise the named preset.
func ResolveScenario(cfg ScenarioConfig) (Scenario, error) {
	if cfg.File != "" {
		return LoadScenarioFile(cfg.File)
	}

	name := cfg.Name
	if name == "" {
		name = "healthy"
	}
	sc, ok := Presets()[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q (built-in: %v)", name, PresetNames())
	}
	sc.normalize()
	return sc, nil
}

// LoadScenarioFile reads a scenario definition from a YAML file.
func LoadScenarioFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	sc.normalize()
	if err := sc.validate(); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario file %s: %w", path, err)
	}
	return sc, nil
}
