package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Simulation.DurationDays != 240 {
		t.Errorf("expected 240-day horizon, got %v", cfg.Simulation.DurationDays)
	}
	if cfg.Simulation.OnboardingDays != 28 {
		t.Errorf("expected 28 onboarding days, got %v", cfg.Simulation.OnboardingDays)
	}
	if cfg.Simulation.PlanAdherenceProbability != 0.5 {
		t.Errorf("expected adherence probability 0.5, got %v", cfg.Simulation.PlanAdherenceProbability)
	}
	if got := cfg.Simulation.Travel.HomeBase; got != "Singapore" {
		t.Errorf("expected Singapore home base, got %q", got)
	}
	if len(cfg.Team.Personas) != 7 {
		t.Errorf("expected 7 personas, got %d", len(cfg.Team.Personas))
	}
	if cfg.Team.DefaultResponder != "Ruby" {
		t.Errorf("expected Ruby as default responder, got %q", cfg.Team.DefaultResponder)
	}
	if cfg.LLM.Enabled {
		t.Error("expected collaborators disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestTeamLookups(t *testing.T) {
	team := Default().Team

	if p, ok := team.PersonaByName("Dr. Warren"); !ok || p.Role != "physician" {
		t.Errorf("expected physician Dr. Warren, got %+v ok=%v", p, ok)
	}
	if _, ok := team.PersonaByName("Nobody"); ok {
		t.Error("expected unknown name to miss")
	}
	if p, ok := team.PersonaByRole("wearables"); !ok || p.Name != "Advik" {
		t.Errorf("expected Advik for wearables, got %+v ok=%v", p, ok)
	}
	if p, ok := team.MemberPersona(); !ok || p.Name != "Rohan" {
		t.Errorf("expected Rohan as member, got %+v ok=%v", p, ok)
	}

	specialists := team.Specialists()
	if len(specialists) != 5 {
		t.Fatalf("expected 5 specialists, got %d", len(specialists))
	}
	for _, p := range specialists {
		if p.Role == "member" || p.Name == team.DefaultResponder {
			t.Errorf("roster should exclude the member and default responder, got %s", p.Name)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
simulation:
  duration_days: 30
  seed: 1234
member:
  name: "Test Member"
llm:
  provider: anthropic
  api_key: "${HEALTHSIM_TEST_KEY}"
  enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("HEALTHSIM_TEST_KEY", "sk-test-key-123456")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Simulation.DurationDays != 30 {
		t.Errorf("expected overridden horizon 30, got %v", cfg.Simulation.DurationDays)
	}
	if cfg.Simulation.Seed != 1234 {
		t.Errorf("expected seed 1234, got %v", cfg.Simulation.Seed)
	}
	if cfg.Member.Name != "Test Member" {
		t.Errorf("expected member name override, got %q", cfg.Member.Name)
	}
	// Untouched sections keep their defaults.
	if cfg.Simulation.OnboardingDays != 28 {
		t.Errorf("expected default onboarding days, got %v", cfg.Simulation.OnboardingDays)
	}
	if cfg.LLM.APIKey != "sk-test-key-123456" {
		t.Errorf("expected env-expanded api key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HEALTHSIM_LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env-key")
	t.Setenv("HEALTHSIM_LLM_ENABLED", "true")
	t.Setenv("HEALTHSIM_SEED", "42")
	t.Setenv("HEALTHSIM_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider override, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "sk-env-key" {
		t.Errorf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if !cfg.LLM.Enabled {
		t.Error("expected collaborators enabled")
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("expected seed 42, got %v", cfg.Simulation.Seed)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"zero duration", func(c *Config) { c.Simulation.DurationDays = 0 }, "duration_days"},
		{"negative onboarding", func(c *Config) { c.Simulation.OnboardingDays = -1 }, "onboarding_days"},
		{"probability above one", func(c *Config) { c.Simulation.PlanAdherenceProbability = 1.5 }, "plan_adherence_probability"},
		{"zero question cadence", func(c *Config) { c.Simulation.AvgDaysPerQuestion = 0 }, "avg_days_per_question"},
		{"no travel locations", func(c *Config) { c.Simulation.Travel.Locations = nil }, "travel.locations"},
		{"unknown default responder", func(c *Config) { c.Team.DefaultResponder = "Ghost" }, "default_responder"},
		{"missing member persona", func(c *Config) {
			personas := c.Team.Personas[:0]
			for _, p := range c.Team.Personas {
				if p.Role != "member" {
					personas = append(personas, p)
				}
			}
			c.Team.Personas = personas
		}, "member"},
		{"bad provider", func(c *Config) { c.LLM.Provider = "cohere" }, "invalid provider"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParsedStartDate(t *testing.T) {
	s := SimulationConfig{StartDate: "2025-03-01"}
	if got := s.ParsedStartDate().Format("2006-01-02"); got != "2025-03-01" {
		t.Errorf("expected parsed date, got %s", got)
	}

	s = SimulationConfig{StartDate: "not-a-date"}
	if got := s.ParsedStartDate().Format("2006-01-02"); got != "2025-01-15" {
		t.Errorf("expected fallback date, got %s", got)
	}
}
