// Package config provides unified configuration loading for healthsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/venkat299/healthsim/internal/llm"
	"github.com/venkat299/healthsim/internal/models"
)

// Config contains all healthsim settings.
type Config struct {
	// Simulation holds the engine parameters.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Member is the profile of the simulated client.
	Member models.MemberProfile `json:"member" yaml:"member"`

	// Team describes the care-team roster and personas.
	Team TeamConfig `json:"team" yaml:"team"`

	// LLM configures the collaborator backend.
	LLM llm.ClientConfig `json:"llm" yaml:"llm"`

	// Logging configures operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures healthsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// TravelConfig describes the member's recurring travel cycle.
type TravelConfig struct {
	// HomeDays is how long the member stays home between trips.
	HomeDays float64 `json:"home_days" yaml:"home_days"`

	// AwayDays is the length of each trip.
	AwayDays float64 `json:"away_days" yaml:"away_days"`

	// HomeBase is the location between trips.
	HomeBase string `json:"home_base" yaml:"home_base"`

	// Locations is the set trips are drawn from uniformly.
	Locations []string `json:"locations" yaml:"locations"`
}

// SimulationConfig holds the engine's static parameters.
type SimulationConfig struct {
	// DurationDays is the simulated-day horizon of the run.
	DurationDays float64 `json:"duration_days" yaml:"duration_days"`

	// OnboardingDays is the length of the onboarding phase.
	OnboardingDays float64 `json:"onboarding_days" yaml:"onboarding_days"`

	// StartDate anchors display timestamps, formatted YYYY-MM-DD.
	StartDate string `json:"start_date" yaml:"start_date"`

	// Seed seeds the run's RNG. Zero means derive from wall-clock time.
	Seed int64 `json:"seed" yaml:"seed"`

	// AvgDaysPerQuestion is the mean of the exponential delay between
	// member-initiated actions.
	AvgDaysPerQuestion float64 `json:"avg_days_per_question" yaml:"avg_days_per_question"`

	// PlanAdherenceProbability is the daily probability the member stays
	// on plan.
	PlanAdherenceProbability float64 `json:"plan_adherence_probability" yaml:"plan_adherence_probability"`

	// DiagnosticIntervalDays is the lab-panel cadence.
	DiagnosticIntervalDays float64 `json:"diagnostic_interval_days" yaml:"diagnostic_interval_days"`

	// ExerciseIntervalDays is the exercise-plan refresh cadence.
	ExerciseIntervalDays float64 `json:"exercise_interval_days" yaml:"exercise_interval_days"`

	// WellnessIntervalDays is the cadence of general wellness check-ins.
	WellnessIntervalDays float64 `json:"wellness_interval_days" yaml:"wellness_interval_days"`

	// Travel describes the recurring travel cycle.
	Travel TravelConfig `json:"travel" yaml:"travel"`
}

// TeamConfig describes the care team.
type TeamConfig struct {
	// Personas lists every voice in the simulation, including the member.
	Personas []llm.Persona `json:"personas" yaml:"personas"`

	// DefaultResponder is the fallback identity when routing returns an
	// unknown name. It should be the logistics persona.
	DefaultResponder string `json:"default_responder" yaml:"default_responder"`
}

// PersonaByName returns the persona with the given identity.
func (t TeamConfig) PersonaByName(name string) (llm.Persona, bool) {
	for _, p := range t.Personas {
		if p.Name == name {
			return p, true
		}
	}
	return llm.Persona{}, false
}

// PersonaByRole returns the first persona carrying the given role key.
func (t TeamConfig) PersonaByRole(role string) (llm.Persona, bool) {
	for _, p := range t.Personas {
		if p.Role == role {
			return p, true
		}
	}
	return llm.Persona{}, false
}

// Specialists returns every care-team persona except the member and the
// default responder. This is the roster offered to the router.
func (t TeamConfig) Specialists() []llm.Persona {
	var out []llm.Persona
	for _, p := range t.Personas {
		if p.Role == "member" || p.Name == t.DefaultResponder {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MemberPersona returns the persona speaking as the client.
func (t TeamConfig) MemberPersona() (llm.Persona, bool) {
	return t.PersonaByRole("member")
}

// ParsedStartDate returns the run's start date, defaulting to
// 2025-01-15 when unset or malformed.
func (s SimulationConfig) ParsedStartDate() time.Time {
	if t, err := time.Parse("2006-01-02", s.StartDate); err == nil {
		return t
	}
	return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
}

// Default returns a Config with sensible defaults: the reference
// eight-month engagement with the stock six-person care team.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			DurationDays:             240,
			OnboardingDays:           28,
			StartDate:                "2025-01-15",
			Seed:                     0,
			AvgDaysPerQuestion:       7.0 / 5.0,
			PlanAdherenceProbability: 0.5,
			DiagnosticIntervalDays:   90,
			ExerciseIntervalDays:     14,
			WellnessIntervalDays:     45,
			Travel: TravelConfig{
				HomeDays: 21,
				AwayDays: 7,
				HomeBase: "Singapore",
				Locations: []string{
					"UK", "US", "South Korea", "Jakarta",
				},
			},
		},
		Member: models.MemberProfile{
			Name: "Rohan Patel",
			Age:  46,
			Goals: []string{
				"Reduce risk of heart disease by maintaining healthy cholesterol and blood pressure.",
				"Enhance cognitive function and focus for sustained mental performance.",
				"Implement annual full-body health screenings for early detection.",
			},
			Personality:      "Analytical, driven, values efficiency and evidence-based approaches. Time-constrained, needs clear action plans.",
			HealthConditions: []string{"Manages borderline high blood pressure (hypertension)."},
		},
		Team: TeamConfig{
			DefaultResponder: "Ruby",
			Personas: []llm.Persona{
				{
					Name: "Ruby",
					Role: "logistics",
					Voice: "The primary point of contact for all logistics: coordination, scheduling, reminders, and follow-ups. " +
						"Empathetic, organized, and proactive; anticipates needs and confirms every action.",
				},
				{
					Name: "Dr. Warren",
					Role: "physician",
					Voice: "The team's physician and final clinical authority. Interprets lab results, analyzes medical records, " +
						"and sets the medical direction. Authoritative, precise, and scientific.",
				},
				{
					Name: "Advik",
					Role: "wearables",
					Voice: "The data analysis expert. Lives in wearable data, looking for trends in sleep, recovery, HRV, and stress. " +
						"Analytical, curious, and pattern-oriented; communicates in experiments and hypotheses.",
				},
				{
					Name: "Carla",
					Role: "nutrition",
					Voice: "The nutrition owner. Designs nutrition plans, analyzes food logs, and makes supplement recommendations. " +
						"Practical, educational, and focused on behavioral change.",
				},
				{
					Name: "Rachel",
					Role: "movement",
					Voice: "The physical-movement owner: strength training, mobility, injury rehabilitation, and exercise programming. " +
						"Direct, encouraging, and focused on form and function.",
				},
				{
					Name: "Neel",
					Role: "leadership",
					Voice: "The senior leader of the team. Steps in for major strategic reviews and connects day-to-day work back " +
						"to the client's highest-level goals. Strategic, reassuring, big-picture.",
				},
				{
					Name: "Rohan",
					Role: "member",
					Voice: "The client: Rohan Patel, 46, Regional Head of Sales for a FinTech company. Analytical and direct, " +
						"asks clarifying questions, and sometimes expresses frustration when things are inefficient.",
				},
			},
		},
		LLM:     llm.DefaultConfig(),
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadFromFile loads configuration from a specific YAML file, starting
// from defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.LLM.APIKey = expandEnvVars(config.LLM.APIKey)
	return config, nil
}

// Load loads configuration from defaults, an optional file, and
// environment variables, in that order. An empty path skips the file.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}
	applyEnvOverrides(config)
	return config, nil
}

// Validate checks that the configuration is runnable.
func (c *Config) Validate() error {
	if c.Simulation.DurationDays <= 0 {
		return fmt.Errorf("duration_days must be positive, got %v", c.Simulation.DurationDays)
	}
	if c.Simulation.OnboardingDays < 0 {
		return fmt.Errorf("onboarding_days must be non-negative, got %v", c.Simulation.OnboardingDays)
	}
	if p := c.Simulation.PlanAdherenceProbability; p < 0 || p > 1 {
		return fmt.Errorf("plan_adherence_probability must be between 0 and 1, got %v", p)
	}
	if c.Simulation.AvgDaysPerQuestion <= 0 {
		return fmt.Errorf("avg_days_per_question must be positive, got %v", c.Simulation.AvgDaysPerQuestion)
	}
	if len(c.Simulation.Travel.Locations) == 0 {
		return fmt.Errorf("travel.locations must not be empty")
	}
	if _, ok := c.Team.PersonaByName(c.Team.DefaultResponder); !ok {
		return fmt.Errorf("default_responder %q is not in the roster", c.Team.DefaultResponder)
	}
	if _, ok := c.Team.MemberPersona(); !ok {
		return fmt.Errorf("roster has no persona with role \"member\"")
	}

	validProviders := map[string]bool{"": true, "anthropic": true, "openai": true}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid provider: %s (valid: anthropic, openai, or empty)", c.LLM.Provider)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("HEALTHSIM_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = v
	}
	if v := os.Getenv("HEALTHSIM_LLM_ENABLED"); v != "" {
		config.LLM.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.LLM.Provider == "anthropic" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && config.LLM.Provider == "openai" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv("HEALTHSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}
	if v := os.Getenv("HEALTHSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		return os.Getenv(name)
	})
}
