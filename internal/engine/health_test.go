package engine

import (
	"testing"

	"github.com/venkat299/healthsim/internal/models"
)

func TestRiskModifiers(t *testing.T) {
	e := testEngine(t, nil)

	t.Run("baseline is zero", func(t *testing.T) {
		for i, m := range riskModifiers(e.state) {
			if m != 0 {
				t.Errorf("modifier %d: expected 0, got %v", i, m)
			}
		}
	})

	t.Run("travel raises exposure", func(t *testing.T) {
		e := testEngine(t, nil)
		e.state.StartTravel("UK")
		mods := riskModifiers(e.state)
		want := []float64{0.025, 0, 0.03, 0.01, 0}
		for i := range want {
			if mods[i] != want[i] {
				t.Errorf("modifier %d: expected %v, got %v", i, want[i], mods[i])
			}
		}
	})

	t.Run("poor recovery raises physical risk", func(t *testing.T) {
		e := testEngine(t, nil)
		e.state.HealthData.WearableStream["recovery_score"] = 35
		mods := riskModifiers(e.state)
		want := []float64{0.015, 0.02, 0, 0.015, 0.01}
		for i := range want {
			if mods[i] != want[i] {
				t.Errorf("modifier %d: expected %v, got %v", i, want[i], mods[i])
			}
		}
	})

	t.Run("deviation raises pressure and digestion risk", func(t *testing.T) {
		e := testEngine(t, nil)
		e.state.SetAdherence(models.AdherenceDeviated)
		mods := riskModifiers(e.state)
		want := []float64{0, 0, 0.01, 0, 0.02}
		for i := range want {
			if mods[i] != want[i] {
				t.Errorf("modifier %d: expected %v, got %v", i, want[i], mods[i])
			}
		}
	})

	t.Run("modifiers are additive", func(t *testing.T) {
		e := testEngine(t, nil)
		e.state.StartTravel("US")
		e.state.HealthData.WearableStream["recovery_score"] = 20
		e.state.SetAdherence(models.AdherenceDeviated)
		mods := riskModifiers(e.state)
		want := []float64{0.04, 0.02, 0.04, 0.025, 0.03}
		for i := range want {
			if mods[i] != want[i] {
				t.Errorf("modifier %d: expected %v, got %v", i, want[i], mods[i])
			}
		}
	})
}

func TestChooseOnset(t *testing.T) {
	zeros := make([]float64, len(issueCatalog))
	ones := []float64{1, 1, 1, 1, 1}

	tests := []struct {
		name  string
		rolls []float64
		mods  []float64
		want  int
	}{
		{"all rolls fail", ones, zeros, -1},
		{"first entry wins", []float64{0, 0, 0, 0, 0}, zeros, 0},
		{"first success in catalog order", []float64{1, 1, 0.006, 0, 1}, zeros, 2},
		{"modifier pushes a roll over", []float64{1, 1, 1, 0.015, 1}, []float64{0, 0, 0, 0.01, 0}, 3},
		{"roll exactly at probability fails", []float64{0.005, 1, 1, 1, 1}, zeros, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseOnset(tt.rolls, tt.mods); got != tt.want {
				t.Errorf("expected index %d, got %d", tt.want, got)
			}
		})
	}
}

// forceOnset makes the first catalog entry a certain hit for the duration
// of the test.
func forceOnset(t *testing.T) {
	t.Helper()
	orig := issueCatalog[0].baseProb
	issueCatalog[0].baseProb = 1.0
	t.Cleanup(func() { issueCatalog[0].baseProb = orig })
}

func TestHealthStepLifecycle(t *testing.T) {
	forceOnset(t)
	e := testEngine(t, nil)
	e.state.CurrentDay = 10
	e.state.HealthData.WearableStream["recovery_score"] = 25

	e.healthStep()

	issue, active := e.state.ActiveIssue()
	if !active {
		t.Fatal("expected an active issue after forced onset")
	}
	if issue != "Minor Illness (Cold/Flu)" {
		t.Errorf("expected first catalog entry, got %q", issue)
	}

	flags := e.state.NarrativeFlags
	duration := flags.IssueResolvesOn - 10
	if duration < issueMinDuration || duration > issueMaxDuration {
		t.Errorf("expected duration in [%d, %d], got %v", issueMinDuration, issueMaxDuration, duration)
	}
	cooldown := flags.IssueCooldownUntil - flags.IssueResolvesOn
	if cooldown < issueMinCooldown || cooldown > issueMaxCooldown {
		t.Errorf("expected cooldown in [%d, %d], got %v", issueMinCooldown, issueMaxCooldown, cooldown)
	}

	last, _ := e.state.LastEvent()
	if last.Type != models.EventHealthIssue {
		t.Fatalf("expected HEALTH_ISSUE event, got %s", last.Type)
	}
	if last.Payload["issue"] != issue {
		t.Errorf("expected issue name in payload, got %v", last.Payload["issue"])
	}
	if _, ok := last.Payload["triggering_factors"]; !ok {
		t.Error("expected triggering_factors snapshot in payload")
	}

	// An active issue blocks further onsets.
	e.state.CurrentDay = 11
	e.healthStep()
	if got, _ := e.state.ActiveIssue(); got != issue {
		t.Errorf("expected the same issue to stay active, got %q", got)
	}
	for _, ev := range e.state.EventLog {
		if ev.Type == models.EventHealthIssue && ev.Day != 10 {
			t.Errorf("unexpected second onset at day %v", ev.Day)
		}
	}

	// Resolution fires once the resolve day arrives, and the cooldown
	// gate keeps blocking new onsets.
	e.state.CurrentDay = flags.IssueResolvesOn
	e.healthStep()
	if _, active := e.state.ActiveIssue(); active {
		t.Error("expected issue resolved at resolve day")
	}
	last, _ = e.state.LastEvent()
	if last.Type != models.EventHealthIssueResolved {
		t.Errorf("expected HEALTH_ISSUE_RESOLVED event, got %s", last.Type)
	}

	// Past the cooldown, onsets are possible again.
	e.state.CurrentDay = flags.IssueCooldownUntil
	e.healthStep()
	if _, active := e.state.ActiveIssue(); !active {
		t.Error("expected a new onset after the cooldown window")
	}
}

func TestHealthStepCooldownGate(t *testing.T) {
	forceOnset(t)
	e := testEngine(t, nil)
	e.state.CurrentDay = 5
	e.state.NarrativeFlags.IssueCooldownUntil = 12

	e.healthStep()

	if _, active := e.state.ActiveIssue(); active {
		t.Error("expected cooldown to block onset")
	}
	if len(e.state.EventLog) != 0 {
		t.Errorf("expected no events during cooldown, got %d", len(e.state.EventLog))
	}
}
