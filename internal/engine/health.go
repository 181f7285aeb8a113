package engine

import (
	"github.com/venkat299/healthsim/internal/models"
	"github.com/venkat299/healthsim/internal/sim"
)

// issueKind is one entry of the fixed ailment catalog.
type issueKind struct {
	name     string
	baseProb float64
}

// issueCatalog is the ordered catalog of minor ailments. Onset evaluation
// iterates it in this order and the first Bernoulli success wins, so the
// order is part of the engine's contract.
var issueCatalog = []issueKind{
	{"Minor Illness (Cold/Flu)", 0.005},
	{"Muscle Strain/Joint Pain", 0.004},
	{"Bout of Indigestion", 0.007},
	{"Stress Headache", 0.006},
	{"Blood Pressure Spike", 0.003},
}

// Duration and cooldown bounds for a new issue, in days.
const (
	issueMinDuration = 2
	issueMaxDuration = 5
	issueMinCooldown = 7
	issueMaxCooldown = 14
)

// riskModifiers computes the additive per-kind onset modifiers from the
// current world state, parallel to issueCatalog: travel raises exposure
// and digestive risk, poor recovery raises everything physical, and plan
// deviation raises blood pressure and digestion risk.
func riskModifiers(state *models.SimulationState) []float64 {
	mods := make([]float64, len(issueCatalog))
	recovery := state.Wearable("recovery_score", 100)

	if state.Logistics.IsTraveling {
		mods[0] += 0.025 // Minor Illness
		mods[2] += 0.03  // Indigestion
		mods[3] += 0.01  // Stress Headache
	}
	if recovery < 40 {
		mods[0] += 0.015 // Minor Illness
		mods[1] += 0.02  // Muscle Strain
		mods[3] += 0.015 // Stress Headache
		mods[4] += 0.01  // Blood Pressure Spike
	}
	if state.InterventionPlan.AdherenceStatus == models.AdherenceDeviated {
		mods[4] += 0.02 // Blood Pressure Spike
		mods[2] += 0.01 // Indigestion
	}
	return mods
}

// chooseOnset evaluates one Bernoulli trial per catalog entry, in catalog
// order, and returns the index of the first success, or -1. rolls must be
// parallel to issueCatalog.
func chooseOnset(rolls, mods []float64) int {
	for i, kind := range issueCatalog {
		if rolls[i] < kind.baseProb+mods[i] {
			return i
		}
	}
	return -1
}

// healthIssuesProcess runs the daily onset/resolution/cooldown state
// machine after a one-day startup delay. At most one issue is active at a
// time; a resolved issue leaves a cooldown window during which no onset
// is generated.
func (e *Engine) healthIssuesProcess(p *sim.Process) {
	if !p.Sleep(1) {
		return
	}
	for p.Sleep(1) {
		e.healthStep()
	}
}

// healthStep performs one daily evaluation.
func (e *Engine) healthStep() {
	day := e.state.CurrentDay
	flags := &e.state.NarrativeFlags

	// Resolution check
	if _, active := e.state.ActiveIssue(); active && day >= flags.IssueResolvesOn {
		issue, _ := e.state.ResolveIssue()
		e.state.LogEvent(models.EventHealthIssueResolved, models.SourceCore, map[string]any{
			"issue": issue,
		})
	}

	// Cooldown gate: covers both an active issue and the quiet period
	// after resolution.
	if day < flags.IssueCooldownUntil {
		return
	}

	mods := riskModifiers(e.state)
	rolls := make([]float64, len(issueCatalog))
	for i := range rolls {
		rolls[i] = e.rng.Float64()
	}

	hit := chooseOnset(rolls, mods)
	if hit < 0 {
		return
	}

	duration := e.uniformInt(issueMinDuration, issueMaxDuration)
	resolvesOn := day + float64(duration)
	cooldownUntil := resolvesOn + float64(e.uniformInt(issueMinCooldown, issueMaxCooldown))
	e.state.StartIssue(issueCatalog[hit].name, resolvesOn, cooldownUntil)

	e.state.LogEvent(models.EventHealthIssue, models.SourceCore, map[string]any{
		"issue": issueCatalog[hit].name,
		"triggering_factors": map[string]any{
			"is_traveling":   e.state.Logistics.IsTraveling,
			"recovery_score": e.state.Wearable("recovery_score", 100),
			"adherence":      string(e.state.InterventionPlan.AdherenceStatus),
		},
		"duration_days": duration,
	})
}
