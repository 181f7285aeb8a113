package engine

import (
	"github.com/venkat299/healthsim/internal/models"
	"github.com/venkat299/healthsim/internal/sim"
)

// timelineProcess is the two-state phase machine: Onboarding for a fixed
// number of days, then Intervention for the rest of the run. Entering
// Intervention spawns the three periodic processes as independent tasks.
func (e *Engine) timelineProcess(p *sim.Process) {
	e.state.NarrativeFlags.Status = PhaseOnboarding
	e.state.LogEvent(models.EventStateChange, models.SourceCore, map[string]any{
		"status": "Onboarding started",
	})

	if !p.Sleep(e.cfg.Simulation.OnboardingDays) {
		return
	}

	e.state.NarrativeFlags.Status = PhaseIntervention
	e.state.LogEvent(models.EventStateChange, models.SourceCore, map[string]any{
		"status": "Main intervention phase started",
	})

	p.Env().Spawn("diagnostic", e.diagnosticProcess)
	p.Env().Spawn("exercise-plan", e.exercisePlanProcess)
	p.Env().Spawn("travel", e.travelProcess)
}
