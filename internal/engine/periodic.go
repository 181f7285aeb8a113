package engine

import (
	"fmt"
	"math"

	"github.com/venkat299/healthsim/internal/models"
	"github.com/venkat299/healthsim/internal/sim"
)

// diagnosticProcess runs a full lab panel on a fixed cadence, overwriting
// the previous results.
func (e *Engine) diagnosticProcess(p *sim.Process) {
	for p.Sleep(e.cfg.Simulation.DiagnosticIntervalDays) {
		e.state.LogEvent(models.EventDiagnosticTest, models.SourceCore, map[string]any{
			"description": "Quarterly diagnostic test panel initiated.",
		})
		e.state.HealthData.LabResults = map[string]any{
			"cholesterol":    math.Round(e.uniform(150, 220)*10) / 10,
			"blood_pressure": fmt.Sprintf("%d/%d", e.uniformInt(110, 130), e.uniformInt(70, 85)),
			"last_test_day":  e.state.CurrentDay,
		}
	}
}

// exercisePlanProcess refreshes the exercise plan on a fixed cadence.
func (e *Engine) exercisePlanProcess(p *sim.Process) {
	for p.Sleep(e.cfg.Simulation.ExerciseIntervalDays) {
		e.state.InterventionPlan.LastExerciseUpdateDay = e.state.CurrentDay
		e.state.LogEvent(models.EventPlanUpdate, models.SourceCore, map[string]any{
			"description": "Exercise plan updated.",
		})
	}
}

// travelProcess cycles the member between home base and trips to a random
// destination: HomeDays at home, then AwayDays traveling.
func (e *Engine) travelProcess(p *sim.Process) {
	travel := e.cfg.Simulation.Travel
	for p.Sleep(travel.HomeDays) {
		location := travel.Locations[e.rng.Intn(len(travel.Locations))]
		e.state.StartTravel(location)
		e.state.LogEvent(models.EventTravelStart, models.SourceCore, map[string]any{
			"location": location,
		})

		if !p.Sleep(travel.AwayDays) {
			return
		}
		e.state.EndTravel(travel.HomeBase)
		e.state.LogEvent(models.EventTravelEnd, models.SourceCore, map[string]any{
			"location": travel.HomeBase,
		})
	}
}

// vitalsProcess refreshes the wearable stream four times per simulated
// day. HRV drifts upward over the engagement and both metrics sag while a
// health issue is active; recovery additionally drops when traveling.
func (e *Engine) vitalsProcess(p *sim.Process) {
	for p.Sleep(0.25) {
		modifier := 1.0
		if _, active := e.state.ActiveIssue(); active {
			modifier = 0.6
		}

		baseHRV := (45 + e.state.CurrentDay/30) * modifier
		hrv := math.Round((baseHRV+e.uniform(-5, 5))*10) / 10
		e.state.HealthData.WearableStream["hrv"] = hrv

		baseRecovery := 70.0
		if e.state.Logistics.IsTraveling {
			baseRecovery -= 20
		}
		recovery := math.Round((baseRecovery + e.uniform(-15, 15)) * modifier)
		e.state.HealthData.WearableStream["recovery_score"] = math.Max(0, math.Min(100, recovery))
	}
}
