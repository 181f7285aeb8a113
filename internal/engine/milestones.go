package engine

import (
	"fmt"

	"github.com/venkat299/healthsim/internal/models"
	"github.com/venkat299/healthsim/internal/sim"
)

// Milestone ratchet parameters.
const (
	adherenceMilestoneStart = 30
	adherenceMilestoneStep  = 30
	hrvMilestoneStart       = 50.0
	hrvMilestoneStep        = 5.0
)

// milestoneProcess runs two independent monotonic ratchets once per day.
//
// The adherence streak counts consecutive ON_TRACK days; reaching the
// threshold fires a milestone, resets the streak, and raises the threshold
// by a fixed step. The HRV ratchet fires whenever the latest reading
// strictly exceeds its threshold, which then rises and never resets.
func (e *Engine) milestoneProcess(p *sim.Process) {
	adherenceThreshold := adherenceMilestoneStart
	daysOnTrack := 0
	hrvThreshold := hrvMilestoneStart

	for p.Sleep(1) {
		if e.state.InterventionPlan.AdherenceStatus == models.AdherenceOnTrack {
			daysOnTrack++
		} else {
			daysOnTrack = 0
		}

		if daysOnTrack >= adherenceThreshold {
			e.state.LogEvent(models.EventPositiveMilestone, models.SourceCore, map[string]any{
				"milestone": fmt.Sprintf("%d consecutive days of adherence!", adherenceThreshold),
			})
			daysOnTrack = 0
			adherenceThreshold += adherenceMilestoneStep
		}

		if hrv := e.state.Wearable("hrv", 0); hrv > hrvThreshold {
			e.state.LogEvent(models.EventPositiveMilestone, models.SourceCore, map[string]any{
				"milestone": fmt.Sprintf("Daily HRV surpassed %.0f!", hrvThreshold),
			})
			hrvThreshold += hrvMilestoneStep
		}
	}
}
