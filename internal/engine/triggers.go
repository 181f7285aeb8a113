package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/venkat299/healthsim/internal/llm"
	"github.com/venkat299/healthsim/internal/models"
	"github.com/venkat299/healthsim/internal/sim"
)

// adherenceCheckAfterDays is how many consecutive deviated days prompt an
// adherence check-in.
const adherenceCheckAfterDays = 3

// triggerProcess is the daily proactive resolver. Each tick it first rolls
// the member's plan adherence for the day, then walks a strict priority
// order of trigger conditions and lets at most the first match produce a
// responder message.
func (e *Engine) triggerProcess(p *sim.Process) {
	daysDeviated := 0

	for p.Sleep(1) {
		day := e.state.CurrentDay
		flags := &e.state.NarrativeFlags

		// The adherence roll happens every tick regardless of which
		// trigger fires.
		if e.rng.Float64() > e.cfg.Simulation.PlanAdherenceProbability {
			e.state.SetAdherence(models.AdherenceDeviated)
			daysDeviated++
		} else {
			e.state.SetAdherence(models.AdherenceOnTrack)
			daysDeviated = 0
			flags.AdherenceCheckSent = false
		}

		// Re-arm the wellness check once the day moves past the send day.
		if flags.WellnessCheckSentDay >= 0 && day > flags.WellnessCheckSentDay {
			flags.WellnessCheckSentDay = -1
		}

		role, trigger := e.resolveTrigger(day, daysDeviated)
		if role == "" {
			continue
		}
		persona, ok := e.cfg.Team.PersonaByRole(role)
		if !ok {
			// Misconfigured roster; surface it once per tick rather than halt.
			e.state.LogEvent(models.EventError, models.SourceCore, map[string]any{
				"error": fmt.Sprintf("no persona for role %q", role),
			})
			continue
		}
		e.respond(persona, trigger)
	}
}

// resolveTrigger evaluates the daily trigger conditions in strict priority
// order and returns the responder role plus trigger description for the
// first match, or ("", ""). One-shot flags are set here, as part of the
// decision, so the same condition cannot match again the next day.
func (e *Engine) resolveTrigger(day float64, daysDeviated int) (role, trigger string) {
	state := e.state
	flags := &state.NarrativeFlags
	cfg := e.cfg.Simulation

	switch {
	// 1. Travel just started and this trip has no check-in yet.
	case state.Logistics.IsTraveling && !flags.TravelCheckInSent:
		flags.TravelCheckInSent = true
		return "logistics", fmt.Sprintf(
			"Travel Check-in: Member just arrived in %s. Confirm logistics and local arrangements.",
			state.Logistics.Location)

	// 2. Onboarding documents not yet sent.
	case flags.Status == PhaseOnboarding && !flags.OnboardingDocsSent:
		flags.OnboardingDocsSent = true
		return "logistics", fmt.Sprintf(
			"Action: Send the onboarding documents and data request to %s.",
			state.MemberProfile.Name)

	// 3. A health issue is active.
	case flags.ActiveIssue != "":
		return issueResponder(flags.ActiveIssue)

	// 4. The most recent event is a milestone.
	case isMilestone(state):
		last, _ := state.LastEvent()
		return "leadership", fmt.Sprintf(
			"Team Alert: Member achieved milestone: %q. Send congratulations.",
			last.Payload["milestone"])

	// 5. Several consecutive deviated days and no check-in sent yet.
	case daysDeviated >= adherenceCheckAfterDays && !flags.AdherenceCheckSent:
		flags.AdherenceCheckSent = true
		return "logistics", "Proactive Check-in: Checking in on current plan adherence."

	// 6. Periodic general wellness window.
	case day > 0 && math.Mod(day, cfg.WellnessIntervalDays) < 1 && flags.WellnessCheckSentDay < 0:
		flags.WellnessCheckSentDay = day
		return "logistics", "Proactive Check-in: General wellness check. How is everything going?"

	// 7. Critically low recovery.
	case state.Wearable("recovery_score", 100) < 30:
		return "wearables", "Proactive Check-in: Recovery score is very low."

	// 8. Exercise plan refreshed today.
	case math.Abs(day-state.InterventionPlan.LastExerciseUpdateDay) < 1 && state.InterventionPlan.LastExerciseUpdateDay > 0:
		return "movement", "Proactive Check-in: Exercise plan updated. How are new workouts?"

	// 9. Biweekly nutrition review.
	case day > 0 && math.Mod(day, 14) < 1:
		return "nutrition", "Proactive Check-in: Bi-weekly nutrition review."

	// 10. Quarterly strategic review.
	case day > 0 && math.Mod(day, 90) < 1:
		return "leadership", fmt.Sprintf(
			"Proactive Review: Quarterly milestone. Review progress toward: %s",
			strings.Join(state.MemberProfile.Goals, " "))
	}
	return "", ""
}

// issueResponder maps an active issue to the specialist who should reach
// out, with the physician as fallback.
func issueResponder(issue string) (role, trigger string) {
	switch {
	case strings.Contains(issue, "Strain"):
		return "movement", fmt.Sprintf("Health Alert: Member has '%s'. Provide guidance.", issue)
	case strings.Contains(issue, "Illness"), strings.Contains(issue, "Pressure"):
		return "physician", fmt.Sprintf("Health Alert: Member has '%s'. Check symptoms.", issue)
	case strings.Contains(issue, "Indigestion"):
		return "nutrition", fmt.Sprintf("Health Alert: Member reports '%s'. Advise on diet.", issue)
	default:
		return "physician", fmt.Sprintf("Health Alert: Member has '%s'. Check symptoms.", issue)
	}
}

// isMilestone reports whether the most recent log entry is a milestone.
func isMilestone(state *models.SimulationState) bool {
	last, ok := state.LastEvent()
	return ok && last.Type == models.EventPositiveMilestone
}

// respond distills context for the responder, invokes the generator,
// and funnels the parsed result into the event log, the responder's
// bounded memory, and the action executor. A collaborator failure becomes
// an ERROR event and nothing else.
func (e *Engine) respond(persona llm.Persona, trigger string) {
	distilled := Distill(e.state, persona.Name)
	raw, err := e.client.Generate(e.ctx, persona, distilled, trigger)
	if err != nil {
		e.log.Warn("generation failed", "responder", persona.Name, "error", err)
		e.state.LogEvent(models.EventError, persona.Name+"_AGENT", map[string]any{
			"error": err.Error(),
		})
		return
	}

	message, action := ParseResponse(raw)
	if message != "" {
		e.state.LogEvent(models.EventMessage, persona.Name, map[string]any{
			"content": message,
		})
		e.state.RecordAuthored(persona.Name, message)
	}
	e.executeAction(persona.Name, action)
}
