package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/venkat299/healthsim/internal/models"
)

// Context distillation bounds.
const (
	distillHistoryDepth   = 15
	distillCriticalWindow = 1.0
)

// Distill builds the bounded snapshot handed to the response-generation
// collaborator: current state summary, recent critical events, the last
// messages of the conversation, and the requester's own recent messages.
// It is the only state that crosses the collaborator boundary besides the
// persona and trigger text.
func Distill(state *models.SimulationState, requester string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## CONTEXT ##\n")
	fmt.Fprintf(&b, "Current State (Day %.1f):\n", state.CurrentDay)
	fmt.Fprintf(&b, "- Member: %s, Age: %d\n", state.MemberProfile.Name, state.MemberProfile.Age)
	travelNote := ""
	if state.Logistics.IsTraveling {
		travelNote = " (Traveling)"
	}
	fmt.Fprintf(&b, "- Location: %s%s\n", state.Logistics.Location, travelNote)
	fmt.Fprintf(&b, "- Key Health Metrics: %s\n", compactJSON(state.HealthData.LabResults))
	fmt.Fprintf(&b, "- Wearable Status: %s\n", compactJSON(state.HealthData.WearableStream))
	fmt.Fprintf(&b, "- Current Goals: %s\n", strings.Join(state.MemberProfile.Goals, "; "))
	fmt.Fprintf(&b, "- Adherence: %s\n", state.InterventionPlan.AdherenceStatus)
	fmt.Fprintf(&b, "- Narrative Flags: %s\n", compactJSON(state.NarrativeFlags.Map()))

	if critical := state.RecentNonMessageEvents(distillCriticalWindow); len(critical) > 0 {
		b.WriteString("\n## CRITICAL RECENT EVENTS ##\n")
		for _, ev := range critical {
			fmt.Fprintf(&b, "- [CRITICAL] day %.2f %s: %s\n", ev.Day, ev.Type, compactJSON(ev.Payload))
		}
	}

	b.WriteString("\n## RECENT CONVERSATION HISTORY ##\n")
	messages := state.MessageEvents(distillHistoryDepth)
	if len(messages) == 0 {
		b.WriteString("No recent conversation.\n")
	}
	for _, ev := range messages {
		fmt.Fprintf(&b, "- %s: %s\n", ev.Source, ev.Content())
	}

	if own := state.AgentMemory[requester]; len(own) > 0 {
		b.WriteString("\n## YOUR OWN RECENT MESSAGES ##\n")
		for _, msg := range own {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}

	return b.String()
}

// compactJSON renders a value as single-line JSON, falling back to %v on
// marshal failure.
func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
