package models

import (
	"math"
	"time"
)

// EventType categorizes entries in the simulation event log.
type EventType string

const (
	EventSimStart            EventType = "SIM_START"
	EventSimEnd              EventType = "SIM_END"
	EventStateChange         EventType = "STATE_CHANGE"
	EventDiagnosticTest      EventType = "DIAGNOSTIC_TEST"
	EventPlanUpdate          EventType = "PLAN_UPDATE"
	EventTravelStart         EventType = "TRAVEL_START"
	EventTravelEnd           EventType = "TRAVEL_END"
	EventHealthIssue         EventType = "HEALTH_ISSUE"
	EventHealthIssueResolved EventType = "HEALTH_ISSUE_RESOLVED"
	EventPositiveMilestone   EventType = "POSITIVE_MILESTONE"
	EventMessage             EventType = "MESSAGE"
	EventRouting             EventType = "ROUTING"
	EventActionExecuted      EventType = "ACTION_EXECUTED"
	EventError               EventType = "ERROR"
	EventDialogIntervention  EventType = "DIALOG_INTERVENTION"
)

// SourceCore identifies events emitted by the simulation itself rather
// than by a care-team member or the client.
const SourceCore = "SIM_CORE"

// Event is a single entry in the append-only simulation log.
type Event struct {
	// Day is the simulated day of the event, rounded to two decimals.
	Day float64 `json:"day" yaml:"day"`

	// Timestamp is the display form of Day relative to the run's start date,
	// e.g. "01/15/25, 09:36 AM".
	Timestamp string `json:"timestamp" yaml:"timestamp"`

	Type   EventType `json:"type" yaml:"type"`
	Source string    `json:"source" yaml:"source"`

	// Payload carries event-specific detail. For MESSAGE events the "content"
	// key holds the message text.
	Payload map[string]any `json:"payload" yaml:"payload"`
}

// Content returns the message text for MESSAGE events, or "" otherwise.
func (e Event) Content() string {
	if s, ok := e.Payload["content"].(string); ok {
		return s
	}
	return ""
}

// timestampLayout matches the original chat-log export format.
const timestampLayout = "01/02/06, 03:04 PM"

// FormatTimestamp converts a simulated day offset into a display timestamp
// relative to the given start date.
func FormatTimestamp(start time.Time, day float64) string {
	offset := time.Duration(day * 24 * float64(time.Hour))
	return start.Add(offset).Format(timestampLayout)
}

// RoundDay rounds a simulated day to two decimals for display.
func RoundDay(day float64) float64 {
	return math.Round(day*100) / 100
}
