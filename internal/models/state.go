// Package models defines the shared world state, event log, and action
// types for the health-coaching simulation. The state is pure data plus
// invariant-preserving transition methods; all behavior lives in the
// engine processes that mutate it.
package models

import (
	"time"
)

// AdherenceStatus reports whether the member is following the current plan.
type AdherenceStatus string

const (
	AdherenceOnTrack  AdherenceStatus = "ON_TRACK"
	AdherenceDeviated AdherenceStatus = "DEVIATED"
)

// MemberProfile is the immutable description of the simulated client.
type MemberProfile struct {
	Name             string   `json:"name" yaml:"name"`
	Age              int      `json:"age" yaml:"age"`
	Goals            []string `json:"goals" yaml:"goals"`
	Personality      string   `json:"personality" yaml:"personality"`
	HealthConditions []string `json:"health_conditions" yaml:"health_conditions"`
}

// HealthData aggregates the member's biometric and lab information.
type HealthData struct {
	// WearableStream maps metric name ("hrv", "recovery_score", ...) to the
	// latest reading.
	WearableStream map[string]float64 `json:"wearable_stream"`

	// LabResults holds the most recent diagnostic panel.
	LabResults        map[string]any `json:"lab_results"`
	SubjectiveReports []string       `json:"subjective_reports"`
}

// InterventionPlan tracks plan adherence and the exercise refresh cycle.
type InterventionPlan struct {
	AdherenceStatus       AdherenceStatus `json:"adherence_status"`
	LastExerciseUpdateDay float64         `json:"last_exercise_update_day"`
}

// Logistics tracks the member's location.
type Logistics struct {
	Location    string `json:"location"`
	IsTraveling bool   `json:"is_traveling"`
}

// NarrativeFlags holds the named lifecycle markers that gate one-shot or
// stateful behaviors, plus an open map for flags created dynamically by
// executed actions.
type NarrativeFlags struct {
	Status                string
	ActiveIssue           string
	IssueResolvesOn       float64
	IssueCooldownUntil    float64
	OnboardingDocsSent    bool
	ConsultationScheduled bool
	TravelCheckInSent     bool
	AdherenceCheckSent    bool

	// WellnessCheckSentDay records the day a periodic wellness check went
	// out; negative means no check is pending.
	WellnessCheckSentDay float64

	// Extra holds action-originated flags keyed by name.
	Extra map[string]any
}

// Map flattens the flags into a single key/value view for context
// distillation. Zero-valued lifecycle flags are omitted, matching the
// open flag bag the collaborators were designed against.
func (f *NarrativeFlags) Map() map[string]any {
	out := make(map[string]any, len(f.Extra)+8)
	if f.Status != "" {
		out["status"] = f.Status
	}
	if f.ActiveIssue != "" {
		out["active_issue"] = f.ActiveIssue
		out["issue_resolves_on"] = f.IssueResolvesOn
	}
	if f.IssueCooldownUntil > 0 {
		out["issue_cooldown_until"] = f.IssueCooldownUntil
	}
	if f.OnboardingDocsSent {
		out["onboarding_docs_sent"] = true
	}
	if f.ConsultationScheduled {
		out["consultation_scheduled"] = true
	}
	if f.TravelCheckInSent {
		out["travel_check_in_sent"] = true
	}
	if f.AdherenceCheckSent {
		out["adherence_check_sent"] = true
	}
	if f.WellnessCheckSentDay >= 0 {
		out["wellness_check_sent_day"] = f.WellnessCheckSentDay
	}
	for k, v := range f.Extra {
		out[k] = v
	}
	return out
}

// SetExtra stores an action-originated flag.
func (f *NarrativeFlags) SetExtra(key string, value any) {
	if f.Extra == nil {
		f.Extra = make(map[string]any)
	}
	f.Extra[key] = value
}

// memoryDepth bounds per-responder message memory.
const memoryDepth = 5

// SimulationState is the single shared world state. It is created once
// before scheduling starts and mutated by the cooperative processes; the
// single-threaded scheduler discipline makes locking unnecessary.
type SimulationState struct {
	CurrentDay float64

	// StartDate anchors display timestamps.
	StartDate time.Time

	MemberProfile    MemberProfile
	HealthData       HealthData
	InterventionPlan InterventionPlan
	Logistics        Logistics
	NarrativeFlags   NarrativeFlags

	// AgentMemory maps responder identity to the last messages that
	// responder authored, oldest first, capped at memoryDepth.
	AgentMemory map[string][]string

	// EventLog is append-only; Day is non-decreasing across entries.
	EventLog []Event
}

// NewState builds the initial world state for a run.
func NewState(profile MemberProfile, homeBase string, start time.Time) *SimulationState {
	return &SimulationState{
		StartDate:     start,
		MemberProfile: profile,
		HealthData: HealthData{
			WearableStream: make(map[string]float64),
			LabResults:     make(map[string]any),
		},
		InterventionPlan: InterventionPlan{AdherenceStatus: AdherenceOnTrack},
		Logistics:        Logistics{Location: homeBase},
		NarrativeFlags:   NarrativeFlags{WellnessCheckSentDay: -1},
		AgentMemory:      make(map[string][]string),
	}
}

// LogEvent appends an event stamped with the current simulated day.
func (s *SimulationState) LogEvent(typ EventType, source string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	ev := Event{
		Day:       RoundDay(s.CurrentDay),
		Timestamp: FormatTimestamp(s.StartDate, s.CurrentDay),
		Type:      typ,
		Source:    source,
		Payload:   payload,
	}
	s.EventLog = append(s.EventLog, ev)
	return ev
}

// LastEvent returns the most recent log entry, or false when the log is empty.
func (s *SimulationState) LastEvent() (Event, bool) {
	if len(s.EventLog) == 0 {
		return Event{}, false
	}
	return s.EventLog[len(s.EventLog)-1], true
}

// MessageEvents returns up to limit of the most recent MESSAGE events in
// chronological order. limit <= 0 returns all of them.
func (s *SimulationState) MessageEvents(limit int) []Event {
	var msgs []Event
	for _, ev := range s.EventLog {
		if ev.Type == EventMessage {
			msgs = append(msgs, ev)
		}
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}

// RecentNonMessageEvents returns non-message events from the trailing
// window of simulated days.
func (s *SimulationState) RecentNonMessageEvents(window float64) []Event {
	var out []Event
	for _, ev := range s.EventLog {
		if ev.Type == EventMessage {
			continue
		}
		if s.CurrentDay-ev.Day <= window {
			out = append(out, ev)
		}
	}
	return out
}

// RecordAuthored appends a message to the author's bounded memory.
func (s *SimulationState) RecordAuthored(author, message string) {
	mem := append(s.AgentMemory[author], message)
	if len(mem) > memoryDepth {
		mem = mem[len(mem)-memoryDepth:]
	}
	s.AgentMemory[author] = mem
}

// ActiveIssue reports the currently active health issue, if any.
func (s *SimulationState) ActiveIssue() (string, bool) {
	return s.NarrativeFlags.ActiveIssue, s.NarrativeFlags.ActiveIssue != ""
}

// StartIssue activates a health issue. It is a programming error to start
// an issue while another is active; callers must resolve first.
func (s *SimulationState) StartIssue(name string, resolvesOn, cooldownUntil float64) {
	s.NarrativeFlags.ActiveIssue = name
	s.NarrativeFlags.IssueResolvesOn = resolvesOn
	s.NarrativeFlags.IssueCooldownUntil = cooldownUntil
}

// ResolveIssue clears the active issue and returns its name. The cooldown
// window is left in place.
func (s *SimulationState) ResolveIssue() (string, bool) {
	issue := s.NarrativeFlags.ActiveIssue
	if issue == "" {
		return "", false
	}
	s.NarrativeFlags.ActiveIssue = ""
	s.NarrativeFlags.IssueResolvesOn = 0
	return issue, true
}

// SetAdherence records the member's plan adherence for the day.
func (s *SimulationState) SetAdherence(status AdherenceStatus) {
	s.InterventionPlan.AdherenceStatus = status
}

// StartTravel marks the member as traveling to location.
func (s *SimulationState) StartTravel(location string) {
	s.Logistics.IsTraveling = true
	s.Logistics.Location = location
}

// EndTravel returns the member to home base and re-arms the travel
// check-in flag for the next trip.
func (s *SimulationState) EndTravel(homeBase string) {
	s.Logistics.IsTraveling = false
	s.Logistics.Location = homeBase
	s.NarrativeFlags.TravelCheckInSent = false
}

// Wearable returns a wearable metric, or fallback when the stream has no
// reading for it yet.
func (s *SimulationState) Wearable(metric string, fallback float64) float64 {
	if v, ok := s.HealthData.WearableStream[metric]; ok {
		return v
	}
	return fallback
}
