package models

// ActionType identifies a structured action returned by a collaborator.
// The set is open: unrecognized types are carried through and logged but
// have no built-in effect.
type ActionType string

const (
	ActionNone                ActionType = "NONE"
	ActionUpdateNarrativeFlag ActionType = "UPDATE_NARRATIVE_FLAG"
	ActionInitiateSickDay     ActionType = "INITIATE_SICK_DAY_PROTOCOL"
	ActionFlagForExpert       ActionType = "FLAG_FOR_EXPERT"
)

// Action is a structured side effect parsed from a collaborator response.
// It is consumed immediately by the action executor and persisted only
// inside its originating ACTION_EXECUTED event.
type Action struct {
	Type    ActionType     `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// IsNone reports whether the action carries no effect.
func (a Action) IsNone() bool {
	return a.Type == "" || a.Type == ActionNone
}
