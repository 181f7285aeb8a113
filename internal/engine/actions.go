package engine

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/venkat299/healthsim/internal/models"
)

// responseEnvelope is the structured shape collaborators are asked to
// return. The message may arrive under any of the message/question/reply
// keys, or nested one level under "response".
type responseEnvelope struct {
	Message  string          `json:"message"`
	Question string          `json:"question"`
	Reply    string          `json:"reply"`
	Action   *models.Action  `json:"action"`
	Response json.RawMessage `json:"response"`
}

// text returns the first populated message field.
func (env responseEnvelope) text() string {
	switch {
	case env.Message != "":
		return env.Message
	case env.Question != "":
		return env.Question
	default:
		return env.Reply
	}
}

// ParseResponse extracts (message, action) from raw collaborator output.
// It tolerates well-formed JSON, JSON wrapped in markdown code fences,
// JSON nested one level under a "response" key, and arbitrary plain text,
// in which case the trimmed text becomes the message with no action.
// It never fails.
func ParseResponse(raw string) (string, models.Action) {
	text := strings.TrimSpace(raw)
	none := models.Action{Type: models.ActionNone, Payload: map[string]any{}}

	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return text, none
	}

	var env responseEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return text, none
	}

	// One level of nesting under "response".
	if env.text() == "" && env.Action == nil && len(env.Response) > 0 {
		var inner responseEnvelope
		if err := json.Unmarshal(env.Response, &inner); err == nil {
			env = inner
		} else {
			// "response" holding a bare string is also accepted.
			var s string
			if err := json.Unmarshal(env.Response, &s); err == nil {
				return strings.TrimSpace(s), none
			}
			return text, none
		}
	}

	message := strings.TrimSpace(env.text())
	if message == "" && env.Action == nil {
		// Valid JSON but not our envelope; treat the raw text as prose.
		return text, none
	}

	action := none
	if env.Action != nil {
		action = *env.Action
		if action.Type == "" {
			action.Type = models.ActionNone
		}
		if action.Payload == nil {
			action.Payload = map[string]any{}
		}
	}
	return message, action
}

// fence patterns for extractJSON.
var (
	jsonFenceRe    = regexp.MustCompile("(?s)```json\\s*\\n?(.*?)\\s*```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s*\\n?(.*?)\\s*```")
)

// extractJSON extracts JSON content from a string, handling markdown code
// fences. It returns "" when the input does not look like JSON.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if matches := jsonFenceRe.FindStringSubmatch(s); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	if matches := genericFenceRe.FindStringSubmatch(s); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}
	return ""
}

// executeAction applies a parsed action to the world state.
// UPDATE_NARRATIVE_FLAG writes payload.flag -> payload.value into the open
// flag bag; every other non-NONE type is recorded but has no built-in
// effect, leaving the action space open to collaborators and tests.
func (e *Engine) executeAction(source string, action models.Action) {
	if action.IsNone() {
		return
	}

	if action.Type == models.ActionUpdateNarrativeFlag {
		if flag, ok := action.Payload["flag"].(string); ok && flag != "" {
			e.state.NarrativeFlags.SetExtra(flag, action.Payload["value"])
		}
	}

	e.state.LogEvent(models.EventActionExecuted, source, map[string]any{
		"action_type": string(action.Type),
		"payload":     action.Payload,
	})
}
