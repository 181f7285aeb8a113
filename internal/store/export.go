package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/venkat299/healthsim/internal/models"
)

// WriteEventLog serializes the full event log as an indented JSON array.
func WriteEventLog(path string, events []models.Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling event log: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing event log: %w", err)
	}
	return nil
}

// Transcript renders the MESSAGE events of a log as a chat transcript,
// one "[timestamp] source: content" line per message, in log order.
func Transcript(events []models.Event) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Type != models.EventMessage {
			continue
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", ev.Timestamp, ev.Source, ev.Content())
	}
	return b.String()
}

// WriteTranscript writes the derived chat transcript to path.
func WriteTranscript(path string, events []models.Event) error {
	if err := os.WriteFile(path, []byte(Transcript(events)), 0644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

// ReadEventLog loads a JSON event-log file written by WriteEventLog.
func ReadEventLog(path string) ([]models.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing event log: %w", err)
	}
	return events, nil
}
