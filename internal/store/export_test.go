package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/venkat299/healthsim/internal/models"
)

func TestWriteAndReadEventLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simulation_log.json")
	events := testEvents()

	if err := WriteEventLog(path, events); err != nil {
		t.Fatalf("WriteEventLog: %v", err)
	}

	got, err := ReadEventLog(path)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i, ev := range got {
		if ev.Type != events[i].Type || ev.Day != events[i].Day || ev.Timestamp != events[i].Timestamp {
			t.Errorf("event %d: expected %+v, got %+v", i, events[i], ev)
		}
	}
}

func TestReadEventLogMissingFile(t *testing.T) {
	if _, err := ReadEventLog("/nonexistent/log.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTranscript(t *testing.T) {
	events := []models.Event{
		{Day: 0, Type: models.EventSimStart, Source: models.SourceCore,
			Payload: map[string]any{"message": "Simulation starting."}},
		{Day: 1, Timestamp: "01/16/25, 09:36 AM", Type: models.EventMessage, Source: "Ruby",
			Payload: map[string]any{"content": "Welcome aboard!"}},
		{Day: 1.2, Timestamp: "01/16/25, 02:24 PM", Type: models.EventMessage, Source: "Rohan",
			Payload: map[string]any{"content": "Thanks, looking forward to it."}},
		{Day: 2, Type: models.EventStateChange, Source: models.SourceCore, Payload: map[string]any{}},
	}

	got := Transcript(events)

	want := "[01/16/25, 09:36 AM] Ruby: Welcome aboard!\n" +
		"[01/16/25, 02:24 PM] Rohan: Thanks, looking forward to it.\n"
	if got != want {
		t.Errorf("unexpected transcript:\n%q\nwant:\n%q", got, want)
	}
	if strings.Contains(got, "SIM_START") || strings.Contains(got, "STATE_CHANGE") {
		t.Error("expected non-message events excluded from the transcript")
	}
}

func TestWriteTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	events := testEvents()

	if err := WriteTranscript(path, events); err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	if string(data) != Transcript(events) {
		t.Errorf("expected file to match derived transcript, got %q", string(data))
	}
}
