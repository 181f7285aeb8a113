package models

import (
	"fmt"
	"testing"
	"time"
)

func testStart(t *testing.T) time.Time {
	t.Helper()
	start, err := time.Parse("2006-01-02", "2025-01-15")
	if err != nil {
		t.Fatalf("parsing start date: %v", err)
	}
	return start
}

func TestLogEventStampsCurrentDay(t *testing.T) {
	state := NewState(MemberProfile{Name: "Rohan Patel"}, "Singapore", testStart(t))
	state.CurrentDay = 3.14159

	ev := state.LogEvent(EventMessage, "Ruby", map[string]any{"content": "hello"})

	if ev.Day != 3.14 {
		t.Errorf("expected day rounded to 3.14, got %v", ev.Day)
	}
	if ev.Timestamp == "" {
		t.Error("expected a timestamp")
	}
	if len(state.EventLog) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(state.EventLog))
	}
	if got := state.EventLog[0].Content(); got != "hello" {
		t.Errorf("expected content 'hello', got %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	start := testStart(t)
	tests := []struct {
		day  float64
		want string
	}{
		{0, "01/15/25, 12:00 AM"},
		{1, "01/16/25, 12:00 AM"},
		{0.5, "01/15/25, 12:00 PM"},
		{2.25, "01/17/25, 06:00 AM"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(start, tt.day); got != tt.want {
			t.Errorf("day %v: expected %q, got %q", tt.day, tt.want, got)
		}
	}
}

func TestMessageEventsBounded(t *testing.T) {
	state := NewState(MemberProfile{}, "Singapore", testStart(t))
	for i := 0; i < 20; i++ {
		state.CurrentDay = float64(i)
		state.LogEvent(EventMessage, "Ruby", map[string]any{"content": fmt.Sprintf("msg %d", i)})
		state.LogEvent(EventStateChange, SourceCore, nil)
	}

	msgs := state.MessageEvents(15)
	if len(msgs) != 15 {
		t.Fatalf("expected 15 messages, got %d", len(msgs))
	}
	if got := msgs[0].Content(); got != "msg 5" {
		t.Errorf("expected oldest retained message 'msg 5', got %q", got)
	}
	if got := msgs[14].Content(); got != "msg 19" {
		t.Errorf("expected newest message 'msg 19', got %q", got)
	}

	if all := state.MessageEvents(0); len(all) != 20 {
		t.Errorf("expected all 20 messages with no limit, got %d", len(all))
	}
}

func TestRecentNonMessageEventsWindow(t *testing.T) {
	state := NewState(MemberProfile{}, "Singapore", testStart(t))
	state.CurrentDay = 5
	state.LogEvent(EventTravelStart, SourceCore, nil)
	state.CurrentDay = 9.5
	state.LogEvent(EventHealthIssue, SourceCore, nil)
	state.LogEvent(EventMessage, "Ruby", map[string]any{"content": "checking in"})
	state.CurrentDay = 10

	recent := state.RecentNonMessageEvents(1)
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent event, got %d", len(recent))
	}
	if recent[0].Type != EventHealthIssue {
		t.Errorf("expected HEALTH_ISSUE, got %s", recent[0].Type)
	}
}

func TestRecordAuthoredCapsMemory(t *testing.T) {
	state := NewState(MemberProfile{}, "Singapore", testStart(t))
	for i := 0; i < 8; i++ {
		state.RecordAuthored("Advik", fmt.Sprintf("note %d", i))
	}

	mem := state.AgentMemory["Advik"]
	if len(mem) != 5 {
		t.Fatalf("expected memory capped at 5, got %d", len(mem))
	}
	if mem[0] != "note 3" || mem[4] != "note 7" {
		t.Errorf("expected oldest 'note 3' and newest 'note 7', got %v", mem)
	}
}

func TestIssueLifecycle(t *testing.T) {
	state := NewState(MemberProfile{}, "Singapore", testStart(t))

	if _, ok := state.ActiveIssue(); ok {
		t.Fatal("expected no active issue initially")
	}

	state.StartIssue("Mild Viral Illness", 12, 20)
	issue, ok := state.ActiveIssue()
	if !ok || issue != "Mild Viral Illness" {
		t.Fatalf("expected active issue, got %q ok=%v", issue, ok)
	}

	resolved, ok := state.ResolveIssue()
	if !ok || resolved != "Mild Viral Illness" {
		t.Fatalf("expected resolved issue name, got %q ok=%v", resolved, ok)
	}
	if _, ok := state.ActiveIssue(); ok {
		t.Error("expected no active issue after resolution")
	}
	if state.NarrativeFlags.IssueCooldownUntil != 20 {
		t.Errorf("expected cooldown preserved at 20, got %v", state.NarrativeFlags.IssueCooldownUntil)
	}

	if _, ok := state.ResolveIssue(); ok {
		t.Error("expected resolving with no active issue to report false")
	}
}

func TestTravelTransitions(t *testing.T) {
	state := NewState(MemberProfile{}, "Singapore", testStart(t))
	state.NarrativeFlags.TravelCheckInSent = true

	state.StartTravel("UK")
	if !state.Logistics.IsTraveling || state.Logistics.Location != "UK" {
		t.Errorf("expected traveling to UK, got %+v", state.Logistics)
	}

	state.EndTravel("Singapore")
	if state.Logistics.IsTraveling {
		t.Error("expected travel ended")
	}
	if state.Logistics.Location != "Singapore" {
		t.Errorf("expected return to Singapore, got %q", state.Logistics.Location)
	}
	if state.NarrativeFlags.TravelCheckInSent {
		t.Error("expected travel check-in flag re-armed")
	}
}

func TestNarrativeFlagsMap(t *testing.T) {
	flags := NarrativeFlags{
		Status:               "Intervention",
		ActiveIssue:          "General Fatigue",
		IssueResolvesOn:      42,
		WellnessCheckSentDay: -1,
	}
	flags.SetExtra("member_sentiment", "frustrated")

	m := flags.Map()
	if m["status"] != "Intervention" {
		t.Errorf("expected status in map, got %v", m["status"])
	}
	if m["active_issue"] != "General Fatigue" || m["issue_resolves_on"] != 42.0 {
		t.Errorf("expected active issue fields, got %v", m)
	}
	if m["member_sentiment"] != "frustrated" {
		t.Errorf("expected extra flag, got %v", m["member_sentiment"])
	}
	if _, ok := m["wellness_check_sent_day"]; ok {
		t.Error("expected unset wellness day to be omitted")
	}
	if _, ok := m["onboarding_docs_sent"]; ok {
		t.Error("expected false lifecycle flags to be omitted")
	}
}

func TestWearableFallback(t *testing.T) {
	state := NewState(MemberProfile{}, "Singapore", testStart(t))
	if got := state.Wearable("recovery_score", 70); got != 70 {
		t.Errorf("expected fallback 70, got %v", got)
	}
	state.HealthData.WearableStream["recovery_score"] = 33
	if got := state.Wearable("recovery_score", 70); got != 33 {
		t.Errorf("expected stored reading 33, got %v", got)
	}
}
