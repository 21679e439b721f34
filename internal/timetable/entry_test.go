package timetable

import (
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestBuildEntryValid(t *testing.T) {
	e, err := BuildEntry("fangtooth_spawn", EntrySpec{
		Time:          intPtr(300),
		Messages:      []string{"Fangtooth is now online"},
		Category:      "objective",
		RespawnTime:   300,
		RespawnWindow: 30,
	})
	if err != nil {
		t.Fatalf("BuildEntry failed: %v", err)
	}

	if e.Offset != 300 || e.Category != CategoryObjective {
		t.Errorf("entry mismatch: %+v", e)
	}
	if e.RespawnTime != 300 || e.RespawnWindow != 30 {
		t.Errorf("respawn metadata mismatch: %+v", e)
	}
}

func TestBuildEntryLegacyMessageField(t *testing.T) {
	e, err := BuildEntry("game_start", EntrySpec{
		Time:     intPtr(0),
		Message:  "Match is live",
		Category: "early_game",
	})
	if err != nil {
		t.Fatalf("BuildEntry failed: %v", err)
	}

	if len(e.Messages) != 1 || e.Messages[0] != "Match is live" {
		t.Errorf("expected single legacy message, got %v", e.Messages)
	}
}

func TestBuildEntryRejections(t *testing.T) {
	tests := []struct {
		name string
		spec EntrySpec
	}{
		{"negative_time", EntrySpec{Time: intPtr(-10), Messages: []string{"m"}, Category: "reminder"}},
		{"missing_time", EntrySpec{Messages: []string{"m"}, Category: "reminder"}},
		{"huge_time", EntrySpec{Time: intPtr(7200), Messages: []string{"m"}, Category: "reminder"}},
		{"no_messages", EntrySpec{Time: intPtr(10), Category: "reminder"}},
		{"long_message", EntrySpec{Time: intPtr(10), Messages: []string{strings.Repeat("x", 201)}, Category: "reminder"}},
		{"negative_respawn", EntrySpec{Time: intPtr(10), Messages: []string{"m"}, Category: "objective", RespawnTime: -5}},
		{"window_without_respawn", EntrySpec{Time: intPtr(10), Messages: []string{"m"}, Category: "objective", RespawnWindow: 30}},
		{"window_exceeds_respawn", EntrySpec{Time: intPtr(10), Messages: []string{"m"}, Category: "objective", RespawnTime: 60, RespawnWindow: 90}},
	}

	for _, tt := range tests {
		if _, err := BuildEntry(tt.name, tt.spec); err == nil {
			t.Errorf("%s: expected rejection", tt.name)
		}
	}
}

func TestBuildEntryCoercesUnknownCategory(t *testing.T) {
	e, err := BuildEntry("mystery", EntrySpec{
		Time:     intPtr(60),
		Messages: []string{"something"},
		Category: "mid_game",
	})
	if err != nil {
		t.Fatalf("unknown category should coerce, not fail: %v", err)
	}

	if e.Category != CategoryReminder {
		t.Errorf("expected reminder fallback, got %s", e.Category)
	}
}

func TestEntryDisplayName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"fangtooth_spawn", "fangtooth"},
		{"orb_prime_spawn", "orb prime"},
		{"early_ward_reminder", "early ward reminder"},
	}

	for _, tt := range tests {
		e := Entry{Name: tt.name}
		if got := e.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
