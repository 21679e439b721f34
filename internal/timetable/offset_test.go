package timetable

import (
	"errors"
	"testing"
)

func TestParseOffsetFormats(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0:00", 0},
		{"0:05", 5},
		{"5:30", 330},
		{"8:35", 515},
		{"12:00", 720},
		{"60:00", 3600},
		{"240", 240},
		{"0", 0},
		{" 4:00 ", 240},
	}

	for _, tt := range tests {
		got, err := ParseOffset(tt.in)
		if err != nil {
			t.Errorf("ParseOffset(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOffset(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseOffsetInvalid(t *testing.T) {
	invalid := []string{"", "abc", "-5", "5:60", "5:-1", ":30", "5:", "1:2:3", "5.5", "-1:30"}

	for _, in := range invalid {
		if _, err := ParseOffset(in); err == nil {
			t.Errorf("ParseOffset(%q) should fail", in)
		} else if !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("ParseOffset(%q) error should wrap ErrInvalidTimeFormat, got %v", in, err)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	// parsing a formatted offset must yield the original seconds value
	for secs := 0; secs <= 3600; secs += 7 {
		formatted := FormatOffset(secs)
		parsed, err := ParseOffset(formatted)
		if err != nil {
			t.Fatalf("round trip parse of %q failed: %v", formatted, err)
		}
		if parsed != secs {
			t.Fatalf("round trip mismatch: %d -> %q -> %d", secs, formatted, parsed)
		}
	}
}

func TestFormatOffsetPadding(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{60, "1:00"},
		{515, "8:35"},
		{3600, "60:00"},
		{-10, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatOffset(tt.in); got != tt.want {
			t.Errorf("FormatOffset(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
