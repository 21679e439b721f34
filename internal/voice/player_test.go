package voice

import "testing"

func TestEncodeOptionsTempo(t *testing.T) {
	tests := []struct {
		speed  float64
		filter string
	}{
		{1.0, ""},
		{1.5, "atempo=1.50"},
		{0.9, "atempo=0.90"},
		// below the slow threshold the endpoint's slow voice already
		// carries the pacing, so no encoder tempo shift
		{0.5, ""},
		{0.79, ""},
		{0, ""},
	}

	for _, tt := range tests {
		opts := encodeOptions(1.0, tt.speed)
		if opts.AudioFilter != tt.filter {
			t.Errorf("encodeOptions speed %.2f: filter = %q, want %q", tt.speed, opts.AudioFilter, tt.filter)
		}
	}
}

func TestEncodeOptionsVolume(t *testing.T) {
	if got := encodeOptions(1.0, 1.0).Volume; got != 256 {
		t.Errorf("full volume = %d, want 256", got)
	}
	if got := encodeOptions(0.5, 1.0).Volume; got != 128 {
		t.Errorf("half volume = %d, want 128", got)
	}
	if got := encodeOptions(0, 1.0).Volume; got != 1 {
		t.Errorf("zero volume should floor at 1, got %d", got)
	}
}
