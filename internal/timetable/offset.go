package timetable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTimeFormat = errors.New("invalid time format")

// ParseOffset converts a match-clock string to whole seconds. Accepts
// "M:SS" (minutes unbounded, seconds 00-59) or a bare non-negative
// integer of seconds.
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTimeFormat)
	}

	if !strings.Contains(s, ":") {
		secs, err := strconv.Atoi(s)
		if err != nil || secs < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
		return secs, nil
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	mins, err := strconv.Atoi(parts[0])
	if err != nil || mins < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	secs, err := strconv.Atoi(parts[1])
	if err != nil || secs < 0 || secs > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return mins*60 + secs, nil
}

// FormatOffset renders seconds as "M:SS".
func FormatOffset(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
