package stream

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/large-farva/tickscope/internal/codec"
)

// ValidationError reports user input that was rejected before anything was
// sent to the server.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

var intervalReason = fmt.Sprintf("must be an integer between %d and %d ms", codec.MinIntervalMs, codec.MaxIntervalMs)

// ValidateIntervalMs accepts integers in [50, 10000].
func ValidateIntervalMs(ms int) error {
	if ms < codec.MinIntervalMs || ms > codec.MaxIntervalMs {
		return &ValidationError{Field: "interval", Value: strconv.Itoa(ms), Reason: intervalReason}
	}
	return nil
}

// ParseIntervalMs reads an interval typed by the user. Anything that is not
// a base-10 integer in range is rejected.
func ParseIntervalMs(raw string) (int, error) {
	ms, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Field: "interval", Value: raw, Reason: intervalReason}
	}
	if err := ValidateIntervalMs(ms); err != nil {
		return 0, err
	}
	return ms, nil
}

// NormalizeSeriesName trims name and checks that 1 to 32 characters remain.
func NormalizeSeriesName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < 1 || n > codec.MaxSeriesNameLen {
		return "", &ValidationError{
			Field:  "series name",
			Value:  name,
			Reason: fmt.Sprintf("must be 1 to %d characters", codec.MaxSeriesNameLen),
		}
	}
	return trimmed, nil
}
