package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/indexlog/internal/errors"
)

// TimeParseError represents a time parsing error with helpful suggestions.
type TimeParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidTimestamp.
func (e *TimeParseError) Unwrap() error {
	return errors.ErrInvalidTimestamp
}

// NewTimeParseError creates a new time parse error with examples.
func NewTimeParseError(field, input, message string, examples ...string) *TimeParseError {
	return &TimeParseError{
		Input:    input,
		Field:    field,
		Message:  message,
		Examples: examples,
	}
}

// FormatWithExamples returns the error message with example suggestions.
func (e *TimeParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// TimestampExamples provides example timestamp formats.
var TimestampExamples = []string{
	"2024-03-05",
	"2024-03-05T09:00:00Z",
	"yesterday",
	"2 hours ago",
	"this week",
	"now",
}

// NewTimestampError creates a timestamp parse error with standard examples.
func NewTimestampError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "timestamp",
		Message:    "could not parse time",
		Examples:   TimestampExamples,
		Suggestion: "Try an ISO date like '2024-03-05', or natural language like '2 hours ago' or 'last week'.",
	}
}

// ToUserError converts a TimeParseError to a UserError for consistent handling.
func (e *TimeParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if len(e.Examples) > 0 && suggestion == "" {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}

	ue := errors.NewUserErrorWithField(e.Field, e.Input, e.Error(), suggestion)
	ue.Err = errors.ErrInvalidTimestamp
	return ue
}
