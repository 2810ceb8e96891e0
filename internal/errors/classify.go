package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Category represents the type of error for display and handling purposes.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser indicates an error the user can fix (bad input, missing args).
	CategoryUser
	// CategorySystem indicates a system-level error (disk full, unreadable file).
	CategorySystem
	// CategoryRecoverable indicates an error that may go away on retry.
	CategoryRecoverable
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategorySystem:
		return "system"
	case CategoryRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if IsUserError(err) {
		return CategoryUser
	}
	if errors.Is(err, ErrScoringUnavailable) || errors.Is(err, ErrDatabaseLocked) {
		return CategoryRecoverable
	}
	if IsSystemError(err) {
		return CategorySystem
	}
	return CategoryUnknown
}

// Chain returns the message of every error in err's chain, outermost first.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}

// RootCause returns the deepest wrapped error in the chain.
func RootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

// FormatDebugError formats an error with its chain, category, and
// suggestion for --debug output.
func FormatDebugError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	if chain := Chain(err); len(chain) > 1 {
		sb.WriteString("\nError chain:\n")
		for i, msg := range chain {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, msg))
		}
	}

	sb.WriteString(fmt.Sprintf("\nCategory: %s\n", Classify(err)))

	if suggestion := GetSuggestion(err); suggestion != "" {
		sb.WriteString(fmt.Sprintf("\nSuggestion: %s\n", suggestion))
	}
	return sb.String()
}
