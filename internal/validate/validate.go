// Package validate provides input validation helpers for indexlog.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/manav03panchal/indexlog/internal/errors"
)

const (
	// MaxCodeLength is the maximum length for an entity code.
	MaxCodeLength = 32
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
	// MaxNameLength is the maximum length for a display name.
	MaxNameLength = 128
	// MaxLabelLength is the maximum length for an action label.
	MaxLabelLength = 256
)

// codeRegex validates entity codes (letters, digits, dashes, underscores, periods).
var codeRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Code validates a pillar, category, indicator, or dataset code.
func Code(code string) error {
	if code == "" {
		return &errors.UserError{
			Message:    "Code cannot be empty",
			Suggestion: "Provide a code like 'GDP' or 'ECO_1'",
			Err:        errors.ErrInvalidCode,
		}
	}
	if len(code) > MaxCodeLength {
		return &errors.UserError{
			Message:    "Code too long",
			Suggestion: "Codes must be 32 characters or fewer",
			Field:      "code",
			Value:      code,
			Err:        errors.ErrInvalidCode,
		}
	}
	if !codeRegex.MatchString(code) {
		return &errors.UserError{
			Message:    "Invalid code format",
			Suggestion: "Codes must start with a letter or number and contain only letters, numbers, dashes, underscores, or periods",
			Field:      "code",
			Value:      code,
			Err:        errors.ErrInvalidCode,
		}
	}
	return nil
}

// Name validates a display name.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return &errors.UserError{
			Message:    "Name cannot be empty",
			Suggestion: "Provide a display name",
			Err:        errors.ErrInvalidName,
		}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &errors.UserError{
			Message:    "Name too long",
			Suggestion: "Names must be 128 characters or fewer",
			Field:      "name",
			Value:      name,
			Err:        errors.ErrInvalidName,
		}
	}
	return nil
}

// Label validates an action label.
func Label(label string) error {
	if err := NonEmpty("label", label); err != nil {
		return err
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return errors.NewUserError(
			"Label too long",
			"Labels must be 256 characters or fewer")
	}
	return nil
}

// Weight validates an indicator weight.
func Weight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return errors.NewUserErrorWithField("weight", fmt.Sprint(w),
			"Invalid weight",
			"Weights must be finite and not negative")
	}
	return nil
}

// URL validates a URL for use as a scoring endpoint.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// or http://")
	}

	if parsed.Hostname() == "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://scoring.example.com/jobs")
	}

	return nil
}

// NonEmpty validates that a string is not empty.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewUserError(
			field+" cannot be empty",
			"Provide a value for "+field)
	}
	return nil
}

// InRange validates that an integer is within a range.
func InRange(field string, value, min, max int) error {
	if value < min || value > max {
		return errors.NewUserErrorWithField(field, fmt.Sprint(value),
			"Value out of range",
			fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return nil
}
