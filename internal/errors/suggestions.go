package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	// User input errors
	ErrNoStructure:       "Pass a baseline structure with --structure <file.yaml>.",
	ErrPillarNotFound:    "Check the pillar code against the loaded structure.",
	ErrCategoryNotFound:  "Check the category code against the loaded structure.",
	ErrIndicatorNotFound: "Check the indicator code against the loaded structure.",
	ErrDatasetNotFound:   "Check the dataset code against the loaded structure.",
	ErrDuplicateCode:     "Codes must be unique among entities of the same type.",
	ErrInvalidCode:       "Codes must start with a letter or number and contain only letters, numbers, dashes, underscores, or periods (max 32 chars).",
	ErrInvalidName:       "Names must be non-empty and at most 128 characters.",
	ErrInvalidScript:     "Each script step needs an 'op' such as add-indicator, set-name, undo, or redo.",
	ErrInvalidTimestamp:  "Try formats like '2 hours ago', 'yesterday', 'this week', or '2026-01-31 09:00'.",
	ErrInvalidFilter:     "Run 'indexlog changes --help' to see the accepted kinds and categories.",
	ErrExportNotFound:    "Use 'indexlog exports list' to see archived exports.",

	// System errors
	ErrScoringUnavailable: "The scoring endpoint did not accept the export. Try again later.",
	ErrNoScoringURL:       "Set INDEXLOG_SCORING_URL or pass --url.",
	ErrDiskFull:           "Free up disk space and try again.",
	ErrDatabaseLocked:     "Wait for the other indexlog process to finish, or set INDEXLOG_DATABASE=:memory:.",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// A UserError's own suggestion is more specific than the sentinel's
	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	return ""
}

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}
