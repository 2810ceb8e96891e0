package runtime

import (
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/parser"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitUserError   = 1
	ExitSystemError = 2
)

// GetSuggestion returns a suggestion for an error, if available.
func GetSuggestion(err error) string {
	var tpe *parser.TimeParseError
	if errors.As(err, &tpe) {
		return tpe.ToUserError().Suggestion
	}
	return errors.GetSuggestion(err)
}

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}

// ExitCode maps an error to the process exit code. Input the user can fix
// exits 1; storage and network failures exit 2.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var se *errors.SystemError
	if errors.As(err, &se) {
		return ExitSystemError
	}
	return ExitUserError
}

// IsDiskFullError checks if an error indicates a disk full condition.
func IsDiskFullError(err error) bool {
	return errors.Is(err, errors.ErrDiskFull)
}
