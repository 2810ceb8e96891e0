package history

import (
	"errors"
	"fmt"

	"github.com/manav03panchal/indexlog/internal/model"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrValidation matches every *ValidationError with errors.Is.
	ErrValidation = errors.New("invalid action")
)

// ValidationError reports a malformed Record call. The history is unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Op names the callback that failed.
type Op string

const (
	OpApply   Op = "apply"
	OpUnapply Op = "unapply"
)

// OperationError reports that an apply or unapply callback failed or
// panicked. The cursor did not move.
type OperationError struct {
	Op       Op
	ActionID string
	Kind     model.Kind
	Label    string
	Err      error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Kind, e.Label, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// IsApplyFailure reports whether err is a failed apply (redo).
func IsApplyFailure(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe) && oe.Op == OpApply
}

// IsUnapplyFailure reports whether err is a failed unapply (undo).
func IsUnapplyFailure(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe) && oe.Op == OpUnapply
}
