package history

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/model"
)

// DefaultCapacity is used when no positive capacity is configured.
const DefaultCapacity = 100

// History manages the recorded actions and the undo/redo cursor for one
// editing session.
type History struct {
	records []*Action

	// cursor is the index of the last applied action; -1 means pristine
	cursor int

	// Configuration
	capacity int
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger

	subscribers []subscriber
	nextSubID   int
}

// Option configures a History.
type Option func(*History)

// WithCapacity sets the maximum number of retained actions.
// Values <= 0 select DefaultCapacity.
func WithCapacity(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// WithClock sets the time source used for action timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}

// WithIDGenerator sets the function used to assign action IDs.
// Generated IDs must be unique for the lifetime of the History.
func WithIDGenerator(newID func() string) Option {
	return func(h *History) {
		if newID != nil {
			h.newID = newID
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates an empty history with the cursor at the pristine baseline.
func New(opts ...Option) *History {
	h := &History{
		cursor:   -1,
		capacity: DefaultCapacity,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logging.Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record logs an edit the caller has already applied to its document.
// Record does not run apply. Any redoable actions are discarded, the new
// action becomes the cursor, and the oldest actions are evicted if capacity
// is exceeded. A missing kind, label, apply, or unapply returns a
// *ValidationError and leaves the history unchanged.
func (h *History) Record(kind model.Kind, label string, delta model.Delta, apply, unapply func() error) (Action, error) {
	switch {
	case strings.TrimSpace(string(kind)) == "":
		return Action{}, &ValidationError{Field: "kind", Message: "must not be empty"}
	case strings.TrimSpace(label) == "":
		return Action{}, &ValidationError{Field: "label", Message: "must not be empty"}
	case apply == nil:
		return Action{}, &ValidationError{Field: "apply", Message: "must not be nil"}
	case unapply == nil:
		return Action{}, &ValidationError{Field: "unapply", Message: "must not be nil"}
	}

	a := &Action{
		ID:        h.newID(),
		Timestamp: h.now().Truncate(time.Millisecond),
		Kind:      kind,
		Label:     label,
		Delta:     delta,
		apply:     apply,
		unapply:   unapply,
	}

	truncated := h.truncateRedo()
	h.records = append(h.records, a)
	h.cursor = len(h.records) - 1
	evicted := h.evict()

	h.logger.Debug("recorded action",
		logging.KeyActionID, a.ID,
		logging.KeyKind, string(a.Kind),
		logging.KeyCursor, h.cursor,
		logging.KeyLen, len(h.records),
		logging.KeyTruncated, truncated,
		logging.KeyEvicted, evicted,
	)

	h.publish(ChangeEvent{Type: EventRecorded, Action: *a, Evicted: evicted})
	return *a, nil
}

// truncateRedo drops every action after the cursor and returns how many
// were dropped.
func (h *History) truncateRedo() int {
	tail := len(h.records) - (h.cursor + 1)
	if tail <= 0 {
		return 0
	}
	for i := h.cursor + 1; i < len(h.records); i++ {
		h.records[i] = nil
	}
	h.records = h.records[:h.cursor+1]
	return tail
}

// evict removes the oldest actions until the list fits capacity and shifts
// the cursor down by the number removed.
func (h *History) evict() int {
	excess := len(h.records) - h.capacity
	if excess <= 0 {
		return 0
	}
	for i := 0; i < excess; i++ {
		h.records[i] = nil
	}
	h.records = h.records[excess:]
	h.cursor -= excess
	if h.cursor < -1 {
		h.cursor = -1
	}
	return excess
}

// Undo reverts the action at the cursor.
// It returns false with a nil error when there is nothing to undo. If
// unapply fails or panics it returns false with an *OperationError and the
// cursor does not move.
func (h *History) Undo() (bool, error) {
	if !h.CanUndo() {
		return false, nil
	}

	a := h.records[h.cursor]
	if err := invoke(a.unapply); err != nil {
		h.logger.Warn("unapply failed",
			logging.KeyActionID, a.ID,
			logging.KeyKind, string(a.Kind),
			logging.KeyError, err,
		)
		return false, &OperationError{Op: OpUnapply, ActionID: a.ID, Kind: a.Kind, Label: a.Label, Err: err}
	}

	h.cursor--
	h.logger.Debug("undid action", logging.KeyActionID, a.ID, logging.KeyCursor, h.cursor)
	h.publish(ChangeEvent{Type: EventUndone, Action: *a})
	return true, nil
}

// Redo re-applies the action after the cursor.
// It returns false with a nil error when there is nothing to redo. If apply
// fails or panics it returns false with an *OperationError and the cursor
// does not move.
func (h *History) Redo() (bool, error) {
	if !h.CanRedo() {
		return false, nil
	}

	a := h.records[h.cursor+1]
	if err := invoke(a.apply); err != nil {
		h.logger.Warn("apply failed",
			logging.KeyActionID, a.ID,
			logging.KeyKind, string(a.Kind),
			logging.KeyError, err,
		)
		return false, &OperationError{Op: OpApply, ActionID: a.ID, Kind: a.Kind, Label: a.Label, Err: err}
	}

	h.cursor++
	h.logger.Debug("redid action", logging.KeyActionID, a.ID, logging.KeyCursor, h.cursor)
	h.publish(ChangeEvent{Type: EventRedone, Action: *a})
	return true, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.cursor >= 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.records)-1
}

// Clear removes all actions and resets the cursor.
// The caller's document is not touched.
func (h *History) Clear() {
	for i := range h.records {
		h.records[i] = nil
	}
	h.records = nil
	h.cursor = -1
	h.logger.Debug("cleared history")
	h.publish(ChangeEvent{Type: EventCleared})
}

// Committed returns the applied actions in chronological order.
// This is the net change set from the baseline.
func (h *History) Committed() []Action {
	out := make([]Action, 0, h.cursor+1)
	for _, a := range h.records[:h.cursor+1] {
		out = append(out, *a)
	}
	return out
}

// Redoable returns the undone actions that Redo can re-apply, in
// chronological order.
func (h *History) Redoable() []Action {
	out := make([]Action, 0, len(h.records)-h.cursor-1)
	for _, a := range h.records[h.cursor+1:] {
		out = append(out, *a)
	}
	return out
}

// ExportLog returns the committed actions without their callbacks, oldest
// first.
func (h *History) ExportLog() []model.ExportedAction {
	out := make([]model.ExportedAction, 0, h.cursor+1)
	for _, a := range h.records[:h.cursor+1] {
		out = append(out, a.Export())
	}
	return out
}

// PeekUndo returns the action Undo would revert.
func (h *History) PeekUndo() (Action, bool) {
	if !h.CanUndo() {
		return Action{}, false
	}
	return *h.records[h.cursor], true
}

// PeekRedo returns the action Redo would re-apply.
func (h *History) PeekRedo() (Action, bool) {
	if !h.CanRedo() {
		return Action{}, false
	}
	return *h.records[h.cursor+1], true
}

// Len returns the number of retained actions, committed and redoable.
func (h *History) Len() int {
	return len(h.records)
}

// Cursor returns the index of the last applied action, or -1.
func (h *History) Cursor() int {
	return h.cursor
}

// Capacity returns the maximum number of retained actions.
func (h *History) Capacity() int {
	return h.capacity
}
