// Package session ties a structure, its editor, the edit history, and the
// change log viewer into one editing session.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/config"
	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/structure"
)

// Options configures a Session. Zero values take defaults from
// config.Global.
type Options struct {
	Capacity       int
	Notifier       notify.Notifier
	NotifyDuration time.Duration
	Clock          func() time.Time
	IDGenerator    func() string
	Location       *time.Location
	Logger         *slog.Logger
}

// Session is one editing session over a structure.
type Session struct {
	ctx      context.Context
	baseline *structure.Structure
	doc      *structure.Structure
	history  *history.History
	editor   *structure.Editor
	viewer   *changelog.Viewer
	notifier notify.Notifier
	duration time.Duration
	log      *logging.ContextLogger
}

// New starts a session over doc. The structure as passed is kept as the
// baseline; edits are made to doc itself.
func New(doc *structure.Structure, opts Options) *Session {
	if opts.Capacity <= 0 {
		opts.Capacity = config.Global.History.Capacity
	}
	if opts.NotifyDuration <= 0 {
		opts.NotifyDuration = config.Global.Notify.Duration
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logging.Logger()
	}

	ctx := logging.NewSessionContext()
	log := logging.NewContextLogger(ctx, opts.Logger)

	h := history.New(
		history.WithCapacity(opts.Capacity),
		history.WithClock(opts.Clock),
		history.WithIDGenerator(opts.IDGenerator),
		history.WithLogger(log.Slog()),
	)

	viewerOpts := []changelog.Option{
		changelog.WithClock(opts.Clock),
		changelog.WithLocation(opts.Location),
		changelog.WithStructureName(doc.Name),
	}

	s := &Session{
		ctx:      ctx,
		baseline: doc.Clone(),
		doc:      doc,
		history:  h,
		editor:   structure.NewEditor(doc, h, structure.WithEditorLogger(log.Slog())),
		viewer:   changelog.New(h, viewerOpts...),
		notifier: opts.Notifier,
		duration: opts.NotifyDuration,
		log:      log,
	}
	log.Debug("session started", "structure", doc.Name, "capacity", opts.Capacity)
	return s
}

// ID returns the session ID used in logs.
func (s *Session) ID() string { return s.log.SessionID() }

// Context returns a context carrying the session ID.
func (s *Session) Context() context.Context { return s.ctx }

// Structure returns the document being edited.
func (s *Session) Structure() *structure.Structure { return s.doc }

// Baseline returns the structure as it was when the session started.
func (s *Session) Baseline() *structure.Structure { return s.baseline }

// History returns the session's edit history.
func (s *Session) History() *history.History { return s.history }

// Editor returns the session's editor.
func (s *Session) Editor() *structure.Editor { return s.editor }

// Viewer returns the change log viewer over the session's history.
func (s *Session) Viewer() *changelog.Viewer { return s.viewer }

// SetNotifier replaces the notification sink. nil discards notifications.
func (s *Session) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Discard
	}
	s.notifier = n
}

// Undo reverts the most recent committed edit and reports the outcome
// through the notifier.
func (s *Session) Undo() (bool, error) {
	a, _ := s.history.PeekUndo()
	ok, err := s.history.Undo()
	return s.report("Undo", "Undone", "Nothing to undo", a, ok, err)
}

// Redo re-applies the next redoable edit and reports the outcome through
// the notifier.
func (s *Session) Redo() (bool, error) {
	a, _ := s.history.PeekRedo()
	ok, err := s.history.Redo()
	return s.report("Redo", "Redone", "Nothing to redo", a, ok, err)
}

func (s *Session) report(op, done, nothing string, a history.Action, ok bool, err error) (bool, error) {
	switch {
	case err != nil:
		s.log.Warn(op+" failed", logging.KeyActionID, a.ID, logging.KeyError, err)
		s.notifier.Notify(fmt.Sprintf("%s failed: %v", op, err), notify.SeverityError, s.duration)
	case !ok:
		s.notifier.Notify(nothing, notify.SeverityInfo, s.duration)
	default:
		s.log.Debug(done, logging.KeyActionID, a.ID, logging.KeyCursor, s.history.Cursor())
		s.notifier.Notify(done+": "+a.Label, notify.SeveritySuccess, s.duration)
	}
	return ok, err
}

// Subscribe registers fn for history change events.
func (s *Session) Subscribe(fn func(history.ChangeEvent)) (unsubscribe func()) {
	return s.history.Subscribe(fn)
}

// Replay runs the steps of script in order: edits through the editor, undo
// and redo through the session. It stops at the first failing step.
func (s *Session) Replay(script *structure.Script) error {
	if script == nil {
		return nil
	}
	for i, st := range script.Steps {
		var err error
		switch st.Op {
		case structure.OpUndo:
			_, err = s.Undo()
		case structure.OpRedo:
			_, err = s.Redo()
		default:
			_, err = s.editor.Apply(st)
		}
		if err != nil {
			s.log.Warn("replay stopped", logging.KeyOperation, st.Op, "step", i+1, logging.KeyError, err)
			return &StepError{Step: i + 1, Op: st.Op, Err: err}
		}
	}
	s.log.Debug("replay finished", logging.KeyCount, len(script.Steps), logging.KeyCursor, s.history.Cursor())
	return nil
}

// StepError reports which script step failed.
type StepError struct {
	Step int
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Status summarizes the session.
type Status struct {
	SessionID string            `json:"session_id"`
	Structure string            `json:"structure"`
	Cursor    int               `json:"cursor"`
	Len       int               `json:"len"`
	Capacity  int               `json:"capacity"`
	Committed int               `json:"committed"`
	Redoable  int               `json:"redoable"`
	CanUndo   bool              `json:"can_undo"`
	CanRedo   bool              `json:"can_redo"`
	NextUndo  string            `json:"next_undo,omitempty"`
	NextRedo  string            `json:"next_redo,omitempty"`
	Stats     structure.Stats   `json:"stats"`
	Baseline  structure.Stats   `json:"baseline"`
	Changes   changelog.Summary `json:"changes"`
}

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	st := Status{
		SessionID: s.ID(),
		Structure: s.doc.Name,
		Cursor:    s.history.Cursor(),
		Len:       s.history.Len(),
		Capacity:  s.history.Capacity(),
		Committed: s.history.Cursor() + 1,
		Redoable:  s.history.Len() - s.history.Cursor() - 1,
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
		Stats:     s.doc.Stats(),
		Baseline:  s.baseline.Stats(),
		Changes:   s.viewer.Summary(),
	}
	if a, ok := s.history.PeekUndo(); ok {
		st.NextUndo = a.Label
	}
	if a, ok := s.history.PeekRedo(); ok {
		st.NextRedo = a.Label
	}
	return st
}
