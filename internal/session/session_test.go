package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/structure"
)

func baseline() *structure.Structure {
	return &structure.Structure{
		Name: "Baseline",
		Pillars: []*structure.Pillar{
			{Code: "ECO", Name: "Economy", Categories: []*structure.Category{
				{Code: "GRW", Name: "Growth", Indicators: []*structure.Indicator{
					{Code: "GDP", Name: "Gross Domestic Product", Weight: 1},
				}},
			}},
		},
	}
}

func newTestSession(t *testing.T, capacity int) (*Session, *notify.Recorder) {
	t.Helper()
	seq := 0
	rec := notify.NewRecorder()
	s := New(baseline(), Options{
		Capacity:       capacity,
		Notifier:       rec,
		NotifyDuration: 2 * time.Second,
		Clock:          func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) },
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("act-%03d", seq)
		},
		Location: time.UTC,
		Logger:   logging.Discard(),
	})
	return s, rec
}

func addIndicator(t *testing.T, s *Session, code string) {
	t.Helper()
	_, err := s.Editor().AddIndicator("GRW", structure.Indicator{Code: code, Name: "Indicator " + code}, -1)
	require.NoError(t, err)
}

func TestNewSession(t *testing.T) {
	s, _ := newTestSession(t, 0)

	assert.Len(t, s.ID(), 8)
	assert.Equal(t, s.ID(), logging.SessionIDFromContext(s.Context()))
	assert.Equal(t, -1, s.History().Cursor())
	assert.Equal(t, history.DefaultCapacity, s.History().Capacity())
	assert.Equal(t, s.Structure(), s.Baseline())
	assert.NotSame(t, s.Structure(), s.Baseline())
}

func TestUndoRedoNotify(t *testing.T) {
	s, rec := newTestSession(t, 10)
	addIndicator(t, s, "POP")

	ok, err := s.Undo()
	require.NoError(t, err)
	assert.True(t, ok)

	last, _ := rec.Last()
	assert.Equal(t, "Undone: Add indicator Indicator POP", last.Message)
	assert.Equal(t, notify.SeveritySuccess, last.Severity)
	assert.Equal(t, 2*time.Second, last.Duration)

	ok, err = s.Redo()
	require.NoError(t, err)
	assert.True(t, ok)
	last, _ = rec.Last()
	assert.Equal(t, "Redone: Add indicator Indicator POP", last.Message)
}

func TestNothingToUndoNotifiesInfo(t *testing.T) {
	s, rec := newTestSession(t, 10)

	ok, err := s.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Redo()
	require.NoError(t, err)
	assert.False(t, ok)

	notices := rec.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, notify.Notice{Message: "Nothing to undo", Severity: notify.SeverityInfo, Duration: 2 * time.Second, At: notices[0].At}, notices[0])
	assert.Equal(t, "Nothing to redo", notices[1].Message)
}

func TestUndoFailureNotifiesError(t *testing.T) {
	s, rec := newTestSession(t, 10)
	addIndicator(t, s, "POP")

	// remove the indicator behind the editor's back
	grw := s.Structure().Pillars[0].Categories[0]
	grw.Indicators = grw.Indicators[:1]

	ok, err := s.Undo()
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, history.IsUnapplyFailure(err))
	assert.Equal(t, 0, s.History().Cursor())

	last, _ := rec.Last()
	assert.Equal(t, notify.SeverityError, last.Severity)
	assert.Contains(t, last.Message, "Undo failed")
}

func TestSetNotifier(t *testing.T) {
	s, rec := newTestSession(t, 10)
	other := notify.NewRecorder()

	s.SetNotifier(other)
	_, _ = s.Undo()
	assert.Empty(t, rec.Notices())
	assert.Len(t, other.Notices(), 1)

	s.SetNotifier(nil)
	assert.NotPanics(t, func() { _, _ = s.Undo() })
}

func TestReplay(t *testing.T) {
	s, _ := newTestSession(t, 10)
	script := &structure.Script{Steps: []structure.Step{
		{Op: "add-indicator", Parent: "GRW", Code: "POP", Name: "Population"},
		{Op: "add-indicator", Parent: "GRW", Code: "INF", Name: "Inflation"},
		{Op: structure.OpUndo},
		{Op: "set-name", Entity: "indicator", Code: "GDP", Name: "GDP"},
		{Op: structure.OpRedo},
	}}

	require.NoError(t, s.Replay(script))

	changes := s.Viewer().ListChanges(changelog.Filter{})
	require.Len(t, changes, 2)
	assert.Equal(t, model.KindSetName, changes[0].Kind)
	assert.Equal(t, model.KindAddIndicator, changes[1].Kind)

	inf, _, _ := s.Structure().Indicator("INF")
	assert.Nil(t, inf)
}

func TestReplayStopsAtFailingStep(t *testing.T) {
	s, _ := newTestSession(t, 10)
	script := &structure.Script{Steps: []structure.Step{
		{Op: "add-indicator", Parent: "GRW", Code: "POP", Name: "Population"},
		{Op: "remove-indicator", Code: "NOPE"},
		{Op: "add-indicator", Parent: "GRW", Code: "INF", Name: "Inflation"},
	}}

	err := s.Replay(script)
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 2, stepErr.Step)
	assert.Equal(t, "remove-indicator", stepErr.Op)
	assert.ErrorIs(t, err, errors.ErrIndicatorNotFound)
	assert.Equal(t, 1, s.History().Len())
}

func TestReplayNil(t *testing.T) {
	s, _ := newTestSession(t, 10)
	assert.NoError(t, s.Replay(nil))
}

func TestSubscribe(t *testing.T) {
	s, _ := newTestSession(t, 10)
	var events []history.EventType
	unsubscribe := s.Subscribe(func(ev history.ChangeEvent) {
		events = append(events, ev.Type)
	})

	addIndicator(t, s, "POP")
	_, _ = s.Undo()
	_, _ = s.Undo()
	_, _ = s.Redo()
	unsubscribe()
	addIndicator(t, s, "INF")

	assert.Equal(t, []history.EventType{history.EventRecorded, history.EventUndone, history.EventRedone}, events)
}

func TestStatus(t *testing.T) {
	s, _ := newTestSession(t, 10)
	addIndicator(t, s, "POP")
	addIndicator(t, s, "INF")
	_, _ = s.Undo()

	st := s.Status()
	assert.Equal(t, s.ID(), st.SessionID)
	assert.Equal(t, "Baseline", st.Structure)
	assert.Equal(t, 0, st.Cursor)
	assert.Equal(t, 2, st.Len)
	assert.Equal(t, 10, st.Capacity)
	assert.Equal(t, 1, st.Committed)
	assert.Equal(t, 1, st.Redoable)
	assert.True(t, st.CanUndo)
	assert.True(t, st.CanRedo)
	assert.Equal(t, "Add indicator Indicator POP", st.NextUndo)
	assert.Equal(t, "Add indicator Indicator INF", st.NextRedo)
	assert.Equal(t, 2, st.Stats.Indicators)
	assert.Equal(t, 1, st.Baseline.Indicators)
	assert.Equal(t, 1, st.Changes.Total)
}

func TestScenarioCapacityTwo(t *testing.T) {
	s, _ := newTestSession(t, 2)
	addIndicator(t, s, "A")
	addIndicator(t, s, "B")
	addIndicator(t, s, "C")

	_, err := s.Undo()
	require.NoError(t, err)
	addIndicator(t, s, "D")

	doc := s.Viewer().ExportDocument()
	require.Len(t, doc.Changes, 2)
	assert.Equal(t, "B", doc.Changes[0].Delta.(model.IndicatorDelta).Code)
	assert.Equal(t, "D", doc.Changes[1].Delta.(model.IndicatorDelta).Code)
	assert.Equal(t, "Baseline", doc.Structure)

	grw := s.Structure().Pillars[0].Categories[0]
	var codes []string
	for _, ind := range grw.Indicators {
		codes = append(codes, ind.Code)
	}
	assert.Equal(t, []string{"GDP", "A", "B", "D"}, codes)
}
