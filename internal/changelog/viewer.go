package changelog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/model"
)

// Source provides the committed actions, oldest first.
// *history.History satisfies it.
type Source interface {
	Committed() []history.Action
}

// Viewer derives display and export projections from a Source.
// It holds no state of its own; every call reads the Source afresh.
type Viewer struct {
	src       Source
	now       func() time.Time
	loc       *time.Location
	newID     func() string
	structure string
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithClock sets the time source used for export timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *Viewer) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLocation sets the time zone used to format change times.
func WithLocation(loc *time.Location) Option {
	return func(v *Viewer) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// WithIDGenerator sets the function used to assign export document IDs.
func WithIDGenerator(newID func() string) Option {
	return func(v *Viewer) {
		if newID != nil {
			v.newID = newID
		}
	}
}

// WithStructureName labels export documents with the edited structure.
func WithStructureName(name string) Option {
	return func(v *Viewer) {
		v.structure = name
	}
}

// New creates a viewer over src.
func New(src Source, opts ...Option) *Viewer {
	v := &Viewer{
		src:   src,
		now:   time.Now,
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ListChanges returns the committed changes newest first, keeping those
// that match f. Order is the exact reverse of the source's order.
func (v *Viewer) ListChanges(f Filter) []DisplayChange {
	return v.ListChangesFunc(f.Match)
}

// ListChangesFunc is ListChanges with an arbitrary predicate.
// A nil predicate keeps everything.
func (v *Viewer) ListChangesFunc(keep func(DisplayChange) bool) []DisplayChange {
	committed := v.src.Committed()
	out := make([]DisplayChange, 0, len(committed))
	for i := len(committed) - 1; i >= 0; i-- {
		c := v.Describe(committed[i])
		if keep == nil || keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Describe derives the display projection of one action.
func (v *Viewer) Describe(a history.Action) DisplayChange {
	c := v.describe(a.ID, a.Kind, a.Label, a.Timestamp, a.Delta)

	if comp, ok := model.Resolve(a.Delta).(model.CompositeDelta); ok {
		c.Children = make([]DisplayChange, 0, len(comp.Steps))
		for i, s := range comp.Steps {
			id := a.ID + "/" + strconv.Itoa(i+1)
			c.Children = append(c.Children, v.describe(id, s.Kind, "", a.Timestamp, s.Delta))
		}
	}
	return c
}

func (v *Viewer) describe(id string, kind model.Kind, label string, ts time.Time, d model.Delta) DisplayChange {
	d = model.Resolve(d)
	ref, lines := project(d)
	return DisplayChange{
		ID:        id,
		Kind:      kind,
		Category:  CategoryOf(kind),
		TypeLabel: FormatKind(kind),
		Label:     label,
		Timestamp: ts,
		Time:      ts.In(v.loc).Format(TimeLayout),
		ItemRef:   ref,
		Details:   lines,
		DeltaType: model.TypeOf(d),
	}
}

// project derives the item reference and detail lines of d. A delta whose
// methods panic degrades to a single opaque detail line.
func project(d model.Delta) (ref string, lines []Detail) {
	defer func() {
		if r := recover(); r != nil {
			ref, lines = "", []Detail{{Field: "Delta", Value: fmt.Sprintf("%v", d)}}
		}
	}()
	return reference(d), details(d)
}

// ExportDocument wraps the committed actions, oldest first, with export
// metadata.
func (v *Viewer) ExportDocument() model.ExportDocument {
	committed := v.src.Committed()
	changes := make([]model.ExportedAction, 0, len(committed))
	for _, a := range committed {
		changes = append(changes, a.Export())
	}

	id := v.newID()
	return model.ExportDocument{
		Key:        model.ExportKey(id),
		ID:         id,
		Version:    model.ExportVersion,
		ExportedAt: v.now().UTC().Truncate(time.Millisecond),
		Structure:  v.structure,
		Count:      len(changes),
		Changes:    changes,
	}
}

// Summary counts committed changes per category.
type Summary struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
}

// Summary counts the committed changes per category.
func (v *Viewer) Summary() Summary {
	s := Summary{ByCategory: make(map[Category]int)}
	for _, a := range v.src.Committed() {
		s.Total++
		s.ByCategory[CategoryOf(a.Kind)]++
	}
	return s
}
