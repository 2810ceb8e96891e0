package changelog

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/model"
)

// staticSource serves a fixed list of actions.
type staticSource []history.Action

func (s staticSource) Committed() []history.Action {
	return append([]history.Action(nil), s...)
}

var base = time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)

func action(i int, kind model.Kind, label string, d model.Delta) history.Action {
	return history.Action{
		ID:        fmt.Sprintf("act-%03d", i),
		Timestamp: base.Add(time.Duration(i) * time.Minute),
		Kind:      kind,
		Label:     label,
		Delta:     d,
	}
}

func newTestViewer(src Source) *Viewer {
	return New(src,
		WithLocation(time.UTC),
		WithClock(func() time.Time { return base.Add(time.Hour) }),
		WithIDGenerator(func() string { return "export-1" }),
		WithStructureName("baseline"),
	)
}

func ids(changes []DisplayChange) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.ID
	}
	return out
}

func sampleSource() staticSource {
	return staticSource{
		action(1, model.KindAddIndicator, "Add GDP", model.IndicatorDelta{
			Code: "GDP", Name: "Gross Domestic Product", CategoryCode: "ECO", CategoryName: "Economy",
		}),
		action(2, model.KindRemoveCategory, "Remove Health", model.CategoryDelta{Code: "HLT", Name: "Health"}),
		action(3, model.KindMoveIndicator, "Move LIT", model.MoveDelta{
			Entity: model.EntityIndicator, Code: "LIT", Name: "Literacy",
			FromParent: "EDU", ToParent: "SOC", FromIndex: 0, ToIndex: 2,
		}),
		action(4, model.KindSetName, "Rename GDP", model.RenameDelta{
			Entity: model.EntityIndicator, Code: "GDP", Before: "Gross Domestic Product", After: "GDP per capita",
		}),
	}
}

// =============================================================================
// ListChanges Tests
// =============================================================================

func TestListChangesNewestFirst(t *testing.T) {
	v := newTestViewer(sampleSource())

	changes := v.ListChanges(Filter{})
	assert.Equal(t, []string{"act-004", "act-003", "act-002", "act-001"}, ids(changes))
}

func TestListChangesEmpty(t *testing.T) {
	v := newTestViewer(staticSource{})
	changes := v.ListChanges(Filter{})
	assert.NotNil(t, changes)
	assert.Empty(t, changes)
}

func TestListChangesFollowsHistory(t *testing.T) {
	h := history.New(history.WithLogger(logging.Discard()))
	v := newTestViewer(h)

	noop := func() error { return nil }
	for _, code := range []string{"A", "B", "C"} {
		_, err := h.Record(model.KindAddIndicator, "Add "+code, model.IndicatorDelta{Code: code}, noop, noop)
		require.NoError(t, err)
	}
	_, err := h.Undo()
	require.NoError(t, err)

	changes := v.ListChanges(Filter{})
	require.Len(t, changes, 2)
	assert.Equal(t, "B", changes[0].ItemRef)
	assert.Equal(t, "A", changes[1].ItemRef)
}

func TestListChangesFilterIsSubset(t *testing.T) {
	v := newTestViewer(sampleSource())

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"by kind", Filter{Kinds: []model.Kind{model.KindAddIndicator, model.KindSetName}}, []string{"act-004", "act-001"}},
		{"by category", Filter{Categories: []Category{CategoryRemove}}, []string{"act-002"}},
		{"by delta type", Filter{DeltaTypes: []string{model.DeltaTypeMove}}, []string{"act-003"}},
		{"by text in label", Filter{Text: "health"}, []string{"act-002"}},
		{"by text in details", Filter{Text: "gross domestic"}, []string{"act-004", "act-001"}},
		{"since", Filter{Since: base.Add(3 * time.Minute)}, []string{"act-004", "act-003"}},
		{"until", Filter{Until: base.Add(2 * time.Minute)}, []string{"act-002", "act-001"}},
		{"no match", Filter{Text: "nothing like this"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(v.ListChanges(tt.filter)))
		})
	}
}

func TestListChangesFuncNilKeepsAll(t *testing.T) {
	v := newTestViewer(sampleSource())
	assert.Len(t, v.ListChangesFunc(nil), 4)
}

func TestListChangesDeterministic(t *testing.T) {
	v := newTestViewer(sampleSource())
	f := Filter{Categories: []Category{CategoryAdd, CategoryUpdate, CategoryMove}}
	assert.Equal(t, v.ListChanges(f), v.ListChanges(f))
}

func TestFilterIsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.True(t, Filter{Text: "  "}.IsZero())
	assert.False(t, Filter{Text: "x"}.IsZero())
	assert.False(t, Filter{Since: base}.IsZero())
}

// =============================================================================
// Describe Tests
// =============================================================================

func TestDescribe(t *testing.T) {
	v := newTestViewer(nil)

	c := v.Describe(action(1, model.KindAddIndicator, "Add GDP", model.IndicatorDelta{
		Code: "GDP", Name: "Gross Domestic Product", CategoryCode: "ECO", CategoryName: "Economy", Index: 2,
	}))

	assert.Equal(t, "act-001", c.ID)
	assert.Equal(t, CategoryAdd, c.Category)
	assert.Equal(t, "Add Indicator", c.TypeLabel)
	assert.Equal(t, "2024-03-05 09:08", c.Time)
	assert.Equal(t, "Gross Domestic Product (GDP)", c.ItemRef)
	assert.Equal(t, model.DeltaTypeIndicator, c.DeltaType)
	assert.Contains(t, c.Details, Detail{"Category", "Economy (ECO)"})
	assert.Contains(t, c.Details, Detail{"Position", "#3"})
	assert.Contains(t, c.Details, Detail{"Datasets", "(none)"})
	assert.False(t, c.IsComposite())
}

func TestDescribeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	v := New(staticSource{}, WithLocation(loc))

	c := v.Describe(action(0, model.KindAddPillar, "", model.PillarDelta{Code: "P"}))
	assert.Equal(t, "2024-03-05 11:07", c.Time)
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		kind model.Kind
		want Category
	}{
		{model.KindAddIndicator, CategoryAdd},
		{model.KindRemoveDataset, CategoryRemove},
		{model.KindMoveCategory, CategoryMove},
		{model.KindSetWeight, CategoryUpdate},
		{model.KindCreateCategory, CategoryCreate},
		{model.KindComposite, CategoryOther},
		{"reticulate-splines", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.kind))
		})
	}
}

func TestFormatKind(t *testing.T) {
	assert.Equal(t, "Add Indicator", FormatKind(model.KindAddIndicator))
	assert.Equal(t, "Set Weight", FormatKind("set_weight"))
	assert.Equal(t, "Create Category", FormatKind("CREATE-category"))
	assert.Equal(t, "Composite", FormatKind(model.KindComposite))
	assert.Equal(t, "Unknown", FormatKind(""))
}

func TestFormatRef(t *testing.T) {
	assert.Equal(t, "", FormatRef("Name Only", ""))
	assert.Equal(t, "GDP", FormatRef("", "GDP"))
	assert.Equal(t, "Gross Domestic Product (GDP)", FormatRef("Gross Domestic Product", "GDP"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "(none)", FormatValue(nil))
	assert.Equal(t, "(none)", FormatValue(""))
	assert.Equal(t, "(none)", FormatValue([]string{}))
	assert.Equal(t, "a, b", FormatValue([]string{"a", "b"}))
	assert.Equal(t, "0.25", FormatValue(0.25))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, `{"a":1}`, FormatValue(map[string]any{"a": 1}))
	assert.Equal(t, `[1,"x"]`, FormatValue([]any{1, "x"}))
	assert.Equal(t, "(none)", FormatValue((*time.Time)(nil)))
	assert.Equal(t, "(none)", FormatValue(map[string]any(nil)))
	assert.Equal(t, "2024-03-05 09:07:00 +0000 UTC", FormatValue(base))
}

func TestReferenceByDeltaType(t *testing.T) {
	tests := []struct {
		name  string
		delta model.Delta
		want  string
	}{
		{"nil", nil, ""},
		{"category", model.CategoryDelta{Code: "ECO", Name: "Economy"}, "Economy (ECO)"},
		{"pillar code only", model.PillarDelta{Code: "P1"}, "P1"},
		{"dataset", model.DatasetDelta{Code: "WB1", Name: "World Bank"}, "World Bank (WB1)"},
		{"rename uses new name", model.RenameDelta{Code: "GDP", Before: "Old", After: "New"}, "New (GDP)"},
		{"rename falls back to old name", model.RenameDelta{Code: "GDP", Before: "Old"}, "Old (GDP)"},
		{"weight", model.WeightDelta{Code: "GDP", Name: "GDP", Before: 1, After: 2}, "GDP (GDP)"},
		{"raw most specific code", model.RawDelta{"code": "X", "indicator_code": "IND", "name": "Thing"}, "Thing (IND)"},
		{"raw name fallback", model.RawDelta{"id": "R1", "title": "Titled"}, "Titled (R1)"},
		{"raw without code", model.RawDelta{"name": "Nameless"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reference(tt.delta))
		})
	}
}

// =============================================================================
// Composite Tests
// =============================================================================

func compositeAction() history.Action {
	return action(5, model.KindCreateCategory, "Create Education", model.CompositeDelta{
		ParentCode: "EDU",
		ParentName: "Education",
		Steps: []model.Step{
			{Kind: model.KindAddCategory, Delta: model.CategoryDelta{Code: "EDU", Name: "Education"}},
			{Kind: model.KindMoveIndicator, Delta: model.MoveDelta{Entity: model.EntityIndicator, Code: "LIT", Name: "Literacy", ToParent: "EDU"}},
			{Kind: model.KindMoveIndicator, Delta: model.MoveDelta{Entity: model.EntityIndicator, Code: "ENR", Name: "Enrolment", ToParent: "EDU"}},
		},
	})
}

func TestCompositeIsSingleEntry(t *testing.T) {
	src := append(sampleSource(), compositeAction())
	v := newTestViewer(src)

	changes := v.ListChanges(Filter{})
	require.Len(t, changes, 5)

	c := changes[0]
	assert.Equal(t, "act-005", c.ID)
	assert.True(t, c.IsComposite())
	assert.Equal(t, CategoryCreate, c.Category)
	assert.Equal(t, "Education (EDU)", c.ItemRef)
	require.Len(t, c.Children, 3)
	assert.Equal(t, "act-005/2", c.Children[1].ID)
	assert.Equal(t, "Literacy (LIT)", c.Children[1].ItemRef)
	assert.Equal(t, CategoryMove, c.Children[1].Category)
	assert.Contains(t, c.Details, Detail{"Steps", "3"})
}

func TestCompositeTextSearchMatchesChildren(t *testing.T) {
	v := newTestViewer(staticSource{compositeAction()})
	assert.Len(t, v.ListChanges(Filter{Text: "enrolment"}), 1)
	assert.Empty(t, v.ListChanges(Filter{Kinds: []model.Kind{model.KindMoveIndicator}}))
}

func TestCompositeReferenceAppendsParent(t *testing.T) {
	d := model.CompositeDelta{
		ParentCode: "ECO",
		ParentName: "Economy",
		Steps: []model.Step{
			{Kind: model.KindAddIndicator, Delta: model.IndicatorDelta{Code: "GDP", Name: "GDP"}},
		},
	}
	assert.Equal(t, "GDP (GDP) in Economy", reference(d))

	d.ParentName = ""
	assert.Equal(t, "GDP (GDP) in ECO", reference(d))
}

func TestCompositeReferenceRawParent(t *testing.T) {
	d := model.CompositeDelta{
		Steps: []model.Step{
			{Kind: "custom", Delta: model.RawDelta{"code": "X1", "category_name": "Misc"}},
		},
	}
	assert.Equal(t, "X1 in Misc", reference(d))
}

func TestCompositeReferenceWithoutSteps(t *testing.T) {
	assert.Equal(t, "Economy (ECO)", reference(model.CompositeDelta{ParentCode: "ECO", ParentName: "Economy"}))
	assert.Equal(t, "", reference(model.CompositeDelta{}))
}

// =============================================================================
// Malformed Delta Tests
// =============================================================================

type strangeDelta struct {
	Payload map[string]any `json:"payload"`
}

func (strangeDelta) DeltaType() string { return "strange" }

// explodingDelta panics when asked for its type or its JSON form.
type explodingDelta struct{}

func (*explodingDelta) DeltaType() string            { panic("no type") }
func (*explodingDelta) MarshalJSON() ([]byte, error) { panic("no json") }

func TestMalformedDeltasDoNotPanic(t *testing.T) {
	v := newTestViewer(nil)

	deltas := []model.Delta{
		nil,
		model.RawDelta{},
		model.RawDelta{"value": nil, "nested": map[string]any{"a": []any{1, 2}}},
		model.DecodeDelta(model.KindAddIndicator, []byte(`{"code": 42}`)),
		model.DecodeDelta(model.KindComposite, []byte(`{"steps": "oops"}`)),
		model.CompositeDelta{Steps: []model.Step{{}}},
		strangeDelta{Payload: map[string]any{"k": "v"}},
		(*model.IndicatorDelta)(nil),
		(*model.CompositeDelta)(nil),
		model.RawDelta{"when": (*time.Time)(nil), "at": &base},
		model.CompositeDelta{Steps: []model.Step{{Kind: model.KindAddIndicator, Delta: (*model.IndicatorDelta)(nil)}}},
		&explodingDelta{},
	}

	for i, d := range deltas {
		t.Run(fmt.Sprintf("delta-%d", i), func(t *testing.T) {
			assert.NotPanics(t, func() {
				v.Describe(action(i, model.KindAddIndicator, "", d))
				v.Describe(action(i, "weird-kind", "", d))
			})
		})
	}
}

func TestTypedNilDeltaFromHistory(t *testing.T) {
	h := history.New(history.WithLogger(logging.Discard()))
	noop := func() error { return nil }
	var d *model.IndicatorDelta
	_, err := h.Record(model.KindAddIndicator, "Add nothing", d, noop, noop)
	require.NoError(t, err)

	var changes []DisplayChange
	require.NotPanics(t, func() {
		changes = New(h).ListChanges(Filter{})
	})
	require.Len(t, changes, 1)
	assert.Equal(t, "", changes[0].DeltaType)
	assert.Equal(t, "", changes[0].ItemRef)
	assert.Empty(t, changes[0].Details)
}

func TestNilPointerRawValues(t *testing.T) {
	v := newTestViewer(nil)
	c := v.Describe(action(1, "custom", "", model.RawDelta{"when": (*time.Time)(nil)}))
	assert.Equal(t, []Detail{{"when", "(none)"}}, c.Details)
}

func TestPanickingDeltaDegrades(t *testing.T) {
	v := newTestViewer(nil)
	c := v.Describe(action(1, "custom", "Odd", &explodingDelta{}))
	assert.Equal(t, "", c.DeltaType)
	assert.Equal(t, "", c.ItemRef)
	require.Len(t, c.Details, 1)
	assert.Equal(t, "Delta", c.Details[0].Field)
}

func TestPointerDeltasMatchValues(t *testing.T) {
	v := newTestViewer(nil)
	value := model.IndicatorDelta{Code: "GDP", Name: "Gross", CategoryCode: "GRW", CategoryName: "Growth"}

	byValue := v.Describe(action(1, model.KindAddIndicator, "Add", value))
	byPointer := v.Describe(action(1, model.KindAddIndicator, "Add", &value))

	assert.Equal(t, "Gross (GDP)", byPointer.ItemRef)
	assert.Equal(t, model.DeltaTypeIndicator, byPointer.DeltaType)
	assert.Equal(t, byValue, byPointer)

	comp := &model.CompositeDelta{ParentCode: "GRW", ParentName: "Growth", Steps: []model.Step{
		{Kind: model.KindAddIndicator, Delta: &value},
	}}
	c := v.Describe(action(2, model.KindComposite, "Batch", comp))
	assert.Equal(t, "Gross (GDP) in Growth", c.ItemRef)
	require.Len(t, c.Children, 1)
	assert.Equal(t, "Gross (GDP)", c.Children[0].ItemRef)
}

func TestRawDeltaDetails(t *testing.T) {
	v := newTestViewer(nil)
	c := v.Describe(action(1, "custom", "", model.RawDelta{
		"zeta":   nil,
		"alpha":  "first",
		"nested": map[string]any{"x": 1},
	}))

	assert.Equal(t, CategoryOther, c.Category)
	assert.Equal(t, model.DeltaTypeRaw, c.DeltaType)
	assert.Equal(t, []Detail{
		{"alpha", "first"},
		{"nested", `{"x":1}`},
		{"zeta", "(none)"},
	}, c.Details)
}

func TestUnknownDeltaImplementation(t *testing.T) {
	v := newTestViewer(nil)
	c := v.Describe(action(1, "custom", "", strangeDelta{Payload: map[string]any{"k": "v"}}))
	assert.Equal(t, "strange", c.DeltaType)
	assert.Equal(t, []Detail{{"payload", `{"k":"v"}`}}, c.Details)
}

// =============================================================================
// Export Tests
// =============================================================================

func TestExportDocument(t *testing.T) {
	src := sampleSource()
	v := newTestViewer(src)

	doc := v.ExportDocument()
	assert.Equal(t, "export-1", doc.ID)
	assert.Equal(t, model.ExportKey("export-1"), doc.GetKey())
	assert.Equal(t, model.ExportVersion, doc.Version)
	assert.Equal(t, "baseline", doc.Structure)
	assert.Equal(t, base.Add(time.Hour), doc.ExportedAt)
	assert.Equal(t, 4, doc.Count)

	require.Len(t, doc.Changes, 4)
	for i, a := range src {
		assert.Equal(t, a.Export(), doc.Changes[i])
	}
}

func TestExportDocumentMatchesHistoryExportLog(t *testing.T) {
	h := history.New(history.WithLogger(logging.Discard()), history.WithCapacity(2))
	noop := func() error { return nil }
	for _, code := range []string{"A", "B", "C"} {
		_, err := h.Record(model.KindAddIndicator, "Add "+code, model.IndicatorDelta{Code: code}, noop, noop)
		require.NoError(t, err)
	}
	_, err := h.Undo()
	require.NoError(t, err)
	_, err = h.Record(model.KindAddIndicator, "Add D", model.IndicatorDelta{Code: "D"}, noop, noop)
	require.NoError(t, err)

	doc := newTestViewer(h).ExportDocument()
	assert.Equal(t, h.ExportLog(), doc.Changes)
	assert.Equal(t, 2, doc.Count)
}

func TestExportDocumentJSONRoundTrip(t *testing.T) {
	src := append(sampleSource(), compositeAction())
	doc := newTestViewer(src).ExportDocument()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded model.ExportDocument
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc.ID, decoded.ID)
	require.Len(t, decoded.Changes, 5)
	assert.Equal(t, compositeAction().Delta, decoded.Changes[4].Delta)
}

func TestSummary(t *testing.T) {
	src := append(sampleSource(), compositeAction())
	s := newTestViewer(src).Summary()

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.ByCategory[CategoryAdd])
	assert.Equal(t, 1, s.ByCategory[CategoryRemove])
	assert.Equal(t, 1, s.ByCategory[CategoryMove])
	assert.Equal(t, 1, s.ByCategory[CategoryUpdate])
	assert.Equal(t, 1, s.ByCategory[CategoryCreate])
}
