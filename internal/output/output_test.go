package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/session"
	"github.com/manav03panchal/indexlog/internal/structure"
)

func plainCLI(buf *bytes.Buffer) *CLIFormatter {
	return NewCLIFormatter(&Formatter{Writer: buf, Format: FormatCLI, ColorMode: ColorNever, Width: 60})
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
	assert.False(t, f.IsJSON())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"cli", FormatCLI, false},
		{"JSON", FormatJSON, false},
		{" plain ", FormatPlain, false},
		{"", FormatCLI, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsUserError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColorMode(t *testing.T) {
	got, err := ParseColorMode("Always")
	require.NoError(t, err)
	assert.Equal(t, ColorAlways, got)

	got, err = ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ColorAuto, got)

	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("plain_disables_color", func(t *testing.T) {
		f := &Formatter{Format: FormatPlain, ColorMode: ColorAlways}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("json_disables_color", func(t *testing.T) {
		f := &Formatter{Format: FormatJSON, ColorMode: ColorAlways}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Formatter{Writer: &buf, ColorMode: ColorAuto}
		assert.False(t, f.IsColorEnabled())
	})
}

func TestTerminalWidth(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, DefaultWidth, (&Formatter{Writer: &buf}).TerminalWidth())
	assert.Equal(t, 120, (&Formatter{Writer: &buf, Width: 120}).TerminalWidth())
}

func TestFormatterPrint(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	f.Print("a")
	f.Println("b")
	f.Printf("%s-%d", "c", 1)
	assert.Equal(t, "ab\nc-1", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf}

	require.NoError(t, f.JSON(map[string]string{"key": "value"}))
	assert.Contains(t, buf.String(), `"key": "value"`)
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		then time.Time
		want string
	}{
		{now.Add(time.Minute), "just now"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(tt.then, now))
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "██░░", ProgressBar(50, 4))
	assert.Equal(t, "████", ProgressBar(150, 4))
	assert.Equal(t, "░░░░", ProgressBar(-5, 4))
}

// =============================================================================
// CLI Tests
// =============================================================================

func TestCLIMessages(t *testing.T) {
	var buf bytes.Buffer
	c := plainCLI(&buf)

	c.Title("Title")
	c.Success("done")
	c.Warning("careful")
	c.Error("broken")
	c.Muted("quiet")

	assert.Equal(t, "Title\n✓ done\n⚠ careful\n✗ broken\nquiet\n", buf.String())
}

func TestCategoryIconsAndStyles(t *testing.T) {
	for _, cat := range changelog.Categories {
		assert.NotEmpty(t, CategoryIcon(cat), cat)
		assert.NotPanics(t, func() { CategoryStyle(cat).Render("x") })
	}
	assert.Equal(t, "•", CategoryIcon("bogus"))
}

func sampleChanges() []changelog.DisplayChange {
	return []changelog.DisplayChange{
		{
			ID:        "a2",
			Kind:      model.KindCreateCategory,
			Category:  changelog.CategoryCreate,
			TypeLabel: "Create category",
			Label:     "Create category Trade",
			Time:      "2024-03-05 09:09",
			ItemRef:   "Trade (TRD)",
			Children: []changelog.DisplayChange{
				{TypeLabel: "Add category", Category: changelog.CategoryAdd, ItemRef: "Trade (TRD)"},
				{TypeLabel: "Move indicator", Category: changelog.CategoryMove, ItemRef: "Exports (EXP)",
					Details: []changelog.Detail{{Field: "To", Value: "Trade (TRD)"}}},
			},
		},
		{
			ID:        "a1",
			Kind:      model.KindAddIndicator,
			Category:  changelog.CategoryAdd,
			TypeLabel: "Add indicator",
			Label:     "Add indicator Population",
			Time:      "2024-03-05 09:08",
			ItemRef:   "Population (POP)",
			Details:   []changelog.Detail{{Field: "Category", Value: "Growth (GRW)"}},
		},
	}
}

func TestPrintChanges(t *testing.T) {
	t.Run("empty_log", func(t *testing.T) {
		var buf bytes.Buffer
		plainCLI(&buf).PrintChanges(nil, 0)
		assert.Equal(t, "No changes yet.\n", buf.String())
	})

	t.Run("filtered_out", func(t *testing.T) {
		var buf bytes.Buffer
		plainCLI(&buf).PrintChanges(nil, 4)
		assert.Equal(t, "No changes match the filter (4 total).\n", buf.String())
	})

	t.Run("cards", func(t *testing.T) {
		var buf bytes.Buffer
		plainCLI(&buf).PrintChanges(sampleChanges(), 2)
		out := buf.String()

		assert.Contains(t, out, "Changes (2 of 2)")
		assert.Contains(t, out, "◆ Create category  Trade (TRD)")
		assert.Contains(t, out, "  ├ + Add category  Trade (TRD)")
		assert.Contains(t, out, "  └ → Move indicator  Exports (EXP)")
		assert.Contains(t, out, "      To: Trade (TRD)")
		assert.Contains(t, out, "  Category: Growth (GRW)")
		assert.Less(t, strings.Index(out, "Create category"), strings.Index(out, "Add indicator"))

		for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
			assert.LessOrEqual(t, len([]rune(line)), 60, line)
		}
	})
}

func TestPrintChangeHeaderAlignsTime(t *testing.T) {
	var buf bytes.Buffer
	plainCLI(&buf).PrintChange(sampleChanges()[1])
	first := strings.SplitN(buf.String(), "\n", 2)[0]

	assert.True(t, strings.HasPrefix(first, "+ Add indicator  Population (POP)"))
	assert.True(t, strings.HasSuffix(first, "2024-03-05 09:08"))
	assert.Len(t, []rune(first), 60)
}

func TestPrintChangeStripsControlChars(t *testing.T) {
	var buf bytes.Buffer
	ch := changelog.DisplayChange{
		TypeLabel: "Raw",
		Category:  changelog.CategoryOther,
		Time:      "2024-03-05 09:08",
		Details:   []changelog.Detail{{Field: "note", Value: "line one\nline\x1b[31m two"}},
	}
	plainCLI(&buf).PrintChange(ch)

	assert.Contains(t, buf.String(), "  note: line one line[31m two\n")
	assert.NotContains(t, buf.String(), "\x1b")
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	st := session.Status{
		SessionID: "abcd1234",
		Structure: "Baseline",
		Cursor:    0,
		Len:       2,
		Capacity:  4,
		Committed: 1,
		Redoable:  1,
		CanUndo:   true,
		NextUndo:  "Add indicator Population",
		Stats:     structure.Stats{Pillars: 1, Categories: 1, Indicators: 2},
		Baseline:  structure.Stats{Pillars: 1, Categories: 1, Indicators: 1},
		Changes:   changelog.Summary{Total: 1, ByCategory: map[changelog.Category]int{changelog.CategoryAdd: 1}},
	}
	plainCLI(&buf).PrintStatus(st)
	out := buf.String()

	assert.Contains(t, out, "Session:   abcd1234")
	assert.Contains(t, out, "██████████░░░░░░░░░░ 2/4")
	assert.Contains(t, out, "Undo:      Add indicator Population")
	assert.Contains(t, out, "Redo:      nothing to redo")
	assert.Contains(t, out, "Current   1        1           2           0")
	assert.Contains(t, out, "Changes:   1 add")
}

func TestPrintExports(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		plainCLI(&buf).PrintExports(nil, now)
		assert.Contains(t, buf.String(), "No archived exports.")
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		docs := []*model.ExportDocument{
			{ID: "0123456789abcdef", ExportedAt: now.Add(-2 * time.Hour), Structure: "Baseline", Count: 3},
		}
		plainCLI(&buf).PrintExports(docs, now)
		out := buf.String()
		assert.Contains(t, out, "ID")
		assert.Contains(t, out, "01234567")
		assert.NotContains(t, out, "0123456789")
		assert.Contains(t, out, "2h ago")
		assert.Contains(t, out, "Baseline")
	})
}

func TestPrintExportSummary(t *testing.T) {
	var buf bytes.Buffer
	doc := &model.ExportDocument{
		ID:    "e1",
		Count: 3,
		Changes: []model.ExportedAction{
			{Kind: model.KindAddIndicator},
			{Kind: model.KindAddIndicator},
			{Kind: model.KindSetName},
		},
	}
	plainCLI(&buf).PrintExportSummary(doc)
	out := buf.String()
	assert.Contains(t, out, "Export e1")
	assert.Contains(t, out, "Changes:   3")
	assert.NotContains(t, out, "Structure:")
	assert.Regexp(t, `Add Indicator\s+2`, out)
}

func TestCLINotifierThroughFormatter(t *testing.T) {
	var buf bytes.Buffer
	plainCLI(&buf).Notifier().Notify("Undone: Add indicator Population", notify.SeveritySuccess, time.Second)
	assert.Equal(t, "✓ Undone: Add indicator Population\n", buf.String())
}

// =============================================================================
// JSON Tests
// =============================================================================

func TestJSONPrintChanges(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf, Format: FormatJSON})

	require.NoError(t, j.PrintChanges(nil, 3))
	var resp struct {
		Changes    []json.RawMessage `json:"changes"`
		TotalCount int               `json:"total_count"`
		ShownCount int               `json:"shown_count"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.NotNil(t, resp.Changes)
	assert.Empty(t, resp.Changes)
	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, 0, resp.ShownCount)
}

func TestJSONPrintExports(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf, Format: FormatJSON})
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	require.NoError(t, j.PrintExports([]*model.ExportDocument{{ID: "e1", ExportedAt: at, Count: 2}}))
	assert.JSONEq(t, `{"exports":[{"id":"e1","exported_at":"2024-03-05T09:00:00Z","count":2}]}`, buf.String())
}

func TestJSONPrintError(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONFormatter(&Formatter{Writer: &buf, Format: FormatJSON})

	require.NoError(t, j.PrintError("error", "unknown kind: 'x'", "", "Valid values: add-indicator"))
	assert.JSONEq(t, `{"status":"error","error":"unknown kind: 'x'","suggestion":"Valid values: add-indicator"}`, buf.String())
}
