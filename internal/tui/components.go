package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/output"
	"github.com/manav03panchal/indexlog/internal/session"
	"github.com/manav03panchal/indexlog/internal/validate"
)

// StatusComponent displays the session summary.
type StatusComponent struct {
	Status session.Status
	Filter changelog.Filter
	Width  int
}

// View renders the status component.
func (sc *StatusComponent) View() string {
	st := sc.Status
	var content strings.Builder

	fill := 0.0
	if st.Capacity > 0 {
		fill = float64(st.Len) / float64(st.Capacity) * 100
	}
	content.WriteString(fmt.Sprintf("History %s %d/%d", ProgressBar(fill, 16), st.Len, st.Capacity))
	content.WriteString(StyleSubtitle.Render(fmt.Sprintf("   committed %d  redoable %d", st.Committed, st.Redoable)))
	content.WriteString("\n")

	undo := StyleSubtitle.Render("nothing to undo")
	if st.CanUndo {
		undo = st.NextUndo
	}
	redo := StyleSubtitle.Render("nothing to redo")
	if st.CanRedo {
		redo = st.NextRedo
	}
	content.WriteString("Undo: " + undo + "\n")
	content.WriteString("Redo: " + redo)

	if desc := describeFilter(sc.Filter); desc != "" {
		content.WriteString("\n")
		content.WriteString(StyleWarning.Render("Filter: " + desc))
	}

	return StyleStatusBox.Width(max(sc.Width-2, 20)).Render(content.String())
}

func describeFilter(f changelog.Filter) string {
	var parts []string
	for _, c := range f.Categories {
		parts = append(parts, "category="+string(c))
	}
	for _, k := range f.Kinds {
		parts = append(parts, "kind="+string(k))
	}
	if f.Text != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Text))
	}
	return strings.Join(parts, " ")
}

// ListComponent displays the change list with one row selected.
type ListComponent struct {
	Changes  []changelog.DisplayChange
	Selected int
	Width    int
	Height   int
}

// View renders the list component.
func (lc *ListComponent) View() string {
	var content strings.Builder
	inner := max(lc.Width-6, 20)

	if len(lc.Changes) == 0 {
		content.WriteString(StyleSubtitle.Render("No changes"))
		return StyleListBox.Width(max(lc.Width-2, 20)).Render(content.String())
	}

	start, end := visibleRange(len(lc.Changes), lc.Selected, max(lc.Height, 1))
	for i := start; i < end; i++ {
		if i > start {
			content.WriteString("\n")
		}
		content.WriteString(lc.renderRow(lc.Changes[i], i == lc.Selected, inner))
	}
	if end-start < len(lc.Changes) {
		content.WriteString("\n")
		content.WriteString(StyleSubtitle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(lc.Changes))))
	}

	return StyleListBox.Width(max(lc.Width-2, 20)).Render(content.String())
}

func (lc *ListComponent) renderRow(ch changelog.DisplayChange, selected bool, width int) string {
	text := output.CategoryIcon(ch.Category) + " " + ch.TypeLabel
	if ch.ItemRef != "" {
		text += "  " + ch.ItemRef
	}
	if ch.IsComposite() {
		text += fmt.Sprintf(" [%d]", len(ch.Children))
	}
	text = validate.TruncateString(text, max(width-len(ch.Time)-2, 10))
	pad := max(width-lipgloss.Width(text)-lipgloss.Width(ch.Time), 1)
	row := text + strings.Repeat(" ", pad) + ch.Time

	if selected {
		return StyleSelected.Render(row)
	}
	return CategoryStyle(ch.Category).Render(text) + strings.Repeat(" ", pad) + StyleSubtitle.Render(ch.Time)
}

// visibleRange returns the window of rows to draw so that selected stays
// on screen.
func visibleRange(n, selected, height int) (start, end int) {
	if n <= height {
		return 0, n
	}
	start = selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

// DetailComponent displays the selected change in full.
type DetailComponent struct {
	Change changelog.DisplayChange
	Width  int
}

// View renders the detail component.
func (dc *DetailComponent) View() string {
	ch := dc.Change
	var content strings.Builder

	content.WriteString(CategoryStyle(ch.Category).Render(ch.TypeLabel))
	content.WriteString(StyleSubtitle.Render("  " + ch.Time + "  " + ch.ID))
	if ch.Label != "" {
		content.WriteString("\n")
		content.WriteString(StyleLabel.Render(ch.Label))
	}
	writeDetails(&content, ch.Details, "")

	for _, child := range ch.Children {
		content.WriteString("\n")
		line := output.CategoryIcon(child.Category) + " " + child.TypeLabel
		if child.ItemRef != "" {
			line += "  " + child.ItemRef
		}
		content.WriteString(CategoryStyle(child.Category).Render(line))
		writeDetails(&content, child.Details, "    ")
	}

	return StyleDetailBox.Width(max(dc.Width-2, 20)).Render(content.String())
}

func writeDetails(sb *strings.Builder, details []changelog.Detail, indent string) {
	for _, d := range details {
		sb.WriteString("\n")
		sb.WriteString(indent)
		sb.WriteString(StyleSubtitle.Render(d.Field + ":"))
		sb.WriteString(" ")
		sb.WriteString(d.Value)
	}
}

// HelpBar renders the key bindings.
func HelpBar() string {
	keys := []struct{ key, desc string }{
		{"↑/↓", "move"},
		{"u", "undo"},
		{"r", "redo"},
		{"c", "category"},
		{"/", "search"},
		{"x", "clear"},
		{"enter", "details"},
		{"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = StyleHelpKey.Render(k.key) + " " + StyleHelpDesc.Render(k.desc)
	}
	return StyleHelp.Render(strings.Join(parts, "  "))
}
