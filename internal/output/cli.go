package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/session"
	"github.com/manav03panchal/indexlog/internal/validate"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorInfo    = lipgloss.Color("#3B82F6") // Blue

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorMuted)
)

// categoryStyles colors change cards by category.
var categoryStyles = map[changelog.Category]lipgloss.Style{
	changelog.CategoryAdd:    lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
	changelog.CategoryRemove: lipgloss.NewStyle().Bold(true).Foreground(colorError),
	changelog.CategoryMove:   lipgloss.NewStyle().Bold(true).Foreground(colorInfo),
	changelog.CategoryUpdate: lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
	changelog.CategoryCreate: lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	changelog.CategoryOther:  lipgloss.NewStyle().Bold(true).Foreground(colorMuted),
}

// CategoryStyle returns the style for a change category.
func CategoryStyle(c changelog.Category) lipgloss.Style {
	if st, ok := categoryStyles[c]; ok {
		return st
	}
	return categoryStyles[changelog.CategoryOther]
}

// CategoryIcon returns the marker drawn in front of a change card.
func CategoryIcon(c changelog.Category) string {
	switch c {
	case changelog.CategoryAdd:
		return "+"
	case changelog.CategoryRemove:
		return "-"
	case changelog.CategoryMove:
		return "→"
	case changelog.CategoryUpdate:
		return "~"
	case changelog.CategoryCreate:
		return "◆"
	default:
		return "•"
	}
}

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(st lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return st.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Notifier returns a notification sink that prints through this formatter.
func (c *CLIFormatter) Notifier() notify.Notifier {
	return notify.NewCLINotifier(c.Writer, c.IsColorEnabled())
}

// =============================================================================
// Change log
// =============================================================================

// PrintChanges prints change cards, newest first. total is the number of
// committed changes before filtering.
func (c *CLIFormatter) PrintChanges(changes []changelog.DisplayChange, total int) {
	if total == 0 {
		c.Muted("No changes yet.")
		return
	}
	if len(changes) == 0 {
		c.Muted(fmt.Sprintf("No changes match the filter (%d total).", total))
		return
	}

	c.Title(fmt.Sprintf("Changes (%d of %d)", len(changes), total))
	for _, ch := range changes {
		c.Println()
		c.PrintChange(ch)
	}
}

// PrintChange prints one change card with its details and sub-edits.
func (c *CLIFormatter) PrintChange(ch changelog.DisplayChange) {
	width := c.TerminalWidth()
	st := CategoryStyle(ch.Category)

	head := CategoryIcon(ch.Category) + " " + ch.TypeLabel
	if ch.ItemRef != "" {
		head += "  " + ch.ItemRef
	}
	head = validate.TruncateString(head, max(width-len(ch.Time)-2, 20))
	pad := width - lipgloss.Width(head) - lipgloss.Width(ch.Time)
	if pad < 2 {
		pad = 2
	}
	c.Println(c.render(st, head) + strings.Repeat(" ", pad) + c.render(styleMuted, ch.Time))

	if ch.Label != "" {
		c.Println("  " + c.render(styleLabel, validate.TruncateString(ch.Label, width-2)))
	}
	c.printDetails(ch.Details, "  ", width)

	for i, child := range ch.Children {
		branch, indent := "├ ", "│ "
		if i == len(ch.Children)-1 {
			branch, indent = "└ ", "  "
		}
		line := branch + CategoryIcon(child.Category) + " " + child.TypeLabel
		if child.ItemRef != "" {
			line += "  " + child.ItemRef
		}
		c.Println("  " + c.render(CategoryStyle(child.Category), validate.TruncateString(line, width-2)))
		c.printDetails(child.Details, "  "+indent+"  ", width)
	}
}

func (c *CLIFormatter) printDetails(details []changelog.Detail, indent string, width int) {
	for _, d := range details {
		value := strings.ReplaceAll(validate.StripControlChars(d.Value), "\n", " ")
		line := validate.TruncateString(d.Field+": "+value, max(width-len(indent), 10))
		field, value, _ := strings.Cut(line, ": ")
		c.Println(indent + c.render(styleMuted, field+":") + " " + value)
	}
}

// =============================================================================
// Status
// =============================================================================

// PrintStatus prints a session summary.
func (c *CLIFormatter) PrintStatus(st session.Status) {
	name := st.Structure
	if name == "" {
		name = "(unnamed structure)"
	}
	c.Title(name)
	c.Printf("  Session:   %s\n", st.SessionID)
	c.Printf("  History:   %s %d/%d\n", ProgressBar(percent(st.Len, st.Capacity), 20), st.Len, st.Capacity)
	c.Printf("  Committed: %d   Redoable: %d\n", st.Committed, st.Redoable)

	if st.CanUndo {
		c.Printf("  Undo:      %s\n", st.NextUndo)
	} else {
		c.Printf("  Undo:      %s\n", c.render(styleMuted, "nothing to undo"))
	}
	if st.CanRedo {
		c.Printf("  Redo:      %s\n", st.NextRedo)
	} else {
		c.Printf("  Redo:      %s\n", c.render(styleMuted, "nothing to redo"))
	}

	c.Println()
	c.PrintTable([]string{"", "Pillars", "Categories", "Indicators", "Datasets"}, []TableRow{
		{Columns: statsRow("Baseline", st.Baseline.Pillars, st.Baseline.Categories, st.Baseline.Indicators, st.Baseline.Datasets)},
		{Columns: statsRow("Current", st.Stats.Pillars, st.Stats.Categories, st.Stats.Indicators, st.Stats.Datasets)},
	})

	if st.Changes.Total > 0 {
		c.Println()
		var parts []string
		for _, cat := range changelog.Categories {
			if n := st.Changes.ByCategory[cat]; n > 0 {
				parts = append(parts, c.render(CategoryStyle(cat), fmt.Sprintf("%d %s", n, cat)))
			}
		}
		c.Printf("  Changes:   %s\n", strings.Join(parts, ", "))
	}
}

func statsRow(label string, n ...int) []string {
	row := []string{label}
	for _, v := range n {
		row = append(row, fmt.Sprint(v))
	}
	return row
}

func percent(n, of int) float64 {
	if of <= 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}

// =============================================================================
// Exports
// =============================================================================

// PrintExports prints archived exports, newest first.
func (c *CLIFormatter) PrintExports(docs []*model.ExportDocument, now time.Time) {
	if len(docs) == 0 {
		c.Muted("No archived exports.")
		c.Muted("Use 'indexlog export --archive' to archive one.")
		return
	}

	rows := make([]TableRow, len(docs))
	for i, d := range docs {
		rows[i] = TableRow{Columns: []string{
			shortID(d.ID),
			FormatTimeShort(d.ExportedAt),
			FormatAge(d.ExportedAt, now),
			d.Structure,
			fmt.Sprint(d.Count),
		}}
	}
	c.PrintTable([]string{"ID", "Exported", "Age", "Structure", "Changes"}, rows)
}

// PrintExportSummary prints what an export contains.
func (c *CLIFormatter) PrintExportSummary(doc *model.ExportDocument) {
	c.Title("Export " + doc.ID)
	c.Printf("  Exported:  %s\n", FormatTime(doc.ExportedAt))
	if doc.Structure != "" {
		c.Printf("  Structure: %s\n", doc.Structure)
	}
	c.Printf("  Changes:   %d\n", doc.Count)

	kinds := make(map[model.Kind]int)
	for _, a := range doc.Changes {
		kinds[a.Kind]++
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	for _, k := range names {
		c.Printf("    %-18s %d\n", changelog.FormatKind(model.Kind(k)), kinds[model.Kind(k)])
	}
}

// PrintSubmitted prints the outcome of a successful submission.
func (c *CLIFormatter) PrintSubmitted(res *notify.SubmitResult) {
	c.Success(fmt.Sprintf("Submitted export %s (HTTP %d)", shortID(res.ExportID), res.StatusCode))
	if res.Attempts > 1 {
		c.Muted(fmt.Sprintf("  after %d attempts", res.Attempts))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// Helpers
// =============================================================================

// ProgressBar creates a simple progress bar.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	return strings.Repeat("█", filled) + strings.Repeat("░", empty)
}

// TableRow is one row of a CLI table.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(padRight(h, widths[i]) + "  ")
	}
	c.Println(c.render(styleBold, strings.TrimRight(headerLine.String(), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(padRight(col, widths[i]) + "  ")
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

func padRight(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
