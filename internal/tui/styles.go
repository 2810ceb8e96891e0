// Package tui provides the terminal change log browser for indexlog.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/notify"
)

// Color palette for the browser.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorActive    = lipgloss.Color("#3B82F6") // Blue
	ColorBorder    = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles for the browser.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleSubtitle is used for subtitles and secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleLabel is used for action labels.
	StyleLabel = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorMuted)

	// StyleSelected marks the highlighted change.
	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary)

	// StyleWarning is used for warning messages.
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// StyleError is used for error messages.
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	// StyleSuccess is used for success messages.
	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// StyleInfo is used for informational messages.
	StyleInfo = lipgloss.NewStyle().
			Foreground(ColorActive)

	// StyleHelp is used for help text at the bottom.
	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	// StyleHelpKey is used for keyboard shortcut keys.
	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// StyleHelpDesc is used for keyboard shortcut descriptions.
	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Box styles for the browser panes.
var (
	// StyleStatusBox frames the session summary.
	StyleStatusBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// StyleListBox frames the change list.
	StyleListBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// StyleDetailBox frames the selected change.
	StyleDetailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorActive).
			Padding(0, 1)
)

// categoryColors colors changes by category.
var categoryColors = map[changelog.Category]lipgloss.Color{
	changelog.CategoryAdd:    ColorSuccess,
	changelog.CategoryRemove: ColorError,
	changelog.CategoryMove:   ColorActive,
	changelog.CategoryUpdate: ColorWarning,
	changelog.CategoryCreate: ColorPrimary,
	changelog.CategoryOther:  ColorMuted,
}

// CategoryStyle returns the style for a change category.
func CategoryStyle(c changelog.Category) lipgloss.Style {
	color, ok := categoryColors[c]
	if !ok {
		color = ColorMuted
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

// SeverityStyle returns the style for a notification.
func SeverityStyle(s notify.Severity) lipgloss.Style {
	switch s {
	case notify.SeveritySuccess:
		return StyleSuccess
	case notify.SeverityWarning:
		return StyleWarning
	case notify.SeverityError:
		return StyleError
	default:
		return StyleInfo
	}
}

// ProgressBar creates a progress bar string.
func ProgressBar(percentage float64, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	emptyStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	bar := ""
	for i := 0; i < filled; i++ {
		bar += filledStyle.Render("█") // Full block
	}
	for i := 0; i < empty; i++ {
		bar += emptyStyle.Render("░") // Light shade
	}

	return bar
}
