package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/history"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/session"
)

// tickMsg is sent when the timer ticks.
type tickMsg time.Time

// refreshMsg is sent when the history changed.
type refreshMsg struct{}

// BrowserModel is the bubbletea model for the change log browser.
type BrowserModel struct {
	sess    *session.Session
	notices *notify.Recorder
	now     func() time.Time

	changes  []changelog.DisplayChange
	total    int
	selected int
	filter   changelog.Filter
	category int // index into categoryCycle

	searching bool
	query     string
	expanded  bool

	width  int
	height int

	refreshInterval time.Duration
	unsubscribe     func()
}

// categoryCycle is the order the category filter steps through. The empty
// category means no filter.
var categoryCycle = append([]changelog.Category{""}, changelog.Categories...)

// BrowserConfig holds configuration for the browser.
type BrowserConfig struct {
	Session         *session.Session
	Filter          changelog.Filter
	RefreshInterval time.Duration
	Clock           func() time.Time
}

// NewBrowserModel creates a browser over a session. Undo and redo
// notifications are captured for display as well as sent to the session's
// existing notifier.
func NewBrowserModel(cfg BrowserConfig, fallback notify.Notifier) *BrowserModel {
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 250 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	rec := notify.NewRecorderWithClock(cfg.Clock)
	cfg.Session.SetNotifier(notify.Multi(rec, fallback))

	m := &BrowserModel{
		sess:            cfg.Session,
		notices:         rec,
		now:             cfg.Clock,
		filter:          cfg.Filter,
		refreshInterval: cfg.RefreshInterval,
	}
	m.reload()
	return m
}

// Init initializes the model.
func (m *BrowserModel) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model.
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, m.tickCmd()

	case refreshMsg:
		m.reload()
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *BrowserModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.changes)-1 {
			m.selected++
		}

	case "home", "g":
		m.selected = 0

	case "end", "G":
		m.selected = max(len(m.changes)-1, 0)

	case "u":
		_, _ = m.sess.Undo()
		m.reload()

	case "r", "ctrl+r":
		_, _ = m.sess.Redo()
		m.reload()

	case "c":
		m.category = (m.category + 1) % len(categoryCycle)
		m.filter.Categories = nil
		if c := categoryCycle[m.category]; c != "" {
			m.filter.Categories = []changelog.Category{c}
		}
		m.selected = 0
		m.reload()

	case "/":
		m.searching = true
		m.query = m.filter.Text

	case "x":
		m.filter = changelog.Filter{}
		m.category = 0
		m.selected = 0
		m.reload()

	case "enter", " ":
		m.expanded = !m.expanded
	}

	return m, nil
}

// handleSearchKey edits the search query.
func (m *BrowserModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.filter.Text = strings.TrimSpace(m.query)
		m.selected = 0
		m.reload()
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	}
	return m, nil
}

// reload re-reads the change list after the history or the filter changed.
func (m *BrowserModel) reload() {
	m.changes = m.sess.Viewer().ListChanges(m.filter)
	m.total = m.sess.History().Cursor() + 1
	if m.selected >= len(m.changes) {
		m.selected = max(len(m.changes)-1, 0)
	}
}

// View renders the browser.
func (m *BrowserModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	status := &StatusComponent{Status: m.sess.Status(), Filter: m.filter, Width: m.width}
	sections = append(sections, status.View())

	if n, ok := m.notices.Active(m.now()); ok {
		sections = append(sections, SeverityStyle(n.Severity).Render(n.Message))
	}

	if m.searching {
		sections = append(sections, StyleWarning.Render("Search: "+m.query+"█"))
	}

	listHeight := m.height - 14
	if m.expanded && len(m.changes) > 0 {
		listHeight = max(listHeight/2, 3)
	}
	list := &ListComponent{Changes: m.changes, Selected: m.selected, Width: m.width, Height: max(listHeight, 3)}
	sections = append(sections, list.View())

	if m.expanded && len(m.changes) > 0 {
		detail := &DetailComponent{Change: m.changes[m.selected], Width: m.width}
		sections = append(sections, detail.View())
	}

	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the browser header.
func (m *BrowserModel) renderHeader() string {
	name := m.sess.Structure().Name
	if name == "" {
		name = "indexlog"
	}
	title := StyleTitle.Render(name + " change log")
	count := StyleSubtitle.Render(fmt.Sprintf("%d shown / %d committed", len(m.changes), m.total))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", count)
}

// Selected returns the highlighted change, if any.
func (m *BrowserModel) Selected() (changelog.DisplayChange, bool) {
	if len(m.changes) == 0 {
		return changelog.DisplayChange{}, false
	}
	return m.changes[m.selected], true
}

// tickCmd returns a command that sends a tick message so expired
// notifications disappear.
func (m *BrowserModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the browser TUI.
func Run(cfg BrowserConfig, fallback notify.Notifier) error {
	m := NewBrowserModel(cfg, fallback)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Keep the list in sync with every history change.
	m.unsubscribe = cfg.Session.Subscribe(func(history.ChangeEvent) {
		go p.Send(refreshMsg{})
	})
	defer m.unsubscribe()

	_, err := p.Run()
	return err
}
