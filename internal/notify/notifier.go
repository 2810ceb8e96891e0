// Package notify surfaces undo/redo outcomes to the user and delivers
// exported change documents to the scoring endpoint.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/indexlog/internal/logging"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is a user-facing notification sink.
type Notifier interface {
	// Notify shows message with the given severity for about duration.
	Notify(message string, severity Severity, duration time.Duration)
}

// Func adapts a function to Notifier.
type Func func(message string, severity Severity, duration time.Duration)

// Notify calls f.
func (f Func) Notify(message string, severity Severity, duration time.Duration) {
	f(message, severity, duration)
}

// Discard drops every notification.
var Discard Notifier = Func(func(string, Severity, time.Duration) {})

// Multi fans a notification out to several sinks in order.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(message string, severity Severity, duration time.Duration) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(message, severity, duration)
			}
		}
	})
}

// =============================================================================
// Terminal
// =============================================================================

var severityStyles = map[Severity]lipgloss.Style{
	SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var severityIcons = map[Severity]string{
	SeverityInfo:    "i",
	SeveritySuccess: "✓",
	SeverityWarning: "!",
	SeverityError:   "✗",
}

// CLINotifier writes one line per notification. Duration is ignored; a
// terminal line stays until scrolled away.
type CLINotifier struct {
	Out   io.Writer
	Color bool
}

// NewCLINotifier creates a terminal notifier.
func NewCLINotifier(out io.Writer, color bool) *CLINotifier {
	return &CLINotifier{Out: out, Color: color}
}

// Notify writes the message.
func (n *CLINotifier) Notify(message string, severity Severity, _ time.Duration) {
	icon := severityIcons[severity]
	if icon == "" {
		icon = "-"
	}
	line := icon + " " + message
	if n.Color {
		if style, ok := severityStyles[severity]; ok {
			line = style.Render(line)
		}
	}
	fmt.Fprintln(n.Out, line)
}

// =============================================================================
// Log
// =============================================================================

// LogNotifier records notifications in the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through l, or the package
// logger when l is nil.
func NewLogNotifier(l *slog.Logger) *LogNotifier {
	if l == nil {
		l = logging.Logger()
	}
	return &LogNotifier{Logger: l}
}

// Notify logs the message at a level matching severity.
func (n *LogNotifier) Notify(message string, severity Severity, duration time.Duration) {
	level := slog.LevelInfo
	switch severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	n.Logger.Log(context.Background(), level, message,
		"severity", string(severity),
		logging.KeyDuration, duration.Milliseconds(),
	)
}

// =============================================================================
// Recorder
// =============================================================================

// Notice is one captured notification.
type Notice struct {
	Message  string
	Severity Severity
	Duration time.Duration
	At       time.Time
}

// Recorder keeps every notification it receives. It is safe for concurrent
// use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderWithClock creates an empty recorder that stamps notices with now.
func NewRecorderWithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Notify captures the notification.
func (r *Recorder) Notify(message string, severity Severity, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	r.notices = append(r.notices, Notice{
		Message:  message,
		Severity: severity,
		Duration: duration,
		At:       now(),
	})
}

// Notices returns a copy of the captured notifications, oldest first.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Active returns the most recent notification if it has not yet expired.
func (r *Recorder) Active(now time.Time) (Notice, bool) {
	n, ok := r.Last()
	if !ok || now.Sub(n.At) >= n.Duration {
		return Notice{}, false
	}
	return n, true
}

// Reset drops every captured notification.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
