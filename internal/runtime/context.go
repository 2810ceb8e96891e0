// Package runtime provides application runtime context for indexlog.
package runtime

import (
	"io"
	"os"
	"time"

	"github.com/manav03panchal/indexlog/internal/config"
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/output"
	"github.com/manav03panchal/indexlog/internal/session"
	"github.com/manav03panchal/indexlog/internal/storage"
	"github.com/manav03panchal/indexlog/internal/structure"
)

// Context holds the application runtime context. The session and the
// export archive are opened on first use.
type Context struct {
	Formatter *output.Formatter
	Config    *config.RuntimeConfig
	Notifier  notify.Notifier
	Stderr    io.Writer
	Debug     bool

	opts    Options
	db      *storage.DB
	exports *storage.ExportRepo
	sess    *session.Session
}

// Options configures the runtime context.
type Options struct {
	DBPath        string
	InMemory      bool
	Format        output.Format
	ColorMode     output.ColorMode
	Debug         bool
	StructurePath string
	ScriptPath    string
	Capacity      int
	Stdout        io.Writer
	Stderr        io.Writer
	Clock         func() time.Time
}

// DefaultOptions returns default runtime options. The archive location
// honors INDEXLOG_DATABASE.
func DefaultOptions() Options {
	db := storage.ResolveOptions()
	return Options{
		DBPath:    db.Path,
		InMemory:  db.InMemory,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Capacity < 0 {
		return nil, errors.NewUserErrorWithField("capacity", "", "capacity must be positive", "Pass --capacity with a value of at least 1.")
	}

	formatter := output.NewFormatter()
	formatter.Writer = opts.Stdout
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	c := &Context{
		Formatter: formatter,
		Config:    config.Global,
		Stderr:    opts.Stderr,
		Debug:     opts.Debug,
		opts:      opts,
	}
	c.Notifier = c.newNotifier()
	return c, nil
}

// newNotifier sends notifications to the log, and to stderr unless the
// output is JSON.
func (c *Context) newNotifier() notify.Notifier {
	logN := notify.NewLogNotifier(logging.Logger())
	if c.IsJSON() {
		return logN
	}
	errOut := &output.Formatter{Writer: c.Stderr, Format: c.Formatter.Format, ColorMode: c.Formatter.ColorMode}
	return notify.Multi(output.NewCLIFormatter(errOut).Notifier(), logN)
}

// Now returns the current time.
func (c *Context) Now() time.Time {
	return c.opts.Clock()
}

// Session loads the baseline structure, starts a session, and replays the
// edit script, once.
func (c *Context) Session() (*session.Session, error) {
	if c.sess != nil {
		return c.sess, nil
	}
	if c.opts.StructurePath == "" {
		return nil, &errors.UserError{
			Message: "no structure given",
			Err:     errors.ErrNoStructure,
		}
	}

	doc, err := structure.LoadStructure(c.opts.StructurePath)
	if err != nil {
		return nil, err
	}

	sess := session.New(doc, session.Options{
		Capacity: c.opts.Capacity,
		Notifier: c.Notifier,
		Clock:    c.opts.Clock,
		Logger:   logging.Logger(),
	})

	if c.opts.ScriptPath != "" {
		script, err := structure.LoadScript(c.opts.ScriptPath)
		if err != nil {
			return nil, err
		}
		if err := sess.Replay(script); err != nil {
			return nil, err
		}
	}

	c.sess = sess
	return sess, nil
}

// Exports opens the export archive on first use.
func (c *Context) Exports() (*storage.ExportRepo, error) {
	if c.exports != nil {
		return c.exports, nil
	}
	db, err := storage.Open(storage.Options{
		Path:     c.opts.DBPath,
		InMemory: c.opts.InMemory,
	})
	if err != nil {
		return nil, err
	}
	c.db = db
	c.exports = storage.NewExportRepo(db)
	return c.exports, nil
}

// Close closes the export archive if it was opened.
func (c *Context) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db, c.exports = nil, nil
		return err
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}
