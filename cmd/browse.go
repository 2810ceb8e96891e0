package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/parser"
	"github.com/manav03panchal/indexlog/internal/tui"
)

// Browse command flags.
var (
	browseFlagCategories []string
	browseFlagSearch     string
)

// browseCmd opens the interactive change log browser.
var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"ui", "tui"},
	Short:   "Browse the change log interactively",
	Long: `Open a full-screen change log browser. Changes are listed newest first
and the list follows undo and redo as they happen.

Keys:
  j/k, ↑/↓   move            enter   show details
  g/G        first/last      u       undo
  c          cycle category  r       redo
  /          search          x       clear filter
  q          quit

Examples:
  indexlog browse -s index.yaml --script edits.yaml
  indexlog browse -s index.yaml --script edits.yaml --category update`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringSliceVarP(&browseFlagCategories, "category", "c", nil, "Start with this category filter")
	browseCmd.Flags().StringVarP(&browseFlagSearch, "search", "q", "", "Start with this search")

	browseCmd.RegisterFlagCompletionFunc("category", completeCategories)

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errors.NewUserError("browse needs an interactive terminal",
			"Use 'indexlog changes' for non-interactive output.")
	}

	filter, err := parser.ParseFilter(parser.FilterArgs{
		Categories: browseFlagCategories,
		Search:     browseFlagSearch,
	}, ctx.Now())
	if err != nil {
		return err
	}

	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	// The terminal belongs to the browser; notifications only go to the log.
	return tui.Run(tui.BrowserConfig{
		Session: sess,
		Filter:  filter,
		Clock:   ctx.Now,
	}, notify.NewLogNotifier(logging.Logger()))
}
