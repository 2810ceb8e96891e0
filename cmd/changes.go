package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/parser"
)

// Changes command flags.
var (
	changesFlagKinds      []string
	changesFlagCategories []string
	changesFlagDeltas     []string
	changesFlagSearch     string
	changesFlagSince      string
	changesFlagUntil      string
	changesFlagLimit      int
)

// changesCmd lists committed changes.
var changesCmd = &cobra.Command{
	Use:     "changes",
	Aliases: []string{"log", "ls", "l"},
	Short:   "List committed changes, newest first",
	Long: `List the changes committed after replaying the edit script, newest first.
Undone changes are not shown. Filters combine: a change is listed only if it
passes every filter given.

Kind, category, and delta filters look at the top-level change only. Search
also looks inside grouped changes. --since and --until accept absolute
timestamps, relative periods ("today", "last hour"), and natural language
("2 days ago").

Examples:
  indexlog changes -s index.yaml --script edits.yaml
  indexlog changes -s index.yaml --script edits.yaml --category add,remove
  indexlog changes -s index.yaml --script edits.yaml --kind set-weight
  indexlog changes -s index.yaml --script edits.yaml --search GDP
  indexlog changes -s index.yaml --script edits.yaml --since "last hour" -n 5`,
	Args: cobra.NoArgs,
	RunE: runChanges,
}

func init() {
	changesCmd.Flags().StringSliceVarP(&changesFlagKinds, "kind", "k", nil, "Only these kinds (e.g. add-indicator,set-weight)")
	changesCmd.Flags().StringSliceVarP(&changesFlagCategories, "category", "c", nil, "Only these categories (add, remove, move, update, create, other)")
	changesCmd.Flags().StringSliceVar(&changesFlagDeltas, "delta", nil, "Only these delta types (indicator, category, weight, raw, ...)")
	changesCmd.Flags().StringVarP(&changesFlagSearch, "search", "q", "", "Case-insensitive text search")
	changesCmd.Flags().StringVar(&changesFlagSince, "since", "", "Only changes at or after this time")
	changesCmd.Flags().StringVar(&changesFlagUntil, "until", "", "Only changes at or before this time")
	changesCmd.Flags().IntVarP(&changesFlagLimit, "limit", "n", 0, "Show at most N changes")

	changesCmd.RegisterFlagCompletionFunc("kind", completeKinds)
	changesCmd.RegisterFlagCompletionFunc("category", completeCategories)
	changesCmd.RegisterFlagCompletionFunc("delta", completeDeltaTypes)
	changesCmd.RegisterFlagCompletionFunc("since", completeTimes)
	changesCmd.RegisterFlagCompletionFunc("until", completeTimes)

	rootCmd.AddCommand(changesCmd)
}

func runChanges(cmd *cobra.Command, args []string) error {
	if changesFlagLimit < 0 {
		return errors.NewUserErrorWithField("limit", "", "limit must not be negative", "Pass --limit 0 to show every change.")
	}

	filter, err := parser.ParseFilter(parser.FilterArgs{
		Kinds:      changesFlagKinds,
		Categories: changesFlagCategories,
		DeltaTypes: changesFlagDeltas,
		Search:     changesFlagSearch,
		Since:      changesFlagSince,
		Until:      changesFlagUntil,
	}, ctx.Now())
	if err != nil {
		return err
	}

	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	viewer := sess.Viewer()
	total := len(viewer.ListChangesFunc(nil))
	changes := viewer.ListChanges(filter)
	if changesFlagLimit > 0 && len(changes) > changesFlagLimit {
		changes = changes[:changesFlagLimit]
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintChanges(changes, total)
	}

	ctx.CLIFormatter().PrintChanges(changes, total)
	return nil
}
