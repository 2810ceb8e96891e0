package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/model"
)

// Exports command flags.
var (
	exportsShowFlagRaw     bool
	exportsDeleteFlagForce bool
	exportsFlagLimit       int
)

// exportsCmd manages the export archive.
var exportsCmd = &cobra.Command{
	Use:     "exports",
	Aliases: []string{"archive", "ar"},
	Short:   "Manage archived exports",
	Long: `List, inspect, and delete exports saved with 'indexlog export --archive'.
IDs may be shortened to any unique prefix.

The archive lives under the XDG data directory. Set INDEXLOG_DATABASE to use
another location, or to :memory: for a throwaway archive.

Examples:
  indexlog exports
  indexlog exports show 3f2a
  indexlog exports show latest --raw
  indexlog exports delete 3f2a --force`,
	Args: cobra.NoArgs,
	RunE: runExportsList,
}

var exportsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List archived exports, newest first",
	Args:    cobra.NoArgs,
	RunE:    runExportsList,
}

var exportsShowCmd = &cobra.Command{
	Use:               "show ID",
	Aliases:           []string{"get", "cat"},
	Short:             "Show an archived export",
	Long:              `Show an archived export. Use "latest" for the most recent one.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeExportIDs,
	RunE:              runExportsShow,
}

var exportsDeleteCmd = &cobra.Command{
	Use:               "delete ID",
	Aliases:           []string{"rm", "del"},
	Short:             "Delete an archived export",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeExportIDs,
	RunE:              runExportsDelete,
}

func init() {
	exportsCmd.Flags().IntVarP(&exportsFlagLimit, "limit", "n", 0, "Show at most N exports")
	exportsListCmd.Flags().IntVarP(&exportsFlagLimit, "limit", "n", 0, "Show at most N exports")
	exportsShowCmd.Flags().BoolVar(&exportsShowFlagRaw, "raw", false, "Print the full export document")
	exportsDeleteCmd.Flags().BoolVar(&exportsDeleteFlagForce, "force", false, "Delete without confirmation")

	exportsCmd.AddCommand(exportsListCmd)
	exportsCmd.AddCommand(exportsShowCmd)
	exportsCmd.AddCommand(exportsDeleteCmd)
	rootCmd.AddCommand(exportsCmd)
}

func runExportsList(cmd *cobra.Command, args []string) error {
	repo, err := ctx.Exports()
	if err != nil {
		return err
	}

	docs, err := repo.List()
	if err != nil {
		return err
	}
	if exportsFlagLimit > 0 && len(docs) > exportsFlagLimit {
		docs = docs[:exportsFlagLimit]
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintExports(docs)
	}

	ctx.CLIFormatter().PrintExports(docs, ctx.Now())
	return nil
}

func runExportsShow(cmd *cobra.Command, args []string) error {
	doc, err := lookupExport(args[0])
	if err != nil {
		return err
	}

	if exportsShowFlagRaw || ctx.IsJSON() {
		return ctx.Formatter.JSON(doc)
	}

	ctx.CLIFormatter().PrintExportSummary(doc)
	return nil
}

func runExportsDelete(cmd *cobra.Command, args []string) error {
	if !exportsDeleteFlagForce {
		return errors.NewUserError("refusing to delete without --force",
			"Run 'indexlog exports delete "+args[0]+" --force' to delete the export.")
	}

	repo, err := ctx.Exports()
	if err != nil {
		return err
	}

	id := args[0]
	if id == "latest" {
		doc, err := lookupExport(id)
		if err != nil {
			return err
		}
		id = doc.ID
	}

	doc, err := repo.Delete(id)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintDeleted(doc)
	}

	cli := ctx.CLIFormatter()
	cli.Success("Deleted export " + doc.ID)
	if remaining, err := repo.Count(); err == nil {
		cli.Muted(pluralize(remaining, "archived export") + " left")
	}
	return nil
}

// lookupExport resolves an export ID, a unique prefix of one, or "latest".
func lookupExport(id string) (*model.ExportDocument, error) {
	repo, err := ctx.Exports()
	if err != nil {
		return nil, err
	}

	if id != "latest" {
		return repo.Get(id)
	}

	doc, err := repo.Latest()
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.NotFound(errors.ErrExportNotFound, "id", id)
	}
	return doc, nil
}
