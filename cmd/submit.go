package cmd

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/notify"
)

// Submit command flags.
var (
	submitFlagURL     string
	submitFlagID      string
	submitFlagArchive bool
)

// submitCmd posts an export to the scoring endpoint.
var submitCmd = &cobra.Command{
	Use:     "submit",
	Aliases: []string{"score", "send"},
	Short:   "Submit the change log for scoring",
	Long: `Post the committed change log to the scoring endpoint as JSON. Server
errors and network failures are retried with backoff; client errors are not.

By default the session's change log is exported and submitted. Use --id to
submit an archived export instead ("latest" for the most recent).

The endpoint comes from --url or INDEXLOG_SCORING_URL.

Examples:
  indexlog submit -s index.yaml --script edits.yaml --url https://score.example.com/v1/changes
  indexlog submit -s index.yaml --script edits.yaml --archive
  indexlog submit --id latest`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitFlagURL, "url", "u", "", "Scoring endpoint (default INDEXLOG_SCORING_URL)")
	submitCmd.Flags().StringVar(&submitFlagID, "id", "", "Submit an archived export by ID")
	submitCmd.Flags().BoolVarP(&submitFlagArchive, "archive", "a", false, "Also save the export to the archive")

	submitCmd.RegisterFlagCompletionFunc("id", completeExportIDs)
	submitCmd.MarkFlagsMutuallyExclusive("id", "archive")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	url := submitFlagURL
	if url == "" {
		url = ctx.Config.Scoring.URL
	}

	client, err := notify.NewScoringClient(url, notify.NewHTTPClientWithConfig(ctx.Config.HTTP))
	if err != nil {
		return err
	}

	doc, err := submissionDocument()
	if err != nil {
		return err
	}

	reqCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if ctx.IsCLI() {
		ctx.CLIFormatter().Muted("Submitting " + pluralize(doc.Count, "change") + " to " + logging.MaskURL(client.URL()))
	}

	res, err := client.Submit(reqCtx, *doc)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintSubmitted(res)
	}

	cli := ctx.CLIFormatter()
	cli.PrintSubmitted(res)
	cli.Muted("  took " + res.Duration.Round(time.Millisecond).String())
	return nil
}

// submissionDocument returns the archived export named by --id, or the
// session's export, archived first when --archive is set.
func submissionDocument() (*model.ExportDocument, error) {
	if submitFlagID != "" {
		return lookupExport(submitFlagID)
	}

	sess, err := ctx.Session()
	if err != nil {
		return nil, err
	}
	doc := sess.Viewer().ExportDocument()

	if submitFlagArchive {
		repo, err := ctx.Exports()
		if err != nil {
			return nil, err
		}
		if err := repo.Save(&doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}
