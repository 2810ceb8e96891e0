package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/runtime"
	"github.com/manav03panchal/indexlog/internal/storage"
	"github.com/manav03panchal/indexlog/internal/validate"
)

// Export command flags.
var (
	exportFlagOutput  string
	exportFlagAs      string
	exportFlagArchive bool
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"ex", "x", "dump"},
	Short:   "Export the committed change log",
	Long: `Export the committed changes, oldest first, as a JSON document that
can be submitted for scoring. Undone changes are not exported.

When -o names a directory, the file is named after the structure and the
export time. With --archive the document is also saved to the local export archive
(see 'indexlog exports'). CSV output lists one row per change and is
meant for spreadsheets; it cannot be archived or submitted.

Examples:
  indexlog export -s index.yaml --script edits.yaml
  indexlog export -s index.yaml --script edits.yaml -o changes.json
  indexlog export -s index.yaml --script edits.yaml --archive
  indexlog export -s index.yaml --script edits.yaml --as csv -o changes.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "Output file (stdout if omitted)")
	exportCmd.Flags().StringVar(&exportFlagAs, "as", "json", "Document format: json, csv")
	exportCmd.Flags().BoolVarP(&exportFlagArchive, "archive", "a", false, "Also save the export to the archive")

	exportCmd.RegisterFlagCompletionFunc("as", fixedCompletions("json", "csv"))
	exportCmd.MarkFlagFilename("output", "json", "csv")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlagAs != "json" && exportFlagAs != "csv" {
		return errors.NewUserErrorWithField("as", exportFlagAs, "invalid export format", "Valid values: json, csv")
	}
	if exportFlagAs == "csv" && exportFlagArchive {
		return errors.NewUserError("only JSON exports can be archived", "Drop --as csv to archive the export.")
	}

	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	doc := sess.Viewer().ExportDocument()

	if exportFlagArchive {
		repo, err := ctx.Exports()
		if err != nil {
			return err
		}
		if err := repo.Save(&doc); err != nil {
			return err
		}
	}

	var data []byte
	switch exportFlagAs {
	case "csv":
		data, err = exportCSV(&doc)
	default:
		data, err = exportJSON(&doc)
	}
	if err != nil {
		return err
	}

	if exportFlagOutput == "" {
		_, err := ctx.Formatter.Writer.Write(data)
		return err
	}

	path := exportPath(exportFlagOutput, &doc, exportFlagAs)
	if err := storage.WriteFileAtomic(path, data, 0644); err != nil {
		if runtime.IsDiskFullError(err) && exportFlagArchive {
			ctx.CLIFormatter().Warning("Export " + doc.ID + " was archived but not written to " + path)
		}
		return err
	}

	// Print summary if writing to file
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintExport(&doc)
	}
	cli := ctx.CLIFormatter()
	cli.Success("Exported " + pluralize(doc.Count, "change") + " to " + path)
	if exportFlagArchive {
		cli.Muted("  Archived as " + doc.ID)
	}
	return nil
}

// exportPath returns output, or a file named after the structure and export
// time when output is an existing directory.
func exportPath(output string, doc *model.ExportDocument, ext string) string {
	info, err := os.Stat(output)
	if err != nil || !info.IsDir() {
		return output
	}
	name := doc.Structure
	if name == "" {
		name = "changes"
	}
	name = validate.SafeFilename(name + "-" + doc.ExportedAt.Format("20060102-150405"))
	return filepath.Join(output, name+"."+ext)
}

func exportJSON(doc *model.ExportDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewSystemErrorWithOp("export", "Failed to encode export", err)
	}
	return append(data, '\n'), nil
}

func exportCSV(doc *model.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	// Write header
	if err := writer.Write([]string{
		"id", "timestamp", "kind", "category", "delta_type", "label",
	}); err != nil {
		return nil, err
	}

	// Write rows
	for _, a := range doc.Changes {
		if err := writer.Write([]string{
			a.ID,
			a.Timestamp.Format(time.RFC3339),
			string(a.Kind),
			string(changelog.CategoryOf(a.Kind)),
			model.TypeOf(a.Delta),
			a.Label,
		}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.NewSystemErrorWithOp("export", "Failed to encode export", err)
	}
	return buf.Bytes(), nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
