package output

import (
	"time"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/notify"
	"github.com/manav03panchal/indexlog/internal/session"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ChangesResponse represents the change log output in JSON.
type ChangesResponse struct {
	Changes    []changelog.DisplayChange `json:"changes"`
	TotalCount int                       `json:"total_count"`
	ShownCount int                       `json:"shown_count"`
}

// ExportOutput summarizes an archived export in JSON.
type ExportOutput struct {
	ID         string `json:"id"`
	ExportedAt string `json:"exported_at"`
	Structure  string `json:"structure,omitempty"`
	Count      int    `json:"count"`
}

// NewExportOutput creates an ExportOutput from an export document.
func NewExportOutput(d *model.ExportDocument) *ExportOutput {
	return &ExportOutput{
		ID:         d.ID,
		ExportedAt: d.ExportedAt.Format(time.RFC3339),
		Structure:  d.Structure,
		Count:      d.Count,
	}
}

// ExportsResponse represents the archived exports list in JSON.
type ExportsResponse struct {
	Exports []*ExportOutput `json:"exports"`
}

// DeletedResponse reports a deleted export.
type DeletedResponse struct {
	Status string        `json:"status"`
	Export *ExportOutput `json:"export"`
}

// SubmitResponse reports a submission to the scoring endpoint.
type SubmitResponse struct {
	Status string               `json:"status"`
	Result *notify.SubmitResult `json:"result"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// PrintChanges outputs the change log in JSON format.
func (j *JSONFormatter) PrintChanges(changes []changelog.DisplayChange, total int) error {
	if changes == nil {
		changes = []changelog.DisplayChange{}
	}
	return j.JSON(ChangesResponse{
		Changes:    changes,
		TotalCount: total,
		ShownCount: len(changes),
	})
}

// PrintStatus outputs the session status in JSON format.
func (j *JSONFormatter) PrintStatus(st session.Status) error {
	return j.JSON(st)
}

// PrintExport outputs a full export document.
func (j *JSONFormatter) PrintExport(doc *model.ExportDocument) error {
	return j.JSON(doc)
}

// PrintExports outputs archived exports in JSON format.
func (j *JSONFormatter) PrintExports(docs []*model.ExportDocument) error {
	out := make([]*ExportOutput, len(docs))
	for i, d := range docs {
		out[i] = NewExportOutput(d)
	}
	return j.JSON(ExportsResponse{Exports: out})
}

// PrintDeleted outputs a deleted export.
func (j *JSONFormatter) PrintDeleted(doc *model.ExportDocument) error {
	return j.JSON(DeletedResponse{Status: "deleted", Export: NewExportOutput(doc)})
}

// PrintSubmitted outputs a submission result.
func (j *JSONFormatter) PrintSubmitted(res *notify.SubmitResult) error {
	return j.JSON(SubmitResponse{Status: "submitted", Result: res})
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(status, errMsg, message, suggestion string) error {
	return j.JSON(ErrorResponse{
		Status:     status,
		Error:      errMsg,
		Message:    message,
		Suggestion: suggestion,
	})
}
