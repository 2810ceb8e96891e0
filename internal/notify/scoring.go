package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/validate"
)

// ScoringClient posts export documents to the scoring endpoint.
type ScoringClient struct {
	url    string
	client *HTTPClient
}

// NewScoringClient creates a client for url. An empty url returns an error
// matching errors.ErrNoScoringURL.
func NewScoringClient(url string, client *HTTPClient) (*ScoringClient, error) {
	if url == "" {
		return nil, &errors.UserError{
			Message: errors.ErrNoScoringURL.Error(),
			Err:     errors.ErrNoScoringURL,
		}
	}
	if err := validate.URL(url); err != nil {
		return nil, err
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &ScoringClient{url: url, client: client}, nil
}

// URL returns the endpoint the client posts to.
func (c *ScoringClient) URL() string {
	return c.url
}

// SubmitResult describes an accepted submission.
type SubmitResult struct {
	ExportID   string        `json:"export_id"`
	StatusCode int           `json:"status_code"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
	Response   string        `json:"response,omitempty"`
}

// Submit posts doc as JSON. Any 2xx response is success.
func (c *ScoringClient) Submit(ctx context.Context, doc model.ExportDocument) (*SubmitResult, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewSystemErrorWithOp("submit", "Failed to encode export", err)
	}

	res := c.client.Send(ctx, c.url, "application/json", body)
	if res.Error != nil {
		logging.WarnContext(ctx, "scoring submission failed",
			logging.KeyURL, logging.MaskURL(c.url),
			logging.KeyExportID, doc.ID,
			logging.KeyStatus, res.StatusCode,
			logging.KeyError, res.Error,
		)
		return nil, &errors.SystemError{
			Message: errors.ErrScoringUnavailable.Error(),
			Op:      "submit",
			Cause:   errors.Wrap(errors.ErrScoringUnavailable, res.Error.Error()),
		}
	}

	logging.Info("export submitted",
		logging.KeyURL, logging.MaskURL(c.url),
		logging.KeyExportID, doc.ID,
		logging.KeyStatus, res.StatusCode,
		logging.KeyCount, doc.Count,
		logging.KeyDuration, res.Duration.Milliseconds(),
	)
	return &SubmitResult{
		ExportID:   doc.ID,
		StatusCode: res.StatusCode,
		Attempts:   res.Attempts,
		Duration:   res.Duration,
		Response:   string(res.Body),
	}, nil
}
