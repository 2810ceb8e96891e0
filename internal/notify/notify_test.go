package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/indexlog/internal/config"
	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/model"
)

func fastClient(retries int) *HTTPClient {
	return NewHTTPClientWithConfig(config.HTTPConfig{
		Timeout:     5 * time.Second,
		MaxRetries:  retries,
		RetryDelays: []time.Duration{0, time.Millisecond},
	})
}

// =============================================================================
// Notifier Tests
// =============================================================================

func TestFunc(t *testing.T) {
	var got string
	n := Func(func(message string, severity Severity, duration time.Duration) {
		got = string(severity) + ":" + message + ":" + duration.String()
	})
	n.Notify("Undone", SeveritySuccess, time.Second)
	assert.Equal(t, "success:Undone:1s", got)
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi(a, nil, b).Notify("hello", SeverityInfo, time.Second)

	require.Len(t, a.Notices(), 1)
	require.Len(t, b.Notices(), 1)
	assert.Equal(t, "hello", b.Notices()[0].Message)
}

func TestCLINotifier(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityInfo, "i Nothing to undo\n"},
		{SeveritySuccess, "✓ Undone: Add GDP\n"},
		{SeverityWarning, "! Careful\n"},
		{SeverityError, "✗ Undo failed\n"},
		{"unknown", "- Odd\n"},
	}

	messages := map[Severity]string{
		SeverityInfo:    "Nothing to undo",
		SeveritySuccess: "Undone: Add GDP",
		SeverityWarning: "Careful",
		SeverityError:   "Undo failed",
		"unknown":       "Odd",
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			var buf bytes.Buffer
			NewCLINotifier(&buf, false).Notify(messages[tt.severity], tt.severity, time.Second)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewLogNotifier(l).Notify("Undo failed", SeverityError, 3*time.Second)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Undo failed", entry["msg"])
	assert.Equal(t, "error", entry["severity"])
	assert.Equal(t, float64(3000), entry["duration_ms"])
}

func TestRecorder(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecorderWithClock(func() time.Time { return now })

	_, ok := r.Last()
	assert.False(t, ok)

	r.Notify("first", SeverityInfo, time.Second)
	r.Notify("second", SeverityError, 2*time.Second)

	notices := r.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, "first", notices[0].Message)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, SeverityError, last.Severity)

	_, ok = r.Active(now.Add(time.Second))
	assert.True(t, ok)
	_, ok = r.Active(now.Add(2 * time.Second))
	assert.False(t, ok)

	r.Reset()
	assert.Empty(t, r.Notices())
}

// =============================================================================
// HTTP Client Tests
// =============================================================================

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient()
	assert.NotNil(t, client)
	assert.Equal(t, config.Global.HTTP.MaxRetries, client.maxRetries)
}

func TestHTTPClientDelay(t *testing.T) {
	c := NewHTTPClientWithConfig(config.HTTPConfig{RetryDelays: []time.Duration{0, time.Second, 5 * time.Second}})
	assert.Equal(t, time.Duration(0), c.delay(0))
	assert.Equal(t, time.Second, c.delay(1))
	assert.Equal(t, 5*time.Second, c.delay(4))

	empty := NewHTTPClientWithConfig(config.HTTPConfig{})
	assert.Equal(t, time.Duration(0), empty.delay(3))
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"job":"42"}`))
	}))
	defer srv.Close()

	res := fastClient(3).Send(context.Background(), srv.URL, "application/json", []byte(`{}`))
	require.NoError(t, res.Error)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, `{"job":"42"}`, string(res.Body))
}

func TestHTTPClientStopsOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	res := fastClient(3).Send(context.Background(), srv.URL, "application/json", []byte(`{}`))
	require.Error(t, res.Error)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, 1, res.Attempts)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestHTTPClientGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := fastClient(2).Send(context.Background(), srv.URL, "application/json", []byte(`{}`))
	require.Error(t, res.Error)
	assert.Equal(t, 3, res.Attempts)
	assert.Contains(t, res.Error.Error(), "HTTP 500")
}

func TestHTTPClientCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClientWithConfig(config.HTTPConfig{
		Timeout:     time.Second,
		MaxRetries:  3,
		RetryDelays: []time.Duration{0, time.Hour},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := c.Send(ctx, srv.URL, "application/json", []byte(`{}`))
	assert.ErrorIs(t, res.Error, context.DeadlineExceeded)
	assert.Equal(t, 2, res.Attempts)
}

// =============================================================================
// Scoring Client Tests
// =============================================================================

func sampleExport() model.ExportDocument {
	ts := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	return model.ExportDocument{
		ID:         "exp-1",
		Version:    model.ExportVersion,
		ExportedAt: ts,
		Count:      1,
		Changes: []model.ExportedAction{{
			ID:        "act-1",
			Kind:      model.KindAddIndicator,
			Timestamp: ts,
			Label:     "Add GDP",
			Delta:     model.IndicatorDelta{Code: "GDP", Name: "GDP"},
		}},
	}
}

func TestNewScoringClient(t *testing.T) {
	_, err := NewScoringClient("", nil)
	assert.ErrorIs(t, err, errors.ErrNoScoringURL)

	_, err = NewScoringClient("ftp://scoring", nil)
	assert.True(t, errors.IsUserError(err))

	c, err := NewScoringClient("https://scoring.example.com/jobs", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://scoring.example.com/jobs", c.URL())
}

func TestScoringSubmit(t *testing.T) {
	var received model.ExportDocument
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("queued"))
	}))
	defer srv.Close()

	c, err := NewScoringClient(srv.URL, fastClient(1))
	require.NoError(t, err)

	res, err := c.Submit(context.Background(), sampleExport())
	require.NoError(t, err)
	assert.Equal(t, "exp-1", res.ExportID)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "queued", res.Response)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "exp-1", received.ID)
	require.Len(t, received.Changes, 1)
	assert.Equal(t, model.IndicatorDelta{Code: "GDP", Name: "GDP"}, received.Changes[0].Delta)
}

func TestScoringSubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewScoringClient(srv.URL, fastClient(1))
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), sampleExport())
	require.Error(t, err)
	assert.True(t, errors.IsSystemError(err))
	assert.ErrorIs(t, err, errors.ErrScoringUnavailable)
	assert.True(t, strings.Contains(err.Error(), "scoring endpoint unavailable"))
}
