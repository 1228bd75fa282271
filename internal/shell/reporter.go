package shell

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MFE-Works/shell_layer/internal/boundary"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// ErrorReporter forwards render-phase failures to the mock API's error
// intake, the same channel the remotes themselves use.
type ErrorReporter struct {
	endpoint string
	client   *http.Client
	log      *logger.Logger
}

// NewErrorReporter creates a reporter posting to apiBase/api/errors.
// An empty apiBase disables reporting.
func NewErrorReporter(apiBase string, log *logger.Logger) *ErrorReporter {
	if log == nil {
		log = logger.NewDefault("reporter")
	}
	r := &ErrorReporter{log: log}
	if apiBase != "" {
		r.endpoint = apiBase + "/api/errors"
		r.client = &http.Client{Timeout: 5 * time.Second}
	}
	return r
}

// Report submits one failure. Best effort: reporting failures are logged
// and swallowed so they never affect the page being served.
func (r *ErrorReporter) Report(err error, ctx boundary.ErrorContext) {
	if r.endpoint == "" {
		return
	}

	payload := map[string]interface{}{
		"timestamp": ctx.OccurredAt.UnixMilli(),
		"type":      "render",
		"message":   err.Error(),
		"appName":   ctx.Remote,
		"severity":  "high",
		"props": map[string]interface{}{
			"export": ctx.Export,
			"phase":  ctx.Phase,
		},
	}
	body, merr := json.Marshal(payload)
	if merr != nil {
		return
	}

	go func() {
		resp, perr := r.client.Post(r.endpoint, "application/json", bytes.NewReader(body))
		if perr != nil {
			r.log.WithError(perr).Warn("error report not delivered")
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			r.log.WithField("status", resp.StatusCode).Warn("error report rejected")
		}
	}()
}
