package conditions

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status summarizes a validation report
type Status string

const (
	StatusPassed        Status = "PASSED"
	StatusFailed        Status = "FAILED"
	StatusNotConfigured Status = "NOT_CONFIGURED"
)

// Envelope is the serialized form of a validation run
type Envelope struct {
	ReportID          string       `json:"report_id"`
	DocumentCategory  string       `json:"document_category"`
	Status            Status       `json:"validation_status"`
	NeedsManualReview bool         `json:"needs_manual_review"`
	GeneratedAt       time.Time    `json:"generated_at"`
	Broken            []Record     `json:"broken_conditions"`
	Evaluated         []Record     `json:"evaluated_conditions"`
	Errors            []*EvalError `json:"errors,omitempty"`
}

// NewEnvelope wraps a report. A nil report is NOT_CONFIGURED and, like a
// failed report, needs manual review.
func NewEnvelope(category string, report *Report) *Envelope {
	env := &Envelope{
		ReportID:         uuid.NewString(),
		DocumentCategory: category,
		GeneratedAt:      time.Now().UTC(),
	}

	switch {
	case report == nil:
		env.Status = StatusNotConfigured
	case report.Passed():
		env.Status = StatusPassed
	default:
		env.Status = StatusFailed
	}
	env.NeedsManualReview = env.Status != StatusPassed

	if report != nil {
		env.Broken = report.Broken
		env.Evaluated = report.Evaluated
		env.Errors = report.Errors
	}
	return env
}

// JSON returns the indented JSON encoding of the envelope
func (e *Envelope) JSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}
