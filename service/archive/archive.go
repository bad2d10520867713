// Package archive persists immutable snapshots of delivery outcomes.
// Success and failure records go to distinct areas; exactly one record is
// produced per completed delivery sequence.
package archive

import (
	"context"
	"time"

	"github.com/viant/relay/internal/clock"
)

// Outcome labels recorded on archive records.
const (
	OutcomeRelaySuccess    = "relay_success"
	OutcomeRelayFailed     = "relay_failed"
	OutcomeConfirmReceived = "confirm_received"
)

// Record is an immutable snapshot of a delivery outcome, keyed by task ID
// plus creation timestamp to avoid collision.
type Record struct {
	TaskID    string      `json:"taskId"`
	Outcome   string      `json:"status"`
	Response  interface{} `json:"response,omitempty"`
	Error     string      `json:"error,omitempty"`
	Task      interface{} `json:"task,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Service archives delivery outcomes.
type Service interface {
	// SaveResult appends a record to the success archive.
	SaveResult(ctx context.Context, record *Record) error

	// SaveError appends a record to the failure archive.
	SaveError(ctx context.Context, record *Record) error

	// ListResults returns success records for taskID, oldest first.
	ListResults(ctx context.Context, taskID string) ([]*Record, error)

	// ListErrors returns failure records for taskID, oldest first.
	ListErrors(ctx context.Context, taskID string) ([]*Record, error)
}

// NewResult builds a success record from a delivery response body.
func NewResult(taskID string, response interface{}) *Record {
	return &Record{
		TaskID:    taskID,
		Outcome:   OutcomeRelaySuccess,
		Response:  response,
		Timestamp: clock.Now(),
	}
}

// NewFailure builds a failure record carrying the error message and the
// original task.
func NewFailure(taskID, message string, original interface{}) *Record {
	return &Record{
		TaskID:    taskID,
		Outcome:   OutcomeRelayFailed,
		Error:     message,
		Task:      original,
		Timestamp: clock.Now(),
	}
}

// NewConfirm builds an archive-style record for an ingested task reply.
func NewConfirm(taskID string, payload interface{}) *Record {
	return &Record{
		TaskID:    taskID,
		Outcome:   OutcomeConfirmReceived,
		Response:  payload,
		Timestamp: clock.Now(),
	}
}
