// Package status tracks the durable lifecycle state of each relayed task.
// Records are addressed by task ID and overwritten wholesale; the only
// read-modify-write operation is AppendLog, which must remain safe to call
// before any Write has occurred for that task.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/relay/internal/clock"
)

// Status represents a task lifecycle state.
type Status string

const (
	StatusReceived        Status = "received"
	StatusPendingApproval Status = "pending_manual_approval"
	StatusDispatched      Status = "dispatched"
	StatusApproved        Status = "approved_and_dispatched"
	StatusQueued          Status = "queued"
	StatusDone            Status = "done"
	StatusError           Status = "error"
	StatusConfirmReceived Status = "confirm_received"
)

// Record is the durable lifecycle state for one task. Logs are append-only;
// every other field is replaced on each Write.
type Record struct {
	TaskID    string    `json:"taskId"`
	Status    Status    `json:"status"`
	Retries   int       `json:"retries"`
	Logs      []string  `json:"logs"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists per-task status records with last-writer-wins semantics.
type Store interface {
	// Write replaces the record for taskID wholesale, stamping UpdatedAt.
	Write(ctx context.Context, taskID string, status Status, logs []string, retries int) error

	// AppendLog appends a timestamped message to the record's log trail,
	// initializing an empty record if none exists yet.
	AppendLog(ctx context.Context, taskID, message string) error

	// Load returns the record for taskID or an error wrapping dao.ErrNotFound.
	Load(ctx context.Context, taskID string) (*Record, error)
}

// Stamp prefixes a log message with the current timestamp.
func Stamp(message string) string {
	return fmt.Sprintf("[%s] %s", clock.Now().UTC().Format(time.RFC3339), message)
}
