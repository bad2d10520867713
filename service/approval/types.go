package approval

import (
	"time"

	"github.com/viant/relay/model/task"
)

// Event envelope published on the approval queue.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *Request | *Decision
	Headers map[string]string `json:"headers,omitempty"` // optional - tenant, correlation-id etc.
}

// Standard event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicRequestExpired  = "request.expired"
	TopicDecisionCreated = "decision.created"
)

// Request represents a task held for manual approval.
type Request struct {
	ID        string                 `json:"id"` // same as task ID, primary key
	Task      *task.Task             `json:"task"`
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt *time.Time             `json:"expiresAt,omitempty"` // optional deadline
	Meta      map[string]interface{} `json:"meta,omitempty"`      // free-form: tenant, user, environment, etc.
}

// Decision represents an approval decision.
type Decision struct {
	ID        string    `json:"id"` // same as request.ID
	Approved  bool      `json:"approved"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}
