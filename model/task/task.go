package task

import (
	"net/url"
	"time"
)

// Type selects the dispatch behaviour for a task. Unknown values are accepted
// by validation but routed to a warning at dispatch time.
type Type string

const (
	TypeLog        Type = "log"
	TypeCreateFile Type = "create file"
	TypeUpdateFile Type = "update file"
	TypeSend       Type = "send"
	TypeConfirm    Type = "confirm"
)

// Known reports whether t is one of the built-in task types.
func (t Type) Known() bool {
	switch t {
	case TypeLog, TypeCreateFile, TypeUpdateFile, TypeSend, TypeConfirm:
		return true
	}
	return false
}

// RequiresDelivery reports whether tasks of this type are forwarded to their
// reply endpoint.
func (t Type) RequiresDelivery() bool {
	return t == TypeSend || t == TypeConfirm
}

// Task is the unit of relayed work, including its payload and routing
// metadata. Field names are canonical camelCase; Normalize folds the
// snake_case aliases into them before a Task is ever constructed.
type Task struct {
	ID               string `json:"taskId"`
	OriginAgent      string `json:"originAgent,omitempty"`
	DestinationAgent string `json:"destinationAgent,omitempty"`
	Type             Type   `json:"taskType"`
	Prompt           string `json:"prompt,omitempty"`
	Filename         string `json:"filename,omitempty"`
	ReplyTo          string `json:"replyTo,omitempty"`
	ManualApproval   bool   `json:"manualApproval,omitempty"`
}

// Envelope wraps a task on its way to the reply endpoint.
type Envelope struct {
	Status    string    `json:"status"`
	Task      *Task     `json:"task"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnvelope builds the delivery envelope for a forwarded task.
func NewEnvelope(t *Task, at time.Time) *Envelope {
	return &Envelope{Status: "received", Task: t, Timestamp: at}
}

// IsValidURL reports whether raw parses as an absolute http or https URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
