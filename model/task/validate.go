package task

import (
	"fmt"
	"strings"
)

// Violation describes a single failed schema constraint, tagged with the
// offending field path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v *Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Path, v.Message)
}

// ValidationError aggregates every constraint violated by a submission.
// Validation is all-or-nothing: a non-nil error carries at least one
// violation and the task must not enter the pipeline.
type ValidationError struct {
	Violations []*Violation `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

// Messages returns one human-readable message per violated constraint.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.String())
	}
	return out
}

// Validate checks a normalized task against the relay schema. It returns a
// *ValidationError listing every violation, or nil when the task conforms.
//
// A missing replyTo on a delivery-type task passes schema validation on
// purpose - the dispatcher aborts such tasks with a warning instead (the
// reply endpoint may be attached by an external collaborator between
// submission and approval).
func Validate(t *Task) error {
	var violations []*Violation
	add := func(path, message string) {
		violations = append(violations, &Violation{Path: path, Message: message})
	}
	if t.ID == "" {
		add("/taskId", "is required")
	}
	if t.Type == "" {
		add("/taskType", "is required")
	}
	if t.Type.RequiresDelivery() {
		if t.OriginAgent == "" {
			add("/originAgent", fmt.Sprintf("is required for task type %q", t.Type))
		}
		if t.DestinationAgent == "" {
			add("/destinationAgent", fmt.Sprintf("is required for task type %q", t.Type))
		}
	}
	if t.ReplyTo != "" && !IsValidURL(t.ReplyTo) {
		add("/replyTo", "must be an absolute http or https URL")
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
