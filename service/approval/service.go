package approval

import (
	"context"

	"github.com/viant/relay/service/messaging"
)

// Service defines the approval gate interface.
type Service interface {
	// RequestApproval parks a task pending an explicit decision.
	RequestApproval(ctx context.Context, r *Request) error

	// ListPending returns all requests without a recorded decision.
	ListPending(ctx context.Context) ([]*Request, error)

	// Decide records a decision for a pending request.
	Decide(ctx context.Context, id string, approved bool, reason string) (*Decision, error)

	// Decision returns the recorded decision for id, or an error wrapping
	// dao.ErrNotFound when none exists yet.
	Decision(ctx context.Context, id string) (*Decision, error)

	// Queue exposes the event fan-out.
	Queue() messaging.Queue[Event]
}
