package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/relay/service/approval"
	"github.com/viant/relay/service/dao"
	"github.com/viant/relay/service/dao/store"
	"github.com/viant/relay/service/messaging"
	qmem "github.com/viant/relay/service/messaging/memory"
)

type service struct {
	// DAO-backed stores
	requests  dao.Service[string, approval.Request]
	decisions dao.Service[string, approval.Decision]

	// fan-out queue
	events messaging.Queue[approval.Event]
}

// key selectors - grab ID field
func reqKey(r *approval.Request) string  { return r.ID }
func decKey(d *approval.Decision) string { return d.ID }

// New creates an in-memory approval gate.
func New() approval.Service {
	return &service{
		requests:  store.NewMemoryStore[string, approval.Request](reqKey),
		decisions: store.NewMemoryStore[string, approval.Decision](decKey),
		events:    qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
	}
}

func (s *service) RequestApproval(ctx context.Context, r *approval.Request) error {
	if r == nil {
		return errors.New("invalid request")
	}
	if r.ID == "" {
		if r.Task == nil || r.Task.ID == "" {
			return dao.ErrInvalidID
		}
		r.ID = r.Task.ID
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	// Idempotent save - overwrite any previous copy to handle re-submissions
	// gracefully.
	if err := s.requests.Save(ctx, r); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	all, err := s.requests.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, r := range all {
		if _, err := s.decisions.Load(ctx, r.ID); errors.Is(err, dao.ErrNotFound) {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, id string, ok bool, reason string) (*approval.Decision, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	if _, err := s.requests.Load(ctx, id); err != nil {
		return nil, fmt.Errorf("approval request %s: %w", id, dao.ErrNotFound)
	}
	if d, _ := s.decisions.Load(ctx, id); d != nil {
		return nil, fmt.Errorf("approval request %s already decided", id)
	}
	d := &approval.Decision{
		ID:        id,
		Approved:  ok,
		Reason:    reason,
		DecidedAt: time.Now(),
	}
	if err := s.decisions.Save(ctx, d); err != nil {
		return nil, err
	}
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: d})
	return d, nil
}

func (s *service) Decision(ctx context.Context, id string) (*approval.Decision, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.decisions.Load(ctx, id)
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
