// Package dispatcher routes a normalized task to its type-specific handler.
// Handlers are registered in a capability map keyed by task type, so new
// types are additions rather than edits; unknown types produce a warning,
// never a failure.
package dispatcher

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/viant/relay/model/task"
	"github.com/viant/relay/tracing"
)

// Handler handles a single task type.
type Handler interface {
	Handle(ctx context.Context, t *task.Task) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, t *task.Task) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, t *task.Task) error {
	return f(ctx, t)
}

// Deliverer forwards a task envelope to its reply endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, t *task.Task, payload interface{}) error
}

// Service routes tasks to registered handlers.
type Service struct {
	mu       sync.RWMutex
	handlers map[task.Type]Handler
	logger   *zap.Logger
}

// Option customizes the dispatcher.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithHandler registers a handler for the given task type, overriding any
// built-in registration.
func WithHandler(t task.Type, h Handler) Option {
	return func(s *Service) { s.handlers[t] = h }
}

// New creates a dispatcher with the built-in handlers registered: log,
// file-mutation intent (create file / update file) and forward
// (send / confirm). Pass a nil deliverer to skip the forward registrations.
func New(deliverer Deliverer, options ...Option) *Service {
	ret := &Service{
		handlers: make(map[task.Type]Handler),
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	ret.registerBuiltins(deliverer)
	return ret
}

func (s *Service) registerBuiltins(deliverer Deliverer) {
	ensure := func(t task.Type, h Handler) {
		if _, ok := s.handlers[t]; !ok {
			s.handlers[t] = h
		}
	}
	ensure(task.TypeLog, logHandler(s.logger))
	ensure(task.TypeCreateFile, fileIntentHandler(s.logger))
	ensure(task.TypeUpdateFile, fileIntentHandler(s.logger))
	if deliverer != nil {
		forward := forwardHandler(deliverer, s.logger)
		ensure(task.TypeSend, forward)
		ensure(task.TypeConfirm, forward)
	}
}

// Register adds or replaces the handler for a task type.
func (s *Service) Register(t task.Type, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[t] = h
}

// Dispatch routes the task to its type handler. Unknown task types are
// logged as a warning and ignored; no failure is surfaced to the caller.
func (s *Service) Dispatch(ctx context.Context, t *task.Task) error {
	ctx, span := tracing.StartSpan(ctx, "dispatcher.Dispatch", "INTERNAL")
	span.WithAttributes(map[string]string{"task.id": t.ID, "task.type": string(t.Type)})

	s.mu.RLock()
	handler, ok := s.handlers[t.Type]
	s.mu.RUnlock()
	if !ok {
		s.logger.Warn("unknown task type",
			zap.String("taskId", t.ID),
			zap.String("taskType", string(t.Type)))
		tracing.EndSpan(span, nil)
		return nil
	}
	err := handler.Handle(ctx, t)
	tracing.EndSpan(span, err)
	return err
}
