package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/viant/relay/internal/clock"
	"github.com/viant/relay/model/task"
	"github.com/viant/relay/service/approval"
	approvalmem "github.com/viant/relay/service/approval/memory"
	"github.com/viant/relay/service/archive"
	archivefs "github.com/viant/relay/service/archive/fs"
	archivemem "github.com/viant/relay/service/archive/memory"
	"github.com/viant/relay/service/dao"
	taskfs "github.com/viant/relay/service/dao/task/fs"
	taskmem "github.com/viant/relay/service/dao/task/memory"
	"github.com/viant/relay/service/deliverer"
	"github.com/viant/relay/service/dispatcher"
	"github.com/viant/relay/service/status"
	statusfs "github.com/viant/relay/service/status/fs"
	statusmem "github.com/viant/relay/service/status/memory"
	"github.com/viant/relay/tracing"
)

type handlerRegistration struct {
	taskType task.Type
	handler  dispatcher.Handler
}

// Service is the relay pipeline façade. It wires the normalizer/validator,
// approval gate, dispatcher, outbound deliverer and the durable status and
// archive stores behind three operations: Submit, Approve and Confirm.
type Service struct {
	config    *Config
	logger    *zap.Logger
	tasks     dao.Service[string, task.Task]
	status    status.Store
	archive   archive.Service
	approvals approval.Service

	dispatcher *dispatcher.Service
	deliverer  *deliverer.Service

	httpClient      *http.Client
	deliveryTimeout time.Duration
	extraHandlers   []handlerRegistration
	syncDispatch    bool

	inflight sync.WaitGroup
}

// Receipt is the synchronous result of a pipeline operation. It reports
// acceptance, never the eventual delivery outcome - that is observed through
// the status record.
type Receipt struct {
	Status    status.Status `json:"status"`
	TaskID    string        `json:"taskId"`
	Timestamp time.Time     `json:"timestamp"`
}

// New creates a relay service. Memory-backed stores are used for anything
// not supplied via options.
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.deliverer = deliverer.New(s.status, s.archive,
		deliverer.WithLogger(s.logger),
		deliverer.WithTimeout(s.deliveryTimeout),
		deliverer.WithHTTPClient(s.httpClient))
	dispatcherOptions := []dispatcher.Option{dispatcher.WithLogger(s.logger)}
	for _, registration := range s.extraHandlers {
		dispatcherOptions = append(dispatcherOptions, dispatcher.WithHandler(registration.taskType, registration.handler))
	}
	s.dispatcher = dispatcher.New(s.deliverer, dispatcherOptions...)
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.deliveryTimeout == 0 && s.config.Delivery.TimeoutMs > 0 {
		s.deliveryTimeout = time.Duration(s.config.Delivery.TimeoutMs) * time.Millisecond
	}
	if s.tasks == nil {
		s.tasks = taskmem.New()
	}
	if s.status == nil {
		s.status = statusmem.New()
	}
	if s.archive == nil {
		s.archive = archivemem.New()
	}
	if s.approvals == nil {
		s.approvals = approvalmem.New()
	}
}

// NewFromConfig creates a relay service from configuration. When
// cfg.BaseURL is set the task, status and archive stores are filesystem
// backed under that location; otherwise the memory implementations apply.
func NewFromConfig(cfg *Config, options ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ret := []Option{WithConfig(cfg)}
	if cfg.BaseURL != "" {
		tasks, err := taskfs.New(cfg.BaseURL + "/tasks")
		if err != nil {
			return nil, err
		}
		statusStore, err := statusfs.New(cfg.BaseURL + "/task-status")
		if err != nil {
			return nil, err
		}
		archiveStore, err := archivefs.New(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		ret = append(ret, WithTaskDAO(tasks), WithStatusStore(statusStore), WithArchiveService(archiveStore))
	}
	return New(append(ret, options...)...), nil
}

// Submit runs the intake pipeline for a raw task object: normalize,
// validate, persist, gate on manual approval and - unless held - dispatch.
// Delivery outcome never blocks the returned receipt; validation failures
// surface as *task.ValidationError.
func (s *Service) Submit(ctx context.Context, raw map[string]interface{}) (*Receipt, error) {
	ctx, span := tracing.StartSpan(ctx, "relay.Submit", "SERVER")
	receipt, err := s.submit(ctx, raw)
	tracing.EndSpan(span, err)
	return receipt, err
}

func (s *Service) submit(ctx context.Context, raw map[string]interface{}) (*Receipt, error) {
	normalized := task.Normalize(raw)
	if err := task.Validate(normalized); err != nil {
		s.logger.Warn("task validation failed",
			zap.String("taskId", normalized.ID),
			zap.Error(err))
		return nil, err
	}
	if err := s.tasks.Save(ctx, normalized); err != nil {
		s.logger.Error("failed to persist task", zap.String("taskId", normalized.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to persist task %s: %w", normalized.ID, err)
	}
	now := clock.Now()
	s.writeStatus(ctx, normalized.ID, status.StatusReceived, []string{"task received"}, 0)

	if normalized.ManualApproval {
		if err := s.approvals.RequestApproval(ctx, &approval.Request{ID: normalized.ID, Task: normalized, CreatedAt: now}); err != nil {
			return nil, fmt.Errorf("failed to park task %s for approval: %w", normalized.ID, err)
		}
		s.writeStatus(ctx, normalized.ID, status.StatusPendingApproval, []string{"awaiting manual approval"}, 0)
		return &Receipt{Status: status.StatusPendingApproval, TaskID: normalized.ID, Timestamp: now}, nil
	}

	s.writeStatus(ctx, normalized.ID, status.StatusDispatched, []string{"dispatching"}, 0)
	s.dispatch(ctx, normalized)
	return &Receipt{Status: status.StatusDispatched, TaskID: normalized.ID, Timestamp: now}, nil
}

// Approve releases a task previously held for manual approval: the
// persisted task is loaded by ID, dispatched and delivered. An unknown task
// ID surfaces as an error wrapping dao.ErrNotFound.
func (s *Service) Approve(ctx context.Context, taskID string) (*Receipt, error) {
	ctx, span := tracing.StartSpan(ctx, "relay.Approve", "SERVER")
	receipt, err := s.approve(ctx, taskID)
	tracing.EndSpan(span, err)
	return receipt, err
}

func (s *Service) approve(ctx context.Context, taskID string) (*Receipt, error) {
	if taskID == "" {
		return nil, dao.ErrInvalidID
	}
	persisted, err := s.tasks.Load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	// The decision record is advisory; the persisted task is authoritative.
	if _, err := s.approvals.Decide(ctx, taskID, true, "approved"); err != nil {
		s.logger.Debug("approval decision not recorded", zap.String("taskId", taskID), zap.Error(err))
	}
	s.writeStatus(ctx, taskID, status.StatusApproved, []string{"approved, dispatching"}, 0)
	s.dispatch(ctx, persisted)
	return &Receipt{Status: status.StatusApproved, TaskID: taskID, Timestamp: clock.Now()}, nil
}

// Confirm ingests a task reply payload and persists it as an archive-style
// record. A missing task ID is derived from the submission timestamp.
func (s *Service) Confirm(ctx context.Context, payload map[string]interface{}) (*Receipt, error) {
	ctx, span := tracing.StartSpan(ctx, "relay.Confirm", "SERVER")
	receipt, err := s.confirm(ctx, payload)
	tracing.EndSpan(span, err)
	return receipt, err
}

func (s *Service) confirm(ctx context.Context, payload map[string]interface{}) (*Receipt, error) {
	normalized := task.Normalize(payload)
	taskID := normalized.ID
	now := clock.Now()
	if taskID == "" {
		taskID = fmt.Sprintf("confirm-%s", now.UTC().Format("20060102T150405.000000000"))
	}
	if err := s.archive.SaveResult(ctx, archive.NewConfirm(taskID, payload)); err != nil {
		s.logger.Error("failed to archive confirm payload", zap.String("taskId", taskID), zap.Error(err))
		return nil, fmt.Errorf("failed to archive confirm for %s: %w", taskID, err)
	}
	if err := s.status.AppendLog(ctx, taskID, "confirm received"); err != nil {
		s.logger.Error("failed to append status log", zap.String("taskId", taskID), zap.Error(err))
	}
	return &Receipt{Status: status.StatusConfirmReceived, TaskID: taskID, Timestamp: now}, nil
}

// Status returns the status record for a task.
func (s *Service) Status(ctx context.Context, taskID string) (*status.Record, error) {
	return s.status.Load(ctx, taskID)
}

// PendingApprovals lists tasks currently held by the approval gate.
func (s *Service) PendingApprovals(ctx context.Context) ([]*approval.Request, error) {
	return s.approvals.ListPending(ctx)
}

// Approvals exposes the approval gate.
func (s *Service) Approvals() approval.Service { return s.approvals }

// Archive exposes the delivery outcome archive.
func (s *Service) Archive() archive.Service { return s.archive }

// Dispatcher exposes the dispatch table for extension handler registration.
func (s *Service) Dispatcher() *dispatcher.Service { return s.dispatcher }

// Wait blocks until all in-flight background dispatches complete.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// dispatch routes the task, by default on a background goroutine so the
// submission response is never blocked by delivery; the dispatch error is
// observable only through the status and archive records.
func (s *Service) dispatch(ctx context.Context, t *task.Task) {
	if s.syncDispatch {
		if err := s.dispatcher.Dispatch(ctx, t); err != nil {
			s.logger.Warn("dispatch failed", zap.String("taskId", t.ID), zap.Error(err))
		}
		return
	}
	s.inflight.Add(1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer s.inflight.Done()
		if err := s.dispatcher.Dispatch(ctx, t); err != nil {
			s.logger.Warn("dispatch failed", zap.String("taskId", t.ID), zap.Error(err))
		}
	}()
}

func (s *Service) writeStatus(ctx context.Context, taskID string, st status.Status, logs []string, retries int) {
	if err := s.status.Write(ctx, taskID, st, logs, retries); err != nil {
		s.logger.Error("failed to write status",
			zap.String("taskId", taskID),
			zap.String("status", string(st)),
			zap.Error(err))
	}
}

// IsNotFound reports whether err denotes a missing task or record.
func IsNotFound(err error) bool {
	return errors.Is(err, dao.ErrNotFound)
}
