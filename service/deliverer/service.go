// Package deliverer performs outbound delivery of a task envelope to its
// reply endpoint. Delivery is a small explicit state machine: attempt 1 ->
// (success | retry) -> attempt 2 -> (success | failure). Each attempt is
// bounded by a per-attempt timeout and the sequence is terminal after two
// attempts; exactly one archive record (success or failure) is produced per
// sequence.
package deliverer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/viant/relay/model/task"
	"github.com/viant/relay/service/archive"
	"github.com/viant/relay/service/status"
	"github.com/viant/relay/tracing"
)

// DefaultTimeout bounds each delivery attempt.
const DefaultTimeout = 5 * time.Second

// Service delivers task envelopes over HTTP POST and records the outcome.
type Service struct {
	client  *http.Client
	status  status.Store
	archive archive.Service
	logger  *zap.Logger
	timeout time.Duration
}

// Option customizes the deliverer.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithHTTPClient sets the HTTP client used for both attempts.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.client = client }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New creates a new deliverer writing outcomes to the supplied status store
// and archive.
func New(statusStore status.Store, archiveService archive.Service, options ...Option) *Service {
	ret := &Service{
		status:  statusStore,
		archive: archiveService,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.client == nil {
		ret.client = &http.Client{}
	}
	return ret
}

// Deliver posts payload to the task's reply endpoint with exactly one retry
// and records the terminal outcome. When payload is nil the task itself is
// posted. The returned error mirrors the archived failure; callers running
// asynchronously may only log it - the status record is the authoritative
// outcome.
func (s *Service) Deliver(ctx context.Context, t *task.Task, payload interface{}) error {
	ctx, span := tracing.StartSpan(ctx, "deliverer.Deliver", "CLIENT")
	span.WithAttributes(map[string]string{"task.id": t.ID, "task.replyTo": t.ReplyTo})
	err := s.deliver(ctx, t, payload)
	tracing.EndSpan(span, err)
	return err
}

func (s *Service) deliver(ctx context.Context, t *task.Task, payload interface{}) error {
	logger := s.logger.With(zap.String("taskId", t.ID), zap.String("replyTo", t.ReplyTo))

	if !task.IsValidURL(t.ReplyTo) {
		msg := fmt.Sprintf("invalid or missing replyTo URL: %q", t.ReplyTo)
		logger.Warn("delivery aborted", zap.String("reason", msg))
		s.archiveFailure(ctx, t, msg, logger)
		s.writeStatus(ctx, t.ID, status.StatusError, []string{msg}, 0, logger)
		return fmt.Errorf("task %s: %s", t.ID, msg)
	}
	if payload == nil {
		payload = t
	}
	body, err := json.Marshal(payload)
	if err != nil {
		msg := fmt.Sprintf("failed to marshal payload: %v", err)
		s.archiveFailure(ctx, t, msg, logger)
		s.writeStatus(ctx, t.ID, status.StatusError, []string{msg}, 0, logger)
		return fmt.Errorf("task %s: %s", t.ID, msg)
	}

	s.writeStatus(ctx, t.ID, status.StatusQueued, []string{fmt.Sprintf("preparing to send to %s", t.ReplyTo)}, 0, logger)

	response, attemptErr := s.post(ctx, t.ReplyTo, body)
	if attemptErr == nil {
		logger.Info("delivery succeeded")
		s.archiveSuccess(ctx, t, response, logger)
		s.writeStatus(ctx, t.ID, status.StatusDone, []string{fmt.Sprintf("sent successfully to %s", t.ReplyTo)}, 0, logger)
		return nil
	}

	logger.Warn("delivery attempt failed, retrying once", zap.Error(attemptErr))
	if err := s.status.AppendLog(ctx, t.ID, fmt.Sprintf("retrying once after error: %v", attemptErr)); err != nil {
		logger.Error("failed to append status log", zap.Error(err))
	}

	response, retryErr := s.post(ctx, t.ReplyTo, body)
	if retryErr == nil {
		logger.Info("retry succeeded")
		s.archiveSuccess(ctx, t, response, logger)
		s.writeStatus(ctx, t.ID, status.StatusDone, []string{fmt.Sprintf("retry succeeded to %s", t.ReplyTo)}, 1, logger)
		return nil
	}

	msg := fmt.Sprintf("retry failed: %v", retryErr)
	logger.Error("delivery exhausted retries", zap.Error(retryErr))
	s.archiveFailure(ctx, t, msg, logger)
	s.writeStatus(ctx, t.ID, status.StatusError, []string{msg}, 2, logger)
	return fmt.Errorf("task %s: %s", t.ID, msg)
}

// post performs a single bounded POST attempt. Any non-2xx response is
// treated as a failure.
func (s *Service) post(ctx context.Context, target string, body []byte) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected response status: %s", resp.Status)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data), nil
	}
	return decoded, nil
}

// Persistence failures must not crash the pipeline; they are logged and the
// current sequence continues so that subsequent tasks proceed normally.

func (s *Service) archiveSuccess(ctx context.Context, t *task.Task, response interface{}, logger *zap.Logger) {
	if err := s.archive.SaveResult(ctx, archive.NewResult(t.ID, response)); err != nil {
		logger.Error("failed to archive delivery result", zap.Error(err))
	}
}

func (s *Service) archiveFailure(ctx context.Context, t *task.Task, message string, logger *zap.Logger) {
	if err := s.archive.SaveError(ctx, archive.NewFailure(t.ID, message, t)); err != nil {
		logger.Error("failed to archive delivery failure", zap.Error(err))
	}
}

func (s *Service) writeStatus(ctx context.Context, taskID string, st status.Status, logs []string, retries int, logger *zap.Logger) {
	if err := s.status.Write(ctx, taskID, st, logs, retries); err != nil {
		logger.Error("failed to write status", zap.String("status", string(st)), zap.Error(err))
	}
}
