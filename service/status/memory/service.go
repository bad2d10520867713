package memory

import (
	"context"
	"errors"

	"github.com/viant/relay/internal/clock"
	"github.com/viant/relay/service/dao"
	"github.com/viant/relay/service/dao/store"
	"github.com/viant/relay/service/status"
)

// Service is an in-memory status store backed by the generic DAO store.
type Service struct {
	records *store.MemoryStore[string, status.Record]
}

var _ status.Store = (*Service)(nil)

// New creates a new in-memory status store.
func New() *Service {
	return &Service{
		records: store.NewMemoryStore[string, status.Record](func(r *status.Record) string { return r.TaskID }),
	}
}

// Write replaces the record for taskID wholesale.
func (s *Service) Write(ctx context.Context, taskID string, st status.Status, logs []string, retries int) error {
	if taskID == "" {
		return dao.ErrInvalidID
	}
	stamped := make([]string, 0, len(logs))
	for _, msg := range logs {
		stamped = append(stamped, status.Stamp(msg))
	}
	return s.records.Save(ctx, &status.Record{
		TaskID:    taskID,
		Status:    st,
		Retries:   retries,
		Logs:      stamped,
		UpdatedAt: clock.Now(),
	})
}

// AppendLog appends a timestamped message, initializing an empty record when
// none exists.
func (s *Service) AppendLog(ctx context.Context, taskID, message string) error {
	if taskID == "" {
		return dao.ErrInvalidID
	}
	record, err := s.records.Load(ctx, taskID)
	if errors.Is(err, dao.ErrNotFound) {
		record = &status.Record{TaskID: taskID}
	} else if err != nil {
		return err
	}
	record.Logs = append(record.Logs, status.Stamp(message))
	record.UpdatedAt = clock.Now()
	return s.records.Save(ctx, record)
}

// Load returns the record for taskID.
func (s *Service) Load(ctx context.Context, taskID string) (*status.Record, error) {
	if taskID == "" {
		return nil, dao.ErrInvalidID
	}
	return s.records.Load(ctx, taskID)
}
