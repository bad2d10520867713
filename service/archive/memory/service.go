package memory

import (
	"context"
	"sync"

	"github.com/viant/relay/service/archive"
	"github.com/viant/relay/service/dao"
)

// Service is an in-memory archive keeping success and failure records in
// separate, append-only areas.
type Service struct {
	mu      sync.RWMutex
	results map[string][]*archive.Record
	errors  map[string][]*archive.Record
}

var _ archive.Service = (*Service)(nil)

// New creates a new in-memory archive.
func New() *Service {
	return &Service{
		results: make(map[string][]*archive.Record),
		errors:  make(map[string][]*archive.Record),
	}
}

// SaveResult appends a record to the success archive.
func (s *Service) SaveResult(_ context.Context, record *archive.Record) error {
	return s.save(s.results, record)
}

// SaveError appends a record to the failure archive.
func (s *Service) SaveError(_ context.Context, record *archive.Record) error {
	return s.save(s.errors, record)
}

func (s *Service) save(area map[string][]*archive.Record, record *archive.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.TaskID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	area[record.TaskID] = append(area[record.TaskID], record)
	return nil
}

// ListResults returns success records for taskID, oldest first.
func (s *Service) ListResults(_ context.Context, taskID string) ([]*archive.Record, error) {
	return s.list(s.results, taskID)
}

// ListErrors returns failure records for taskID, oldest first.
func (s *Service) ListErrors(_ context.Context, taskID string) ([]*archive.Record, error) {
	return s.list(s.errors, taskID)
}

func (s *Service) list(area map[string][]*archive.Record, taskID string) ([]*archive.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := area[taskID]
	out := make([]*archive.Record, len(records))
	copy(out, records)
	return out, nil
}
