package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/relay/internal/clock"
	"github.com/viant/relay/service/dao"
	"github.com/viant/relay/service/status"
)

// Service implements a filesystem-based status store. Each task's record is
// a single JSON document named <taskID>_status.json; Write replaces the
// document wholesale, so last writer wins.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.Mutex
}

var _ status.Store = (*Service)(nil)

// Write replaces the record for taskID wholesale.
func (s *Service) Write(ctx context.Context, taskID string, st status.Status, logs []string, retries int) error {
	if taskID == "" {
		return dao.ErrInvalidID
	}
	stamped := make([]string, 0, len(logs))
	for _, msg := range logs {
		stamped = append(stamped, status.Stamp(msg))
	}
	record := &status.Record{
		TaskID:    taskID,
		Status:    st,
		Retries:   retries,
		Logs:      stamped,
		UpdatedAt: clock.Now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload(ctx, taskID, record)
}

// AppendLog appends a timestamped message to the record, initializing an
// empty record when none exists.
func (s *Service) AppendLog(ctx context.Context, taskID, message string) error {
	if taskID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.load(ctx, taskID)
	if errors.Is(err, dao.ErrNotFound) {
		record = &status.Record{TaskID: taskID}
	} else if err != nil {
		return err
	}
	record.Logs = append(record.Logs, status.Stamp(message))
	record.UpdatedAt = clock.Now()
	return s.upload(ctx, taskID, record)
}

// Load returns the record for taskID.
func (s *Service) Load(ctx context.Context, taskID string) (*status.Record, error) {
	if taskID == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, taskID)
}

func (s *Service) load(ctx context.Context, taskID string) (*status.Record, error) {
	filePath := s.statusPath(taskID)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if status exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("status %s: %w", taskID, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}
	var record status.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data: %w", err)
	}
	return &record, nil
}

func (s *Service) upload(ctx context.Context, taskID string, record *status.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	filePath := s.statusPath(taskID)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save status to file %s: %w", filePath, err)
	}
	return nil
}

// statusPath returns the file path for a task's status record.
func (s *Service) statusPath(taskID string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s_status.json", taskID))
}

// New creates a new filesystem status store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)
	return &Service{basePath: basePath, fs: fs}, nil
}
