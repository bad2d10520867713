package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/relay/service/archive"
	"github.com/viant/relay/service/dao"
)

const (
	resultsFolder = "results"
	errorsFolder  = "errors"
)

// Service implements a filesystem-based archive. Success records land under
// <base>/results as <taskID>_<timestamp>.json, failure records under
// <base>/errors as <taskID>_<timestamp>_error.json. Records are never
// rewritten.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.Mutex
}

var _ archive.Service = (*Service)(nil)

// SaveResult appends a record to the success archive.
func (s *Service) SaveResult(ctx context.Context, record *archive.Record) error {
	return s.save(ctx, resultsFolder, "", record)
}

// SaveError appends a record to the failure archive.
func (s *Service) SaveError(ctx context.Context, record *archive.Record) error {
	return s.save(ctx, errorsFolder, "_error", record)
}

func (s *Service) save(ctx context.Context, folder, suffix string, record *archive.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.TaskID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal archive record: %w", err)
	}
	// Colons are not universally valid in file names.
	stamp := record.Timestamp.UTC().Format("2006-01-02T15-04-05.000000000Z")
	filePath := path.Join(s.basePath, folder, fmt.Sprintf("%s_%s%s.json", record.TaskID, stamp, suffix))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save archive record to %s: %w", filePath, err)
	}
	return nil
}

// ListResults returns success records for taskID, oldest first.
func (s *Service) ListResults(ctx context.Context, taskID string) ([]*archive.Record, error) {
	return s.list(ctx, resultsFolder, taskID)
}

// ListErrors returns failure records for taskID, oldest first.
func (s *Service) ListErrors(ctx context.Context, taskID string) ([]*archive.Record, error) {
	return s.list(ctx, errorsFolder, taskID)
}

func (s *Service) list(ctx context.Context, folder, taskID string) ([]*archive.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	location := path.Join(s.basePath, folder)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil || !exists {
		return nil, err
	}
	objects, err := s.fs.List(ctx, location, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list archive records: %w", err)
	}
	var records []*archive.Record
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		if !strings.HasPrefix(object.Name(), taskID+"_") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var record archive.Record
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// New creates a new filesystem archive rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	for _, folder := range []string{resultsFolder, errorsFolder} {
		location := path.Join(basePath, folder)
		exists, _ := fs.Exists(ctx, location)
		if exists {
			continue
		}
		if err := fs.Create(ctx, location, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create archive directory %s: %w", location, err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)
	return &Service{basePath: basePath, fs: fs}, nil
}
