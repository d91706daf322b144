package heartbeats

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
)

// FileRepository persists heartbeat rows to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu serialises read-modify-write cycles within the process.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// List returns every row ordered by server name. A missing file is an empty table.
func (r *FileRepository) List(_ context.Context) ([]*heartbeat.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return nil, err
	}

	sortByServer(records)

	return records, nil
}

// UpdateState writes the failure flags of record if the stored row still has wasFailed.
func (r *FileRepository) UpdateState(_ context.Context, record *heartbeat.Record, wasFailed bool) error {
	if record.Server == "" {
		return errEmptyServer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(records, func(rec *heartbeat.Record) bool {
		return rec.Server == record.Server
	})
	if idx < 0 || records[idx].IsFailed != wasFailed {
		return ErrConflict
	}

	records[idx].IsFailed = record.IsFailed
	records[idx].IsActive = record.IsActive

	return r.write(records)
}

// Touch stamps the heartbeat of server, creating the row when needed.
func (r *FileRepository) Touch(
	_ context.Context,
	server string,
	isPrimary *bool,
	at time.Time,
) (*heartbeat.Record, error) {
	if server == "" {
		return nil, errEmptyServer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(records, func(rec *heartbeat.Record) bool {
		return rec.Server == server
	})
	if idx < 0 {
		records = append(records, &heartbeat.Record{Server: server})
		idx = len(records) - 1
	}

	record := records[idx]
	record.LastHeartbeat = at.UnixMilli()

	if isPrimary != nil {
		record.IsPrimary = *isPrimary
	}

	if err = r.write(records); err != nil {
		return nil, err
	}

	return record.Clone(), nil
}

func (r *FileRepository) read() ([]*heartbeat.Record, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read heartbeat file: %w", err)
	}

	var records []*heartbeat.Record
	if err = json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("decode heartbeat file: %w", err)
	}

	return records, nil
}

func (r *FileRepository) write(records []*heartbeat.Record) error {
	sortByServer(records)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode heartbeat file: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write heartbeat file: %w", err)
	}

	return nil
}

func sortByServer(records []*heartbeat.Record) {
	slices.SortFunc(records, func(a, b *heartbeat.Record) int {
		return cmp.Compare(a.Server, b.Server)
	})
}
