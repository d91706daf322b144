package alarmcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cofrn/cofrn-monitor/internal/config"
	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
)

// FileRepository persists the alarm cache to a JSON file on disk.
// The version token is the SHA-256 of the file contents.
type FileRepository struct {
	// path is the filesystem location of the JSON cache file.
	path string
	// mu serialises access within the process.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the cache from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := r.read()
	if err != nil {
		return nil, err
	}

	cache, err := decode(contents)
	if err != nil {
		return corrupt(checksum(contents), err)
	}

	return &domain.Document{
		Cache:   cache,
		Version: checksum(contents),
	}, nil
}

// Save writes the cache to disk if the file still has the loaded version.
func (r *FileRepository) Save(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read()

	switch {
	case errors.Is(err, ErrNotFound):
		if doc.Version != "" {
			return ErrConflict
		}
	case err != nil:
		return err
	case checksum(current) != doc.Version:
		return ErrConflict
	}

	data, err := encode(doc.Cache)
	if err != nil {
		return err
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alarm cache file: %w", err)
	}

	doc.Version = checksum(data)

	return nil
}

func (r *FileRepository) read() ([]byte, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read alarm cache file: %w", err)
	}

	return contents, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
