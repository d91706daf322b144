package alarmcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
)

// Repository defines persistence operations for the alarm cache.
type Repository interface {
	// Load returns the stored document or ErrNotFound. When the stored copy
	// cannot be decoded it returns ErrCorrupt together with an empty document
	// carrying the stored version, so a Save replaces the unreadable copy.
	Load(ctx context.Context) (*domain.Document, error)
	// Save stores the document if doc.Version still matches the stored copy.
	Save(ctx context.Context, doc *domain.Document) error
}

var (
	// ErrNotFound is returned when no cache document exists yet.
	ErrNotFound = errors.New("alarm cache not found")
	// ErrConflict is returned when the stored document changed since it was loaded.
	ErrConflict = errors.New("alarm cache changed concurrently")
	// ErrCorrupt is returned when the stored document is not a valid cache.
	ErrCorrupt = errors.New("alarm cache is corrupt")
)

// decode parses the stored JSON cache. A null or empty document is an empty cache.
func decode(data []byte) (domain.Cache, error) {
	cache := make(domain.Cache)
	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if cache == nil {
		cache = make(domain.Cache)
	}

	for name, entry := range cache {
		if entry == nil {
			delete(cache, name)
		}
	}

	return cache, nil
}

// corrupt returns an empty document that still carries the stored version.
func corrupt(version string, err error) (*domain.Document, error) {
	return &domain.Document{Cache: make(domain.Cache), Version: version}, err
}

func encode(cache domain.Cache) ([]byte, error) {
	if cache == nil {
		cache = make(domain.Cache)
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return nil, fmt.Errorf("encode alarm cache: %w", err)
	}

	return data, nil
}
