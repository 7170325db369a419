package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/skillsenselab/interviewd/logger"
)

// ObjectInfo contains metadata about a stored artifact.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the interface for artifact storage backends.
type Store interface {
	// Put writes data from reader to the given key.
	Put(ctx context.Context, key string, reader io.Reader) error

	// Get returns a reader for the object at the given key.
	// The caller closes the returned ReadCloser.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at the given key. Deleting a key that
	// does not exist is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a URL locating the object at the given key.
	URL(ctx context.Context, key string) (string, error)

	// List returns metadata for all objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// New creates a Store for the backend selected by cfg.
func New(cfg Config, log *logger.Logger) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := log.WithComponent("storage")
	l.Info("initializing artifact storage", map[string]interface{}{"backend": cfg.Backend})

	switch cfg.Backend {
	case BackendLocal:
		return NewLocal(cfg.BasePath)
	case BackendS3:
		return NewS3(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", cfg.Backend)
	}
}

// PutBytes writes an in-memory document to the store.
func PutBytes(ctx context.Context, s Store, key string, data []byte) error {
	return s.Put(ctx, key, bytes.NewReader(data))
}

// GetBytes reads a whole object into memory.
func GetBytes(ctx context.Context, s Store, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
