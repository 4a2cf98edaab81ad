package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jjudge-oj/userapi/config"
)

// ObjectStorage defines the object operations the exporter relies on.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
	Close() error
}

const (
	BackendMinio = "minio"
	BackendGCS   = "gcs"
)

// ErrNoBackend is returned by NewObjectStorage when storage is not configured.
var ErrNoBackend = errors.New("no object storage backend configured")

// NewObjectStorage opens the backend selected by cfg.Storage.Backend and
// makes sure its bucket exists.
func NewObjectStorage(ctx context.Context, cfg config.Config) (ObjectStorage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "":
		return nil, ErrNoBackend
	case BackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case BackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown object storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := backend.EnsureBucket(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return backend, nil
}
