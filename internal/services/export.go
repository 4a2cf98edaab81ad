package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jjudge-oj/userapi/internal/store"
)

const (
	exportContentType  = "application/x-ndjson"
	defaultExportBatch = 500
)

// ObjectWriter is the slice of object storage the exporter needs.
type ObjectWriter interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// DirectoryExporter writes every user, one JSON object per line, to object storage.
type DirectoryExporter struct {
	users     *UserService
	objects   ObjectWriter
	batchSize int
	now       func() time.Time
}

func NewDirectoryExporter(users *UserService, objects ObjectWriter) *DirectoryExporter {
	return &DirectoryExporter{
		users:     users,
		objects:   objects,
		batchSize: defaultExportBatch,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Export uploads the directory and returns the object key and user count.
func (e *DirectoryExporter) Export(ctx context.Context) (string, int, error) {
	var (
		buf   bytes.Buffer
		count int
	)
	enc := json.NewEncoder(&buf)

	filter := store.UserFilter{
		Ordering: []store.OrderTerm{{Field: "id"}},
		Limit:    e.batchSize,
	}
	for {
		users, err := e.users.List(ctx, filter)
		if err != nil {
			return "", 0, fmt.Errorf("list users: %w", err)
		}
		for _, user := range users {
			if err := enc.Encode(user); err != nil {
				return "", 0, err
			}
		}
		count += len(users)
		if len(users) < e.batchSize {
			break
		}
		filter.Offset += e.batchSize
	}

	key := fmt.Sprintf("exports/users-%s.jsonl", e.now().Format("20060102T150405Z"))
	if err := e.objects.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), exportContentType); err != nil {
		return "", 0, fmt.Errorf("upload export: %w", err)
	}
	return key, count, nil
}
