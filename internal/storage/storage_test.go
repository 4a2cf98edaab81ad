package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jjudge-oj/userapi/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestNewObjectStorageSelection(t *testing.T) {
	ctx := context.Background()

	_, err := NewObjectStorage(ctx, config.Config{})
	assert.True(t, errors.Is(err, ErrNoBackend))

	_, err = NewObjectStorage(ctx, config.Config{Storage: config.StorageConfig{Backend: "s3"}})
	assert.EqualError(t, err, `unknown object storage backend "s3"`)

	_, err = NewObjectStorage(ctx, config.Config{
		Storage: config.StorageConfig{Backend: "minio"},
		Minio:   config.MinioConfig{Endpoint: "localhost:9000"},
	})
	assert.EqualError(t, err, "minio access key and secret key are required")

	_, err = NewObjectStorage(ctx, config.Config{Storage: config.StorageConfig{Backend: "GCS"}})
	assert.EqualError(t, err, "gcs bucket is required")
}

func TestObjectStorageClose(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	var backends []ObjectStorage

	minioClient, err := NewMinioClient(config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "exports",
	})
	require.NoError(t, err)
	backends = append(backends, minioClient)

	gcsClient, err := NewGCSClient(context.Background(), config.GCSConfig{Bucket: "exports"},
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	backends = append(backends, gcsClient)

	for _, backend := range backends {
		assert.Equal(t, "exports", backend.Bucket())
		assert.NoError(t, backend.Close())
	}
}
