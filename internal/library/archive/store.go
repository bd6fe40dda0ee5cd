package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	errors "github.com/Laisky/errors/v2"
	"github.com/minio/minio-go/v7"
)

// Store persists snapshot bytes under a storage key and returns the durable
// location. Any failure here must abort the run: a partial archive is not a
// valid snapshot.
type Store interface {
	Put(ctx context.Context, key string, data []byte) (location string, err error)
}

// MinioStore writes snapshots to object storage.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore creates a Store backed by the given bucket.
func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{
		client: client,
		bucket: bucket,
	}
}

// Put uploads the snapshot and returns its bucket-qualified location.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/zip"})
	if err != nil {
		return "", errors.Wrap(err, "put archive object")
	}

	return s.bucket + "/" + key, nil
}

// FSStore writes snapshots under a local directory.
type FSStore struct {
	root string
}

// NewFSStore creates a Store rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{root: dir}
}

// Put writes the snapshot file and returns its absolute path.
func (s *FSStore) Put(_ context.Context, key string, data []byte) (string, error) {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", errors.Wrap(err, "create archive dir")
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write archive file")
	}

	return target, nil
}
