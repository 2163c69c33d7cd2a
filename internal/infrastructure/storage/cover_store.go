package storage

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

// GCSCoverStore uploads course covers into a single bucket.
type GCSCoverStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSCoverStore(client *storage.Client, bucket string) *GCSCoverStore {
	return &GCSCoverStore{Client: client, Bucket: bucket}
}

func (s *GCSCoverStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, r)
}
