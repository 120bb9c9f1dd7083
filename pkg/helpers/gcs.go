package helpers

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSImageStore stores images in a GCS bucket keyed by owner id and folder.
// Re-uploading under the same id overwrites the previous object, so the
// public URL carries an updated timestamp for cache busting.
type GCSImageStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSImageStore(client *storage.Client, bucket string) *GCSImageStore {
	return &GCSImageStore{Client: client, Bucket: bucket}
}

func (s *GCSImageStore) Upload(ctx context.Context, r io.Reader, id, folder, contentType string) (string, error) {
	wc := s.Client.Bucket(s.Bucket).Object(objectPath(id, folder)).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?updatedAt=%d", PublicURL(s.Bucket, objectPath(id, folder)), time.Now().UnixMilli()), nil
}

func (s *GCSImageStore) Delete(ctx context.Context, id, folder string) error {
	return s.Client.Bucket(s.Bucket).Object(objectPath(id, folder)).Delete(ctx)
}

func objectPath(id, folder string) string {
	return folder + "/" + id
}

// PublicURL builds a public URL for an object (assuming public read access)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
