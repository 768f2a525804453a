package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Store keeps audio clips in an object bucket and hands back the URL the
// content payload will carry.
type Store struct {
	mc     *minio.Client
	bucket string
}

func NewStore(mc *minio.Client, bucket string) *Store {
	return &Store{mc: mc, bucket: bucket}
}

// EnsureBucket creates the bucket on first boot.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

// Upload stores the clip under audio/YYYY/MM/DD/<uuid>-<hhmmss>.mp3.
func (s *Store) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	now := time.Now().UTC()
	name := fmt.Sprintf("audio/%s/%s-%s.mp3",
		now.Format("2006/01/02"), uuid.NewString(), now.Format("150405"))

	if contentType == "" {
		contentType = "audio/mpeg"
	}
	_, err := s.mc.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put audio object: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.mc.EndpointURL(), s.bucket, name), nil
}
