package blobs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/KrikINS/floor-ready/internal/core/blob"
)

// FirebaseStore writes objects to a Firebase Storage bucket.
type FirebaseStore struct {
	bucketName string
	bucket     *storage.BucketHandle
}

var _ blob.Store = (*FirebaseStore)(nil)

// NewFirebaseStore connects to bucket. An empty credentialsFile falls back
// to application default credentials.
func NewFirebaseStore(ctx context.Context, bucket, credentialsFile string) (*FirebaseStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase storage: %w", err)
	}

	handle, err := client.Bucket(bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucket, err)
	}

	return &FirebaseStore{bucketName: bucket, bucket: handle}, nil
}

// Upload streams body into the object at key.
func (s *FirebaseStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the storage.googleapis.com URL of key.
func (s *FirebaseStore) PublicURL(key string) string {
	return publicURL(s.bucketName, key)
}

func publicURL(bucket, key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "https://storage.googleapis.com/" + bucket + "/" + strings.Join(parts, "/")
}
