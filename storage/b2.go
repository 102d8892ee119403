package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"
)

// B2Store keeps files in a Backblaze B2 bucket. References are download URLs
// of the form <base>/file/<bucket>/<key>.
type B2Store struct {
	client  *b2.Client
	bucket  *b2.Bucket
	baseURL string
}

func NewB2Store(ctx context.Context, keyID, appKey, bucketName, baseURL string) (*B2Store, error) {
	client, err := b2.NewClient(ctx, keyID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &B2Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *B2Store) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	key := "papers/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return fmt.Sprintf("%s/file/%s/%s", s.baseURL, s.bucket.Name(), key), nil
}

func (s *B2Store) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	key, err := s.objectKey(ref)
	if err != nil {
		return err
	}
	return s.bucket.Object(key).Delete(ctx)
}

func (s *B2Store) objectKey(ref string) (string, error) {
	marker := "/file/" + s.bucket.Name() + "/"
	idx := strings.Index(ref, marker)
	if idx < 0 {
		return "", fmt.Errorf("reference %q does not belong to bucket %s", ref, s.bucket.Name())
	}
	return ref[idx+len(marker):], nil
}
