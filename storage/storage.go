// Package storage is the file storage boundary for manuscript files. A
// FileStore turns an uploaded stream into an opaque reference and can delete
// a stored file by that reference. Delete failures are never fatal to the
// lifecycle action that triggered them.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
)

type FileStore interface {
	// Store writes the file under a generated key and returns its reference.
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
	// Delete removes a previously stored file.
	Delete(ctx context.Context, ref string) error
}

// Init builds the FileStore selected by STORAGE_BACKEND (local|b2).
func Init(ctx context.Context) (FileStore, error) {
	backend := os.Getenv("STORAGE_BACKEND")
	switch backend {
	case "", "local":
		uploadPath := os.Getenv("UPLOAD_PATH")
		if uploadPath == "" {
			uploadPath = "./uploads"
		}
		return NewLocalStore(uploadPath)
	case "b2":
		keyID := os.Getenv("B2_KEY_ID")
		appKey := os.Getenv("B2_APP_KEY")
		bucket := os.Getenv("B2_BUCKET")
		baseURL := os.Getenv("B2_BASE_URL")
		if keyID == "" || appKey == "" || bucket == "" {
			return nil, fmt.Errorf("missing B2 env vars (B2_KEY_ID/B2_APP_KEY/B2_BUCKET)")
		}
		return NewB2Store(ctx, keyID, appKey, bucket, baseURL)
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
