package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps files on the local filesystem under a base directory.
// References are paths relative to the process working directory so they can
// be served statically.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Store(_ context.Context, filename string, r io.Reader) (string, error) {
	key := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dstPath := filepath.Join(s.baseDir, key)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return dstPath, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	// Refuse to delete outside the upload directory.
	cleaned := filepath.Clean(ref)
	if !strings.HasPrefix(cleaned, filepath.Clean(s.baseDir)) {
		return fmt.Errorf("reference %q is outside the upload directory", ref)
	}
	if err := os.Remove(cleaned); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
