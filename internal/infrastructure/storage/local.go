// Package storage implements the file store on the local filesystem.
package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

// LocalStore saves uploaded files under a base directory. Storage keys are
// random file names that keep the original extension; callers never see the
// directory layout.
type LocalStore struct {
	baseDir string
}

// NewLocalStore ensures the base directory exists and returns the store.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create upload dir: %v", domain.ErrStorageUnavailable, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Save writes content to a fresh file and returns its storage key.
func (s *LocalStore) Save(_ context.Context, content io.Reader, filename string) (string, error) {
	key, err := generateKey(filepath.Ext(filename))
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(s.baseDir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create file: %v", domain.ErrStorageUnavailable, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%w: write file: %v", domain.ErrStorageUnavailable, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%w: close file: %v", domain.ErrStorageUnavailable, err)
	}
	return key, nil
}

// Delete removes the file behind a storage key. Deleting a key that is
// already gone is not an error.
func (s *LocalStore) Delete(_ context.Context, storageKey string) error {
	// Reject keys that try to escape the base directory.
	if storageKey == "" || strings.Contains(storageKey, "/") || strings.Contains(storageKey, "\\") {
		return fmt.Errorf("invalid storage key %q", storageKey)
	}

	if err := os.Remove(filepath.Join(s.baseDir, storageKey)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: remove file: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// generateKey returns a random hex name carrying the original extension.
func generateKey(ext string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate storage key: %w", err)
	}
	return fmt.Sprintf("%x%s", b, strings.ToLower(ext)), nil
}
