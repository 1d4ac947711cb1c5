package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Folders group stored pictures by owner kind.
const (
	FolderUsers     = "users"
	FolderStores    = "stores"
	FolderProducts  = "products"
	normalizedImage = ".jpg"
)

// ImageStore persists uploaded pictures. Save returns the reference that is
// stored on the owning record; Delete accepts that same reference.
type ImageStore interface {
	Save(ctx context.Context, folder string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// LocalStore keeps images on disk below a single root directory.
type LocalStore struct {
	validator *PathValidator
	maxDim    int
}

func NewLocalStore(root string, maxDim int) (*LocalStore, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create image root: %w", err)
	}

	return &LocalStore{validator: validator, maxDim: maxDim}, nil
}

func (s *LocalStore) RootAbs() string {
	return s.validator.RootAbs()
}

func (s *LocalStore) Save(_ context.Context, folder string, data []byte) (string, error) {
	normalized, err := NormalizeImage(data, s.maxDim)
	if err != nil {
		return "", err
	}

	ref := folder + "/" + uuid.NewString() + normalizedImage
	resolved, err := s.validator.ResolvePath(ref)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(resolved), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(normalized); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close image: %w", err)
	}

	if err := os.Rename(tmpName, resolved); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("store image: %w", err)
	}

	return ref, nil
}

// Delete removes the image. A reference that no longer exists is not an error.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	resolved, err := s.validator.ResolvePath(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", ref, err)
	}
	return nil
}
