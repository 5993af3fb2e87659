package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SavedImage is the externally-referencable result of storing an image:
// the public URL recorded on the ad and the store-side id.
type SavedImage struct {
	URL string
	ID  string
}

// ImageStore persists ad images. The storage engine itself is an external
// collaborator; ads only ever carry the reference returned here.
type ImageStore interface {
	Save(filename string, r io.Reader) (SavedImage, error)
}

// DiskStore is the local stand-in image store: files land under a configured
// directory and are served from a configured base URL.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the directory if needed and returns the store.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

// Save writes the image under a fresh uuid-derived name, keeping the original
// extension so the file stays servable with a sensible content type.
func (s *DiskStore) Save(filename string, r io.Reader) (SavedImage, error) {
	id := uuid.New().String()
	name := id + filepath.Ext(filename)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return SavedImage{}, fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return SavedImage{}, fmt.Errorf("failed to write image file: %w", err)
	}

	return SavedImage{
		URL: s.baseURL + "/" + name,
		ID:  id,
	}, nil
}
