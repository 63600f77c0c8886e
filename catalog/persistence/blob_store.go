package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfryer1193/imagecat/catalog/domain"
)

var _ domain.BlobStore = (*FileBlobStore)(nil)

// DefaultImageDir is the blob root used when none is configured
const DefaultImageDir = "images"

// FileBlobStore keeps image bytes as plain files under a root directory
type FileBlobStore struct {
	root string
}

func NewFileBlobStore(root string) *FileBlobStore {
	if root == "" {
		root = DefaultImageDir
	}
	return &FileBlobStore{
		root: strings.TrimRight(root, "/"),
	}
}

// PathFor maps an uploaded filename to its storage path. The name is used as is.
// TODO: reject names containing ".." or path separators to close path traversal.
func (s *FileBlobStore) PathFor(name string) string {
	return s.root + "/" + name
}

// Write creates the parent directory if needed and replaces any existing file at path
func (s *FileBlobStore) Write(_ context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create image directory: %w", domain.ErrStorage, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write image file: %w", domain.ErrStorage, err)
	}

	return nil
}

// Read returns the bytes stored at path
func (s *FileBlobStore) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read image file: %w", domain.ErrStorage, err)
	}

	return data, nil
}
