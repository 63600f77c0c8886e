package domain

import (
	"context"
)

// ImageRecord is the catalogued metadata of one uploaded image.
// Size is the byte length of the original upload and is not recomputed when the
// blob is rewritten by a resize or rotate. Width and Height track resizes only.
type ImageRecord struct {
	ID        int64
	Name      string
	Size      int64
	Width     int
	Height    int
	Type      string
	DateAdded string
	FilePath  string
}

type ImageRepository interface {
	// Insert appends a new record and returns the id the store assigned to it
	Insert(ctx context.Context, img *ImageRecord) (int64, error)

	// UpdateDimensions overwrites width and height of every record stored at
	// filePath. Matching no record is not an error.
	UpdateDimensions(ctx context.Context, filePath string, width, height int) (int64, error)

	// ListAll returns every record in insertion order
	ListAll(ctx context.Context) ([]*ImageRecord, error)
}

// BlobStore holds the raw image bytes addressed by a path derived from the
// uploaded filename
type BlobStore interface {
	PathFor(name string) string
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
}

// ImageCodec decodes and transforms raster images held in memory
type ImageCodec interface {
	DecodeDimensions(data []byte) (width, height int, err error)
	Resize(filePath string, data []byte, width, height int) ([]byte, error)
	Rotate(filePath string, data []byte, angle int) ([]byte, error)
}
