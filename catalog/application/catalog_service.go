package application

import (
	"context"
	"fmt"
	"time"

	"github.com/dfryer1193/imagecat/catalog/domain"
	"github.com/rs/zerolog/log"
)

// DateAddedLayout is the layout of ImageRecord.DateAdded, in server local time
const DateAddedLayout = "2006-01-02 15:04:05.000000"

type CatalogService struct {
	repo  domain.ImageRepository
	blobs domain.BlobStore
	codec domain.ImageCodec

	now func() time.Time
}

func NewCatalogService(repo domain.ImageRepository, blobs domain.BlobStore, codec domain.ImageCodec) *CatalogService {
	return &CatalogService{
		repo:  repo,
		blobs: blobs,
		codec: codec,
		now:   time.Now,
	}
}

// Add stores the uploaded bytes under a path derived from filename and records
// their metadata. Uploads sharing a filename overwrite each other's blob but each
// gets its own record.
func (s *CatalogService) Add(ctx context.Context, filename, contentType string, data []byte) (*domain.ImageRecord, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}

	width, height, err := s.codec.DecodeDimensions(data)
	if err != nil {
		return nil, fmt.Errorf("could not read dimensions of %s: %w", filename, err)
	}

	path := s.blobs.PathFor(filename)
	if err := s.blobs.Write(ctx, path, data); err != nil {
		return nil, fmt.Errorf("could not store %s: %w", filename, err)
	}

	img := &domain.ImageRecord{
		Name:      filename,
		Size:      int64(len(data)),
		Width:     width,
		Height:    height,
		Type:      contentType,
		DateAdded: s.now().Local().Format(DateAddedLayout),
		FilePath:  path,
	}

	if _, err := s.repo.Insert(ctx, img); err != nil {
		log.Error().Err(err).Str("file_path", path).Msg("Blob written but metadata insert failed")
		return nil, fmt.Errorf("could not record %s: %w", filename, err)
	}

	log.Info().
		Int64("id", img.ID).
		Str("file_path", path).
		Int("width", width).
		Int("height", height).
		Msg("Image added")
	return img, nil
}

// Resize rescales the blob at filePath and records the new dimensions
func (s *CatalogService) Resize(ctx context.Context, filePath string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width and height must be positive, got %dx%d", domain.ErrValidation, width, height)
	}

	data, err := s.blobs.Read(ctx, filePath)
	if err != nil {
		return err
	}

	resized, err := s.codec.Resize(filePath, data, width, height)
	if err != nil {
		return fmt.Errorf("could not resize %s: %w", filePath, err)
	}

	if err := s.blobs.Write(ctx, filePath, resized); err != nil {
		return fmt.Errorf("could not store resized %s: %w", filePath, err)
	}

	affected, err := s.repo.UpdateDimensions(ctx, filePath, width, height)
	if err != nil {
		log.Error().Err(err).Str("file_path", filePath).Msg("Blob resized but metadata update failed")
		return fmt.Errorf("could not update dimensions of %s: %w", filePath, err)
	}

	if affected == 0 {
		log.Warn().Str("file_path", filePath).Msg("Resized blob has no catalog record")
	}
	log.Info().
		Str("file_path", filePath).
		Int("width", width).
		Int("height", height).
		Int64("records", affected).
		Msg("Image resized")
	return nil
}

// Rotate turns the blob at filePath counter-clockwise by angle degrees.
// Stored width and height are left as they were.
func (s *CatalogService) Rotate(ctx context.Context, filePath string, angle int) error {
	data, err := s.blobs.Read(ctx, filePath)
	if err != nil {
		return err
	}

	rotated, err := s.codec.Rotate(filePath, data, angle)
	if err != nil {
		return fmt.Errorf("could not rotate %s: %w", filePath, err)
	}

	if err := s.blobs.Write(ctx, filePath, rotated); err != nil {
		return fmt.Errorf("could not store rotated %s: %w", filePath, err)
	}

	log.Info().Str("file_path", filePath).Int("angle", angle).Msg("Image rotated")
	return nil
}

func (s *CatalogService) List(ctx context.Context) ([]*domain.ImageRecord, error) {
	return s.repo.ListAll(ctx)
}
