package application

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/dfryer1193/imagecat/catalog/domain"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var _ domain.ImageCodec = (*ImagingCodec)(nil)

// ImagingCodec implements domain.ImageCodec on top of the imaging package.
// It can decode everything registered with the image package (including webp)
// but only encodes the formats imaging supports.
type ImagingCodec struct{}

func NewImagingCodec() *ImagingCodec {
	return &ImagingCodec{}
}

// DecodeDimensions reads the pixel size of an encoded image without decoding the pixels
func (c *ImagingCodec) DecodeDimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Resize scales the image to exactly width x height using Lanczos resampling.
// Aspect ratio is not preserved.
func (c *ImagingCodec) Resize(filePath string, data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width and height must be positive, got %dx%d", domain.ErrValidation, width, height)
	}

	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	return encode(filePath, data, imaging.Resize(img, width, height, imaging.Lanczos))
}

// Rotate turns the image counter-clockwise by angle degrees. The canvas grows to
// fit the rotated image and uncovered pixels are transparent.
func (c *ImagingCodec) Rotate(filePath string, data []byte, angle int) ([]byte, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	return encode(filePath, data, imaging.Rotate(img, float64(angle), color.Transparent))
}

func decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", domain.ErrDecode, err)
	}
	return img, nil
}

// encode writes img in the format named by the extension of filePath, or the
// format of the original bytes when the extension is not recognised
func encode(filePath string, original []byte, img image.Image) ([]byte, error) {
	format, err := encodeFormat(filePath, original)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("%w: failed to encode image: %w", domain.ErrDecode, err)
	}
	return buf.Bytes(), nil
}

func encodeFormat(filePath string, original []byte) (imaging.Format, error) {
	format, err := imaging.FormatFromFilename(filePath)
	if err == nil {
		return format, nil
	}
	if !errors.Is(err, imaging.ErrUnsupportedFormat) {
		return 0, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	detected := mimetype.Detect(original)
	format, err = imaging.FormatFromExtension(detected.Extension())
	if err != nil {
		return 0, fmt.Errorf("%w: cannot encode %s as %s", domain.ErrDecode, filePath, detected.String())
	}
	return format, nil
}
