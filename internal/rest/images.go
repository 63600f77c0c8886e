package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dfryer1193/imagecat/api"
	"github.com/dfryer1193/imagecat/catalog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type imagesApi struct {
	catalog ImageCatalog
}

func (a *imagesApi) AddImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorDetail{Detail: fmt.Sprintf("file is required: %v", err)})
		return
	}

	f, err := header.Open()
	if err != nil {
		writeError(c, fmt.Errorf("%w: could not open upload: %w", domain.ErrStorage, err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, fmt.Errorf("%w: could not read upload: %w", domain.ErrStorage, err))
		return
	}

	img, err := a.catalog.Add(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toApiImage(img))
}

func (a *imagesApi) ResizeImage(c *gin.Context) {
	req := &api.ResizeRequest{}
	if err := bindParams(c, req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorDetail{Detail: err.Error()})
		return
	}

	if err := a.catalog.Resize(c.Request.Context(), req.FilePath, *req.Width, *req.Height); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.Message{Message: "Image resized successfully"})
}

func (a *imagesApi) RotateImage(c *gin.Context) {
	req := &api.RotateRequest{}
	if err := bindParams(c, req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorDetail{Detail: err.Error()})
		return
	}

	if err := a.catalog.Rotate(c.Request.Context(), req.FilePath, *req.Angle); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.Message{Message: "Image rotated successfully"})
}

func (a *imagesApi) ListImages(c *gin.Context) {
	images, err := a.catalog.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]api.ImageRecord, 0, len(images))
	for _, img := range images {
		out = append(out, toApiImage(img))
	}
	c.JSON(http.StatusOK, out)
}

// bindParams reads parameters from the query string when one is present and
// from the request body otherwise
func bindParams(c *gin.Context, req any) error {
	if c.Request.URL.RawQuery != "" {
		return c.ShouldBindQuery(req)
	}
	return c.ShouldBind(req)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorDetail{Detail: "Image not found"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorDetail{Detail: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, api.ErrorDetail{Detail: err.Error()})
	}
}

func toApiImage(img *domain.ImageRecord) api.ImageRecord {
	return api.ImageRecord{
		Name:      img.Name,
		Size:      img.Size,
		Width:     img.Width,
		Height:    img.Height,
		Type:      img.Type,
		DateAdded: img.DateAdded,
		FilePath:  img.FilePath,
	}
}
