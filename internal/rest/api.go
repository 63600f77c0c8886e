package rest

import (
	"context"

	"github.com/dfryer1193/imagecat/catalog/domain"
	"github.com/gin-gonic/gin"
)

// ImageCatalog is the set of catalog operations the HTTP surface exposes
type ImageCatalog interface {
	Add(ctx context.Context, filename, contentType string, data []byte) (*domain.ImageRecord, error)
	Resize(ctx context.Context, filePath string, width, height int) error
	Rotate(ctx context.Context, filePath string, angle int) error
	List(ctx context.Context) ([]*domain.ImageRecord, error)
}

func NewApi(router *gin.Engine, catalog ImageCatalog) {
	router.GET("/healthz", GetHealth)

	images := &imagesApi{catalog: catalog}
	imageV1 := router.Group("api/image")
	{
		imageV1.GET("", images.ListImages)
		imageV1.POST("/add", images.AddImage)
		imageV1.PUT("/change/size", images.ResizeImage)
		imageV1.PUT("/change/rotate", images.RotateImage)
	}
}
