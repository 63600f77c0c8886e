package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/imagecat/catalog/application"
	"github.com/dfryer1193/imagecat/catalog/persistence"
	"github.com/dfryer1193/imagecat/internal/middleware"
	"github.com/dfryer1193/imagecat/internal/rest"
	"github.com/dfryer1193/imagecat/shared/db/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the image catalog HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(cfg.DBPath))
		if err := database.Connect(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := database.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		}()

		catalog := application.NewCatalogService(
			persistence.NewImageRepository(database.DB()),
			persistence.NewFileBlobStore(cfg.ImageDir),
			application.NewImagingCodec(),
		)

		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(middleware.LoggingMiddleware())
		router.Use(gin.CustomRecovery(middleware.HandlePanics()))
		rest.NewApi(router, catalog)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		}

		serveErr := make(chan error, 1)
		go func() {
			log.Info().Int("port", cfg.Port).Str("image_dir", cfg.ImageDir).Msg("Starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err, ok := <-serveErr:
			if ok {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return nil
		case <-quit:
		}

		log.Info().Msg("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		log.Info().Msg("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
