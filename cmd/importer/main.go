package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/app"
	"github.com/andresuchdata/joyeria/backend-go/internal/config"
	"github.com/andresuchdata/joyeria/backend-go/internal/drive"
	"github.com/andresuchdata/joyeria/backend-go/pkg/logger"
	"github.com/gorilla/mux"
)

// The importer pulls product catalogs from a shared Google Drive folder
// into the inventory. It runs apart from the API so Drive credentials stay
// off the main server.
func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	importer := drive.NewImporter(driveService, application.Inventory, cfg.Drive.DownloadDir)

	r := mux.NewRouter()
	drive.NewHandler(driveService, driveService, importer, cfg.Drive.FolderID).RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting drive importer")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start importer")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Importer forced to shutdown")
	}
}
