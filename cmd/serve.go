package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dharmalab/dilaget/internal/config"
	"github.com/dharmalab/dilaget/internal/handlers"
	"github.com/dharmalab/dilaget/internal/pages"
	"github.com/dharmalab/dilaget/internal/storage"
)

func newServeCmd(configPath *string) *cobra.Command {
	var (
		port         string
		downloadsDir string
		logFile      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a web server wrapping the downloader",
		Long: `Starts a small web interface on the specified port.

Paste a UV3 viewer URL into the form and the server downloads the page
at maximum resolution into a shared directory, hands back a download
link, and removes the file after the retention period.`,
		Example: `  # Start server on default port 8888
  dilaget serve

  # Custom port and downloads directory
  dilaget serve --port 3000 --downloads-dir /var/tmp/iiif_dl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Serve.Port = port
			}
			if downloadsDir != "" {
				cfg.Serve.DownloadsDir = downloadsDir
			}
			if logFile != "" {
				cfg.Serve.LogFile = logFile
			}

			if cfg.Serve.LogFile != "" {
				slog.SetDefault(slog.New(slog.NewTextHandler(&lumberjack.Logger{
					Filename:   cfg.Serve.LogFile,
					MaxSize:    10, // megabytes
					MaxBackups: 3,
					MaxAge:     28, // days
				}, nil)))
			}

			dir := cfg.Serve.DownloadsDir
			if dir == "" {
				dir = filepath.Join(os.TempDir(), "iiif_dl")
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			handler := handlers.New(pages.NewService(cfg), dir)

			janitor := storage.NewJanitor(dir, cfg.Serve.MaxAge.Std(), handler.JobStore())
			go janitor.Run(cmd.Context(), cfg.Serve.SweepInterval.Std())

			// Set up routes
			r := mux.NewRouter()
			r.HandleFunc("/api/download", handler.HandleDownload).Methods(http.MethodGet, http.MethodPost)
			r.HandleFunc("/downloads/{filename}", handler.HandleFile).Methods(http.MethodGet)
			r.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			}).Methods(http.MethodGet)
			r.HandleFunc("/", handler.HandleIndex).Methods(http.MethodGet)

			addr := ":" + cfg.Serve.Port
			server := &http.Server{
				Addr:    addr,
				Handler: r,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("dilaget interface available", "addr", addr, "downloads_dir", dir, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default 8888)")
	cmd.Flags().StringVar(&downloadsDir, "downloads-dir", "", "Directory for downloaded files (default $TMPDIR/iiif_dl)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to a rotating file instead of stderr")

	return cmd
}
