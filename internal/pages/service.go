// Package pages runs the download pipeline for one page scan: manifest,
// descriptor, direct-or-stitched image, file on disk. The CLI and serve
// mode both go through it.
package pages

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/dharmalab/dilaget/internal/config"
	"github.com/dharmalab/dilaget/internal/dila"
	"github.com/dharmalab/dilaget/internal/iiif"
	"github.com/dharmalab/dilaget/internal/images"
)

// Service resolves identifiers to files on disk.
type Service struct {
	cfg        *config.Config
	client     *iiif.Client
	downloader *images.Downloader
}

// PageResult describes one completed download.
type PageResult struct {
	Path      string
	Width     int
	Height    int
	Source    images.Source
	ServiceID string
	Label     string
}

// NewService wires a Service from configuration.
func NewService(cfg *config.Config) *Service {
	client := iiif.NewClient(iiif.ClientOptions{
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.Timeout.Std(),
		SkipTLSVerify: config.SkipTLSVerify(),
		InsecureHosts: cfg.InsecureHosts,
	})
	return &Service{
		cfg:        cfg,
		client:     client,
		downloader: images.NewDownloader(client, cfg.JPEGQuality),
	}
}

// Download fetches the page named by id at maximum resolution and writes it
// to outPath. An empty outPath derives the filename from the canvas label.
func (s *Service) Download(ctx context.Context, id dila.Identifier, outPath string) (*PageResult, error) {
	manifestURL := dila.ManifestURL(s.cfg.BaseURL, id)
	slog.Info("fetching manifest", "url", manifestURL, "page", id.String())

	manifest, err := s.client.FetchManifest(ctx, manifestURL)
	if err != nil {
		return nil, err
	}
	canvas, err := manifest.Canvas(id.Canvas)
	if err != nil {
		return nil, &iiif.ManifestError{URL: manifestURL, Err: err}
	}
	service, err := canvas.ImageService()
	if err != nil {
		return nil, &iiif.ManifestError{URL: manifestURL, Err: err}
	}
	slog.Info("resolved image service", "service", service, "label", string(canvas.Label))

	result, err := s.downloader.FetchMax(ctx, service)
	if err != nil {
		return nil, err
	}

	if outPath == "" {
		outPath = id.OutputName(string(canvas.Label))
	}
	abs, err := filepath.Abs(outPath)
	if err != nil {
		return nil, &images.WriteError{Path: outPath, Err: err}
	}
	if err := images.WriteFile(abs, result.Bytes); err != nil {
		return nil, err
	}
	slog.Info("saved page", "path", abs, "width", result.Width, "height", result.Height, "source", result.Source)

	return &PageResult{
		Path:      abs,
		Width:     result.Width,
		Height:    result.Height,
		Source:    result.Source,
		ServiceID: service,
		Label:     string(canvas.Label),
	}, nil
}
