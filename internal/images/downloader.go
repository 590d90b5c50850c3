package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/dharmalab/dilaget/internal/iiif"
)

// widthTolerance is how many pixels narrower than intrinsic a direct
// result may be before the stitcher takes over. Some services round the
// requested width down by a pixel or two.
const widthTolerance = 2

// resampleTolerance is the largest per-axis size mismatch a tile may show
// before its candidate URL is rejected instead of resampled. Mismatches
// within it are server rounding on pct requests.
const resampleTolerance = 2

// DefaultJPEGQuality is used when encoding stitched results.
const DefaultJPEGQuality = 95

// Source says how a result was obtained.
type Source string

const (
	SourceDirect   Source = "direct"
	SourceStitched Source = "stitched"
)

// Result is one downloaded image: direct results keep the bytes exactly as
// received, stitched results are freshly encoded JPEG.
type Result struct {
	Bytes  []byte
	Width  int
	Height int
	Source Source
}

// Downloader fetches the maximum-resolution rendition an Image API service
// can deliver, stitching tiles when single requests are capped.
type Downloader struct {
	client  *iiif.Client
	quality int
}

// NewDownloader wraps an iiif.Client. A quality of 0 means
// DefaultJPEGQuality.
func NewDownloader(client *iiif.Client, quality int) *Downloader {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	return &Downloader{client: client, quality: quality}
}

// FetchMax resolves the service descriptor, tries a direct full-resolution
// request, and falls back to tile stitching when the direct result cannot
// reach the intrinsic width.
func (d *Downloader) FetchMax(ctx context.Context, service string) (*Result, error) {
	info, err := d.client.FetchInfo(ctx, service)
	if err != nil {
		return nil, err
	}
	slog.Info("resolved descriptor", "service", service, "width", info.Width, "height", info.Height)

	var directErr error
	if info.DirectAllowed() {
		res, err := d.fetchDirect(ctx, service, info)
		if err == nil {
			if res.Width+widthTolerance >= info.Width {
				return res, nil
			}
			slog.Warn("direct result narrower than intrinsic width, stitching",
				"got", res.Width, "want", info.Width)
		} else {
			directErr = err
			slog.Warn("direct download failed, stitching", "err", err)
		}
	} else {
		slog.Info("single request capped below intrinsic size, stitching", "service", service)
	}

	res, err := d.stitch(ctx, service, info)
	if err != nil {
		if directErr != nil {
			return nil, errors.Join(err, directErr)
		}
		return nil, err
	}
	return res, nil
}

// fetchDirect walks the full-region ladder and returns the first candidate
// that fetches and decodes, even when it is narrower than intrinsic; the
// caller decides whether that is good enough.
func (d *Downloader) fetchDirect(ctx context.Context, service string, info *iiif.Info) (*Result, error) {
	attempts := iiif.DirectURLs(service, info.Width)
	var lastErr error
	for _, u := range attempts {
		body, err := d.client.FetchImage(ctx, u)
		if err != nil {
			lastErr = err
			continue
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
		if err != nil {
			lastErr = fmt.Errorf("decoding %s: %w", u, err)
			continue
		}
		slog.Debug("direct candidate succeeded", "url", u, "width", cfg.Width, "height", cfg.Height)
		return &Result{Bytes: body, Width: cfg.Width, Height: cfg.Height, Source: SourceDirect}, nil
	}
	return nil, &DirectFetchError{Service: service, Attempts: attempts, Err: lastErr}
}

// stitch partitions the intrinsic canvas into a tile grid, fetches every
// region at full scale and composes them into one JPEG.
func (d *Downloader) stitch(ctx context.Context, service string, info *iiif.Info) (*Result, error) {
	tileSize := info.TileSize()
	cols := (info.Width + tileSize - 1) / tileSize
	rows := (info.Height + tileSize - 1) / tileSize
	slog.Info("stitching tiles", "tile_size", tileSize, "cols", cols, "rows", rows)

	canvas := image.NewRGBA(image.Rect(0, 0, info.Width, info.Height))
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := col * tileSize
			y := row * tileSize
			w := min(tileSize, info.Width-x)
			h := min(tileSize, info.Height-y)

			tile, err := d.fetchTile(ctx, service, Region{X: x, Y: y, W: w, H: h})
			if err != nil {
				return nil, err
			}
			draw.Draw(canvas, image.Rect(x, y, x+w, y+h), tile, image.Point{}, draw.Src)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(d.quality)); err != nil {
		return nil, fmt.Errorf("encoding stitched image: %w", err)
	}
	return &Result{Bytes: buf.Bytes(), Width: info.Width, Height: info.Height, Source: SourceStitched}, nil
}

// fetchTile walks the tile ladder for one region. A decoded size off by no
// more than resampleTolerance per axis is Lanczos-resampled to the exact
// region size; a larger mismatch rejects the candidate.
func (d *Downloader) fetchTile(ctx context.Context, service string, r Region) (image.Image, error) {
	var lastErr error
	for _, u := range iiif.TileURLs(service, r.X, r.Y, r.W, r.H) {
		body, err := d.client.FetchImage(ctx, u)
		if err != nil {
			lastErr = err
			continue
		}
		img, err := imaging.Decode(bytes.NewReader(body))
		if err != nil {
			lastErr = fmt.Errorf("decoding %s: %w", u, err)
			continue
		}

		bounds := img.Bounds()
		if bounds.Dx() == r.W && bounds.Dy() == r.H {
			return img, nil
		}
		if abs(bounds.Dx()-r.W) <= resampleTolerance && abs(bounds.Dy()-r.H) <= resampleTolerance {
			slog.Debug("resampling tile to exact region size",
				"region", r.String(), "got_w", bounds.Dx(), "got_h", bounds.Dy())
			return imaging.Resize(img, r.W, r.H, imaging.Lanczos), nil
		}
		lastErr = fmt.Errorf("%s returned %dx%d for a %dx%d region", u, bounds.Dx(), bounds.Dy(), r.W, r.H)
	}
	return nil, &TileFetchError{Region: r, Err: lastErr}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
