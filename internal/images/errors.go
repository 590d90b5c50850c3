package images

import (
	"fmt"
	"strings"
)

// Region is one rectangular tile of the intrinsic canvas, in source pixels.
type Region struct {
	X, Y, W, H int
}

// String renders the region in the Image API's x,y,w,h form.
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H)
}

// DirectFetchError reports that every candidate of the full-region request
// ladder failed. The tile fallback runs after it.
type DirectFetchError struct {
	Service  string
	Attempts []string
	Err      error
}

func (e *DirectFetchError) Error() string {
	return fmt.Sprintf("direct full download failed for %s (tried %s): %v",
		e.Service, strings.Join(e.Attempts, ", "), e.Err)
}

func (e *DirectFetchError) Unwrap() error { return e.Err }

// TileFetchError reports that a region could not be fetched at its exact
// size through any candidate of the tile ladder.
type TileFetchError struct {
	Region Region
	Err    error
}

func (e *TileFetchError) Error() string {
	return fmt.Sprintf("fetching tile region %s: %v", e.Region, e.Err)
}

func (e *TileFetchError) Unwrap() error { return e.Err }

// WriteError reports a failure to persist the result.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
