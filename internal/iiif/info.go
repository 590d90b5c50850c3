package iiif

import (
	"encoding/json"
	"fmt"
)

// DefaultTileSize is used when a descriptor declares no tiles.
const DefaultTileSize = 512

// Info is the Image API info.json descriptor. Width and height are the
// intrinsic size of the source image; the caps say how large a single
// request may be. Image API 2.x puts the caps inside the profile array,
// 3.x puts them at the top level; both are accepted.
type Info struct {
	Context  string  `json:"@context,omitempty"`
	ID       string  `json:"@id,omitempty"`
	Protocol string  `json:"protocol,omitempty"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Sizes    []Size  `json:"sizes,omitempty"`
	Tiles    []Tile  `json:"tiles,omitempty"`
	Profile  Profile `json:"profile,omitempty"`

	MaxWidth  int `json:"maxWidth,omitempty"`
	MaxHeight int `json:"maxHeight,omitempty"`
	MaxArea   int `json:"maxArea,omitempty"`
}

// Size is one of the precomputed sizes the service advertises.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Tile declares the tile dimensions and scale factors the service prefers.
type Tile struct {
	ScaleFactors []int `json:"scaleFactors,omitempty"`
	Width        int   `json:"width,omitempty"`
	Height       int   `json:"height,omitempty"`
}

// Profile is the 2.x profile entry: a compliance URI plus an optional
// object carrying the request caps. Only the caps are kept.
type Profile struct {
	MaxWidth  int
	MaxHeight int
	MaxArea   int
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var caps struct {
		MaxWidth  int `json:"maxWidth"`
		MaxHeight int `json:"maxHeight"`
		MaxArea   int `json:"maxArea"`
	}

	// 3.x: a bare compliance string, no caps here.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return nil
	}

	// 2.x: array mixing compliance URIs and cap objects.
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		for _, raw := range arr {
			if err := json.Unmarshal(raw, &caps); err != nil {
				continue
			}
			if caps.MaxWidth > 0 {
				p.MaxWidth = caps.MaxWidth
			}
			if caps.MaxHeight > 0 {
				p.MaxHeight = caps.MaxHeight
			}
			if caps.MaxArea > 0 {
				p.MaxArea = caps.MaxArea
			}
		}
		return nil
	}

	if err := json.Unmarshal(data, &caps); err == nil {
		p.MaxWidth = caps.MaxWidth
		p.MaxHeight = caps.MaxHeight
		p.MaxArea = caps.MaxArea
	}
	return nil
}

// Validate rejects descriptors without a usable intrinsic size.
func (i *Info) Validate() error {
	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("descriptor has no usable size (width=%d height=%d)", i.Width, i.Height)
	}
	return nil
}

// Caps returns the effective single-request limits, merging the 3.x
// top-level fields with the 2.x profile caps. Zero means unlimited.
func (i *Info) Caps() (maxWidth, maxHeight, maxArea int) {
	maxWidth, maxHeight, maxArea = i.MaxWidth, i.MaxHeight, i.MaxArea
	if maxWidth == 0 {
		maxWidth = i.Profile.MaxWidth
	}
	if maxHeight == 0 {
		maxHeight = i.Profile.MaxHeight
	}
	if maxArea == 0 {
		maxArea = i.Profile.MaxArea
	}
	return maxWidth, maxHeight, maxArea
}

// DirectAllowed reports whether a single full-region request at intrinsic
// size fits under the service caps. When it does not, a direct attempt can
// only return a downscaled image and the caller should stitch tiles.
func (i *Info) DirectAllowed() bool {
	maxWidth, maxHeight, maxArea := i.Caps()
	if maxWidth > 0 && maxWidth < i.Width {
		return false
	}
	if maxHeight > 0 && maxHeight < i.Height {
		return false
	}
	if maxArea > 0 && i.Width*i.Height > maxArea {
		return false
	}
	return true
}

// TileSize returns the service's preferred tile edge, falling back to
// DefaultTileSize when the descriptor declares none.
func (i *Info) TileSize() int {
	if len(i.Tiles) > 0 {
		if w := i.Tiles[0].Width; w > 0 {
			return w
		}
		if h := i.Tiles[0].Height; h > 0 {
			return h
		}
	}
	return DefaultTileSize
}

// ParseInfo decodes and validates an info.json body.
func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decoding info.json: %w", err)
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &info, nil
}

// DescriptorError reports a failure to fetch or parse an info.json
// descriptor. No image requests are made after it.
type DescriptorError struct {
	Service string
	Err     error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor unavailable for %s: %v", e.Service, e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// ManifestError reports a failure to fetch or interpret a Presentation
// manifest, including a canvas index outside the manifest's range.
type ManifestError struct {
	URL string
	Err error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.URL, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }
