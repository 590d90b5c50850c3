package iiif

import (
	"errors"
	"testing"
)

func TestParseInfoV2ProfileCaps(t *testing.T) {
	body := `{
		"@context": "http://iiif.io/api/image/2/context.json",
		"@id": "https://example.org/iiif/page",
		"protocol": "http://iiif.io/api/image",
		"width": 4000,
		"height": 6000,
		"tiles": [{"width": 1024, "scaleFactors": [1, 2, 4, 8]}],
		"profile": [
			"http://iiif.io/api/image/2/level2.json",
			{"maxWidth": 2000, "maxHeight": 3000, "maxArea": 6000000}
		]
	}`

	info, err := ParseInfo([]byte(body))
	if err != nil {
		t.Fatalf("ParseInfo: %v", err)
	}
	if info.Width != 4000 || info.Height != 6000 {
		t.Errorf("unexpected size %dx%d", info.Width, info.Height)
	}
	maxW, maxH, maxA := info.Caps()
	if maxW != 2000 || maxH != 3000 || maxA != 6000000 {
		t.Errorf("unexpected caps %d/%d/%d", maxW, maxH, maxA)
	}
	if info.TileSize() != 1024 {
		t.Errorf("expected tile size 1024, got %d", info.TileSize())
	}
	if info.DirectAllowed() {
		t.Error("direct should be capped by maxWidth < width")
	}
}

func TestParseInfoV3TopLevelCaps(t *testing.T) {
	body := `{
		"@context": "http://iiif.io/api/image/3/context.json",
		"width": 1500,
		"height": 2000,
		"maxWidth": 1000,
		"profile": "level2"
	}`

	info, err := ParseInfo([]byte(body))
	if err != nil {
		t.Fatalf("ParseInfo: %v", err)
	}
	maxW, _, _ := info.Caps()
	if maxW != 1000 {
		t.Errorf("expected maxWidth 1000, got %d", maxW)
	}
	if info.DirectAllowed() {
		t.Error("direct should be capped")
	}
	if info.TileSize() != DefaultTileSize {
		t.Errorf("expected default tile size, got %d", info.TileSize())
	}
}

func TestDirectAllowed(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want bool
	}{
		{
			name: "no caps",
			info: Info{Width: 4000, Height: 6000},
			want: true,
		},
		{
			name: "caps above intrinsic",
			info: Info{Width: 4000, Height: 6000, MaxWidth: 4000, MaxHeight: 6000},
			want: true,
		},
		{
			name: "maxHeight below intrinsic",
			info: Info{Width: 4000, Height: 6000, MaxHeight: 5999},
			want: false,
		},
		{
			name: "maxArea below intrinsic",
			info: Info{Width: 4000, Height: 6000, MaxArea: 23999999},
			want: false,
		},
		{
			name: "profile caps merged",
			info: Info{Width: 4000, Height: 6000, Profile: Profile{MaxWidth: 3999}},
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.DirectAllowed(); got != tc.want {
				t.Errorf("DirectAllowed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseInfoRejectsMissingSize(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no dimensions", body: `{"@id": "x"}`},
		{name: "zero width", body: `{"width": 0, "height": 100}`},
		{name: "not json", body: `<html>not found</html>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseInfo([]byte(tc.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTileSizeFallsBackToHeight(t *testing.T) {
	info := Info{Width: 100, Height: 100, Tiles: []Tile{{Height: 256}}}
	if got := info.TileSize(); got != 256 {
		t.Errorf("expected 256, got %d", got)
	}
}

func TestDescriptorErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &DescriptorError{Service: "https://example.org/iiif/page", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to reach the cause")
	}
}
