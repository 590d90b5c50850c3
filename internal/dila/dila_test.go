package dila

import (
	"errors"
	"testing"
)

func TestParseViewerURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		canon  string
		volume int
		canvas int
	}{
		{
			name:   "full viewer URL with fragment",
			url:    "https://dia.dila.edu.tw/uv3/index.html?id=Tv01p0300#?c=0&m=0&s=0&cv=309&xywh=-1280,-120,4096,2160",
			canon:  "T",
			volume: 1,
			canvas: 309,
		},
		{
			name:   "cv at fragment start",
			url:    "https://dia.dila.edu.tw/uv3/index.html?id=Tv55p0100#cv=12",
			canon:  "T",
			volume: 55,
			canvas: 12,
		},
		{
			name:   "no fragment defaults canvas to 0",
			url:    "https://dia.dila.edu.tw/uv3/index.html?id=Tv02p0001",
			canon:  "T",
			volume: 2,
			canvas: 0,
		},
		{
			name:   "multi letter canon",
			url:    "https://dia.dila.edu.tw/uv3/index.html?id=JMv12p0001#?cv=3",
			canon:  "JM",
			volume: 12,
			canvas: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseViewerURL(tt.url)
			if err != nil {
				t.Fatalf("ParseViewerURL failed: %v", err)
			}
			if id.Canon != tt.canon {
				t.Errorf("Expected canon %s, got %s", tt.canon, id.Canon)
			}
			if id.Volume != tt.volume {
				t.Errorf("Expected volume %d, got %d", tt.volume, id.Volume)
			}
			if id.Canvas != tt.canvas {
				t.Errorf("Expected canvas %d, got %d", tt.canvas, id.Canvas)
			}
		})
	}
}

func TestParseViewerURLErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "missing id parameter", url: "https://dia.dila.edu.tw/uv3/index.html#?cv=309"},
		{name: "id without volume", url: "https://dia.dila.edu.tw/uv3/index.html?id=T0300"},
		{name: "id with zero volume", url: "https://dia.dila.edu.tw/uv3/index.html?id=Tv00p0300"},
		{name: "empty id", url: "https://dia.dila.edu.tw/uv3/index.html?id="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseViewerURL(tt.url)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected *ParseError, got %T", err)
			}
		})
	}
}

func TestNewIdentifier(t *testing.T) {
	id, err := NewIdentifier("T", 1, 309)
	if err != nil {
		t.Fatalf("NewIdentifier failed: %v", err)
	}
	if id.Canon != "T" || id.Volume != 1 || id.Canvas != 309 {
		t.Errorf("Unexpected identifier: %+v", id)
	}

	invalid := []struct {
		name   string
		canon  string
		volume int
		canvas int
	}{
		{name: "empty canon", canon: "", volume: 1, canvas: 0},
		{name: "zero volume", canon: "T", volume: 0, canvas: 0},
		{name: "negative canvas", canon: "T", volume: 1, canvas: -1},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewIdentifier(tt.canon, tt.volume, tt.canvas); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestManifestURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		id       Identifier
		expected string
	}{
		{
			name:     "single digit volume is zero padded",
			base:     "https://dia.dila.edu.tw",
			id:       Identifier{Canon: "T", Volume: 1},
			expected: "https://dia.dila.edu.tw/iiif/T/v01/manifest.json",
		},
		{
			name:     "three digit volume keeps its width",
			base:     "https://dia.dila.edu.tw/",
			id:       Identifier{Canon: "X", Volume: 100},
			expected: "https://dia.dila.edu.tw/iiif/X/v100/manifest.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ManifestURL(tt.base, tt.id); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	id := Identifier{Canon: "T", Volume: 1, Canvas: 309}

	if got := id.OutputName("T01p0300"); got != "Tv01_T01p0300.jpg" {
		t.Errorf("Expected Tv01_T01p0300.jpg, got %s", got)
	}
	if got := id.OutputName(""); got != "Tv01_cv309.jpg" {
		t.Errorf("Expected Tv01_cv309.jpg, got %s", got)
	}
	if got := id.OutputName("a/b:c,d"); got != "Tv01_a_b_cd.jpg" {
		t.Errorf("Expected sanitized label, got %s", got)
	}
}
