package iiif

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Manifest is the slice of a Presentation API 2.x manifest this tool needs:
// the first sequence's canvases and, per canvas, the image annotation that
// points at the Image API service.
type Manifest struct {
	Context   string     `json:"@context,omitempty"`
	ID        string     `json:"@id,omitempty"`
	Label     Label      `json:"label,omitempty"`
	Sequences []Sequence `json:"sequences"`
}

// Sequence holds the ordered canvases of a manifest.
type Sequence struct {
	Canvases []Canvas `json:"canvases"`
}

// Canvas is one page of the volume.
type Canvas struct {
	ID     string       `json:"@id,omitempty"`
	Label  Label        `json:"label,omitempty"`
	Width  int          `json:"width,omitempty"`
	Height int          `json:"height,omitempty"`
	Images []Annotation `json:"images"`
}

// Annotation is the painting annotation carrying the image resource.
type Annotation struct {
	Resource Resource `json:"resource"`
}

// Resource is the annotation's image resource with its service reference.
type Resource struct {
	ID      string     `json:"@id,omitempty"`
	Service ServiceRef `json:"service"`
}

// Canvas returns the canvas at the given 0-based index.
func (m *Manifest) Canvas(index int) (*Canvas, error) {
	if len(m.Sequences) == 0 {
		return nil, errors.New("manifest has no sequences")
	}
	canvases := m.Sequences[0].Canvases
	if len(canvases) == 0 {
		return nil, errors.New("manifest has no canvases")
	}
	if index < 0 || index >= len(canvases) {
		return nil, fmt.Errorf("canvas index %d out of range 0..%d", index, len(canvases)-1)
	}
	return &canvases[index], nil
}

// ImageService returns the canvas's Image API base URL, without a trailing
// slash.
func (c *Canvas) ImageService() (string, error) {
	if len(c.Images) == 0 {
		return "", errors.New("canvas has no images")
	}
	id := strings.TrimRight(c.Images[0].Resource.Service.ID, "/")
	if id == "" {
		return "", errors.New("no image service on canvas resource")
	}
	return id, nil
}

// Label is a Presentation API label, which arrives as a bare string, a
// @value object, a language map, or an array of any of those. Only the
// first usable value is kept.
type Label string

func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Label(s)
		return nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) == 0 {
			*l = ""
			return nil
		}
		return l.UnmarshalJSON(arr[0])
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		for _, key := range []string{"@value", "en", "zh"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var nested Label
			if err := nested.UnmarshalJSON(raw); err == nil && nested != "" {
				*l = nested
				return nil
			}
		}
	}

	*l = ""
	return nil
}

// ServiceRef is the Image API service reference on a resource. Manifests in
// the wild use both a single object and an array of objects, keyed by @id
// (2.x) or id (3.x).
type ServiceRef struct {
	ID string
}

func (s *ServiceRef) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) == 0 {
			return nil
		}
		return s.UnmarshalJSON(arr[0])
	}

	var obj struct {
		LegacyID string `json:"@id"`
		ID       string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	if obj.LegacyID != "" {
		s.ID = obj.LegacyID
	} else {
		s.ID = obj.ID
	}
	return nil
}
