package dila

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBaseURL is the DILA digital archive host serving the IIIF endpoints.
const DefaultBaseURL = "https://dia.dila.edu.tw"

// idPattern matches the leading canon/volume portion of a UV3 id parameter,
// e.g. "Tv01p0300" or "JMv12p0001".
var idPattern = regexp.MustCompile(`^([A-Za-z]+)v(\d+)`)

// canvasPattern finds the canvas index inside a UV3 fragment like
// "?c=0&m=0&s=0&cv=309&xywh=...".
var canvasPattern = regexp.MustCompile(`(?:^|[?&])cv=(\d+)`)

// Identifier names one page scan: a canon collection code, a volume within
// the canon, and a 0-based canvas index within the volume's manifest.
type Identifier struct {
	Canon  string
	Volume int
	Canvas int
}

// ParseError reports input that could not be resolved to an Identifier.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return "invalid page identifier: " + e.Reason
	}
	return fmt.Sprintf("invalid page identifier %q: %s", e.Input, e.Reason)
}

// NewIdentifier validates explicit canon/volume/canvas values.
func NewIdentifier(canon string, volume, canvas int) (Identifier, error) {
	if canon == "" {
		return Identifier{}, &ParseError{Reason: "canon code is required"}
	}
	if volume < 1 {
		return Identifier{}, &ParseError{Reason: "volume must be a positive number"}
	}
	if canvas < 0 {
		return Identifier{}, &ParseError{Reason: "canvas index must not be negative"}
	}
	return Identifier{Canon: canon, Volume: volume, Canvas: canvas}, nil
}

// ParseViewerURL extracts the canon, volume and canvas index from a UV3
// viewer URL such as
// https://dia.dila.edu.tw/uv3/index.html?id=Tv01p0300#?c=0&m=0&s=0&cv=309.
// The canvas index defaults to 0 when the fragment carries no cv parameter.
func ParseViewerURL(rawURL string) (Identifier, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Identifier{}, &ParseError{Input: rawURL, Reason: err.Error()}
	}

	id := u.Query().Get("id")
	if id == "" {
		return Identifier{}, &ParseError{Input: rawURL, Reason: "missing id query parameter"}
	}

	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return Identifier{}, &ParseError{Input: rawURL, Reason: fmt.Sprintf("id %q does not look like <canon>v<volume>", id)}
	}

	volume, err := strconv.Atoi(m[2])
	if err != nil || volume < 1 {
		return Identifier{}, &ParseError{Input: rawURL, Reason: fmt.Sprintf("invalid volume in id %q", id)}
	}

	canvas := 0
	if cv := canvasPattern.FindStringSubmatch(u.Fragment); cv != nil {
		canvas, _ = strconv.Atoi(cv[1])
	}

	return Identifier{Canon: m[1], Volume: volume, Canvas: canvas}, nil
}

// VolumeID formats the volume the way DILA's endpoints expect it, with two
// digit zero padding ("v01", "v12", "v100").
func (id Identifier) VolumeID() string {
	return fmt.Sprintf("v%02d", id.Volume)
}

// String renders the identifier for logs, e.g. "T/v01/cv309".
func (id Identifier) String() string {
	return fmt.Sprintf("%s/%s/cv%d", id.Canon, id.VolumeID(), id.Canvas)
}

// ManifestURL builds the Presentation API manifest location for a volume,
// e.g. https://dia.dila.edu.tw/iiif/T/v01/manifest.json.
func ManifestURL(base string, id Identifier) string {
	return fmt.Sprintf("%s/iiif/%s/%s/manifest.json", strings.TrimRight(base, "/"), id.Canon, id.VolumeID())
}

// OutputName derives the default output filename from the canvas label,
// e.g. "Tv01_T01p0300.jpg". Labels fall back to the canvas index and are
// stripped of characters that do not belong in filenames.
func (id Identifier) OutputName(label string) string {
	if label == "" {
		label = fmt.Sprintf("cv%d", id.Canvas)
	}
	return fmt.Sprintf("%s%s_%s.jpg", id.Canon, id.VolumeID(), sanitizeLabel(label))
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "/", "_")
	label = strings.ReplaceAll(label, ":", "_")
	label = strings.ReplaceAll(label, ",", "")
	return label
}
