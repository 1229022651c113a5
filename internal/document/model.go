package document

import (
	"encoding/json"
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/shape"
)

// Version is the document format written by this package.
const Version = 1

// Document is the serialized form of a canvas: its objects bottom to top
// plus the window it was laid out for.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
	Objects    []Node `json:"objects"`
	// WCS holds FITS keywords (CRPIX1, CRVAL1, CD1_1, ...) of the
	// astrometric solution for objects stored in sky coordinates.
	WCS map[string]float64 `json:"wcs,omitempty"`
}

// Point is an (x, y) pair in the node's coordinate space.
type Point [2]float64

func (p Point) Vec() vec.Vec2 { return vec.Vec2{X: p[0], Y: p[1]} }

func pointOf(v vec.Vec2) Point { return Point{v.X, v.Y} }

// Node is one shape. Which fields are meaningful depends on Kind, matching
// shape.Params. Tag is only set on top-level nodes.
type Node struct {
	Tag      string      `json:"tag,omitempty"`
	Kind     shape.Kind  `json:"kind"`
	Coord    coord.Space `json:"coord,omitempty"`
	Points   []Point     `json:"points,omitempty"`
	Radius   float64     `json:"radius,omitempty"`
	XRadius  float64     `json:"xradius,omitempty"`
	YRadius  float64     `json:"yradius,omitempty"`
	Rotation float64     `json:"rotation,omitempty"`
	Text     string      `json:"text,omitempty"`
	FontSize float64     `json:"fontSize,omitempty"`
	Style    shape.Style `json:"style"`
	Editable bool        `json:"editable"`
	Opaque   bool        `json:"opaque,omitempty"`
	Children []Node      `json:"children,omitempty"`
}

// NewEmptyDocument returns a document with no objects.
func NewEmptyDocument(id, name string) *Document {
	return &Document{
		ID:         id,
		Name:       name,
		Version:    Version,
		Width:      800,
		Height:     600,
		Background: "#000000",
		Objects:    []Node{},
	}
}

// Parse decodes a document from JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("%w: version %d is newer than %d", ErrInvalid, doc.Version, Version)
	}
	if doc.Version == 0 {
		doc.Version = Version
	}
	return &doc, nil
}

// JSON encodes the document.
func (d *Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}
