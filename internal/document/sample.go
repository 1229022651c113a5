package document

import (
	"time"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/shape"
)

// NewSampleDocument returns a small annotated field used by demos and the
// terminal client: a few regions around the window centre, a compound
// marker, and a label pinned to the window.
func NewSampleDocument(canvasID string) *Document {
	now := time.Now().UTC().Format(time.RFC3339)

	region := func(color string) shape.Style {
		st := shape.DefaultStyle()
		st.Color = color
		st.LineWidth = 2
		return st
	}
	dashed := region("#53d769")
	dashed.Dash = []float64{4, 2}
	filled := region("#e94560")
	filled.Fill, filled.FillAlpha = true, 0.3

	return &Document{
		ID:         canvasID,
		Name:       "Sample field",
		Version:    Version,
		Width:      800,
		Height:     600,
		Background: "#1a1a2e",
		// One arcsecond per data unit, centred on M31.
		WCS: map[string]float64{
			"CRPIX1": 0, "CRPIX2": 0,
			"CRVAL1": 10.6847, "CRVAL2": 41.2689,
			"CD1_1": -1.0 / 3600, "CD1_2": 0,
			"CD2_1": 0, "CD2_2": 1.0 / 3600,
		},
		CreatedAt: now,
		UpdatedAt: now,
		Objects: []Node{
			{
				Tag: "source", Kind: shape.KindCircle, Coord: coord.SpaceData,
				Points: []Point{{0, 0}}, Radius: 40,
				Style: region("#00ffff"), Editable: true,
			},
			{
				Tag: "background", Kind: shape.KindCircle, Coord: coord.SpaceData,
				Points: []Point{{0, 0}}, Radius: 80,
				Style: dashed, Editable: true,
			},
			{
				Tag: "slit", Kind: shape.KindBox, Coord: coord.SpaceData,
				Points: []Point{{-150, 60}}, XRadius: 60, YRadius: 10, Rotation: 30,
				Style: filled, Editable: true,
			},
			{
				Tag: "mask", Kind: shape.KindPolygon, Coord: coord.SpaceData,
				Points: []Point{{120, -40}, {220, -60}, {240, 40}, {150, 80}},
				Style:  region("#ffa500"), Editable: true,
			},
			{
				Tag: "trail", Kind: shape.KindPath, Coord: coord.SpaceData,
				Points: []Point{{-200, -150}, {-120, -110}, {-60, -140}},
				Style:  region("#ff00ff"), Editable: true,
			},
			{
				Tag: "target", Kind: shape.KindCompound, Coord: coord.SpaceData,
				Style: shape.DefaultStyle(), Editable: true, Opaque: true,
				Children: []Node{
					{
						Kind: shape.KindPoint, Coord: coord.SpaceData,
						Points: []Point{{60, 120}}, Radius: 6,
						Style: shape.DefaultStyle(), Editable: true,
					},
					{
						Kind: shape.KindText, Coord: coord.SpaceData,
						Points: []Point{{70, 126}}, Text: "SN candidate", FontSize: 12,
						Style: shape.DefaultStyle(), Editable: true,
					},
				},
			},
			{
				Tag: "title", Kind: shape.KindText, Coord: coord.SpaceWindow,
				Points: []Point{{10, 20}}, Text: "skycanvas", FontSize: 14,
				Style: region("#ffffff"), Editable: false,
			},
		},
	}
}
