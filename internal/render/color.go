package render

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg"

	"github.com/inamate/skycanvas/internal/shape"
)

// named covers the colour names canvas documents tend to use; anything
// else is parsed as hex.
var named = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
}

// Color resolves a style colour with an extra alpha factor. Empty strings
// fall back to the default outline colour.
func Color(c string, alpha float64) gg.RGBA {
	c = strings.TrimSpace(strings.ToLower(c))
	if c == "" {
		c = shape.DefaultStyle().Color
	}
	if hex, ok := named[c]; ok {
		c = hex
	}
	rgba := gg.Hex(c)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	rgba.A *= alpha
	return rgba
}

// Stroke returns the outline colour of st.
func Stroke(st shape.Style) gg.RGBA { return Color(st.Color, st.Alpha) }

// Fill returns the fill colour of st. An unset fill colour reuses the
// outline colour.
func Fill(st shape.Style) gg.RGBA {
	c := st.FillColor
	if c == "" {
		c = st.Color
	}
	return Color(c, st.FillAlpha)
}

// Hex resolves a style colour to opaque "#rrggbb", for hosts that take
// colour strings.
func Hex(c string) string {
	nc := Color(c, 1).Color()
	r, g, b, _ := nc.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
