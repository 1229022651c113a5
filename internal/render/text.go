// Package render holds what every drawing backend shares: text metrics
// that do not depend on a loaded font, and colour handling for Style.
package render

import (
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// basePx is the pixel size of the fallback bitmap face.
const basePx = 13.0

// TextExtents measures s at size pixels using the fixed 7x13 bitmap face,
// scaled linearly. Backends without a font of their own use it so that
// text hit-tests agree across hosts.
func TextExtents(s string, size float64) (wd, ht float64) {
	if size <= 0 || utf8.RuneCountInString(s) == 0 {
		return 0, 0
	}
	f := size / basePx
	adv := font.MeasureString(basicfont.Face7x13, s)
	return float64(adv) / 64 * f, float64(basicfont.Face7x13.Height) * f
}
