package document

import (
	"fmt"

	"github.com/inamate/skycanvas/internal/coord"
	"github.com/inamate/skycanvas/internal/wcs"
)

// Solver builds the astrometric solution described by the WCS header. A
// document without a header has none and Solver returns nil, nil.
func (d *Document) Solver() (coord.Solver, error) {
	if len(d.WCS) == 0 {
		return nil, nil
	}
	t, err := wcs.FromHeader(d.WCS)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return t, nil
}
