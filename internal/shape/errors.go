package shape

import (
	"errors"

	"github.com/inamate/skycanvas/internal/coord"
)

var (
	// ErrConfiguration covers caller mistakes that are reported immediately:
	// degenerate construction, a missing sibling in a reorder, a shape that
	// already belongs to another container, an unknown kind.
	ErrConfiguration = errors.New("configuration error")

	// ErrDetached is returned when a shape that is not attached to any
	// container is asked for a mapping that needs one, and when an offset
	// space shape's reference has been deleted.
	ErrDetached = coord.ErrDetached

	// ErrEmpty is returned for the bounds or center of a compound without
	// children.
	ErrEmpty = errors.New("compound has no children")

	// ErrNotChild is returned when a compound is asked about a shape it does
	// not hold.
	ErrNotChild = errors.New("shape is not a child of this compound")
)
