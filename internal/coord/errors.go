package coord

import (
	"errors"
	"fmt"
)

var (
	// ErrCoordinate is matched by every *CoordinateError.
	ErrCoordinate = errors.New("coordinate error")
	// ErrUnknownSpace is returned for a space name no mapper is registered for.
	ErrUnknownSpace = errors.New("unknown coordinate space")
	// ErrNoViewer is returned when a canvas conversion is requested from a
	// mapper that has no viewer.
	ErrNoViewer = errors.New("no viewer attached")
	// ErrNoSolution is returned by a mapper or solver without a usable
	// astrometric solution.
	ErrNoSolution = errors.New("no valid astrometric solution")
	// ErrDetached is returned for a shape, or the reference of an offset
	// mapper, that is not attached to any container.
	ErrDetached = errors.New("not attached")
)

// CoordinateError reports a failed conversion through a mapper.
type CoordinateError struct {
	Op    string
	Space Space
	Err   error
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("coord: %s (%s): %v", e.Op, e.Space, e.Err)
}

func (e *CoordinateError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCoordinate) hold for any CoordinateError.
func (e *CoordinateError) Is(target error) bool { return target == ErrCoordinate }

func coordErr(op string, space Space, err error) error {
	return &CoordinateError{Op: op, Space: space, Err: err}
}
