package octree

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/octree/spatialmath"
)

var (
	// ErrOutOfBounds is returned when a point outside the root bounds is inserted with the
	// reject policy.
	ErrOutOfBounds = errors.New("point is outside the bounds of this octree")

	// ErrInvalidPoint is returned when a point with a NaN coordinate is inserted.
	ErrInvalidPoint = errors.New("point has a NaN coordinate")
)

// NewOutOfBoundsError is used when p does not lie in bounds.
func NewOutOfBoundsError(p r3.Vector, bounds spatialmath.BoundingBox) error {
	return errors.Wrapf(ErrOutOfBounds, "point %s not in %s", spatialmath.FormatVector(p, "(", ")"), bounds)
}

// NewInvalidPointError is used when p cannot be placed in any octant.
func NewInvalidPointError(p r3.Vector) error {
	return errors.Wrapf(ErrInvalidPoint, "point %s", spatialmath.FormatVector(p, "(", ")"))
}

// NewConfigValidationError is used when a config field at path holds an unusable value.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}
