// Package spatialmath defines the axis aligned volumes the octree partitions space with.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrInvalidBoundingBox is returned when a box has a minimum corner above its maximum corner on
// some axis, or a NaN or infinite coordinate.
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// The octant index of a point has bit 2 set when it is in the high half along X, bit 1 for Y and
// bit 0 for Z. Index 0 is the (low, low, low) octant and 7 is (high, high, high).
const (
	octantBitX = 4
	octantBitY = 2
	octantBitZ = 1

	// NumOctants is the number of children a box is split into.
	NumOctants = 8
)

// BoundingBox is an axis aligned rectangular region given by its minimum and maximum corners.
type BoundingBox struct {
	Min r3.Vector `json:"min"`
	Max r3.Vector `json:"max"`
}

// NewBoundingBox returns the box spanning minPt to maxPt. Boxes with zero extent on an axis are allowed.
func NewBoundingBox(minPt, maxPt r3.Vector) (BoundingBox, error) {
	box := BoundingBox{Min: minPt, Max: maxPt}
	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}

// NewBoundingBoxFromBounds is a convenience for NewBoundingBox taking the six bounds in the
// order xMin, yMin, zMin, xMax, yMax, zMax.
func NewBoundingBoxFromBounds(xMin, yMin, zMin, xMax, yMax, zMax float64) (BoundingBox, error) {
	return NewBoundingBox(r3.Vector{X: xMin, Y: yMin, Z: zMin}, r3.Vector{X: xMax, Y: yMax, Z: zMax})
}

// NewBoundingBoxFromPoints returns the smallest box containing all of points.
func NewBoundingBoxFromPoints(points []r3.Vector) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, errors.Wrap(ErrInvalidBoundingBox, "cannot bound an empty set of points")
	}
	box := BoundingBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = r3.Vector{X: math.Min(box.Min.X, p.X), Y: math.Min(box.Min.Y, p.Y), Z: math.Min(box.Min.Z, p.Z)}
		box.Max = r3.Vector{X: math.Max(box.Max.X, p.X), Y: math.Max(box.Max.Y, p.Y), Z: math.Max(box.Max.Z, p.Z)}
	}
	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}

// Validate checks that the box has finite corners and min <= max on every axis.
func (box BoundingBox) Validate() error {
	if HasNaN(box.Min) || HasNaN(box.Max) {
		return errors.Wrapf(ErrInvalidBoundingBox, "box %v has a NaN coordinate", box)
	}
	if !IsFinite(box.Min) || !IsFinite(box.Max) {
		return errors.Wrapf(ErrInvalidBoundingBox, "box %v has an infinite coordinate", box)
	}
	if box.Min.X > box.Max.X || box.Min.Y > box.Max.Y || box.Min.Z > box.Max.Z {
		return errors.Wrapf(ErrInvalidBoundingBox, "box %v has min greater than max", box)
	}
	return nil
}

// Midpoint returns the center of the box, (min+max)/2 on each axis.
func (box BoundingBox) Midpoint() r3.Vector {
	return r3.Vector{
		X: (box.Min.X + box.Max.X) / 2,
		Y: (box.Min.Y + box.Max.Y) / 2,
		Z: (box.Min.Z + box.Max.Z) / 2,
	}
}

// Size returns the extent of the box along each axis.
func (box BoundingBox) Size() r3.Vector {
	return box.Max.Sub(box.Min)
}

// Contains reports whether p lies in the box. Both faces are inclusive.
func (box BoundingBox) Contains(p r3.Vector) bool {
	return p.X >= box.Min.X && p.X <= box.Max.X &&
		p.Y >= box.Min.Y && p.Y <= box.Max.Y &&
		p.Z >= box.Min.Z && p.Z <= box.Max.Z
}

// Clamp returns the point of the box closest to p.
func (box BoundingBox) Clamp(p r3.Vector) r3.Vector {
	return r3.Vector{
		X: math.Min(math.Max(p.X, box.Min.X), box.Max.X),
		Y: math.Min(math.Max(p.Y, box.Min.Y), box.Max.Y),
		Z: math.Min(math.Max(p.Z, box.Min.Z), box.Max.Z),
	}
}

// Octant returns the index in [0, 8) of the child of box that p resolves to. A coordinate equal to
// the midpoint goes to the high half on that axis. Points outside the box still resolve to the
// octant their coordinates select.
func (box BoundingBox) Octant(p r3.Vector) int {
	return OctantAround(p, box.Midpoint())
}

// OctantAround is Octant with the box midpoint already computed.
func OctantAround(p, mid r3.Vector) int {
	octant := 0
	if p.X >= mid.X {
		octant |= octantBitX
	}
	if p.Y >= mid.Y {
		octant |= octantBitY
	}
	if p.Z >= mid.Z {
		octant |= octantBitZ
	}
	return octant
}

// Child returns the box of octant i, using the same bit convention as Octant.
func (box BoundingBox) Child(i int) BoundingBox {
	return ChildAround(box, box.Midpoint(), i)
}

// ChildAround is Child with the box midpoint already computed.
func ChildAround(box BoundingBox, mid r3.Vector, i int) BoundingBox {
	child := BoundingBox{Min: box.Min, Max: mid}
	if i&octantBitX != 0 {
		child.Min.X, child.Max.X = mid.X, box.Max.X
	}
	if i&octantBitY != 0 {
		child.Min.Y, child.Max.Y = mid.Y, box.Max.Y
	}
	if i&octantBitZ != 0 {
		child.Min.Z, child.Max.Z = mid.Z, box.Max.Z
	}
	return child
}

// Children returns all eight octant boxes in index order.
func (box BoundingBox) Children() [NumOctants]BoundingBox {
	mid := box.Midpoint()
	var children [NumOctants]BoundingBox
	for i := range children {
		children[i] = ChildAround(box, mid, i)
	}
	return children
}

// Intersects reports whether the two boxes overlap, touching faces included.
func (box BoundingBox) Intersects(other BoundingBox) bool {
	return box.Min.X <= other.Max.X && box.Max.X >= other.Min.X &&
		box.Min.Y <= other.Max.Y && box.Max.Y >= other.Min.Y &&
		box.Min.Z <= other.Max.Z && box.Max.Z >= other.Min.Z
}

// String formats the box as "[xMin, yMin, zMin] - [xMax, yMax, zMax]".
func (box BoundingBox) String() string {
	return fmt.Sprintf("%s - %s", FormatVector(box.Min, "[", "]"), FormatVector(box.Max, "[", "]"))
}

// FormatVector renders v as its three coordinates separated by ", " between open and closing, using
// the shortest representation of each coordinate, e.g: "(1, 2.5, 3)".
func FormatVector(v r3.Vector, open, closing string) string {
	return fmt.Sprintf("%s%g, %g, %g%s", open, v.X, v.Y, v.Z, closing)
}

// HasNaN reports whether any coordinate of v is NaN.
func HasNaN(v r3.Vector) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// IsFinite reports whether every coordinate of v is neither NaN nor infinite.
func IsFinite(v r3.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
