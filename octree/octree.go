// Package octree implements an octree over 3D points: a bounded region is split into eight octants
// whenever one of its leaves overflows, so that points end up organized by location for later
// spatial queries.
package octree

import (
	"github.com/golang/geo/r3"

	"go.viam.com/octree/spatialmath"
)

// Each node in the octree is either an internal node which links to exactly eight children, or a
// leaf node which stores points directly.
const (
	InternalNode = NodeType(iota)
	LeafNode
	octreeVersion = 1.0
)

// NodeType represents the possible types of nodes in an octree.
type NodeType uint8

func (t NodeType) String() string {
	switch t {
	case InternalNode:
		return "InternalNode"
	case LeafNode:
		return "LeafNode"
	}
	return ""
}

// Index is the read interface shared by Octree and LockedOctree.
type Index interface {
	Marshaler

	// Insert adds a point to the index.
	Insert(p r3.Vector) error

	// Size returns the number of points stored.
	Size() int

	// Bounds returns the volume covered by the root.
	Bounds() spatialmath.BoundingBox

	// Contains reports whether p, by value, is stored in the leaf p routes to.
	Contains(p r3.Vector) bool

	// Visit walks every node in pre-order, calling fn for each one. The walk stops when fn returns
	// false.
	Visit(fn VisitFunc)

	// Iterate calls fn for each stored point until fn returns false.
	Iterate(fn func(p r3.Vector) bool)

	// Stats summarizes the shape of the tree.
	Stats() Stats
}

// Marshaler will convert an octree into a serialized array of bytes.
type Marshaler interface {
	MarshalOctree() ([]byte, error)
}
