package octree

import (
	"github.com/golang/geo/r3"

	"go.viam.com/octree/spatialmath"
)

// basicOctree is a single node of the tree together with the volume it is responsible for.
type basicOctree struct {
	bounds spatialmath.BoundingBox
	mid    r3.Vector
	depth  int
	node   octreeNode
}

// octreeNode is either a *leafNode or an *internalNode. Only leaves have point storage, so a
// node can never hold points and children at once.
type octreeNode interface {
	nodeType() NodeType
}

// leafNode holds points in insertion order. It only exceeds the configured capacity when it is
// at the maximum depth. Storage grows with the points actually stored, never with the capacity.
type leafNode struct {
	points     []r3.Vector
	overflowed bool
}

// internalNode owns the eight children partitioning its parent's bounds, in octant index order.
type internalNode struct {
	children [spatialmath.NumOctants]*basicOctree
}

func (*leafNode) nodeType() NodeType { return LeafNode }

func (*internalNode) nodeType() NodeType { return InternalNode }

func newLeafNode() *leafNode {
	return &leafNode{}
}

func newInternalNode(children [spatialmath.NumOctants]*basicOctree) *internalNode {
	return &internalNode{children: children}
}

func newBasicOctree(bounds spatialmath.BoundingBox, depth int) *basicOctree {
	return &basicOctree{
		bounds: bounds,
		mid:    bounds.Midpoint(),
		depth:  depth,
		node:   newLeafNode(),
	}
}

// octant returns the index of the child p belongs to.
func (octree *basicOctree) octant(p r3.Vector) int {
	return spatialmath.OctantAround(p, octree.mid)
}

// splitIntoOctants turns a leaf into an internal node. All eight children are created before any
// point is moved, then every stored point goes, in stored order, to the child its octant selects
// against this node's bounds.
func (octree *basicOctree) splitIntoOctants() *internalNode {
	leaf, ok := octree.node.(*leafNode)
	if !ok {
		return octree.node.(*internalNode)
	}

	var children [spatialmath.NumOctants]*basicOctree
	for i := range children {
		children[i] = newBasicOctree(spatialmath.ChildAround(octree.bounds, octree.mid, i), octree.depth+1)
	}

	for _, p := range leaf.points {
		child := children[octree.octant(p)].node.(*leafNode)
		child.points = append(child.points, p)
	}

	internal := newInternalNode(children)
	octree.node = internal
	return internal
}

// leafFor descends from octree following the octant of p and returns the leaf it reaches.
func (octree *basicOctree) leafFor(p r3.Vector) (*basicOctree, *leafNode) {
	current := octree
	for {
		switch n := current.node.(type) {
		case *internalNode:
			current = n.children[current.octant(p)]
		case *leafNode:
			return current, n
		}
	}
}
