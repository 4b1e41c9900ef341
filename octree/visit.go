package octree

import (
	"github.com/golang/geo/r3"

	"go.viam.com/octree/spatialmath"
)

// NodeInfo describes a node reported by Visit.
type NodeInfo struct {
	Bounds spatialmath.BoundingBox
	Depth  int
	Type   NodeType
	// Points holds a leaf's points in stored order and is nil for internal nodes. It is shared
	// with the tree and must not be modified.
	Points []r3.Vector
}

// IsLeaf reports whether the node is a leaf.
func (info NodeInfo) IsLeaf() bool {
	return info.Type == LeafNode
}

// VisitFunc is called once per node. Returning false stops the walk.
type VisitFunc func(info NodeInfo) bool

// Visit walks the tree depth first in pre-order: a node is reported before its children, and the
// eight children of an internal node are visited in octant index order whether or not they hold
// points.
func (octree *Octree) Visit(fn VisitFunc) {
	octree.root.visit(fn)
}

func (octree *basicOctree) visit(fn VisitFunc) bool {
	info := NodeInfo{Bounds: octree.bounds, Depth: octree.depth, Type: octree.node.nodeType()}
	switch n := octree.node.(type) {
	case *leafNode:
		info.Points = n.points[:len(n.points):len(n.points)]
		return fn(info)
	case *internalNode:
		if !fn(info) {
			return false
		}
		for _, child := range n.children {
			if !child.visit(fn) {
				return false
			}
		}
	}
	return true
}

// Iterate calls fn for every stored point, leaf by leaf in Visit order, until fn returns false.
func (octree *Octree) Iterate(fn func(p r3.Vector) bool) {
	octree.Visit(func(info NodeInfo) bool {
		for _, p := range info.Points {
			if !fn(p) {
				return false
			}
		}
		return true
	})
}

// Stats is a summary of the shape of an octree.
type Stats struct {
	Nodes          int `json:"nodes"`
	InternalNodes  int `json:"internal_nodes"`
	Leaves         int `json:"leaves"`
	EmptyLeaves    int `json:"empty_leaves"`
	OverflowLeaves int `json:"overflow_leaves"`
	MaxDepth       int `json:"max_depth"`
	Points         int `json:"points"`
}

// Stats counts the nodes of the tree. Overflow leaves are leaves at the maximum depth holding more
// points than the configured capacity.
func (octree *Octree) Stats() Stats {
	var stats Stats
	octree.Visit(func(info NodeInfo) bool {
		stats.Nodes++
		if info.Depth > stats.MaxDepth {
			stats.MaxDepth = info.Depth
		}
		if !info.IsLeaf() {
			stats.InternalNodes++
			return true
		}
		stats.Leaves++
		stats.Points += len(info.Points)
		switch {
		case len(info.Points) == 0:
			stats.EmptyLeaves++
		case len(info.Points) > octree.config.Capacity:
			stats.OverflowLeaves++
		}
		return true
	})
	return stats
}
