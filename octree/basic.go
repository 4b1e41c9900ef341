package octree

import (
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	"go.viam.com/octree/logging"
	"go.viam.com/octree/spatialmath"
)

// Octree is a spatial index over 3D points. It is not safe for concurrent use; see LockedOctree.
type Octree struct {
	logger logging.Logger
	config Config
	root   *basicOctree
	size   int
}

// New creates an octree whose root is an empty leaf covering bounds. A nil config means
// DefaultConfig.
func New(bounds spatialmath.BoundingBox, config *Config, logger logging.Logger) (*Octree, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate("octree"); err != nil {
		return nil, err
	}
	if cfg.OutOfBounds == "" {
		cfg.OutOfBounds = OutOfBoundsReject
	}

	if logger == nil {
		logger = logging.NewBlankLogger("octree")
	}

	return &Octree{
		logger: logger,
		config: cfg,
		root:   newBasicOctree(bounds, 0),
	}, nil
}

// Size returns the number of points stored in the octree.
func (octree *Octree) Size() int {
	return octree.size
}

// Bounds returns the bounding box of the root node.
func (octree *Octree) Bounds() spatialmath.BoundingBox {
	return octree.root.bounds
}

// Config returns the config the octree was built with.
func (octree *Octree) Config() Config {
	return octree.config
}

// Insert places p in the leaf its octants lead to, splitting full leaves on the way. A point
// outside the root bounds is rejected or clamped depending on the configured policy.
func (octree *Octree) Insert(p r3.Vector) error {
	if spatialmath.HasNaN(p) {
		return NewInvalidPointError(p)
	}

	if !octree.root.bounds.Contains(p) {
		if octree.config.OutOfBounds != OutOfBoundsClamp {
			return NewOutOfBoundsError(p, octree.root.bounds)
		}
		clamped := octree.root.bounds.Clamp(p)
		octree.logger.Debugw("clamping out of bounds point",
			"point", spatialmath.FormatVector(p, "(", ")"),
			"clamped", spatialmath.FormatVector(clamped, "(", ")"))
		p = clamped
	}

	octree.insert(octree.root, p)
	octree.size++
	return nil
}

// InsertAll inserts every point, continuing past rejected ones. The returned error combines the
// errors of all rejected points.
func (octree *Octree) InsertAll(points []r3.Vector) error {
	var errs error
	for _, p := range points {
		errs = multierr.Append(errs, octree.Insert(p))
	}
	return errs
}

func (octree *Octree) insert(node *basicOctree, p r3.Vector) {
	switch n := node.node.(type) {
	case *internalNode:
		octree.insert(n.children[node.octant(p)], p)

	case *leafNode:
		if len(n.points) < octree.config.Capacity {
			n.points = append(n.points, p)
			return
		}

		if node.depth >= octree.config.MaxDepth {
			if !n.overflowed {
				n.overflowed = true
				octree.logger.Debugw("leaf at max depth is over capacity, keeping extra points",
					"bounds", node.bounds.String(), "depth", node.depth, "capacity", octree.config.Capacity)
			}
			n.points = append(n.points, p)
			return
		}

		octree.logger.Debugw("splitting leaf into octants", "bounds", node.bounds.String(), "depth", node.depth)
		internal := node.splitIntoOctants()
		octree.insert(internal.children[node.octant(p)], p)
	}
}

// Contains follows the octants of p from the root and reports whether the leaf reached stores a
// point equal to p.
func (octree *Octree) Contains(p r3.Vector) bool {
	if spatialmath.HasNaN(p) {
		return false
	}
	_, leaf := octree.root.leafFor(p)
	for _, stored := range leaf.points {
		if stored == p {
			return true
		}
	}
	return false
}

// LeafBounds returns the bounding box and depth of the leaf that p routes to.
func (octree *Octree) LeafBounds(p r3.Vector) (spatialmath.BoundingBox, int) {
	node, _ := octree.root.leafFor(p)
	return node.bounds, node.depth
}
