package octree

import (
	"io"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/xlab/treeprint"

	"go.viam.com/octree/logging"
	"go.viam.com/octree/spatialmath"
)

// LockedOctree guards an Octree with a read/write lock: one writer inserts at a time while any
// number of readers walk the tree. A split happens entirely under the write lock, so readers
// never see a half split node.
type LockedOctree struct {
	mu   sync.RWMutex
	tree *Octree
}

// NewLocked creates an empty octree that is safe for concurrent use.
func NewLocked(bounds spatialmath.BoundingBox, config *Config, logger logging.Logger) (*LockedOctree, error) {
	tree, err := New(bounds, config, logger)
	if err != nil {
		return nil, err
	}
	return &LockedOctree{tree: tree}, nil
}

// Insert adds p under the write lock.
func (locked *LockedOctree) Insert(p r3.Vector) error {
	locked.mu.Lock()
	defer locked.mu.Unlock()
	return locked.tree.Insert(p)
}

// InsertAll adds all points under a single acquisition of the write lock.
func (locked *LockedOctree) InsertAll(points []r3.Vector) error {
	locked.mu.Lock()
	defer locked.mu.Unlock()
	return locked.tree.InsertAll(points)
}

// Size returns the number of stored points.
func (locked *LockedOctree) Size() int {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	return locked.tree.Size()
}

// Bounds returns the root bounding box. It never changes after construction.
func (locked *LockedOctree) Bounds() spatialmath.BoundingBox {
	return locked.tree.Bounds()
}

// Contains reports whether p is stored.
func (locked *LockedOctree) Contains(p r3.Vector) bool {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	return locked.tree.Contains(p)
}

// Visit walks the tree under the read lock. fn must not call Insert on the same LockedOctree.
func (locked *LockedOctree) Visit(fn VisitFunc) {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	locked.tree.Visit(fn)
}

// Iterate calls fn for every point under the read lock.
func (locked *LockedOctree) Iterate(fn func(p r3.Vector) bool) {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	locked.tree.Iterate(fn)
}

// Stats summarizes the tree under the read lock.
func (locked *LockedOctree) Stats() Stats {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	return locked.tree.Stats()
}

// MarshalOctree exports the tree as json under the read lock.
func (locked *LockedOctree) MarshalOctree() ([]byte, error) {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	return locked.tree.MarshalOctree()
}

// WriteText writes the text rendering of the tree under the read lock.
func (locked *LockedOctree) WriteText(w io.Writer) error {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	return locked.tree.WriteText(w)
}

// TreePrint renders the tree with treeprint under the read lock.
func (locked *LockedOctree) TreePrint() treeprint.Tree {
	locked.mu.RLock()
	defer locked.mu.RUnlock()
	return locked.tree.TreePrint()
}

var (
	_ Index = (*Octree)(nil)
	_ Index = (*LockedOctree)(nil)
)
