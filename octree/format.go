package octree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/xlab/treeprint"

	"go.viam.com/octree/spatialmath"
)

const textIndent = "  "

// WriteText writes one line per node, children indented two spaces below their parent:
//
//	[0, 0, 0] - [7, 7, 7]:
//	  [0, 0, 0] - [3.5, 3.5, 3.5]: {(1, 1, 1), (1, 1, 2)}
//
// Internal nodes end after the colon, leaves list their points in braces.
func (octree *Octree) WriteText(w io.Writer) error {
	var err error
	octree.Visit(func(info NodeInfo) bool {
		line := strings.Repeat(textIndent, info.Depth) + info.Bounds.String() + ": "
		if info.IsLeaf() {
			line += "{" + formatPoints(info.Points) + "}"
		}
		_, err = fmt.Fprintln(w, line)
		return err == nil
	})
	return err
}

// TreePrint renders the octree with treeprint. Each node is labeled with its bounds and each
// stored point is a child of its leaf.
func (octree *Octree) TreePrint() treeprint.Tree {
	root := treeprint.New()
	// branches[d] is the branch of the most recent node seen at depth d.
	var branches []treeprint.Tree
	octree.Visit(func(info NodeInfo) bool {
		label := info.Bounds.String()
		if info.IsLeaf() {
			label = fmt.Sprintf("%s (%d points)", label, len(info.Points))
		}

		var branch treeprint.Tree
		if info.Depth == 0 {
			root.SetValue(label)
			branch = root
		} else {
			branch = branches[info.Depth-1].AddBranch(label)
		}
		branches = append(branches[:info.Depth], branch)

		for _, p := range info.Points {
			branch.AddNode(spatialmath.FormatVector(p, "(", ")"))
		}
		return true
	})
	return root
}

func formatPoints(points []r3.Vector) string {
	formatted := make([]string, 0, len(points))
	for _, p := range points {
		formatted = append(formatted, spatialmath.FormatVector(p, "(", ")"))
	}
	return strings.Join(formatted, ", ")
}

// octreeExport is the json representation of an octree.
type octreeExport struct {
	Version float64     `json:"version"`
	Config  Config      `json:"config"`
	Size    int         `json:"size"`
	Root    *nodeExport `json:"root"`
}

type nodeExport struct {
	Bounds   spatialmath.BoundingBox `json:"bounds"`
	Depth    int                     `json:"depth"`
	IsLeaf   bool                    `json:"is_leaf"`
	Points   []r3.Vector             `json:"points,omitempty"`
	Children []*nodeExport           `json:"children,omitempty"`
}

// MarshalOctree exports the whole tree, with its config and size, as json.
func (octree *Octree) MarshalOctree() ([]byte, error) {
	export := &octreeExport{
		Version: octreeVersion,
		Config:  octree.config,
		Size:    octree.size,
		Root:    octree.root.export(),
	}
	return json.Marshal(export)
}

func (octree *basicOctree) export() *nodeExport {
	export := &nodeExport{
		Bounds: octree.bounds,
		Depth:  octree.depth,
	}

	switch n := octree.node.(type) {
	case *leafNode:
		export.IsLeaf = true
		export.Points = append(export.Points, n.points...)
	case *internalNode:
		for _, child := range n.children {
			export.Children = append(export.Children, child.export())
		}
	}

	return export
}
