// Package pointcloud reads and writes the point files an octree can be built from. Only
// positions are kept; colour and per point values are dropped on read.
package pointcloud

import (
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// NewFromFile returns the points read in from the given file. The reader is chosen by
// extension.
func NewFromFile(fn string) ([]r3.Vector, error) {
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".pcd":
		return NewFromPCDFile(fn)
	case ".las":
		return NewFromLASFile(fn)
	default:
		return nil, errors.Errorf("do not know how to read file %q", fn)
	}
}

// WriteToFile writes the points to a file, picking the format by extension. PCD files are
// written in binary.
func WriteToFile(points []r3.Vector, fn string) error {
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".pcd":
		return WriteToPCDFile(points, fn, PCDBinary)
	case ".las":
		return WriteToLASFile(points, fn)
	default:
		return errors.Errorf("do not know how to write file %q", fn)
	}
}
