package octree

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

const (
	// DefaultCapacity is the number of points a leaf holds before it splits.
	DefaultCapacity = 2
	// DefaultMaxDepth is the depth at which leaves stop splitting and start overflowing.
	DefaultMaxDepth = 16
	// MaxSupportedDepth bounds MaxDepth. Boxes this deep are far below float64 resolution for any
	// reasonable root volume.
	MaxSupportedDepth = 64
)

// OutOfBoundsPolicy decides what Insert does with a point outside the root bounds.
type OutOfBoundsPolicy string

const (
	// OutOfBoundsReject makes Insert return an ErrOutOfBounds error.
	OutOfBoundsReject OutOfBoundsPolicy = "reject"
	// OutOfBoundsClamp moves the point to the closest point of the root bounds before inserting it.
	OutOfBoundsClamp OutOfBoundsPolicy = "clamp"
)

// ParseOutOfBoundsPolicy converts a string to an OutOfBoundsPolicy. An empty string is the reject
// policy.
func ParseOutOfBoundsPolicy(s string) (OutOfBoundsPolicy, error) {
	switch OutOfBoundsPolicy(s) {
	case OutOfBoundsReject, "":
		return OutOfBoundsReject, nil
	case OutOfBoundsClamp:
		return OutOfBoundsClamp, nil
	}
	return "", errors.Errorf("unknown out of bounds policy %q, expected %q or %q", s, OutOfBoundsReject, OutOfBoundsClamp)
}

// Config describes how an octree splits and how it treats out of bounds points.
type Config struct {
	// Capacity is the most points a leaf above MaxDepth will hold.
	Capacity int `json:"capacity"`
	// MaxDepth is the depth (the root being 0) at which leaves no longer split. Leaves there
	// keep every point they are given, beyond Capacity.
	MaxDepth    int               `json:"max_depth"`
	OutOfBounds OutOfBoundsPolicy `json:"out_of_bounds,omitempty"`
}

// DefaultConfig returns a config with capacity 2, max depth 16 and the reject policy.
func DefaultConfig() Config {
	return Config{
		Capacity:    DefaultCapacity,
		MaxDepth:    DefaultMaxDepth,
		OutOfBounds: OutOfBoundsReject,
	}
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.Capacity < 1 {
		return NewConfigValidationError(fmt.Sprintf("%s.capacity", path),
			errors.Errorf("capacity must be at least 1, got %d", config.Capacity))
	}
	if config.MaxDepth < 0 || config.MaxDepth > MaxSupportedDepth {
		return NewConfigValidationError(fmt.Sprintf("%s.max_depth", path),
			errors.Errorf("max depth must be between 0 and %d, got %d", MaxSupportedDepth, config.MaxDepth))
	}
	if _, err := ParseOutOfBoundsPolicy(string(config.OutOfBounds)); err != nil {
		return NewConfigValidationError(fmt.Sprintf("%s.out_of_bounds", path), err)
	}
	return nil
}

// ReadConfig decodes a json config from r. Fields missing from the input keep their default
// values.
func ReadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return Config{}, errors.Wrap(err, "cannot parse octree config")
	}
	if err := config.Validate("octree"); err != nil {
		return Config{}, err
	}
	return config, nil
}
