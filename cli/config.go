package cli

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/octree/octree"
	"go.viam.com/octree/spatialmath"
)

// fileConfig is the json document read by --config. Flags given on the command line override
// the values it holds.
type fileConfig struct {
	Bounds *spatialmath.BoundingBox `json:"bounds,omitempty"`
	Octree octree.Config            `json:"octree"`
}

func readFileConfig(path string) (_ *fileConfig, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open config")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	conf := &fileConfig{Octree: octree.DefaultConfig()}
	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(conf); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", path)
	}
	if conf.Bounds != nil {
		if err := conf.Bounds.Validate(); err != nil {
			return nil, octree.NewConfigValidationError("bounds", err)
		}
	}
	if err := conf.Octree.Validate("octree"); err != nil {
		return nil, err
	}
	return conf, nil
}

// loadConfig layers the defaults, the --config file and the global flags, in that order.
func loadConfig(c *cli.Context) (*fileConfig, error) {
	conf := &fileConfig{Octree: octree.DefaultConfig()}
	if path := c.String(configFlag); path != "" {
		var err error
		if conf, err = readFileConfig(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet(capacityFlag) {
		conf.Octree.Capacity = c.Int(capacityFlag)
	}
	if c.IsSet(maxDepthFlag) {
		conf.Octree.MaxDepth = c.Int(maxDepthFlag)
	}
	if c.IsSet(outOfBoundsFlag) {
		policy, err := octree.ParseOutOfBoundsPolicy(c.String(outOfBoundsFlag))
		if err != nil {
			return nil, err
		}
		conf.Octree.OutOfBounds = policy
	}
	if err := conf.Octree.Validate("octree"); err != nil {
		return nil, err
	}
	return conf, nil
}
