package cli

import (
	"io"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/xlab/treeprint"

	"go.viam.com/octree/logging"
	"go.viam.com/octree/octree"
	"go.viam.com/octree/pointcloud"
	"go.viam.com/octree/spatialmath"
)

// DemoBounds is the root box of the demo tree.
var DemoBounds = spatialmath.BoundingBox{Max: r3.Vector{X: 7, Y: 7, Z: 7}}

// DemoPoints are inserted, in order, by the demo command.
var DemoPoints = []r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 6, Y: 6, Z: 6},
	{X: 2, Y: 5, Z: 3},
	{X: 3, Y: 2, Z: 1},
	{X: 5, Y: 1, Z: 4},
	{X: 7, Y: 7, Z: 7},
	{X: 4, Y: 4, Z: 4},
	{X: 1, Y: 1, Z: 2},
}

func newLogger(c *cli.Context) logging.Logger {
	level := logging.WARN
	if c.Bool(debugFlag) {
		level = logging.DEBUG
	}
	return logging.NewWriterLogger("octree", level, c.App.ErrWriter)
}

// DemoAction is the corresponding Action for 'demo'.
func DemoAction(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	tree, err := octree.New(DemoBounds, &conf.Octree, newLogger(c))
	if err != nil {
		return err
	}
	if err := tree.InsertAll(DemoPoints); err != nil {
		return err
	}
	return printTree(c, tree)
}

// BuildAction is the corresponding Action for 'build'.
func BuildAction(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c)

	points, err := parsePoints(c.Args().Slice())
	if err != nil {
		return err
	}
	if fn := c.String(fileFlag); fn != "" {
		read, err := pointcloud.NewFromFile(fn)
		if err != nil {
			return err
		}
		logger.Debugw("read points", "file", fn, "count", len(read))
		points = append(points, read...)
	}

	bounds, err := buildBounds(c, conf, points)
	if err != nil {
		return err
	}

	locked, err := octree.NewLocked(bounds, &conf.Octree, logger)
	if err != nil {
		return err
	}
	if workers := c.Int(workersFlag); workers > 1 {
		err = locked.InsertParallel(c.Context, points, workers)
	} else {
		err = locked.InsertAll(points)
	}
	if err != nil {
		return err
	}
	logger.Infow("built octree", "points", locked.Size(), "bounds", bounds.String())

	if fn := c.String(outputFlag); fn != "" {
		stored := make([]r3.Vector, 0, locked.Size())
		locked.Iterate(func(p r3.Vector) bool {
			stored = append(stored, p)
			return true
		})
		if err := pointcloud.WriteToFile(stored, fn); err != nil {
			return err
		}
	}
	return printTree(c, locked)
}

// buildBounds picks the root box: --bounds, then the config file, then the box around points.
func buildBounds(c *cli.Context, conf *fileConfig, points []r3.Vector) (spatialmath.BoundingBox, error) {
	if c.IsSet(boundsFlag) {
		b := c.Float64Slice(boundsFlag)
		if len(b) != 6 {
			return spatialmath.BoundingBox{}, errors.Errorf("--%s needs 6 values, got %d", boundsFlag, len(b))
		}
		return spatialmath.NewBoundingBoxFromBounds(b[0], b[1], b[2], b[3], b[4], b[5])
	}
	if conf.Bounds != nil {
		return *conf.Bounds, nil
	}
	if len(points) == 0 {
		return spatialmath.BoundingBox{}, errors.Errorf("no points given, set --%s to build an empty tree", boundsFlag)
	}
	warningf(c.App.ErrWriter, "no bounds given, using the box around all %d points", len(points))
	return spatialmath.NewBoundingBoxFromPoints(points)
}

// parsePoints parses arguments of the form x,y,z.
func parsePoints(args []string) ([]r3.Vector, error) {
	points := make([]r3.Vector, 0, len(args))
	for _, arg := range args {
		p, err := parseVector(arg)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func parseVector(s string) (r3.Vector, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vector{}, errors.Errorf("point %q must be of the form x,y,z", s)
	}
	var coords [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "bad coordinate in point %q", s)
		}
		coords[i] = f
	}
	return r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// printableTree is implemented by both octree.Octree and octree.LockedOctree.
type printableTree interface {
	octree.Index
	WriteText(w io.Writer) error
	TreePrint() treeprint.Tree
}

func printTree(c *cli.Context, tree printableTree) error {
	switch format := c.String(formatFlag); format {
	case formatText:
		if err := tree.WriteText(c.App.Writer); err != nil {
			return err
		}
	case formatTree:
		printf(c.App.Writer, "%s", strings.TrimSuffix(tree.TreePrint().String(), "\n"))
	case formatJSON:
		data, err := tree.MarshalOctree()
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", data)
	default:
		return errors.Errorf("unknown format %q, expected %q, %q or %q", format, formatText, formatTree, formatJSON)
	}

	if c.Bool(statsFlag) {
		stats := tree.Stats()
		printf(c.App.Writer, "points: %d nodes: %d internal: %d leaves: %d empty: %d overflowing: %d depth: %d",
			stats.Points, stats.Nodes, stats.InternalNodes, stats.Leaves, stats.EmptyLeaves, stats.OverflowLeaves, stats.MaxDepth)
	}
	return nil
}

// VersionAction is the corresponding Action for 'version'.
func VersionAction(c *cli.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("error reading build info")
	}
	if c.Bool(debugFlag) {
		printf(c.App.Writer, "%s", info.String())
	}
	settings := make(map[string]string, len(info.Settings))
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	version := "?"
	if rev, ok := settings["vcs.revision"]; ok && len(rev) >= 8 {
		version = rev[:8]
		if settings["vcs.modified"] == "true" {
			version += "+"
		}
	}
	mainVersion := info.Main.Version
	if mainVersion == "" {
		mainVersion = "(dev)"
	}
	printf(c.App.Writer, "Version %s Git=%s Go=%s", mainVersion, version, info.GoVersion)
	return nil
}
