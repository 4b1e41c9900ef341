// Package cli contains all business logic for the octree command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/octree/octree"
)

const (
	// Global flags.
	debugFlag       = "debug"
	configFlag      = "config"
	capacityFlag    = "capacity"
	maxDepthFlag    = "max-depth"
	outOfBoundsFlag = "out-of-bounds"

	// Tree output flags.
	formatFlag = "format"
	statsFlag  = "stats"

	// Build flags.
	boundsFlag  = "bounds"
	fileFlag    = "file"
	outputFlag  = "output"
	workersFlag = "workers"
)

const (
	formatText = "text"
	formatTree = "tree"
	formatJSON = "json"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  formatFlag,
			Value: formatText,
			Usage: fmt.Sprintf("print the tree as %s, %s or %s", formatText, formatTree, formatJSON),
		},
		&cli.BoolFlag{
			Name:  statsFlag,
			Usage: "print node counts after the tree",
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "octree",
		Usage:           "build and print octrees over 3D points",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load bounds and octree settings from json `FILE`",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.IntFlag{
				Name:  capacityFlag,
				Value: octree.DefaultCapacity,
				Usage: "number of points a leaf holds before it splits",
			},
			&cli.IntFlag{
				Name:  maxDepthFlag,
				Value: octree.DefaultMaxDepth,
				Usage: "depth at which leaves stop splitting",
			},
			&cli.StringFlag{
				Name:  outOfBoundsFlag,
				Value: string(octree.OutOfBoundsReject),
				Usage: fmt.Sprintf("what to do with points outside the bounds: %s or %s", octree.OutOfBoundsReject, octree.OutOfBoundsClamp),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "insert eight sample points into a [0, 0, 0] - [7, 7, 7] octree and print it",
				Flags:  outputFlags(),
				Action: DemoAction,
			},
			{
				Name:      "build",
				Usage:     "build an octree from points given as arguments or read from a file",
				ArgsUsage: "[x,y,z ...]",
				Flags: append([]cli.Flag{
					&cli.Float64SliceFlag{
						Name:  boundsFlag,
						Usage: "root box as minx,miny,minz,maxx,maxy,maxz; computed from the points if unset",
					},
					&cli.StringFlag{
						Name:    fileFlag,
						Aliases: []string{"pcd"},
						Usage:   "read points from a .pcd or .las `FILE`",
					},
					&cli.StringFlag{
						Name:  outputFlag,
						Usage: "write the stored points to a .pcd or .las `FILE`",
					},
					&cli.IntFlag{
						Name:  workersFlag,
						Value: 1,
						Usage: "number of goroutines inserting points",
					},
				}, outputFlags()...),
				Action: BuildAction,
			},
			{
				Name:   "version",
				Usage:  "print version info for this program",
				Action: VersionAction,
			},
		},
	}
}

// printf prints a message to w with a newline.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a warning message to w.
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "Warning: "+format+"\n", a...)
}
