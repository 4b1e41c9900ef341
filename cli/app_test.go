package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/octree/pointcloud"
	"go.viam.com/octree/utils"
)

// Internal node lines end in ": ".
var demoText = strings.Join([]string{
	"[0, 0, 0] - [7, 7, 7]: ",
	"  [0, 0, 0] - [3.5, 3.5, 3.5]: ",
	"    [0, 0, 0] - [1.75, 1.75, 1.75]: {(1, 1, 1)}",
	"    [0, 0, 1.75] - [1.75, 1.75, 3.5]: {(1, 1, 2)}",
	"    [0, 1.75, 0] - [1.75, 3.5, 1.75]: {}",
	"    [0, 1.75, 1.75] - [1.75, 3.5, 3.5]: {}",
	"    [1.75, 0, 0] - [3.5, 1.75, 1.75]: {}",
	"    [1.75, 0, 1.75] - [3.5, 1.75, 3.5]: {}",
	"    [1.75, 1.75, 0] - [3.5, 3.5, 1.75]: {(3, 2, 1)}",
	"    [1.75, 1.75, 1.75] - [3.5, 3.5, 3.5]: {}",
	"  [0, 0, 3.5] - [3.5, 3.5, 7]: {}",
	"  [0, 3.5, 0] - [3.5, 7, 3.5]: {(2, 5, 3)}",
	"  [0, 3.5, 3.5] - [3.5, 7, 7]: {}",
	"  [3.5, 0, 0] - [7, 3.5, 3.5]: {}",
	"  [3.5, 0, 3.5] - [7, 3.5, 7]: {(5, 1, 4)}",
	"  [3.5, 3.5, 0] - [7, 7, 3.5]: {}",
	"  [3.5, 3.5, 3.5] - [7, 7, 7]: ",
	"    [3.5, 3.5, 3.5] - [5.25, 5.25, 5.25]: {(4, 4, 4)}",
	"    [3.5, 3.5, 5.25] - [5.25, 5.25, 7]: {}",
	"    [3.5, 5.25, 3.5] - [5.25, 7, 5.25]: {}",
	"    [3.5, 5.25, 5.25] - [5.25, 7, 7]: {}",
	"    [5.25, 3.5, 3.5] - [7, 5.25, 5.25]: {}",
	"    [5.25, 3.5, 5.25] - [7, 5.25, 7]: {}",
	"    [5.25, 5.25, 3.5] - [7, 7, 5.25]: {}",
	"    [5.25, 5.25, 5.25] - [7, 7, 7]: {(6, 6, 6), (7, 7, 7)}",
	"",
}, "\n")

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"octree"}, args...))
	return out.String(), errOut.String(), err
}

func TestDemo(t *testing.T) {
	out, errOut, err := runApp(t, "demo")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, demoText)
	test.That(t, errOut, test.ShouldBeEmpty)

	t.Run("stats", func(t *testing.T) {
		out, _, err := runApp(t, "demo", "--stats")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldEqual,
			demoText+"points: 8 nodes: 25 internal: 3 leaves: 22 empty: 15 overflowing: 0 depth: 2\n")
	})

	t.Run("capacity", func(t *testing.T) {
		out, _, err := runApp(t, "--capacity", "8", "demo")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldEqual,
			"[0, 0, 0] - [7, 7, 7]: {(1, 1, 1), (6, 6, 6), (2, 5, 3), (3, 2, 1), (5, 1, 4), (7, 7, 7), (4, 4, 4), (1, 1, 2)}\n")
	})

	t.Run("tree format", func(t *testing.T) {
		out, _, err := runApp(t, "demo", "--format", "tree")
		test.That(t, err, test.ShouldBeNil)
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		test.That(t, lines[0], test.ShouldEqual, "[0, 0, 0] - [7, 7, 7]")
		// 25 nodes and 8 points.
		test.That(t, len(lines), test.ShouldEqual, 33)
		test.That(t, out, test.ShouldContainSubstring, "[5.25, 5.25, 5.25] - [7, 7, 7] (2 points)")
	})

	t.Run("json format", func(t *testing.T) {
		out, _, err := runApp(t, "demo", "--format", "json")
		test.That(t, err, test.ShouldBeNil)
		var export struct {
			Size   int `json:"size"`
			Config struct {
				Capacity int `json:"capacity"`
			} `json:"config"`
		}
		test.That(t, json.Unmarshal([]byte(out), &export), test.ShouldBeNil)
		test.That(t, export.Size, test.ShouldEqual, 8)
		test.That(t, export.Config.Capacity, test.ShouldEqual, 2)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := runApp(t, "demo", "--format", "yaml")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `unknown format "yaml"`)
	})

	t.Run("debug logging", func(t *testing.T) {
		_, errOut, err := runApp(t, "--debug", "demo")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, errOut, test.ShouldContainSubstring, "splitting leaf into octants")
	})

	t.Run("bad settings", func(t *testing.T) {
		_, _, err := runApp(t, "--capacity", "0", "demo")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "octree.capacity")

		_, _, err = runApp(t, "--out-of-bounds", "wrap", "demo")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unknown out of bounds policy")
	})
}

func TestBuild(t *testing.T) {
	out, errOut, err := runApp(t, "build", "--bounds", "0,0,0,4,4,4", "--", "1,1,1", "3,3,3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "[0, 0, 0] - [4, 4, 4]: {(1, 1, 1), (3, 3, 3)}\n")
	test.That(t, errOut, test.ShouldBeEmpty)

	t.Run("empty tree", func(t *testing.T) {
		out, _, err := runApp(t, "build", "--bounds", "0,0,0,1,1,1")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldEqual, "[0, 0, 0] - [1, 1, 1]: {}\n")

		_, _, err = runApp(t, "build")
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("bounds from points", func(t *testing.T) {
		out, errOut, err := runApp(t, "build", "--", "-1,1,1", "3,3,3")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldEqual, "[-1, 1, 1] - [3, 3, 3]: {(-1, 1, 1), (3, 3, 3)}\n")
		test.That(t, errOut, test.ShouldContainSubstring, "no bounds given")
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, _, err := runApp(t, "build", "--bounds", "0,0,0,4,4,4", "--", "5,1,1")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "outside the bounds")

		out, _, err := runApp(t, "--out-of-bounds", "clamp", "build", "--bounds", "0,0,0,4,4,4", "--", "5,1,1")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldEqual, "[0, 0, 0] - [4, 4, 4]: {(4, 1, 1)}\n")
	})

	t.Run("bad arguments", func(t *testing.T) {
		_, _, err := runApp(t, "build", "--bounds", "0,0,0,4,4", "--", "1,1,1")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "needs 6 values")

		_, _, err = runApp(t, "build", "--bounds", "4,4,4,0,0,0")
		test.That(t, err, test.ShouldNotBeNil)

		_, _, err = runApp(t, "build", "--", "1,1")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "must be of the form x,y,z")

		_, _, err = runApp(t, "build", "--", "1,a,1")
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("workers", func(t *testing.T) {
		//nolint:gosec
		rnd := rand.New(rand.NewSource(9))
		args := []string{"build", "--bounds", "0,0,0,10,10,10", "--workers", "4", "--format", "json", "--stats", "--"}
		for i := 0; i < 100; i++ {
			args = append(args, fmt.Sprintf("%g,%g,%g", rnd.Float64()*10, rnd.Float64()*10, rnd.Float64()*10))
		}
		out, _, err := runApp(t, args...)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "points: 100 ")
	})
}

func TestBuildConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "octree.json")
	conf := `{"bounds": {"min": {"X": 0, "Y": 0, "Z": 0}, "max": {"X": 8, "Y": 8, "Z": 8}}, "octree": {"capacity": 1}}`
	test.That(t, os.WriteFile(path, []byte(conf), 0o600), test.ShouldBeNil)

	out, _, err := runApp(t, "--config", path, "build", "--", "1,1,1", "7,7,7")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.Split(out, "\n")[0], test.ShouldEqual, "[0, 0, 0] - [8, 8, 8]: ")

	// Flags override the file.
	out, _, err = runApp(t, "--config", path, "--max-depth", "0", "build", "--stats", "--", "1,1,1", "2,2,2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "[0, 0, 0] - [8, 8, 8]: {(1, 1, 1), (2, 2, 2)}\n"+
		"points: 2 nodes: 1 internal: 0 leaves: 1 empty: 0 overflowing: 1 depth: 0\n")

	t.Run("bad files", func(t *testing.T) {
		_, _, err := runApp(t, "--config", filepath.Join(dir, "missing.json"), "demo")
		test.That(t, err, test.ShouldNotBeNil)

		unknown := filepath.Join(dir, "unknown.json")
		test.That(t, os.WriteFile(unknown, []byte(`{"octree": {"fanout": 4}}`), 0o600), test.ShouldBeNil)
		_, _, err = runApp(t, "--config", unknown, "demo")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse config")

		invalid := filepath.Join(dir, "invalid.json")
		test.That(t, os.WriteFile(invalid, []byte(`{"octree": {"max_depth": 65}}`), 0o600), test.ShouldBeNil)
		_, _, err = runApp(t, "--config", invalid, "demo")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "octree.max_depth")

		inverted := filepath.Join(dir, "inverted.json")
		test.That(t, os.WriteFile(inverted, []byte(`{"bounds": {"min": {"X": 1}, "max": {"X": 0}}}`), 0o600), test.ShouldBeNil)
		_, _, err = runApp(t, "--config", inverted, "demo")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "bounds")
	})
}

func TestSampleConfig(t *testing.T) {
	args := []string{"--config", utils.ResolveFile("etc/configs/demo.json"), "build", "--"}
	for _, p := range DemoPoints {
		args = append(args, fmt.Sprintf("%g,%g,%g", p.X, p.Y, p.Z))
	}
	out, _, err := runApp(t, args...)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, demoText)
}

func TestBuildPointFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pcd")
	test.That(t, pointcloud.WriteToFile(DemoPoints, in), test.ShouldBeNil)

	out, _, err := runApp(t, "build", "--bounds", "0,0,0,7,7,7", "--pcd", in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, demoText)

	// Argument points come before file points.
	saved := filepath.Join(dir, "out.pcd")
	_, _, err = runApp(t, "build", "--bounds", "0,0,0,7,7,7", "--file", in, "--output", saved, "--", "0,0,0")
	test.That(t, err, test.ShouldBeNil)
	stored, err := pointcloud.NewFromFile(saved)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(stored), test.ShouldEqual, len(DemoPoints)+1)
	test.That(t, stored[0], test.ShouldResemble, r3.Vector{})

	_, _, err = runApp(t, "build", "--file", filepath.Join(dir, "points.txt"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "do not know how to read")
}

func TestVersion(t *testing.T) {
	out, _, err := runApp(t, "version")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldStartWith, "Version ")
}
