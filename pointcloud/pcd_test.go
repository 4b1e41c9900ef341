package pointcloud

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

const asciiHeader = `# .PCD v0.7 - Point Cloud Data file format
VERSION .7
FIELDS x y z
SIZE 4 4 4
TYPE F F F
COUNT 1 1 1
WIDTH 3
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS 3
DATA ascii
`

func TestReadPCDAscii(t *testing.T) {
	points, err := ReadPCD(strings.NewReader(asciiHeader + "1 1 1\n2.5 -3 0\n7 7 7\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []r3.Vector{
		{X: 1, Y: 1, Z: 1},
		{X: 2.5, Y: -3, Z: 0},
		{X: 7, Y: 7, Z: 7},
	})

	t.Run("missing trailing newline", func(t *testing.T) {
		points, err := ReadPCD(strings.NewReader(asciiHeader + "1 1 1\n2 2 2\n3 3 3"))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(points), test.ShouldEqual, 3)
	})

	t.Run("color is ignored", func(t *testing.T) {
		in := `VERSION .7
FIELDS x y z rgb
SIZE 4 4 4 4
TYPE F F F I
COUNT 1 1 1 1
WIDTH 2
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS 2
DATA ascii
1 2 3 16711680
4 5 6 255
`
		points, err := ReadPCD(strings.NewReader(in))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, points, test.ShouldResemble, []r3.Vector{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}})
	})

	t.Run("short body", func(t *testing.T) {
		_, err := ReadPCD(strings.NewReader(asciiHeader + "1 1 1\n"))
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("bad point", func(t *testing.T) {
		_, err := ReadPCD(strings.NewReader(asciiHeader + "1 1 1\n1 a 1\n1 1 1\n"))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "invalid point 1")
	})
}

func TestReadPCDBinary(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(strings.Replace(asciiHeader, "DATA ascii", "DATA binary", 1))
	for _, v := range []float32{1, 1, 1, 2.5, -3, 0, 7, 7, 7} {
		test.That(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(v)), test.ShouldBeNil)
	}

	points, err := ReadPCD(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []r3.Vector{
		{X: 1, Y: 1, Z: 1},
		{X: 2.5, Y: -3, Z: 0},
		{X: 7, Y: 7, Z: 7},
	})

	t.Run("truncated body", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(strings.Replace(asciiHeader, "DATA ascii", "DATA binary", 1))
		buf.Write(make([]byte, 20))
		_, err := ReadPCD(&buf)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestReadPCDHeaderErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		old, new string
		expected string
	}{
		{"version", "VERSION .7", "VERSION .6", "unsupported pcd version"},
		{"fields", "FIELDS x y z", "FIELDS x y", "unsupported pcd fields"},
		{"order", "SIZE 4 4 4", "TYPE F F F", "supposed to start with SIZE"},
		{"position type", "TYPE F F F", "TYPE F I F", "unsupported position field type"},
		{"size", "SIZE 4 4 4", "SIZE 4 4 3", "invalid SIZE field 3"},
		{"huge size", "SIZE 4 4 4", "SIZE 4 4 4611686018427387904", "invalid SIZE field"},
		{"count", "COUNT 1 1 1", "COUNT 1 2 1", "unsupported COUNT"},
		{"points", "POINTS 3", "POINTS 4", "does not match WIDTH*HEIGHT"},
		{"compressed", "DATA ascii", "DATA binary_compressed", "compressed pcd not yet supported"},
		{"data", "DATA ascii", "DATA text", "unsupported pcd data type"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadPCD(strings.NewReader(strings.Replace(asciiHeader, tc.old, tc.new, 1)))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.expected)
		})
	}

	t.Run("huge point count", func(t *testing.T) {
		header := strings.Replace(asciiHeader, "WIDTH 3", "WIDTH 1099511627776", 1)
		header = strings.Replace(header, "POINTS 3", "POINTS 1099511627776", 1)
		_, err := ReadPCD(strings.NewReader(header + "1 1 1\n"))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "error reading point 1")

		binaryHeader := strings.Replace(header, "DATA ascii", "DATA binary", 1)
		_, err = ReadPCD(strings.NewReader(binaryHeader + string(make([]byte, 12))))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "error reading point 1")
	})

	_, err := ReadPCD(strings.NewReader("VERSION .7\nFIELDS x y z\n"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestToPCD(t *testing.T) {
	points := []r3.Vector{{X: 0.5, Y: 1, Z: -2}, {X: 3, Y: 4.25, Z: 5}}

	for _, pcdType := range []PCDType{PCDAscii, PCDBinary} {
		t.Run(pcdType.String(), func(t *testing.T) {
			var buf bytes.Buffer
			test.That(t, ToPCD(points, &buf, pcdType), test.ShouldBeNil)
			read, err := ReadPCD(&buf)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, read, test.ShouldResemble, points)
		})
	}

	var buf bytes.Buffer
	test.That(t, ToPCD(points, &buf, PCDAscii), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEndWith, "POINTS 2\nDATA ascii\n0.5 1 -2\n3 4.25 5\n")

	test.That(t, ToPCD(points, &buf, PCDCompressed), test.ShouldNotBeNil)
}

func TestFiles(t *testing.T) {
	points := []r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0, Z: 2.5}}
	dir := t.TempDir()

	fn := filepath.Join(dir, "points.pcd")
	test.That(t, WriteToFile(points, fn), test.ShouldBeNil)
	read, err := NewFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read, test.ShouldResemble, points)

	fn = filepath.Join(dir, "points.las")
	test.That(t, WriteToFile(points, fn), test.ShouldBeNil)
	read, err = NewFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(read), test.ShouldEqual, len(points))
	for i, p := range read {
		test.That(t, p.X, test.ShouldAlmostEqual, points[i].X, 0.01)
		test.That(t, p.Y, test.ShouldAlmostEqual, points[i].Y, 0.01)
		test.That(t, p.Z, test.ShouldAlmostEqual, points[i].Z, 0.01)
	}

	_, err = NewFromFile(filepath.Join(dir, "points.xyz"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, WriteToFile(points, filepath.Join(dir, "points.xyz")), test.ShouldNotBeNil)
	_, err = NewFromFile(filepath.Join(dir, "missing.pcd"))
	test.That(t, err, test.ShouldNotBeNil)
}
