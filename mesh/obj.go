package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// OBJWriter writes meshes to a Wavefront OBJ stream. Several meshes
// may be written to the same stream as named objects; vertex indices
// of later objects are offset past the vertices already written, as
// the format requires.
type OBJWriter struct {
	w    *bufio.Writer
	voff int
}

// NewOBJWriter starts an OBJ stream on w.
func NewOBJWriter(w io.Writer) *OBJWriter {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Wavefront OBJ file")
	return &OBJWriter{w: bw}
}

// Write appends the mesh as a named object. Plexitude 1 elements are
// written as points, plexitude 2 as lines and higher plexitudes as
// faces.
func (o *OBJWriter) Write(m *Mesh, name string) error {
	if name != "" {
		fmt.Fprintf(o.w, "o %s\n", name)
	}
	for _, v := range m.Coords {
		fmt.Fprintf(o.w, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	code := "f"
	switch m.Nplex() {
	case 1:
		code = "p"
	case 2:
		code = "l"
	}
	for _, row := range m.Elems {
		o.w.WriteString(code)
		for _, n := range row {
			fmt.Fprintf(o.w, " %d", n+1+o.voff)
		}
		o.w.WriteByte('\n')
	}
	o.voff += len(m.Coords)
	return errors.Wrap(o.w.Flush(), "writing OBJ object")
}

// Flush writes any buffered output.
func (o *OBJWriter) Flush() error {
	return o.w.Flush()
}

// SaveOBJ writes a single mesh to an OBJ file at path.
func SaveOBJ(path, name string, m *Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return NewOBJWriter(file).Write(m, name)
}

// ReadOBJ reads a mesh from a Wavefront OBJ stream. Vertices and the
// point, line and face statements are honored; grouping, texture and
// normal data are skipped. All elements must have the same number of
// vertices.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineno := 0
	for sc.Scan() {
		lineno++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("OBJ line %d: vertex needs 3 coordinates", lineno)
			}
			var v r3.Vec
			var err error
			if v.X, err = strconv.ParseFloat(fields[1], 64); err == nil {
				if v.Y, err = strconv.ParseFloat(fields[2], 64); err == nil {
					v.Z, err = strconv.ParseFloat(fields[3], 64)
				}
			}
			if err != nil {
				return nil, errors.Wrapf(err, "OBJ line %d", lineno)
			}
			m.Coords = append(m.Coords, v)
		case "p", "l", "f":
			row := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				// strip texture/normal references: 7/1/2 -> 7
				if i := strings.IndexByte(f, '/'); i >= 0 {
					f = f[:i]
				}
				n, err := strconv.Atoi(f)
				if err != nil {
					return nil, errors.Wrapf(err, "OBJ line %d", lineno)
				}
				if n < 0 {
					// negative indices count back from the last vertex.
					n = len(m.Coords) + n + 1
				}
				if n < 1 || n > len(m.Coords) {
					return nil, errors.Errorf("OBJ line %d: vertex index %d out of range", lineno, n)
				}
				row = append(row, n-1)
			}
			if len(m.Elems) > 0 && len(row) != len(m.Elems[0]) {
				return nil, errors.Errorf("OBJ line %d: element has %d vertices, want %d", lineno, len(row), len(m.Elems[0]))
			}
			m.Elems = append(m.Elems, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading OBJ")
	}
	return m, nil
}

// LoadOBJ reads a mesh from an OBJ file at path.
func LoadOBJ(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadOBJ(file)
}
