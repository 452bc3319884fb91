// Package mesh converts Formex geometry to and from finite element
// meshes with shared nodes, and reads and writes the OBJ and STL
// interchange formats.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/formex3d/formex"
	"github.com/formex3d/formex/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a connectivity based representation of geometry: a pool of
// unique node coordinates and elements referring to them by index. All
// elements have the same number of nodes.
type Mesh struct {
	// Coords holds the unique node coordinates.
	Coords []r3.Vec
	// Elems holds one row of node indices per element.
	Elems [][]int
	// Prop holds one property tag per element, or nil.
	Prop []int
}

// FromFormex converts a Formex to a Mesh by fusing points closer than
// tol into shared nodes. A zero tol uses 1e-5 times the diagonal size
// of the Formex. Property tags carry over.
func FromFormex(f formex.Formex, tol float64) (*Mesh, error) {
	if f.Nelems() == 0 {
		return &Mesh{}, nil
	}
	if tol < 0 {
		return nil, fmt.Errorf("mesh: negative vertex tolerance %g", tol)
	}
	if tol == 0 {
		tol = 1e-5 * f.Dsize()
		if tol == 0 {
			// a single point or fully degenerate geometry.
			tol = 1e-5
		}
	}
	size := d3.Box(f.Bbox()).Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim/tol > math.MaxInt64/2 {
		return nil, errors.New("mesh: vertex tolerance too small, integer grid overflow")
	}

	// integer grid vertex cache: points snapping to the same cell fuse.
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	m := &Mesh{
		Elems: make([][]int, f.Nelems()),
		Prop:  f.Prop(),
	}
	for i := 0; i < f.Nelems(); i++ {
		el := f.Element(i)
		row := make([]int, len(el))
		for j, vert := range el {
			v := r3.Scale(ri, vert)
			vi := [3]int64{
				int64(math.Round(v.X)),
				int64(math.Round(v.Y)),
				int64(math.Round(v.Z)),
			}
			idx, ok := cache[vi]
			if !ok {
				idx = len(m.Coords)
				cache[vi] = idx
				m.Coords = append(m.Coords, vert)
			}
			row[j] = idx
		}
		m.Elems[i] = row
	}
	return m, nil
}

// Nnodes returns the number of unique nodes.
func (m *Mesh) Nnodes() int { return len(m.Coords) }

// Nelems returns the number of elements.
func (m *Mesh) Nelems() int { return len(m.Elems) }

// Nplex returns the number of nodes per element, 0 for an empty mesh.
func (m *Mesh) Nplex() int {
	if len(m.Elems) == 0 {
		return 0
	}
	return len(m.Elems[0])
}

// ToFormex expands the mesh back to a Formex, duplicating shared
// nodes. Property tags carry over.
func (m *Mesh) ToFormex() formex.Formex {
	if m.Nelems() == 0 {
		return formex.Formex{}
	}
	elems := make([][]r3.Vec, m.Nelems())
	for i, row := range m.Elems {
		el := make([]r3.Vec, len(row))
		for j, n := range row {
			el[j] = m.Coords[n]
		}
		elems[i] = el
	}
	f := formex.MustNew(elems)
	if m.Prop != nil {
		f = f.WithProp(m.Prop...)
	}
	return f
}

// NodeValence returns for every node the number of elements using it.
// Structural models use it to classify nodes: in a regular grid
// interior nodes have full valence and boundary or support nodes less.
func (m *Mesh) NodeValence() []int {
	count := make([]int, m.Nnodes())
	for _, row := range m.Elems {
		for _, n := range row {
			count[n]++
		}
	}
	return count
}

// NodesWithValence returns the sorted node numbers whose valence
// passes the keep test.
func (m *Mesh) NodesWithValence(keep func(int) bool) []int {
	var out []int
	for n, c := range m.NodeValence() {
		if keep(c) {
			out = append(out, n)
		}
	}
	return out
}

// BboxOf returns the bounding box of the given nodes.
func (m *Mesh) BboxOf(nodes []int) r3.Box {
	if len(nodes) == 0 {
		return r3.Box{}
	}
	box := d3.Box{Min: m.Coords[nodes[0]], Max: m.Coords[nodes[0]]}
	for _, n := range nodes[1:] {
		box = box.Include(m.Coords[n])
	}
	return r3.Box(box)
}

// Extrude extends the mesh in the axis direction over a total length,
// divided in n layers. Point elements become lines and line elements
// quads, with the nodes ordered so that consecutive layers share
// nodes. Higher plexitudes are not supported.
func (m *Mesh) Extrude(n, axis int, length float64) (*Mesh, error) {
	if n < 1 {
		return nil, fmt.Errorf("mesh: cannot extrude in %d layers", n)
	}
	nplex := m.Nplex()
	if nplex != 1 && nplex != 2 {
		return nil, fmt.Errorf("mesh: cannot extrude plexitude %d elements", nplex)
	}
	step := r3.Scale(length/float64(n), d3.Axis(axis))
	nn := m.Nnodes()
	out := &Mesh{
		Coords: make([]r3.Vec, 0, nn*(n+1)),
		Elems:  make([][]int, 0, m.Nelems()*n),
	}
	for layer := 0; layer <= n; layer++ {
		off := r3.Scale(float64(layer), step)
		for _, c := range m.Coords {
			out.Coords = append(out.Coords, r3.Add(c, off))
		}
	}
	for layer := 0; layer < n; layer++ {
		lo := layer * nn
		hi := lo + nn
		for i, row := range m.Elems {
			var el []int
			if nplex == 1 {
				el = []int{lo + row[0], hi + row[0]}
			} else {
				el = []int{lo + row[0], lo + row[1], hi + row[1], hi + row[0]}
			}
			out.Elems = append(out.Elems, el)
			if m.Prop != nil {
				out.Prop = append(out.Prop, m.Prop[i])
			}
		}
	}
	return out, nil
}
