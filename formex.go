// Package formex implements formex algebra: the generation and
// transformation of structured collections of points in 3D space.
//
// A Formex is a set of elements, each element holding the same number
// of points (the plexitude). Plexitude 1 describes unconnected points,
// plexitude 2 line segments, plexitude 3 triangles, plexitude 4
// quadrilaterals and so on. Formices are values: every operation
// returns a new Formex and never modifies its receiver, so operations
// chain naturally:
//
//	f, _ := formex.Pattern("l:164")
//	roof := f.Rosette(4, 90).Replicate(10, 0, 2)
//
// Each element may carry an integer property tag used for set
// selection, colors and downstream load assignment.
package formex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/formex3d/formex/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Formex is an immutable collection of nelems elements of nplex points
// each. The zero value is an empty Formex of plexitude 0.
type Formex struct {
	// coords holds nelems*nplex points in element-major order.
	coords []r3.Vec
	nplex  int
	// prop is nil when no property tags are set, else one tag per element.
	prop []int
}

// New builds a Formex from explicit elements. All elements must have
// the same nonzero number of points.
func New(elems [][]r3.Vec) (Formex, error) {
	if len(elems) == 0 {
		return Formex{}, nil
	}
	nplex := len(elems[0])
	if nplex == 0 {
		return Formex{}, fmt.Errorf("formex: element 0 has no points")
	}
	coords := make([]r3.Vec, 0, len(elems)*nplex)
	for i, el := range elems {
		if len(el) != nplex {
			return Formex{}, fmt.Errorf("formex: element %d has %d points, want %d", i, len(el), nplex)
		}
		coords = append(coords, el...)
	}
	return Formex{coords: coords, nplex: nplex}, nil
}

// MustNew is like New but panics on malformed input. Use for
// compile-time constant geometry.
func MustNew(elems [][]r3.Vec) Formex {
	f, err := New(elems)
	if err != nil {
		panic(err)
	}
	return f
}

// FromPoints builds a plexitude 1 Formex with one element per point.
func FromPoints(points []r3.Vec) Formex {
	if len(points) == 0 {
		return Formex{}
	}
	coords := make([]r3.Vec, len(points))
	copy(coords, points)
	return Formex{coords: coords, nplex: 1}
}

// fromRaw wraps an element-major coordinate slice without copying.
// Callers relinquish ownership of coords and prop.
func fromRaw(coords []r3.Vec, nplex int, prop []int) Formex {
	if len(coords) == 0 {
		return Formex{}
	}
	return Formex{coords: coords, nplex: nplex, prop: prop}
}

// Nelems returns the number of elements.
func (f Formex) Nelems() int {
	if f.nplex == 0 {
		return 0
	}
	return len(f.coords) / f.nplex
}

// Nplex returns the plexitude, the number of points per element.
func (f Formex) Nplex() int { return f.nplex }

// Npoints returns the total number of points, counting repetitions.
func (f Formex) Npoints() int { return len(f.coords) }

// Point returns point j of element i.
func (f Formex) Point(i, j int) r3.Vec {
	return f.coords[i*f.nplex+j]
}

// Element returns the points of element i. The returned slice aliases
// the Formex storage and must not be modified.
func (f Formex) Element(i int) []r3.Vec {
	return f.coords[i*f.nplex : (i+1)*f.nplex]
}

// Coords returns a copy of all points in element-major order.
func (f Formex) Coords() []r3.Vec {
	out := make([]r3.Vec, len(f.coords))
	copy(out, f.coords)
	return out
}

// HasProp reports whether property tags are set.
func (f Formex) HasProp() bool { return f.prop != nil }

// Prop returns a copy of the property tags, or nil when none are set.
func (f Formex) Prop() []int {
	if f.prop == nil {
		return nil
	}
	out := make([]int, len(f.prop))
	copy(out, f.prop)
	return out
}

// PropOf returns the property tag of element i, or 0 when no tags are set.
func (f Formex) PropOf(i int) int {
	if f.prop == nil {
		return 0
	}
	return f.prop[i]
}

// WithProp returns a copy of f with property tags set by cycling
// through p until every element has a tag. An empty p clears the tags.
func (f Formex) WithProp(p ...int) Formex {
	g := f.shallow()
	if len(p) == 0 {
		g.prop = nil
		return g
	}
	g.prop = make([]int, f.Nelems())
	for i := range g.prop {
		g.prop[i] = p[i%len(p)]
	}
	return g
}

// MaxProp returns the highest property tag, or -1 when no tags are set.
func (f Formex) MaxProp() int {
	if f.prop == nil {
		return -1
	}
	max := -1
	for _, p := range f.prop {
		if p > max {
			max = p
		}
	}
	return max
}

// PropSet returns the sorted set of distinct property tags.
func (f Formex) PropSet() []int {
	if f.prop == nil {
		return nil
	}
	seen := make(map[int]bool, 8)
	var set []int
	for _, p := range f.prop {
		if !seen[p] {
			seen[p] = true
			set = append(set, p)
		}
	}
	sort.Ints(set)
	return set
}

// Bbox returns the bounding box of all points. The bounding box of an
// empty Formex is the zero box.
func (f Formex) Bbox() r3.Box {
	if len(f.coords) == 0 {
		return r3.Box{}
	}
	s := d3.Set(f.coords)
	return r3.Box{Min: s.Min(), Max: s.Max()}
}

// Center returns the center of the bounding box.
func (f Formex) Center() r3.Vec {
	return d3.Box(f.Bbox()).Center()
}

// Centroid returns the barycenter of all points.
func (f Formex) Centroid() r3.Vec {
	if len(f.coords) == 0 {
		return r3.Vec{}
	}
	return d3.Set(f.coords).Mean()
}

// Sizes returns the extent of the bounding box along each axis.
func (f Formex) Sizes() r3.Vec {
	return d3.Box(f.Bbox()).Size()
}

// Dsize returns the diagonal size of the bounding box. It is the
// natural length scale of the geometry, used for default tolerances.
func (f Formex) Dsize() float64 {
	return r3.Norm(f.Sizes())
}

// Centroids returns the barycenter of every element.
func (f Formex) Centroids() []r3.Vec {
	n := f.Nelems()
	out := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		out[i] = d3.Set(f.Element(i)).Mean()
	}
	return out
}

// Lengths returns the total polygonal length of every element. For
// plexitude below 2 all lengths are zero.
func (f Formex) Lengths() []float64 {
	n := f.Nelems()
	out := make([]float64, n)
	if f.nplex < 2 {
		return out
	}
	for i := 0; i < n; i++ {
		el := f.Element(i)
		for j := 1; j < len(el); j++ {
			out[i] += r3.Norm(r3.Sub(el[j], el[j-1]))
		}
	}
	return out
}

// Areas returns the area of every element, treating each element as a
// planar polygon fanned about its first point. For plexitude below 3
// all areas are zero.
func (f Formex) Areas() []float64 {
	n := f.Nelems()
	out := make([]float64, n)
	if f.nplex < 3 {
		return out
	}
	for i := 0; i < n; i++ {
		el := f.Element(i)
		var sum r3.Vec
		for j := 1; j < len(el)-1; j++ {
			sum = r3.Add(sum, r3.Cross(r3.Sub(el[j], el[0]), r3.Sub(el[j+1], el[0])))
		}
		out[i] = 0.5 * r3.Norm(sum)
	}
	return out
}

// Concat joins Formices of equal plexitude into one. Empty Formices
// are skipped. Property tags are kept when any input has them, with
// untagged inputs contributing zero tags.
func Concat(list ...Formex) (Formex, error) {
	var nonEmpty []Formex
	hasProp := false
	nplex := 0
	for _, f := range list {
		if f.Nelems() == 0 {
			continue
		}
		if nplex == 0 {
			nplex = f.nplex
		} else if f.nplex != nplex {
			return Formex{}, fmt.Errorf("formex: cannot concatenate plexitude %d with %d", f.nplex, nplex)
		}
		hasProp = hasProp || f.prop != nil
		nonEmpty = append(nonEmpty, f)
	}
	if len(nonEmpty) == 0 {
		return Formex{}, nil
	}
	var coords []r3.Vec
	var prop []int
	for _, f := range nonEmpty {
		coords = append(coords, f.coords...)
		if hasProp {
			if f.prop != nil {
				prop = append(prop, f.prop...)
			} else {
				prop = append(prop, make([]int, f.Nelems())...)
			}
		}
	}
	return fromRaw(coords, nplex, prop), nil
}

// Append returns the concatenation of f and g.
func (f Formex) Append(g Formex) (Formex, error) {
	return Concat(f, g)
}

// Select returns the elements with the given indices, in order.
// Indices may repeat. Out of range indices panic.
func (f Formex) Select(ids ...int) Formex {
	if len(ids) == 0 {
		return Formex{}
	}
	coords := make([]r3.Vec, 0, len(ids)*f.nplex)
	var prop []int
	if f.prop != nil {
		prop = make([]int, 0, len(ids))
	}
	for _, i := range ids {
		coords = append(coords, f.Element(i)...)
		if f.prop != nil {
			prop = append(prop, f.prop[i])
		}
	}
	return fromRaw(coords, f.nplex, prop)
}

// SelectProp returns the elements whose property tag is one of vals.
// A Formex without tags yields an empty result.
func (f Formex) SelectProp(vals ...int) Formex {
	if f.prop == nil {
		return Formex{}
	}
	want := make(map[int]bool, len(vals))
	for _, v := range vals {
		want[v] = true
	}
	var ids []int
	for i, p := range f.prop {
		if want[p] {
			ids = append(ids, i)
		}
	}
	return f.Select(ids...)
}

// SelectNodes returns a Formex keeping only the points with local
// indices idx of every element, in the given order. The result has
// plexitude len(idx).
func (f Formex) SelectNodes(idx ...int) Formex {
	if len(idx) == 0 || f.Nelems() == 0 {
		return Formex{}
	}
	n := f.Nelems()
	coords := make([]r3.Vec, 0, n*len(idx))
	for i := 0; i < n; i++ {
		el := f.Element(i)
		for _, j := range idx {
			coords = append(coords, el[j])
		}
	}
	return fromRaw(coords, len(idx), copyProp(f.prop))
}

// AsPoints returns all points of f as a plexitude 1 Formex. Each point
// inherits the property tag of its element.
func (f Formex) AsPoints() Formex {
	if len(f.coords) == 0 {
		return Formex{}
	}
	coords := make([]r3.Vec, len(f.coords))
	copy(coords, f.coords)
	var prop []int
	if f.prop != nil {
		prop = make([]int, 0, len(f.coords))
		for _, p := range f.prop {
			for j := 0; j < f.nplex; j++ {
				prop = append(prop, p)
			}
		}
	}
	return fromRaw(coords, 1, prop)
}

// Reverse returns f with the point order of every element reversed.
func (f Formex) Reverse() Formex {
	g := f.deep()
	n := f.Nelems()
	for i := 0; i < n; i++ {
		el := g.coords[i*f.nplex : (i+1)*f.nplex]
		for j, k := 0, len(el)-1; j < k; j, k = j+1, k-1 {
			el[j], el[k] = el[k], el[j]
		}
	}
	return g
}

// Split partitions f in nelems single element Formices.
func (f Formex) Split() []Formex {
	n := f.Nelems()
	out := make([]Formex, n)
	for i := 0; i < n; i++ {
		out[i] = f.Select(i)
	}
	return out
}

// TestMode selects how many points of an element must pass a
// coordinate test for the element to pass.
type TestMode int

const (
	// TestAll passes an element when all its points pass.
	TestAll TestMode = iota
	// TestAny passes an element when at least one point passes.
	TestAny
	// TestNone passes an element when no point passes.
	TestNone
)

// TestAxis tests the axis coordinate of every element against the
// range [min, max]. Pass math.Inf values to leave a bound open.
func (f Formex) TestAxis(axis int, min, max float64, mode TestMode) []bool {
	n := f.Nelems()
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		pass := 0
		el := f.Element(i)
		for _, p := range el {
			x := d3.Get(p, axis)
			if x >= min && x <= max {
				pass++
			}
		}
		switch mode {
		case TestAll:
			out[i] = pass == len(el)
		case TestAny:
			out[i] = pass > 0
		case TestNone:
			out[i] = pass == 0
		}
	}
	return out
}

// Clip returns the elements for which keep is true.
// len(keep) must equal Nelems.
func (f Formex) Clip(keep []bool) Formex {
	var ids []int
	for i, k := range keep {
		if k {
			ids = append(ids, i)
		}
	}
	return f.Select(ids...)
}

// CClip returns the elements for which keep is false, the complement
// of Clip.
func (f Formex) CClip(keep []bool) Formex {
	var ids []int
	for i, k := range keep {
		if !k {
			ids = append(ids, i)
		}
	}
	return f.Select(ids...)
}

// String formats the Formex in formian style, one bracketed element
// per line with semicolon separated points.
func (f Formex) String() string {
	var b strings.Builder
	b.WriteString("{")
	n := f.Nelems()
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("[")
		for j, p := range f.Element(i) {
			if j > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%g,%g,%g", p.X, p.Y, p.Z)
		}
		b.WriteString("]")
	}
	b.WriteString("}")
	return b.String()
}

// shallow returns a copy sharing coordinate storage.
// Mutating methods must not use it.
func (f Formex) shallow() Formex {
	return Formex{coords: f.coords, nplex: f.nplex, prop: f.prop}
}

// deep returns a copy with its own coordinate storage and shared
// nothing with f.
func (f Formex) deep() Formex {
	coords := make([]r3.Vec, len(f.coords))
	copy(coords, f.coords)
	return Formex{coords: coords, nplex: f.nplex, prop: copyProp(f.prop)}
}

func copyProp(prop []int) []int {
	if prop == nil {
		return nil
	}
	out := make([]int, len(prop))
	copy(out, prop)
	return out
}
