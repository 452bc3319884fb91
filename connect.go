package formex

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Connect returns a Formex whose elements are connections between
// corresponding elements of the input Formices. The result has
// plexitude len(list): point j of element i is point nodid[j] of
// element i+bias[j] of list[j]. nodid and bias may be nil, defaulting
// to all zeros; biases must not be negative. With loop false the
// result has as many elements as the
// shortest biased input allows; with loop true every input wraps
// around and the longest input determines the count.
//
// Connecting a Formex with a biased copy of itself chains its elements:
//
//	segs, _ := formex.Connect([]formex.Formex{pts, pts}, nil, []int{0, 1}, false)
func Connect(list []Formex, nodid, bias []int, loop bool) (Formex, error) {
	m := len(list)
	if m == 0 {
		return Formex{}, fmt.Errorf("formex: connect needs at least one input")
	}
	if nodid == nil {
		nodid = make([]int, m)
	}
	if bias == nil {
		bias = make([]int, m)
	}
	if len(nodid) != m || len(bias) != m {
		return Formex{}, fmt.Errorf("formex: connect got %d inputs, %d node ids, %d biases", m, len(nodid), len(bias))
	}
	n := -1
	for j, f := range list {
		if nodid[j] < 0 || nodid[j] >= f.Nplex() {
			return Formex{}, fmt.Errorf("formex: connect node id %d out of range for plexitude %d", nodid[j], f.Nplex())
		}
		if bias[j] < 0 {
			return Formex{}, fmt.Errorf("formex: connect bias %d is negative", bias[j])
		}
		nj := f.Nelems()
		if !loop {
			nj -= bias[j]
		}
		if n < 0 || (loop && nj > n) || (!loop && nj < n) {
			n = nj
		}
	}
	if n <= 0 {
		return Formex{}, nil
	}
	coords := make([]r3.Vec, 0, n*m)
	for i := 0; i < n; i++ {
		for j, f := range list {
			e := i + bias[j]
			if loop {
				e %= f.Nelems()
			}
			coords = append(coords, f.Point(e, nodid[j]))
		}
	}
	return fromRaw(coords, m, nil), nil
}

// Interpolate returns the linear interpolations of the matching
// elements of f and g at each of the parameter values div. Value 0
// yields the element of f, value 1 that of g; values outside [0, 1]
// extrapolate. The results for all values are concatenated in order,
// so the result has len(div) times the elements of f.
func Interpolate(f, g Formex, div []float64) (Formex, error) {
	if f.Nplex() != g.Nplex() || f.Nelems() != g.Nelems() {
		return Formex{}, fmt.Errorf("formex: interpolate needs congruent operands, got %dx%d and %dx%d",
			f.Nelems(), f.Nplex(), g.Nelems(), g.Nplex())
	}
	coords := make([]r3.Vec, 0, len(div)*len(f.coords))
	for _, d := range div {
		for i, p := range f.coords {
			coords = append(coords, r3.Add(r3.Scale(1-d, p), r3.Scale(d, g.coords[i])))
		}
	}
	return fromRaw(coords, f.nplex, nil), nil
}

// Divide splits every line segment of a plexitude 2 Formex in n equal
// parts, returning a plexitude 2 Formex with n times the elements.
func (f Formex) Divide(n int) (Formex, error) {
	if n < 1 {
		return Formex{}, fmt.Errorf("formex: cannot divide in %d parts", n)
	}
	at := make([]float64, n+1)
	for i := range at {
		at[i] = float64(i) / float64(n)
	}
	return f.DivideAt(at)
}

// DivideAt splits every line segment of a plexitude 2 Formex at the
// given parameter values along the segment, 0 being the first point
// and 1 the second. Consecutive values bound the new segments, so
// len(at)-1 segments replace each element.
func (f Formex) DivideAt(at []float64) (Formex, error) {
	if f.Nplex() != 2 {
		return Formex{}, fmt.Errorf("formex: divide needs plexitude 2, got %d", f.Nplex())
	}
	if len(at) < 2 {
		return Formex{}, fmt.Errorf("formex: divide needs at least 2 parameter values")
	}
	n := f.Nelems()
	coords := make([]r3.Vec, 0, n*2*(len(at)-1))
	var prop []int
	if f.prop != nil {
		prop = make([]int, 0, n*(len(at)-1))
	}
	for i := 0; i < n; i++ {
		a, b := f.Point(i, 0), f.Point(i, 1)
		for k := 1; k < len(at); k++ {
			p := r3.Add(r3.Scale(1-at[k-1], a), r3.Scale(at[k-1], b))
			q := r3.Add(r3.Scale(1-at[k], a), r3.Scale(at[k], b))
			coords = append(coords, p, q)
			if prop != nil {
				prop = append(prop, f.prop[i])
			}
		}
	}
	return fromRaw(coords, 2, prop), nil
}
