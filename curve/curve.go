// Package curve implements parametric curves through point sequences:
// polylines, Bezier splines and natural cubic splines. Curves map a
// global parameter t in [0, nparts] to points in space, with integer
// values of t at the given points, and can be approximated by a
// plexitude 2 Formex for further processing.
package curve

import (
	"fmt"

	"github.com/formex3d/formex"
	"gonum.org/v1/gonum/spatial/r3"
)

// Curve is a parametric curve. The global parameter runs from 0 to
// NParts, hitting the construction points at integer values.
type Curve interface {
	// NParts returns the number of parts the curve consists of.
	NParts() int
	// PointAt returns the point at global parameter value t.
	PointAt(t float64) r3.Vec
	// DirectionAt returns the normalized tangent at t.
	DirectionAt(t float64) r3.Vec
}

// localize splits a global parameter into a part index and a local
// parameter in [0, 1]. Values outside [0, nparts] clamp to the ends
// for open curves and wrap around for closed ones.
func localize(t float64, nparts int, closed bool) (int, float64) {
	if closed {
		n := float64(nparts)
		for t < 0 {
			t += n
		}
		for t >= n {
			t -= n
		}
	} else {
		if t < 0 {
			t = 0
		}
		if t > float64(nparts) {
			t = float64(nparts)
		}
	}
	i := int(t)
	if i >= nparts {
		i = nparts - 1
	}
	return i, t - float64(i)
}

// PolyLine is the polygonal curve through a list of points.
type PolyLine struct {
	pts    []r3.Vec
	closed bool
}

// NewPolyLine builds the polyline through the given points. A closed
// polyline has an extra part connecting the last point to the first.
func NewPolyLine(pts []r3.Vec, closed bool) (*PolyLine, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("curve: polyline needs at least 2 points, got %d", len(pts))
	}
	own := make([]r3.Vec, len(pts))
	copy(own, pts)
	return &PolyLine{pts: own, closed: closed}, nil
}

func (p *PolyLine) NParts() int {
	if p.closed {
		return len(p.pts)
	}
	return len(p.pts) - 1
}

// Closed reports whether the polyline is closed.
func (p *PolyLine) Closed() bool { return p.closed }

// Length returns the total length of the polyline.
func (p *PolyLine) Length() float64 {
	var sum float64
	for i := 0; i < p.NParts(); i++ {
		sum += r3.Norm(r3.Sub(p.point(i+1), p.point(i)))
	}
	return sum
}

func (p *PolyLine) point(i int) r3.Vec {
	return p.pts[i%len(p.pts)]
}

func (p *PolyLine) PointAt(t float64) r3.Vec {
	i, u := localize(t, p.NParts(), p.closed)
	a, b := p.point(i), p.point(i+1)
	return r3.Add(r3.Scale(1-u, a), r3.Scale(u, b))
}

func (p *PolyLine) DirectionAt(t float64) r3.Vec {
	i, _ := localize(t, p.NParts(), p.closed)
	return r3.Unit(r3.Sub(p.point(i+1), p.point(i)))
}

// Formex returns the polyline parts as a plexitude 2 Formex.
func (p *PolyLine) Formex() formex.Formex {
	elems := make([][]r3.Vec, p.NParts())
	for i := range elems {
		elems[i] = []r3.Vec{p.point(i), p.point(i + 1)}
	}
	return formex.MustNew(elems)
}

// BezierSpline is a piecewise Bezier curve of degree 1, 2 or 3 through
// a list of points. Tangents at the points are chosen so that
// consecutive parts join smoothly; the curl parameter sets how far the
// inner control points lie along the tangents, as a fraction of the
// part chord length.
type BezierSpline struct {
	degree int
	closed bool
	// ctrl holds nparts groups of degree+1 control points, with the
	// last point of each group equal to the first of the next.
	ctrl [][]r3.Vec
}

// DefaultCurl is the curl value giving well rounded curves.
const DefaultCurl = 1.0 / 3.0

// NewBezierSpline builds a Bezier spline of the given degree through
// the points. Degree 1 is the polyline, degree 2 quadratic and degree
// 3 cubic. A closed spline adds a part from the last point back to the
// first. Pass DefaultCurl for curl unless flatter (smaller) or rounder
// (larger) curves are wanted.
func NewBezierSpline(pts []r3.Vec, degree int, closed bool, curl float64) (*BezierSpline, error) {
	if degree < 1 || degree > 3 {
		return nil, fmt.Errorf("curve: unsupported Bezier degree %d", degree)
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("curve: Bezier spline needs at least 2 points, got %d", len(pts))
	}
	if curl < 0 {
		return nil, fmt.Errorf("curve: negative curl %g", curl)
	}
	n := len(pts)
	nparts := n - 1
	if closed {
		nparts = n
	}
	point := func(i int) r3.Vec { return pts[((i%n)+n)%n] }

	// tangent at point i: normalized mean of the adjacent chord
	// directions, single chord at the open ends.
	tangent := func(i int) r3.Vec {
		var prev, next r3.Vec
		havePrev := closed || i > 0
		haveNext := closed || i < n-1
		if havePrev {
			prev = r3.Sub(point(i), point(i-1))
		}
		if haveNext {
			next = r3.Sub(point(i+1), point(i))
		}
		switch {
		case havePrev && haveNext:
			return r3.Unit(r3.Add(r3.Unit(prev), r3.Unit(next)))
		case haveNext:
			return r3.Unit(next)
		default:
			return r3.Unit(prev)
		}
	}

	ctrl := make([][]r3.Vec, nparts)
	for i := 0; i < nparts; i++ {
		a, b := point(i), point(i+1)
		switch degree {
		case 1:
			ctrl[i] = []r3.Vec{a, b}
		default:
			l := curl * r3.Norm(r3.Sub(b, a))
			c1 := r3.Add(a, r3.Scale(l, tangent(i)))
			c2 := r3.Sub(b, r3.Scale(l, tangent(i+1)))
			if degree == 2 {
				ctrl[i] = []r3.Vec{a, r3.Scale(0.5, r3.Add(c1, c2)), b}
			} else {
				ctrl[i] = []r3.Vec{a, c1, c2, b}
			}
		}
	}
	return &BezierSpline{degree: degree, closed: closed, ctrl: ctrl}, nil
}

func (s *BezierSpline) NParts() int { return len(s.ctrl) }

// Degree returns the polynomial degree of the spline parts.
func (s *BezierSpline) Degree() int { return s.degree }

// Closed reports whether the spline is closed.
func (s *BezierSpline) Closed() bool { return s.closed }

func (s *BezierSpline) PointAt(t float64) r3.Vec {
	i, u := localize(t, s.NParts(), s.closed)
	return deCasteljau(s.ctrl[i], u)
}

func (s *BezierSpline) DirectionAt(t float64) r3.Vec {
	i, u := localize(t, s.NParts(), s.closed)
	c := s.ctrl[i]
	// the derivative of a Bezier curve is the degree times the Bezier
	// curve of the control point differences.
	diff := make([]r3.Vec, len(c)-1)
	for j := range diff {
		diff[j] = r3.Sub(c[j+1], c[j])
	}
	return r3.Unit(deCasteljau(diff, u))
}

// PointsAt returns the points at each of the parameter values.
func (s *BezierSpline) PointsAt(ts []float64) []r3.Vec {
	out := make([]r3.Vec, len(ts))
	for i, t := range ts {
		out[i] = s.PointAt(t)
	}
	return out
}

// DirectionsAt returns the normalized tangents at each of the
// parameter values.
func (s *BezierSpline) DirectionsAt(ts []float64) []r3.Vec {
	out := make([]r3.Vec, len(ts))
	for i, t := range ts {
		out[i] = s.DirectionAt(t)
	}
	return out
}

// Approx approximates the spline by a plexitude 2 Formex with ndiv
// straight segments per part.
func (s *BezierSpline) Approx(ndiv int) formex.Formex {
	return approx(s, ndiv)
}

// Formex returns the polyline approximation with one segment per part.
func (s *BezierSpline) Formex() formex.Formex {
	return approx(s, 1)
}

func deCasteljau(ctrl []r3.Vec, u float64) r3.Vec {
	pts := make([]r3.Vec, len(ctrl))
	copy(pts, ctrl)
	for m := len(pts) - 1; m > 0; m-- {
		for j := 0; j < m; j++ {
			pts[j] = r3.Add(r3.Scale(1-u, pts[j]), r3.Scale(u, pts[j+1]))
		}
	}
	return pts[0]
}

func approx(c Curve, ndiv int) formex.Formex {
	if ndiv < 1 {
		ndiv = 1
	}
	n := c.NParts() * ndiv
	elems := make([][]r3.Vec, n)
	step := float64(c.NParts()) / float64(n)
	prev := c.PointAt(0)
	for i := 0; i < n; i++ {
		next := c.PointAt(float64(i+1) * step)
		elems[i] = []r3.Vec{prev, next}
		prev = next
	}
	return formex.MustNew(elems)
}
