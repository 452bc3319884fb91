package curve

import (
	"fmt"

	"github.com/formex3d/formex"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// NaturalSpline is a cubic spline through a list of points with
// continuous first and second derivatives and zero curvature at the
// open ends.
type NaturalSpline struct {
	pts []r3.Vec
	// m holds the second derivative of the spline at every point, per
	// coordinate.
	m []r3.Vec
}

// NewNaturalSpline builds the natural cubic spline through the points,
// parameterized uniformly with parameter 1 between consecutive points.
func NewNaturalSpline(pts []r3.Vec) (*NaturalSpline, error) {
	n := len(pts)
	if n < 3 {
		return nil, fmt.Errorf("curve: natural spline needs at least 3 points, got %d", n)
	}
	own := make([]r3.Vec, n)
	copy(own, pts)

	// Solve the tridiagonal system for the interior second
	// derivatives; the natural end conditions fix m[0] = m[n-1] = 0.
	k := n - 2
	a := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		a.Set(i, i, 4)
		if i > 0 {
			a.Set(i, i-1, 1)
		}
		if i < k-1 {
			a.Set(i, i+1, 1)
		}
	}
	rhs := mat.NewDense(k, 3, nil)
	for i := 0; i < k; i++ {
		d := r3.Scale(6, r3.Add(r3.Sub(own[i], own[i+1]), r3.Sub(own[i+2], own[i+1])))
		rhs.Set(i, 0, d.X)
		rhs.Set(i, 1, d.Y)
		rhs.Set(i, 2, d.Z)
	}
	var sol mat.Dense
	if err := sol.Solve(a, rhs); err != nil {
		return nil, fmt.Errorf("curve: natural spline system: %w", err)
	}
	m := make([]r3.Vec, n)
	for i := 0; i < k; i++ {
		m[i+1] = r3.Vec{X: sol.At(i, 0), Y: sol.At(i, 1), Z: sol.At(i, 2)}
	}
	return &NaturalSpline{pts: own, m: m}, nil
}

func (s *NaturalSpline) NParts() int { return len(s.pts) - 1 }

func (s *NaturalSpline) PointAt(t float64) r3.Vec {
	i, u := localize(t, s.NParts(), false)
	a, b := s.pts[i], s.pts[i+1]
	ma, mb := s.m[i], s.m[i+1]
	v := 1 - u
	// cubic Hermite form in terms of the end second derivatives.
	p := r3.Add(r3.Scale(v, a), r3.Scale(u, b))
	p = r3.Add(p, r3.Scale(v*(v*v-1)/6, ma))
	p = r3.Add(p, r3.Scale(u*(u*u-1)/6, mb))
	return p
}

func (s *NaturalSpline) DirectionAt(t float64) r3.Vec {
	i, u := localize(t, s.NParts(), false)
	a, b := s.pts[i], s.pts[i+1]
	ma, mb := s.m[i], s.m[i+1]
	v := 1 - u
	d := r3.Sub(b, a)
	d = r3.Add(d, r3.Scale((1-3*v*v)/6, ma))
	d = r3.Add(d, r3.Scale((3*u*u-1)/6, mb))
	return r3.Unit(d)
}

// Approx approximates the spline by a plexitude 2 Formex with ndiv
// straight segments per part.
func (s *NaturalSpline) Approx(ndiv int) formex.Formex {
	return approx(s, ndiv)
}
