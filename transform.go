package formex

import (
	"math"

	"github.com/formex3d/formex/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const deg = math.Pi / 180

// Map returns f with fn applied to every point.
func (f Formex) Map(fn func(r3.Vec) r3.Vec) Formex {
	g := f.deep()
	for i, p := range g.coords {
		g.coords[i] = fn(p)
	}
	return g
}

// affine applies a d3.Transform to every point.
func (f Formex) affine(t d3.Transform) Formex {
	return f.Map(t.Transform)
}

// Translate returns f translated over vector v.
func (f Formex) Translate(v r3.Vec) Formex {
	return f.affine(d3.Transform{}.Translate(v))
}

// TranslateAxis returns f translated over a distance along a
// coordinate axis (0, 1, 2 for x, y, z).
func (f Formex) TranslateAxis(axis int, dist float64) Formex {
	return f.Translate(r3.Scale(dist, d3.Axis(axis)))
}

// Scale returns f with coordinates scaled per axis. Zero or negative
// components flatten or mirror the geometry.
func (f Formex) Scale(s r3.Vec) Formex {
	return f.affine(d3.Transform{}.Scale(r3.Vec{}, s))
}

// ScaleUniform returns f scaled by the same factor along every axis.
func (f Formex) ScaleUniform(k float64) Formex {
	return f.Scale(d3.Elem(k))
}

// Rotate returns f rotated by an angle in degrees about a coordinate
// axis through the origin.
func (f Formex) Rotate(angle float64, axis int) Formex {
	return f.RotateAround(angle, d3.Axis(axis), r3.Vec{})
}

// RotateAround returns f rotated by an angle in degrees about the axis
// with direction dir through the point origin.
func (f Formex) RotateAround(angle float64, dir, origin r3.Vec) Formex {
	return f.affine(d3.Rotate(angle*deg, dir, origin))
}

// Reflect returns f mirrored in the plane perpendicular to a
// coordinate axis at position pos along that axis.
func (f Formex) Reflect(axis int, pos float64) Formex {
	origin := r3.Scale(pos, d3.Axis(axis))
	factor := d3.Put(d3.Elem(1), axis, -1)
	return f.affine(d3.Transform{}.Scale(origin, factor))
}

// Mirror returns f together with its reflection in the plane
// perpendicular to a coordinate axis at position pos.
func (f Formex) Mirror(axis int, pos float64) Formex {
	g, err := Concat(f, f.Reflect(axis, pos))
	if err != nil {
		panic(err)
	}
	return g
}

// Shear returns f skewed such that the axis coordinate of every point
// picks up skew times its axis1 coordinate.
func (f Formex) Shear(axis, axis1 int, skew float64) Formex {
	return f.affine(d3.Transform{}.Shear(axis, axis1, skew))
}

// Shrink returns f with every element scaled by factor towards its own
// centroid. Factors below 1 create gaps between adjacent elements,
// useful to expose the element structure of a surface.
func (f Formex) Shrink(factor float64) Formex {
	g := f.deep()
	n := f.Nelems()
	for i := 0; i < n; i++ {
		el := g.coords[i*f.nplex : (i+1)*f.nplex]
		c := d3.Set(el).Mean()
		for j, p := range el {
			el[j] = r3.Add(c, r3.Scale(factor, r3.Sub(p, c)))
		}
	}
	return g
}

// Cylindrical maps f onto cylindrical coordinates. The axes select
// which cartesian coordinate acts as distance, angle and height, and
// scale multiplies each of them before the mapping. The angle is in
// degrees. With the default axes [0, 1, 2] a planar grid wraps into a
// cylinder around z.
func (f Formex) Cylindrical(axes [3]int, scale [3]float64) Formex {
	return f.Map(func(p r3.Vec) r3.Vec {
		r := scale[0] * d3.Get(p, axes[0])
		theta := deg * scale[1] * d3.Get(p, axes[1])
		z := scale[2] * d3.Get(p, axes[2])
		return r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
	})
}

// Spherical maps f onto spherical coordinates. The axes select which
// cartesian coordinate acts as longitude, latitude and distance, each
// multiplied by its scale. Angles are in degrees; when colat is true
// the latitude value is interpreted as colatitude, measured from the
// north pole instead of the equator.
func (f Formex) Spherical(axes [3]int, scale [3]float64, colat bool) Formex {
	return f.Map(func(p r3.Vec) r3.Vec {
		long := deg * scale[0] * d3.Get(p, axes[0])
		lat := deg * scale[1] * d3.Get(p, axes[1])
		r := scale[2] * d3.Get(p, axes[2])
		if colat {
			lat = 90*deg - lat
		}
		rc := r * math.Cos(lat)
		return r3.Vec{X: rc * math.Cos(long), Y: rc * math.Sin(long), Z: r * math.Sin(lat)}
	})
}

// Bump returns f with the axis coordinate deformed by a radial bump
// centered at a. The deformation of a point at distance d from the
// center, measured in the plane of the two other axes, is
// fn(d) * a[axis] / fn(0). fn(0) must be nonzero.
func (f Formex) Bump(axis int, a r3.Vec, fn func(float64) float64) Formex {
	u, v := otherAxes(axis)
	return f.bump(axis, a, fn, func(p r3.Vec) float64 {
		du := d3.Get(p, u) - d3.Get(a, u)
		dv := d3.Get(p, v) - d3.Get(a, v)
		return math.Hypot(du, dv)
	})
}

// BumpAxis is like Bump but measures the distance to the bump center
// only along the distAxis coordinate, producing a cylindrical bump.
func (f Formex) BumpAxis(axis int, a r3.Vec, fn func(float64) float64, distAxis int) Formex {
	return f.bump(axis, a, fn, func(p r3.Vec) float64 {
		return d3.Get(p, distAxis) - d3.Get(a, distAxis)
	})
}

func (f Formex) bump(axis int, a r3.Vec, fn func(float64) float64, dist func(r3.Vec) float64) Formex {
	f0 := fn(0)
	amp := d3.Get(a, axis) / f0
	return f.Map(func(p r3.Vec) r3.Vec {
		x := d3.Get(p, axis) + fn(dist(p))*amp
		return d3.Put(p, axis, x)
	})
}

// Flare returns f with one end bent away over a distance xf along the
// first of the axes. Points inside the flare zone have their second
// axis coordinate displaced by amount, tapering with the given
// exponent towards the interior. end 0 flares the low coordinate end,
// end 1 the high end.
func (f Formex) Flare(xf, amount float64, axes [2]int, end int, exponent float64) Formex {
	if f.Nelems() == 0 {
		return Formex{}
	}
	box := f.Bbox()
	var ramp func(float64) float64
	if end == 0 {
		x0 := d3.Get(box.Min, axes[0])
		ramp = func(x float64) float64 {
			return math.Max(0, 1-(x-x0)/xf)
		}
	} else {
		x1 := d3.Get(box.Max, axes[0])
		ramp = func(x float64) float64 {
			return math.Max(0, 1-(x1-x)/xf)
		}
	}
	return f.Map(func(p r3.Vec) r3.Vec {
		t := ramp(d3.Get(p, axes[0]))
		x := d3.Get(p, axes[1]) + amount*math.Pow(t, exponent)
		return d3.Put(p, axes[1], x)
	})
}

// Replicate returns n copies of f, the i-th copy translated over
// i*step along a coordinate axis. n below 1 yields an empty Formex.
func (f Formex) Replicate(n, axis int, step float64) Formex {
	return f.replicate(n, r3.Scale(step, d3.Axis(axis)))
}

// Replic2 returns an n1 x n2 grid of copies of f, with steps t1 and t2
// along axes d1 and d2. bias shifts each row along d1 by bias times
// the row number, and taper changes the length of successive rows by
// taper elements.
func (f Formex) Replic2(n1, n2 int, t1, t2 float64, d1, d2 int, bias float64, taper int) Formex {
	if n1 < 1 || n2 < 1 {
		return Formex{}
	}
	u1 := d3.Axis(d1)
	u2 := d3.Axis(d2)
	var rows []Formex
	for j := 0; j < n2; j++ {
		n := n1 + j*taper
		if n < 1 {
			continue
		}
		row := f.replicate(n, r3.Scale(t1, u1))
		off := r3.Add(r3.Scale(float64(j)*t2, u2), r3.Scale(float64(j)*bias, u1))
		rows = append(rows, row.Translate(off))
	}
	g, err := Concat(rows...)
	if err != nil {
		panic(err)
	}
	return g
}

// Rosette returns n copies of f, the i-th copy rotated over i*angle
// degrees about the z axis through the origin.
func (f Formex) Rosette(n int, angle float64) Formex {
	if n < 1 {
		return Formex{}
	}
	copies := make([]Formex, n)
	copies[0] = f
	for i := 1; i < n; i++ {
		copies[i] = f.Rotate(float64(i)*angle, 2)
	}
	g, err := Concat(copies...)
	if err != nil {
		panic(err)
	}
	return g
}

func (f Formex) replicate(n int, step r3.Vec) Formex {
	if n < 1 {
		return Formex{}
	}
	copies := make([]Formex, n)
	copies[0] = f
	for i := 1; i < n; i++ {
		copies[i] = f.Translate(r3.Scale(float64(i), step))
	}
	g, err := Concat(copies...)
	if err != nil {
		panic(err)
	}
	return g
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 2, 0
	case 2:
		return 0, 1
	}
	panic("axis out of range")
}
