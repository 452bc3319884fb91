// Package shapes provides ready made Formex generators for simple
// geometries: grids, circles, sectors, cylinders and spheres.
package shapes

import (
	"fmt"
	"math"

	"github.com/formex3d/formex"
	"gonum.org/v1/gonum/spatial/r3"
)

// Patterns names a collection of pattern strings for simple shapes,
// usable with formex.Pattern or Shape.
var Patterns = map[string]string{
	"line":      "l:1",
	"angle":     "l:1+2",
	"square":    "l:1234",
	"plus":      "l:1+2+3+4",
	"cross":     "l:5+6+7+8",
	"diamond":   "l:/45678",
	"rtriangle": "l:164",
	"cube":      "l:1234I/aI/bI/cI/41234",
	"star":      "l:1+2+3+4+5+6+7+8",
	"star3d":    "l:1+2+3+4+5+6+7+8+A+B+C+D+E+F+G+H+a+b+c+d+e+f+g+h",
	"triade":    "2:01020I",
}

// Shape returns the predefined named shape from Patterns.
func Shape(name string) (formex.Formex, error) {
	s, ok := Patterns[name]
	if !ok {
		return formex.Formex{}, fmt.Errorf("shapes: no shape named %q", name)
	}
	return formex.Pattern(s)
}

// Diag selects how the quad cells of a surface generator are split
// into triangles.
type Diag int

const (
	// DiagNone keeps quadrilateral cells.
	DiagNone Diag = iota
	// DiagUp splits cells along the up diagonal.
	DiagUp
	// DiagDown splits cells along the down diagonal.
	DiagDown
	// DiagX splits cells along both diagonals into four triangles.
	DiagX
)

// Point returns a single point Formex.
func Point(p r3.Vec) formex.Formex {
	return formex.FromPoints([]r3.Vec{p})
}

// Line returns the line between two points, split in n segments.
func Line(p1, p2 r3.Vec, n int) formex.Formex {
	f := formex.MustNew([][]r3.Vec{{p1, p2}})
	g, err := f.Divide(n)
	if err != nil {
		panic(err)
	}
	return g
}

// Rect returns the circumference of the rectangle with opposite corner
// points p1 and p2, the x parallel edges divided in nx parts and the
// other edges in ny parts.
func Rect(p1, p2 r3.Vec, nx, ny int) formex.Formex {
	p12 := r3.Vec{X: p2.X, Y: p1.Y, Z: p1.Z}
	p21 := r3.Vec{X: p1.X, Y: p2.Y, Z: p2.Z}
	f, err := formex.Concat(
		Line(p1, p12, nx),
		Line(p12, p2, ny),
		Line(p2, p21, nx),
		Line(p21, p1, ny),
	)
	if err != nil {
		panic(err)
	}
	return f
}

// Rectangle returns a rectangular surface of size b by h in the x,y
// plane with a corner at the origin, divided in nx by ny cells. Zero b
// or h give a modular grid of unit cells. bias shifts successive rows
// along x. The cells are quads, split into triangles per diag.
func Rectangle(nx, ny int, b, h, bias float64, diag Diag) formex.Formex {
	var base formex.Formex
	switch diag {
	case DiagX:
		base = formex.MustNew([][]r3.Vec{{
			{}, {X: 1, Y: -1}, {X: 1, Y: 1},
		}}).Rosette(4, 90).Translate(r3.Vec{X: -1, Y: -1}).ScaleUniform(0.5)
	case DiagUp:
		base = formex.MustPattern("3:012934")
	case DiagDown:
		base = formex.MustPattern("3:016823")
	default:
		base = formex.MustPattern("4:0123")
	}
	sx, sy := 1.0, 1.0
	if b != 0 {
		sx = b / float64(nx)
	}
	if h != 0 {
		sy = h / float64(ny)
	}
	return base.Replic2(nx, ny, 1, 1, 0, 1, bias, 0).Scale(r3.Vec{X: sx, Y: sy})
}

// Circle returns a polygonal approximation of a unit circle or arc in
// the x,y plane, centered at the origin and starting on the x axis.
// dash is the angle spanned by each segment, mod the angle between the
// start points of subsequent segments (0 means equal to dash, giving a
// continuous line) and arc the total angle (360 for a full circle).
// All angles are in degrees.
func Circle(dash, mod, arc float64) formex.Formex {
	if mod == 0 {
		mod = dash
	}
	ns := int(math.Round(arc / mod))
	a := dash * math.Pi / 180
	seg := formex.MustNew([][]r3.Vec{{
		{X: 1},
		{X: math.Cos(a), Y: math.Sin(a)},
	}})
	return seg.Rosette(ns, mod)
}

// Polygon returns the circumference of a regular polygon with n sides
// inscribed in the unit circle, the first point on the x axis.
func Polygon(n int) formex.Formex {
	return Circle(360/float64(n), 0, 360)
}

// Triangle returns an equilateral triangle with unit side length, the
// first point at the origin and the base along the x axis.
func Triangle() formex.Formex {
	return formex.MustNew([][]r3.Vec{{
		{}, {X: 1}, {X: 0.5, Y: 0.5 * math.Sqrt(3)},
	}})
}

// Sector returns a sector of a circle with radius r and opening angle
// t degrees, divided in nr radial and nt tangential parts. A nonzero h
// shears the sector into a conical surface with its top at the origin
// and base circle at z=h. Cells are quads collapsing to triangles at
// the center, or triangles per diag.
func Sector(r, t float64, nr, nt int, h float64, diag Diag) (formex.Formex, error) {
	pts := make([]r3.Vec, nr+1)
	for i := range pts {
		pts[i] = r3.Vec{X: r * float64(i) / float64(nr)}
	}
	p := formex.FromPoints(pts)
	if h != 0 {
		p = p.Shear(2, 0, h/r)
	}
	q := p.Rotate(t/float64(nt), 2)

	var cell formex.Formex
	var err error
	switch diag {
	case DiagUp:
		var lo, hi formex.Formex
		lo, err = formex.Connect([]formex.Formex{p, p, q}, nil, []int{0, 1, 1}, false)
		if err == nil {
			hi, err = formex.Connect([]formex.Formex{p, q, q}, nil, []int{1, 2, 1}, false)
		}
		if err == nil {
			cell, err = formex.Concat(lo, hi)
		}
	case DiagDown:
		var lo, hi formex.Formex
		lo, err = formex.Connect([]formex.Formex{q, p, q}, nil, []int{0, 1, 1}, false)
		if err == nil {
			hi, err = formex.Connect([]formex.Formex{p, p, q}, nil, []int{1, 2, 1}, false)
		}
		if err == nil {
			cell, err = formex.Concat(lo, hi)
		}
	default:
		cell, err = formex.Connect([]formex.Formex{p, p, q, q}, nil, []int{0, 1, 1, 0}, false)
	}
	if err != nil {
		return formex.Formex{}, fmt.Errorf("shapes: sector: %w", err)
	}
	return cell.Rosette(nt, t/float64(nt)), nil
}

// Cylinder returns a cylindrical, conical or truncated conical surface
// with its axis along z. d is the diameter at z=0 and d1 the diameter
// at z=l; equal values give a cylinder, a zero value a cone. The
// surface has nt elements along the circumference, spanning angle
// degrees, and nl along the length.
func Cylinder(d, l float64, nt, nl int, d1, angle, bias float64, diag Diag) formex.Formex {
	c := Rectangle(nl, nt, l, angle, bias, diag).TranslateAxis(2, d/2)
	if d1 != d {
		c = c.Shear(2, 0, (d1-d)/l/2)
	}
	return c.Cylindrical([3]int{2, 1, 0}, [3]float64{1, 1, 1})
}

// Sphere2 returns a wireframe sphere with radius r modeled by nx
// longitude circles, ny latitude circles and their diagonals. The
// three line sets carry property tags 1 (diagonals), 2 (meridionals)
// and 3 (horizontals). bot and top cut off the caps at the given
// latitudes in degrees.
func Sphere2(nx, ny int, r, bot, top float64) formex.Formex {
	base := formex.MustPattern("l:543").WithProp(1, 2, 3)
	d := base.Select(0).Replic2(nx, ny, 1, 1, 0, 1, 0, 0)
	m := base.Select(1).Replic2(nx, ny, 1, 1, 0, 1, 0, 0)
	h := base.Select(2).Replic2(nx, ny+1, 1, 1, 0, 1, 0, 0)
	grid, err := formex.Concat(m, d, h)
	if err != nil {
		panic(err)
	}
	s := (top - bot) / float64(ny)
	return grid.Translate(r3.Vec{Y: bot / s, Z: 1}).
		Spherical([3]int{0, 1, 2}, [3]float64{360 / float64(nx), s, r}, false)
}

// Sphere3 returns a triangulated sphere with radius r modeled by nx
// longitude and ny latitude circles. The two triangle sets carry
// property tags 1 (base at the bottom) and 2 (base at the top). bot
// and top cut off the caps at the given latitudes in degrees.
func Sphere3(nx, ny int, r, bot, top float64) formex.Formex {
	base := formex.MustNew([][]r3.Vec{
		{{}, {X: 1}, {X: 1, Y: 1}},
		{{X: 1, Y: 1}, {Y: 1}, {}},
	}).WithProp(1, 2)
	grid := base.Replic2(nx, ny, 1, 1, 0, 1, 0, 0)
	s := (top - bot) / float64(ny)
	return grid.Translate(r3.Vec{Y: bot / s, Z: 1}).
		Spherical([3]int{0, 1, 2}, [3]float64{360 / float64(nx), s, r}, false)
}

// Cuboid returns a single hexahedral element spanning the box from
// xmin to xmax, corner points numbered in the usual hex8 order.
func Cuboid(xmin, xmax r3.Vec) formex.Formex {
	x0, y0, z0 := xmin.X, xmin.Y, xmin.Z
	x1, y1, z1 := xmax.X, xmax.Y, xmax.Z
	return formex.MustNew([][]r3.Vec{{
		{X: x0, Y: y0, Z: z0},
		{X: x1, Y: y0, Z: z0},
		{X: x1, Y: y1, Z: z0},
		{X: x0, Y: y1, Z: z0},
		{X: x0, Y: y0, Z: z1},
		{X: x1, Y: y0, Z: z1},
		{X: x1, Y: y1, Z: z1},
		{X: x0, Y: y1, Z: z1},
	}})
}

// RegularGrid returns the points of a regular grid between x0 and x1
// with nx divisions along each axis. Points are numbered with the x
// axis varying fastest. Axes with zero divisions stay collapsed.
func RegularGrid(x0, x1 r3.Vec, nx [3]int) []r3.Vec {
	div := func(n int) int {
		if n < 1 {
			return 1
		}
		return n + 1
	}
	step := func(a, b float64, n int) float64 {
		if n < 1 {
			return 0
		}
		return (b - a) / float64(n)
	}
	sx := step(x0.X, x1.X, nx[0])
	sy := step(x0.Y, x1.Y, nx[1])
	sz := step(x0.Z, x1.Z, nx[2])
	pts := make([]r3.Vec, 0, div(nx[0])*div(nx[1])*div(nx[2]))
	for k := 0; k < div(nx[2]); k++ {
		for j := 0; j < div(nx[1]); j++ {
			for i := 0; i < div(nx[0]); i++ {
				pts = append(pts, r3.Vec{
					X: x0.X + float64(i)*sx,
					Y: x0.Y + float64(j)*sy,
					Z: x0.Z + float64(k)*sz,
				})
			}
		}
	}
	return pts
}
