package shapes

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func TestShape(t *testing.T) {
	f, err := Shape("rtriangle")
	if err != nil {
		t.Fatal(err)
	}
	if f.Nelems() != 3 || f.Nplex() != 2 {
		t.Fatalf("rtriangle gave %dx%d", f.Nelems(), f.Nplex())
	}
	cube, err := Shape("cube")
	if err != nil {
		t.Fatal(err)
	}
	if cube.Nelems() != 12 {
		t.Fatalf("cube wireframe gave %d edges", cube.Nelems())
	}
	if _, err := Shape("dodecahedron"); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}

func TestLineRect(t *testing.T) {
	l := Line(r3.Vec{}, r3.Vec{X: 2}, 4)
	if l.Nelems() != 4 || l.Point(1, 0) != (r3.Vec{X: 0.5}) {
		t.Fatalf("line gave %d segments starting %v", l.Nelems(), l.Point(1, 0))
	}
	r := Rect(r3.Vec{}, r3.Vec{X: 2, Y: 1}, 2, 1)
	if r.Nelems() != 6 {
		t.Fatalf("rect circumference gave %d segments", r.Nelems())
	}
}

func TestRectangle(t *testing.T) {
	quads := Rectangle(3, 2, 6, 2, 0, DiagNone)
	if quads.Nplex() != 4 || quads.Nelems() != 6 {
		t.Fatalf("quad grid gave %dx%d", quads.Nelems(), quads.Nplex())
	}
	box := quads.Bbox()
	if box.Max != (r3.Vec{X: 6, Y: 2}) {
		t.Fatalf("grid bbox max %v", box.Max)
	}
	tris := Rectangle(3, 2, 0, 0, 0, DiagUp)
	if tris.Nplex() != 3 || tris.Nelems() != 12 {
		t.Fatalf("triangle grid gave %dx%d", tris.Nelems(), tris.Nplex())
	}
	x := Rectangle(2, 2, 0, 0, 0, DiagX)
	if x.Nplex() != 3 || x.Nelems() != 16 {
		t.Fatalf("cross grid gave %dx%d", x.Nelems(), x.Nplex())
	}
}

func TestCirclePolygon(t *testing.T) {
	hexagon := Circle(60, 0, 360)
	if hexagon.Nelems() != 6 {
		t.Fatalf("hexagon has %d sides", hexagon.Nelems())
	}
	for i := 0; i < hexagon.Nelems(); i++ {
		for _, p := range hexagon.Element(i) {
			if math.Abs(r3.Norm(p)-1) > tol {
				t.Fatalf("point %v off the unit circle", p)
			}
		}
	}
	arc := Circle(30, 0, 90)
	if arc.Nelems() != 3 {
		t.Fatalf("quarter arc has %d segments", arc.Nelems())
	}
	if Polygon(5).Nelems() != 5 {
		t.Fatal("pentagon should have 5 sides")
	}
}

func TestTriangle(t *testing.T) {
	f := Triangle()
	l := f.Lengths()
	// closed side lengths: the polygonal length of the 3 points is 2.
	if math.Abs(l[0]-2) > tol {
		t.Fatalf("triangle edge path length %g", l[0])
	}
	a := f.Areas()
	if math.Abs(a[0]-math.Sqrt(3)/4) > tol {
		t.Fatalf("triangle area %g", a[0])
	}
}

func TestSector(t *testing.T) {
	f, err := Sector(2, 90, 3, 3, 0, DiagNone)
	if err != nil {
		t.Fatal(err)
	}
	if f.Nplex() != 4 || f.Nelems() != 9 {
		t.Fatalf("sector gave %dx%d", f.Nelems(), f.Nplex())
	}
	box := f.Bbox()
	if math.Abs(box.Max.X-2) > tol || math.Abs(box.Max.Y-2) > tol || box.Min.X > tol {
		t.Fatalf("sector bbox %+v", box)
	}
	cone, err := Sector(2, 360, 2, 8, 1, DiagUp)
	if err != nil {
		t.Fatal(err)
	}
	if cone.Nplex() != 3 {
		t.Fatal("diagonal sector should be triangles")
	}
	if math.Abs(cone.Bbox().Max.Z-1) > tol {
		t.Fatalf("cone height %g", cone.Bbox().Max.Z)
	}
}

func TestCylinder(t *testing.T) {
	c := Cylinder(2, 5, 12, 4, 2, 360, 0, DiagNone)
	if c.Nelems() != 48 {
		t.Fatalf("cylinder gave %d cells", c.Nelems())
	}
	for i := 0; i < c.Nelems(); i++ {
		for _, p := range c.Element(i) {
			if math.Abs(math.Hypot(p.X, p.Y)-1) > tol {
				t.Fatalf("point %v off the cylinder barrel", p)
			}
			if p.Z < -tol || p.Z > 5+tol {
				t.Fatalf("point %v outside the cylinder length", p)
			}
		}
	}
	// truncated cone: radius 1 at the base, 2 at the top.
	cone := Cylinder(2, 4, 12, 4, 4, 360, 0, DiagUp)
	rmin, rmax := math.Inf(1), 0.0
	for i := 0; i < cone.Nelems(); i++ {
		for _, p := range cone.Element(i) {
			r := math.Hypot(p.X, p.Y)
			rmin = math.Min(rmin, r)
			rmax = math.Max(rmax, r)
		}
	}
	if math.Abs(rmin-1) > tol || math.Abs(rmax-2) > tol {
		t.Fatalf("cone radii %g..%g", rmin, rmax)
	}
}

func TestSpheres(t *testing.T) {
	wire := Sphere2(8, 4, 2, -90, 90)
	if wire.Nplex() != 2 {
		t.Fatal("sphere2 should be line elements")
	}
	// 8*4 diagonals + 8*4 meridionals + 8*5 horizontals.
	if wire.Nelems() != 104 {
		t.Fatalf("sphere2 gave %d lines", wire.Nelems())
	}
	for i := 0; i < wire.Nelems(); i++ {
		for _, p := range wire.Element(i) {
			if math.Abs(r3.Norm(p)-2) > tol {
				t.Fatalf("point %v off the sphere", p)
			}
		}
	}
	set := wire.PropSet()
	if len(set) != 3 || set[0] != 1 || set[2] != 3 {
		t.Fatalf("sphere2 props %v", set)
	}

	tri := Sphere3(8, 4, 1, -90, 90)
	if tri.Nplex() != 3 || tri.Nelems() != 64 {
		t.Fatalf("sphere3 gave %dx%d", tri.Nelems(), tri.Nplex())
	}
	// cap cut: latitudes limited to the northern hemisphere.
	north := Sphere3(8, 4, 1, 0, 90)
	if north.Bbox().Min.Z < -tol {
		t.Fatal("cap cut sphere dips below the equator")
	}
}

func TestCuboid(t *testing.T) {
	f := Cuboid(r3.Vec{}, r3.Vec{X: 1, Y: 2, Z: 3})
	if f.Nplex() != 8 || f.Nelems() != 1 {
		t.Fatalf("cuboid gave %dx%d", f.Nelems(), f.Nplex())
	}
	if f.Point(0, 6) != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("corner 6 at %v", f.Point(0, 6))
	}
}

func TestRegularGrid(t *testing.T) {
	pts := RegularGrid(r3.Vec{}, r3.Vec{X: 1, Y: 1}, [3]int{2, 2, 0})
	if len(pts) != 9 {
		t.Fatalf("2x2 grid has %d points", len(pts))
	}
	// x varies fastest.
	if pts[1] != (r3.Vec{X: 0.5}) || pts[3] != (r3.Vec{Y: 0.5}) {
		t.Fatalf("grid ordering wrong: %v %v", pts[1], pts[3])
	}
}
