package mesh

import (
	"math"
	"testing"

	"github.com/formex3d/formex"
	"github.com/formex3d/formex/shapes"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFromFormexFuse(t *testing.T) {
	// a 2x2 quad grid has 9 unique nodes shared by 4 cells.
	f := shapes.Rectangle(2, 2, 0, 0, 0, shapes.DiagNone)
	m, err := FromFormex(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Nelems() != 4 || m.Nplex() != 4 {
		t.Fatalf("mesh is %dx%d", m.Nelems(), m.Nplex())
	}
	if m.Nnodes() != 9 {
		t.Fatalf("fused to %d nodes, want 9", m.Nnodes())
	}
	// the center node is shared by all four cells.
	shared := m.NodesWithValence(func(c int) bool { return c == 4 })
	if len(shared) != 1 {
		t.Fatalf("%d nodes with valence 4", len(shared))
	}
	if m.Coords[shared[0]] != (r3.Vec{X: 1, Y: 1}) {
		t.Fatalf("center node at %v", m.Coords[shared[0]])
	}
}

func TestFromFormexTolerance(t *testing.T) {
	// two segments whose shared point is off by less than the tolerance.
	f := formex.MustNew([][]r3.Vec{
		{{}, {X: 1}},
		{{X: 1, Y: 1e-8}, {X: 2}},
	})
	m, err := FromFormex(f, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if m.Nnodes() != 3 {
		t.Fatalf("near coincident points not fused: %d nodes", m.Nnodes())
	}
	strict, err := FromFormex(f, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	if strict.Nnodes() != 4 {
		t.Fatalf("tight tolerance fused to %d nodes", strict.Nnodes())
	}
	if _, err := FromFormex(f, -1); err == nil {
		t.Fatal("expected error for negative tolerance")
	}
}

func TestRoundTrip(t *testing.T) {
	f := shapes.Sphere3(6, 3, 1, -90, 90)
	m, err := FromFormex(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	g := m.ToFormex()
	if g.Nelems() != f.Nelems() || g.Nplex() != f.Nplex() {
		t.Fatalf("round trip gave %dx%d, want %dx%d", g.Nelems(), g.Nplex(), f.Nelems(), f.Nplex())
	}
	// property tags survive.
	if got, want := g.PropSet(), f.PropSet(); len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("props %v, want %v", got, want)
	}
	for i := 0; i < g.Nelems(); i++ {
		for j, p := range g.Element(i) {
			if r3.Norm(r3.Sub(p, f.Point(i, j))) > 1e-4 {
				t.Fatalf("element %d point %d moved to %v", i, j, p)
			}
		}
	}
}

func TestEmptyAndPoint(t *testing.T) {
	m, err := FromFormex(formex.Formex{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Nelems() != 0 || m.Nnodes() != 0 {
		t.Fatal("empty Formex should give empty mesh")
	}
	if g := m.ToFormex(); g.Nelems() != 0 {
		t.Fatal("empty mesh should give empty Formex")
	}
	// a single point has zero diagonal size and still meshes.
	p, err := FromFormex(formex.FromPoints([]r3.Vec{{X: 1}}), 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Nnodes() != 1 {
		t.Fatalf("point mesh has %d nodes", p.Nnodes())
	}
}

func TestExtrude(t *testing.T) {
	// a line along x extruded along z becomes a strip of quads.
	line, err := FromFormex(formex.MustPattern("l:11"), 0)
	if err != nil {
		t.Fatal(err)
	}
	wall, err := line.Extrude(3, 2, 6)
	if err != nil {
		t.Fatal(err)
	}
	if wall.Nelems() != 6 || wall.Nplex() != 4 {
		t.Fatalf("wall is %dx%d", wall.Nelems(), wall.Nplex())
	}
	if wall.Nnodes() != 3*4 {
		t.Fatalf("wall has %d nodes", wall.Nnodes())
	}
	box := wall.ToFormex().Bbox()
	if box.Max != (r3.Vec{X: 2, Z: 6}) {
		t.Fatalf("wall bbox max %v", box.Max)
	}
	// quad corners wind around the cell: consecutive corners differ in
	// exactly one of x and z.
	el := wall.Elems[0]
	for j := 0; j < 4; j++ {
		a := wall.Coords[el[j]]
		b := wall.Coords[el[(j+1)%4]]
		dx := math.Abs(a.X - b.X)
		dz := math.Abs(a.Z - b.Z)
		if (dx == 0) == (dz == 0) {
			t.Fatalf("quad corners %v -> %v do not wind", a, b)
		}
	}

	pts, err := FromFormex(formex.FromPoints([]r3.Vec{{}, {X: 1}}), 0)
	if err != nil {
		t.Fatal(err)
	}
	lines, err := pts.Extrude(2, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if lines.Nplex() != 2 || lines.Nelems() != 4 {
		t.Fatalf("extruded points gave %dx%d", lines.Nelems(), lines.Nplex())
	}
	quads, _ := FromFormex(shapes.Rectangle(1, 1, 0, 0, 0, shapes.DiagNone), 0)
	if _, err := quads.Extrude(1, 2, 1); err == nil {
		t.Fatal("expected error extruding quads")
	}
}

func TestBboxOf(t *testing.T) {
	m, err := FromFormex(formex.MustPattern("l:12"), 0)
	if err != nil {
		t.Fatal(err)
	}
	box := m.BboxOf([]int{0, 1})
	if box.Max != (r3.Vec{X: 1}) {
		t.Fatalf("node bbox max %v", box.Max)
	}
}
