package formex

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPatternLine(t *testing.T) {
	f, err := Pattern("l:164")
	if err != nil {
		t.Fatal(err)
	}
	if f.Nplex() != 2 || f.Nelems() != 3 {
		t.Fatalf("right triangle gave %dx%d", f.Nelems(), f.Nplex())
	}
	want := [][2]r3.Vec{
		{{}, {X: 1}},
		{{X: 1}, {Y: 1}},
		{{Y: 1}, {}},
	}
	for i, w := range want {
		if f.Point(i, 0) != w[0] || f.Point(i, 1) != w[1] {
			t.Fatalf("segment %d is %v-%v, want %v-%v", i, f.Point(i, 0), f.Point(i, 1), w[0], w[1])
		}
	}
}

func TestPatternModePrefix(t *testing.T) {
	for _, s := range []string{"1234", "l:1234", ":1234"} {
		f, err := Pattern(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if f.Nelems() != 4 || f.Nplex() != 2 {
			t.Fatalf("%q gave %dx%d", s, f.Nelems(), f.Nplex())
		}
	}
}

func TestPatternGrouped(t *testing.T) {
	f, err := Pattern("3:012934")
	if err != nil {
		t.Fatal(err)
	}
	if f.Nelems() != 2 || f.Nplex() != 3 {
		t.Fatalf("two triangles gave %dx%d", f.Nelems(), f.Nplex())
	}
	// both triangles together tile the unit square.
	if f.Point(0, 2) != (r3.Vec{X: 1, Y: 1}) || f.Point(1, 0) != (r3.Vec{X: 1, Y: 1}) {
		t.Fatal("triangles do not share the diagonal")
	}
	quad, err := Pattern("4:0123")
	if err != nil {
		t.Fatal(err)
	}
	if quad.Nelems() != 1 || quad.Nplex() != 4 {
		t.Fatalf("unit square gave %dx%d", quad.Nelems(), quad.Nplex())
	}
}

func TestPatternRepeatDot(t *testing.T) {
	f, err := Pattern("3:.12.34")
	if err != nil {
		t.Fatal(err)
	}
	if f.Nelems() != 2 {
		t.Fatalf("dot pattern gave %d triangles", f.Nelems())
	}
	if f.Point(0, 0) != (r3.Vec{}) || f.Point(1, 0) != (r3.Vec{X: 1, Y: 1}) {
		t.Fatal("dot did not repeat the current position")
	}
}

func TestPatternSkip(t *testing.T) {
	// diamond: four segments between edge midpoints, the leading /4
	// only positions the turtle.
	f, err := Pattern("l:/45678")
	if err != nil {
		t.Fatal(err)
	}
	if f.Nelems() != 4 {
		t.Fatalf("diamond gave %d segments", f.Nelems())
	}
	if f.Point(0, 0) != (r3.Vec{Y: -1}) {
		t.Fatalf("skipped move left turtle at %v", f.Point(0, 0))
	}
}

func TestPatternJumpOrigin(t *testing.T) {
	// + jumps home without drawing, 0 draws a closing segment.
	f, err := Pattern("l:12+12")
	if err != nil {
		t.Fatal(err)
	}
	if f.Nelems() != 4 {
		t.Fatalf("jump pattern gave %d segments", f.Nelems())
	}
	g, err := Pattern("l:120")
	if err != nil {
		t.Fatal(err)
	}
	if g.Nelems() != 3 || g.Point(2, 1) != (r3.Vec{}) {
		t.Fatal("0 should draw back to the origin")
	}
}

func TestPatternVertical(t *testing.T) {
	f, err := Pattern("l:AI")
	if err != nil {
		t.Fatal(err)
	}
	if f.Point(0, 1) != (r3.Vec{X: 1, Z: 1}) {
		t.Fatalf("A moved to %v", f.Point(0, 1))
	}
	if f.Point(1, 1) != (r3.Vec{X: 1, Z: 2}) {
		t.Fatalf("I moved to %v", f.Point(1, 1))
	}
	g, err := Pattern("l:i")
	if err != nil {
		t.Fatal(err)
	}
	if g.Point(0, 1) != (r3.Vec{Z: -1}) {
		t.Fatalf("i moved to %v", g.Point(0, 1))
	}
}

func TestPatternErrors(t *testing.T) {
	for _, s := range []string{"l:1x", "q:12", "0:12", "3:12"} {
		if _, err := Pattern(s); err == nil {
			t.Fatalf("%q: expected error", s)
		}
	}
}
