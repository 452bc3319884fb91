package formex

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pattern creates a Formex from a compact string of turtle graphics
// moves on a regular grid of unit size.
//
// A pattern has the form "mode:data". Mode "l" (or no mode prefix)
// produces line segments: every move draws a plexitude 2 element from
// the current position to the new one. A numeric mode n groups the
// generated points n at a time into elements of plexitude n.
//
// Each character of data moves the current position, starting at the
// origin:
//
//	1, 2, 3, 4  unit step along +x, +y, -x, -y
//	5, 6, 7, 8  diagonal step to (+1,+1), (-1,+1), (-1,-1), (+1,-1)
//	9 or .      repeat the current position
//	0           return to the origin, drawing in line mode
//	+           return to the origin without drawing
//	A..I, a..i  as 1..9 but stepping +1 or -1 along z (I and i move
//	            only along z)
//	/           the next move does not produce a point or segment
//
// Examples: "l:164" is a right triangle of three line segments,
// "3:012934" are the two triangles of a unit square, "l:/45678" is a
// diamond drawn from the four diagonal midpoints.
func Pattern(s string) (Formex, error) {
	mode, data, err := splitPattern(s)
	if err != nil {
		return Formex{}, err
	}
	if mode == lineMode {
		return linePattern(data)
	}
	return pointPattern(data, mode)
}

// MustPattern is like Pattern but panics on a malformed pattern string.
func MustPattern(s string) Formex {
	f, err := Pattern(s)
	if err != nil {
		panic(err)
	}
	return f
}

const lineMode = 0

func splitPattern(s string) (mode int, data string, err error) {
	head, data, found := strings.Cut(s, ":")
	if !found {
		return lineMode, s, nil
	}
	if head == "" || head == "l" {
		return lineMode, data, nil
	}
	n, err := strconv.Atoi(head)
	if err != nil || n < 1 {
		return 0, "", fmt.Errorf("formex: invalid pattern mode %q", head)
	}
	return n, data, nil
}

// turtle tracks a position on the integer grid.
type turtle struct {
	x, y, z int
}

func (t turtle) vec() r3.Vec {
	return r3.Vec{X: float64(t.x), Y: float64(t.y), Z: float64(t.z)}
}

// move advances the turtle by one pattern code. It reports whether the
// code is a jump to the origin and whether it is valid.
func (t *turtle) move(c rune) (jump, ok bool) {
	dz := 0
	switch {
	case c >= 'A' && c <= 'I':
		dz = 1
		c = c - 'A' + '1'
	case c >= 'a' && c <= 'i':
		dz = -1
		c = c - 'a' + '1'
	case c == '.':
		c = '9'
	}
	switch c {
	case '0', '+':
		t.x, t.y, t.z = 0, 0, 0
		return c == '+', true
	case '1':
		t.x++
	case '2':
		t.y++
	case '3':
		t.x--
	case '4':
		t.y--
	case '5':
		t.x++
		t.y++
	case '6':
		t.x--
		t.y++
	case '7':
		t.x--
		t.y--
	case '8':
		t.x++
		t.y--
	case '9':
		// stay
	default:
		return false, false
	}
	t.z += dz
	return false, true
}

func linePattern(data string) (Formex, error) {
	var t turtle
	var coords []r3.Vec
	skip := false
	for _, c := range data {
		if c == '/' {
			skip = true
			continue
		}
		prev := t.vec()
		jump, ok := t.move(c)
		if !ok {
			return Formex{}, fmt.Errorf("formex: invalid pattern code %q", c)
		}
		if jump || skip {
			skip = false
			continue
		}
		coords = append(coords, prev, t.vec())
	}
	return fromRaw(coords, 2, nil), nil
}

func pointPattern(data string, nplex int) (Formex, error) {
	var t turtle
	var points []r3.Vec
	skip := false
	for _, c := range data {
		if c == '/' {
			skip = true
			continue
		}
		jump, ok := t.move(c)
		if !ok {
			return Formex{}, fmt.Errorf("formex: invalid pattern code %q", c)
		}
		if jump || skip {
			skip = false
			continue
		}
		points = append(points, t.vec())
	}
	if len(points)%nplex != 0 {
		return Formex{}, fmt.Errorf("formex: pattern %q yields %d points, not a multiple of plexitude %d", data, len(points), nplex)
	}
	return fromRaw(points, nplex, nil), nil
}
