package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform represents an affine 3D spatial transformation.
// The zero value of Transform is the identity transform.
type Transform struct {
	// in order to make the zero value of Transform represent the identity
	// transform we store it with the identity matrix subtracted.
	// These diagonal elements are subtracted such that
	//  d00 = x00-1, d11 = x11-1, d22 = x22-1
	// where x00, x11, x22 are the matrix diagonal elements.
	// We can then check for identity in if blocks like so:
	//  if T == (Transform{})
	d00, x01, x02, x03 float64
	x10, d11, x12, x13 float64
	x20, x21, d22, x23 float64
}

// Transform applies the Transform to the argument vector
// and returns the result.
func (t Transform) Transform(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z + t.x03,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z + t.x13,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z + t.x23,
	}
}

// ComposeTransform creates a new transform for a given translation to
// position, scaling vector scale and quaternion rotation.
// The identity Transform is constructed with
//  ComposeTransform(Vec{}, Vec{1,1,1}, Rotation{})
func ComposeTransform(position, scale r3.Vec, q r3.Rotation) Transform {
	x2 := q.Imag + q.Imag
	y2 := q.Jmag + q.Jmag
	z2 := q.Kmag + q.Kmag
	xx := q.Imag * x2
	yy := q.Jmag * y2
	zz := q.Kmag * z2
	xy := q.Imag * y2
	xz := q.Imag * z2
	yz := q.Jmag * z2
	wx := q.Real * x2
	wy := q.Real * y2
	wz := q.Real * z2

	var t Transform
	t.d00 = (1-(yy+zz))*scale.X - 1
	t.x10 = (xy + wz) * scale.X
	t.x20 = (xz - wy) * scale.X

	t.x01 = (xy - wz) * scale.Y
	t.d11 = (1-(xx+zz))*scale.Y - 1
	t.x21 = (yz + wx) * scale.Y

	t.x02 = (xz + wy) * scale.Z
	t.x12 = (yz - wx) * scale.Z
	t.d22 = (1-(xx+yy))*scale.Z - 1

	t.x03 = position.X
	t.x13 = position.Y
	t.x23 = position.Z
	return t
}

// Rotate returns a Transform rotating by angle (radians) about the
// axis direction dir through the point origin.
func Rotate(angle float64, dir, origin r3.Vec) Transform {
	t := ComposeTransform(r3.Vec{}, Elem(1), r3.NewRotation(angle, dir))
	if origin == (r3.Vec{}) {
		return t
	}
	return Transform{}.Translate(r3.Scale(-1, origin)).Mul(t).Translate(origin)
}

// Translate adds Vec to the positional Transform.
func (t Transform) Translate(v r3.Vec) Transform {
	t.x03 += v.X
	t.x13 += v.Y
	t.x23 += v.Z
	return t
}

// Scale returns the transform with scaling added around
// the argument origin. Negative factor components mirror
// about the corresponding coordinate plane through origin.
func (t Transform) Scale(origin, factor r3.Vec) Transform {
	if origin == (r3.Vec{}) {
		return t.scale(factor)
	}
	t = t.Translate(r3.Scale(-1, origin))
	t = t.scale(factor)
	return t.Translate(origin)
}

// scale scales the output of t, row by row, so the result applies t
// first and the scaling second.
func (t Transform) scale(factor r3.Vec) Transform {
	t.d00 = (t.d00+1)*factor.X - 1
	t.x01 *= factor.X
	t.x02 *= factor.X
	t.x03 *= factor.X

	t.x10 *= factor.Y
	t.d11 = (t.d11+1)*factor.Y - 1
	t.x12 *= factor.Y
	t.x13 *= factor.Y

	t.x20 *= factor.Z
	t.x21 *= factor.Z
	t.d22 = (t.d22+1)*factor.Z - 1
	t.x23 *= factor.Z
	return t
}

// Shear returns the transform with a shearing added such that the
// axis coordinate picks up skew times the axis1 coordinate.
func (t Transform) Shear(axis, axis1 int, skew float64) Transform {
	var s Transform
	switch [2]int{axis, axis1} {
	case [2]int{0, 1}:
		s.x01 = skew
	case [2]int{0, 2}:
		s.x02 = skew
	case [2]int{1, 0}:
		s.x10 = skew
	case [2]int{1, 2}:
		s.x12 = skew
	case [2]int{2, 0}:
		s.x20 = skew
	case [2]int{2, 1}:
		s.x21 = skew
	default:
		panic("shear axes must be distinct and in range 0..2")
	}
	return t.Mul(s)
}

// Mul multiplies the Transforms a and b and returns the result of
// applying a first and b second.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	x00 := t.d00 + 1
	x11 := t.d11 + 1
	x22 := t.d22 + 1
	y00 := b.d00 + 1
	y11 := b.d11 + 1
	y22 := b.d22 + 1
	var m Transform
	m.d00 = y00*x00 + b.x01*t.x10 + b.x02*t.x20 - 1
	m.x01 = y00*t.x01 + b.x01*x11 + b.x02*t.x21
	m.x02 = y00*t.x02 + b.x01*t.x12 + b.x02*x22
	m.x03 = y00*t.x03 + b.x01*t.x13 + b.x02*t.x23 + b.x03
	m.x10 = b.x10*x00 + y11*t.x10 + b.x12*t.x20
	m.d11 = b.x10*t.x01 + y11*x11 + b.x12*t.x21 - 1
	m.x12 = b.x10*t.x02 + y11*t.x12 + b.x12*x22
	m.x13 = b.x10*t.x03 + y11*t.x13 + b.x12*t.x23 + b.x13
	m.x20 = b.x20*x00 + b.x21*t.x10 + y22*t.x20
	m.x21 = b.x20*t.x01 + b.x21*x11 + y22*t.x21
	m.d22 = b.x20*t.x02 + b.x21*t.x12 + y22*x22 - 1
	m.x23 = b.x20*t.x03 + b.x21*t.x13 + y22*t.x23 + b.x23
	return m
}
