package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/formex3d/formex"
	"gonum.org/v1/gonum/spatial/r3"
)

// WriteSTL writes a plexitude 3 Formex to a writer as a binary STL
// triangle soup.
func WriteSTL(w io.Writer, f formex.Formex) error {
	if f.Nelems() == 0 {
		return errors.New("mesh: empty Formex")
	}
	if f.Nplex() != 3 {
		return fmt.Errorf("mesh: STL needs plexitude 3, got %d", f.Nplex())
	}
	header := stlHeader{
		Count: uint32(f.Nelems()),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var d stlTriangle
	var b [50]byte
	for i := 0; i < f.Nelems(); i++ {
		el := f.Element(i)
		n := triangleNormal(el)
		d.Normal = to3F32(n)
		d.Vertex1 = to3F32(el[0])
		d.Vertex2 = to3F32(el[1])
		d.Vertex3 = to3F32(el[2])
		d.put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// CreateSTL writes a plexitude 3 Formex to a binary STL file at path.
func CreateSTL(path string, f formex.Formex) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSTL(file, f)
}

// ReadSTL reads a binary STL stream into a plexitude 3 Formex of
// unconnected triangles. Use FromFormex to fuse the shared vertices.
// A normal mismatch between the stored and recomputed triangle normals
// is reported but does not discard the triangles read.
func ReadSTL(r io.Reader) (output formex.Formex, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return formex.Formex{}, errors.New("encountered EOF while reading STL header")
		}
		return formex.Formex{}, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return formex.Formex{}, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [50]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, errCalculatedNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	elems := make([][]r3.Vec, 0, header.Count)
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return formex.Formex{}, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if errors.Is(err, errCalculatedNormalMismatch) {
				normMismatches++
				if normMismatches > 10_000 {
					return formex.Formex{}, fmt.Errorf("got too many normal vector mismatches (%d)", normMismatches)
				}
				readErr = err
			} else {
				return formex.Formex{}, err
			}
		}
		elems = append(elems, []r3.Vec{
			r3From3F32(d.Vertex1),
			r3From3F32(d.Vertex2),
			r3From3F32(d.Vertex3),
		})
	}
	output = formex.MustNew(elems)
	return output, readErr
}

// LoadSTL reads a binary STL file at path.
func LoadSTL(path string) (formex.Formex, error) {
	file, err := os.Open(path)
	if err != nil {
		return formex.Formex{}, err
	}
	defer file.Close()
	return ReadSTL(file)
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (t stlTriangle) put(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

var errCalculatedNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices. Ignore this error if model is OK")

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.degenerate(epsilon) {
		return errors.New("triangle is degenerate")
	}
	calcNormal := t.normalFromVertices()
	calcNormalNeg := [3]float32{-calcNormal[0], -calcNormal[1], -calcNormal[2]}
	if !equalWithin3F32(calcNormal, t.Normal, normTol) && !equalWithin3F32(calcNormalNeg, t.Normal, normTol) {
		return errCalculatedNormalMismatch // sometimes may fail
	}
	return nil
}

func (t stlTriangle) normalFromVertices() [3]float32 {
	n := triangleNormal([]r3.Vec{
		r3From3F32(t.Vertex1),
		r3From3F32(t.Vertex2),
		r3From3F32(t.Vertex3),
	})
	return to3F32(n)
}

// degenerate returns true if the triangle is degenerate.
func (t stlTriangle) degenerate(tol float32) bool {
	// check for identical vertices.
	return equalWithin3F32(t.Vertex1, t.Vertex2, tol) ||
		equalWithin3F32(t.Vertex2, t.Vertex3, tol) ||
		equalWithin3F32(t.Vertex3, t.Vertex1, tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func triangleNormal(el []r3.Vec) r3.Vec {
	e1 := r3.Sub(el[1], el[0])
	e2 := r3.Sub(el[2], el[0])
	n := r3.Cross(e1, e2)
	if r3.Norm(n) == 0 {
		// zero area triangle, emit a zero normal instead of NaN.
		return r3.Vec{}
	}
	return r3.Unit(n)
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
