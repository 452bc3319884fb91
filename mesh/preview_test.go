package mesh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/formex3d/formex/shapes"
	"github.com/nfnt/resize"
)

// TestSTLPreview renders a generated surface to a PNG as a visual
// smoke test of the STL output.
func TestSTLPreview(t *testing.T) {
	dir := t.TempDir()
	stlName := filepath.Join(dir, "sphere.stl")
	pngName := filepath.Join(dir, "sphere.png")

	surf := shapes.Sphere3(24, 12, 1, -80, 80)
	if err := CreateSTL(stlName, surf); err != nil {
		t.Fatal(err)
	}
	stlToPNG(t, stlName, pngName)
	info, err := os.Stat(pngName)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("empty PNG rendered")
	}
}

func stlToPNG(t testing.TB, stlName, outputname string) {
	model, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		t.Fatal(err)
	}
	const (
		width, height = 960, 540 // output width and height in pixels
		scale         = 2        // supersampling
		fovy          = 30       // vertical field of view in degrees
		near          = 1
		far           = 10
	)
	var (
		eye    = fauxgl.V(3, 3, 3)                    // camera position
		center = fauxgl.V(0, 0, 0)                    // view center position
		up     = fauxgl.V(0, 0, 1)                    // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
		color  = fauxgl.HexColor("#468966")           // object color
	)

	// fit mesh in a bi-unit cube centered at the origin
	model.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(model)
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(width, height, image, resize.Bilinear)
	if err := fauxgl.SavePNG(outputname, image); err != nil {
		t.Fatal(err)
	}
}
