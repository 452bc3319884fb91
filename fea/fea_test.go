package fea

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formex3d/formex"
	"github.com/formex3d/formex/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// pyramidParts returns a pyramid truss in two parts sharing the base
// nodes: the four base edges and the four diagonals to the apex.
func pyramidParts(t *testing.T) (base, diag *mesh.Mesh) {
	t.Helper()
	corners := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	apex := r3.Vec{X: 0.5, Y: 0.5, Z: 1}
	var baseElems, diagElems [][]r3.Vec
	for i, c := range corners {
		baseElems = append(baseElems, []r3.Vec{c, corners[(i+1)%4]})
		diagElems = append(diagElems, []r3.Vec{c, apex})
	}
	fb := formex.MustNew(baseElems).WithProp(1)
	fd := formex.MustNew(diagElems).WithProp(2)
	base, err := mesh.FromFormex(fb, 1e-6)
	require.NoError(t, err)
	diag, err = mesh.FromFormex(fd, 1e-6)
	require.NoError(t, err)
	return base, diag
}

func TestModelMerge(t *testing.T) {
	base, diag := pyramidParts(t)
	m, err := NewModel(1e-6, base, diag)
	require.NoError(t, err)

	assert.Equal(t, 5, m.NNodes())
	assert.Equal(t, 2, m.NGroups())
	assert.Equal(t, 8, m.NElems())
	assert.Equal(t, []int{0, 4, 8}, m.CElems())

	g, local, err := m.GroupOf(6)
	require.NoError(t, err)
	assert.Equal(t, 1, g)
	assert.Equal(t, 2, local)
	_, _, err = m.GroupOf(8)
	assert.Error(t, err)

	// Every diagonal ends in the apex node, which all four share.
	apex := -1
	valence := m.NodeValence()
	for n, v := range valence {
		if v == 4 && m.Coord(n).Z == 1 {
			apex = n
		}
	}
	require.NotEqual(t, -1, apex)
	for e := 4; e < 8; e++ {
		nodes, err := m.ElemNodes(e)
		require.NoError(t, err)
		assert.Contains(t, nodes, apex)
	}

	split, err := m.SplitElems([]int{0, 5, 7, 2})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 2}, {5, 7}}, split)

	assert.Equal(t, []int{0, 1, 2, 3}, m.ElemsWithTag(1))
	assert.Equal(t, []int{4, 5, 6, 7}, m.ElemsWithTag(2))
}

func TestModelErrors(t *testing.T) {
	_, err := NewModel(0)
	assert.Error(t, err)
	base, _ := pyramidParts(t)
	_, err = NewModel(-1, base)
	assert.Error(t, err)
	empty := &mesh.Mesh{}
	_, err = NewModel(0, base, empty)
	assert.Error(t, err)
}

func TestPropertyDB(t *testing.T) {
	var db PropertyDB
	p1 := db.NodeProp(NodeProp{Bound: &Pinned})
	p2 := db.NodeProp(NodeProp{Name: "load", CLoad: &CLoad{2: -10}})
	e1 := db.ElemProp(ElemProp{Tag: Tag(1), ElType: "T3D2"})

	assert.Equal(t, "prop0", p1.Name)
	assert.Equal(t, "load", p2.Name)
	assert.Equal(t, "prop1", e1.Name)
	assert.Len(t, db.NodeProps(), 2)
	assert.Len(t, db.ElemProps(), 1)
	assert.Equal(t, 1, *e1.Tag)
}

func pyramidJob(t *testing.T) *Job {
	t.Helper()
	base, diag := pyramidParts(t)
	m, err := NewModel(1e-6, base, diag)
	require.NoError(t, err)

	// Tag support nodes 1, the loaded apex 2.
	tags := make([]int, m.NNodes())
	for n := range tags {
		if m.Coord(n).Z == 0 {
			tags[n] = 1
		} else {
			tags[n] = 2
		}
	}

	steel := &Material{Name: "steel", Young: 210e9, Poisson: 0.3, Density: 7850}
	var db PropertyDB
	db.ElemProp(ElemProp{
		Name: "chords", Tag: Tag(1), ElType: "T3D2",
		Section: &Section{Name: "tube_base", Material: steel, Type: "truss", CrossSection: 1e-4},
	})
	db.ElemProp(ElemProp{
		Name: "diagonals", Tag: Tag(2), ElType: "T3D2",
		Section: &Section{Name: "tube_diag", Material: steel, Type: "truss", CrossSection: 5e-5},
	})
	db.NodeProp(NodeProp{Name: "support", Tag: Tag(1), Bound: &Pinned})
	db.NodeProp(NodeProp{Name: "load", Tag: Tag(2), CLoad: &CLoad{2: -1000}})

	return &Job{Name: "pyramid", Heading: "pyramid truss", Model: m, DB: &db, NodeTags: tags}
}

func TestJobWriteMesh(t *testing.T) {
	job := pyramidJob(t)
	var buf bytes.Buffer
	require.NoError(t, job.WriteMesh(&buf))
	out := buf.String()

	assert.Contains(t, out, "*TITLE\npyramid truss\n")
	assert.Contains(t, out, "*NODES n=5\n")
	assert.Contains(t, out, "*ELEMS group=0 eltype=T3D2 set=chords\n")
	assert.Contains(t, out, "*ELEMS group=1 eltype=T3D2 set=diagonals\n")
	assert.Contains(t, out, "*NSET name=support\n")
	assert.Contains(t, out, "*NSET name=load\n")

	// Nodes and elements are numbered from 1 in the file.
	assert.Contains(t, out, "\n1, 0, 0, 0\n")
	assert.Contains(t, out, "\n5, 0.5, 0.5, 1\n")
	lines := strings.Split(out, "\n")
	elems := 0
	for _, ln := range lines {
		if strings.Count(ln, ", ") == 2 && !strings.Contains(ln, ".") {
			elems++
		}
	}
	assert.Equal(t, 8, elems)
	assert.NotContains(t, out, "\n0, ")
}

func TestJobWriteCommands(t *testing.T) {
	job := pyramidJob(t)
	var buf bytes.Buffer
	require.NoError(t, job.WriteCommands(&buf))
	out := buf.String()

	// The shared material is written once.
	assert.Equal(t, 1, strings.Count(out, "*MATERIAL"))
	assert.Contains(t, out, "*MATERIAL name=steel\nyoung=2.1e+11, poisson=0.3, density=7850\n")
	assert.Contains(t, out, "*SECTION name=tube_base set=chords type=truss material=steel\n")
	assert.Contains(t, out, "cross_section=0.0001\n")
	assert.Contains(t, out, "*BOUND set=support\nDX\nDY\nDZ\n")
	assert.Contains(t, out, "*CLOAD set=load\nDZ, -1000\n")
}

func TestJobSave(t *testing.T) {
	job := pyramidJob(t)
	dir := t.TempDir()
	require.NoError(t, job.Save(dir))
	for _, name := range []string{"pyramid.mesh", "pyramid.cmd"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, b)
	}
}

func TestJobCheck(t *testing.T) {
	job := pyramidJob(t)
	job.Name = ""
	assert.Error(t, job.WriteMesh(&bytes.Buffer{}))
	job = pyramidJob(t)
	job.NodeTags = []int{1}
	assert.Error(t, job.WriteCommands(&bytes.Buffer{}))
	job = pyramidJob(t)
	job.Model = nil
	assert.Error(t, job.Save(t.TempDir()))

	// Tag scoped node properties need node tags to resolve against.
	job = pyramidJob(t)
	job.NodeTags = nil
	err := job.WriteMesh(&bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag scoped")
}

func TestResolveSets(t *testing.T) {
	job := pyramidJob(t)

	// Explicit set wins over tag.
	np := &NodeProp{Set: []int{3}, Tag: Tag(1)}
	assert.Equal(t, []int{3}, job.resolveNodeSet(np))

	// Tag match against node tags.
	np = &NodeProp{Tag: Tag(1)}
	assert.Len(t, job.resolveNodeSet(np), 4)

	// Neither set nor tag means all nodes.
	np = &NodeProp{}
	assert.Len(t, job.resolveNodeSet(np), 5)

	ep := &ElemProp{Tag: Tag(2)}
	set, err := job.resolveElemSet(ep)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6, 7}, set)

	ep = &ElemProp{}
	set, err = job.resolveElemSet(ep)
	require.NoError(t, err)
	assert.Len(t, set, 8)
}
