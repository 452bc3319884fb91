package fea

import (
	"math"

	"github.com/formex3d/formex/internal/d3"
	"github.com/formex3d/formex/mesh"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Model is a finite element model assembled from one or more meshed
// parts. The parts keep their own element groups (so different element
// types can coexist) but share a single merged node pool, with nodes
// closer than the merge tolerance unified across parts. Elements are
// numbered globally and consecutively over the groups.
type Model struct {
	coords []r3.Vec
	// groups holds per part the element node rows, in global node
	// numbers.
	groups [][][]int
	// props holds per part the element property tags, or nil.
	props [][]int
	// celems[g] is the global number of the first element of group g;
	// the final entry is the total element count.
	celems []int
}

// NewModel merges the parts into a model. Nodes of different parts
// closer than tol unify; a zero tol uses 1e-5 times the diagonal size
// of the combined geometry.
func NewModel(tol float64, parts ...*mesh.Mesh) (*Model, error) {
	if len(parts) == 0 {
		return nil, errors.New("fea: model needs at least one part")
	}
	if tol < 0 {
		return nil, errors.Errorf("fea: negative merge tolerance %g", tol)
	}
	box := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	npoints := 0
	for i, p := range parts {
		if p.Nelems() == 0 {
			return nil, errors.Errorf("fea: part %d is empty", i)
		}
		for _, c := range p.Coords {
			box = box.Include(c)
		}
		npoints += p.Nnodes()
	}
	if tol == 0 {
		tol = 1e-5 * r3.Norm(box.Size())
		if tol == 0 {
			tol = 1e-5
		}
	}

	m := &Model{
		groups: make([][][]int, len(parts)),
		props:  make([][]int, len(parts)),
		celems: make([]int, len(parts)+1),
	}
	cache := make(map[[3]int64]int, npoints)
	ri := 1 / tol
	total := 0
	for g, p := range parts {
		local := make([]int, p.Nnodes())
		for i, c := range p.Coords {
			v := r3.Scale(ri, c)
			vi := [3]int64{
				int64(math.Round(v.X)),
				int64(math.Round(v.Y)),
				int64(math.Round(v.Z)),
			}
			idx, ok := cache[vi]
			if !ok {
				idx = len(m.coords)
				cache[vi] = idx
				m.coords = append(m.coords, c)
			}
			local[i] = idx
		}
		rows := make([][]int, p.Nelems())
		for i, row := range p.Elems {
			gl := make([]int, len(row))
			for j, n := range row {
				gl[j] = local[n]
			}
			rows[i] = gl
		}
		m.groups[g] = rows
		if p.Prop != nil {
			m.props[g] = append([]int(nil), p.Prop...)
		}
		m.celems[g] = total
		total += p.Nelems()
	}
	m.celems[len(parts)] = total
	return m, nil
}

// NNodes returns the number of unique nodes.
func (m *Model) NNodes() int { return len(m.coords) }

// NGroups returns the number of element groups.
func (m *Model) NGroups() int { return len(m.groups) }

// NElems returns the total number of elements over all groups.
func (m *Model) NElems() int { return m.celems[len(m.celems)-1] }

// Coord returns the coordinates of global node n.
func (m *Model) Coord(n int) r3.Vec { return m.coords[n] }

// Coords returns a copy of the merged node pool.
func (m *Model) Coords() []r3.Vec {
	out := make([]r3.Vec, len(m.coords))
	copy(out, m.coords)
	return out
}

// CElems returns the global element number offsets of the groups. The
// slice has NGroups+1 entries, the last being NElems.
func (m *Model) CElems() []int {
	out := make([]int, len(m.celems))
	copy(out, m.celems)
	return out
}

// Group returns the element node rows of group g in global node
// numbers. The result must not be modified.
func (m *Model) Group(g int) [][]int { return m.groups[g] }

// GroupProps returns the element property tags of group g, or nil.
func (m *Model) GroupProps(g int) []int { return m.props[g] }

// GroupOf splits a global element number into its group and the local
// element number within that group.
func (m *Model) GroupOf(e int) (g, local int, err error) {
	if e < 0 || e >= m.NElems() {
		return 0, 0, errors.Errorf("fea: element %d out of range 0..%d", e, m.NElems()-1)
	}
	for g = len(m.groups) - 1; g > 0; g-- {
		if e >= m.celems[g] {
			break
		}
	}
	return g, e - m.celems[g], nil
}

// ElemNodes returns the global node numbers of global element e.
func (m *Model) ElemNodes(e int) ([]int, error) {
	g, local, err := m.GroupOf(e)
	if err != nil {
		return nil, err
	}
	return m.groups[g][local], nil
}

// SplitElems partitions a set of global element numbers per group,
// keeping global numbering.
func (m *Model) SplitElems(set []int) ([][]int, error) {
	out := make([][]int, m.NGroups())
	for _, e := range set {
		g, _, err := m.GroupOf(e)
		if err != nil {
			return nil, err
		}
		out[g] = append(out[g], e)
	}
	return out, nil
}

// NodeValence returns for every merged node the number of elements
// using it, over all groups.
func (m *Model) NodeValence() []int {
	count := make([]int, m.NNodes())
	for _, rows := range m.groups {
		for _, row := range rows {
			for _, n := range row {
				count[n]++
			}
		}
	}
	return count
}

// ElemsWithTag returns the global element numbers whose property tag
// equals tag.
func (m *Model) ElemsWithTag(tag int) []int {
	var out []int
	for g, props := range m.props {
		for i, p := range props {
			if p == tag {
				out = append(out, m.celems[g]+i)
			}
		}
	}
	return out
}
