package fea

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Job couples a model with its property database for writing analysis
// input files. A job writes two sibling files in a neutral keyword
// block format: a mesh file with the nodes and the element groups, and
// a command file with the materials, sections, boundary conditions and
// loads. Nodes and elements are numbered from 1 in the files.
type Job struct {
	Name    string
	Heading string
	Model   *Model
	DB      *PropertyDB
	// NodeTags optionally tags every node of the model; node
	// properties with a Tag and no explicit Set resolve against it.
	NodeTags []int
}

// Save writes the mesh file <name>.mesh and the command file
// <name>.cmd in dir.
func (j *Job) Save(dir string) error {
	if err := j.check(); err != nil {
		return err
	}
	if err := j.writeFile(filepath.Join(dir, j.Name+".mesh"), j.WriteMesh); err != nil {
		return err
	}
	return j.writeFile(filepath.Join(dir, j.Name+".cmd"), j.WriteCommands)
}

func (j *Job) writeFile(name string, write func(io.Writer) error) error {
	fp, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "fea: create job file")
	}
	defer fp.Close()
	if err := write(fp); err != nil {
		return err
	}
	return errors.Wrap(fp.Close(), "fea: close job file")
}

func (j *Job) check() error {
	if j.Name == "" {
		return errors.New("fea: job has no name")
	}
	if j.Model == nil {
		return errors.New("fea: job has no model")
	}
	if j.NodeTags != nil && len(j.NodeTags) != j.Model.NNodes() {
		return errors.Errorf("fea: %d node tags for %d nodes", len(j.NodeTags), j.Model.NNodes())
	}
	if j.NodeTags == nil {
		for _, p := range j.nodeProps() {
			if p.Set == nil && p.Tag != nil {
				return errors.Errorf("fea: node property %q is tag scoped but the job has no node tags", p.Name)
			}
		}
	}
	return nil
}

// WriteMesh writes the mesh file: a TITLE block, a NODES block with
// the merged node pool, an ELEMS block per element group of every
// element property that defines an element type, and an NSET block for
// every named node property set.
func (j *Job) WriteMesh(w io.Writer) error {
	if err := j.check(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "** formex fe mesh file\n*TITLE\n%s\n", j.heading())

	m := j.Model
	fmt.Fprintf(bw, "*NODES n=%d\n", m.NNodes())
	for i := 0; i < m.NNodes(); i++ {
		c := m.Coord(i)
		fmt.Fprintf(bw, "%d, %g, %g, %g\n", i+1, c.X, c.Y, c.Z)
	}

	for _, p := range j.elemProps() {
		if p.ElType == "" {
			continue
		}
		set, err := j.resolveElemSet(p)
		if err != nil {
			return err
		}
		split, err := m.SplitElems(set)
		if err != nil {
			return errors.Wrapf(err, "fea: element set %q", p.Name)
		}
		for g, elems := range split {
			if len(elems) == 0 {
				continue
			}
			fmt.Fprintf(bw, "*ELEMS group=%d eltype=%s set=%s\n", g, p.ElType, p.Name)
			for _, e := range elems {
				nodes, err := m.ElemNodes(e)
				if err != nil {
					return err
				}
				fmt.Fprintf(bw, "%d", e+1)
				for _, n := range nodes {
					fmt.Fprintf(bw, ", %d", n+1)
				}
				fmt.Fprintln(bw)
			}
		}
	}

	for _, p := range j.nodeProps() {
		set := j.resolveNodeSet(p)
		fmt.Fprintf(bw, "*NSET name=%s\n", p.Name)
		writeSet(bw, set)
	}
	return errors.Wrap(bw.Flush(), "fea: write mesh file")
}

// WriteCommands writes the command file: MATERIAL and SECTION blocks
// for the element properties, then BOUND, CLOAD, DISPL and EQUATION
// blocks for the node properties. Set blocks reference the NSET names
// of the mesh file.
func (j *Job) WriteCommands(w io.Writer) error {
	if err := j.check(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "** formex fe command file\n*TITLE\n%s\n", j.heading())

	for _, mat := range j.materials() {
		fmt.Fprintf(bw, "*MATERIAL name=%s\n", mat.Name)
		fmt.Fprintf(bw, "young=%g, poisson=%g, density=%g\n", mat.Young, mat.Poisson, mat.Density)
	}
	for _, p := range j.elemProps() {
		if p.Section == nil {
			continue
		}
		s := p.Section
		fmt.Fprintf(bw, "*SECTION name=%s set=%s type=%s", s.Name, p.Name, s.Type)
		if s.Material != nil {
			fmt.Fprintf(bw, " material=%s", s.Material.Name)
		}
		fmt.Fprintln(bw)
		if s.CrossSection != 0 {
			fmt.Fprintf(bw, "cross_section=%g\n", s.CrossSection)
		}
		if s.Radius != 0 {
			fmt.Fprintf(bw, "radius=%g\n", s.Radius)
		}
	}

	for _, p := range j.nodeProps() {
		if p.Bound != nil {
			fmt.Fprintf(bw, "*BOUND set=%s\n", p.Name)
			for d, on := range p.Bound {
				if on {
					fmt.Fprintf(bw, "%s\n", DOF(d))
				}
			}
		}
		if p.CLoad != nil {
			fmt.Fprintf(bw, "*CLOAD set=%s\n", p.Name)
			for d, v := range p.CLoad {
				if v != 0 {
					fmt.Fprintf(bw, "%s, %g\n", DOF(d), v)
				}
			}
		}
		for _, d := range p.Displ {
			fmt.Fprintf(bw, "*DISPL set=%s\n%s, %g\n", p.Name, d.DOF, d.Value)
		}
		if p.Equation != nil {
			fmt.Fprintf(bw, "*EQUATION set=%s constant=%g\n", p.Name, p.Equation.Constant)
			for _, t := range p.Equation.Terms {
				fmt.Fprintf(bw, "%d, %s, %g\n", t.Node+1, t.DOF, t.Coef)
			}
		}
	}
	return errors.Wrap(bw.Flush(), "fea: write command file")
}

func (j *Job) heading() string {
	if j.Heading != "" {
		return j.Heading
	}
	return j.Name
}

func (j *Job) nodeProps() []*NodeProp {
	if j.DB == nil {
		return nil
	}
	return j.DB.NodeProps()
}

func (j *Job) elemProps() []*ElemProp {
	if j.DB == nil {
		return nil
	}
	return j.DB.ElemProps()
}

// resolveNodeSet returns the global node numbers a node property
// applies to: its explicit Set, or the nodes whose tag matches its
// Tag, or all nodes.
func (j *Job) resolveNodeSet(p *NodeProp) []int {
	if p.Set != nil {
		return p.Set
	}
	if p.Tag != nil {
		var set []int
		for i, t := range j.NodeTags {
			if t == *p.Tag {
				set = append(set, i)
			}
		}
		return set
	}
	set := make([]int, j.Model.NNodes())
	for i := range set {
		set[i] = i
	}
	return set
}

// resolveElemSet returns the global element numbers an element
// property applies to: its explicit Set, or the elements whose
// property tag matches its Tag, or all elements.
func (j *Job) resolveElemSet(p *ElemProp) ([]int, error) {
	if p.Set != nil {
		return p.Set, nil
	}
	if p.Tag != nil {
		return j.Model.ElemsWithTag(*p.Tag), nil
	}
	set := make([]int, j.Model.NElems())
	for i := range set {
		set[i] = i
	}
	return set, nil
}

// materials returns the distinct materials referenced by the element
// property sections, in name order.
func (j *Job) materials() []*Material {
	seen := make(map[string]*Material)
	for _, p := range j.elemProps() {
		if p.Section != nil && p.Section.Material != nil {
			seen[p.Section.Material.Name] = p.Section.Material
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*Material, len(names))
	for i, n := range names {
		out[i] = seen[n]
	}
	return out
}

// writeSet writes 1-based numbers eight per line.
func writeSet(w io.Writer, set []int) {
	for i, n := range set {
		if i%8 == 0 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%d", n+1)
		} else {
			fmt.Fprintf(w, ", %d", n+1)
		}
	}
	if len(set) > 0 {
		fmt.Fprintln(w)
	}
}
