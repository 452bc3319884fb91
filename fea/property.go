// Package fea assembles Formex geometry into finite element models: a
// property database collecting loads, boundary conditions, sections
// and materials, a model merging meshed parts into a single node pool,
// and a writer producing solver input decks from both.
package fea

import "strconv"

// DOF indexes the six degrees of freedom of a structural node: three
// translations followed by three rotations.
type DOF int

const (
	DX DOF = iota
	DY
	DZ
	RX
	RY
	RZ
)

var dofNames = [6]string{"DX", "DY", "DZ", "RX", "RY", "RZ"}

func (d DOF) String() string {
	if d < 0 || d > RZ {
		return "DOF(?)"
	}
	return dofNames[d]
}

// Material holds the physical constants of a model material.
type Material struct {
	Name    string
	Young   float64 // elastic modulus
	Poisson float64
	Density float64
}

// Section describes the element cross section and its material.
type Section struct {
	Name     string
	Material *Material
	// Type names the section kind, such as "general" or "circ".
	Type string
	// CrossSection is the section area for general sections.
	CrossSection float64
	// Radius is the section radius for circular sections.
	Radius float64
}

// CLoad is a concentrated load: one force or moment value per DOF.
type CLoad [6]float64

// Bound flags the constrained DOFs of a boundary condition.
type Bound [6]bool

// BoundAll constrains all six DOFs.
var BoundAll = Bound{true, true, true, true, true, true}

// Pinned constrains the three translations.
var Pinned = Bound{true, true, true, false, false, false}

// Displ prescribes a displacement value for one DOF.
type Displ struct {
	DOF   DOF
	Value float64
}

// EqTerm is one term of a linear constraint equation.
type EqTerm struct {
	Node int
	DOF  DOF
	Coef float64
}

// Equation is a linear multipoint constraint: the weighted sum of the
// terms equals the constant.
type Equation struct {
	Terms    []EqTerm
	Constant float64
}

// NodeProp attaches loads or constraints to a set of nodes. The set is
// given explicitly through Set, or implicitly as all nodes whose
// property tag equals *Tag when Set is nil. With neither, the property
// applies to all nodes.
type NodeProp struct {
	Name string
	Set  []int
	Tag  *int

	CLoad    *CLoad
	Bound    *Bound
	Displ    []Displ
	Equation *Equation
}

// ElemProp attaches a section and element type to a set of elements,
// selected like in NodeProp.
type ElemProp struct {
	Name string
	Set  []int
	Tag  *int

	ElType  string
	Section *Section
}

// Tag returns a pointer to v, for use in the Tag fields.
func Tag(v int) *int { return &v }

// PropertyDB collects the node and element properties of a model. The
// zero value is ready for use.
type PropertyDB struct {
	nodeProps []*NodeProp
	elemProps []*ElemProp
	autoName  int
}

// NodeProp records a node property and returns it. A missing name is
// replaced by a generated one.
func (db *PropertyDB) NodeProp(p NodeProp) *NodeProp {
	if p.Name == "" {
		p.Name = db.nextName()
	}
	rec := &p
	db.nodeProps = append(db.nodeProps, rec)
	return rec
}

// ElemProp records an element property and returns it.
func (db *PropertyDB) ElemProp(p ElemProp) *ElemProp {
	if p.Name == "" {
		p.Name = db.nextName()
	}
	rec := &p
	db.elemProps = append(db.elemProps, rec)
	return rec
}

// NodeProps returns the recorded node properties in insertion order.
func (db *PropertyDB) NodeProps() []*NodeProp { return db.nodeProps }

// ElemProps returns the recorded element properties in insertion order.
func (db *PropertyDB) ElemProps() []*ElemProp { return db.elemProps }

func (db *PropertyDB) nextName() string {
	name := "prop" + strconv.Itoa(db.autoName)
	db.autoName++
	return name
}
