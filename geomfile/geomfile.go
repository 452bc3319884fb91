// Package geomfile reads and writes collections of named Formex
// objects as a line oriented text interchange format.
//
// A geometry file starts with a signature line, followed by one block
// per object. Each block has an attribute line carrying the object
// name, element count, plexitude and whether property tags follow,
// then one line of coordinates per element and optionally a final line
// with the property tags:
//
//	# formex geometry file version='1.0'
//	# name='truss' nelems=2 nplex=2 props=true
//	0 0 0 1 0 0
//	1 0 0 1 1 0
//	0 1
//
// Objects are written in sorted name order so output is deterministic.
package geomfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/formex3d/formex"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

const signature = "# formex geometry file version='1.0'"

// Write writes the named objects to w. Empty Formices are skipped.
func Write(w io.Writer, objs map[string]formex.Formex) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, signature)
	names := make([]string, 0, len(objs))
	for name := range objs {
		if strings.ContainsAny(name, "' \t\n") {
			return errors.Errorf("geomfile: invalid object name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := objs[name]
		if f.Nelems() == 0 {
			continue
		}
		fmt.Fprintf(bw, "# name='%s' nelems=%d nplex=%d props=%t\n",
			name, f.Nelems(), f.Nplex(), f.HasProp())
		for i := 0; i < f.Nelems(); i++ {
			for j, p := range f.Element(i) {
				if j > 0 {
					bw.WriteByte(' ')
				}
				fmt.Fprintf(bw, "%g %g %g", p.X, p.Y, p.Z)
			}
			bw.WriteByte('\n')
		}
		if f.HasProp() {
			for i, p := range f.Prop() {
				if i > 0 {
					bw.WriteByte(' ')
				}
				fmt.Fprintf(bw, "%d", p)
			}
			bw.WriteByte('\n')
		}
	}
	return errors.Wrap(bw.Flush(), "writing geometry file")
}

// Save writes the named objects to a file at path.
func Save(path string, objs map[string]formex.Formex) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return Write(file, objs)
}

// Read reads the named objects from a geometry file stream.
func Read(r io.Reader) (map[string]formex.Formex, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineno := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineno++
		return sc.Text(), true
	}

	line, ok := next()
	if !ok || strings.TrimSpace(line) != signature {
		return nil, errors.New("geomfile: missing signature line")
	}
	objs := make(map[string]formex.Formex)
	for {
		line, ok = next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		attrs, err := parseAttrs(line)
		if err != nil {
			return nil, errors.Wrapf(err, "geomfile: line %d", lineno)
		}
		elems := make([][]r3.Vec, attrs.nelems)
		for i := range elems {
			line, ok = next()
			if !ok {
				return nil, errors.Errorf("geomfile: object %q truncated at element %d", attrs.name, i)
			}
			el, err := parseCoords(line, attrs.nplex)
			if err != nil {
				return nil, errors.Wrapf(err, "geomfile: line %d", lineno)
			}
			elems[i] = el
		}
		f, err := formex.New(elems)
		if err != nil {
			return nil, errors.Wrapf(err, "geomfile: object %q", attrs.name)
		}
		if attrs.props {
			line, ok = next()
			if !ok {
				return nil, errors.Errorf("geomfile: object %q missing property line", attrs.name)
			}
			prop, err := parseProps(line, attrs.nelems)
			if err != nil {
				return nil, errors.Wrapf(err, "geomfile: line %d", lineno)
			}
			f = f.WithProp(prop...)
		}
		if _, dup := objs[attrs.name]; dup {
			return nil, errors.Errorf("geomfile: duplicate object name %q", attrs.name)
		}
		objs[attrs.name] = f
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading geometry file")
	}
	return objs, nil
}

// Load reads the named objects from a file at path.
func Load(path string) (map[string]formex.Formex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

type objAttrs struct {
	name   string
	nelems int
	nplex  int
	props  bool
}

func parseAttrs(line string) (objAttrs, error) {
	var a objAttrs
	if !strings.HasPrefix(line, "# ") {
		return a, errors.Errorf("expected object attribute line, got %q", line)
	}
	seen := make(map[string]bool)
	for _, field := range strings.Fields(line[2:]) {
		key, val, found := strings.Cut(field, "=")
		if !found {
			return a, errors.Errorf("malformed attribute %q", field)
		}
		var err error
		switch key {
		case "name":
			a.name = strings.Trim(val, "'")
			if a.name == "" {
				err = errors.New("empty name")
			}
		case "nelems":
			a.nelems, err = strconv.Atoi(val)
			if err == nil && a.nelems < 1 {
				err = errors.Errorf("bad element count %d", a.nelems)
			}
		case "nplex":
			a.nplex, err = strconv.Atoi(val)
			if err == nil && a.nplex < 1 {
				err = errors.Errorf("bad plexitude %d", a.nplex)
			}
		case "props":
			a.props, err = strconv.ParseBool(val)
		default:
			// unknown attributes are skipped for forward compatibility.
			continue
		}
		if err != nil {
			return a, errors.Wrapf(err, "attribute %q", key)
		}
		seen[key] = true
	}
	for _, key := range []string{"name", "nelems", "nplex"} {
		if !seen[key] {
			return a, errors.Errorf("missing attribute %q", key)
		}
	}
	return a, nil
}

func parseCoords(line string, nplex int) ([]r3.Vec, error) {
	fields := strings.Fields(line)
	if len(fields) != 3*nplex {
		return nil, errors.Errorf("expected %d coordinates, got %d", 3*nplex, len(fields))
	}
	el := make([]r3.Vec, nplex)
	for j := range el {
		var c [3]float64
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[3*j+k], 64)
			if err != nil {
				return nil, errors.Wrap(err, "bad coordinate")
			}
			c[k] = v
		}
		el[j] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}
	return el, nil
}

func parseProps(line string, nelems int) ([]int, error) {
	fields := strings.Fields(line)
	if len(fields) != nelems {
		return nil, errors.Errorf("expected %d property tags, got %d", nelems, len(fields))
	}
	prop := make([]int, nelems)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrap(err, "bad property tag")
		}
		prop[i] = v
	}
	return prop, nil
}
