package vmtk

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadCenterlineDat parses the blank separated point data file written
// by vmtksurfacecelldatatopointdata. The first line names the columns;
// every following line holds one float per column. The first three
// columns are the point coordinates, the rest become the extra fields
// of the Centerline.
func ReadCenterlineDat(r io.Reader) (*Centerline, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "vmtk: centerline data")
		}
		return nil, errors.New("vmtk: empty centerline data")
	}
	header := strings.Fields(sc.Text())
	if len(header) < 3 {
		return nil, errors.Errorf("vmtk: centerline data has %d columns, want at least 3", len(header))
	}

	cl := &Centerline{Fields: header[3:]}
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(header) {
			return nil, errors.Errorf("vmtk: line %d has %d values, want %d", line, len(fields), len(header))
		}
		row := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "vmtk: line %d", line)
			}
			row[i] = v
		}
		cl.Points = append(cl.Points, r3.Vec{X: row[0], Y: row[1], Z: row[2]})
		cl.Data = append(cl.Data, row[3:])
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "vmtk: centerline data")
	}
	return cl, nil
}
