// Package vmtk drives the external VMTK command line tools for
// operations on triangulated surfaces, notably centerline extraction
// and surface remeshing of vascular models. The surface travels to and
// from the tools through temporary STL files. See http://www.vmtk.org
// for the tools themselves.
package vmtk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/formex3d/formex"
	"github.com/formex3d/formex/mesh"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Runner executes a shell command and returns its combined output.
// The default runner shells out with sh -c; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, cmd string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, cmd string) ([]byte, error) {
	return exec.CommandContext(ctx, "sh", "-c", cmd).CombinedOutput()
}

// Tool invokes the VMTK scripts. The zero value shells out to the
// vmtk executable on PATH and logs with the default slog logger.
type Tool struct {
	// Runner overrides how commands execute.
	Runner Runner
	// Log receives a record per command and the output of failures.
	Log *slog.Logger
}

func (t *Tool) runner() Runner {
	if t.Runner != nil {
		return t.Runner
	}
	return execRunner{}
}

func (t *Tool) log() *slog.Logger {
	if t.Log != nil {
		return t.Log
	}
	return slog.Default()
}

// run executes one command, aborting on a non-zero exit with the
// captured output in the log.
func (t *Tool) run(ctx context.Context, cmd string) ([]byte, error) {
	t.log().Info("running vmtk", "cmd", cmd)
	out, err := t.runner().Run(ctx, cmd)
	if err != nil {
		t.log().Error("vmtk command failed", "cmd", cmd, "output", string(out))
		return out, errors.Wrapf(err, "vmtk: command %q", cmd)
	}
	return out, nil
}

// SeedSelector names a VMTK seed point selection method for
// centerline extraction.
type SeedSelector string

const (
	PickPoint       SeedSelector = "pickpoint"
	OpenProfiles    SeedSelector = "openprofiles"
	CarotidProfiles SeedSelector = "carotidprofiles"
	// PointList selects seeds by coordinates given in
	// CenterlineOptions.SourcePoints and TargetPoints.
	PointList SeedSelector = "pointlist"
	// IDList selects seeds by the point ids given in
	// CenterlineOptions.SourceIDs and TargetIDs.
	IDList SeedSelector = "idlist"
)

// CenterlineOptions control centerline extraction.
type CenterlineOptions struct {
	// SeedSelector defaults to PickPoint.
	SeedSelector SeedSelector
	// SourcePoints and TargetPoints give the seeds for PointList.
	SourcePoints []r3.Vec
	TargetPoints []r3.Vec
	// SourceIDs and TargetIDs give the seeds for IDList.
	SourceIDs []int
	TargetIDs []int
	// Endpoints appends the seed points to the centerlines.
	Endpoints bool
	// Group merges repeated points and groups the centerline points
	// per branch.
	Group bool
}

// Centerline is an extracted centerline: its points plus the extra
// per point fields the tools compute, such as the maximum inscribed
// sphere radius and the branch grouping ids.
type Centerline struct {
	Points []r3.Vec
	// Fields names the columns of Data.
	Fields []string
	// Data holds per point the extra field values, one row per point.
	Data [][]float64
}

// Centerline computes the centerline of a closed triangulated
// surface. The surface must be plex 3.
func (t *Tool) Centerline(ctx context.Context, surf formex.Formex, opt CenterlineOptions) (*Centerline, error) {
	if opt.SeedSelector == "" {
		opt.SeedSelector = PickPoint
	}
	dir, err := os.MkdirTemp("", "vmtk")
	if err != nil {
		return nil, errors.Wrap(err, "vmtk: temp dir")
	}
	defer os.RemoveAll(dir)
	stl := filepath.Join(dir, "surface.stl")
	vtp := filepath.Join(dir, "centerline.vtp")
	dat := filepath.Join(dir, "centerline.dat")
	if err := mesh.CreateSTL(stl, surf); err != nil {
		return nil, err
	}

	cmds, err := centerlineCmds(opt, stl, vtp, dat)
	if err != nil {
		return nil, err
	}
	for _, cmd := range cmds {
		if _, err := t.run(ctx, cmd); err != nil {
			return nil, err
		}
	}

	fp, err := os.Open(dat)
	if err != nil {
		return nil, errors.Wrap(err, "vmtk: open centerline data")
	}
	defer fp.Close()
	return ReadCenterlineDat(fp)
}

func centerlineCmds(opt CenterlineOptions, stl, vtp, dat string) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "vmtk vmtkcenterlines -seedselector %s -ifile %s -ofile %s",
		opt.SeedSelector, stl, vtp)
	switch opt.SeedSelector {
	case PointList:
		if len(opt.SourcePoints) == 0 || len(opt.TargetPoints) == 0 {
			return nil, errors.Errorf("vmtk: seed selector %s needs source and target points", opt.SeedSelector)
		}
		b.WriteString(" -sourcepoints")
		writePoints(&b, opt.SourcePoints)
		b.WriteString(" -targetpoints")
		writePoints(&b, opt.TargetPoints)
	case IDList:
		if len(opt.SourceIDs) == 0 || len(opt.TargetIDs) == 0 {
			return nil, errors.Errorf("vmtk: seed selector %s needs source and target ids", opt.SeedSelector)
		}
		b.WriteString(" -sourceids")
		writeIDs(&b, opt.SourceIDs)
		b.WriteString(" -targetids")
		writeIDs(&b, opt.TargetIDs)
	}
	endpoints := 0
	if opt.Endpoints {
		endpoints = 1
	}
	fmt.Fprintf(&b, " -endpoints %d", endpoints)

	cmds := []string{b.String()}
	if opt.Group {
		cmds = append(cmds,
			fmt.Sprintf("vmtk vmtkcenterlineattributes -ifile %s --pipe vmtkbranchextractor -radiusarray@ MaximumInscribedSphereRadius --pipe vmtkbifurcationreferencesystems --pipe vmtkcenterlineoffsetattributes -referencegroupid 0 -ofile %s", vtp, vtp),
			fmt.Sprintf("vmtk vmtkcenterlinemerge -ifile %s -ofile %s -radiusarray MaximumInscribedSphereRadius -groupidsarray GroupIds -centerlineidsarray CenterlineIds -tractidsarray TractIds -blankingarray Blanking -mergeblanked 1", vtp, vtp),
		)
	}
	cmds = append(cmds, fmt.Sprintf("vmtk vmtksurfacecelldatatopointdata -ifile %s -ofile %s", vtp, dat))
	return cmds, nil
}

func writePoints(b *strings.Builder, pts []r3.Vec) {
	for _, p := range pts {
		fmt.Fprintf(b, " %f %f %f", p.X, p.Y, p.Z)
	}
}

func writeIDs(b *strings.Builder, ids []int) {
	for _, id := range ids {
		fmt.Fprintf(b, " %d", id)
	}
}

// SizeMode selects the remeshing target metric.
type SizeMode string

const (
	// EdgeLength remeshes towards a global target edge length.
	EdgeLength SizeMode = "edgelength"
	// Area remeshes towards a global target triangle area.
	Area SizeMode = "area"
)

// RemeshOptions control surface remeshing. A zero Target derives the
// target from the input surface: its mean edge length or mean
// triangle area depending on the mode.
type RemeshOptions struct {
	// Mode defaults to EdgeLength.
	Mode SizeMode
	// Target is the edge length or area to remesh towards.
	Target float64
	// AspectRatio caps the triangle aspect ratio when positive.
	AspectRatio float64
}

// Remesh remeshes a plex 3 surface and returns the new triangles.
func (t *Tool) Remesh(ctx context.Context, surf formex.Formex, opt RemeshOptions) (formex.Formex, error) {
	if surf.Nplex() != 3 {
		return formex.Formex{}, errors.Errorf("vmtk: remesh needs a plex 3 surface, got plex %d", surf.Nplex())
	}
	if opt.Mode == "" {
		opt.Mode = EdgeLength
	}
	if opt.Target == 0 {
		switch opt.Mode {
		case EdgeLength:
			opt.Target = meanEdgeLength(surf)
		case Area:
			opt.Target = mean(surf.Areas())
		default:
			return formex.Formex{}, errors.Errorf("vmtk: unknown size mode %q", opt.Mode)
		}
	}

	dir, err := os.MkdirTemp("", "vmtk")
	if err != nil {
		return formex.Formex{}, errors.Wrap(err, "vmtk: temp dir")
	}
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "in.stl")
	out := filepath.Join(dir, "out.stl")
	if err := mesh.CreateSTL(in, surf); err != nil {
		return formex.Formex{}, err
	}

	cmd := fmt.Sprintf("vmtk vmtksurfaceremeshing -ifile %s -ofile %s -elementsizemode %s -%s %f",
		in, out, opt.Mode, opt.Mode, opt.Target)
	if opt.AspectRatio > 0 {
		cmd += fmt.Sprintf(" -aspectratio %f", opt.AspectRatio)
	}
	if _, err := t.run(ctx, cmd); err != nil {
		return formex.Formex{}, err
	}
	return mesh.LoadSTL(out)
}

func meanEdgeLength(surf formex.Formex) float64 {
	var sum float64
	n := 0
	for i := 0; i < surf.Nelems(); i++ {
		el := surf.Element(i)
		for j := range el {
			sum += r3.Norm(r3.Sub(el[(j+1)%len(el)], el[j]))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
