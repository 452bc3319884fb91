package geomfile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formex3d/formex"
	"github.com/formex3d/formex/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	objs := map[string]formex.Formex{
		"truss":  formex.MustPattern("l:164").WithProp(1, 2, 3),
		"panel":  shapes.Rectangle(2, 2, 0, 0, 0, shapes.DiagUp),
		"points": formex.MustPattern("3:012").AsPoints(),
		"empty":  {},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, objs))

	got, err := Read(&buf)
	require.NoError(t, err)
	// the empty object is skipped on write.
	require.Len(t, got, 3)
	for _, name := range []string{"truss", "panel", "points"} {
		want := objs[name]
		g, ok := got[name]
		require.True(t, ok, "object %q missing", name)
		assert.Equal(t, want.Nelems(), g.Nelems(), "%q element count", name)
		assert.Equal(t, want.Nplex(), g.Nplex(), "%q plexitude", name)
		assert.Equal(t, want.Prop(), g.Prop(), "%q props", name)
		assert.Equal(t, want.Coords(), g.Coords(), "%q coordinates", name)
	}
}

func TestDeterministicOrder(t *testing.T) {
	objs := map[string]formex.Formex{
		"zeta":  formex.MustPattern("l:1"),
		"alpha": formex.MustPattern("l:2"),
	}
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, objs))
	require.NoError(t, Write(&b, objs))
	assert.Equal(t, a.String(), b.String())
	assert.Less(t, strings.Index(a.String(), "alpha"), strings.Index(a.String(), "zeta"))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pgf")
	objs := map[string]formex.Formex{"wire": shapes.Sphere2(4, 2, 1, -90, 90)}
	require.NoError(t, Save(path, objs))
	got, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, got, "wire")
	assert.Equal(t, objs["wire"].Nelems(), got["wire"].Nelems())
}

func TestReadErrors(t *testing.T) {
	cases := map[string]string{
		"missing signature": "# name='a' nelems=1 nplex=1 props=false\n0 0 0\n",
		"bad attribute":     "# formex geometry file version='1.0'\n# name='a' nelems=x nplex=1 props=false\n",
		"missing attribute": "# formex geometry file version='1.0'\n# name='a' nplex=1\n",
		"truncated coords":  "# formex geometry file version='1.0'\n# name='a' nelems=2 nplex=1 props=false\n0 0 0\n",
		"short coord line":  "# formex geometry file version='1.0'\n# name='a' nelems=1 nplex=2 props=false\n0 0 0\n",
		"missing props":     "# formex geometry file version='1.0'\n# name='a' nelems=1 nplex=1 props=true\n0 0 0\n",
		"duplicate name": "# formex geometry file version='1.0'\n" +
			"# name='a' nelems=1 nplex=1 props=false\n0 0 0\n" +
			"# name='a' nelems=1 nplex=1 props=false\n0 0 0\n",
	}
	for label, src := range cases {
		_, err := Read(strings.NewReader(src))
		assert.Error(t, err, label)
	}
}

func TestWriteRejectsBadName(t *testing.T) {
	err := Write(&bytes.Buffer{}, map[string]formex.Formex{"bad name": formex.MustPattern("l:1")})
	require.Error(t, err)
}
