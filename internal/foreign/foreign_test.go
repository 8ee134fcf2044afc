package foreign

import (
	"testing"

	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/specialistvlad/mtlsim/internal/sim"
	"github.com/specialistvlad/mtlsim/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accumulator adds its input into an 8-bit register every cycle and
// exposes in+acc combinationally.
type accumulator struct {
	ports []Port
	acc   uint64
}

func (a *accumulator) Ports() []Port { return a.ports }

func (a *accumulator) Eval(io IO) error {
	io.Set("peek", io.Get("in")+a.acc)
	return nil
}

func (a *accumulator) Tick(io IO) error {
	a.acc = (a.acc + io.Get("in")) & 0xff
	io.Set("acc", a.acc)
	return nil
}

func accManifest() Manifest {
	return Manifest{
		Name: "Accumulator",
		Ports: []Port{
			{Name: "in", Dir: DirIn, Width: 8},
			{Name: "acc", Dir: DirOut, Width: 8},
			{Name: "peek", Dir: DirOut, Width: 8},
		},
	}
}

func TestManifestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		manifest  Manifest
		expectErr bool
	}{
		{name: "valid", manifest: accManifest()},
		{name: "no ports", manifest: Manifest{Name: "Empty"}},
		{name: "empty name", manifest: Manifest{Ports: []Port{{Name: "a", Dir: DirIn, Width: 1}}}, expectErr: true},
		{name: "bad direction", manifest: Manifest{Name: "X", Ports: []Port{{Name: "a", Dir: "inout", Width: 1}}}, expectErr: true},
		{name: "zero width", manifest: Manifest{Name: "X", Ports: []Port{{Name: "a", Dir: DirIn, Width: 0}}}, expectErr: true},
		{name: "too wide", manifest: Manifest{Name: "X", Ports: []Port{{Name: "a", Dir: DirIn, Width: 65}}}, expectErr: true},
		{name: "bad port name", manifest: Manifest{Name: "X", Ports: []Port{{Name: "a-b", Dir: DirIn, Width: 1}}}, expectErr: true},
		{name: "duplicate port", manifest: Manifest{Name: "X", Ports: []Port{{Name: "a", Dir: DirIn, Width: 1}, {Name: "a", Dir: DirOut, Width: 1}}}, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if tc.expectErr {
				require.ErrorIs(t, err, ErrInvalidManifest)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
name: "Accumulator"
ports: [
	{name: "in", dir: "in", width: 8},
	{name: "acc", dir: "out", width: 8},
]
`))
	require.NoError(t, err)
	assert.Equal(t, "Accumulator", m.Name)
	require.Len(t, m.Ports, 2)
	assert.Equal(t, Port{Name: "acc", Dir: DirOut, Width: 8}, m.Ports[1])

	m, err = ParseManifest([]byte(`{"name": "J", "ports": [{"name": "x", "dir": "out", "width": 3}]}`))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Ports[0].Width)

	_, err = ParseManifest([]byte(`{"name": "J", "ports": [], "extra": true}`))
	require.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ParseManifest([]byte(`name: `))
	require.Error(t, err)
}

func TestWrap_Simulates(t *testing.T) {
	impl := &accumulator{ports: accManifest().Ports}
	wrapped, err := Wrap(accManifest(), impl)
	require.NoError(t, err)

	top := model.New("Top")
	x := top.InPort("x", 8)
	y := top.OutPort("y", 8)
	u0 := top.Add("u0", wrapped)
	top.Connect(x, u0.Signal("in"))
	top.Connect(u0.Signal("acc"), y)
	require.NoError(t, top.Elaborate())

	ctx, _ := testutil.Context(t)
	s, err := sim.New(ctx, top, sim.Options{})
	require.NoError(t, err)
	require.NoError(t, s.Reset())

	require.NoError(t, s.Poke("x", 3))
	require.NoError(t, s.Eval())
	peek, err := s.Peek("u0.peek")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), peek)

	require.NoError(t, s.Cycles(2))
	acc, err := s.Peek("y")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), acc)

	peek, err = s.Peek("u0.peek")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), peek, "eval only re-runs when an input changes")

	report, ok := s.Sensitivity("u0.eval")
	require.True(t, ok)
	assert.Len(t, report.Nodes(), 1)
}

func TestWrap_PortMismatch(t *testing.T) {
	testCases := []struct {
		name   string
		ports  []Port
		target error
	}{
		{
			name:   "width differs",
			ports:  []Port{{Name: "in", Dir: DirIn, Width: 4}, {Name: "acc", Dir: DirOut, Width: 8}, {Name: "peek", Dir: DirOut, Width: 8}},
			target: ErrPortMismatch,
		},
		{
			name:   "missing port",
			ports:  []Port{{Name: "in", Dir: DirIn, Width: 8}, {Name: "acc", Dir: DirOut, Width: 8}},
			target: ErrPortMismatch,
		},
		{
			name:   "direction differs",
			ports:  []Port{{Name: "in", Dir: DirOut, Width: 8}, {Name: "acc", Dir: DirOut, Width: 8}, {Name: "peek", Dir: DirOut, Width: 8}},
			target: ErrPortMismatch,
		},
		{
			name:   "invalid implementation ports",
			ports:  []Port{{Name: "in", Dir: DirIn, Width: 99}},
			target: ErrInvalidManifest,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped, err := Wrap(accManifest(), &accumulator{ports: tc.ports})
			require.NoError(t, err)
			top := model.New("Top")
			top.Add("u0", wrapped)
			require.NoError(t, top.Elaborate())

			ctx, _ := testutil.Context(t)
			_, err = sim.New(ctx, top, sim.Options{})
			require.ErrorIs(t, err, tc.target)
			assert.False(t, top.Installed())
		})
	}
}

func TestWrap_InvalidManifest(t *testing.T) {
	_, err := Wrap(Manifest{Name: ""}, &accumulator{})
	require.ErrorIs(t, err, ErrInvalidManifest)
}

func TestDiff(t *testing.T) {
	want := []Port{{Name: "a", Dir: DirIn, Width: 1}, {Name: "b", Dir: DirOut, Width: 2}}
	assert.Empty(t, diff(want, []Port{want[1], want[0]}), "order does not matter")

	d := diff(want, []Port{{Name: "a", Dir: DirIn, Width: 1}, {Name: "c", Dir: DirOut, Width: 2}})
	assert.Equal(t, []string{"missing out b[2]", "unexpected out c[2]"}, d)
}
