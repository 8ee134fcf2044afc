package netlist

import (
	"context"
	"testing"

	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/specialistvlad/mtlsim/internal/netid"
	"github.com/specialistvlad/mtlsim/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, top *model.Module) (*Graph, []*Net, error) {
	t.Helper()
	require.NoError(t, top.Elaborate())
	g, err := Collect(context.Background(), top)
	require.NoError(t, err)
	nets, err := BuildNets(context.Background(), g)
	return g, nets, err
}

// hierarchy builds Top{a, b -> u0.in, u0.out -> y, u1.in, u1.out} with two
// leaf instances, giving several nets of different widths.
func hierarchy() *model.Module {
	top := model.New("Top")
	a := top.InPort("a", 8)
	y := top.OutPort("y", 8)
	top.Wire("unused", 3)

	u0 := top.Add("u0", model.New("Leaf"))
	in0 := u0.InPort("in", 8)
	out0 := u0.OutPort("out", 8)

	u1 := top.Add("u1", model.New("Leaf"))
	in1 := u1.InPort("in", 8)
	out1 := u1.OutPort("out", 8)

	top.Connect(a, in0)
	top.Connect(out0, in1)
	top.Connect(out1, y)
	return top
}

func TestCollect_Order(t *testing.T) {
	top := hierarchy()
	require.NoError(t, top.Elaborate())

	g, err := Collect(context.Background(), top)
	require.NoError(t, err)

	var names []string
	for _, s := range g.Signals {
		names = append(names, s.String())
	}
	assert.Equal(t, []string{"a", "y", "unused", "u0.in", "u0.out", "u1.in", "u1.out"}, names)
	assert.Len(t, g.Connections, 3)
}

func TestCollect_RequiresElaboration(t *testing.T) {
	_, err := Collect(context.Background(), model.New("Top"))
	require.Error(t, err)
}

func TestBuildNets_Partition(t *testing.T) {
	g, nets, err := build(t, hierarchy())
	require.NoError(t, err)
	require.Len(t, nets, 4)

	seen := make(map[*model.Signal]int)
	for _, net := range nets {
		for _, m := range net.Members {
			seen[m]++
			assert.Equal(t, net.Width, m.Width(), "every member has the net width")
		}
	}
	for _, s := range g.Signals {
		if s.IsConst() {
			assert.Zero(t, seen[s], "constants are never members")
			continue
		}
		assert.Equal(t, 1, seen[s], "%s belongs to exactly one net", s)
	}
}

func TestBuildNets_SharedNode(t *testing.T) {
	top := model.New("Top")
	p := top.Wire("p", 4)
	q := top.Wire("q", 4)
	top.Connect(p, q)

	_, nets, err := build(t, top)
	require.NoError(t, err)
	require.Len(t, nets, 1)

	nodes, err := Install(context.Background(), top, nets)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	assert.Same(t, top.Node("p"), top.Node("q"))
	top.Node("p").Write(0b1010)
	assert.Equal(t, uint64(0b1010), top.Node("q").Uint64())
}

func TestBuildNets_SliceRejected(t *testing.T) {
	top := model.New("Top")
	p := top.Wire("p", 4)
	q := top.Wire("q", 4)
	r := top.Wire("r", 4)
	top.Connect(p, q)
	top.Connect(q, r)
	top.ConnectSlice(p, &model.Slice{Hi: 1, Lo: 0}, r, &model.Slice{Hi: 1, Lo: 0})

	_, nets, err := build(t, top)
	require.ErrorIs(t, err, ErrSliceUnsupported)
	assert.ErrorContains(t, err, "p[1:0]")
	assert.ErrorContains(t, err, "r[1:0]")
	assert.Nil(t, nets)
	assert.Nil(t, top.Node("p"), "no value nodes are created")
	assert.False(t, top.Installed())
}

func TestBuildNets_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		build    func(top *model.Module)
		expected error
	}{
		{
			name: "width mismatch",
			build: func(top *model.Module) {
				top.Connect(top.Wire("a", 4), top.Wire("b", 8))
			},
			expected: ErrWidthMismatch,
		},
		{
			name: "constant too wide",
			build: func(top *model.Module) {
				top.Connect(top.Const(8, 300), top.Wire("a", 4))
			},
			expected: ErrWidthMismatch,
		},
		{
			name: "conflicting constants",
			build: func(top *model.Module) {
				a := top.Wire("a", 4)
				b := top.Wire("b", 4)
				top.Connect(a, b)
				top.Connect(top.Const(4, 1), a)
				top.Connect(top.Const(4, 2), b)
			},
			expected: ErrConstantConflict,
		},
		{
			name: "sliced constant",
			build: func(top *model.Module) {
				top.ConnectSlice(top.Const(2, 1), nil, top.Wire("a", 4), &model.Slice{Hi: 1, Lo: 0})
			},
			expected: ErrSliceUnsupported,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			top := model.New("Top")
			tc.build(top)
			_, _, err := build(t, top)
			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestInstall_ConstantPropagation(t *testing.T) {
	top := model.New("Top")
	a := top.Wire("a", 4)
	b := top.Wire("b", 4)
	top.Connect(a, b)
	top.Connect(top.Const(4, 9), b)
	top.Connect(top.Const(4, 9), a)
	top.Wire("free", 2)

	_, nets, err := build(t, top)
	require.NoError(t, err)
	require.Len(t, nets, 2)

	_, err = Install(context.Background(), top, nets)
	require.NoError(t, err)

	assert.Equal(t, uint64(9), top.Node("a").Uint64())
	assert.Equal(t, uint64(9), top.Node("b").Uint64())
	assert.Zero(t, top.Node("free").Uint64())
}

func TestInstall_Hierarchy(t *testing.T) {
	top := hierarchy()
	_, nets, err := build(t, top)
	require.NoError(t, err)

	nodes, err := Install(context.Background(), top, nets)
	require.NoError(t, err)
	assert.Len(t, nodes, 4)

	lookup := func(path string) *node.Node {
		n, err := top.Lookup(netid.MustParse(path))
		require.NoError(t, err)
		return n
	}
	assert.Same(t, lookup("a"), lookup("u0.in"))
	assert.Same(t, lookup("u0.out"), lookup("u1.in"))
	assert.Same(t, lookup("u1.out"), lookup("y"))
	assert.NotSame(t, lookup("a"), lookup("y"))
	assert.Empty(t, top.Signals(), "signals are dropped after installation")
}

func TestInstall_Twice(t *testing.T) {
	top := hierarchy()
	_, nets, err := build(t, top)
	require.NoError(t, err)
	_, err = Install(context.Background(), top, nets)
	require.NoError(t, err)

	_, err = Install(context.Background(), top, nets)
	require.ErrorIs(t, err, model.ErrAlreadyInstalled)

	_, err = Collect(context.Background(), top)
	require.ErrorIs(t, err, model.ErrAlreadyInstalled)
}
