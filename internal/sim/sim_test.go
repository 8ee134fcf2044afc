package sim

import (
	"context"
	"testing"

	"github.com/specialistvlad/mtlsim/internal/dag"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/specialistvlad/mtlsim/internal/netlist"
	"github.com/specialistvlad/mtlsim/internal/scheduler"
	"github.com/specialistvlad/mtlsim/internal/sensitivity"
	"github.com/specialistvlad/mtlsim/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newSim(t *testing.T, top *model.Module, opts Options) (*Simulator, *testutil.SafeBuffer) {
	t.Helper()
	ctx, logs := testutil.Context(t)
	require.NoError(t, top.Elaborate())
	s, err := New(ctx, top, opts)
	require.NoError(t, err)
	return s, logs
}

// adder returns a module computing sum = a + b and carry out.
func adder(width int) *model.Module {
	m := model.New("Adder")
	m.InPort("a", width)
	m.InPort("b", width)
	m.OutPort("sum", width)
	m.OutPort("cout", 1)
	m.SetParam("width", cty.NumberIntVal(int64(width)))
	m.Combinational("logic", "sum = a + b\ncout = bit(a + b, param.width)\n")
	return m
}

// counter returns an 8-bit counter with enable and synchronous reset.
func counter() *model.Module {
	m := model.New("Counter")
	m.InPort("reset", 1)
	m.InPort("en", 1)
	m.OutPort("count", 8)
	m.Wire("next", 8)
	m.Combinational("logic", "next = reset == 1 ? 0 : (en == 1 ? count + 1 : count)")
	m.Sequential("reg", "count = next")
	return m
}

func TestNew_Preconditions(t *testing.T) {
	ctx, _ := testutil.Context(t)

	_, err := New(ctx, nil, Options{})
	require.ErrorIs(t, err, ErrNotElaborated)

	top := adder(4)
	_, err = New(ctx, top, Options{})
	require.ErrorIs(t, err, ErrNotElaborated)

	require.NoError(t, top.Elaborate())
	_, err = New(ctx, top, Options{LoopCheck: "sometimes"})
	require.Error(t, err)

	_, err = New(ctx, top, Options{})
	require.NoError(t, err)
	_, err = New(ctx, top, Options{})
	require.ErrorIs(t, err, model.ErrAlreadyInstalled)
}

func TestAdder(t *testing.T) {
	s, _ := newSim(t, adder(8), Options{})
	require.NoError(t, s.Reset())

	require.NoError(t, s.Poke("a", 200))
	require.NoError(t, s.Poke("b", 100))
	require.NoError(t, s.Eval())

	sum, err := s.Peek("sum")
	require.NoError(t, err)
	assert.Equal(t, uint64(44), sum)
	cout, err := s.Peek("cout")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cout)

	require.Error(t, s.Poke("a", 256), "value wider than the port")
	_, err = s.Peek("nope")
	require.Error(t, err)
	_, err = s.Peek("a..b")
	require.Error(t, err)
}

func TestCounterWithReset(t *testing.T) {
	s, _ := newSim(t, counter(), Options{})

	require.NoError(t, s.Poke("en", 1))
	require.NoError(t, s.Reset())
	assert.Equal(t, uint64(2), s.NumCycles())

	count, err := s.Peek("count")
	require.NoError(t, err)
	assert.Zero(t, count, "reset held the counter at zero")

	require.NoError(t, s.Cycles(5))
	count, err = s.Peek("count")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	require.NoError(t, s.Poke("en", 0))
	require.NoError(t, s.Eval())
	require.NoError(t, s.Cycles(3))
	count, err = s.Peek("count")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
	assert.Equal(t, uint64(10), s.NumCycles())
}

func TestHierarchy_NetsAndWidths(t *testing.T) {
	top := model.New("Top")
	x := top.InPort("x", 8)
	y := top.InPort("y", 8)
	z := top.InPort("z", 8)
	out := top.OutPort("out", 8)
	u0 := top.Add("u0", adder(8))
	u1 := top.Add("u1", adder(8))
	top.Connect(x, u0.Signal("a"))
	top.Connect(y, u0.Signal("b"))
	top.Connect(u0.Signal("sum"), u1.Signal("a"))
	top.Connect(z, u1.Signal("b"))
	top.Connect(u1.Signal("sum"), out)

	s, _ := newSim(t, top, Options{})

	// x, y, z, out, u0.sum/u1.a, u0.cout, u1.cout
	assert.Len(t, s.Nets(), 7)
	for _, net := range s.Nets() {
		n := s.Nodes()[net.ID]
		for _, m := range net.Members {
			assert.Equal(t, n.Width(), m.Width())
		}
	}

	require.NoError(t, s.Reset())
	require.NoError(t, s.Poke("x", 1))
	require.NoError(t, s.Poke("y", 2))
	require.NoError(t, s.Poke("z", 3))
	require.NoError(t, s.Eval())

	v, err := s.Peek("out")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), v)

	a, err := s.Node("u1.a")
	require.NoError(t, err)
	sum, err := s.Node("u0.sum")
	require.NoError(t, err)
	assert.Same(t, sum, a)

	report, ok := s.Sensitivity("u1.logic")
	require.True(t, ok)
	assert.Len(t, report.Nodes(), 2)
	assert.Len(t, s.Reports(), 2)
}

func TestConstantVisibleAfterConstruction(t *testing.T) {
	top := model.New("Top")
	k := top.Wire("k", 4)
	top.Connect(top.Const(4, 0b1001), k)
	s, _ := newSim(t, top, Options{})

	v, err := s.Peek("k")
	require.NoError(t, err)
	assert.Equal(t, uint64(0b1001), v)
}

func TestPrimeChain(t *testing.T) {
	top := model.New("Top")
	top.Wire("a", 8)
	top.Wire("b", 8)
	top.Wire("c", 8)
	top.Connect(top.Const(8, 5), top.Signal("a"))
	// Declared in reverse so a single pass in declaration order is not enough.
	top.Combinational("b_to_c", "c = b + 1")
	top.Combinational("a_to_b", "b = a + 1")

	s, _ := newSim(t, top, Options{})
	require.NoError(t, s.Reset())

	c, err := s.Peek("c")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), c)

	// Fixed point: draining again changes nothing.
	evals := s.Stats().Evals
	require.NoError(t, s.Eval())
	assert.Equal(t, evals, s.Stats().Evals)
	require.NoError(t, s.Reset())
	assert.Equal(t, evals, s.Stats().Evals, "priming happens once")
}

func TestSharedNodeScenario(t *testing.T) {
	top := model.New("Top")
	p := top.Wire("p", 4)
	q := top.Wire("q", 4)
	top.Connect(p, q)
	s, _ := newSim(t, top, Options{})

	require.NoError(t, s.Poke("p", 0b1010))
	v, err := s.Peek("q")
	require.NoError(t, err)
	assert.Equal(t, uint64(0b1010), v)
	assert.Len(t, s.Nets(), 1)
}

func TestSlicedScenario(t *testing.T) {
	ctx, _ := testutil.Context(t)
	top := model.New("Top")
	p := top.Wire("p", 4)
	q := top.Wire("q", 4)
	r := top.Wire("r", 4)
	top.Connect(p, q)
	top.Connect(q, r)
	top.ConnectSlice(p, &model.Slice{Hi: 3, Lo: 2}, r, &model.Slice{Hi: 1, Lo: 0})
	require.NoError(t, top.Elaborate())

	s, err := New(ctx, top, Options{})
	require.ErrorIs(t, err, netlist.ErrSliceUnsupported)
	assert.Nil(t, s)
	assert.False(t, top.Installed())
	assert.Nil(t, top.Node("p"))
}

// loop builds f: X -> Y and g: Y -> X.
func loop() *model.Module {
	top := model.New("Top")
	top.Wire("x", 8)
	top.Wire("y", 8)
	top.Combinational("f", "y = x + 1")
	top.Combinational("g", "x = y + 1")
	return top
}

func TestCombinationalLoop(t *testing.T) {
	t.Run("warn by default, bounded by the watchdog", func(t *testing.T) {
		s, logs := newSim(t, loop(), Options{MaxEvals: 50})
		assert.Contains(t, logs.String(), "Combinational loop detected")

		err := s.Reset()
		require.ErrorIs(t, err, scheduler.ErrNotSettled)
		assert.Equal(t, uint64(50), s.Stats().Evals)
	})

	t.Run("error mode refuses construction", func(t *testing.T) {
		ctx, _ := testutil.Context(t)
		top := loop()
		require.NoError(t, top.Elaborate())
		_, err := New(ctx, top, Options{LoopCheck: LoopCheckError})
		require.ErrorIs(t, err, dag.ErrCombinationalLoop)
		assert.ErrorContains(t, err, "f -> g -> f")
	})

	t.Run("off skips analysis", func(t *testing.T) {
		_, logs := newSim(t, loop(), Options{LoopCheck: LoopCheckOff, MaxEvals: 10})
		assert.NotContains(t, logs.String(), "Combinational loop detected")
	})
}

func TestNoFalseLoopForChain(t *testing.T) {
	ctx, _ := testutil.Context(t)
	top := model.New("Top")
	top.Wire("a", 8)
	top.Wire("b", 8)
	top.Wire("c", 8)
	top.Combinational("ab", "b = a")
	top.Combinational("bc", "c = b")
	require.NoError(t, top.Elaborate())
	_, err := New(ctx, top, Options{LoopCheck: LoopCheckError})
	require.NoError(t, err)
}

func TestGoBehaviours(t *testing.T) {
	top := model.New("Top")
	top.InPortArray("in", 4, 4)
	top.OutPort("total", 8)
	top.WireArray("acc", 2, 8)
	top.CombinationalFunc("sum", "[in]", func() error {
		var total uint64
		for _, n := range top.Nodes("in") {
			total += n.Uint64()
		}
		top.Node("total").Write(total)
		return nil
	})
	top.SequentialFunc("shift", func() error {
		top.NodeAt("acc", 1).SetNext(top.NodeAt("acc", 0).Uint64())
		top.NodeAt("acc", 0).SetNext(top.Node("total").Uint64())
		return nil
	})

	s, _ := newSim(t, top, Options{})
	require.NoError(t, s.Reset())
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Poke("in["+string(rune('0'+i))+"]", uint64(i+1)))
	}
	require.NoError(t, s.Eval())

	total, err := s.Peek("total")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), total)

	require.NoError(t, s.Cycles(2))
	v, err := s.Peek("acc[1]")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)

	report, ok := s.Sensitivity("sum")
	require.True(t, ok)
	require.Len(t, report.Results, 1)
	assert.Equal(t, sensitivity.KindCollection, report.Results[0].Kind)
}

func TestBindErrors(t *testing.T) {
	ctx, _ := testutil.Context(t)
	top := model.New("Top")
	top.WireArray("regs", 2, 4)
	top.Combinational("bad", "regs = 1")
	require.NoError(t, top.Elaborate())

	_, err := New(ctx, top, Options{})
	require.ErrorContains(t, err, "invalid assignment target")
}

func TestVerifyHookFailure(t *testing.T) {
	ctx := context.Background()
	top := model.New("Top")
	top.OnVerify(func(*model.Module) error { return assert.AnError })
	require.NoError(t, top.Elaborate())

	_, err := New(ctx, top, Options{})
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, top.Installed())
}

func TestParseLoopCheck(t *testing.T) {
	for in, expected := range map[string]LoopCheck{"": LoopCheckWarn, "off": LoopCheckOff, "warn": LoopCheckWarn, "error": LoopCheckError} {
		got, err := ParseLoopCheck(in)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
	_, err := ParseLoopCheck("loud")
	require.Error(t, err)
}
