package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/mtlsim/internal/behavior"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/hclexpr"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrUnknownModule is returned when an instance names a module that is
	// neither defined nor registered.
	ErrUnknownModule = errors.New("unknown module")
	// ErrRecursiveInstance is returned when a module instantiates itself,
	// directly or through its children.
	ErrRecursiveInstance = errors.New("recursive instantiation")
)

type elaborator struct {
	ctx context.Context
	lib *Library
}

// Elaborate instantiates the module named top with the given parameter
// overrides and elaborates the resulting tree.
func (l *Library) Elaborate(ctx context.Context, top string, overrides map[string]cty.Value) (*model.Module, error) {
	logger := ctxlog.FromContext(ctx).With("top", top)
	logger.Debug("Elaborating model.")

	e := &elaborator{ctx: ctx, lib: l}
	m, err := e.instantiate(top, overrides, nil)
	if err != nil {
		return nil, err
	}
	if err := m.Elaborate(); err != nil {
		return nil, fmt.Errorf("failed to elaborate %s: %w", top, err)
	}

	instances := 0
	_ = m.Walk(func(*model.Module) error {
		instances++
		return nil
	})
	logger.Debug("Model elaborated.", "instances", instances)
	return m, nil
}

func (e *elaborator) instantiate(name string, overrides map[string]cty.Value, stack []string) (*model.Module, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	if slices.Contains(stack, name) {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveInstance, strings.Join(append(slices.Clone(stack), name), " -> "))
	}
	if f, ok := e.lib.factories[name]; ok {
		m, err := f(overrides)
		if err != nil {
			return nil, fmt.Errorf("failed to build module %q: %w", name, err)
		}
		return m, nil
	}
	def, ok := e.lib.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModule, name)
	}

	params, err := evalObject(def.Params, nil, "params")
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", name, err)
	}
	for k, v := range overrides {
		if _, ok := params[k]; !ok {
			return nil, fmt.Errorf("module %q has no parameter %q", name, k)
		}
		params[k] = v
	}
	ectx := &hcl.EvalContext{
		Variables: map[string]cty.Value{model.ParamNamespace: cty.ObjectVal(params)},
		Functions: behavior.Functions(),
	}

	m := model.New(name)
	for k, v := range params {
		m.SetParam(k, v)
	}

	if err := e.declare(m, def, ectx); err != nil {
		return nil, fmt.Errorf("module %q: %w", name, err)
	}

	stack = append(slices.Clone(stack), name)
	for _, inst := range def.Instances {
		childParams, err := evalObject(inst.Params, ectx, "params")
		if err != nil {
			return nil, fmt.Errorf("module %q, instance %q: %w", name, inst.Name, err)
		}
		child, err := e.instantiate(inst.Module, childParams, stack)
		if err != nil {
			return nil, fmt.Errorf("module %q, instance %q: %w", name, inst.Name, err)
		}
		m.Add(inst.Name, child)
	}

	for _, c := range def.Connects {
		if err := e.connect(m, c, ectx); err != nil {
			return nil, fmt.Errorf("module %q, connect at %s: %w", name, c.DeclRange, err)
		}
	}

	for _, b := range def.Combinational {
		if err := e.addBehavior(m, b, behavior.Combinational); err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}
	}
	for _, b := range def.Sequential {
		if err := e.addBehavior(m, b, behavior.Sequential); err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}
	}
	return m, nil
}

func (e *elaborator) declare(m *model.Module, def *moduleBlock, ectx *hcl.EvalContext) error {
	groups := []struct {
		blocks []*signalBlock
		scalar func(string, int) *model.Signal
		array  func(string, int, int) []*model.Signal
	}{
		{def.Inputs, m.InPort, m.InPortArray},
		{def.Outputs, m.OutPort, m.OutPortArray},
		{def.Wires, m.Wire, m.WireArray},
	}
	for _, g := range groups {
		for _, s := range g.blocks {
			width, err := evalInt(s.Width, ectx, "width of "+s.Name)
			if err != nil {
				return err
			}
			if !isExprDefined(s.Count) {
				g.scalar(s.Name, width)
				continue
			}
			count, err := evalInt(s.Count, ectx, "count of "+s.Name)
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("count of %s at %s must be positive, got %d", s.Name, s.DeclRange, count)
			}
			g.array(s.Name, count, width)
		}
	}
	return nil
}

func (e *elaborator) connect(m *model.Module, c *connectBlock, ectx *hcl.EvalContext) error {
	hasFrom, hasValue := isExprDefined(c.From), isExprDefined(c.Value)
	switch {
	case hasFrom && hasValue:
		return errors.New("`from` and `value` are mutually exclusive")
	case !hasFrom && !hasValue:
		return errors.New("one of `from` or `value` is required")
	}

	to, err := endpoint(m, c.To)
	if err != nil {
		return fmt.Errorf("invalid `to`: %w", err)
	}
	toSlice, err := evalSlice(c.ToSlice, ectx, "to_slice")
	if err != nil {
		return err
	}

	if hasValue {
		v, err := evalUint(c.Value, ectx, "value")
		if err != nil {
			return err
		}
		width := to.Width()
		if toSlice != nil {
			width = toSlice.Width()
		}
		m.ConnectSlice(m.Const(width, v), nil, to, toSlice)
		return nil
	}

	from, err := endpoint(m, c.From)
	if err != nil {
		return fmt.Errorf("invalid `from`: %w", err)
	}
	fromSlice, err := evalSlice(c.FromSlice, ectx, "from_slice")
	if err != nil {
		return err
	}
	m.ConnectSlice(from, fromSlice, to, toSlice)
	return nil
}

// endpoint resolves a static traversal such as `inc.in` or `bank[0]` to a
// signal of m or of one of its children.
func endpoint(m *model.Module, expr hcl.Expression) (*model.Signal, error) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("expected a signal reference: %w", diags)
	}
	addr, exact, err := hclexpr.ToAddress(trav)
	if err != nil {
		return nil, err
	}
	if !exact {
		return nil, fmt.Errorf("%s at %s does not name a single signal", hclexpr.TraversalKey(trav), expr.Range())
	}
	owner, err := m.Instance(addr.Parent())
	if err != nil {
		return nil, err
	}
	leaf := addr.Leaf()
	s := owner.SignalAt(leaf.Name, leaf.Index)
	if s == nil {
		return nil, fmt.Errorf("%s has no signal %s", owner.Path(), model.SlotKey{Name: leaf.Name, Index: leaf.Index})
	}
	return s, nil
}

func (e *elaborator) addBehavior(m *model.Module, b *behaviorBlock, kind behavior.Kind) error {
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("%s %q may only contain assignments: %w", kind, b.Name, diags)
	}
	body := behavior.NewBody(b.DeclRange.Filename, bodySource(b.Body, e.lib.files), attrs)
	m.AddBehavior(behavior.NewAssign(b.Name, kind, body))
	return nil
}
