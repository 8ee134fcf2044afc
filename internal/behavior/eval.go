package behavior

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/mtlsim/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

type evaluator struct {
	body    *Body
	scope   Scope
	targets []*node.Node
	funcs   map[string]function.Function
	kind    Kind
}

func (e *evaluator) run() error {
	vars := make(map[string]cty.Value)
	for _, name := range e.body.roots() {
		v, err := e.scope.Value(name)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", name, err)
		}
		vars[name] = v
	}
	ctx := &hcl.EvalContext{Variables: vars, Functions: e.funcs}

	for i, a := range e.body.assignments {
		val, diags := a.Expr.Value(ctx)
		if diags.HasErrors() {
			return fmt.Errorf("failed to evaluate %q: %w", a.Target, diags)
		}
		u, err := ToUint64(val)
		if err != nil {
			return fmt.Errorf("assignment to %q: %w", a.Target, err)
		}

		target := e.targets[i]
		if e.kind == Sequential {
			target.SetNext(u)
			continue
		}
		target.Write(u)
		// Later assignments in the same body see the new value.
		if _, ok := vars[a.Target]; ok {
			vars[a.Target] = cty.NumberUIntVal(target.Uint64())
		}
	}
	return nil
}

var twoTo64 = new(big.Int).Lsh(big.NewInt(1), 64)

// ToUint64 converts an evaluation result to an unsigned value modulo 2^64.
// Booleans become 1 or 0, fractional numbers are truncated toward zero, and
// negative numbers wrap in two's complement.
func ToUint64(v cty.Value) (uint64, error) {
	if v.IsNull() {
		return 0, fmt.Errorf("value is null")
	}
	if !v.IsKnown() {
		return 0, fmt.Errorf("value is unknown")
	}
	switch v.Type() {
	case cty.Bool:
		if v.True() {
			return 1, nil
		}
		return 0, nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInf() {
			return 0, fmt.Errorf("value is infinite")
		}
		i, _ := bf.Int(nil)
		i.Mod(i, twoTo64)
		return i.Uint64(), nil
	default:
		return 0, fmt.Errorf("expected a number or bool, got %s", v.Type().FriendlyName())
	}
}
