package behavior

import (
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/bits"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions returns the function table available to behaviour bodies.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"band":      foldFunc(func(a, b uint64) uint64 { return a & b }),
		"bor":       foldFunc(func(a, b uint64) uint64 { return a | b }),
		"bxor":      foldFunc(func(a, b uint64) uint64 { return a ^ b }),
		"bnot":      uintFunc([]string{"x", "width"}, func(a []uint64) uint64 { return bits.Truncate(^a[0], int(a[1])) }),
		"shl":       uintFunc([]string{"x", "n"}, func(a []uint64) uint64 { return shift(a[0], a[1], true) }),
		"shr":       uintFunc([]string{"x", "n"}, func(a []uint64) uint64 { return shift(a[0], a[1], false) }),
		"bit":       uintFunc([]string{"x", "i"}, func(a []uint64) uint64 { return bits.Slice(a[0], clampInt(a[1]), clampInt(a[1])) }),
		"bits":      uintFunc([]string{"x", "hi", "lo"}, func(a []uint64) uint64 { return bits.Slice(a[0], clampInt(a[1]), clampInt(a[2])) }),
		"zext":      uintFunc([]string{"x", "width"}, func(a []uint64) uint64 { return bits.Zext(a[0], clampInt(a[1])) }),
		"sext":      uintFunc([]string{"x", "from", "to"}, func(a []uint64) uint64 { return bits.Sext(a[0], clampInt(a[1]), clampInt(a[2])) }),
		"nbits":     uintFunc([]string{"n"}, func(a []uint64) uint64 { return uint64(bits.NBits(a[0])) }),
		"sel_nbits": uintFunc([]string{"n"}, func(a []uint64) uint64 { return uint64(bits.SelNBits(a[0])) }),
		"concat":    uintFunc([]string{"hi", "lo", "lo_width"}, func(a []uint64) uint64 { return concat(a[0], a[1], clampInt(a[2])) }),
		"min":       stdlib.MinFunc,
		"max":       stdlib.MaxFunc,
	}
}

func shift(x, n uint64, left bool) uint64 {
	if n >= bits.MaxWidth {
		return 0
	}
	if left {
		return x << n
	}
	return x >> n
}

func concat(hi, lo uint64, loWidth int) uint64 {
	if loWidth >= bits.MaxWidth {
		return lo
	}
	return hi<<uint(loWidth) | bits.Truncate(lo, loWidth)
}

func clampInt(v uint64) int {
	if v > bits.MaxWidth*2 {
		return bits.MaxWidth * 2
	}
	return int(v)
}

// uintFunc builds a fixed-arity function over unsigned arguments.
func uintFunc(params []string, impl func([]uint64) uint64) function.Function {
	spec := &function.Spec{Type: function.StaticReturnType(cty.Number)}
	for _, p := range params {
		spec.Params = append(spec.Params, function.Parameter{Name: p, Type: cty.Number})
	}
	spec.Impl = func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		in, err := uintArgs(args)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.NumberUIntVal(impl(in)), nil
	}
	return function.New(spec)
}

// foldFunc builds a variadic function that folds op over at least two
// arguments.
func foldFunc(op func(a, b uint64) uint64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "a", Type: cty.Number},
			{Name: "b", Type: cty.Number},
		},
		VarParam: &function.Parameter{Name: "rest", Type: cty.Number},
		Type:     function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			in, err := uintArgs(args)
			if err != nil {
				return cty.NilVal, err
			}
			acc := in[0]
			for _, v := range in[1:] {
				acc = op(acc, v)
			}
			return cty.NumberUIntVal(acc), nil
		},
	})
}

func uintArgs(args []cty.Value) ([]uint64, error) {
	out := make([]uint64, len(args))
	for i, a := range args {
		u, err := ToUint64(a)
		if err != nil {
			return nil, function.NewArgError(i, fmt.Errorf("invalid argument: %w", err))
		}
		out[i] = u
	}
	return out, nil
}
