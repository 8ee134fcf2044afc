package app

import (
	"fmt"
	mathbits "math/bits"

	"github.com/specialistvlad/mtlsim/internal/bits"
	"github.com/specialistvlad/mtlsim/internal/foreign"
	"github.com/specialistvlad/mtlsim/internal/hcl_adapter"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module is a Go-implemented module made available to HCL `instance` blocks.
type Module struct {
	Name    string
	Factory hcl_adapter.Factory
}

// coreModules are registered when NewApp is given no modules.
var coreModules = []Module{
	{Name: "Popcount", Factory: newPopcount},
	{Name: "LFSR16", Factory: newLFSR16},
}

func intParam(params map[string]cty.Value, name string, def int) (int, error) {
	v, ok := params[name]
	if !ok {
		return def, nil
	}
	var out int
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return 0, fmt.Errorf("parameter %q: %w", name, err)
	}
	return out, nil
}

// popcount counts the set bits of `in`.
type popcount struct{ width int }

func (p popcount) Ports() []foreign.Port {
	return []foreign.Port{
		{Name: "in", Dir: foreign.DirIn, Width: p.width},
		{Name: "out", Dir: foreign.DirOut, Width: bits.NBits(uint64(p.width))},
	}
}

func (p popcount) Eval(io foreign.IO) error {
	io.Set("out", uint64(mathbits.OnesCount64(io.Get("in"))))
	return nil
}

func newPopcount(params map[string]cty.Value) (*model.Module, error) {
	width, err := intParam(params, "width", 8)
	if err != nil {
		return nil, err
	}
	impl := popcount{width: width}
	return foreign.Wrap(foreign.Manifest{Name: "Popcount", Ports: impl.Ports()}, impl)
}

// lfsr16 is a 16-bit Galois LFSR that advances on every enabled clock edge.
type lfsr16 struct{}

const (
	lfsrSeed = 0xACE1
	lfsrTaps = 0xB400
)

func (lfsr16) Ports() []foreign.Port {
	return []foreign.Port{
		{Name: "en", Dir: foreign.DirIn, Width: 1},
		{Name: "out", Dir: foreign.DirOut, Width: 16},
	}
}

func (lfsr16) Eval(foreign.IO) error { return nil }

func (lfsr16) Tick(io foreign.IO) error {
	if io.Get("en") == 0 {
		return nil
	}
	s := io.Get("out")
	if s == 0 {
		s = lfsrSeed
	}
	lsb := s & 1
	s >>= 1
	if lsb == 1 {
		s ^= lfsrTaps
	}
	io.Set("out", s)
	return nil
}

func newLFSR16(map[string]cty.Value) (*model.Module, error) {
	impl := lfsr16{}
	return foreign.Wrap(foreign.Manifest{Name: "LFSR16", Ports: impl.Ports()}, impl)
}
