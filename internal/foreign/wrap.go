package foreign

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/mtlsim/internal/model"
)

// IO gives an implementation access to its wrapper's ports.
type IO interface {
	Get(port string) uint64
	Set(port string, v uint64)
}

// Impl is an opaque model implementation.
type Impl interface {
	// Ports returns the implementation's own port contract.
	Ports() []Port
	// Eval computes outputs from inputs. It is run whenever an input changes.
	Eval(io IO) error
}

// Ticker is implemented by models with state. Tick runs once per clock
// edge; its writes are staged like any sequential behaviour.
type Ticker interface {
	Tick(io IO) error
}

type portIO struct {
	m      *model.Module
	staged bool
}

func (p portIO) Get(port string) uint64 {
	if n := p.m.Node(port); n != nil {
		return n.Uint64()
	}
	return 0
}

func (p portIO) Set(port string, v uint64) {
	n := p.m.Node(port)
	if n == nil {
		return
	}
	if p.staged {
		n.SetNext(v)
		return
	}
	n.Write(v)
}

// Wrap declares a module with the ports listed in manifest and binds impl
// to it. The manifest is validated immediately; the implementation's ports
// are checked against it when the simulator is built.
func Wrap(manifest Manifest, impl Impl) (*model.Module, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	m := model.New(manifest.Name)
	var inputs []string
	for _, p := range manifest.Ports {
		if p.Dir == DirIn {
			m.InPort(p.Name, p.Width)
			inputs = append(inputs, p.Name)
		} else {
			m.OutPort(p.Name, p.Width)
		}
	}

	m.OnVerify(func(*model.Module) error {
		ports := impl.Ports()
		if err := (Manifest{Name: manifest.Name, Ports: ports}).Validate(); err != nil {
			return fmt.Errorf("implementation ports: %w", err)
		}
		if d := diff(manifest.Ports, ports); len(d) > 0 {
			return mismatch(manifest.Name, d)
		}
		return nil
	})

	reads := ""
	if len(inputs) > 0 {
		reads = "[" + strings.Join(inputs, ", ") + "]"
	}
	m.CombinationalFunc("eval", reads, func() error {
		return impl.Eval(portIO{m: m})
	})
	if ticker, ok := impl.(Ticker); ok {
		m.SequentialFunc("tick", func() error {
			return ticker.Tick(portIO{m: m, staged: true})
		})
	}
	return m, nil
}
