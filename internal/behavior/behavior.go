package behavior

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/mtlsim/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Kind distinguishes combinational from sequential behaviours.
type Kind int

const (
	Combinational Kind = iota
	Sequential
)

func (k Kind) String() string {
	if k == Sequential {
		return "sequential"
	}
	return "combinational"
}

// ErrNotBound is returned when an assignment behaviour is invoked before
// Bind attached it to a scope.
var ErrNotBound = errors.New("behaviour is not bound to a scope")

// Scope is what an assignment body evaluates against: the owning module
// instance after value nodes have been installed.
type Scope interface {
	// Value returns the evaluation value of a root name: a number for a
	// scalar signal, a tuple for a collection, an object for a submodule
	// or for the `param` namespace.
	Value(name string) (cty.Value, error)
	// Target returns the node an assignment to name writes.
	Target(name string) (*node.Node, error)
}

// Behavior is a unit of code bound to one module instance.
type Behavior struct {
	// Name is the behaviour's local name inside its module.
	Name string
	// ID is the hierarchical name used in logs and errors. It defaults to
	// Name and is set by the owning module during elaboration.
	ID   string
	Kind Kind
	Body *Body

	fn     func() error
	native bool
}

// NewAssign creates a behaviour whose body is evaluated. It must be bound
// to a scope before it can run.
func NewAssign(name string, kind Kind, body *Body) *Behavior {
	return &Behavior{Name: name, ID: name, Kind: kind, Body: body}
}

// NewFunc creates a behaviour that runs fn. The body only declares reads.
func NewFunc(name string, kind Kind, reads *Body, fn func() error) *Behavior {
	if reads == nil {
		reads, _ = ParseReads(name, "")
	}
	return &Behavior{Name: name, ID: name, Kind: kind, Body: reads, fn: fn, native: true}
}

// Native reports whether the behaviour runs a Go function.
func (b *Behavior) Native() bool { return b.native }

// Bind compiles an assignment body against scope: every called function
// must exist and every target must be writable. Native behaviours ignore
// the scope.
func (b *Behavior) Bind(scope Scope) error {
	if b.native {
		if b.fn == nil {
			return fmt.Errorf("behaviour %q has no function", b.ID)
		}
		return nil
	}

	funcs := Functions()
	for _, name := range b.Body.Functions() {
		if _, ok := funcs[name]; !ok {
			return fmt.Errorf("behaviour %q calls unknown function %q", b.ID, name)
		}
	}

	targets := make([]*node.Node, len(b.Body.assignments))
	for i, a := range b.Body.assignments {
		n, err := scope.Target(a.Target)
		if err != nil {
			return fmt.Errorf("behaviour %q: invalid assignment target %q: %w", b.ID, a.Target, err)
		}
		targets[i] = n
	}

	ev := &evaluator{body: b.Body, scope: scope, targets: targets, funcs: funcs, kind: b.Kind}
	b.fn = ev.run
	return nil
}

// Invoke runs the behaviour once.
func (b *Behavior) Invoke() error {
	if b.fn == nil {
		return ErrNotBound
	}
	return b.fn()
}

// Targets returns the assignment target names. Native behaviours report none.
func (b *Behavior) Targets() []string {
	return b.Body.Stores()
}

// Loads is shorthand for b.Body.Loads().
func (b *Behavior) Loads() []hcl.Traversal {
	return b.Body.Loads()
}
