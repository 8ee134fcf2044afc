package model

import (
	"fmt"
	"regexp"

	"github.com/specialistvlad/mtlsim/internal/behavior"
	"github.com/specialistvlad/mtlsim/internal/bits"
	"github.com/specialistvlad/mtlsim/internal/netid"
	"github.com/specialistvlad/mtlsim/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// ParamNamespace is the root name under which parameters are visible to
// behaviour bodies. It cannot be used as a signal or instance name.
const ParamNamespace = "param"

var nameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Slot is one entry of a module's slot table.
type Slot struct {
	Key SlotKey
	// Signal is set until installation.
	Signal *Signal
	// Node is set by installation.
	Node *node.Node
}

// Module is one instance in the hierarchy.
type Module struct {
	typeName string
	name     string
	parent   *Module

	params      map[string]cty.Value
	signals     []*Signal
	consts      []*Signal
	slots       map[SlotKey]*Slot
	collections map[string]int
	children    []*Module
	childIdx    map[string]*Module
	conns       []*Connection
	behaviors   []*behavior.Behavior
	verifiers   []func(*Module) error
	errs        []error

	elaborated bool
	installed  bool
}

// New creates an empty module of the given type. The type name is only
// used for diagnostics.
func New(typeName string) *Module {
	return &Module{
		typeName:    typeName,
		params:      make(map[string]cty.Value),
		slots:       make(map[SlotKey]*Slot),
		collections: make(map[string]int),
		childIdx:    make(map[string]*Module),
	}
}

// TypeName returns the module's type name.
func (m *Module) TypeName() string { return m.typeName }

// Name returns the instance name. The top module has an empty name.
func (m *Module) Name() string { return m.name }

// Parent returns the enclosing module, or nil for the top.
func (m *Module) Parent() *Module { return m.parent }

// Address returns the module's path relative to the top module.
func (m *Module) Address() *netid.Address {
	if m.parent == nil {
		return &netid.Address{}
	}
	return m.parent.Address().Child(netid.NewSegment(m.name))
}

// Path is the printable form of Address, or the type name for the top.
func (m *Module) Path() string {
	if m.parent == nil {
		return m.typeName
	}
	return m.Address().String()
}

func (m *Module) fail(sentinel error, format string, args ...any) {
	m.errs = append(m.errs, fmt.Errorf("%s: %s: %w", m.Path(), fmt.Sprintf(format, args...), sentinel))
}

func (m *Module) checkName(name string) bool {
	if !nameRegex.MatchString(name) || name == ParamNamespace {
		m.fail(ErrInvalidDeclaration, "invalid name %q", name)
		return false
	}
	if _, ok := m.childIdx[name]; ok {
		m.fail(ErrInvalidDeclaration, "name %q already used by an instance", name)
		return false
	}
	if _, ok := m.collections[name]; ok {
		m.fail(ErrInvalidDeclaration, "name %q already declared", name)
		return false
	}
	if _, ok := m.slots[Scalar(name)]; ok {
		m.fail(ErrInvalidDeclaration, "name %q already declared", name)
		return false
	}
	return true
}

func (m *Module) declare(name string, index, width int, dir Direction) *Signal {
	s := &Signal{key: SlotKey{Name: name, Index: index}, width: width, dir: dir, owner: m}
	m.signals = append(m.signals, s)
	m.slots[s.key] = &Slot{Key: s.key, Signal: s}
	return s
}

func (m *Module) scalar(name string, width int, dir Direction) *Signal {
	if !bits.ValidWidth(width) {
		m.fail(ErrInvalidDeclaration, "signal %q has width %d", name, width)
	}
	if !m.checkName(name) {
		return &Signal{key: Scalar(name), width: width, dir: dir, owner: m}
	}
	return m.declare(name, -1, width, dir)
}

func (m *Module) array(name string, count, width int, dir Direction) []*Signal {
	if !bits.ValidWidth(width) {
		m.fail(ErrInvalidDeclaration, "signal %q has width %d", name, width)
	}
	if count < 0 {
		m.fail(ErrInvalidDeclaration, "signal array %q has count %d", name, count)
		count = 0
	}
	out := make([]*Signal, count)
	if !m.checkName(name) {
		for i := range out {
			out[i] = &Signal{key: Element(name, i), width: width, dir: dir, owner: m}
		}
		return out
	}
	m.collections[name] = count
	for i := range out {
		out[i] = m.declare(name, i, width, dir)
	}
	return out
}

// InPort declares an input port.
func (m *Module) InPort(name string, width int) *Signal { return m.scalar(name, width, In) }

// OutPort declares an output port.
func (m *Module) OutPort(name string, width int) *Signal { return m.scalar(name, width, Out) }

// Wire declares an internal wire.
func (m *Module) Wire(name string, width int) *Signal { return m.scalar(name, width, Wire) }

// InPortArray declares count input ports addressed as name[i].
func (m *Module) InPortArray(name string, count, width int) []*Signal {
	return m.array(name, count, width, In)
}

// OutPortArray declares count output ports addressed as name[i].
func (m *Module) OutPortArray(name string, count, width int) []*Signal {
	return m.array(name, count, width, Out)
}

// WireArray declares count wires addressed as name[i].
func (m *Module) WireArray(name string, count, width int) []*Signal {
	return m.array(name, count, width, Wire)
}

// Const declares a constant source. Constants are never slots; they only
// exist to drive the net they are connected to.
func (m *Module) Const(width int, value uint64) *Signal {
	if !bits.ValidWidth(width) {
		m.fail(ErrInvalidDeclaration, "constant has width %d", width)
	}
	s := &Signal{key: Scalar(fmt.Sprintf("const%d", len(m.consts))), width: width, dir: Const, value: value, owner: m}
	m.consts = append(m.consts, s)
	return s
}

// Add places child under m with the given instance name and returns child.
func (m *Module) Add(name string, child *Module) *Module {
	if child == nil {
		m.fail(ErrInvalidDeclaration, "instance %q is nil", name)
		return nil
	}
	if child.parent != nil || child == m {
		m.fail(ErrInvalidDeclaration, "instance %q already has a parent", name)
		return child
	}
	if !m.checkName(name) {
		return child
	}
	child.parent = m
	child.name = name
	m.children = append(m.children, child)
	m.childIdx[name] = child
	return child
}

// SetParam records a parameter value, visible to bodies as param.<name>.
func (m *Module) SetParam(name string, v cty.Value) {
	m.params[name] = v
}

// Param returns a parameter value.
func (m *Module) Param(name string) (cty.Value, bool) {
	v, ok := m.params[name]
	return v, ok
}

// Params returns the parameter table. It must not be modified.
func (m *Module) Params() map[string]cty.Value { return m.params }

// Connect joins two endpoints. When one side is a constant it becomes the
// source; connecting two constants, or a nil endpoint, is an error.
func (m *Module) Connect(a, b *Signal) {
	m.ConnectSlice(a, nil, b, nil)
}

// ConnectSlice joins two endpoints with an optional bit range on either
// side. Sliced connections are recorded but cannot be simulated: the net
// builder rejects them.
func (m *Module) ConnectSlice(a *Signal, as *Slice, b *Signal, bs *Slice) {
	if a == nil || b == nil {
		m.fail(ErrInvalidConnection, "nil endpoint")
		return
	}
	if a == b {
		m.fail(ErrInvalidConnection, "%s is connected to itself", a)
		return
	}
	if b.IsConst() {
		a, b = b, a
		as, bs = bs, as
	}
	if b.IsConst() {
		m.fail(ErrInvalidConnection, "constant %s cannot be a destination", b)
		return
	}
	c := &Connection{Src: a, Dst: b, SrcSlice: as, DstSlice: bs}
	a.conns = append(a.conns, c)
	b.conns = append(b.conns, c)
	m.conns = append(m.conns, c)
}

// AddBehavior attaches an already built behaviour.
func (m *Module) AddBehavior(b *behavior.Behavior) *behavior.Behavior {
	for _, existing := range m.behaviors {
		if existing.Name == b.Name {
			m.fail(ErrInvalidDeclaration, "behaviour %q declared twice", b.Name)
			return b
		}
	}
	m.behaviors = append(m.behaviors, b)
	return b
}

// Combinational attaches a combinational assignment body.
func (m *Module) Combinational(name, src string) *behavior.Behavior {
	return m.assign(name, src, behavior.Combinational)
}

// Sequential attaches a sequential assignment body. Its writes are staged
// and become visible together at the end of the clock edge.
func (m *Module) Sequential(name, src string) *behavior.Behavior {
	return m.assign(name, src, behavior.Sequential)
}

func (m *Module) assign(name, src string, kind behavior.Kind) *behavior.Behavior {
	body, err := behavior.ParseAssignments(m.Path()+"."+name, src)
	if err != nil {
		m.fail(ErrInvalidDeclaration, "behaviour %q: %v", name, err)
		body = behavior.NewBody(name, "", nil)
	}
	return m.AddBehavior(behavior.NewAssign(name, kind, body))
}

// CombinationalFunc attaches a Go function as a combinational behaviour.
// reads is an HCL expression naming every signal fn reads, e.g. `[a, b]`.
func (m *Module) CombinationalFunc(name, reads string, fn func() error) *behavior.Behavior {
	return m.native(name, reads, behavior.Combinational, fn)
}

// SequentialFunc attaches a Go function run once per clock edge.
func (m *Module) SequentialFunc(name string, fn func() error) *behavior.Behavior {
	return m.native(name, "", behavior.Sequential, fn)
}

func (m *Module) native(name, reads string, kind behavior.Kind, fn func() error) *behavior.Behavior {
	body, err := behavior.ParseReads(m.Path()+"."+name, reads)
	if err != nil {
		m.fail(ErrInvalidDeclaration, "behaviour %q: %v", name, err)
		body, _ = behavior.ParseReads(name, "")
	}
	if fn == nil {
		m.fail(ErrInvalidDeclaration, "behaviour %q has no function", name)
	}
	return m.AddBehavior(behavior.NewFunc(name, kind, body, fn))
}

// OnVerify registers a hook run by the simulator before construction.
func (m *Module) OnVerify(fn func(*Module) error) {
	m.verifiers = append(m.verifiers, fn)
}
