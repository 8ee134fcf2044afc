package model

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/mtlsim/internal/behavior"
	"github.com/specialistvlad/mtlsim/internal/netid"
	"github.com/specialistvlad/mtlsim/internal/node"
)

// Slot returns the slot for key, or nil.
func (m *Module) Slot(key SlotKey) *Slot { return m.slots[key] }

// Slots returns every slot sorted by name and index.
func (m *Module) Slots() []*Slot {
	out := make([]*Slot, 0, len(m.slots))
	for _, s := range m.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Name != out[j].Key.Name {
			return out[i].Key.Name < out[j].Key.Name
		}
		return out[i].Key.Index < out[j].Key.Index
	})
	return out
}

// Collection returns the length of the signal array called name.
func (m *Module) Collection(name string) (int, bool) {
	n, ok := m.collections[name]
	return n, ok
}

// Child returns the submodule instance called name, or nil.
func (m *Module) Child(name string) *Module { return m.childIdx[name] }

// Children returns submodules in declaration order.
func (m *Module) Children() []*Module { return m.children }

// Signals returns ports and wires in declaration order. It is empty after
// installation.
func (m *Module) Signals() []*Signal { return m.signals }

// Constants returns the module's constants. It is empty after installation.
func (m *Module) Constants() []*Signal { return m.consts }

// Connections returns the connections declared in this module.
func (m *Module) Connections() []*Connection { return m.conns }

// Behaviors returns the module's behaviours in declaration order.
func (m *Module) Behaviors() []*behavior.Behavior { return m.behaviors }

// Signal returns the scalar signal called name, or nil. Only valid before
// installation.
func (m *Module) Signal(name string) *Signal { return m.SignalAt(name, -1) }

// SignalAt returns element i of the signal array called name, or nil.
func (m *Module) SignalAt(name string, i int) *Signal {
	if s := m.slots[SlotKey{Name: name, Index: i}]; s != nil {
		return s.Signal
	}
	return nil
}

// Node returns the value node bound to the scalar signal called name, or
// nil. Only valid after installation.
func (m *Module) Node(name string) *node.Node { return m.NodeAt(name, -1) }

// NodeAt returns the value node of element i of the array called name.
func (m *Module) NodeAt(name string, i int) *node.Node {
	if s := m.slots[SlotKey{Name: name, Index: i}]; s != nil {
		return s.Node
	}
	return nil
}

// Nodes returns the value nodes of every element of the array called name.
func (m *Module) Nodes(name string) []*node.Node {
	n := m.collections[name]
	out := make([]*node.Node, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, m.NodeAt(name, i))
	}
	return out
}

// Bind rebinds a slot to its installed value node and drops the signal.
func (m *Module) Bind(key SlotKey, n *node.Node) error {
	slot := m.slots[key]
	if slot == nil {
		return fmt.Errorf("%s: no slot %s", m.Path(), key)
	}
	slot.Node = n
	slot.Signal = nil
	return nil
}

// Instance returns the instance at addr relative to m.
func (m *Module) Instance(addr *netid.Address) (*Module, error) {
	cur := m
	for _, seg := range addr.Path {
		if seg.HasIndex() {
			return nil, fmt.Errorf("instance %q cannot be indexed", seg.Name)
		}
		next := cur.Child(seg.Name)
		if next == nil {
			return nil, fmt.Errorf("%s has no instance %q", cur.Path(), seg.Name)
		}
		cur = next
	}
	return cur, nil
}

// Lookup returns the node bound to the signal at addr relative to m, e.g.
// `u0.regs[2]`.
func (m *Module) Lookup(addr *netid.Address) (*node.Node, error) {
	if addr == nil || len(addr.Path) == 0 {
		return nil, fmt.Errorf("empty signal address")
	}
	owner, err := m.Instance(addr.Parent())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", addr, err)
	}
	leaf := addr.Leaf()
	slot := owner.Slot(SlotKey{Name: leaf.Name, Index: leaf.Index})
	if slot == nil {
		return nil, fmt.Errorf("failed to resolve %q: %s has no signal %s", addr, owner.Path(), SlotKey{Name: leaf.Name, Index: leaf.Index})
	}
	if slot.Node == nil {
		return nil, fmt.Errorf("failed to resolve %q: no value node installed", addr)
	}
	return slot.Node, nil
}
