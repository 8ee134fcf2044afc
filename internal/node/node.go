// Package node holds the value node: the single mutable cell that replaces
// a collapsed net. Every module slot aliasing the net shares one *Node.
package node

import (
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/bits"
)

// Notifier receives write events from nodes. The scheduler implements it.
type Notifier interface {
	// Notify is called after a write changed the node's value.
	Notify(n *Node)
	// Stage is called the first time a next-state value is set on the node
	// within a cycle.
	Stage(n *Node)
}

// Node is a fixed-width value cell.
type Node struct {
	id    int
	name  string
	width int

	value  uint64
	next   uint64
	staged bool

	notifier Notifier
}

// New creates a node of the given width. The id must be unique within one
// simulator; name is the hierarchical address of the net's first member.
func New(id int, name string, width int) (*Node, error) {
	if !bits.ValidWidth(width) {
		return nil, fmt.Errorf("node %q: width %d out of range 1..%d", name, width, bits.MaxWidth)
	}
	return &Node{id: id, name: name, width: width}, nil
}

// ID returns the node's identity within its simulator.
func (n *Node) ID() int { return n.id }

// Name returns the hierarchical name the node was created for.
func (n *Node) Name() string { return n.name }

// Width returns the node width in bits.
func (n *Node) Width() int { return n.width }

// Uint64 returns the current value.
func (n *Node) Uint64() uint64 { return n.value }

// Bool reports whether the current value is non-zero.
func (n *Node) Bool() bool { return n.value != 0 }

// Attach sets the notifier that is informed of every value change.
func (n *Node) Attach(nt Notifier) { n.notifier = nt }

// Init sets the value without notifying. Used for constant initial values
// before the scheduler exists.
func (n *Node) Init(v uint64) {
	n.value = bits.Truncate(v, n.width)
}

// Write stores v truncated to the node width. The notifier is informed only
// when the stored value changes.
func (n *Node) Write(v uint64) {
	v = bits.Truncate(v, n.width)
	if v == n.value {
		return
	}
	n.value = v
	if n.notifier != nil {
		n.notifier.Notify(n)
	}
}

// SetNext stages v as the node's next-state value. The value becomes
// visible when Commit is called, normally by the scheduler at the end of
// the sequential phase of a cycle.
func (n *Node) SetNext(v uint64) {
	n.next = bits.Truncate(v, n.width)
	if n.staged {
		return
	}
	n.staged = true
	if n.notifier != nil {
		n.notifier.Stage(n)
	}
}

// Staged reports whether a next-state value is pending.
func (n *Node) Staged() bool { return n.staged }

// Next returns the pending next-state value, or the current value when
// nothing is staged.
func (n *Node) Next() uint64 {
	if n.staged {
		return n.next
	}
	return n.value
}

// Commit writes the staged next-state value, if any.
func (n *Node) Commit() {
	if !n.staged {
		return
	}
	n.staged = false
	n.Write(n.next)
}

// Discard drops the staged next-state value without writing it.
func (n *Node) Discard() {
	n.staged = false
	n.next = 0
}

func (n *Node) String() string {
	return fmt.Sprintf("%s=%s", n.name, bits.Format(n.value, n.width))
}
