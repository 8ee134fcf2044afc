package model

import (
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/bits"
	"github.com/specialistvlad/mtlsim/internal/netid"
)

// Direction is the role a signal plays in its module.
type Direction int

const (
	Wire Direction = iota
	In
	Out
	Const
)

func (d Direction) String() string {
	switch d {
	case In:
		return "input"
	case Out:
		return "output"
	case Const:
		return "const"
	default:
		return "wire"
	}
}

// SlotKey identifies a slot in a module's slot table.
type SlotKey struct {
	Name  string
	Index int // -1 for scalar signals.
}

// Scalar returns the key of a scalar signal.
func Scalar(name string) SlotKey { return SlotKey{Name: name, Index: -1} }

// Element returns the key of one element of a signal array.
func Element(name string, i int) SlotKey { return SlotKey{Name: name, Index: i} }

func (k SlotKey) segment() netid.Segment {
	return netid.Segment{Name: k.Name, Index: k.Index}
}

func (k SlotKey) String() string {
	return k.segment().Name + indexSuffix(k.Index)
}

func indexSuffix(i int) string {
	if i < 0 {
		return ""
	}
	return fmt.Sprintf("[%d]", i)
}

// Signal is a leaf endpoint: one port, wire, or constant of one module
// instance.
type Signal struct {
	key   SlotKey
	width int
	dir   Direction
	value uint64
	owner *Module
	conns []*Connection
}

func (s *Signal) Name() string               { return s.key.Name }
func (s *Signal) Index() int                 { return s.key.Index }
func (s *Signal) Key() SlotKey               { return s.key }
func (s *Signal) Width() int                 { return s.width }
func (s *Signal) Dir() Direction             { return s.dir }
func (s *Signal) Owner() *Module             { return s.owner }
func (s *Signal) IsConst() bool              { return s.dir == Const }
func (s *Signal) Connections() []*Connection { return s.conns }

// Value returns the fixed value of a constant. It is zero for other signals.
func (s *Signal) Value() uint64 { return s.value }

// Address returns the signal's hierarchical address relative to the top
// module.
func (s *Signal) Address() *netid.Address {
	return s.owner.Address().Child(s.key.segment())
}

func (s *Signal) String() string {
	if s.IsConst() {
		return fmt.Sprintf("const(%s)", bits.Format(s.value, s.width))
	}
	return s.Address().String()
}
