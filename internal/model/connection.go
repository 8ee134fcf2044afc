package model

import "fmt"

// Slice selects bits Hi..Lo (inclusive) of a signal.
type Slice struct {
	Hi, Lo int
}

func (s *Slice) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("[%d:%d]", s.Hi, s.Lo)
}

// Width returns the number of bits the slice selects.
func (s *Slice) Width() int { return s.Hi - s.Lo + 1 }

// Connection is an edge between two endpoints. Constants only ever appear
// as Src.
type Connection struct {
	Src, Dst           *Signal
	SrcSlice, DstSlice *Slice
}

// Sliced reports whether either side selects a bit range.
func (c *Connection) Sliced() bool {
	return c.SrcSlice != nil || c.DstSlice != nil
}

// Constant reports whether the connection is driven by a constant.
func (c *Connection) Constant() bool {
	return c.Src.IsConst() || c.Dst.IsConst()
}

// Other returns the endpoint at the opposite end from s.
func (c *Connection) Other(s *Signal) *Signal {
	if c.Src == s {
		return c.Dst
	}
	return c.Src
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s%s -> %s%s", c.Src, c.SrcSlice, c.Dst, c.DstSlice)
}
