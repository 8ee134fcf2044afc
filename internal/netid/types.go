package netid

// Segment is a single component of an address, e.g. `name` or `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewIndexedSegment creates a segment that includes an index.
func NewIndexedSegment(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

// HasIndex returns true if the segment has an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Address locates a signal or module relative to some root module.
type Address struct {
	Path []Segment
}

// Child returns a new address with seg appended. The receiver is not modified.
func (a *Address) Child(seg Segment) *Address {
	var path []Segment
	if a != nil {
		path = make([]Segment, 0, len(a.Path)+1)
		path = append(path, a.Path...)
	}
	return &Address{Path: append(path, seg)}
}

// Leaf returns the last segment. It panics on an empty address.
func (a *Address) Leaf() Segment {
	return a.Path[len(a.Path)-1]
}

// Parent returns the address without its last segment.
func (a *Address) Parent() *Address {
	if a == nil || len(a.Path) <= 1 {
		return &Address{}
	}
	return &Address{Path: append([]Segment(nil), a.Path[:len(a.Path)-1]...)}
}
