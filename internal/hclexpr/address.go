package hclexpr

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/mtlsim/internal/netid"
	"github.com/zclconf/go-cty/cty"
)

// ToAddress converts a traversal into a netid address. Attribute steps
// become segments and a literal non-negative integer index is attached to
// the preceding segment. The conversion stops at the first step it cannot
// express; exact reports whether the whole traversal was converted.
func ToAddress(t hcl.Traversal) (addr *netid.Address, exact bool, err error) {
	if len(t) == 0 || t.IsRelative() {
		return nil, false, fmt.Errorf("traversal %q has no root name", TraversalKey(t))
	}

	addr = &netid.Address{Path: []netid.Segment{netid.NewSegment(t.RootName())}}
	for _, step := range t[1:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			addr.Path = append(addr.Path, netid.NewSegment(s.Name))
		case hcl.TraverseIndex:
			last := &addr.Path[len(addr.Path)-1]
			idx, ok := literalIndex(s.Key)
			if !ok || last.HasIndex() {
				return addr, false, nil
			}
			last.Index = idx
		default:
			return addr, false, nil
		}
	}
	return addr, true, nil
}

func literalIndex(key cty.Value) (int, bool) {
	if key.IsNull() || !key.IsKnown() || key.Type() != cty.Number {
		return 0, false
	}
	bf := key.AsBigFloat()
	if !bf.IsInt() || bf.Sign() < 0 {
		return 0, false
	}
	i, acc := bf.Int64()
	if acc != big.Exact || i > int64(^uint32(0)>>1) {
		return 0, false
	}
	return int(i), true
}
