package model

import (
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Value implements behavior.Scope.
func (m *Module) Value(name string) (cty.Value, error) {
	if name == ParamNamespace {
		if len(m.params) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(m.params), nil
	}
	if slot := m.slots[Scalar(name)]; slot != nil {
		return nodeValue(slot)
	}
	if n, ok := m.collections[name]; ok {
		if n == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, n)
		for i := range elems {
			v, err := nodeValue(m.slots[Element(name, i)])
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = v
		}
		return cty.TupleVal(elems), nil
	}
	if child := m.childIdx[name]; child != nil {
		return child.objectValue()
	}
	return cty.NilVal, fmt.Errorf("%s has no signal or instance %q", m.Path(), name)
}

func (m *Module) objectValue() (cty.Value, error) {
	attrs := make(map[string]cty.Value)
	for _, slot := range m.slots {
		if slot.Key.Index >= 0 {
			continue
		}
		v, err := nodeValue(slot)
		if err != nil {
			return cty.NilVal, err
		}
		attrs[slot.Key.Name] = v
	}
	for name := range m.collections {
		v, err := m.Value(name)
		if err != nil {
			return cty.NilVal, err
		}
		attrs[name] = v
	}
	for _, child := range m.children {
		v, err := child.objectValue()
		if err != nil {
			return cty.NilVal, err
		}
		attrs[child.name] = v
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(attrs), nil
}

func nodeValue(slot *Slot) (cty.Value, error) {
	if slot.Node == nil {
		return cty.NilVal, fmt.Errorf("signal %s has no value node installed", slot.Key)
	}
	return cty.NumberUIntVal(slot.Node.Uint64()), nil
}

// Target implements behavior.Scope. Only scalar signals of m can be
// assigned.
func (m *Module) Target(name string) (*node.Node, error) {
	slot := m.slots[Scalar(name)]
	if slot == nil {
		return nil, fmt.Errorf("%s has no scalar signal %q", m.Path(), name)
	}
	if slot.Node == nil {
		return nil, fmt.Errorf("signal %q has no value node installed", name)
	}
	return slot.Node, nil
}
