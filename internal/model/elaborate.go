package model

import (
	"errors"
	"fmt"
)

// Walk calls fn for m and every descendant, depth first in declaration
// order. It stops at the first error.
func (m *Module) Walk(fn func(*Module) error) error {
	if err := fn(m); err != nil {
		return err
	}
	for _, child := range m.children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) root() *Module {
	r := m
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Elaborate finalises a top module: it reports every declaration error in
// the tree, checks that connections stay inside the tree, and qualifies
// behaviour names. Only the top module can be elaborated.
func (m *Module) Elaborate() error {
	if m.parent != nil {
		return fmt.Errorf("%s: only the top module can be elaborated: %w", m.Path(), ErrInvalidDeclaration)
	}

	var errs []error
	_ = m.Walk(func(mod *Module) error {
		errs = append(errs, mod.errs...)
		for _, c := range mod.conns {
			if c.Src.owner.root() != m || c.Dst.owner.root() != m {
				errs = append(errs, fmt.Errorf("%s: %s leaves the elaborated hierarchy: %w", mod.Path(), c, ErrInvalidConnection))
			}
		}
		prefix := mod.Address().String()
		for _, b := range mod.behaviors {
			b.ID = b.Name
			if prefix != "" {
				b.ID = prefix + "." + b.Name
			}
		}
		return nil
	})
	if err := errors.Join(errs...); err != nil {
		return err
	}
	m.elaborated = true
	return nil
}

// Elaborated reports whether Elaborate succeeded on m.
func (m *Module) Elaborated() bool { return m.elaborated }

// Installed reports whether value nodes have been installed into m.
func (m *Module) Installed() bool { return m.installed }

// Verify runs every registered verify hook in the tree.
func (m *Module) Verify() error {
	var errs []error
	_ = m.Walk(func(mod *Module) error {
		for _, fn := range mod.verifiers {
			if err := fn(mod); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", mod.Path(), err))
			}
		}
		return nil
	})
	return errors.Join(errs...)
}

// MarkInstalled records that value nodes now back every slot and drops
// the per-endpoint Signal objects and connection lists from the tree.
func (m *Module) MarkInstalled() error {
	if m.installed {
		return ErrAlreadyInstalled
	}
	_ = m.Walk(func(mod *Module) error {
		for _, s := range mod.signals {
			s.conns = nil
		}
		mod.signals = nil
		mod.consts = nil
		mod.conns = nil
		for _, slot := range mod.slots {
			slot.Signal = nil
		}
		mod.installed = true
		return nil
	})
	return nil
}
