package netlist

import (
	"context"
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/model"
)

// Graph is the flat view of an elaborated hierarchy.
type Graph struct {
	// Signals holds ports, wires, and constants in collection order.
	Signals     []*model.Signal
	Connections []*model.Connection
}

// Collect walks top depth first: each module's ports and wires, then its
// constants, then its submodules in declaration order.
func Collect(ctx context.Context, top *model.Module) (*Graph, error) {
	if top.Installed() {
		return nil, model.ErrAlreadyInstalled
	}
	if !top.Elaborated() {
		return nil, fmt.Errorf("cannot collect signals of %s: model is not elaborated", top.Path())
	}

	g := &Graph{}
	_ = top.Walk(func(m *model.Module) error {
		g.Signals = append(g.Signals, m.Signals()...)
		g.Signals = append(g.Signals, m.Constants()...)
		g.Connections = append(g.Connections, m.Connections()...)
		return nil
	})

	ctxlog.FromContext(ctx).Debug("Collected signal graph.", "signal_count", len(g.Signals), "connection_count", len(g.Connections))
	return g, nil
}
