package netlist

import (
	"context"
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/specialistvlad/mtlsim/internal/node"
)

// Install creates one value node per net and rebinds every member's slot
// to it. Constant initial values are written before any notifier exists.
// The returned slice is indexed by Net.ID.
func Install(ctx context.Context, top *model.Module, nets []*Net) ([]*node.Node, error) {
	if top.Installed() {
		return nil, model.ErrAlreadyInstalled
	}

	nodes := make([]*node.Node, len(nets))
	for i, net := range nets {
		n, err := node.New(net.ID, net.Name(), net.Width)
		if err != nil {
			return nil, fmt.Errorf("failed to create value node: %w", err)
		}
		if net.Driver != nil {
			n.Init(net.Init)
		}
		for _, m := range net.Members {
			if err := m.Owner().Bind(m.Key(), n); err != nil {
				return nil, fmt.Errorf("failed to install %s: %w", n.Name(), err)
			}
		}
		nodes[i] = n
	}

	if err := top.MarkInstalled(); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Installed value nodes.", "net_count", len(nodes))
	return nodes, nil
}
