package netlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/bits"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/model"
)

var (
	// ErrSliceUnsupported is returned when a net would have to be built
	// through a bit-sliced connection.
	ErrSliceUnsupported = errors.New("sliced connections are not supported")
	// ErrWidthMismatch is returned when net members disagree on width, or a
	// constant does not fit the width of the net it drives.
	ErrWidthMismatch = errors.New("width mismatch")
	// ErrConstantConflict is returned when two constants drive one net with
	// different values.
	ErrConstantConflict = errors.New("conflicting constant drivers")
)

// Net is a maximal set of endpoints that share one value.
type Net struct {
	ID      int
	Members []*model.Signal
	Width   int
	// Init is the constant initial value when Driver is set.
	Init   uint64
	Driver *model.Signal
}

// Name returns the address of the net's first member.
func (n *Net) Name() string {
	return n.Members[0].String()
}

// BuildNets partitions every non-constant endpoint of g into nets.
func BuildNets(ctx context.Context, g *Graph) ([]*Net, error) {
	logger := ctxlog.FromContext(ctx)

	visited := make(map[*model.Signal]bool, len(g.Signals))
	var nets []*Net

	for _, start := range g.Signals {
		if start.IsConst() || visited[start] {
			continue
		}

		net := &Net{ID: len(nets), Width: start.Width()}
		visited[start] = true
		stack := []*model.Signal{start}
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			net.Members = append(net.Members, s)

			for _, c := range s.Connections() {
				if c.Sliced() {
					return nil, fmt.Errorf("cannot connect %s%s and %s%s: %w", c.Src, c.SrcSlice, c.Dst, c.DstSlice, ErrSliceUnsupported)
				}
				other := c.Other(s)
				if other.IsConst() {
					if err := net.drive(other); err != nil {
						return nil, err
					}
					continue
				}
				if !visited[other] {
					visited[other] = true
					stack = append(stack, other)
				}
			}
		}

		for _, m := range net.Members {
			if m.Width() != net.Width {
				return nil, fmt.Errorf("net %s: %s is %d bits wide, %s is %d bits: %w",
					net.Name(), net.Members[0], net.Width, m, m.Width(), ErrWidthMismatch)
			}
		}
		if net.Driver != nil && !bits.Fits(net.Init, net.Width) {
			return nil, fmt.Errorf("net %s: constant %d does not fit in %d bits: %w",
				net.Name(), net.Init, net.Width, ErrWidthMismatch)
		}

		nets = append(nets, net)
	}

	logger.Debug("Built nets.", "net_count", len(nets))
	return nets, nil
}

func (n *Net) drive(c *model.Signal) error {
	if n.Driver == nil {
		n.Driver = c
		n.Init = c.Value()
		return nil
	}
	if n.Driver == c || n.Init == c.Value() {
		return nil
	}
	return fmt.Errorf("net driven by %s and %s: %w", n.Driver, c, ErrConstantConflict)
}
