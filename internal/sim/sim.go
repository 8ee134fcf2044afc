package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/mtlsim/internal/behavior"
	"github.com/specialistvlad/mtlsim/internal/bits"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/dag"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/specialistvlad/mtlsim/internal/netid"
	"github.com/specialistvlad/mtlsim/internal/netlist"
	"github.com/specialistvlad/mtlsim/internal/node"
	"github.com/specialistvlad/mtlsim/internal/scheduler"
	"github.com/specialistvlad/mtlsim/internal/sensitivity"
)

// ErrNotElaborated is returned when a simulator is built from a model that
// has not been elaborated.
var ErrNotElaborated = errors.New("model is not elaborated")

// ResetPort is the name of the top-level input Reset drives.
const ResetPort = "reset"

// Simulator runs one installed model.
type Simulator struct {
	logger *slog.Logger
	top    *model.Module
	engine *scheduler.Engine

	nets    []*netlist.Net
	nodes   []*node.Node
	reports []*sensitivity.Report
	byID    map[string]*sensitivity.Report

	hasReset bool
	primed   bool
}

// New builds a simulator over top.
func New(ctx context.Context, top *model.Module, opts Options) (*Simulator, error) {
	logger := ctxlog.FromContext(ctx)

	if top == nil || !top.Elaborated() {
		return nil, ErrNotElaborated
	}
	if top.Installed() {
		return nil, model.ErrAlreadyInstalled
	}
	loopCheck, err := ParseLoopCheck(string(opts.LoopCheck))
	if err != nil {
		return nil, err
	}

	if err := top.Verify(); err != nil {
		return nil, fmt.Errorf("model verification failed: %w", err)
	}

	resetSig := top.Signal(ResetPort)
	hasReset := resetSig != nil && resetSig.Dir() == model.In && resetSig.Width() == 1

	graph, err := netlist.Collect(ctx, top)
	if err != nil {
		return nil, fmt.Errorf("failed to collect signals: %w", err)
	}
	nets, err := netlist.BuildNets(ctx, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to build nets: %w", err)
	}
	nodes, err := netlist.Install(ctx, top, nets)
	if err != nil {
		return nil, fmt.Errorf("failed to install value nodes: %w", err)
	}

	owners := make(map[*behavior.Behavior]*model.Module)
	var comb, seq []*behavior.Behavior
	err = top.Walk(func(m *model.Module) error {
		for _, b := range m.Behaviors() {
			if err := b.Bind(m); err != nil {
				return err
			}
			owners[b] = m
			if b.Kind == behavior.Sequential {
				seq = append(seq, b)
			} else {
				comb = append(comb, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bind behaviours: %w", err)
	}

	reports, err := sensitivity.New(ctx).ResolveAll(top)
	if err != nil {
		return nil, err
	}

	engine := scheduler.New(ctx, scheduler.Options{MaxEvals: opts.MaxEvals})
	byID := make(map[string]*sensitivity.Report, len(reports))
	for _, r := range reports {
		engine.AddCombinational(r.Behavior, r.Nodes())
		byID[r.Behavior.ID] = r
	}
	for _, b := range seq {
		engine.AddSequential(b)
	}

	if loopCheck != LoopCheckOff {
		skipped, err := checkLoops(engine, comb, owners)
		if skipped > 0 {
			logger.Debug("Loop analysis skipped Go behaviours with unknown writes.", "count", skipped)
		}
		if errors.Is(err, dag.ErrCombinationalLoop) && loopCheck == LoopCheckWarn {
			logger.Warn("Combinational loop detected; the network may never settle.", "error", err)
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("loop analysis failed: %w", err)
		}
	}

	for _, n := range nodes {
		n.Attach(engine)
	}

	logger.Debug("Simulator constructed.",
		"net_count", len(nets),
		"combinational_count", len(comb),
		"sequential_count", len(seq),
	)

	return &Simulator{
		logger:   logger,
		top:      top,
		engine:   engine,
		nets:     nets,
		nodes:    nodes,
		reports:  reports,
		byID:     byID,
		hasReset: hasReset,
	}, nil
}

func (s *Simulator) prime() error {
	if s.primed {
		return nil
	}
	s.primed = true
	return s.engine.Prime()
}

// Reset primes the network if needed and, when the top module has a 1-bit
// reset input, holds it high for two cycles.
func (s *Simulator) Reset() error {
	if err := s.prime(); err != nil {
		return fmt.Errorf("failed to prime: %w", err)
	}
	if !s.hasReset {
		return nil
	}
	rst := s.top.Node(ResetPort)
	rst.Write(1)
	if err := s.Cycles(2); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	rst.Write(0)
	return s.engine.Drain()
}

// Cycle advances one clock edge.
func (s *Simulator) Cycle() error {
	if err := s.prime(); err != nil {
		return fmt.Errorf("failed to prime: %w", err)
	}
	return s.engine.RunCycle()
}

// Cycles advances n clock edges.
func (s *Simulator) Cycles(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Cycle(); err != nil {
			return fmt.Errorf("cycle %d: %w", s.NumCycles(), err)
		}
	}
	return nil
}

// Eval settles the combinational network after external writes.
func (s *Simulator) Eval() error {
	if err := s.prime(); err != nil {
		return fmt.Errorf("failed to prime: %w", err)
	}
	return s.engine.Drain()
}

// Node returns the value node at path, e.g. "u0.regs[2]".
func (s *Simulator) Node(path string) (*node.Node, error) {
	addr, err := netid.Parse(path)
	if err != nil {
		return nil, err
	}
	return s.top.Lookup(addr)
}

// Peek returns the current value at path.
func (s *Simulator) Peek(path string) (uint64, error) {
	n, err := s.Node(path)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Poke writes v at path. Call Eval to propagate it.
func (s *Simulator) Poke(path string, v uint64) error {
	n, err := s.Node(path)
	if err != nil {
		return err
	}
	if !bits.Fits(v, n.Width()) {
		return fmt.Errorf("value %d does not fit %s (%d bits)", v, path, n.Width())
	}
	n.Write(v)
	return nil
}

// Top returns the simulated model.
func (s *Simulator) Top() *model.Module { return s.top }

// Nets returns the nets the model collapsed into, indexed by node ID.
func (s *Simulator) Nets() []*netlist.Net { return s.nets }

// Nodes returns every value node, indexed by ID.
func (s *Simulator) Nodes() []*node.Node { return s.nodes }

// Sensitivity returns the resolution report of a combinational behaviour
// by its hierarchical ID, e.g. "u0.logic".
func (s *Simulator) Sensitivity(id string) (*sensitivity.Report, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Reports returns every sensitivity report in hierarchy order.
func (s *Simulator) Reports() []*sensitivity.Report { return s.reports }

// Stats returns the scheduler counters.
func (s *Simulator) Stats() scheduler.Stats { return s.engine.Stats() }

// NumCycles returns the number of completed clock edges.
func (s *Simulator) NumCycles() uint64 { return s.engine.Stats().Cycles }
