package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/mtlsim/internal/behavior"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/node"
)

// ErrNotSettled is returned when a drain hits its evaluation limit before
// the queue empties.
var ErrNotSettled = errors.New("combinational network did not settle")

// Stats are the engine's running counters.
type Stats struct {
	// Evals counts combinational invocations.
	Evals uint64
	// SeqEvals counts sequential invocations.
	SeqEvals uint64
	// Notifies counts value changes reported by nodes.
	Notifies uint64
	// Cycles counts completed RunCycle calls.
	Cycles uint64
	// LastCycleEvals is the number of combinational invocations in the most
	// recent cycle.
	LastCycleEvals uint64
}

// Options configure an Engine.
type Options struct {
	// MaxEvals bounds every Drain. Zero means unbounded.
	MaxEvals int
}

// Engine is the event-driven scheduler.
type Engine struct {
	logger *slog.Logger
	opts   Options

	comb []*behavior.Behavior
	seq  []*behavior.Behavior
	subs map[*node.Node][]*behavior.Behavior

	queue   []*behavior.Behavior
	head    int
	pending map[*behavior.Behavior]bool

	staged []*node.Node
	stats  Stats
}

// New creates an empty engine.
func New(ctx context.Context, opts Options) *Engine {
	return &Engine{
		logger:  ctxlog.FromContext(ctx),
		opts:    opts,
		subs:    make(map[*node.Node][]*behavior.Behavior),
		pending: make(map[*behavior.Behavior]bool),
	}
}

// AddCombinational registers b and subscribes it to every node in nodes.
// Subscriptions keep registration order and ignore duplicates.
func (e *Engine) AddCombinational(b *behavior.Behavior, nodes []*node.Node) {
	e.comb = append(e.comb, b)
	for _, n := range nodes {
		if n == nil || contains(e.subs[n], b) {
			continue
		}
		e.subs[n] = append(e.subs[n], b)
	}
}

// AddSequential registers b to run once per cycle.
func (e *Engine) AddSequential(b *behavior.Behavior) {
	e.seq = append(e.seq, b)
}

func contains(list []*behavior.Behavior, b *behavior.Behavior) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

// Subscribers returns the behaviours sensitive to n, in registration order.
func (e *Engine) Subscribers(n *node.Node) []*behavior.Behavior {
	return e.subs[n]
}

// Notify implements node.Notifier.
func (e *Engine) Notify(n *node.Node) {
	e.stats.Notifies++
	for _, b := range e.subs[n] {
		e.enqueue(b)
	}
}

// Stage implements node.Notifier.
func (e *Engine) Stage(n *node.Node) {
	e.staged = append(e.staged, n)
}

func (e *Engine) enqueue(b *behavior.Behavior) {
	if e.pending[b] {
		return
	}
	e.pending[b] = true
	e.queue = append(e.queue, b)
}

// Pending returns the number of queued behaviours.
func (e *Engine) Pending() int {
	return len(e.queue) - e.head
}

// Drain runs queued behaviours until the queue is empty, or until the
// configured evaluation limit is reached.
func (e *Engine) Drain() error {
	return e.DrainLimit(e.opts.MaxEvals)
}

// DrainLimit is Drain with an explicit limit. A limit of zero or less is
// unbounded.
func (e *Engine) DrainLimit(limit int) error {
	evals := 0
	for e.head < len(e.queue) {
		if limit > 0 && evals >= limit {
			return fmt.Errorf("stopped after %d evaluations with %d pending: %w", evals, e.Pending(), ErrNotSettled)
		}
		b := e.queue[e.head]
		e.queue[e.head] = nil
		e.head++
		delete(e.pending, b)

		evals++
		e.stats.Evals++
		if err := b.Invoke(); err != nil {
			return fmt.Errorf("behaviour %s failed: %w", b.ID, err)
		}
	}
	e.queue = e.queue[:0]
	e.head = 0
	return nil
}

// RunCycle simulates one clock edge.
func (e *Engine) RunCycle() error {
	before := e.stats.Evals
	for _, b := range e.seq {
		e.stats.SeqEvals++
		if err := b.Invoke(); err != nil {
			e.discardStaged()
			return fmt.Errorf("behaviour %s failed: %w", b.ID, err)
		}
	}

	staged := e.staged
	e.staged = nil
	for _, n := range staged {
		n.Commit()
	}

	if err := e.Drain(); err != nil {
		return err
	}
	e.stats.Cycles++
	e.stats.LastCycleEvals = e.stats.Evals - before
	return nil
}

// discardStaged drops the next-state values of a cycle that did not finish.
func (e *Engine) discardStaged() {
	for _, n := range e.staged {
		n.Discard()
	}
	e.staged = nil
}

// Prime enqueues every combinational behaviour once and drains.
func (e *Engine) Prime() error {
	for _, b := range e.comb {
		e.enqueue(b)
	}
	e.logger.Debug("Priming combinational network.", "behavior_count", len(e.comb))
	return e.Drain()
}

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() Stats {
	return e.stats
}
