// Package scheduler keeps the signal network consistent after every
// stimulus change or clock edge.
//
// # How It Works
//
// The Engine holds a subscriber index from value nodes to the combinational
// behaviours sensitive to them, and a FIFO queue of pending behaviours with
// membership tracking. Every node reports value changes to the engine
// (Engine implements node.Notifier), which appends each subscriber that is
// not already pending to the back of the queue.
//
// Drain pops and invokes behaviours until the queue is empty. A behaviour
// that writes a node re-enqueues that node's subscribers, including ones
// already run in the same pass, so Drain stops only at a fixed point.
//
// RunCycle models one clock edge:
//  1. every sequential behaviour runs exactly once, in registration order;
//  2. next-state values staged with node.SetNext are committed in staging
//     order, which notifies subscribers like any other write;
//  3. the queue is drained.
//
// Prime enqueues every combinational behaviour once and drains, bringing a
// freshly built network to a consistent state.
//
// # Termination
//
// A network with a combinational loop that never settles makes Drain run
// forever. An engine configured with a limit stops after that many
// evaluations with ErrNotSettled, leaving the remaining queue in place.
//
// # Thread-Safety
//
// The engine is single-threaded. Callers serialise access.
package scheduler
