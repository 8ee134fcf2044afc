/*
Package model describes an elaborated hardware hierarchy: module instances
with ports, wires, constants, connections between them, behaviours, and
parameters.

A model is built either in Go, through the declaration methods on Module,
or by the HCL loader in internal/hcl_adapter. Either way the result is a
tree of *Module values rooted at a top module that has been elaborated.

# Slots

Every port and wire is stored in its owning module's slot table, keyed by
SlotKey{Name, Index}. Index is -1 for scalar signals; elements of a port or
wire array use their position. Before installation a slot references its
*Signal. Installation (internal/netlist) replaces the signal with the
*node.Node shared by every member of the signal's net, after which the
Signal objects and connection lists are dropped. Behaviours and the harness
only ever see nodes.

# Scope

Module implements behavior.Scope. Assignment bodies read scalar signals as
numbers, arrays as tuples, submodules as objects, and parameters through
the `param` namespace.
*/
package model
