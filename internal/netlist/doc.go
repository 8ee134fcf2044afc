/*
Package netlist turns an elaborated model into value nodes.

It runs the first three construction passes:

 1. Collect walks the hierarchy and gathers every endpoint and connection.
 2. BuildNets groups endpoints into nets: maximal sets of non-constant
    endpoints reachable through plain connections. Every net member must
    have the same width. Constants are not members; a constant connected to
    a net becomes that net's initial value.
 3. Install creates one *node.Node per net, writes the constant initial
    value, and rebinds every member's slot to the node. After that the
    model no longer holds Signal objects.

Sliced connections cannot be collapsed into a single node and make
BuildNets fail. Nothing is created when BuildNets fails.
*/
package netlist
