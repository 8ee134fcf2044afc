/*
Package netid provides structured hierarchical addresses for signals and
submodules inside an elaborated model, e.g. `u0.regs[3]`.

An address is a dot-separated sequence of segments. Each segment names a
port, wire, or submodule, optionally followed by a collection index.
Formatting and parsing live here so the harness, the loader, and log
output agree on one spelling.
*/
package netid
