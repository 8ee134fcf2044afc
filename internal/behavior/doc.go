/*
Package behavior holds the code attached to module instances: combinational
behaviours that re-run whenever something they read changes, and sequential
behaviours that run once per clock edge.

Every behaviour carries a Body written in HCL native syntax. The body is
what the sensitivity resolver inspects, so reads must be visible in it:

  - An assignment body has one attribute per target signal, evaluated in
    source order. Example:

    sum   = band(a + b, 255)
    carry = bit(a + b, 8)

  - A read body is a single expression listing what a Go function reads,
    e.g. `[a, b, regs]`. The function itself is the invocation target.

Assignment bodies are evaluated with go-cty against a Scope supplied by the
owning module. Values are unsigned integers; see Functions for the
bit-level helpers available inside expressions.
*/
package behavior
