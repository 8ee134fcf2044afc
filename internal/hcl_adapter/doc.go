// Package hcl_adapter loads hardware model descriptions written in HCL and
// elaborates them into a model.Module tree.
//
// A description is a set of `module` blocks spread over any number of .hcl
// files. Loading only parses and decodes the blocks into a Library; no
// expression is evaluated until Elaborate instantiates a named top module.
// Elaboration evaluates widths, counts and parameter overrides with `param`
// in scope, resolves `connect` endpoints as static traversals against the
// module under construction, and attaches `combinational` and `sequential`
// blocks as assignment behaviours.
//
// Behaviour bodies are not evaluated here. They are handed to the behavior
// package unchanged and run by the simulator.
package hcl_adapter
