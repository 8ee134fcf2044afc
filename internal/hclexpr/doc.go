/*
Package hclexpr extracts references from HCL expressions without evaluating
them.

Behaviour bodies are stored as HCL syntax. Before a simulation can run, the
sensitivity resolver needs to know which names a body reads, and the
function library needs to know which functions a body calls. Both answers
come from the syntax tree alone: variable traversals via
hcl.Expression.Variables, function calls by walking hclsyntax nodes.

Traversals are converted to netid addresses when every step is a name or a
literal numeric index. Anything else (a computed index, a splat) keeps the
traversal root only, which the resolver treats as a whole-collection read.
*/
package hclexpr
