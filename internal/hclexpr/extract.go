package hclexpr

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string for an hcl.Traversal,
// suitable for use as a map key, e.g. `u0.bank[1]`.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// extract finds all unique variable traversals and function calls in exprs.
// Both slices are sorted for deterministic output.
func extract(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		for _, traversal := range expr.Variables() {
			traversals[TraversalKey(traversal)] = traversal
		}
		if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
			hclsyntax.VisitAll(syntaxExpr, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					functions[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}

	keys := make([]string, 0, len(traversals))
	for k := range traversals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	refs := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, traversals[k])
	}

	funcs := make([]string, 0, len(functions))
	for f := range functions {
		funcs = append(funcs, f)
	}
	sort.Strings(funcs)

	return refs, funcs
}

// FindUniqueBlock returns the single block of the given type, or nil when
// there is none. More than one is an error.
func FindUniqueBlock(blocks hcl.Blocks, blockType string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != blockType {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + blockType + "\" block",
				Detail:   "Only one \"" + blockType + "\" block is allowed.",
				Subject:  &block.DefRange,
			})
		}
		found = block
	}
	return found, diags
}
