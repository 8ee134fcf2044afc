package behavior

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/mtlsim/internal/hclexpr"
)

// Assignment is a single `target = expression` line of an assignment body.
type Assignment struct {
	Target string
	Expr   hcl.Expression
	Range  hcl.Range
}

// Body is the parsed source of a behaviour.
type Body struct {
	filename    string
	src         string
	assignments []Assignment
	refs        *hclexpr.Container
}

// ParseAssignments parses src as a list of attributes. Blocks are rejected.
// The filename is only used in diagnostics.
func ParseAssignments(filename, src string) (*Body, error) {
	file, diags := hclsyntax.ParseConfig([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse behaviour body: %w", diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("behaviour body may only contain assignments: %w", diags)
	}
	return NewBody(filename, src, attrs), nil
}

// NewBody builds an assignment body from already parsed attributes, as the
// model loader does for `combinational` and `sequential` blocks.
func NewBody(filename, src string, attrs hcl.Attributes) *Body {
	b := &Body{filename: filename, src: src, refs: hclexpr.NewContainer()}
	for name, attr := range attrs {
		b.assignments = append(b.assignments, Assignment{Target: name, Expr: attr.Expr, Range: attr.Range})
	}
	sort.Slice(b.assignments, func(i, j int) bool {
		return b.assignments[i].Range.Start.Byte < b.assignments[j].Range.Start.Byte
	})
	for _, a := range b.assignments {
		b.refs.Add(a.Expr)
	}
	return b
}

// ParseReads parses src as a single expression whose variables are the
// names a Go behaviour reads. An empty src yields a body with no reads.
func ParseReads(filename, src string) (*Body, error) {
	b := &Body{filename: filename, src: src, refs: hclexpr.NewContainer()}
	if src == "" {
		return b, nil
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse read list: %w", diags)
	}
	b.refs.Add(expr)
	return b, nil
}

// Source returns the text the body was parsed from.
func (b *Body) Source() string { return b.src }

// Assignments returns the body's assignments in source order. It is empty
// for read bodies.
func (b *Body) Assignments() []Assignment { return b.assignments }

// Loads returns every variable traversal the body reads, sorted by key.
func (b *Body) Loads() []hcl.Traversal { return b.refs.References() }

// Stores returns the assignment targets in source order.
func (b *Body) Stores() []string {
	out := make([]string, 0, len(b.assignments))
	for _, a := range b.assignments {
		out = append(out, a.Target)
	}
	return out
}

// Functions returns the names of all functions the body calls.
func (b *Body) Functions() []string { return b.refs.CalledFunctions() }

// roots returns the unique root names of all loads.
func (b *Body) roots() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range b.Loads() {
		name := t.RootName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
