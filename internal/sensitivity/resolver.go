package sensitivity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/mtlsim/internal/behavior"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/hclexpr"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/specialistvlad/mtlsim/internal/netid"
	"github.com/specialistvlad/mtlsim/internal/node"
)

// Kind classifies a resolved reference.
type Kind int

const (
	KindNode Kind = iota
	KindCollection
	KindUnresolved
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindCollection:
		return "collection"
	default:
		return "unresolved"
	}
}

// Result is the resolution of one traversal.
type Result struct {
	Traversal string
	Kind      Kind
	Nodes     []*node.Node
	// Reason explains an unresolved result.
	Reason string
	// Static marks names that are compile-time constants, such as params.
	Static bool
}

// Report is the resolution of every load of one behaviour.
type Report struct {
	Behavior *behavior.Behavior
	Results  []Result
}

// Nodes returns the unique nodes the behaviour is sensitive to, in order of
// first appearance.
func (r *Report) Nodes() []*node.Node {
	seen := make(map[*node.Node]bool)
	var out []*node.Node
	for _, res := range r.Results {
		for _, n := range res.Nodes {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Unresolved returns the results that carry no nodes and are not static.
func (r *Report) Unresolved() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Kind == KindUnresolved && !res.Static {
			out = append(out, res)
		}
	}
	return out
}

// Resolver resolves behaviour loads against module scopes.
type Resolver struct {
	logger *slog.Logger
}

// New creates a resolver that logs through the context's logger.
func New(ctx context.Context) *Resolver {
	return &Resolver{logger: ctxlog.FromContext(ctx)}
}

// ResolveAll resolves every combinational behaviour under top, in
// hierarchy order.
func (r *Resolver) ResolveAll(top *model.Module) ([]*Report, error) {
	if !top.Installed() {
		return nil, fmt.Errorf("cannot resolve sensitivities of %s: value nodes are not installed", top.Path())
	}
	var reports []*Report
	_ = top.Walk(func(m *model.Module) error {
		for _, b := range m.Behaviors() {
			if b.Kind != behavior.Combinational {
				continue
			}
			reports = append(reports, r.Resolve(m, b))
		}
		return nil
	})
	return reports, nil
}

// Resolve resolves the loads of one behaviour owned by m.
func (r *Resolver) Resolve(m *model.Module, b *behavior.Behavior) *Report {
	report := &Report{Behavior: b}
	for _, t := range b.Loads() {
		key := hclexpr.TraversalKey(t)
		addr, _, err := hclexpr.ToAddress(t)
		var res Result
		if err != nil {
			res = Result{Kind: KindUnresolved, Reason: err.Error()}
		} else {
			res = resolve(m, addr.Path)
		}
		res.Traversal = key

		switch {
		case res.Kind != KindUnresolved:
			r.logger.Debug("Resolved sensitivity.", "behavior", b.ID, "traversal", key, "kind", res.Kind.String(), "node_count", len(res.Nodes))
		case res.Static:
			r.logger.Debug("Ignoring static reference.", "behavior", b.ID, "traversal", key, "reason", res.Reason)
		default:
			r.logger.Warn("Unresolved sensitivity; behaviour will not react to it.", "behavior", b.ID, "traversal", key, "reason", res.Reason)
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func resolve(m *model.Module, path []netid.Segment) Result {
	seg := path[0]
	rest := path[1:]

	if seg.Name == model.ParamNamespace {
		if len(rest) > 0 {
			if _, ok := m.Param(rest[0].Name); !ok {
				return Result{Kind: KindUnresolved, Reason: fmt.Sprintf("%s has no parameter %q", m.Path(), rest[0].Name)}
			}
		}
		return Result{Kind: KindUnresolved, Static: true, Reason: "module parameter"}
	}

	if slot := m.Slot(model.Scalar(seg.Name)); slot != nil {
		if seg.HasIndex() || len(rest) > 0 {
			return Result{Kind: KindUnresolved, Reason: fmt.Sprintf("scalar signal %q cannot be indexed or traversed", seg.Name)}
		}
		return Result{Kind: KindNode, Nodes: []*node.Node{slot.Node}}
	}

	if n, ok := m.Collection(seg.Name); ok {
		if len(rest) > 0 {
			return Result{Kind: KindUnresolved, Reason: fmt.Sprintf("signal array %q has no attributes", seg.Name)}
		}
		if !seg.HasIndex() {
			return Result{Kind: KindCollection, Nodes: m.Nodes(seg.Name)}
		}
		if seg.Index >= n {
			return Result{Kind: KindUnresolved, Reason: fmt.Sprintf("index %d out of range for %q (length %d)", seg.Index, seg.Name, n)}
		}
		return Result{Kind: KindNode, Nodes: []*node.Node{m.NodeAt(seg.Name, seg.Index)}}
	}

	if child := m.Child(seg.Name); child != nil {
		if seg.HasIndex() {
			return Result{Kind: KindUnresolved, Reason: fmt.Sprintf("instance %q cannot be indexed", seg.Name)}
		}
		if len(rest) == 0 {
			var nodes []*node.Node
			_ = child.Walk(func(sub *model.Module) error {
				for _, slot := range sub.Slots() {
					nodes = append(nodes, slot.Node)
				}
				return nil
			})
			return Result{Kind: KindCollection, Nodes: nodes}
		}
		return resolve(child, rest)
	}

	return Result{Kind: KindUnresolved, Reason: fmt.Sprintf("%s has no signal or instance %q", m.Path(), seg.Name)}
}
