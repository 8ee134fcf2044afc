package sim

import (
	"fmt"

	"github.com/specialistvlad/mtlsim/internal/behavior"
	"github.com/specialistvlad/mtlsim/internal/dag"
	"github.com/specialistvlad/mtlsim/internal/model"
	"github.com/specialistvlad/mtlsim/internal/scheduler"
)

// checkLoops builds the behaviour dependency graph and runs cycle detection.
// Only assignment behaviours contribute edges: the writes of a Go function
// are not visible.
func checkLoops(engine *scheduler.Engine, comb []*behavior.Behavior, owners map[*behavior.Behavior]*model.Module) (skipped int, err error) {
	g := dag.New()
	for _, b := range comb {
		g.AddNode(b.ID)
	}
	for _, b := range comb {
		if b.Native() {
			skipped++
			continue
		}
		for _, target := range b.Targets() {
			n, err := owners[b].Target(target)
			if err != nil {
				return skipped, fmt.Errorf("behaviour %s: %w", b.ID, err)
			}
			for _, sub := range engine.Subscribers(n) {
				if err := g.AddEdge(b.ID, sub.ID); err != nil {
					return skipped, err
				}
			}
		}
	}
	return skipped, g.DetectCycles()
}
