package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("a")
	g.AddNode("b")
	assert.Len(t, g.nodes, 2)
	assert.Len(t, g.order, 2)
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")

	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "b"), "duplicate edges are ignored")
	deps, err := g.Dependents("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, deps)

	assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
	assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")
	_, err = g.Dependents("dne")
	assert.Error(t, err)
}

func TestDetectCycles(t *testing.T) {
	testCases := []struct {
		name      string
		nodes     []string
		edges     [][2]string
		expectErr string
	}{
		{name: "empty graph"},
		{name: "no edges", nodes: []string{"a", "b"}},
		{
			name:  "chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
		},
		{
			name:  "diamond",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
		},
		{
			name:      "two behaviour loop",
			nodes:     []string{"f", "g"},
			edges:     [][2]string{{"f", "g"}, {"g", "f"}},
			expectErr: "f -> g -> f",
		},
		{
			name:      "self loop",
			nodes:     []string{"a"},
			edges:     [][2]string{{"a", "a"}},
			expectErr: "a -> a",
		},
		{
			name:      "loop behind a tail",
			nodes:     []string{"a", "b", "c", "d"},
			edges:     [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "b"}},
			expectErr: "b -> c -> d -> b",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			for _, n := range tc.nodes {
				g.AddNode(n)
			}
			for _, e := range tc.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}
			err := g.DetectCycles()
			if tc.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrCombinationalLoop)
			assert.ErrorContains(t, err, tc.expectErr)
		})
	}
}
