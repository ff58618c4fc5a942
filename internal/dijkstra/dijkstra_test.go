package dijkstra

import (
	"testing"

	"github.com/routewise/transitcore/internal/graph"
	"github.com/stretchr/testify/assert"
)

func TestBuildRouteIdentity(t *testing.T) {
	g := graph.New[float64](3)
	o := Build(g)

	route, ok := o.BuildRoute(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 0.0, route.TotalWeight)
	assert.Empty(t, route.Edges)
}

func TestBuildRouteUnreachable(t *testing.T) {
	g := graph.New[float64](2)
	o := Build(g)

	_, ok := o.BuildRoute(0, 1)
	assert.False(t, ok)
}

func TestBuildRouteShortestPath(t *testing.T) {
	g := graph.New[float64](4)
	// 0 -> 1 -> 3 costs 2, 0 -> 2 -> 3 costs 10: the first must win.
	e01 := g.AddEdge(graph.Edge[float64]{From: 0, To: 1, Weight: 1})
	e13 := g.AddEdge(graph.Edge[float64]{From: 1, To: 3, Weight: 1})
	g.AddEdge(graph.Edge[float64]{From: 0, To: 2, Weight: 5})
	g.AddEdge(graph.Edge[float64]{From: 2, To: 3, Weight: 5})

	o := Build(g)
	route, ok := o.BuildRoute(0, 3)
	assert.True(t, ok)
	assert.Equal(t, 2.0, route.TotalWeight)
	assert.Equal(t, []graph.EdgeID{e01, e13}, route.Edges)
}

func TestBuildRouteTieBreakingPrefersFirstRelaxed(t *testing.T) {
	g := graph.New[float64](3)
	// Two equal-weight paths from 0 to 2: a two-hop one via vertex 1, and a
	// direct edge. The direct edge is relaxed while vertex 0 itself is
	// finalized, strictly before the two-hop path can be (which requires
	// vertex 1 to finalize first) — so on a tie the direct edge must win.
	g.AddEdge(graph.Edge[float64]{From: 0, To: 1, Weight: 1})
	g.AddEdge(graph.Edge[float64]{From: 1, To: 2, Weight: 1})
	eDirect := g.AddEdge(graph.Edge[float64]{From: 0, To: 2, Weight: 2})

	o := Build(g)
	route, ok := o.BuildRoute(0, 2)
	assert.True(t, ok)
	assert.Equal(t, 2.0, route.TotalWeight)
	assert.Equal(t, []graph.EdgeID{eDirect}, route.Edges)
}
