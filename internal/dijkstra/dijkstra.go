// Package dijkstra implements the shortest-path oracle: given a
// graph.DirectedWeightedGraph with non-negative weights, it precomputes,
// for every vertex as source, the shortest distance and predecessor edge
// to every other vertex, then answers build-route queries in O(L) where L
// is the answer's edge count.
package dijkstra

import (
	"container/heap"
	"fmt"

	"github.com/routewise/transitcore/internal/graph"
)

// RouteInfo is the oracle's answer to a build-route query: the total
// weight of the best path, and its edges in traversal order.
type RouteInfo[W graph.Weight] struct {
	TotalWeight W
	Edges       []graph.EdgeID
}

// Oracle holds the all-sources precomputation. Built once from a frozen
// graph; never mutated afterward.
type Oracle[W graph.Weight] struct {
	g *graph.DirectedWeightedGraph[W]

	dist      [][]W
	pred      [][]graph.EdgeID
	reachable [][]bool
}

const noPred = graph.EdgeID(-1)

// Build runs single-source Dijkstra from every vertex of g and returns an
// Oracle ready to answer BuildRoute queries. g must have no negative
// edge weights — the domain guarantees this; Build panics if it finds one,
// per §9's "enforce as a debug invariant".
func Build[W graph.Weight](g *graph.DirectedWeightedGraph[W]) *Oracle[W] {
	v := g.VertexCount()
	o := &Oracle[W]{
		g:         g,
		dist:      make([][]W, v),
		pred:      make([][]graph.EdgeID, v),
		reachable: make([][]bool, v),
	}

	for source := 0; source < v; source++ {
		dist, pred, reachable := dijkstraFrom(g, graph.VertexID(source))
		o.dist[source] = dist
		o.pred[source] = pred
		o.reachable[source] = reachable
	}

	return o
}

func dijkstraFrom[W graph.Weight](g *graph.DirectedWeightedGraph[W], source graph.VertexID) ([]W, []graph.EdgeID, []bool) {
	v := g.VertexCount()
	dist := make([]W, v)
	pred := make([]graph.EdgeID, v)
	reachable := make([]bool, v)
	finalized := make([]bool, v)
	for i := range pred {
		pred[i] = noPred
	}

	h := &vertexHeap[W]{{vertex: source, dist: 0}}
	dist[source] = 0
	reachable[source] = true

	for h.Len() > 0 {
		top := heap.Pop(h).(heapItem[W])
		cur := top.vertex
		if finalized[cur] {
			continue
		}
		finalized[cur] = true

		for _, eid := range g.IncidentEdges(cur) {
			e := g.Edge(eid)
			if e.Weight < 0 {
				panic(fmt.Sprintf("dijkstra: negative edge weight on edge %d", eid))
			}

			candidate := dist[cur] + e.Weight
			// Strict '<': a tie keeps the earlier-discovered predecessor,
			// which is what makes "first relaxed wins" deterministic (§9).
			if !reachable[e.To] || candidate < dist[e.To] {
				dist[e.To] = candidate
				pred[e.To] = eid
				reachable[e.To] = true
				heap.Push(h, heapItem[W]{vertex: e.To, dist: candidate})
			}
		}
	}

	return dist, pred, reachable
}

// BuildRoute answers a single build-route query using the precomputed
// tables. Returns ok=false if to is unreachable from from; returns a zero-
// weight, empty-edge RouteInfo when from == to.
func (o *Oracle[W]) BuildRoute(from, to graph.VertexID) (RouteInfo[W], bool) {
	if from == to {
		return RouteInfo[W]{}, true
	}
	if !o.reachable[from][to] {
		return RouteInfo[W]{}, false
	}

	var edges []graph.EdgeID
	v := to
	for v != from {
		eid := o.pred[from][v]
		edges = append(edges, eid)
		v = o.g.Edge(eid).From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return RouteInfo[W]{TotalWeight: o.dist[from][to], Edges: edges}, true
}

type heapItem[W graph.Weight] struct {
	vertex graph.VertexID
	dist   W
}

// vertexHeap is a lazy-deletion min-heap over heapItem, ordered by dist
// ascending; stale entries for a finalized vertex are skipped on pop
// rather than removed eagerly.
type vertexHeap[W graph.Weight] []heapItem[W]

func (h vertexHeap[W]) Len() int            { return len(h) }
func (h vertexHeap[W]) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h vertexHeap[W]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *vertexHeap[W]) Push(x interface{}) { *h = append(*h, x.(heapItem[W])) }
func (h *vertexHeap[W]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
