// Package router builds the vertex-split time graph from a frozen
// catalogue and decodes shortest-path answers back into rider itineraries
// of Wait and Bus steps (§4.5). It is the component that fuses the
// transport domain onto the generic graph and dijkstra packages.
package router

import (
	"fmt"

	"github.com/routewise/transitcore/internal/catalogue"
	"github.com/routewise/transitcore/internal/dijkstra"
	"github.com/routewise/transitcore/internal/graph"
)

// Settings are the two knobs the router is built with (§4.5, §6).
type Settings struct {
	BusWaitTime int     // minutes, >= 1
	BusVelocity float64 // km/h, > 0
}

// metresPerMinute converts the configured km/h velocity into the metres-
// per-minute rate ride-edge weights are computed from.
func (s Settings) metresPerMinute() float64 {
	return s.BusVelocity * 1000 / 60
}

// ItemKind distinguishes the two itinerary step kinds an itinerary is
// built from.
type ItemKind int

const (
	// Wait is time spent at a stop before boarding a bus.
	Wait ItemKind = iota
	// Ride is time spent aboard a bus between two stops.
	Ride
)

// Item is one leg of a decoded itinerary.
type Item struct {
	Kind ItemKind

	// Stop is set on Wait items: the stop the wait happens at.
	Stop string

	// Bus, SpanCount are set on Ride items.
	Bus       string
	SpanCount int

	// Time is the leg's duration in minutes, for either kind.
	Time float64
}

// Itinerary is FindRoute's decoded answer.
type Itinerary struct {
	TotalTime float64
	Items     []Item
}

// edgeMeta is attached to every graph edge, addressed by the edge's id, so
// decoding never needs to rescan a bus's stop list (§9).
type edgeMeta struct {
	isWait bool

	// Wait-edge fields.
	waitStop string

	// Ride-edge fields: the bus name and the exact (i, j) stored-list
	// positions the edge was built from — the source of truth for span
	// count, not a recount.
	bus  string
	from int
	to   int
}

// Router holds the frozen catalogue's vertex-split graph and its shortest-
// path oracle. Built once via Build; never mutated afterward.
type Router struct {
	cat      *catalogue.Catalogue
	settings Settings

	g      *graph.DirectedWeightedGraph[float64]
	oracle *dijkstra.Oracle[float64]

	board map[string]graph.VertexID
	ride  map[string]graph.VertexID

	// vertexStop maps a ride-vertex back to its stop name. Decoding does
	// not read it: wait edges carry their stop name in edgeMeta.waitStop.
	vertexStop map[graph.VertexID]string

	meta []edgeMeta // indexed by graph.EdgeID
}

// Build constructs the router from a frozen catalogue and the router
// settings. The catalogue must not be mutated again once this is called
// (§3 invariant 4, §5).
func Build(cat *catalogue.Catalogue, settings Settings) (*Router, error) {
	if settings.BusWaitTime < 1 {
		return nil, fmt.Errorf("router: bus_wait_time must be >= 1, got %d", settings.BusWaitTime)
	}
	if settings.BusVelocity <= 0 {
		return nil, fmt.Errorf("router: bus_velocity must be > 0, got %g", settings.BusVelocity)
	}

	stopNames := cat.AllStopNamesWithBuses()
	r := &Router{
		cat:        cat,
		settings:   settings,
		board:      make(map[string]graph.VertexID, len(stopNames)),
		ride:       make(map[string]graph.VertexID, len(stopNames)),
		vertexStop: make(map[graph.VertexID]string, len(stopNames)),
	}

	r.g = graph.New[float64](2 * len(stopNames))

	for i, name := range stopNames {
		boardID := graph.VertexID(2 * i)
		rideID := graph.VertexID(2*i + 1)
		r.board[name] = boardID
		r.ride[name] = rideID
		r.vertexStop[rideID] = name

		eid := r.g.AddEdge(graph.Edge[float64]{
			From:   rideID,
			To:     boardID,
			Weight: float64(settings.BusWaitTime),
		})
		r.setMeta(eid, edgeMeta{isWait: true, waitStop: name})
	}

	for _, busName := range cat.AllBusNames() {
		busID, _ := cat.FindBus(busName)
		r.addRideEdges(cat.Bus(busID))
	}

	r.oracle = dijkstra.Build(r.g)
	return r, nil
}

func (r *Router) setMeta(id graph.EdgeID, m edgeMeta) {
	for len(r.meta) <= int(id) {
		r.meta = append(r.meta, edgeMeta{})
	}
	r.meta[id] = m
}

// addRideEdges enumerates every valid (i, j) segment pair for one bus per
// §4.5.2 and adds the corresponding ride edge.
func (r *Router) addRideEdges(bus catalogue.Bus) {
	n := len(bus.Stops)
	if n < 2 {
		return
	}

	type half struct{ lo, hi int } // inclusive positions, no pair straddles halves
	var halves []half
	if bus.IsRoundtrip {
		halves = []half{{0, n - 1}}
	} else {
		mid := (n - 1) / 2
		halves = []half{{0, mid}, {mid, n - 1}}
	}

	velocity := r.settings.metresPerMinute()

	for _, h := range halves {
		for i := h.lo; i < h.hi; i++ {
			weight := 0.0
			for j := i + 1; j <= h.hi; j++ {
				metres := r.cat.DistanceWithFallback(bus.Stops[j-1], bus.Stops[j])
				weight += float64(metres) / velocity

				fromName := r.cat.Stop(bus.Stops[i]).Name
				toName := r.cat.Stop(bus.Stops[j]).Name
				eid := r.g.AddEdge(graph.Edge[float64]{
					From:   r.board[fromName],
					To:     r.ride[toName],
					Weight: weight,
				})
				r.setMeta(eid, edgeMeta{bus: bus.Name, from: i, to: j})
			}
		}
	}
}

// FindRoute answers a minimum-total-time routing query (§4.5.3).
func (r *Router) FindRoute(fromName, toName string) (Itinerary, bool) {
	fromVertex, ok := r.board[fromName]
	if !ok {
		return Itinerary{}, false
	}
	toVertex, ok := r.board[toName]
	if !ok {
		return Itinerary{}, false
	}

	route, ok := r.oracle.BuildRoute(fromVertex, toVertex)
	if !ok {
		return Itinerary{}, false
	}
	if len(route.Edges) == 0 {
		return Itinerary{TotalTime: 0, Items: nil}, true
	}

	items := make([]Item, 0, len(route.Edges)+1)
	items = append(items, Item{Kind: Wait, Stop: fromName, Time: float64(r.settings.BusWaitTime)})

	for _, eid := range route.Edges {
		e := r.g.Edge(eid)
		m := r.meta[eid]
		if m.isWait {
			items = append(items, Item{Kind: Wait, Stop: m.waitStop, Time: e.Weight})
			continue
		}
		items = append(items, Item{
			Kind:      Ride,
			Bus:       m.bus,
			SpanCount: m.to - m.from,
			Time:      e.Weight,
		})
	}

	if items[len(items)-1].Kind == Wait {
		items = items[:len(items)-1]
	}

	return Itinerary{TotalTime: route.TotalWeight, Items: items}, true
}
