// Package catalogue owns the stop/bus/distance data model described in the
// core's data model section: stops, buses and the interstop road-distance
// index, plus the derived per-bus statistics the stat and map query paths
// consume.
package catalogue

import (
	"fmt"
	"sort"

	"github.com/routewise/transitcore/internal/geo"
)

// StopID is a stable handle into the catalogue's stop slice. It remains
// valid for the catalogue's lifetime because stops are only ever appended.
type StopID int

// BusID is the bus-side analogue of StopID.
type BusID int

// Stop is a uniquely-named point with geographic coordinates.
type Stop struct {
	Name        string
	Coordinates geo.Coordinates
	buses       map[string]struct{} // names of buses that visit this stop
}

// Bus is a named, ordered visit sequence plus the roundtrip flag that
// decides how the router interprets the stored list (see §4.5.2).
type Bus struct {
	Name        string
	Stops       []StopID // already in stored-list form: closed cycle, or palindrome
	IsRoundtrip bool

	statsComputed bool
	stats         BusStatistics
}

// BusStatistics are the derived, per-bus numbers fed to the bus stat query
// and to the non-core map/rendering consumers.
type BusStatistics struct {
	StopsNum         int
	UniqStopsNum     int
	GeographicLength float64
	RoadLength       int
	Curvature        float64
}

// Catalogue is the append-only store of stops, buses and interstop
// distances. It is mutated only during the ingestion phase; once a router
// is built from it, further mutation invalidates that router (§5).
type Catalogue struct {
	stops     []Stop
	stopIndex map[string]StopID

	buses     []Bus
	busIndex  map[string]BusID

	distances map[distanceKey]int
}

type distanceKey struct {
	from StopID
	to   StopID
}

// New returns an empty catalogue ready for ingestion.
func New() *Catalogue {
	return &Catalogue{
		stopIndex: make(map[string]StopID),
		busIndex:  make(map[string]BusID),
		distances: make(map[distanceKey]int),
	}
}

// AddStop inserts a stop. Duplicate names are caller-undefined; the
// catalogue's contract is that each name appears at most once on ingestion,
// so a duplicate simply shadows the earlier entry in the name index while
// the earlier Stop value and its handle remain allocated (and unreachable
// by name).
func (c *Catalogue) AddStop(name string, lat, lng float64) StopID {
	id := StopID(len(c.stops))
	c.stops = append(c.stops, Stop{
		Name:        name,
		Coordinates: geo.Coordinates{Lat: lat, Lng: lng},
		buses:       make(map[string]struct{}),
	})
	c.stopIndex[name] = id
	return id
}

// AddDistance records a one-way road distance from fromName to toName. If
// either name is unknown, the call is a silent no-op (IgnoredDistance, §7).
// A later call for the same ordered pair overwrites an earlier one.
func (c *Catalogue) AddDistance(fromName, toName string, metres int) {
	from, ok := c.stopIndex[fromName]
	if !ok {
		return
	}
	to, ok := c.stopIndex[toName]
	if !ok {
		return
	}
	c.distances[distanceKey{from: from, to: to}] = metres
}

// AddBus inserts a bus. stopNames must already be known to the catalogue;
// behaviour when they are not is caller-undefined (§4.2) — the ingestion
// contract places stop definitions before bus definitions. stopNames is
// given in stored-list form already (the caller — D1/D3/D4 — is
// responsible for building the palindrome for non-roundtrip buses per
// §3's Bus definition).
func (c *Catalogue) AddBus(name string, stopNames []string, isRoundtrip bool) BusID {
	stops := make([]StopID, len(stopNames))
	for i, sn := range stopNames {
		id, ok := c.stopIndex[sn]
		if !ok {
			// Caller-undefined per §4.2; we still record a sentinel so the
			// bus doesn't silently reference a bogus stop 0.
			id = -1
		}
		stops[i] = id
		if ok {
			c.stops[id].buses[name] = struct{}{}
		}
	}

	id := BusID(len(c.buses))
	c.buses = append(c.buses, Bus{
		Name:        name,
		Stops:       stops,
		IsRoundtrip: isRoundtrip,
	})
	c.busIndex[name] = id
	return id
}

// FindStop looks up a stop by name in O(1).
func (c *Catalogue) FindStop(name string) (StopID, bool) {
	id, ok := c.stopIndex[name]
	return id, ok
}

// FindBus looks up a bus by name in O(1).
func (c *Catalogue) FindBus(name string) (BusID, bool) {
	id, ok := c.busIndex[name]
	return id, ok
}

// Stop returns the stop value for a handle obtained from FindStop or
// AddStop. It panics on an out-of-range id, which is a ProgrammerError
// (§7): a valid handle never goes out of range during the catalogue's
// lifetime.
func (c *Catalogue) Stop(id StopID) Stop {
	return c.stops[id]
}

// Bus returns the bus value for a handle obtained from FindBus or AddBus.
func (c *Catalogue) Bus(id BusID) Bus {
	return c.buses[id]
}

// Distance returns the recorded directed distance from `from` to `to`, or
// 0 if none was recorded (§4.2's `distance` contract).
func (c *Catalogue) Distance(from, to StopID) int {
	return c.distances[distanceKey{from: from, to: to}]
}

// DistanceWithFallback implements the road_length accumulation rule: use
// dist(a,b) if defined, else dist(b,a), else 0. "Defined" means present in
// the map, zero-metre distances included — a recorded zero is still a
// recorded value, so the fallback only triggers on a missing key. The
// router's ride-edge weights use the same rule (§4.5.1).
func (c *Catalogue) DistanceWithFallback(a, b StopID) int {
	if v, ok := c.distances[distanceKey{from: a, to: b}]; ok {
		return v
	}
	if v, ok := c.distances[distanceKey{from: b, to: a}]; ok {
		return v
	}
	return 0
}

// BusStatistics returns the derived statistics for a bus, computing and
// memoising them on first call (§9: lazy-but-memoised, not mutated through
// a handle shared with callers — BusStatistics returns a copy).
func (c *Catalogue) BusStatistics(name string) (BusStatistics, bool) {
	id, ok := c.busIndex[name]
	if !ok {
		return BusStatistics{}, false
	}

	bus := &c.buses[id]
	if bus.statsComputed {
		return bus.stats, true
	}

	stats := BusStatistics{StopsNum: len(bus.Stops)}

	uniq := make(map[StopID]struct{}, len(bus.Stops))
	for _, sid := range bus.Stops {
		uniq[sid] = struct{}{}
	}
	stats.UniqStopsNum = len(uniq)

	for i := 0; i+1 < len(bus.Stops); i++ {
		a, b := bus.Stops[i], bus.Stops[i+1]
		stats.GeographicLength += geo.GreatCircle(c.stops[a].Coordinates, c.stops[b].Coordinates)
		stats.RoadLength += c.DistanceWithFallback(a, b)
	}

	if stats.GeographicLength != 0 {
		stats.Curvature = float64(stats.RoadLength) / stats.GeographicLength
	}

	bus.stats = stats
	bus.statsComputed = true
	return stats, true
}

// StopListing returns whether the stop is known and, if so, the sorted
// list of bus names that visit it. A known stop with no buses returns
// (true, an empty non-nil slice) — callers distinguish that from
// (false, nil) for an unknown stop by the bool (§4.2, §8 scenario S5).
func (c *Catalogue) StopListing(name string) (found bool, buses []string) {
	id, ok := c.stopIndex[name]
	if !ok {
		return false, nil
	}

	names := make([]string, 0, len(c.stops[id].buses))
	for busName := range c.stops[id].buses {
		names = append(names, busName)
	}
	sort.Strings(names)
	return true, names
}

// AllStopNamesWithBuses returns, in lexicographic order, the names of every
// stop visited by at least one bus. Used by the router to allocate vertex
// ids and by the renderer to draw stop markers.
func (c *Catalogue) AllStopNamesWithBuses() []string {
	var names []string
	for _, s := range c.stops {
		if len(s.buses) > 0 {
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)
	return names
}

// AllBusNames returns every bus name in lexicographic order.
func (c *Catalogue) AllBusNames() []string {
	names := make([]string, len(c.buses))
	for i, b := range c.buses {
		names[i] = b.Name
	}
	sort.Strings(names)
	return names
}

// StopCount and BusCount are small introspection helpers reporting how
// many stops and buses have been added, stops without buses included.
func (c *Catalogue) StopCount() int { return len(c.stops) }
func (c *Catalogue) BusCount() int  { return len(c.buses) }

// String is a debug-only human summary, handy when wiring up a new
// ingestion source.
func (c *Catalogue) String() string {
	return fmt.Sprintf("catalogue{stops=%d, buses=%d, distances=%d}", len(c.stops), len(c.buses), len(c.distances))
}
