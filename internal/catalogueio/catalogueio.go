// Package catalogueio is the JSON boundary: it decodes a batch of base and
// stat requests into calls against catalogue.Catalogue and router.Router,
// and encodes their answers back into the wire shapes from SPEC_FULL.md §6.
// It mirrors the original's json_reader/stat_reader split, collapsed into
// one package the way the teacher keeps its request/response shaping close
// to the HTTP handlers in internal/api.
package catalogueio

import (
	"encoding/json"
	"fmt"

	"github.com/routewise/transitcore/internal/catalogue"
	"github.com/routewise/transitcore/internal/router"
)

// BaseRequest is one element of the "base_requests" array: either a Stop
// or a Bus definition.
type BaseRequest struct {
	Type string `json:"type"`

	// Stop fields.
	Name           string             `json:"name"`
	Latitude       float64            `json:"latitude"`
	Longitude      float64            `json:"longitude"`
	RoadDistances  map[string]int     `json:"road_distances,omitempty"`

	// Bus fields.
	Stops       []string `json:"stops,omitempty"`
	IsRoundtrip bool     `json:"is_roundtrip,omitempty"`
}

// RouterSettings is the "router_settings" object.
type RouterSettings struct {
	BusWaitTime int     `json:"bus_wait_time"`
	BusVelocity float64 `json:"bus_velocity"`
}

// StatRequest is one element of the "stat_requests" array.
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Batch is the full request document.
type Batch struct {
	BaseRequests   []BaseRequest  `json:"base_requests"`
	RouterSettings RouterSettings `json:"router_settings"`
	StatRequests   []StatRequest  `json:"stat_requests"`
}

// ParseBatch decodes a JSON document into a Batch.
func ParseBatch(data []byte) (Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return Batch{}, fmt.Errorf("catalogueio: decode batch: %w", err)
	}
	return b, nil
}

// BuildCatalogue ingests a Batch's base_requests into a fresh catalogue,
// respecting the "stops before buses" ordering invariant (§4.2) regardless
// of the order base_requests lists them in.
func BuildCatalogue(b Batch) *catalogue.Catalogue {
	c := catalogue.New()

	for _, r := range b.BaseRequests {
		if r.Type == "Stop" {
			c.AddStop(r.Name, r.Latitude, r.Longitude)
		}
	}
	for _, r := range b.BaseRequests {
		if r.Type == "Stop" {
			for toName, metres := range r.RoadDistances {
				c.AddDistance(r.Name, toName, metres)
			}
		}
	}
	for _, r := range b.BaseRequests {
		if r.Type == "Bus" {
			c.AddBus(r.Name, storedStopList(r.Stops, r.IsRoundtrip), r.IsRoundtrip)
		}
	}

	return c
}

// storedStopList turns a base_request's forward stop list into the
// catalogue's stored-list form: unchanged for a roundtrip bus, the
// palindrome [s1..sn, sn-1..s1] for a non-cyclic one (§3's Bus definition).
func storedStopList(forward []string, isRoundtrip bool) []string {
	if isRoundtrip || len(forward) == 0 {
		return forward
	}
	stored := make([]string, 0, 2*len(forward)-1)
	stored = append(stored, forward...)
	for i := len(forward) - 2; i >= 0; i-- {
		stored = append(stored, forward[i])
	}
	return stored
}

// busStatsResponse, stopStatsResponse, routeResponse and mapResponse are the
// four success shapes a stat_request can produce; errorResponse is the shared
// not-found shape. Each is a plain struct marshalled by encoding/json through
// its field tags, so each object carries exactly the fields its type
// specifies; AnswerAll keeps them in request order.
type busStatsResponse struct {
	RequestID    int     `json:"request_id"`
	Curvature    float64 `json:"curvature"`
	RoadLength   int     `json:"road_route_length"`
	StopsNum     int     `json:"stop_count"`
	UniqStopsNum int     `json:"unique_stop_count"`
}

type stopStatsResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

type waitItemResponse struct {
	Type string  `json:"type"`
	Stop string  `json:"stop_name"`
	Time float64 `json:"time"`
}

type busItemResponse struct {
	Type      string  `json:"type"`
	Bus       string  `json:"bus"`
	SpanCount int     `json:"span_count"`
	Time      float64 `json:"time"`
}

type routeResponse struct {
	RequestID int           `json:"request_id"`
	TotalTime float64       `json:"total_time"`
	Items     []interface{} `json:"items"`
}

type mapResponse struct {
	RequestID int    `json:"request_id"`
	Map       string `json:"map"`
}

type errorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

// Answer resolves one stat_request into its JSON-marshalable response
// object, using the given catalogue, router and renderer callback. The
// router and the callback may be nil: a nil router answers Route requests
// with not found, and a nil callback does the same for Map requests.
func Answer(c *catalogue.Catalogue, r *router.Router, renderMap func() string, req StatRequest) interface{} {
	switch req.Type {
	case "Bus":
		stats, ok := c.BusStatistics(req.Name)
		if !ok {
			return errorResponse{RequestID: req.ID, ErrorMessage: "not found"}
		}
		return busStatsResponse{
			RequestID:    req.ID,
			Curvature:    stats.Curvature,
			RoadLength:   stats.RoadLength,
			StopsNum:     stats.StopsNum,
			UniqStopsNum: stats.UniqStopsNum,
		}

	case "Stop":
		found, buses := c.StopListing(req.Name)
		if !found {
			return errorResponse{RequestID: req.ID, ErrorMessage: "not found"}
		}
		if buses == nil {
			buses = []string{}
		}
		return stopStatsResponse{RequestID: req.ID, Buses: buses}

	case "Route":
		if r == nil {
			return errorResponse{RequestID: req.ID, ErrorMessage: "not found"}
		}
		it, ok := r.FindRoute(req.From, req.To)
		if !ok {
			return errorResponse{RequestID: req.ID, ErrorMessage: "not found"}
		}
		items := make([]interface{}, 0, len(it.Items))
		for _, item := range it.Items {
			if item.Kind == router.Wait {
				items = append(items, waitItemResponse{Type: "Wait", Stop: item.Stop, Time: item.Time})
			} else {
				items = append(items, busItemResponse{Type: "Bus", Bus: item.Bus, SpanCount: item.SpanCount, Time: item.Time})
			}
		}
		return routeResponse{RequestID: req.ID, TotalTime: it.TotalTime, Items: items}

	case "Map":
		if renderMap == nil {
			return errorResponse{RequestID: req.ID, ErrorMessage: "not found"}
		}
		return mapResponse{RequestID: req.ID, Map: renderMap()}

	default:
		return errorResponse{RequestID: req.ID, ErrorMessage: "not found"}
	}
}

// AnswerAll resolves every stat_request in order and marshals the whole
// array in one call, matching the original's single JSON array response.
func AnswerAll(c *catalogue.Catalogue, r *router.Router, renderMap func() string, reqs []StatRequest) ([]byte, error) {
	out := make([]interface{}, len(reqs))
	for i, req := range reqs {
		out[i] = Answer(c, r, renderMap, req)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("catalogueio: encode responses: %w", err)
	}
	return data, nil
}
