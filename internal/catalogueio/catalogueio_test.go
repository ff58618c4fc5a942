package catalogueio

import (
	"encoding/json"
	"testing"

	"github.com/routewise/transitcore/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioS1Batch() Batch {
	return Batch{
		BaseRequests: []BaseRequest{
			{Type: "Stop", Name: "A", Latitude: 55.611087, Longitude: 37.20829,
				RoadDistances: map[string]int{"B": 3900}},
			{Type: "Stop", Name: "B", Latitude: 55.595884, Longitude: 37.209755,
				RoadDistances: map[string]int{"A": 3900}},
			{Type: "Bus", Name: "X", Stops: []string{"A", "B"}, IsRoundtrip: false},
		},
		RouterSettings: RouterSettings{BusWaitTime: 6, BusVelocity: 40},
		StatRequests: []StatRequest{
			{ID: 1, Type: "Bus", Name: "X"},
			{ID: 2, Type: "Stop", Name: "A"},
			{ID: 3, Type: "Route", From: "A", To: "B"},
			{ID: 4, Type: "Bus", Name: "ghost"},
		},
	}
}

func TestParseBatchRoundTrips(t *testing.T) {
	orig := scenarioS1Batch()
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	parsed, err := ParseBatch(data)
	require.NoError(t, err)
	assert.Equal(t, orig.RouterSettings, parsed.RouterSettings)
	assert.Len(t, parsed.BaseRequests, 3)
	assert.Len(t, parsed.StatRequests, 4)
}

func TestBuildCatalogueStoresPalindromeForNonRoundtrip(t *testing.T) {
	b := scenarioS1Batch()
	c := BuildCatalogue(b)

	stats, ok := c.BusStatistics("X")
	require.True(t, ok)
	assert.Equal(t, 3, stats.StopsNum) // palindrome of [A,B] is [A,B,A]
	assert.Equal(t, 2, stats.UniqStopsNum)
}

func TestAnswerAllOrdersResponsesByRequestIDOrder(t *testing.T) {
	b := scenarioS1Batch()
	c := BuildCatalogue(b)
	r, err := router.Build(c, router.Settings{
		BusWaitTime: b.RouterSettings.BusWaitTime,
		BusVelocity: b.RouterSettings.BusVelocity,
	})
	require.NoError(t, err)

	data, err := AnswerAll(c, r, nil, b.StatRequests)
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 4)

	assert.Equal(t, float64(1), raw[0]["request_id"])
	assert.Equal(t, float64(2), raw[1]["request_id"])
	assert.Equal(t, float64(3), raw[2]["request_id"])
	assert.Equal(t, float64(4), raw[3]["request_id"])

	assert.Equal(t, "not found", raw[3]["error_message"])
	assert.InDelta(t, 11.85, raw[2]["total_time"], 1e-9)
}

func TestAnswerStopNotFoundVsNoBuses(t *testing.T) {
	b := Batch{
		BaseRequests: []BaseRequest{
			{Type: "Stop", Name: "Lonely", Latitude: 0, Longitude: 0},
		},
	}
	c := BuildCatalogue(b)

	lonely := Answer(c, nil, nil, StatRequest{ID: 1, Type: "Stop", Name: "Lonely"})
	stopResp, ok := lonely.(stopStatsResponse)
	require.True(t, ok)
	assert.Empty(t, stopResp.Buses)

	ghost := Answer(c, nil, nil, StatRequest{ID: 2, Type: "Stop", Name: "ghost"})
	_, isError := ghost.(errorResponse)
	assert.True(t, isError)
}
