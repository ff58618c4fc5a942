package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunProducesOrderedResponses(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.json")
	outPath := filepath.Join(dir, "out.json")

	batch := `{
		"base_requests": [
			{"type": "Stop", "name": "A", "latitude": 55.611087, "longitude": 37.20829, "road_distances": {"B": 3900}},
			{"type": "Stop", "name": "B", "latitude": 55.595884, "longitude": 37.209755, "road_distances": {"A": 3900}},
			{"type": "Bus", "name": "X", "stops": ["A", "B"], "is_roundtrip": false}
		],
		"router_settings": {"bus_wait_time": 6, "bus_velocity": 40},
		"stat_requests": [
			{"id": 1, "type": "Bus", "name": "X"},
			{"id": 2, "type": "Map"}
		]
	}`
	require.NoError(t, os.WriteFile(inPath, []byte(batch), 0o644))

	require.NoError(t, run(inPath, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, float64(1), raw[0]["request_id"])
	assert.Equal(t, float64(2), raw[1]["request_id"])
	assert.Contains(t, raw[1]["map"], "<svg")
}
