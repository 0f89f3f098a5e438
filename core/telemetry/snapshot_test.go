package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotJSONFields(t *testing.T) {
	data, err := json.Marshal(Snapshot{Timestamp: 1000.5, Speed: 12.3, SoC: 99.9, Wh: 3590.1, TripEfficiency: 41.2})
	require.NoError(t, err)

	var m map[string]float64
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"timestamp", "speed", "temperature", "voltage", "soc", "wh", "trip_distance", "trip_efficiency", "trip_time"} {
		_, ok := m[k]
		assert.True(t, ok, "missing key %s", k)
	}
	assert.Len(t, m, 9)
	assert.Equal(t, 41.2, m["trip_efficiency"])
}

func TestBounded(t *testing.T) {
	s := Snapshot{Speed: 140, Temperature: 3, SoC: 120, Wh: -5, Voltage: -1}.Bounded()
	assert.Equal(t, MaxSpeed, s.Speed)
	assert.Equal(t, MinTemperature, s.Temperature)
	assert.Equal(t, 100.0, s.SoC)
	assert.Equal(t, 0.0, s.Wh)
	assert.Equal(t, 0.0, s.Voltage)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 42.4, Round(42.426, 1))
	assert.Equal(t, 83.99, Round(83.9872, 2))
	assert.Equal(t, 1016.7, Round(1016.6666, 1))
}

func TestSoCFromWh(t *testing.T) {
	assert.InDelta(t, 50.0, SoCFromWh(1800, PackCapacityWh), 1e-9)
	assert.Equal(t, 0.0, SoCFromWh(10, 0))
}
