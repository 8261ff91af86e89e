package viz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/sigplot/core"
)

func TestPointMarshalsAsPair(t *testing.T) {
	out, err := json.Marshal(Point{TimestampMs: 1700000000123, Value: 2.5})
	require.NoError(t, err)
	assert.Equal(t, "[1700000000123,2.5]", string(out))

	out, err = json.Marshal([]Point{{10, 1}, {20, 0}})
	require.NoError(t, err)
	assert.Equal(t, "[[10,1],[20,0]]", string(out))
}

// Renderer-meaningful false values must survive marshaling: a hidden
// grid border or a suppressed first x axis cannot be omitted.
func TestConfigMarshalKeepsExplicitFalse(t *testing.T) {
	specs := []core.SignalSpec{
		{Name: "a", Kind: core.KindNumeric},
		{Name: "b", Kind: core.KindNumeric},
	}
	b, err := NewBuilder(specs, 30_000, BuilderOptions{})
	require.NoError(t, err)
	cfg, err := b.Build(make([]SignalData, 2))
	require.NoError(t, err)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, false, doc["animation"])

	grids := doc["grid"].([]any)
	require.Len(t, grids, 2)
	assert.Equal(t, false, grids[0].(map[string]any)["show"])
	assert.Equal(t, true, grids[0].(map[string]any)["containLabel"])

	xAxes := doc["xAxis"].([]any)
	assert.Equal(t, false, xAxes[0].(map[string]any)["show"])
	assert.Equal(t, true, xAxes[1].(map[string]any)["show"])

	series := doc["series"].([]any)
	s0 := series[0].(map[string]any)
	assert.Equal(t, false, s0["connectNulls"])
	assert.Equal(t, false, s0["animation"])
	assert.Equal(t, []any{}, s0["data"])
}
