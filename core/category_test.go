package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var machineStates = map[int]string{
	0: "INIT",
	1: "IDLE",
	2: "RUN",
	9: "MAINT",
}

func TestRemapUsesOnlyObservedCodes(t *testing.T) {
	samples := []Sample{
		{TimestampMs: 0, Value: 2},
		{TimestampMs: 10, Value: 2},
		{TimestampMs: 20, Value: 1},
		{TimestampMs: 30, Value: 2},
	}
	st := RemapCategories(samples, machineStates)

	assert.Equal(t, []int{1, 2}, st.ActiveValues)
	assert.Equal(t, []string{"IDLE", "RUN"}, st.Categories)
	assert.Equal(t, map[int]int{1: 0, 2: 1}, st.CodeToIndex)

	idx, ok := st.Index(2)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	idx, ok = st.Index(1)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestRemapIgnoresUnlabelledCodes(t *testing.T) {
	samples := []Sample{{TimestampMs: 0, Value: 7}}
	st := RemapCategories(samples, machineStates)

	assert.Empty(t, st.ActiveValues)
	assert.Empty(t, st.Categories)
	_, ok := st.Index(7)
	assert.False(t, ok)
	assert.Equal(t, 0, st.AxisMax())
}

func TestRemapEmptySamples(t *testing.T) {
	st := RemapCategories(nil, machineStates)
	assert.Empty(t, st.Categories)
	assert.Equal(t, 0, st.AxisMax())
}

func TestRemapSingleCategoryDegenerateAxis(t *testing.T) {
	samples := []Sample{
		{TimestampMs: 0, Value: 9},
		{TimestampMs: 10, Value: 9},
	}
	st := RemapCategories(samples, machineStates)
	assert.Equal(t, []string{"MAINT"}, st.Categories)
	assert.Equal(t, 0, st.AxisMax())
}

func TestRemapAxisMaxGrowsWithCategories(t *testing.T) {
	samples := []Sample{
		{TimestampMs: 0, Value: 0},
		{TimestampMs: 10, Value: 1},
		{TimestampMs: 20, Value: 9},
	}
	st := RemapCategories(samples, machineStates)
	assert.Equal(t, []string{"INIT", "IDLE", "MAINT"}, st.Categories)
	assert.Equal(t, 2, st.AxisMax())
}

func TestRemapRoundsStoredCodes(t *testing.T) {
	samples := []Sample{
		{TimestampMs: 0, Value: 1.6},
		{TimestampMs: 10, Value: 0.4},
	}
	st := RemapCategories(samples, machineStates)
	assert.Equal(t, []int{0, 2}, st.ActiveValues)
	assert.Equal(t, []string{"INIT", "RUN"}, st.Categories)
}

func TestRemapDeterministic(t *testing.T) {
	samples := []Sample{
		{TimestampMs: 0, Value: 9},
		{TimestampMs: 10, Value: 0},
		{TimestampMs: 20, Value: 2},
	}
	first := RemapCategories(samples, machineStates)
	second := RemapCategories(samples, machineStates)
	assert.Equal(t, first, second)
}
