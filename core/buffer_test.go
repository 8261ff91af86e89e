package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferReplaceSortsAndTrims(t *testing.T) {
	buf, err := NewTimeSeriesBuffer(10_000)
	require.NoError(t, err)

	err = buf.Replace([]Sample{
		{TimestampMs: 30_000, Value: 3},
		{TimestampMs: 5_000, Value: 1},
		{TimestampMs: 25_000, Value: 2},
	})
	require.NoError(t, err)

	// 5000 < 30000-10000 so only the last two survive, in order
	assert.Equal(t, []Sample{
		{TimestampMs: 25_000, Value: 2},
		{TimestampMs: 30_000, Value: 3},
	}, buf.Samples())
}

func TestBufferAppendWindowSliding(t *testing.T) {
	buf, err := NewTimeSeriesBuffer(30_000)
	require.NoError(t, err)

	require.NoError(t, buf.Append([]Sample{{TimestampMs: 0, Value: 1.0}}))
	require.NoError(t, buf.Append([]Sample{{TimestampMs: 25_000, Value: 2.0}}))
	assert.Equal(t, 2, buf.Len())

	require.NoError(t, buf.Append([]Sample{{TimestampMs: 35_000, Value: 3.0}}))
	assert.Equal(t, []Sample{
		{TimestampMs: 25_000, Value: 2.0},
		{TimestampMs: 35_000, Value: 3.0},
	}, buf.Samples())
}

func TestBufferAppendInterleavedMerge(t *testing.T) {
	buf, err := NewTimeSeriesBuffer(100_000)
	require.NoError(t, err)

	require.NoError(t, buf.Replace([]Sample{
		{TimestampMs: 10, Value: 1},
		{TimestampMs: 30, Value: 3},
		{TimestampMs: 50, Value: 5},
	}))
	require.NoError(t, buf.Append([]Sample{
		{TimestampMs: 40, Value: 4},
		{TimestampMs: 20, Value: 2},
	}))

	got := buf.Samples()
	values := make([]float64, len(got))
	for i, s := range got {
		values[i] = s.Value
	}
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, values)
}

func TestBufferAppendTiesKeepInsertionOrder(t *testing.T) {
	buf, err := NewTimeSeriesBuffer(100_000)
	require.NoError(t, err)

	require.NoError(t, buf.Append([]Sample{{TimestampMs: 100, Value: 1}}))
	require.NoError(t, buf.Append([]Sample{
		{TimestampMs: 100, Value: 2},
		{TimestampMs: 100, Value: 3},
	}))

	assert.Equal(t, []Sample{
		{TimestampMs: 100, Value: 1},
		{TimestampMs: 100, Value: 2},
		{TimestampMs: 100, Value: 3},
	}, buf.Samples())
}

func TestBufferRejectsNonFiniteAtomically(t *testing.T) {
	buf, err := NewTimeSeriesBuffer(60_000)
	require.NoError(t, err)
	require.NoError(t, buf.Replace([]Sample{{TimestampMs: 1_000, Value: 1.5}}))
	before := buf.Samples()

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := buf.Append([]Sample{
			{TimestampMs: 2_000, Value: 2.5},
			{TimestampMs: 3_000, Value: bad},
		})
		assert.ErrorIs(t, err, ErrInvalidSample)
		assert.Equal(t, before, buf.Samples())

		err = buf.Replace([]Sample{{TimestampMs: 2_000, Value: bad}})
		assert.ErrorIs(t, err, ErrInvalidSample)
		assert.Equal(t, before, buf.Samples())
	}
}

func TestBufferReplaceEmptyClearsContents(t *testing.T) {
	buf, err := NewTimeSeriesBuffer(60_000)
	require.NoError(t, err)
	require.NoError(t, buf.Replace([]Sample{{TimestampMs: 1, Value: 1}}))

	require.NoError(t, buf.Replace(nil))
	assert.Zero(t, buf.Len())
	_, ok := buf.LatestTimestampMs()
	assert.False(t, ok)
}

func TestBufferClear(t *testing.T) {
	buf, err := NewTimeSeriesBuffer(60_000)
	require.NoError(t, err)
	require.NoError(t, buf.Append([]Sample{{TimestampMs: 1, Value: 1}}))

	buf.Clear()
	assert.Zero(t, buf.Len())
	assert.Empty(t, buf.Samples())
}

func TestBufferRejectsNonPositiveWindow(t *testing.T) {
	_, err := NewTimeSeriesBuffer(0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = NewTimeSeriesBuffer(-5)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

// Window and ordering invariants hold for arbitrary append sequences.
func TestBufferInvariantsUnderRandomAppends(t *testing.T) {
	const windowMs = 5_000
	buf, err := NewTimeSeriesBuffer(windowMs)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	ts := int64(0)
	for batch := 0; batch < 50; batch++ {
		n := 1 + rng.Intn(20)
		samples := make([]Sample, n)
		for i := range samples {
			ts += int64(rng.Intn(500))
			samples[i] = Sample{TimestampMs: ts, Value: rng.NormFloat64()}
		}
		require.NoError(t, buf.Append(samples))

		got := buf.Samples()
		require.NotEmpty(t, got)
		latest := got[len(got)-1].TimestampMs
		for i, s := range got {
			assert.GreaterOrEqual(t, s.TimestampMs, latest-windowMs)
			if i > 0 {
				assert.LessOrEqual(t, got[i-1].TimestampMs, s.TimestampMs)
			}
		}
	}
}

func BenchmarkBufferAppend(b *testing.B) {
	buf, err := NewTimeSeriesBuffer(60_000)
	if err != nil {
		b.Fatal(err)
	}
	batch := make([]Sample, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		base := int64(i) * 100
		for j := range batch {
			batch[j] = Sample{TimestampMs: base + int64(j), Value: float64(j)}
		}
		if err := buf.Append(batch); err != nil {
			b.Fatal(err)
		}
	}
}
