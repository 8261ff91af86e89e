package core

import (
	"sort"
)

// TimeSeriesBuffer holds one signal's samples ordered by timestamp and
// trimmed to a trailing time window. After every mutation the contents
// are sorted non-decreasing by TimestampMs (insertion order preserved on
// ties) and every sample satisfies ts >= latest - windowMs.
//
// Not safe for concurrent use. The buffer is single-writer by design;
// the owning controller's host provides the mutual-exclusion boundary.
type TimeSeriesBuffer struct {
	windowMs int64
	samples  []Sample
}

// NewTimeSeriesBuffer creates an empty buffer with a fixed window width.
func NewTimeSeriesBuffer(windowMs int64) (*TimeSeriesBuffer, error) {
	if windowMs <= 0 {
		return nil, ErrInvalidWindow
	}
	return &TimeSeriesBuffer{windowMs: windowMs}, nil
}

// WindowMs returns the fixed window width in milliseconds.
func (b *TimeSeriesBuffer) WindowMs() int64 { return b.windowMs }

// Len returns the number of retained samples.
func (b *TimeSeriesBuffer) Len() int { return len(b.samples) }

// Samples returns a copy of the retained samples in timestamp order.
func (b *TimeSeriesBuffer) Samples() []Sample {
	out := make([]Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// LatestTimestampMs returns the newest retained timestamp. The second
// result is false when the buffer is empty.
func (b *TimeSeriesBuffer) LatestTimestampMs() (int64, bool) {
	if len(b.samples) == 0 {
		return 0, false
	}
	return b.samples[len(b.samples)-1].TimestampMs, true
}

// Replace discards the current contents and installs the given batch:
// sorted, then trimmed to the window. An empty batch empties the buffer.
// A batch containing a non-finite value is rejected with ErrInvalidSample
// and the previous contents are left untouched.
func (b *TimeSeriesBuffer) Replace(samples []Sample) error {
	if err := ValidateSamples(samples); err != nil {
		return err
	}
	next := make([]Sample, len(samples))
	copy(next, samples)
	sortSamples(next)
	b.samples = trimToWindow(next, b.windowMs)
	return nil
}

// Append merges a new batch after the existing contents and trims. The
// incoming batch is sorted first; when its timestamps interleave with
// retained ones a full stable merge is performed rather than a blind
// concatenation. Rejection semantics match Replace.
func (b *TimeSeriesBuffer) Append(samples []Sample) error {
	if err := ValidateSamples(samples); err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}
	batch := make([]Sample, len(samples))
	copy(batch, samples)
	sortSamples(batch)

	if len(b.samples) == 0 {
		b.samples = trimToWindow(batch, b.windowMs)
		return nil
	}

	if b.samples[len(b.samples)-1].TimestampMs <= batch[0].TimestampMs {
		merged := append(b.samples, batch...)
		b.samples = trimToWindow(merged, b.windowMs)
		return nil
	}

	b.samples = trimToWindow(mergeSamples(b.samples, batch), b.windowMs)
	return nil
}

// Clear empties the buffer unconditionally.
func (b *TimeSeriesBuffer) Clear() {
	b.samples = nil
}

// sortSamples orders a batch by timestamp, keeping the original order of
// equal timestamps.
func sortSamples(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].TimestampMs < samples[j].TimestampMs
	})
}

// mergeSamples merges two sorted runs. Existing samples win ties so that
// earlier insertions stay ahead of later ones.
func mergeSamples(existing, batch []Sample) []Sample {
	merged := make([]Sample, 0, len(existing)+len(batch))
	i, j := 0, 0
	for i < len(existing) && j < len(batch) {
		if existing[i].TimestampMs <= batch[j].TimestampMs {
			merged = append(merged, existing[i])
			i++
		} else {
			merged = append(merged, batch[j])
			j++
		}
	}
	merged = append(merged, existing[i:]...)
	merged = append(merged, batch[j:]...)
	return merged
}

// trimToWindow drops every sample older than latest - windowMs from a
// sorted run. The latest sample is always retained.
func trimToWindow(sorted []Sample, windowMs int64) []Sample {
	if len(sorted) == 0 {
		return nil
	}
	cutoff := sorted[len(sorted)-1].TimestampMs - windowMs
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].TimestampMs >= cutoff
	})
	if idx == 0 {
		return sorted
	}
	return append([]Sample(nil), sorted[idx:]...)
}
