package console

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/panyam/sigplot/core"
)

// Dwell pattern for synthetic enum signals, in seconds per state.
// States beyond the pattern length hold for three seconds each.
var enumDwellSeconds = []int64{3, 2, 5, 2}

// Gap cadence: with Gaps on, each signal goes quiet for gapRun ticks
// out of every gapCycle, staggered so the holes land at different
// times per signal.
const (
	gapCycle   = 60
	gapRun     = 5
	gapStagger = 17
)

// GeneratorOptions tune the synthetic producer.  The zero value gives
// a 5 Hz feed starting now with a time-based seed.
type GeneratorOptions struct {
	// SampleRateHz is how many samples per second the base tick emits.
	SampleRateHz float64

	// RateDivisors thins individual signals: a signal with divisor n
	// only emits on every nth tick.  Unlisted signals (or divisors
	// below 2) emit on every tick.
	RateDivisors map[string]int

	// Seed fixes the noise stream.  Zero picks a time-based seed.
	Seed int64

	// StartMs is the first timestamp.  Zero means wall-clock now.
	StartMs int64

	// Gaps makes each signal skip an occasional run of ticks so its
	// rendered line breaks, mirroring a producer channel that stalls
	// and resumes.
	Gaps bool
}

// SignalGenerator produces synthetic batches shaped like a real device
// feed: per-signal sine waves with distinct frequency, phase, amplitude
// and offset plus gaussian noise, and cycling states for enum signals.
// Signals run at different rates when divisors are configured, so some
// series are sparser than others the way multi-rate hardware channels
// are.
//
// Not safe for concurrent use; drive it from a single goroutine.
type SignalGenerator struct {
	specs      []core.SignalSpec
	waves      []waveParams
	divisors   []int64
	enumCodes  map[string][]int
	intervalMs int64
	gaps       bool
	rng        *rand.Rand
	counter    int64
	nextMs     int64
}

type waveParams struct {
	frequency float64
	phase     float64
	amplitude float64
	offset    float64
	noise     float64
}

// NewSignalGenerator builds a generator for the given signal list.
func NewSignalGenerator(specs []core.SignalSpec, opts GeneratorOptions) *SignalGenerator {
	if opts.SampleRateHz <= 0 {
		opts.SampleRateHz = 5.0
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	startMs := opts.StartMs
	if startMs == 0 {
		startMs = time.Now().UnixMilli()
	}

	g := &SignalGenerator{
		specs:      append([]core.SignalSpec(nil), specs...),
		waves:      make([]waveParams, len(specs)),
		divisors:   make([]int64, len(specs)),
		enumCodes:  make(map[string][]int),
		intervalMs: int64(1000.0 / opts.SampleRateHz),
		gaps:       opts.Gaps,
		rng:        rand.New(rand.NewSource(seed)),
		nextMs:     startMs,
	}
	if g.intervalMs <= 0 {
		g.intervalMs = 1
	}

	for i, spec := range g.specs {
		g.waves[i] = waveParams{
			frequency: 0.1 + float64(i)*0.05,
			phase:     float64(i) * 0.3,
			amplitude: 1.0 + float64(i)*0.1,
			offset:    float64(i) * 0.5,
			noise:     0.1,
		}
		g.divisors[i] = 1
		if d := opts.RateDivisors[spec.Name]; d > 1 {
			g.divisors[i] = int64(d)
		}
		if spec.Kind == core.KindEnum {
			codes := make([]int, 0, len(spec.EnumLabels))
			for code := range spec.EnumLabels {
				codes = append(codes, code)
			}
			sort.Ints(codes)
			g.enumCodes[spec.Name] = codes
		}
	}
	return g
}

// skipTick reports whether signal i sits out the current tick, either
// because its divisor thins it or because a gap run covers this tick.
func (g *SignalGenerator) skipTick(i int) bool {
	if g.counter%g.divisors[i] != 0 {
		return true
	}
	if g.gaps && (g.counter+int64(i)*gapStagger)%gapCycle < gapRun {
		return true
	}
	return false
}

// Next produces one tick's worth of samples and advances the clock by
// the sampling interval.  Signals skipping this tick are absent from
// the batch entirely, never present with a filler value.
func (g *SignalGenerator) Next() map[string][]core.Sample {
	ts := g.nextMs
	elapsed := float64(g.counter) * float64(g.intervalMs) / 1000.0

	batch := make(map[string][]core.Sample, len(g.specs))
	for i, spec := range g.specs {
		if g.skipTick(i) {
			continue
		}
		var value float64
		if spec.Kind == core.KindEnum {
			value = float64(g.enumState(spec.Name, elapsed))
		} else {
			w := g.waves[i]
			value = w.amplitude*math.Sin(2*math.Pi*w.frequency*elapsed+w.phase) +
				w.offset +
				g.rng.NormFloat64()*w.noise
		}
		batch[spec.Name] = []core.Sample{{TimestampMs: ts, Value: value}}
	}

	g.counter++
	g.nextMs = ts + g.intervalMs
	return batch
}

// NextBatch produces n consecutive ticks merged into one batch per
// signal.
func (g *SignalGenerator) NextBatch(n int) map[string][]core.Sample {
	out := make(map[string][]core.Sample, len(g.specs))
	for i := 0; i < n; i++ {
		for name, samples := range g.Next() {
			out[name] = append(out[name], samples...)
		}
	}
	return out
}

// enumState walks the signal's codes in ascending order, holding each
// for its dwell time, then wraps around.
func (g *SignalGenerator) enumState(name string, elapsed float64) int {
	codes := g.enumCodes[name]
	if len(codes) == 0 {
		return 0
	}
	var cycle int64
	dwells := make([]int64, len(codes))
	for i := range codes {
		d := int64(3)
		if i < len(enumDwellSeconds) {
			d = enumDwellSeconds[i]
		}
		dwells[i] = d
		cycle += d
	}
	pos := int64(elapsed) % cycle
	for i, d := range dwells {
		if pos < d {
			return codes[i]
		}
		pos -= d
	}
	return codes[len(codes)-1]
}
