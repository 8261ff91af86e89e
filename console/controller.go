// Package console hosts the plotting runtime behind the dashboard: the
// controller owning per-signal buffers, the session boundary that
// serializes concurrent producers and readers, the REST and websocket
// surfaces, and the supporting generator, archive and ingest pieces.
package console

import (
	"fmt"

	"github.com/panyam/sigplot/core"
	"github.com/panyam/sigplot/viz"
)

// PlotController owns one buffer per configured signal and rebuilds
// the chart document on demand.  The signal list and window width are
// fixed for the controller's lifetime; changing either means building
// a new controller.
//
// Not safe for concurrent use.  Session provides the locking boundary
// when multiple goroutines feed or read one controller.
type PlotController struct {
	specs    []core.SignalSpec
	index    map[string]int
	buffers  []*core.TimeSeriesBuffer
	builder  *viz.Builder
	windowMs int64
}

// NewPlotController validates the signal list and creates empty
// buffers for it.
func NewPlotController(specs []core.SignalSpec, windowMs int64, opts viz.BuilderOptions) (*PlotController, error) {
	builder, err := viz.NewBuilder(specs, windowMs, opts)
	if err != nil {
		return nil, err
	}
	pc := &PlotController{
		specs:    builder.Specs(),
		index:    make(map[string]int, len(specs)),
		buffers:  make([]*core.TimeSeriesBuffer, len(specs)),
		builder:  builder,
		windowMs: windowMs,
	}
	for i, spec := range pc.specs {
		pc.index[spec.Name] = i
		buf, err := core.NewTimeSeriesBuffer(windowMs)
		if err != nil {
			return nil, err
		}
		pc.buffers[i] = buf
	}
	return pc, nil
}

// validateBatch checks every key and sample before any buffer mutates,
// so a rejected batch leaves every buffer exactly as it was.
func (pc *PlotController) validateBatch(batch map[string][]core.Sample) error {
	for name, samples := range batch {
		if _, ok := pc.index[name]; !ok {
			return fmt.Errorf("%w: %q", core.ErrUnknownSignal, name)
		}
		if err := core.ValidateSamples(samples); err != nil {
			return fmt.Errorf("signal %q: %w", name, err)
		}
	}
	return nil
}

// Replace swaps in a full snapshot.  Every known signal is replaced;
// signals absent from the batch are emptied.
func (pc *PlotController) Replace(batch map[string][]core.Sample) error {
	if err := pc.validateBatch(batch); err != nil {
		return err
	}
	for i, spec := range pc.specs {
		if err := pc.buffers[i].Replace(batch[spec.Name]); err != nil {
			return err
		}
	}
	return nil
}

// Append merges new samples into the named signals.  Signals absent
// from the batch keep their current contents.
func (pc *PlotController) Append(batch map[string][]core.Sample) error {
	if err := pc.validateBatch(batch); err != nil {
		return err
	}
	for name, samples := range batch {
		if err := pc.buffers[pc.index[name]].Append(samples); err != nil {
			return err
		}
	}
	return nil
}

// Clear empties every buffer.
func (pc *PlotController) Clear() {
	for _, buf := range pc.buffers {
		buf.Clear()
	}
}

// Config rebuilds the chart document from current buffer contents.
// Enum category state is recomputed on every call, so the axis label
// set always reflects exactly the codes in the window.
func (pc *PlotController) Config() (*viz.ChartConfig, error) {
	data := make([]viz.SignalData, len(pc.specs))
	for i, spec := range pc.specs {
		samples := pc.buffers[i].Samples()
		sd := viz.SignalData{Samples: samples}
		if spec.Kind == core.KindEnum {
			st := core.RemapCategories(samples, spec.EnumLabels)
			sd.State = &st
		}
		data[i] = sd
	}
	return pc.builder.Build(data)
}

// BufferedData returns a copy of every signal's current samples.
func (pc *PlotController) BufferedData() map[string][]core.Sample {
	out := make(map[string][]core.Sample, len(pc.specs))
	for i, spec := range pc.specs {
		out[spec.Name] = pc.buffers[i].Samples()
	}
	return out
}

// Specs returns the configured signal list in display order.
func (pc *PlotController) Specs() []core.SignalSpec {
	return pc.builder.Specs()
}

// WindowMs returns the sliding window width.
func (pc *PlotController) WindowMs() int64 {
	return pc.windowMs
}
