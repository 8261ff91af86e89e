package viz

import (
	"fmt"

	"github.com/panyam/sigplot/core"
)

// Fixed cosmetics shared by every subplot.  Regions at least
// wideRegionMin pixels tall get roomier title spacing.
const (
	gridLeft      = 70
	gridRight     = 70
	titleLeft     = 80
	headerOffset  = 30
	wideRegionMin = 100
)

// BuilderOptions tune chart geometry and rendering density.  The zero
// value of any field selects its default.
type BuilderOptions struct {
	// MarkerThreshold is the largest point count per series that still
	// draws per-point symbols.  Denser series render as bare lines.
	MarkerThreshold int

	// PageHeight is the vertical pixel budget the stacked regions try
	// to fill before falling back to MinRegionHeight.
	PageHeight int

	// MinRegionHeight is the smallest subplot height in pixels.
	MinRegionHeight int

	// RegionSpacing is the vertical gap between subplots in pixels.
	RegionSpacing int

	// VerticalPadding is the combined top and bottom page margin.
	VerticalPadding int
}

// DefaultBuilderOptions returns the geometry used by the dashboard.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		MarkerThreshold: 200,
		PageHeight:      800,
		MinRegionHeight: 85,
		RegionSpacing:   2,
		VerticalPadding: 50,
	}
}

func (o BuilderOptions) withDefaults() BuilderOptions {
	def := DefaultBuilderOptions()
	if o.MarkerThreshold <= 0 {
		o.MarkerThreshold = def.MarkerThreshold
	}
	if o.PageHeight <= 0 {
		o.PageHeight = def.PageHeight
	}
	if o.MinRegionHeight <= 0 {
		o.MinRegionHeight = def.MinRegionHeight
	}
	if o.RegionSpacing <= 0 {
		o.RegionSpacing = def.RegionSpacing
	}
	if o.VerticalPadding <= 0 {
		o.VerticalPadding = def.VerticalPadding
	}
	return o
}

// SignalData is one signal's windowed samples plus, for enum signals,
// the category remap derived from them.  State may be nil, in which
// case the builder derives it from Samples.
type SignalData struct {
	Samples []core.Sample
	State   *core.CategoryState
}

// Builder assembles ChartConfig documents for a fixed ordered signal
// list.  Build is pure: the same inputs always produce an equal
// document, so callers may regenerate on every mutation instead of
// patching the previous one.
type Builder struct {
	specs    []core.SignalSpec
	windowMs int64
	opts     BuilderOptions
}

// NewBuilder validates the signal list and returns a Builder for it.
func NewBuilder(specs []core.SignalSpec, windowMs int64, opts BuilderOptions) (*Builder, error) {
	if len(specs) == 0 {
		return nil, core.ErrNoSignals
	}
	if windowMs <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidWindow, windowMs)
	}
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateSignal, spec.Name)
		}
		seen[spec.Name] = true
	}
	return &Builder{
		specs:    append([]core.SignalSpec(nil), specs...),
		windowMs: windowMs,
		opts:     opts.withDefaults(),
	}, nil
}

// Specs returns the builder's signal list in display order.
func (b *Builder) Specs() []core.SignalSpec {
	return append([]core.SignalSpec(nil), b.specs...)
}

// regionHeight picks a subplot height that fills the page when signals
// are few and bottoms out at the configured minimum when they are many.
func (b *Builder) regionHeight(n int) int {
	ideal := float64(b.opts.PageHeight-b.opts.VerticalPadding-b.opts.RegionSpacing*(n+1)) / float64(n)
	h := b.opts.MinRegionHeight
	if ih := int(ideal); ih > h {
		h = ih
	}
	if n > 10 {
		h = b.opts.MinRegionHeight
	}
	return h
}

// Build produces a fresh ChartConfig from per-signal data aligned with
// the builder's signal order.  signals[i] belongs to the i-th spec.
func (b *Builder) Build(signals []SignalData) (*ChartConfig, error) {
	if len(signals) != len(b.specs) {
		return nil, fmt.Errorf("expected data for %d signals, got %d", len(b.specs), len(signals))
	}

	n := len(b.specs)
	h := b.regionHeight(n)
	spacing := b.opts.RegionSpacing

	cfg := &ChartConfig{
		Grid:   make([]Grid, 0, n),
		XAxis:  make([]Axis, 0, n),
		YAxis:  make([]Axis, 0, n),
		Series: make([]Series, 0, n),
		Title:  make([]Title, 0, n),
		Height: h*n + spacing*(n+1) + b.opts.VerticalPadding,
	}

	for i, spec := range b.specs {
		top := spacing + i*(h+spacing) + headerOffset
		titleOffset, gridHeight := 18, h-20
		if h >= wideRegionMin {
			titleOffset, gridHeight = 22, h-25
		}

		cfg.Title = append(cfg.Title, Title{
			Text: spec.Name,
			Left: titleLeft,
			Top:  top - titleOffset,
			TextStyle: TextStyle{
				FontSize:   13,
				FontWeight: "bold",
				Color:      "#333",
			},
		})
		cfg.Grid = append(cfg.Grid, Grid{
			Left:            gridLeft,
			Right:           gridRight,
			Top:             top,
			Height:          gridHeight,
			ContainLabel:    true,
			Show:            false,
			BackgroundColor: "transparent",
		})
		cfg.XAxis = append(cfg.XAxis, timeAxis(i, i == n-1))

		var points []Point
		switch spec.Kind {
		case core.KindEnum:
			state := signals[i].State
			if state == nil {
				derived := core.RemapCategories(signals[i].Samples, spec.EnumLabels)
				state = &derived
			}
			cfg.YAxis = append(cfg.YAxis, categoryAxis(i, state))
			points = enumPoints(signals[i].Samples, state)
		default:
			cfg.YAxis = append(cfg.YAxis, valueAxis(i))
			points = numericPoints(signals[i].Samples)
		}

		cfg.Series = append(cfg.Series, Series{
			Type:         "line",
			Name:         spec.Name,
			XAxisIndex:   i,
			YAxisIndex:   i,
			Data:         points,
			Smooth:       false,
			Symbol:       "emptyCircle",
			SymbolSize:   6,
			ShowSymbol:   len(points) <= b.opts.MarkerThreshold,
			ConnectNulls: false,
			LineStyle:    &LineStyle{Width: 2},
			Animation:    false,
		})
	}

	cfg.AxisPointer = &AxisPointer{
		Link: []AxisPointerLink{{XAxisIndex: "all"}},
		Type: "line",
		LineStyle: &LineStyle{
			Color:   "#666",
			Width:   1,
			Type:    "dashed",
			Opacity: 0.6,
		},
		TriggerOn: "mousemove",
	}
	cfg.Tooltip = &Tooltip{
		Show:    true,
		Trigger: "axis",
		AxisPointer: &AxisPointer{
			Type:      "line",
			Axis:      "x",
			LineStyle: &LineStyle{Color: "#999", Width: 1, Type: "solid"},
			Label:     &Label{Show: false},
		},
		BackgroundColor: "rgba(50, 50, 50, 0.9)",
		BorderColor:     "#333",
		BorderWidth:     1,
		TextStyle:       &TextStyle{Color: "#fff", FontSize: 12},
		Padding:         []int{10, 12},
		ExtraCSSText:    "box-shadow: 0 2px 8px rgba(0, 0, 0, 0.5); max-height: 400px; overflow-y: auto;",
		Confine:         true,
	}

	zoomAxes := make([]int, n)
	for i := range zoomAxes {
		zoomAxes[i] = i
	}
	cfg.DataZoom = []DataZoom{{
		Type:             "inside",
		XAxisIndex:       zoomAxes,
		Start:            b.zoomStart(signals),
		End:              100,
		FilterMode:       "none",
		ZoomOnMouseWheel: "ctrl",
		MoveOnMouseMove:  true,
	}}
	return cfg, nil
}

// zoomStart positions the zoom window over the trailing windowMs of the
// data.  When the total span already fits the window it starts at 0.
func (b *Builder) zoomStart(signals []SignalData) float64 {
	var earliest, latest int64
	found := false
	for _, sd := range signals {
		if len(sd.Samples) == 0 {
			continue
		}
		first := sd.Samples[0].TimestampMs
		last := sd.Samples[len(sd.Samples)-1].TimestampMs
		if !found {
			earliest, latest = first, last
			found = true
			continue
		}
		if first < earliest {
			earliest = first
		}
		if last > latest {
			latest = last
		}
	}
	if !found {
		return 0
	}
	total := latest - earliest
	if total <= b.windowMs {
		return 0
	}
	return float64(total-b.windowMs) / float64(total) * 100
}

// timeAxis emits the shared time axis for subplot i.  Labels and the
// axis line only render on the last subplot; the pointer renders on
// every one so the crosshair spans the whole stack.
func timeAxis(gridIndex int, last bool) Axis {
	return Axis{
		Type:      "time",
		GridIndex: gridIndex,
		Show:      Bool(last),
		Position:  "bottom",
		SplitLine: &SplitLine{Show: false},
		AxisLine:  &AxisLine{Show: last, LineStyle: &LineStyle{Color: "#999"}},
		AxisTick:  &AxisTick{Show: last},
		AxisLabel: &AxisLabel{
			Show:      Bool(last),
			Formatter: "{HH}:{mm}:{ss}.{SSS}",
			FontSize:  10,
		},
		AxisPointer: &AxisPointer{
			Show: Bool(true),
			Type: "line",
			Snap: Bool(false),
			Z:    100,
			LineStyle: &LineStyle{
				Color:   "#666",
				Width:   1,
				Type:    "solid",
				Opacity: 1,
			},
			Label: &Label{Show: false},
		},
	}
}

func valueAxis(gridIndex int) Axis {
	return Axis{
		Type:        "value",
		GridIndex:   gridIndex,
		Scale:       true,
		SplitNumber: 3,
		SplitLine:   &SplitLine{Show: true, LineStyle: &LineStyle{Type: "dashed", Color: "#e0e0e0"}},
		AxisLabel:   &AxisLabel{FontSize: 9},
	}
}

// categoryAxis pins the y domain to the remapped index space.  With
// zero or one active category the axis collapses to the single
// position 0 instead of stretching a meaningless unit span.
func categoryAxis(gridIndex int, st *core.CategoryState) Axis {
	return Axis{
		Type:      "category",
		GridIndex: gridIndex,
		Data:      append([]string{}, st.Categories...),
		Min:       Int(0),
		Max:       Int(st.AxisMax()),
		SplitLine: &SplitLine{Show: true, LineStyle: &LineStyle{Type: "dashed", Color: "#e0e0e0"}},
		AxisLabel: &AxisLabel{FontSize: 9},
	}
}

func numericPoints(samples []core.Sample) []Point {
	pts := make([]Point, 0, len(samples))
	for _, s := range samples {
		pts = append(pts, Point{TimestampMs: s.TimestampMs, Value: s.Value})
	}
	return pts
}

// enumPoints translates raw codes to remapped axis indices.  Samples
// whose code has no index, because their label set does not cover it,
// are left out of the series entirely.
func enumPoints(samples []core.Sample, st *core.CategoryState) []Point {
	pts := make([]Point, 0, len(samples))
	for _, s := range samples {
		idx, ok := st.Index(core.RoundCode(s.Value))
		if !ok {
			continue
		}
		pts = append(pts, Point{TimestampMs: s.TimestampMs, Value: float64(idx)})
	}
	return pts
}
