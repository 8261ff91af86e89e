// Package viz synthesizes ECharts option documents for stacked
// multi-signal time series charts.
//
// The output of this package is a ChartConfig: a renderer-agnostic
// description of subplot layout, axes and per-series data that a
// browser-side chart instance can apply wholesale.  The document is
// always rebuilt from scratch so callers never have to diff or patch
// a previously emitted one.
package viz

import "encoding/json"

// Point is one [timestampMs, value] pair in a series.  It marshals as
// a two-element JSON array, the data format ECharts expects for time
// axis series.
type Point struct {
	TimestampMs int64
	Value       float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.TimestampMs, p.Value})
}

// Bool returns a pointer to v, for option fields where absent and
// false render differently.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for optional numeric option fields.
func Int(v int) *int { return &v }

// TextStyle configures font rendering for titles, labels and tooltips.
type TextStyle struct {
	FontSize   int    `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Title is one subplot caption, positioned above its grid.
type Title struct {
	Text      string    `json:"text"`
	Left      int       `json:"left"`
	Top       int       `json:"top"`
	TextStyle TextStyle `json:"textStyle"`
}

// Grid is the pixel-positioned plotting rectangle of one subplot.
type Grid struct {
	Left            int    `json:"left"`
	Right           int    `json:"right"`
	Top             int    `json:"top"`
	Height          int    `json:"height"`
	ContainLabel    bool   `json:"containLabel"`
	Show            bool   `json:"show"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// LineStyle configures stroke appearance for axis lines, split lines,
// pointer lines and series lines.
type LineStyle struct {
	Color   string  `json:"color,omitempty"`
	Width   int     `json:"width,omitempty"`
	Type    string  `json:"type,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

type SplitLine struct {
	Show      bool       `json:"show"`
	LineStyle *LineStyle `json:"lineStyle,omitempty"`
}

type AxisLine struct {
	Show      bool       `json:"show"`
	LineStyle *LineStyle `json:"lineStyle,omitempty"`
}

type AxisTick struct {
	Show bool `json:"show"`
}

type AxisLabel struct {
	Show      *bool  `json:"show,omitempty"`
	Formatter string `json:"formatter,omitempty"`
	FontSize  int    `json:"fontSize,omitempty"`
	Rotate    int    `json:"rotate,omitempty"`
}

type Label struct {
	Show bool `json:"show"`
}

// AxisPointerLink joins axes so one cursor position tracks across all
// of them.  XAxisIndex is "all" to link every x axis.
type AxisPointerLink struct {
	XAxisIndex string `json:"xAxisIndex"`
}

// AxisPointer configures the hover crosshair.  It appears in three
// places with different subsets of fields set: per x axis, at the top
// level (with Link), and inside the tooltip.
type AxisPointer struct {
	Show      *bool             `json:"show,omitempty"`
	Link      []AxisPointerLink `json:"link,omitempty"`
	Type      string            `json:"type,omitempty"`
	Axis      string            `json:"axis,omitempty"`
	Snap      *bool             `json:"snap,omitempty"`
	Z         int               `json:"z,omitempty"`
	LineStyle *LineStyle        `json:"lineStyle,omitempty"`
	Label     *Label            `json:"label,omitempty"`
	TriggerOn string            `json:"triggerOn,omitempty"`
}

// Axis is one x or y axis definition bound to a grid by GridIndex.
// Numeric signals use Type "value" with Scale set; enum signals use
// Type "category" with Data holding the label set and Min/Max pinning
// the index domain.
type Axis struct {
	Type        string       `json:"type"`
	GridIndex   int          `json:"gridIndex"`
	Show        *bool        `json:"show,omitempty"`
	Position    string       `json:"position,omitempty"`
	Data        []string     `json:"data,omitempty"`
	Min         *int         `json:"min,omitempty"`
	Max         *int         `json:"max,omitempty"`
	Scale       bool         `json:"scale,omitempty"`
	SplitNumber int          `json:"splitNumber,omitempty"`
	SplitLine   *SplitLine   `json:"splitLine,omitempty"`
	AxisLine    *AxisLine    `json:"axisLine,omitempty"`
	AxisTick    *AxisTick    `json:"axisTick,omitempty"`
	AxisLabel   *AxisLabel   `json:"axisLabel,omitempty"`
	AxisPointer *AxisPointer `json:"axisPointer,omitempty"`
}

// Series is one signal's line plot, bound to its subplot through
// XAxisIndex/YAxisIndex.
type Series struct {
	Type         string     `json:"type"`
	Name         string     `json:"name"`
	XAxisIndex   int        `json:"xAxisIndex"`
	YAxisIndex   int        `json:"yAxisIndex"`
	Data         []Point    `json:"data"`
	Smooth       bool       `json:"smooth"`
	Symbol       string     `json:"symbol,omitempty"`
	SymbolSize   int        `json:"symbolSize,omitempty"`
	ShowSymbol   bool       `json:"showSymbol"`
	ConnectNulls bool       `json:"connectNulls"`
	LineStyle    *LineStyle `json:"lineStyle,omitempty"`
	Animation    bool       `json:"animation"`
}

// Tooltip configures the shared hover readout.
type Tooltip struct {
	Show            bool         `json:"show"`
	Trigger         string       `json:"trigger"`
	AxisPointer     *AxisPointer `json:"axisPointer,omitempty"`
	BackgroundColor string       `json:"backgroundColor,omitempty"`
	BorderColor     string       `json:"borderColor,omitempty"`
	BorderWidth     int          `json:"borderWidth,omitempty"`
	TextStyle       *TextStyle   `json:"textStyle,omitempty"`
	Padding         []int        `json:"padding,omitempty"`
	ExtraCSSText    string       `json:"extraCssText,omitempty"`
	Confine         bool         `json:"confine"`
}

// DataZoom configures the scroll/zoom behavior shared by every x axis.
type DataZoom struct {
	Type             string  `json:"type"`
	XAxisIndex       []int   `json:"xAxisIndex"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	FilterMode       string  `json:"filterMode"`
	ZoomOnMouseWheel string  `json:"zoomOnMouseWheel,omitempty"`
	MoveOnMouseMove  bool    `json:"moveOnMouseMove"`
}

// ChartConfig is the full option document for one chart: positionally
// aligned grids, axes, titles and series (index i of each belongs to
// signal i), plus the chart-wide interaction config.  Height is the
// total pixel height the rendering container should reserve.
type ChartConfig struct {
	Grid        []Grid       `json:"grid"`
	XAxis       []Axis       `json:"xAxis"`
	YAxis       []Axis       `json:"yAxis"`
	Series      []Series     `json:"series"`
	Title       []Title      `json:"title"`
	Height      int          `json:"height"`
	AxisPointer *AxisPointer `json:"axisPointer,omitempty"`
	Tooltip     *Tooltip     `json:"tooltip,omitempty"`
	DataZoom    []DataZoom   `json:"dataZoom,omitempty"`
	Animation   bool         `json:"animation"`
}
