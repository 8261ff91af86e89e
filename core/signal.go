// Package core holds the windowed multi-signal data model: signal
// definitions, time-ordered sample buffers and the enum category remap
// that the chart synthesis layer consumes.
package core

import (
	"fmt"
	"math"
	"strings"
)

// SignalKind discriminates how a signal's values are interpreted.
type SignalKind int

const (
	// KindNumeric signals carry continuous values plotted on an
	// auto-scaling value axis.
	KindNumeric SignalKind = iota

	// KindEnum signals carry integer codes mapped to display labels and
	// plotted on a compact category axis.
	KindEnum
)

// String returns the manifest spelling of the kind.
func (k SignalKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("SignalKind(%d)", int(k))
	}
}

// ParseSignalKind parses a manifest spelling into a SignalKind.
func ParseSignalKind(s string) (SignalKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "value":
		return KindNumeric, nil
	case "enum", "category":
		return KindEnum, nil
	default:
		return KindNumeric, fmt.Errorf("unknown signal kind: %q", s)
	}
}

// SignalSpec is the static definition of one signal. Specs are fixed for
// the lifetime of the controller that owns them.
type SignalSpec struct {
	// Name uniquely identifies the signal within a controller.
	Name string

	Kind SignalKind

	// EnumLabels maps raw integer codes to display labels. Only
	// meaningful for KindEnum; codes need not be contiguous. Codes
	// observed in the data but absent here contribute no category and
	// are dropped from the plotted series.
	EnumLabels map[int]string
}

// Validate reports whether the spec is usable.
func (s SignalSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("signal name must not be empty")
	}
	if s.Kind != KindNumeric && s.Kind != KindEnum {
		return fmt.Errorf("signal %q: unknown kind %d", s.Name, int(s.Kind))
	}
	return nil
}

// Sample is a single observation: an opaque epoch-millisecond timestamp
// and a raw value. For enum signals the value is a code that is rounded
// to the nearest integer at remap time.
type Sample struct {
	TimestampMs int64
	Value       float64
}

// RoundCode converts a raw enum sample value to its integer code.
func RoundCode(v float64) int {
	return int(math.Round(v))
}

// ValidateSamples checks a batch for non-finite values. It is the shared
// gate used by the buffer and the controller so a bad batch can be
// rejected before any state is touched.
func ValidateSamples(samples []Sample) error {
	for i, s := range samples {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return fmt.Errorf("%w: sample %d has non-finite value", ErrInvalidSample, i)
		}
	}
	return nil
}
