package console

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/panyam/sigplot/core"
)

// Manifest is the on-disk description of a plotting setup: the window
// width, the feed cadence and the ordered signal list.
type Manifest struct {
	WindowMs     int64            `yaml:"window_ms"`
	SampleRateHz float64          `yaml:"sample_rate_hz"`
	UpdateMs     int64            `yaml:"update_ms"`
	Signals      []SignalManifest `yaml:"signals"`
}

// SignalManifest is one signal entry.  Kind accepts the same spellings
// as core.ParseSignalKind; Labels only applies to enum signals.
// RateDivisor slows a signal relative to the base sample rate: a value
// of n means the signal is sampled on every nth tick.  Zero or one
// means full rate.
type SignalManifest struct {
	Name        string         `yaml:"name"`
	Kind        string         `yaml:"kind"`
	Labels      map[int]string `yaml:"labels,omitempty"`
	RateDivisor int            `yaml:"rate_divisor,omitempty"`
}

// DefaultManifest returns the demo setup: five numeric device channels
// and one state channel, on a 30 second window.
func DefaultManifest() *Manifest {
	return &Manifest{
		WindowMs:     30_000,
		SampleRateHz: 5,
		UpdateMs:     200,
		Signals: []SignalManifest{
			{Name: "temperature", Kind: "numeric"},
			{Name: "pressure", Kind: "numeric"},
			{Name: "voltage", Kind: "numeric"},
			{Name: "current", Kind: "numeric"},
			{Name: "device_status", Kind: "enum", Labels: map[int]string{
				0: "OFF", 1: "IDLE", 2: "RUN", 3: "ALARM",
			}},
			{Name: "speed", Kind: "numeric", RateDivisor: 5},
		},
	}
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest YAML and fills defaults for omitted
// cadence fields.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	def := DefaultManifest()
	if m.WindowMs == 0 {
		m.WindowMs = def.WindowMs
	}
	if m.SampleRateHz == 0 {
		m.SampleRateHz = def.SampleRateHz
	}
	if m.UpdateMs == 0 {
		m.UpdateMs = def.UpdateMs
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.WindowMs <= 0 {
		return fmt.Errorf("%w: window_ms %d", core.ErrInvalidWindow, m.WindowMs)
	}
	if len(m.Signals) == 0 {
		return core.ErrNoSignals
	}
	for _, sig := range m.Signals {
		if sig.RateDivisor < 0 {
			return fmt.Errorf("signal %q: rate_divisor %d must not be negative", sig.Name, sig.RateDivisor)
		}
	}
	if _, err := m.SignalSpecs(); err != nil {
		return err
	}
	return nil
}

// SignalSpecs converts manifest entries to validated signal specs.
func (m *Manifest) SignalSpecs() ([]core.SignalSpec, error) {
	specs := make([]core.SignalSpec, 0, len(m.Signals))
	for _, sig := range m.Signals {
		kind, err := core.ParseSignalKind(sig.Kind)
		if err != nil {
			return nil, fmt.Errorf("signal %q: %w", sig.Name, err)
		}
		spec := core.SignalSpec{Name: sig.Name, Kind: kind, EnumLabels: sig.Labels}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// RateDivisors collects the signals sampled below the base rate, keyed
// by name.  Full-rate signals are omitted.
func (m *Manifest) RateDivisors() map[string]int {
	out := make(map[string]int)
	for _, sig := range m.Signals {
		if sig.RateDivisor > 1 {
			out[sig.Name] = sig.RateDivisor
		}
	}
	return out
}

// Save writes the manifest as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
