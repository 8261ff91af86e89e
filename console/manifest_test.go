package console

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/sigplot/core"
	"github.com/panyam/sigplot/viz"
)

const manifestYAML = `
window_ms: 45000
sample_rate_hz: 10
signals:
  - name: temperature
    kind: numeric
  - name: fill_level
    kind: numeric
    rate_divisor: 10
  - name: device_status
    kind: enum
    labels:
      0: "OFF"
      1: "IDLE"
      2: "RUN"
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(manifestYAML))
	require.NoError(t, err)

	assert.Equal(t, int64(45_000), m.WindowMs)
	assert.Equal(t, 10.0, m.SampleRateHz)
	assert.Equal(t, int64(200), m.UpdateMs, "omitted cadence falls back to default")

	specs, err := m.SignalSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, core.KindNumeric, specs[0].Kind)
	assert.Equal(t, core.KindNumeric, specs[1].Kind)
	assert.Equal(t, core.KindEnum, specs[2].Kind)
	assert.Equal(t, "RUN", specs[2].EnumLabels[2])

	// Only the sub-rate signal shows up in the divisor map.
	assert.Equal(t, map[string]int{"fill_level": 10}, m.RateDivisors())
}

func TestParseManifestRejectsNegativeDivisor(t *testing.T) {
	_, err := ParseManifest([]byte(`
signals:
  - name: x
    kind: numeric
    rate_divisor: -2
`))
	assert.Error(t, err)
}

func TestParseManifestRejectsBadKind(t *testing.T) {
	_, err := ParseManifest([]byte(`
signals:
  - name: x
    kind: gauge
`))
	assert.Error(t, err)
}

func TestParseManifestRejectsEmptySignals(t *testing.T) {
	_, err := ParseManifest([]byte(`window_ms: 1000`))
	assert.ErrorIs(t, err, core.ErrNoSignals)
}

func TestManifestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.yaml")
	require.NoError(t, DefaultManifest().Save(path))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultManifest(), m)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultManifestBuildsSession(t *testing.T) {
	m := DefaultManifest()
	specs, err := m.SignalSpecs()
	require.NoError(t, err)

	s, err := NewSession(specs, m.WindowMs, viz.BuilderOptions{})
	require.NoError(t, err)
	cfg, err := s.Config()
	require.NoError(t, err)
	assert.Len(t, cfg.Series, len(m.Signals))
}
