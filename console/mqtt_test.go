package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestIngest builds an ingest around a session without a broker so
// dispatch can be exercised directly.
func newTestIngest(t *testing.T) (*Session, *MQTTIngest) {
	t.Helper()
	session := newTestSession(t)
	m := &MQTTIngest{
		session: session,
		opts:    MQTTOptions{Broker: "tcp://unused:1883"}.withDefaults(),
	}
	return session, m
}

func TestMQTTDispatchBatchTopic(t *testing.T) {
	session, m := newTestIngest(t)

	err := m.dispatch("sigplot/ingest/batch",
		[]byte(`{"signals": {"temperature": [[1000, 21.5], [1100, 22.0]]}}`))
	require.NoError(t, err)

	samples := session.BufferedData()["temperature"]
	require.Len(t, samples, 2)
	assert.Equal(t, 21.5, samples[0].Value)
}

func TestMQTTDispatchSignalTopic(t *testing.T) {
	session, m := newTestIngest(t)

	err := m.dispatch("sigplot/ingest/signal/device_status", []byte(`[[1000, 1]]`))
	require.NoError(t, err)

	samples := session.BufferedData()["device_status"]
	require.Len(t, samples, 1)
	assert.Equal(t, 1.0, samples[0].Value)
}

func TestMQTTDispatchRejectsUnknownSignal(t *testing.T) {
	session, m := newTestIngest(t)

	err := m.dispatch("sigplot/ingest/signal/bogus", []byte(`[[1000, 1]]`))
	require.Error(t, err)
	assert.Empty(t, session.BufferedData()["temperature"])
}

func TestMQTTDispatchRejectsMalformedPayloads(t *testing.T) {
	_, m := newTestIngest(t)

	assert.Error(t, m.dispatch("sigplot/ingest/batch", []byte(`not json`)))
	assert.Error(t, m.dispatch("sigplot/ingest/signal/temperature", []byte(`{"not": "pairs"}`)))
	assert.Error(t, m.dispatch("sigplot/ingest/signal/temperature", []byte(`[[0.5, 1]]`)))
}

func TestMQTTDispatchRejectsForeignTopics(t *testing.T) {
	_, m := newTestIngest(t)

	assert.Error(t, m.dispatch("other/topic", []byte(`[]`)))
	assert.Error(t, m.dispatch("sigplot/ingest/unknown", []byte(`[]`)))
	assert.Error(t, m.dispatch("sigplot/ingest/signal/", []byte(`[]`)))
	assert.Error(t, m.dispatch("sigplot/ingest/signal/a/b", []byte(`[]`)))
}

func TestMQTTOptionsDefaults(t *testing.T) {
	opts := MQTTOptions{Broker: "tcp://localhost:1883"}.withDefaults()
	assert.Equal(t, DefaultMQTTTopicPrefix, opts.TopicPrefix)
	assert.NotEmpty(t, opts.ClientID)
	assert.Contains(t, opts.ClientID, "sigplot-")

	custom := MQTTOptions{Broker: "b", ClientID: "me", TopicPrefix: "plant/5"}.withDefaults()
	assert.Equal(t, "me", custom.ClientID)
	assert.Equal(t, "plant/5", custom.TopicPrefix)
}

func TestMQTTIngestRequiresBroker(t *testing.T) {
	session := newTestSession(t)
	_, err := NewMQTTIngest(session, MQTTOptions{})
	assert.Error(t, err)
}
