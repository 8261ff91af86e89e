package console

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/panyam/sigplot/core"
)

// DefaultMQTTTopicPrefix is the root of the ingest topic tree.
const DefaultMQTTTopicPrefix = "sigplot/ingest"

// MQTTOptions configures the broker subscription.
type MQTTOptions struct {
	// Broker address, e.g. "tcp://localhost:1883".
	Broker string

	// ClientID defaults to a fresh "sigplot-xxxxxxxx".
	ClientID string

	// TopicPrefix defaults to DefaultMQTTTopicPrefix.
	TopicPrefix string

	QoS byte
}

func (o MQTTOptions) withDefaults() MQTTOptions {
	if o.ClientID == "" {
		o.ClientID = "sigplot-" + uuid.New().String()[:8]
	}
	if o.TopicPrefix == "" {
		o.TopicPrefix = DefaultMQTTTopicPrefix
	}
	return o
}

// MQTTIngest subscribes to a broker and appends arriving samples to a
// session.  Two payload shapes are accepted:
//
//	<prefix>/batch          {"signals": {"temperature": [[ts, v], ...]}}
//	<prefix>/signal/<name>  [[ts, v], ...]
//
// Malformed or rejected payloads are logged and dropped so a bad
// producer cannot stop the ingest.
type MQTTIngest struct {
	session *Session
	opts    MQTTOptions
	client  paho.Client
}

// NewMQTTIngest connects to the broker and subscribes to the ingest
// topics.
func NewMQTTIngest(session *Session, opts MQTTOptions) (*MQTTIngest, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("broker address is required")
	}

	m := &MQTTIngest{
		session: session,
		opts:    opts.withDefaults(),
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(m.opts.Broker).
		SetClientID(m.opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			// Runs on every reconnect so subscriptions survive broker restarts
			topic := m.opts.TopicPrefix + "/#"
			token := c.Subscribe(topic, m.opts.QoS, m.handleMessage)
			if !token.WaitTimeout(5 * time.Second) {
				core.Error("MQTT subscribe to %s timed out", topic)
				return
			}
			if err := token.Error(); err != nil {
				core.Error("MQTT subscribe to %s failed: %v", topic, err)
				return
			}
			core.Info("MQTT subscribed to %s", topic)
		})

	client := paho.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	m.client = client
	return m, nil
}

func (m *MQTTIngest) handleMessage(_ paho.Client, msg paho.Message) {
	if err := m.dispatch(msg.Topic(), msg.Payload()); err != nil {
		core.Warn("MQTT message on %s dropped: %v", msg.Topic(), err)
	}
}

// dispatch routes one message by topic and applies it to the session.
func (m *MQTTIngest) dispatch(topic string, payload []byte) error {
	rest := strings.TrimPrefix(topic, m.opts.TopicPrefix+"/")
	if rest == topic {
		return fmt.Errorf("unexpected topic %q", topic)
	}

	switch {
	case rest == "batch":
		var req DataBatchRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("bad batch payload: %w", err)
		}
		batch, err := DecodeBatch(req)
		if err != nil {
			return err
		}
		return m.session.Append(batch)

	case strings.HasPrefix(rest, "signal/"):
		name := strings.TrimPrefix(rest, "signal/")
		if name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("bad signal topic %q", topic)
		}
		var pairs [][2]float64
		if err := json.Unmarshal(payload, &pairs); err != nil {
			return fmt.Errorf("bad signal payload: %w", err)
		}
		samples, err := decodeSamplePairs(name, pairs)
		if err != nil {
			return err
		}
		return m.session.Append(map[string][]core.Sample{name: samples})

	default:
		return fmt.Errorf("unhandled topic %q", topic)
	}
}

// IsConnected reports whether the broker connection is active.
func (m *MQTTIngest) IsConnected() bool {
	return m.client != nil && m.client.IsConnected()
}

// Close disconnects from the broker.
func (m *MQTTIngest) Close() error {
	if m.client != nil {
		m.client.Disconnect(1000)
	}
	return nil
}
