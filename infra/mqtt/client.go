package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/evdash/core/bridge"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Bridge publishes telemetry snapshots to an MQTT broker.
type Bridge struct {
	cli         pahoClient
	enc         Encoder
	topic       string
	statusTopic string
	qos         byte
	retain      bool
	maxRetries  int
	backoff     time.Duration
	logger      logger.Logger
}

// NewBridge connects to the broker. The client id gets a random suffix so
// several instances can share a broker.
func NewBridge(cfg Config, vehicleID string) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := NewEncoder(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	statusTopic := TopicFor(cfg.StatusTopic, vehicleID)
	opts, err := NewClientOptions(cfg, statusTopic)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_bridge")
	b := &Bridge{
		enc:         enc,
		topic:       TopicFor(cfg.Topic, vehicleID),
		statusTopic: statusTopic,
		qos:         cfg.QoS,
		retain:      cfg.Retain,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:      log,
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected, publishing to %s", b.topic)
		b.cli.Publish(statusTopic, 1, true, "online")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	b.cli = newMQTTClient(opts)
	if token := b.cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return b, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config, statusTopic string) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID + "-" + uuid.NewString()[:8])
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS || cfg.AuthMethod == "tls" || cfg.AuthMethod == "both" {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if statusTopic != "" {
		opts.SetWill(statusTopic, "offline", 1, true)
	}
	return opts, nil
}

// Name implements bridge.Forwarder.
func (b *Bridge) Name() string { return "mqtt" }

// Topic returns the telemetry topic.
func (b *Bridge) Topic() string { return b.topic }

// Forward encodes s and publishes it, retrying with exponential backoff.
func (b *Bridge) Forward(ctx context.Context, s telemetry.Snapshot) error {
	if !b.cli.IsConnected() {
		return bridge.ErrNotConnected
	}
	payload, err := b.enc.Encode(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	var publishErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		token := b.cli.Publish(b.topic, b.qos, b.retain, payload)
		if !token.WaitTimeout(5 * time.Second) {
			publishErr = fmt.Errorf("publish to %s timed out", b.topic)
		} else {
			publishErr = token.Error()
		}
		if publishErr == nil {
			return nil
		}
		b.logger.Debugf("publish attempt %d failed: %v", attempt+1, publishErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.backoff * time.Duration(1<<attempt)):
		}
	}
	return publishErr
}

// Close publishes the offline status and disconnects.
func (b *Bridge) Close() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Publish(b.statusTopic, 1, true, "offline").WaitTimeout(time.Second)
		b.cli.Disconnect(250)
	}
}
