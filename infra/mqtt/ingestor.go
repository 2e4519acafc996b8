// Package mqtt ingests live load readings from an MQTT broker into a
// telemetry store.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kfadel/gridops/core/logger"
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/telemetry"
	zlog "github.com/kfadel/gridops/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled    bool        `json:"enabled"`
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Topic      string      `json:"topic"`
	QoS        byte        `json:"qos"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	TLSConfig  *tls.Config `json:"-"`
}

// SetDefaults fills the topic and client identity.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "grid/+/reading"
	}
	if c.ClientID == "" {
		c.ClientID = "gridops-ingestor"
	}
}

// Validate checks the broker address when ingestion is enabled.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt ingestor: broker is required")
	}
	return nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Ingestor subscribes to reading topics and appends decoded readings to the
// telemetry store.
type Ingestor struct {
	cli   pahoClient
	cfg   Config
	store telemetry.Appender
	log   logger.Logger
}

// readingPayload is the wire format published by field gateways. The unit
// identifier may come from the payload or the topic; the payload wins.
type readingPayload struct {
	UnitID    string   `json:"unit_id"`
	Timestamp int64    `json:"timestamp"`
	LoadKW    float64  `json:"load_kw"`
	LoadPct   float64  `json:"load_pct"`
	TempC     *float64 `json:"temperature_c"`
}

// NewIngestor connects to the broker and subscribes to the reading topic.
func NewIngestor(cfg Config, store telemetry.Appender) (*Ingestor, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := zlog.New("mqtt-ingestor")
	ing := &Ingestor{cfg: cfg, store: store, log: log}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected, subscribing to %s", cfg.Topic)
		if token := c.Subscribe(cfg.Topic, cfg.QoS, ing.onReading); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	ing.cli = cli
	return ing, nil
}

func (i *Ingestor) onReading(_ paho.Client, msg paho.Message) {
	var p readingPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		i.log.Errorf("failed to decode reading on %s: %v", msg.Topic(), err)
		return
	}
	if p.UnitID == "" {
		p.UnitID = unitFromTopic(msg.Topic())
	}
	if p.UnitID == "" {
		i.log.Warnf("reading on %s carries no unit id, dropped", msg.Topic())
		return
	}
	ts := time.Now().UTC()
	if p.Timestamp > 0 {
		ts = time.UnixMilli(p.Timestamp).UTC()
	}
	r := model.Reading{
		UnitID:    p.UnitID,
		Timestamp: ts,
		LoadKW:    p.LoadKW,
		LoadPct:   p.LoadPct,
		TempC:     p.TempC,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := i.store.Append(ctx, r); err != nil {
		i.log.Errorf("failed to store reading for %s: %v", p.UnitID, err)
		return
	}
	i.log.Debugf("stored reading for %s: %.1f kW (%.1f%%)", p.UnitID, p.LoadKW, p.LoadPct)
}

// unitFromTopic extracts the unit segment from topics shaped grid/<unit>/reading.
func unitFromTopic(topic string) string {
	start := -1
	for idx := 0; idx < len(topic); idx++ {
		if topic[idx] == '/' {
			if start < 0 {
				start = idx + 1
			} else {
				return topic[start:idx]
			}
		}
	}
	return ""
}

// Disconnect gracefully closes the MQTT connection.
func (i *Ingestor) Disconnect() {
	if i.cli != nil && i.cli.IsConnected() {
		i.cli.Disconnect(250)
	}
}
