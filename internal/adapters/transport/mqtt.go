package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// Config captures the broker session details.
type Config struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	ClientID         string `yaml:"client_id"`
	QoS              byte   `yaml:"qos"`
	RetryBackoffMS   uint   `yaml:"retry_backoff_ms"`
	ConnectTimeoutMS uint   `yaml:"connect_timeout_ms"`
	PublishTimeoutMS uint   `yaml:"publish_timeout_ms"`
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 1883
	}
	if c.RetryBackoffMS == 0 {
		c.RetryBackoffMS = 5000
	}
	if c.ConnectTimeoutMS == 0 {
		c.ConnectTimeoutMS = 3000
	}
	if c.PublishTimeoutMS == 0 {
		c.PublishTimeoutMS = 2000
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("mqtt port %d out of range", c.Port)
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos %d out of range", c.QoS)
	}
	return nil
}

// BrokerURL is the paho broker URI.
func (c *Config) BrokerURL() string { return "tcp://" + c.Addr() }

// Addr is the plain host:port, as dialed by the network probe.
func (c *Config) Addr() string { return net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) }

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutMS) * time.Millisecond
}

// MQTT is a thin session wrapper around the Eclipse Paho client. Reconnection
// policy lives in the connection tracker, so auto-reconnect stays off and
// Connect is a single attempt.
type MQTT struct {
	cfg    Config
	client mqtt.Client
}

func NewMQTT(cfg Config) (*MQTT, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL())
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout())

	return &MQTT{cfg: cfg, client: mqtt.NewClient(opts)}, nil
}

func (m *MQTT) IsConnected() bool { return m.client.IsConnected() }

func (m *MQTT) Connect(ctx context.Context) error {
	token := m.client.Connect()
	if !token.WaitTimeout(m.cfg.ConnectTimeout()) {
		return fmt.Errorf("connect to %s: timeout after %s", m.cfg.BrokerURL(), m.cfg.ConnectTimeout())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", m.cfg.BrokerURL(), err)
	}
	return nil
}

func (m *MQTT) Publish(ctx context.Context, topic string, payload []byte) error {
	token := m.client.Publish(topic, m.cfg.QoS, false, payload)
	if !token.WaitTimeout(m.cfg.PublishTimeout()) {
		return fmt.Errorf("publish to %s: timeout after %s", topic, m.cfg.PublishTimeout())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (m *MQTT) Close() { m.client.Disconnect(250) }

var _ ports.Transport = (*MQTT)(nil)
