package publisher

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

const (
	DefaultClientID = "goodwe-publisher"
	DefaultInterval = 30 * time.Second
	DefaultQOS      = 1
)

// Config describes the MQTT side of the publisher, loaded from a YAML
// file. The inverter connection itself comes from command line flags.
type Config struct {
	// Broker is the MQTT broker URL, for example tcp://127.0.0.1:1883.
	Broker   string `json:"broker"`
	ClientID string `json:"clientId,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	// Topic is the publish topic. Empty derives data/goodwe/v1/<serial>
	// from the connected inverter.
	Topic string `json:"topic,omitempty"`
	QOS   byte   `json:"qos,omitempty"`
	// Retain marks runtime data messages as retained.
	Retain bool `json:"retain,omitempty"`
	// Interval is the publish period as a duration string.
	Interval string `json:"interval,omitempty"`
}

// LoadConfig reads and validates a publisher config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading publisher config")
	}
	cfg := &Config{}
	if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing publisher config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Broker == "" {
		return errors.New("publisher config misses broker")
	}
	if _, err := c.PublishInterval(); err != nil {
		return err
	}
	return nil
}

// PublishInterval answers the parsed publish period.
func (c *Config) PublishInterval() (time.Duration, error) {
	if c.Interval == "" {
		return DefaultInterval, nil
	}
	interval, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid publish interval %q", c.Interval)
	}
	if interval <= 0 {
		return 0, errors.Errorf("invalid publish interval %q", c.Interval)
	}
	return interval, nil
}

func (c *Config) clientID() string {
	if c.ClientID == "" {
		return DefaultClientID
	}
	return c.ClientID
}
