// Package publisher periodically reads inverter runtime data and
// publishes it as JSON over MQTT.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/marcelblijleven/goodwe/pkg/inverter"
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

const (
	mqttTimeout       = 3 * time.Second
	disconnectQuiesce = 2000
)

// Source is the inverter side of the publisher, a connected session
// satisfies it.
type Source interface {
	DeviceInfo() *inverter.DeviceInfo
	ReadRuntimeData(ctx context.Context) (*sensor.RuntimeData, error)
}

// Publisher owns one MQTT connection and one inverter source.
type Publisher struct {
	cfg      *Config
	client   mqtt.Client
	source   Source
	topic    string
	interval time.Duration
}

// New connects to the broker named in cfg and returns a publisher
// bound to source.
func New(cfg *Config, source Source) (*Publisher, error) {
	p, err := newWithClient(cfg, source, nil)
	if err != nil {
		return nil, err
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.clientID()).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetWill(p.topic+"/status", "offline", cfg.QOS, true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return nil, errors.Errorf("timed out connecting to broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrapf(err, "connecting to broker %s", cfg.Broker)
	}
	p.client = client
	return p, nil
}

func newWithClient(cfg *Config, source Source, client mqtt.Client) (*Publisher, error) {
	interval, err := cfg.PublishInterval()
	if err != nil {
		return nil, err
	}
	topic := cfg.Topic
	if topic == "" {
		topic = fmt.Sprintf("data/goodwe/v1/%s", source.DeviceInfo().SerialNumber)
	}
	return &Publisher{cfg: cfg, client: client, source: source, topic: topic, interval: interval}, nil
}

// Topic answers the runtime data topic in use.
func (p *Publisher) Topic() string {
	return p.topic
}

// Run publishes runtime data every interval until the context ends.
// Individual read or publish failures are logged and the loop keeps
// going, the inverter may simply be asleep after sunset.
func (p *Publisher) Run(ctx context.Context) error {
	p.publishStatus("online")
	defer func() {
		p.publishStatus("offline")
		p.client.Disconnect(disconnectQuiesce)
	}()

	klog.V(2).InfoS("Publishing runtime data", "topic", p.topic, "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.publishOnce(ctx); err != nil {
		klog.ErrorS(err, "Failed to publish runtime data", "topic", p.topic)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.publishOnce(ctx); err != nil {
				klog.ErrorS(err, "Failed to publish runtime data", "topic", p.topic)
			}
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) error {
	data, err := p.source.ReadRuntimeData(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encoding runtime data")
	}
	token := p.client.Publish(p.topic, p.cfg.QOS, p.cfg.Retain, payload)
	if !token.WaitTimeout(mqttTimeout) {
		return errors.Errorf("timed out publishing to %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "publishing to %s", p.topic)
	}
	klog.V(5).InfoS("Published runtime data", "topic", p.topic, "sensors", data.Len())
	return nil
}

func (p *Publisher) publishStatus(status string) {
	token := p.client.Publish(p.topic+"/status", p.cfg.QOS, true, status)
	if !token.WaitTimeout(mqttTimeout) {
		klog.V(1).InfoS("Timed out publishing status", "topic", p.topic+"/status", "status", status)
		return
	}
	if err := token.Error(); err != nil {
		klog.ErrorS(err, "Failed to publish status", "topic", p.topic+"/status", "status", status)
	}
}
