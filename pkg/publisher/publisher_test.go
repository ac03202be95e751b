package publisher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelblijleven/goodwe/pkg/catalog"
	"github.com/marcelblijleven/goodwe/pkg/inverter"
	"github.com/marcelblijleven/goodwe/pkg/sensor"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "publisher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
broker: tcp://127.0.0.1:1883
topic: solar/garage
interval: 10s
qos: 1
`))
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:1883", cfg.Broker)
	assert.Equal(t, "solar/garage", cfg.Topic)
	interval, err := cfg.PublishInterval()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, interval)
	assert.Equal(t, DefaultClientID, cfg.clientID())
}

func TestLoadConfigRejectsMissingBroker(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "topic: solar/garage\n"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadInterval(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "broker: tcp://h:1883\ninterval: often\n"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "broker: tcp://h:1883\nbrokerr: oops\n"))
	assert.Error(t, err)
}

type fakeSource struct {
	info *inverter.DeviceInfo
	data *sensor.RuntimeData
}

func (f *fakeSource) DeviceInfo() *inverter.DeviceInfo { return f.info }

func (f *fakeSource) ReadRuntimeData(context.Context) (*sensor.RuntimeData, error) {
	return f.data, nil
}

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (fakeToken) Error() error { return nil }

type publication struct {
	topic    string
	retained bool
	payload  string
}

// fakeMQTT records publications, every other client method is unused
// by the publisher.
type fakeMQTT struct {
	mqtt.Client
	published []publication
}

func (f *fakeMQTT) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	var body string
	switch v := payload.(type) {
	case []byte:
		body = string(v)
	case string:
		body = v
	}
	f.published = append(f.published, publication{topic: topic, retained: retained, payload: body})
	return fakeToken{}
}

func (f *fakeMQTT) Disconnect(uint) {}

func newTestSource() *fakeSource {
	data := sensor.NewRuntimeData()
	data.Set("ppv", 4350)
	data.Set("vpv1", 234.3)
	return &fakeSource{
		info: &inverter.DeviceInfo{Family: catalog.FamilyES, SerialNumber: "5048ESA000W00003"},
		data: data,
	}
}

func TestPublisherDerivesTopicFromSerial(t *testing.T) {
	p, err := newWithClient(&Config{Broker: "tcp://h:1883"}, newTestSource(), &fakeMQTT{})
	require.NoError(t, err)
	assert.Equal(t, "data/goodwe/v1/5048ESA000W00003", p.Topic())
}

func TestPublisherPublishesRuntimeData(t *testing.T) {
	client := &fakeMQTT{}
	p, err := newWithClient(&Config{Broker: "tcp://h:1883", Topic: "solar/garage"}, newTestSource(), client)
	require.NoError(t, err)

	require.NoError(t, p.publishOnce(context.Background()))
	require.Len(t, client.published, 1)
	assert.Equal(t, "solar/garage", client.published[0].topic)
	assert.JSONEq(t, `{"ppv":4350,"vpv1":234.3}`, client.published[0].payload)
}

func TestPublisherRunPublishesStatus(t *testing.T) {
	client := &fakeMQTT{}
	p, err := newWithClient(&Config{Broker: "tcp://h:1883", Topic: "solar/garage", Interval: "1h"}, newTestSource(), client)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.GreaterOrEqual(t, len(client.published), 3)
	first := client.published[0]
	assert.Equal(t, "solar/garage/status", first.topic)
	assert.Equal(t, "online", first.payload)
	assert.True(t, first.retained)
	last := client.published[len(client.published)-1]
	assert.Equal(t, "solar/garage/status", last.topic)
	assert.Equal(t, "offline", last.payload)
}
