package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kfadel/gridops/core/model"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakeClient satisfies both paho.Client and the ingestor's client seam so
// OnConnect fires without a broker.
type fakeClient struct {
	opts      *paho.ClientOptions
	connected bool
	topic     string
	qos       byte
	handler   paho.MessageHandler
}

func (f *fakeClient) IsConnected() bool      { return f.connected }
func (f *fakeClient) IsConnectionOpen() bool { return f.connected }
func (f *fakeClient) Connect() paho.Token {
	f.connected = true
	if f.opts.OnConnect != nil {
		f.opts.OnConnect(f)
	}
	return doneToken{}
}
func (f *fakeClient) Disconnect(uint) { f.connected = false }
func (f *fakeClient) Publish(string, byte, bool, interface{}) paho.Token {
	return doneToken{}
}
func (f *fakeClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	f.topic, f.qos, f.handler = topic, qos, cb
	return doneToken{}
}
func (f *fakeClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return doneToken{}
}
func (f *fakeClient) Unsubscribe(...string) paho.Token        { return doneToken{} }
func (f *fakeClient) AddRoute(string, paho.MessageHandler)    {}
func (f *fakeClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type captureStore struct {
	mu       sync.Mutex
	readings []model.Reading
}

func (s *captureStore) Append(_ context.Context, r model.Reading) error {
	s.mu.Lock()
	s.readings = append(s.readings, r)
	s.mu.Unlock()
	return nil
}

func newFakeIngestor(t *testing.T, store *captureStore) (*Ingestor, *fakeClient) {
	t.Helper()
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
		fake.opts = opts
		return fake
	}
	t.Cleanup(func() { newMQTTClient = orig })

	ing, err := NewIngestor(Config{Enabled: true, Broker: "tcp://127.0.0.1:1883"}, store)
	if err != nil {
		t.Fatalf("new ingestor: %v", err)
	}
	return ing, fake
}

func TestIngestorSubscribesOnConnect(t *testing.T) {
	_, fake := newFakeIngestor(t, &captureStore{})
	if fake.topic != "grid/+/reading" {
		t.Fatalf("subscribed topic = %q", fake.topic)
	}
	if fake.qos != 0 {
		t.Fatalf("subscribed qos = %d", fake.qos)
	}
	if fake.handler == nil {
		t.Fatal("no message handler registered")
	}
}

func TestIngestorStoresDecodedReading(t *testing.T) {
	store := &captureStore{}
	_, fake := newFakeIngestor(t, store)

	fake.handler(fake, fakeMessage{
		topic:   "grid/T-07/reading",
		payload: []byte(`{"unit_id":"T-07","timestamp":1719842400000,"load_kw":412.5,"load_pct":91.7,"temperature_c":34.2}`),
	})

	if len(store.readings) != 1 {
		t.Fatalf("stored %d readings, want 1", len(store.readings))
	}
	r := store.readings[0]
	if r.UnitID != "T-07" {
		t.Errorf("unit = %q", r.UnitID)
	}
	if want := time.UnixMilli(1719842400000).UTC(); !r.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", r.Timestamp, want)
	}
	if r.LoadKW != 412.5 || r.LoadPct != 91.7 {
		t.Errorf("load = %.1f kW (%.1f%%)", r.LoadKW, r.LoadPct)
	}
	if r.TempC == nil || *r.TempC != 34.2 {
		t.Errorf("temperature = %v", r.TempC)
	}
}

func TestIngestorUnitFromTopicFallback(t *testing.T) {
	store := &captureStore{}
	_, fake := newFakeIngestor(t, store)

	fake.handler(fake, fakeMessage{
		topic:   "grid/T-04/reading",
		payload: []byte(`{"load_kw":120,"load_pct":40}`),
	})

	if len(store.readings) != 1 {
		t.Fatalf("stored %d readings, want 1", len(store.readings))
	}
	r := store.readings[0]
	if r.UnitID != "T-04" {
		t.Errorf("unit = %q, want T-04", r.UnitID)
	}
	if r.Timestamp.IsZero() {
		t.Error("missing payload timestamp must default to now")
	}
}

func TestIngestorDropsUnusableMessages(t *testing.T) {
	store := &captureStore{}
	_, fake := newFakeIngestor(t, store)

	// not json
	fake.handler(fake, fakeMessage{topic: "grid/T-07/reading", payload: []byte("not json")})
	// no unit id in payload or topic
	fake.handler(fake, fakeMessage{topic: "reading", payload: []byte(`{"load_kw":120}`)})

	if len(store.readings) != 0 {
		t.Fatalf("stored %d readings, want 0", len(store.readings))
	}
}

func TestIngestorDisconnect(t *testing.T) {
	ing, fake := newFakeIngestor(t, &captureStore{})
	if !fake.connected {
		t.Fatal("ingestor did not connect")
	}
	ing.Disconnect()
	if fake.connected {
		t.Fatal("client still connected after Disconnect")
	}
}

func TestUnitFromTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"grid/T-07/reading", "T-07"},
		{"grid/T-07", ""},
		{"T-07", ""},
		{"grid//reading", ""},
	}
	for _, tc := range cases {
		if got := unitFromTopic(tc.topic); got != tc.want {
			t.Errorf("unitFromTopic(%q) = %q, want %q", tc.topic, got, tc.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if cfg.Topic != "grid/+/reading" {
		t.Fatalf("topic = %q", cfg.Topic)
	}
	if cfg.ClientID != "gridops-ingestor" {
		t.Fatalf("client id = %q", cfg.ClientID)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatal("expected error without broker")
	}
	if err := (Config{Enabled: false}).Validate(); err != nil {
		t.Fatalf("disabled config must validate: %v", err)
	}
	if err := (Config{Enabled: true, Broker: "tcp://localhost:1883"}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
