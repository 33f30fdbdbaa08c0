package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/hearthctl/homie-core/internal/homie"
	"github.com/hearthctl/homie-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
// Broker-backed tests require a running broker at 127.0.0.1:1883 and skip
// when it is unavailable.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "homiectl-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// mustConnect connects to the local broker or skips the test.
func mustConnect(t *testing.T) *Client {
	t.Helper()
	client, err := Connect(testConfig())
	if err != nil {
		t.Skipf("no local broker available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// disconnectedClient builds a client that has never connected, for
// exercising validation paths without a broker.
func disconnectedClient() *Client {
	cfg := testConfig()
	opts := buildClientOptions(cfg)
	return &Client{
		cfg:           cfg,
		options:       opts,
		client:        pahomqtt.NewClient(opts),
		subscriptions: make(map[string]subscription),
	}
}

func noopHandler(string, []byte) error { return nil }

// =============================================================================
// Validation Tests (no broker required)
// =============================================================================

func TestPublishEmptyTopic(t *testing.T) {
	c := disconnectedClient()
	if err := c.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish empty topic error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	c := disconnectedClient()
	if err := c.Publish("homie/5/device-1/$state", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish qos 3 error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	c := disconnectedClient()
	if err := c.Publish("homie/5/device-1/$state", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish disconnected error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := disconnectedClient()

	if err := c.Subscribe("", 1, noopHandler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("homie/5/+/$state", 3, noopHandler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3 error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Subscribe("homie/5/+/$state", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v, want ErrSubscribeFailed", err)
	}
	if err := c.Subscribe("homie/5/+/$state", 1, noopHandler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	c := disconnectedClient()

	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Unsubscribe("homie/5/+/$state"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v, want ErrNotConnected", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client = %v", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	c := disconnectedClient()
	if c.IsConnected() {
		t.Error("IsConnected() = true before Connect")
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	c := disconnectedClient()
	if got := c.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}
	if c.HasSubscription("homie/5/+/$state") {
		t.Error("HasSubscription() = true on empty client")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	c := disconnectedClient()
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	c := disconnectedClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck error = %v, want context.Canceled", err)
	}
}

func TestTransportContextCancelled(t *testing.T) {
	transport := NewTransport(disconnectedClient(), noopHandler)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	subs := homie.DiscoveryTopics(homie.DefaultDomain)
	if err := transport.Subscribe(ctx, subs); !errors.Is(err, context.Canceled) {
		t.Errorf("Subscribe error = %v, want context.Canceled", err)
	}
	if err := transport.Unsubscribe(ctx, homie.TopicSet(subs)); !errors.Is(err, context.Canceled) {
		t.Errorf("Unsubscribe error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// Broker-Backed Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client := mustConnect(t)
	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}

func TestConnectInvalidBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999

	if _, err := Connect(cfg); err == nil {
		t.Fatal("Connect() expected error for invalid broker")
	}
}

func TestPublishSubscribeRoundtrip(t *testing.T) {
	client := mustConnect(t)

	topic := "homie-core-test/5/device-1/node-1/temp"
	payload := []byte("21.5")

	received := make(chan []byte, 1)
	err := client.Subscribe(topic, 1, func(_ string, p []byte) error {
		select {
		case received <- p:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Publish(topic, payload, 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(payload) {
			t.Errorf("received %q, want %q", got, payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message not received within timeout")
	}
}

func TestSubscribeSetTracksAll(t *testing.T) {
	client := mustConnect(t)

	dev := homie.NewDeviceRef(homie.DefaultDomain, homie.MustID("set-test-device"))
	subs := homie.DeviceTopics(dev)

	if err := client.SubscribeSet(subs, noopHandler); err != nil {
		t.Fatalf("SubscribeSet() error = %v", err)
	}
	for _, sub := range subs {
		if !client.HasSubscription(sub.Topic) {
			t.Errorf("subscription %q not tracked", sub.Topic)
		}
	}

	if err := client.UnsubscribeSet(homie.TopicSet(subs)); err != nil {
		t.Fatalf("UnsubscribeSet() error = %v", err)
	}
	if got := client.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d after UnsubscribeSet, want 0", got)
	}
}

func TestWildcardSubscription(t *testing.T) {
	client := mustConnect(t)

	received := make(chan string, 4)
	err := client.Subscribe("homie-core-test/5/+/$state", 1, func(topic string, _ []byte) error {
		received <- topic
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Publish("homie-core-test/5/device-9/$state", []byte("ready"), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case topic := <-received:
		if topic != "homie-core-test/5/device-9/$state" {
			t.Errorf("received on %q", topic)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wildcard message not received")
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	client := mustConnect(t)

	topic := "homie-core-test/5/panic-device/$state"
	fired := make(chan struct{}, 1)
	err := client.Subscribe(topic, 1, func(string, []byte) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		panic("handler blew up")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Publish(topic, []byte("ready"), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-fired:
		// The panic must not take down the client.
		if !client.IsConnected() {
			t.Error("client disconnected after handler panic")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler never invoked")
	}
}
