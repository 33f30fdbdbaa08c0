package influxdb_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hearthctl/homie-core/internal/homie"
	"github.com/hearthctl/homie-core/internal/infrastructure/config"
	"github.com/hearthctl/homie-core/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for the local dev InfluxDB.
// These values match docker-compose.yml.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "homiectl-dev-token",
		Org:           "homiectl",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// connectOrSkip connects to the local dev InfluxDB or skips the test.
func connectOrSkip(t *testing.T) *influxdb.Client {
	t.Helper()
	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// trackErrors registers an error callback and returns a getter for the
// last async write error.
func trackErrors(client *influxdb.Client) func() error {
	var writeErr error
	var mu sync.Mutex
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		return writeErr
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client := connectOrSkip(t)
	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error when disabled")
	}
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // Non-existent port

	_, err := influxdb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error for invalid URL")
	}
}

func TestConnect_DefaultBatchSettings(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 0     // Should use default
	cfg.FlushInterval = 0 // Should use default

	client, err := influxdb.Connect(cfg)
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect() with default batch settings")
	}
}

// =============================================================================
// Health Check Tests
// =============================================================================

func TestHealthCheck(t *testing.T) {
	client := connectOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	client := connectOrSkip(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should return error for cancelled context")
	}
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWritePropertyValue_Numeric(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := trackErrors(client)

	ref := homie.NewPropertyRef(
		homie.DefaultDomain,
		homie.MustID("test-device-1"),
		homie.MustID("node-1"),
		homie.MustID("temperature"),
	)
	client.WritePropertyValue(ref, homie.FloatValue(21.5), time.Now())
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	if err := lastErr(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestWritePropertyValue_NonNumeric(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := trackErrors(client)

	ref := homie.NewPropertyRef(
		homie.DefaultDomain,
		homie.MustID("test-device-1"),
		homie.MustID("node-1"),
		homie.MustID("mode"),
	)
	client.WritePropertyValue(ref, homie.EnumValue("heating"), time.Now())
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	if err := lastErr(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestWriteDeviceState(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := trackErrors(client)

	ref := homie.NewDeviceRef(homie.DefaultDomain, homie.MustID("test-device-2"))
	client.WriteDeviceState(ref, homie.StatusReady)
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	if err := lastErr(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestWriteAlert(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := trackErrors(client)

	ref := homie.NewDeviceRef(homie.DefaultDomain, homie.MustID("test-device-3"))
	client.WriteAlert(ref, homie.MustID("overheat"), "temperature above limit")
	client.WriteAlert(ref, homie.MustID("overheat"), "")
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	if err := lastErr(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestWritePoint(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := trackErrors(client)

	client.WritePoint(
		"custom_measurement",
		map[string]string{"source": "test"},
		map[string]interface{}{"value": 99.9, "count": 5},
	)
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	if err := lastErr(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

func TestWritePointWithTime(t *testing.T) {
	client := connectOrSkip(t)
	lastErr := trackErrors(client)

	timestamp := time.Now().Add(-1 * time.Hour)
	client.WritePointWithTime(
		"custom_measurement",
		map[string]string{"source": "test-with-time"},
		map[string]interface{}{"value": 88.8},
		timestamp,
	)
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	if err := lastErr(); err != nil {
		t.Errorf("Write error = %v", err)
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestClose(t *testing.T) {
	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}

	ref := homie.NewDeviceRef(homie.DefaultDomain, homie.MustID("close-test"))
	client.WriteDeviceState(ref, homie.StatusLost)

	// Close should flush and disconnect
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
