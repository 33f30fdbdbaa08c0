// Package mqtt provides MQTT client connectivity for the controller.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Subscription-set operations for device discovery
//   - Connection health monitoring
//
// # Architecture
//
// The controller speaks the Homie v5 convention over MQTT. Discovery
// subscribes to retained topics ($state, $description, property values), so
// subscription restoration on reconnect implicitly resynchronises the whole
// device view from the broker.
//
//	Controller ↔ MQTT Broker ↔ Homie Devices
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	transport := mqtt.NewTransport(client, routeMessage)
package mqtt
