package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hearthctl/homie-core/internal/homie"
)

// WritePropertyValue records a property value observed on the bus.
//
// Numeric values land in the "value" field; everything else is recorded as
// "value_str" so non-numeric properties (enums, colors, booleans rendered as
// strings) still show up in the series. The write is non-blocking; data is
// batched and sent asynchronously.
//
// Parameters:
//   - ref: Full property reference (domain, device, node, property)
//   - value: The observed value
//   - at: Timestamp of the observation
func (c *Client) WritePropertyValue(ref homie.PropertyRef, value homie.Value, at time.Time) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{}
	if f, ok := value.Float64(); ok {
		fields["value"] = f
	} else {
		fields["value_str"] = value.String()
	}

	point := write.NewPoint(
		"property_values",
		map[string]string{
			"domain":   string(ref.Domain),
			"device":   string(ref.DeviceID),
			"node":     string(ref.NodeID),
			"property": string(ref.PropertyID),
		},
		fields,
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceState records a device lifecycle transition.
//
// Parameters:
//   - ref: Device reference
//   - state: The new lifecycle state ("init", "ready", "lost", ...)
func (c *Client) WriteDeviceState(ref homie.DeviceRef, state homie.DeviceStatus) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"domain": string(ref.Domain),
			"device": string(ref.DeviceID),
		},
		map[string]interface{}{
			"state": string(state),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteAlert records an alert being raised or cleared on a device.
//
// Parameters:
//   - ref: Device reference
//   - alertID: The alert identifier
//   - message: Alert text; empty means the alert was cleared
func (c *Client) WriteAlert(ref homie.DeviceRef, alertID homie.ID, message string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"alerts",
		map[string]string{
			"domain": string(ref.Domain),
			"device": string(ref.DeviceID),
			"alert":  string(alertID),
		},
		map[string]interface{}{
			"message": message,
			"active":  message != "",
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
