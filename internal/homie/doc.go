// Package homie provides the Homie v5 protocol model for the controller.
//
// It defines the addressing hierarchy (domain / device / node / property),
// device lifecycle states, typed property values with per-datatype parsing,
// versioned device descriptions, the parsed inbound message union, and the
// MQTT topic sets a controller subscribes to.
//
// # Key Types
//
//   - Domain, ID: validated protocol identifiers
//   - DeviceRef, PropertyRef: stable keys for devices and properties
//   - DeviceStatus: device lifecycle state ($state attribute)
//   - Value: a typed property value parsed against its declared datatype
//   - DeviceDescription: the versioned metadata tree ($description attribute)
//   - Message: the parsed inbound protocol message union
//
// Descriptions are immutable once constructed: a version change replaces the
// whole tree, it never mutates nodes or properties in place.
package homie
