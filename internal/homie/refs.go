package homie

import "fmt"

// DeviceRef is the stable primary key of a device: (domain, device id).
// It is a comparable value type and safe to use as a map key.
type DeviceRef struct {
	Domain   Domain
	DeviceID ID
}

// NewDeviceRef creates a device reference.
func NewDeviceRef(domain Domain, deviceID ID) DeviceRef {
	return DeviceRef{Domain: domain, DeviceID: deviceID}
}

// WithID returns a reference to a sibling device in the same domain.
func (r DeviceRef) WithID(deviceID ID) DeviceRef {
	return DeviceRef{Domain: r.Domain, DeviceID: deviceID}
}

func (r DeviceRef) String() string {
	return fmt.Sprintf("%s/%s/%s", r.Domain, protocolVersionSegment, r.DeviceID)
}

// PropertyPointer addresses a property within a single device: (node, property).
// It is the key of the per-device property value store.
type PropertyPointer struct {
	NodeID     ID
	PropertyID ID
}

func (p PropertyPointer) String() string {
	return fmt.Sprintf("%s/%s", p.NodeID, p.PropertyID)
}

// PropertyRef is the stable primary key of a property:
// (domain, device id, node id, property id).
type PropertyRef struct {
	Domain     Domain
	DeviceID   ID
	NodeID     ID
	PropertyID ID
}

// NewPropertyRef creates a property reference.
func NewPropertyRef(domain Domain, deviceID, nodeID, propertyID ID) PropertyRef {
	return PropertyRef{
		Domain:     domain,
		DeviceID:   deviceID,
		NodeID:     nodeID,
		PropertyID: propertyID,
	}
}

// DeviceRef returns the reference of the owning device.
func (r PropertyRef) DeviceRef() DeviceRef {
	return DeviceRef{Domain: r.Domain, DeviceID: r.DeviceID}
}

// Pointer returns the device-local part of the reference.
func (r PropertyRef) Pointer() PropertyPointer {
	return PropertyPointer{NodeID: r.NodeID, PropertyID: r.PropertyID}
}

func (r PropertyRef) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		r.Domain, protocolVersionSegment, r.DeviceID, r.NodeID, r.PropertyID)
}
