package homie

import "fmt"

// DeviceStatus is the lifecycle state a device publishes on its $state topic.
type DeviceStatus string

const (
	StatusInit         DeviceStatus = "init"
	StatusReady        DeviceStatus = "ready"
	StatusDisconnected DeviceStatus = "disconnected"
	StatusSleeping     DeviceStatus = "sleeping"
	StatusLost         DeviceStatus = "lost"
)

// AllStatuses returns every valid device status.
func AllStatuses() []DeviceStatus {
	return []DeviceStatus{
		StatusInit,
		StatusReady,
		StatusDisconnected,
		StatusSleeping,
		StatusLost,
	}
}

// ParseStatus converts a raw $state payload to a DeviceStatus.
func ParseStatus(s string) (DeviceStatus, error) {
	switch DeviceStatus(s) {
	case StatusInit, StatusReady, StatusDisconnected, StatusSleeping, StatusLost:
		return DeviceStatus(s), nil
	default:
		return "", fmt.Errorf("homie: unknown device status %q", s)
	}
}

func (s DeviceStatus) String() string { return string(s) }
