package homie

import (
	"errors"
	"fmt"
	"strings"
)

// Message is a parsed inbound protocol message.
//
// The concrete types cover the message kinds the discovery engine reacts to;
// BroadcastMessage passes through as an open category.
type Message interface {
	isMessage()
}

// DeviceStateMessage reports a device's lifecycle state ($state).
type DeviceStateMessage struct {
	Device DeviceRef
	State  DeviceStatus
}

// DeviceDescriptionMessage carries a device's versioned description.
type DeviceDescriptionMessage struct {
	Device      DeviceRef
	Description *DeviceDescription
}

// PropertyValueMessage carries a raw (unparsed) property value.
type PropertyValueMessage struct {
	Property PropertyRef
	Value    string
}

// PropertyTargetMessage carries a raw property target value.
type PropertyTargetMessage struct {
	Property PropertyRef
	Target   string
}

// DeviceAlertMessage carries a device alert. An empty Alert clears the id.
type DeviceAlertMessage struct {
	Device  DeviceRef
	AlertID ID
	Alert   string
}

// DeviceRemovalMessage signals a device's removal (empty retained $state).
type DeviceRemovalMessage struct {
	Device DeviceRef
}

// BroadcastMessage is a domain broadcast; the engine passes it through
// unhandled.
type BroadcastMessage struct {
	Domain  Domain
	Subject string
	Payload []byte
}

func (DeviceStateMessage) isMessage()       {}
func (DeviceDescriptionMessage) isMessage() {}
func (PropertyValueMessage) isMessage()     {}
func (PropertyTargetMessage) isMessage()    {}
func (DeviceAlertMessage) isMessage()       {}
func (DeviceRemovalMessage) isMessage()     {}
func (BroadcastMessage) isMessage()         {}

// ErrUnknownTopic is returned when a topic does not belong to the Homie v5
// topic space the controller subscribes to.
var ErrUnknownTopic = errors.New("homie: unknown topic")

// ParseMessage converts a raw topic/payload pair into a typed protocol
// message.
//
// The topic grammar is:
//
//	<domain>/5/$broadcast/<subject...>
//	<domain>/5/<device>/$state
//	<domain>/5/<device>/$description
//	<domain>/5/<device>/$alert/<alert-id>
//	<domain>/5/<device>/<node>/<property>
//	<domain>/5/<device>/<node>/<property>/$target
//
// An empty $state payload is a device removal per the convention.
func ParseMessage(topic string, payload []byte) (Message, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[1] != protocolVersionSegment {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	domain, err := NewDomain(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownTopic, topic, err)
	}

	if parts[2] == broadcastSegment {
		return BroadcastMessage{
			Domain:  domain,
			Subject: strings.Join(parts[3:], "/"),
			Payload: payload,
		}, nil
	}

	deviceID, err := NewID(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownTopic, topic, err)
	}
	device := NewDeviceRef(domain, deviceID)

	switch {
	case len(parts) == 4 && parts[3] == attrState:
		if len(payload) == 0 {
			return DeviceRemovalMessage{Device: device}, nil
		}
		state, err := ParseStatus(string(payload))
		if err != nil {
			return nil, err
		}
		return DeviceStateMessage{Device: device, State: state}, nil

	case len(parts) == 4 && parts[3] == attrDescription:
		desc, err := ParseDescription(payload)
		if err != nil {
			return nil, err
		}
		return DeviceDescriptionMessage{Device: device, Description: desc}, nil

	case len(parts) == 5 && parts[3] == attrAlert:
		alertID, err := NewID(parts[4])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnknownTopic, topic, err)
		}
		return DeviceAlertMessage{Device: device, AlertID: alertID, Alert: string(payload)}, nil

	case len(parts) == 5:
		prop, err := propertyRefFromParts(device, parts[3], parts[4])
		if err != nil {
			return nil, err
		}
		return PropertyValueMessage{Property: prop, Value: string(payload)}, nil

	case len(parts) == 6 && parts[5] == "$target":
		prop, err := propertyRefFromParts(device, parts[3], parts[4])
		if err != nil {
			return nil, err
		}
		return PropertyTargetMessage{Property: prop, Target: string(payload)}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
}

func propertyRefFromParts(device DeviceRef, node, prop string) (PropertyRef, error) {
	nodeID, err := NewID(node)
	if err != nil {
		return PropertyRef{}, fmt.Errorf("%w: node %q: %w", ErrUnknownTopic, node, err)
	}
	propID, err := NewID(prop)
	if err != nil {
		return PropertyRef{}, fmt.Errorf("%w: property %q: %w", ErrUnknownTopic, prop, err)
	}
	return NewPropertyRef(device.Domain, device.DeviceID, nodeID, propID), nil
}
