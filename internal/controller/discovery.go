package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/hearthctl/homie-core/internal/homie"
)

// Logger defines the logging interface used by the Discovery engine.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Transport is the subscription side of the MQTT connection the engine
// drives. Implementations must be safe to call from the event loop.
type Transport interface {
	Subscribe(ctx context.Context, subs []homie.Subscription) error
	Unsubscribe(ctx context.Context, topics []string) error
}

// ErrDescriptionForUnknownDevice is returned when a $description arrives
// for a device the store has never seen a $state for. With retained
// messages this indicates a protocol violation or a broker replay anomaly.
var ErrDescriptionForUnknownDevice = errors.New("controller: description for unknown device")

// Discovery drives device discovery over a transport: it widens and narrows
// the subscription set as devices appear, describe themselves and leave,
// and reduces every inbound message to at most one Action.
type Discovery struct {
	transport Transport
	logger    Logger
}

// NewDiscovery creates a discovery engine on top of a transport.
func NewDiscovery(transport Transport) *Discovery {
	return &Discovery{transport: transport, logger: noopLogger{}}
}

// SetLogger sets the logger for the engine.
func (d *Discovery) SetLogger(logger Logger) {
	d.logger = logger
}

// Discover starts discovery for a domain by subscribing to its device
// $state wildcard and broadcast channel. Retained $state messages replay
// immediately and seed the store through HandleEvent.
func (d *Discovery) Discover(ctx context.Context, domain homie.Domain) error {
	if err := d.transport.Subscribe(ctx, homie.DiscoveryTopics(domain)); err != nil {
		return fmt.Errorf("subscribing device discovery for %s: %w", domain, err)
	}
	if err := d.transport.Subscribe(ctx, homie.BroadcastTopics(domain)); err != nil {
		return fmt.Errorf("subscribing broadcast for %s: %w", domain, err)
	}
	return nil
}

// StopDiscover stops discovery for a domain. Per-device subscriptions stay
// in place until the devices are removed or the connection drops.
func (d *Discovery) StopDiscover(ctx context.Context, domain homie.Domain) error {
	if err := d.transport.Unsubscribe(ctx, homie.TopicSet(homie.DiscoveryTopics(domain))); err != nil {
		return fmt.Errorf("unsubscribing device discovery for %s: %w", domain, err)
	}
	if err := d.transport.Unsubscribe(ctx, homie.TopicSet(homie.BroadcastTopics(domain))); err != nil {
		return fmt.Errorf("unsubscribing broadcast for %s: %w", domain, err)
	}
	return nil
}

// HandleEvent applies one parsed message to the device store.
//
// Subscription side effects are issued before the action is returned, so a
// returned action always reflects a store state whose subscriptions are
// already reconciled. When the transport fails mid-way the store mutation
// stands; the caller decides whether to resync or tear down.
func (d *Discovery) HandleEvent(ctx context.Context, msg homie.Message, devices *DeviceStore) (Action, error) {
	switch m := msg.(type) {
	case homie.DeviceStateMessage:
		return d.handleState(ctx, m, devices)

	case homie.DeviceDescriptionMessage:
		return d.handleDescription(ctx, m, devices)

	case homie.PropertyValueMessage:
		return d.handlePropertyValue(m, devices), nil

	case homie.PropertyTargetMessage:
		return d.handlePropertyTarget(m, devices), nil

	case homie.DeviceAlertMessage:
		return d.handleAlert(m, devices), nil

	case homie.DeviceRemovalMessage:
		return nil, d.handleRemoval(ctx, m, devices)
	}

	return UnhandledAction{Message: msg}, nil
}

func (d *Discovery) handleState(ctx context.Context, m homie.DeviceStateMessage, devices *DeviceStore) (Action, error) {
	update := devices.Add(m.Device, m.State)
	switch update.Kind {
	case DeviceAdded:
		if err := d.transport.Subscribe(ctx, homie.DeviceTopics(m.Device)); err != nil {
			return nil, fmt.Errorf("subscribing device %s: %w", m.Device, err)
		}
		return NewDeviceAction{Device: m.Device, Status: m.State}, nil

	case DeviceStateChanged:
		return StateChangedAction{Device: m.Device, From: update.From, To: update.To}, nil
	}
	return nil, nil
}

func (d *Discovery) handleDescription(ctx context.Context, m homie.DeviceDescriptionMessage, devices *DeviceStore) (Action, error) {
	update := devices.StoreDescription(m.Device, m.Description)
	switch update.Kind {
	case DescriptionUpdated:
		if update.From != nil {
			if update.From.Version == update.To.Version {
				return nil, nil
			}
			topics := homie.TopicSet(homie.PropertyTopics(m.Device, update.From))
			if err := d.transport.Unsubscribe(ctx, topics); err != nil {
				return nil, fmt.Errorf("unsubscribing stale properties of %s: %w", m.Device, err)
			}
		}
		if err := d.transport.Subscribe(ctx, homie.PropertyTopics(m.Device, update.To)); err != nil {
			return nil, fmt.Errorf("subscribing properties of %s: %w", m.Device, err)
		}
		return DeviceDescriptionChangedAction{Device: m.Device}, nil

	case DescriptionDeviceNotFound:
		d.logger.Warn("description for undiscovered device", "device", m.Device.String())
		return nil, fmt.Errorf("%w: %s", ErrDescriptionForUnknownDevice, m.Device)
	}
	return nil, nil
}

// handlePropertyValue parses a raw value against the declared property and
// either persists it (retained) or passes it through as a trigger
// (non-retained). Undeclared properties and malformed payloads are dropped.
func (d *Discovery) handlePropertyValue(m homie.PropertyValueMessage, devices *DeviceStore) Action {
	device, desc, ok := d.propertyContext(m.Property, devices)
	if !ok {
		return nil
	}
	value, err := homie.ParseValue(m.Value, desc)
	if err != nil {
		d.logger.Debug("dropping malformed property value",
			"property", m.Property.String(), "payload", m.Value, "error", err)
		return nil
	}

	if !desc.Retained {
		return DevicePropertyValueTriggeredAction{Property: m.Property, Value: value}
	}

	update := device.Values.StoreValue(m.Property.Pointer(), value)
	if !update.Changed {
		return nil
	}
	return DevicePropertyValueChangedAction{Property: m.Property, From: update.Old, To: update.New}
}

// handlePropertyTarget persists a target regardless of the property's
// retained flag; a device may announce targets for event-style properties.
func (d *Discovery) handlePropertyTarget(m homie.PropertyTargetMessage, devices *DeviceStore) Action {
	device, desc, ok := d.propertyContext(m.Property, devices)
	if !ok {
		return nil
	}
	target, err := homie.ParseValue(m.Target, desc)
	if err != nil {
		d.logger.Debug("dropping malformed property target",
			"property", m.Property.String(), "payload", m.Target, "error", err)
		return nil
	}

	update := device.Values.StoreTarget(m.Property.Pointer(), target)
	if !update.Changed {
		return nil
	}
	return DevicePropertyTargetChangedAction{Property: m.Property, From: update.Old, To: update.New}
}

func (d *Discovery) handleAlert(m homie.DeviceAlertMessage, devices *DeviceStore) Action {
	device, ok := devices.GetDevice(m.Device)
	if !ok {
		return nil
	}
	update := device.Alerts.StoreAlert(m.AlertID, m.Alert)
	switch update.Kind {
	case AlertNew:
		return DeviceAlertAction{Device: m.Device, AlertID: update.ID, Alert: update.New}
	case AlertChanged:
		return DeviceAlertChangedAction{Device: m.Device, AlertID: update.ID, From: update.Old, To: update.New}
	case AlertCleared:
		return DeviceAlertClearedAction{Device: m.Device, AlertID: update.ID}
	}
	return nil
}

// handleRemoval unsubscribes and evicts. Removal deliberately produces no
// action: the empty retained $state also reaches late-joining controllers
// that never knew the device, so consumers track device lifetimes through
// NewDeviceAction and their own bookkeeping instead.
func (d *Discovery) handleRemoval(ctx context.Context, m homie.DeviceRemovalMessage, devices *DeviceStore) error {
	if err := d.transport.Unsubscribe(ctx, homie.TopicSet(homie.DeviceTopics(m.Device))); err != nil {
		return fmt.Errorf("unsubscribing removed device %s: %w", m.Device, err)
	}

	device, ok := devices.RemoveDevice(m.Device)
	if !ok || device.Description == nil {
		return nil
	}

	topics := homie.TopicSet(homie.PropertyTopics(m.Device, device.Description))
	if err := d.transport.Unsubscribe(ctx, topics); err != nil {
		return fmt.Errorf("unsubscribing properties of removed device %s: %w", m.Device, err)
	}

	d.logger.Info("device removed", "device", m.Device.String())
	return nil
}

// propertyContext resolves the owning device and the property's declared
// description. Properties of unknown devices or outside the current
// description are silently ignored.
func (d *Discovery) propertyContext(prop homie.PropertyRef, devices *DeviceStore) (*Device, *homie.PropertyDescription, bool) {
	device, ok := devices.GetDevice(prop.DeviceRef())
	if !ok || device.Description == nil {
		return nil, nil, false
	}
	desc := device.Description.Property(prop.Pointer())
	if desc == nil {
		return nil, nil, false
	}
	return device, desc, true
}
