package controller

import "github.com/hearthctl/homie-core/internal/homie"

// Device is one discovered device: its lifecycle state, its current
// description (nil until the first $description arrives) and the per-device
// value and alert stores.
type Device struct {
	Ref         homie.DeviceRef
	State       homie.DeviceStatus
	Description *homie.DeviceDescription
	Values      *PropertyValueStore
	Alerts      *AlertStore
}

// DeviceUpdateKind classifies the outcome of a $state message.
type DeviceUpdateKind int

const (
	// DeviceNoChange means the device exists and its state did not change.
	DeviceNoChange DeviceUpdateKind = iota
	// DeviceAdded means the device was newly discovered.
	DeviceAdded
	// DeviceStateChanged means a known device transitioned state.
	DeviceStateChanged
)

// DeviceUpdate is the result of DeviceStore.Add.
type DeviceUpdate struct {
	Kind DeviceUpdateKind
	From homie.DeviceStatus
	To   homie.DeviceStatus
}

// DescriptionUpdateKind classifies the outcome of a $description message.
type DescriptionUpdateKind int

const (
	// DescriptionNoChange means the stored description already has the
	// published version.
	DescriptionNoChange DescriptionUpdateKind = iota
	// DescriptionUpdated means the description was installed or replaced.
	DescriptionUpdated
	// DescriptionDeviceNotFound means no device exists for the reference.
	DescriptionDeviceNotFound
)

// DescriptionUpdate is the result of DeviceStore.StoreDescription. From is
// nil on the first install.
type DescriptionUpdate struct {
	Kind DescriptionUpdateKind
	From *homie.DeviceDescription
	To   *homie.DeviceDescription
}

// DeviceStore is the in-memory registry of discovered devices, keyed by
// domain and device id.
type DeviceStore struct {
	domains map[homie.Domain]map[homie.ID]*Device
}

// NewDeviceStore creates an empty device store.
func NewDeviceStore() *DeviceStore {
	return &DeviceStore{domains: make(map[homie.Domain]map[homie.ID]*Device)}
}

// Add applies a $state message: it creates the device on first sight and
// records state transitions afterwards. A repeated equal state is a no-op,
// which makes retained $state replays idempotent.
func (s *DeviceStore) Add(ref homie.DeviceRef, status homie.DeviceStatus) DeviceUpdate {
	if device, ok := s.lookup(ref); ok {
		if device.State == status {
			return DeviceUpdate{Kind: DeviceNoChange, From: status, To: status}
		}
		from := device.State
		device.State = status
		return DeviceUpdate{Kind: DeviceStateChanged, From: from, To: status}
	}

	devices, ok := s.domains[ref.Domain]
	if !ok {
		devices = make(map[homie.ID]*Device)
		s.domains[ref.Domain] = devices
	}
	devices[ref.DeviceID] = &Device{
		Ref:    ref,
		State:  status,
		Values: NewPropertyValueStore(),
		Alerts: NewAlertStore(),
	}
	return DeviceUpdate{Kind: DeviceAdded, To: status}
}

// StoreDescription installs a description on an existing device. The swap
// is version gated: an equal version is a no-op regardless of content, so
// retained replays never churn subscriptions.
func (s *DeviceStore) StoreDescription(ref homie.DeviceRef, desc *homie.DeviceDescription) DescriptionUpdate {
	device, ok := s.lookup(ref)
	if !ok {
		return DescriptionUpdate{Kind: DescriptionDeviceNotFound}
	}
	if device.Description != nil && device.Description.Version == desc.Version {
		return DescriptionUpdate{Kind: DescriptionNoChange}
	}
	from := device.Description
	device.Description = desc
	return DescriptionUpdate{Kind: DescriptionUpdated, From: from, To: desc}
}

// RemoveDevice evicts a device and returns its final in-memory state.
func (s *DeviceStore) RemoveDevice(ref homie.DeviceRef) (*Device, bool) {
	devices, ok := s.domains[ref.Domain]
	if !ok {
		return nil, false
	}
	device, ok := devices[ref.DeviceID]
	if !ok {
		return nil, false
	}
	delete(devices, ref.DeviceID)
	if len(devices) == 0 {
		delete(s.domains, ref.Domain)
	}
	return device, true
}

// GetDevice returns the device for a reference.
func (s *DeviceStore) GetDevice(ref homie.DeviceRef) (*Device, bool) {
	return s.lookup(ref)
}

// GetValueEntry returns the value entry of a property.
func (s *DeviceStore) GetValueEntry(prop homie.PropertyRef) (*PropertyValueEntry, bool) {
	device, ok := s.lookup(prop.DeviceRef())
	if !ok {
		return nil, false
	}
	return device.Values.GetValueEntry(prop.Pointer())
}

// GetPropertyValue returns the last known value of a property.
func (s *DeviceStore) GetPropertyValue(prop homie.PropertyRef) (homie.Value, bool) {
	entry, ok := s.GetValueEntry(prop)
	if !ok || entry.Value == nil {
		return homie.Value{}, false
	}
	return *entry.Value, true
}

// ContainsDevice reports whether the store knows the device.
func (s *DeviceStore) ContainsDevice(ref homie.DeviceRef) bool {
	_, ok := s.lookup(ref)
	return ok
}

// ContainsProperty reports whether a value entry exists for the property.
func (s *DeviceStore) ContainsProperty(prop homie.PropertyRef) bool {
	device, ok := s.lookup(prop.DeviceRef())
	return ok && device.Values.Contains(prop.Pointer())
}

// DeviceState returns a device's own lifecycle state.
func (s *DeviceStore) DeviceState(ref homie.DeviceRef) (homie.DeviceStatus, bool) {
	device, ok := s.lookup(ref)
	if !ok {
		return "", false
	}
	return device.State, true
}

// DeviceStateResolved returns the effective state of a device in a
// root/child hierarchy.
//
// A non-ready device reports its own state. A ready child defers to its
// root device's state when the description names a root and that root is
// known; otherwise the device's own state stands.
func (s *DeviceStore) DeviceStateResolved(ref homie.DeviceRef) (homie.DeviceStatus, bool) {
	device, ok := s.lookup(ref)
	if !ok {
		return "", false
	}
	if device.State != homie.StatusReady {
		return device.State, true
	}
	if device.Description == nil || device.Description.Root == nil {
		return device.State, true
	}
	root, ok := s.lookup(ref.WithID(*device.Description.Root))
	if !ok {
		return device.State, true
	}
	return root.State, true
}

// IsOrphaned reports whether a child device's parent chain is broken: the
// parent is unknown, or a parent's description does not list the device
// among its children. The check walks up until a parent-less device is
// reached; a parent without a description ends the walk as not orphaned.
// A cycle in the parent chain reports orphaned.
func (s *DeviceStore) IsOrphaned(device *Device) bool {
	visited := map[homie.ID]struct{}{device.Ref.DeviceID: {}}

	for {
		if device.Description == nil || device.Description.Parent == nil {
			return false
		}
		parentID := *device.Description.Parent
		if _, seen := visited[parentID]; seen {
			return true
		}
		visited[parentID] = struct{}{}

		parent, ok := s.lookup(device.Ref.WithID(parentID))
		if !ok {
			return true
		}
		if parent.Description == nil {
			return false
		}
		if !parent.Description.HasChild(device.Ref.DeviceID) {
			return true
		}
		device = parent
	}
}

// Domains returns the domains with at least one device.
func (s *DeviceStore) Domains() []homie.Domain {
	domains := make([]homie.Domain, 0, len(s.domains))
	for domain := range s.domains {
		domains = append(domains, domain)
	}
	return domains
}

// Range calls fn for every device until fn returns false. Iteration order
// is unspecified.
func (s *DeviceStore) Range(fn func(*Device) bool) {
	for _, devices := range s.domains {
		for _, device := range devices {
			if !fn(device) {
				return
			}
		}
	}
}

// Clear drops every device.
func (s *DeviceStore) Clear() {
	s.domains = make(map[homie.Domain]map[homie.ID]*Device)
}

// Count returns the total device count across domains.
func (s *DeviceStore) Count() int {
	n := 0
	for _, devices := range s.domains {
		n += len(devices)
	}
	return n
}

func (s *DeviceStore) lookup(ref homie.DeviceRef) (*Device, bool) {
	devices, ok := s.domains[ref.Domain]
	if !ok {
		return nil, false
	}
	device, ok := devices[ref.DeviceID]
	return device, ok
}
