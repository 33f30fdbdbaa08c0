package controller

import (
	"testing"

	"github.com/hearthctl/homie-core/internal/homie"
)

func ref(id string) homie.DeviceRef {
	return homie.NewDeviceRef(homie.DefaultDomain, homie.MustID(id))
}

func idPtr(id string) *homie.ID {
	v := homie.MustID(id)
	return &v
}

func TestDeviceStoreAdd(t *testing.T) {
	s := NewDeviceStore()
	dev := ref("device-1")

	update := s.Add(dev, homie.StatusInit)
	if update.Kind != DeviceAdded || update.To != homie.StatusInit {
		t.Fatalf("first add = %+v", update)
	}

	update = s.Add(dev, homie.StatusInit)
	if update.Kind != DeviceNoChange {
		t.Fatalf("retained replay = %+v", update)
	}

	update = s.Add(dev, homie.StatusReady)
	if update.Kind != DeviceStateChanged || update.From != homie.StatusInit || update.To != homie.StatusReady {
		t.Fatalf("transition = %+v", update)
	}

	if s.Count() != 1 || !s.ContainsDevice(dev) {
		t.Fatalf("store holds %d devices", s.Count())
	}
}

func TestStoreDescriptionVersionGate(t *testing.T) {
	s := NewDeviceStore()
	dev := ref("device-1")

	if got := s.StoreDescription(dev, &homie.DeviceDescription{Version: 1}); got.Kind != DescriptionDeviceNotFound {
		t.Fatalf("description before state = %+v", got)
	}

	s.Add(dev, homie.StatusReady)

	first := s.StoreDescription(dev, &homie.DeviceDescription{Version: 1, Name: "one"})
	if first.Kind != DescriptionUpdated || first.From != nil {
		t.Fatalf("first install = %+v", first)
	}

	replay := s.StoreDescription(dev, &homie.DeviceDescription{Version: 1, Name: "different content"})
	if replay.Kind != DescriptionNoChange {
		t.Fatalf("equal version = %+v", replay)
	}

	upgrade := s.StoreDescription(dev, &homie.DeviceDescription{Version: 2, Name: "two"})
	if upgrade.Kind != DescriptionUpdated || upgrade.From == nil || upgrade.From.Version != 1 {
		t.Fatalf("upgrade = %+v", upgrade)
	}

	// Version ordering is not required; any different version replaces.
	downgrade := s.StoreDescription(dev, &homie.DeviceDescription{Version: 1, Name: "one again"})
	if downgrade.Kind != DescriptionUpdated {
		t.Fatalf("downgrade = %+v", downgrade)
	}
}

func TestRemoveDevice(t *testing.T) {
	s := NewDeviceStore()
	dev := ref("device-1")
	s.Add(dev, homie.StatusReady)

	removed, ok := s.RemoveDevice(dev)
	if !ok || removed.Ref != dev {
		t.Fatalf("remove = (%v, %v)", removed, ok)
	}
	if _, ok := s.RemoveDevice(dev); ok {
		t.Fatal("second remove succeeded")
	}
	if s.Count() != 0 {
		t.Fatalf("Count = %d after remove", s.Count())
	}
}

func TestGetPropertyValue(t *testing.T) {
	s := NewDeviceStore()
	dev := ref("device-1")
	s.Add(dev, homie.StatusReady)

	prop := homie.NewPropertyRef(dev.Domain, dev.DeviceID, "node-1", "temp")
	if _, ok := s.GetPropertyValue(prop); ok {
		t.Fatal("value before any store")
	}

	device, _ := s.GetDevice(dev)
	device.Values.StoreValue(prop.Pointer(), homie.FloatValue(20.5))

	got, ok := s.GetPropertyValue(prop)
	if !ok || !got.Equal(homie.FloatValue(20.5)) {
		t.Fatalf("GetPropertyValue = (%v, %v)", got, ok)
	}
	if !s.ContainsProperty(prop) {
		t.Fatal("ContainsProperty false for stored property")
	}

	// A target-only entry exists but carries no value.
	targetOnly := homie.NewPropertyRef(dev.Domain, dev.DeviceID, "node-1", "setpoint")
	device.Values.StoreTarget(targetOnly.Pointer(), homie.FloatValue(22))
	if _, ok := s.GetPropertyValue(targetOnly); ok {
		t.Fatal("target-only entry reported a value")
	}
}

func TestDeviceStateResolved(t *testing.T) {
	s := NewDeviceStore()
	root := ref("root-1")
	child := ref("child-1")

	s.Add(root, homie.StatusLost)
	s.Add(child, homie.StatusReady)
	s.StoreDescription(child, &homie.DeviceDescription{
		Version: 1,
		Root:    idPtr("root-1"),
		Parent:  idPtr("root-1"),
	})

	// A ready child defers to its root.
	if got, _ := s.DeviceStateResolved(child); got != homie.StatusLost {
		t.Fatalf("resolved child state = %v, want lost", got)
	}

	// A non-ready child reports its own state.
	s.Add(child, homie.StatusSleeping)
	if got, _ := s.DeviceStateResolved(child); got != homie.StatusSleeping {
		t.Fatalf("resolved sleeping child = %v", got)
	}

	// No root reference falls back to own state.
	if got, _ := s.DeviceStateResolved(root); got != homie.StatusLost {
		t.Fatalf("resolved root = %v", got)
	}

	// Unknown root id falls back to own state.
	orphan := ref("child-2")
	s.Add(orphan, homie.StatusReady)
	s.StoreDescription(orphan, &homie.DeviceDescription{Version: 1, Root: idPtr("gone")})
	if got, _ := s.DeviceStateResolved(orphan); got != homie.StatusReady {
		t.Fatalf("resolved with missing root = %v", got)
	}
}

func TestIsOrphaned(t *testing.T) {
	s := NewDeviceStore()

	addDevice := func(id string, desc *homie.DeviceDescription) *Device {
		t.Helper()
		s.Add(ref(id), homie.StatusReady)
		if desc != nil {
			s.StoreDescription(ref(id), desc)
		}
		device, _ := s.GetDevice(ref(id))
		return device
	}

	// No parent: never orphaned.
	standalone := addDevice("standalone", &homie.DeviceDescription{Version: 1})
	if s.IsOrphaned(standalone) {
		t.Fatal("parent-less device orphaned")
	}

	// Intact two-level chain.
	addDevice("parent-1", &homie.DeviceDescription{Version: 1, Children: []homie.ID{"child-a"}})
	childA := addDevice("child-a", &homie.DeviceDescription{Version: 1, Parent: idPtr("parent-1")})
	if s.IsOrphaned(childA) {
		t.Fatal("intact child orphaned")
	}

	// Parent missing entirely.
	childB := addDevice("child-b", &homie.DeviceDescription{Version: 1, Parent: idPtr("missing-parent")})
	if !s.IsOrphaned(childB) {
		t.Fatal("child with missing parent not orphaned")
	}

	// Parent present but does not list the child.
	addDevice("parent-2", &homie.DeviceDescription{Version: 1, Children: []homie.ID{"someone-else"}})
	childC := addDevice("child-c", &homie.DeviceDescription{Version: 1, Parent: idPtr("parent-2")})
	if !s.IsOrphaned(childC) {
		t.Fatal("unlisted child not orphaned")
	}

	// Parent without a description ends the walk as intact.
	s.Add(ref("parent-3"), homie.StatusInit)
	childD := addDevice("child-d", &homie.DeviceDescription{Version: 1, Parent: idPtr("parent-3")})
	if s.IsOrphaned(childD) {
		t.Fatal("child of undescribed parent orphaned")
	}

	// Three-level chain broken at the top.
	addDevice("mid", &homie.DeviceDescription{
		Version:  1,
		Parent:   idPtr("missing-top"),
		Children: []homie.ID{"leaf"},
	})
	leaf := addDevice("leaf", &homie.DeviceDescription{Version: 1, Parent: idPtr("mid")})
	if !s.IsOrphaned(leaf) {
		t.Fatal("leaf with broken grandparent not orphaned")
	}

	// A parent cycle must terminate and report orphaned.
	addDevice("cycle-a", &homie.DeviceDescription{
		Version:  1,
		Parent:   idPtr("cycle-b"),
		Children: []homie.ID{"cycle-b"},
	})
	cycleB := addDevice("cycle-b", &homie.DeviceDescription{
		Version:  1,
		Parent:   idPtr("cycle-a"),
		Children: []homie.ID{"cycle-a"},
	})
	if !s.IsOrphaned(cycleB) {
		t.Fatal("parent cycle not reported as orphaned")
	}
}

func TestRangeAndClear(t *testing.T) {
	s := NewDeviceStore()
	s.Add(ref("device-1"), homie.StatusReady)
	s.Add(ref("device-2"), homie.StatusInit)
	s.Add(homie.NewDeviceRef("other-domain", "device-3"), homie.StatusReady)

	seen := 0
	s.Range(func(*Device) bool {
		seen++
		return true
	})
	if seen != 3 {
		t.Fatalf("Range visited %d devices, want 3", seen)
	}
	if len(s.Domains()) != 2 {
		t.Fatalf("Domains = %v", s.Domains())
	}

	s.Clear()
	if s.Count() != 0 {
		t.Fatalf("Count = %d after Clear", s.Count())
	}
}
