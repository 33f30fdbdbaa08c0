package homie

import (
	"sort"
	"testing"
)

func TestDiscoveryTopics(t *testing.T) {
	subs := DiscoveryTopics(DefaultDomain)
	if len(subs) != 1 {
		t.Fatalf("DiscoveryTopics() returned %d subscriptions", len(subs))
	}
	if subs[0].Topic != "homie/5/+/$state" || subs[0].QoS != DefaultQoS {
		t.Errorf("DiscoveryTopics() = %+v", subs[0])
	}
}

func TestBroadcastTopics(t *testing.T) {
	subs := BroadcastTopics(Domain("factory"))
	if len(subs) != 1 || subs[0].Topic != "factory/5/$broadcast/#" {
		t.Errorf("BroadcastTopics() = %+v", subs)
	}
}

func TestDeviceTopics(t *testing.T) {
	ref := NewDeviceRef(DefaultDomain, MustID("thermostat-1"))
	subs := DeviceTopics(ref)

	want := []string{
		"homie/5/thermostat-1/$state",
		"homie/5/thermostat-1/$description",
		"homie/5/thermostat-1/$alert/+",
	}
	got := TopicSet(subs)
	if len(got) != len(want) {
		t.Fatalf("DeviceTopics() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DeviceTopics()[%d] = %q, want %q", i, got[i], want[i])
		}
		if subs[i].QoS != DefaultQoS {
			t.Errorf("DeviceTopics()[%d].QoS = %d", i, subs[i].QoS)
		}
	}
}

func TestPropertyTopics(t *testing.T) {
	ref := NewDeviceRef(DefaultDomain, MustID("thermostat-1"))
	desc := &DeviceDescription{
		Homie:   "5.0",
		Version: 1,
		Nodes: map[ID]*NodeDescription{
			MustID("hvac"): {
				Properties: map[ID]*PropertyDescription{
					MustID("temperature"): {Datatype: TypeFloat, Retained: true},
					MustID("setpoint"):    {Datatype: TypeFloat, Retained: true, Settable: true},
				},
			},
		},
	}

	got := TopicSet(PropertyTopics(ref, desc))
	sort.Strings(got)

	want := []string{
		"homie/5/thermostat-1/hvac/setpoint",
		"homie/5/thermostat-1/hvac/setpoint/$target",
		"homie/5/thermostat-1/hvac/temperature",
	}
	if len(got) != len(want) {
		t.Fatalf("PropertyTopics() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PropertyTopics()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPropertyTopicsEmptyDescription(t *testing.T) {
	ref := NewDeviceRef(DefaultDomain, MustID("bare-1"))
	if subs := PropertyTopics(ref, &DeviceDescription{Version: 1}); len(subs) != 0 {
		t.Errorf("PropertyTopics() = %v, want none", subs)
	}
}
