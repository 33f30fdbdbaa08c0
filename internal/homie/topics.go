package homie

// protocolVersionSegment is the fixed topic segment for Homie v5.
const protocolVersionSegment = "5"

// Device attribute topic suffixes.
const (
	attrState        = "$state"
	attrDescription  = "$description"
	attrAlert        = "$alert"
	broadcastSegment = "$broadcast"
)

// DefaultQoS is the QoS level the controller uses for protocol
// subscriptions. The convention mandates reliable delivery for attribute
// topics, so at-least-once is the floor.
const DefaultQoS byte = 1

// Subscription is a single topic subscription request.
type Subscription struct {
	Topic string
	QoS   byte
}

func deviceTopic(ref DeviceRef, suffix string) string {
	return string(ref.Domain) + "/" + protocolVersionSegment + "/" + string(ref.DeviceID) + "/" + suffix
}

// DiscoveryTopics returns the subscriptions that surface every device's
// $state within a domain. This is the entry point of discovery: retained
// $state messages replay on subscribe and seed the device store.
func DiscoveryTopics(domain Domain) []Subscription {
	return []Subscription{
		{Topic: string(domain) + "/" + protocolVersionSegment + "/+/" + attrState, QoS: DefaultQoS},
	}
}

// BroadcastTopics returns the subscriptions for a domain's broadcast channel.
func BroadcastTopics(domain Domain) []Subscription {
	return []Subscription{
		{Topic: string(domain) + "/" + protocolVersionSegment + "/" + broadcastSegment + "/#", QoS: DefaultQoS},
	}
}

// DeviceTopics returns the attribute subscriptions for a single discovered
// device: lifecycle state, versioned description and the alert channel.
func DeviceTopics(ref DeviceRef) []Subscription {
	return []Subscription{
		{Topic: deviceTopic(ref, attrState), QoS: DefaultQoS},
		{Topic: deviceTopic(ref, attrDescription), QoS: DefaultQoS},
		{Topic: deviceTopic(ref, attrAlert) + "/+", QoS: DefaultQoS},
	}
}

// PropertyTopics returns the value subscriptions for every property a
// description declares, including the $target topic of settable properties.
func PropertyTopics(ref DeviceRef, desc *DeviceDescription) []Subscription {
	var subs []Subscription
	for nodeID, node := range desc.Nodes {
		for propID, prop := range node.Properties {
			base := deviceTopic(ref, string(nodeID)+"/"+string(propID))
			subs = append(subs, Subscription{Topic: base, QoS: DefaultQoS})
			if prop.Settable {
				subs = append(subs, Subscription{Topic: base + "/$target", QoS: DefaultQoS})
			}
		}
	}
	return subs
}

// TopicSet extracts the bare topic strings of a subscription set, the form
// unsubscribe operations take.
func TopicSet(subs []Subscription) []string {
	topics := make([]string, len(subs))
	for i, s := range subs {
		topics[i] = s.Topic
	}
	return topics
}
