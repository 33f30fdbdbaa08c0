package mqtt

import (
	"context"
	"fmt"

	"github.com/hearthctl/homie-core/internal/homie"
)

// SubscribeSet subscribes a whole set of protocol topics, all routed to the
// same handler. The discovery engine works in subscription sets (a device's
// attribute topics, a description's property topics), so set granularity is
// the native unit here.
//
// Subscriptions are applied one by one; on the first failure the already
// applied subscriptions stay active and the error is returned.
func (c *Client) SubscribeSet(subs []homie.Subscription, handler MessageHandler) error {
	for _, sub := range subs {
		if err := c.Subscribe(sub.Topic, sub.QoS, handler); err != nil {
			return fmt.Errorf("subscribing %s: %w", sub.Topic, err)
		}
	}
	return nil
}

// UnsubscribeSet removes a set of topic subscriptions. Like SubscribeSet it
// stops at the first failure.
func (c *Client) UnsubscribeSet(topics []string) error {
	for _, topic := range topics {
		if err := c.Unsubscribe(topic); err != nil {
			return fmt.Errorf("unsubscribing %s: %w", topic, err)
		}
	}
	return nil
}

// Transport adapts the client to the discovery engine's transport
// interface. Every subscription made through it delivers messages to the
// single handler fixed at construction, which is the engine's inbound
// message channel.
type Transport struct {
	client  *Client
	handler MessageHandler
}

// NewTransport creates a transport routing all received messages to handler.
func NewTransport(client *Client, handler MessageHandler) *Transport {
	return &Transport{client: client, handler: handler}
}

// Subscribe applies a subscription set, honoring context cancellation
// between individual subscriptions.
func (t *Transport) Subscribe(ctx context.Context, subs []homie.Subscription) error {
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.client.Subscribe(sub.Topic, sub.QoS, t.handler); err != nil {
			return fmt.Errorf("subscribing %s: %w", sub.Topic, err)
		}
	}
	return nil
}

// Unsubscribe removes a topic set, honoring context cancellation between
// individual topics.
func (t *Transport) Unsubscribe(ctx context.Context, topics []string) error {
	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.client.Unsubscribe(topic); err != nil {
			return fmt.Errorf("unsubscribing %s: %w", topic, err)
		}
	}
	return nil
}
