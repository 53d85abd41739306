// Package events is the typed message bus sections use to announce state
// changes to whoever renders them. Sections publish; the CLI and desktop
// sinks subscribe. Nothing on the bus is required for correctness.
package events

import (
	"reflect"

	"github.com/cskr/pubsub"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/logging"
)

// Topics
const (
	TopicCredentials = "credentials"
	TopicWifi        = "wifi"
	TopicMQTTStatus  = "mqtt.status"
	TopicSession     = "session"
)

// CredentialChanged is published when a credential slot gains or loses a file.
type CredentialChanged struct {
	Slot     string
	FileName string
}

// WifiStateChanged is published on every connection state transition.
type WifiStateChanged struct {
	SSID string
	From string
	To   string
}

// MQTTStatus is published by the status poller after every poll.
type MQTTStatus struct {
	Connected bool
}

// SessionStep is published after each startup step.
type SessionStep struct {
	Step string
	Err  error
}

// Subscription receives published messages for its topics.
type Subscription chan any

// Publisher is the side of the bus sections depend on.
type Publisher interface {
	Publish(topic string, msg any)
}

// MessageBus is the full bus.
type MessageBus interface {
	Publisher
	Subscribe(topics ...string) Subscription
	Unsubscribe(ch Subscription, topics ...string)
	Close()
}

// DefaultCapacity is the per-subscriber buffer.
const DefaultCapacity = 64

// Bus implements MessageBus over cskr/pubsub.
type Bus struct {
	ps *pubsub.PubSub
}

var _ MessageBus = (*Bus)(nil)

// New creates a bus.
func New() *Bus {
	return &Bus{ps: pubsub.New(DefaultCapacity)}
}

func (b *Bus) Publish(topic string, msg any) {
	logging.Debug("publish", zap.String("topic", topic), zap.String("payload_type", payloadType(msg)))
	b.ps.Pub(msg, topic)
}

func (b *Bus) Subscribe(topics ...string) Subscription {
	logging.Debug("subscribe", zap.Strings("topics", topics))
	return b.ps.Sub(topics...)
}

func (b *Bus) Unsubscribe(ch Subscription, topics ...string) {
	if len(topics) == 0 {
		b.ps.Unsub(ch)
		return
	}
	b.ps.Unsub(ch, topics...)
}

// Close shuts the bus down and closes every subscription.
func (b *Bus) Close() {
	b.ps.Shutdown()
}

// Publish sends msg on p if p is not nil.
func Publish(p Publisher, topic string, msg any) {
	if p == nil {
		return
	}
	p.Publish(topic, msg)
}

func payloadType(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
