// Package desktop forwards NE101 notifications and connection changes to
// the operating system's notification center.
package desktop

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

const appTitle = "NE101"

// Payload is one desktop notification.
type Payload struct {
	Title   string
	Content string
}

// Sender delivers payloads to a notification backend.
type Sender interface {
	Send(p Payload)
}

// BeeepSender sends through beeep.
type BeeepSender struct{}

// Send implements Sender. Failures are logged and otherwise ignored.
func (BeeepSender) Send(p Payload) {
	if err := beeep.Notify(p.Title, p.Content, ""); err != nil {
		logging.Debug("Desktop notification failed", zap.Error(err))
	}
}

// Sink is a notify.Sink that mirrors notifications to the desktop.
type Sink struct {
	sender Sender
}

var _ notify.Sink = (*Sink)(nil)

// NewSink creates a sink. A nil sender uses BeeepSender.
func NewSink(sender Sender) *Sink {
	if sender == nil {
		sender = BeeepSender{}
	}
	return &Sink{sender: sender}
}

func (s *Sink) Show(n notify.Notification) {
	title := appTitle
	if n.Kind == notify.Error {
		title = appTitle + " error"
	}
	s.sender.Send(Payload{Title: title, Content: n.Detail})
}

// Clear is a no-op; the desktop expires its own notifications.
func (s *Sink) Clear() {}

// Watcher turns bus events into desktop notifications: Wi-Fi connection
// results and MQTT broker connection changes.
type Watcher struct {
	bus    events.MessageBus
	sender Sender

	mu       sync.Mutex
	mqttSeen bool
	mqttLast bool
}

// NewWatcher creates a watcher. A nil sender uses BeeepSender.
func NewWatcher(bus events.MessageBus, sender Sender) *Watcher {
	if sender == nil {
		sender = BeeepSender{}
	}
	return &Watcher{bus: bus, sender: sender}
}

// Start subscribes and forwards events until ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	sub := w.bus.Subscribe(events.TopicWifi, events.TopicMQTTStatus)

	go func() {
		for {
			select {
			case <-ctx.Done():
				w.bus.Unsubscribe(sub, events.TopicWifi, events.TopicMQTTStatus)
				return
			case raw, ok := <-sub:
				if !ok {
					// Bus closed.
					return
				}
				w.handle(raw)
			}
		}
	}()
}

func (w *Watcher) handle(raw any) {
	switch msg := raw.(type) {
	case events.WifiStateChanged:
		w.handleWifi(msg)
	case events.MQTTStatus:
		w.handleMQTT(msg)
	}
}

func (w *Watcher) handleWifi(msg events.WifiStateChanged) {
	switch msg.To {
	case "connected":
		w.sender.Send(Payload{Title: "Wi-Fi - connected", Content: msg.SSID})
	case "failed":
		w.sender.Send(Payload{Title: "Wi-Fi - failed", Content: fmt.Sprintf("Could not connect to %s", msg.SSID)})
	}
}

// handleMQTT only reports changes; the poller publishes every 2 s.
func (w *Watcher) handleMQTT(msg events.MQTTStatus) {
	w.mu.Lock()
	if w.mqttSeen && w.mqttLast == msg.Connected {
		w.mu.Unlock()
		return
	}
	first := !w.mqttSeen
	w.mqttSeen = true
	w.mqttLast = msg.Connected
	w.mu.Unlock()

	if first && !msg.Connected {
		return
	}
	state := "disconnected"
	if msg.Connected {
		state = "connected"
	}
	w.sender.Send(Payload{Title: "MQTT - " + state, Content: "Camera broker connection " + state})
}
