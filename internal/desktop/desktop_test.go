package desktop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/notify"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []Payload
}

func (f *fakeSender) Send(p Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
}

func (f *fakeSender) payloads() []Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Payload(nil), f.sent...)
}

func TestSinkShow(t *testing.T) {
	sender := &fakeSender{}
	sink := NewSink(sender)

	sink.Show(notify.Notification{Kind: notify.Success, Detail: "MQTT settings saved"})
	sink.Show(notify.Notification{Kind: notify.Error, Detail: "Camera not responding"})
	sink.Clear()

	sent := sender.payloads()
	require.Len(t, sent, 2)
	assert.Equal(t, Payload{Title: "NE101", Content: "MQTT settings saved"}, sent[0])
	assert.Equal(t, "NE101 error", sent[1].Title)
}

func TestWatcherForwardsWifiResults(t *testing.T) {
	bus := events.New()
	defer bus.Close()
	sender := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewWatcher(bus, sender).Start(ctx)

	bus.Publish(events.TopicWifi, events.WifiStateChanged{SSID: "home", From: "idle", To: "connecting"})
	bus.Publish(events.TopicWifi, events.WifiStateChanged{SSID: "home", From: "connecting", To: "connected"})

	require.Eventually(t, func() bool { return len(sender.payloads()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Payload{Title: "Wi-Fi - connected", Content: "home"}, sender.payloads()[0])
}

func TestWatcherReportsOnlyMQTTChanges(t *testing.T) {
	bus := events.New()
	defer bus.Close()
	sender := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewWatcher(bus, sender).Start(ctx)

	// Initial disconnected state is not news.
	for _, connected := range []bool{false, false, true, true, false} {
		bus.Publish(events.TopicMQTTStatus, events.MQTTStatus{Connected: connected})
	}

	require.Eventually(t, func() bool { return len(sender.payloads()) == 2 }, time.Second, 5*time.Millisecond)
	sent := sender.payloads()
	assert.Equal(t, "MQTT - connected", sent[0].Title)
	assert.Equal(t, "MQTT - disconnected", sent[1].Title)
}
