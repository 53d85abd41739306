package mqtt

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/events"
	"github.com/muurk/ne101/internal/logging"
)

// DefaultPollInterval is the delay between the end of one status read and
// the start of the next.
const DefaultPollInterval = 2 * time.Second

// PollerOption configures a StatusPoller.
type PollerOption func(*StatusPoller)

// WithInterval overrides DefaultPollInterval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *StatusPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPublisher publishes an events.MQTTStatus after every successful read.
func WithPublisher(bus events.Publisher) PollerOption {
	return func(p *StatusPoller) { p.bus = bus }
}

func withObserver(fn func(connected bool)) PollerOption {
	return func(p *StatusPoller) { p.observers = append(p.observers, fn) }
}

// StatusPoller reads the platform group on a self-rescheduling timer and
// reports the broker connection flag. Only one polling loop runs at a
// time.
type StatusPoller struct {
	gw        deviceconfig.Gateway
	interval  time.Duration
	bus       events.Publisher
	observers []func(bool)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStatusPoller(gw deviceconfig.Gateway, opts ...PollerOption) *StatusPoller {
	p := &StatusPoller{gw: gw, interval: DefaultPollInterval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling until ctx is done or Stop is called. It reports
// false and does nothing if a loop is already running.
func (p *StatusPoller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
	return true
}

// Stop ends the loop and waits for an in-flight read to finish.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a loop is active.
func (p *StatusPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *StatusPoller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	logging.Debug("MQTT status poller started", zap.Duration("interval", p.interval))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("MQTT status poller stopped")
			return
		case <-timer.C:
			p.poll(ctx)
			timer.Reset(p.interval)
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context) {
	var params deviceconfig.PlatformParams
	if err := p.gw.Read(ctx, deviceconfig.GetPlatformParam, &params); err != nil {
		if ctx.Err() == nil {
			logging.Warn("MQTT status read failed", zap.Error(err))
		}
		return
	}

	connected := params.MQTT.IsConnected.Bool()
	for _, fn := range p.observers {
		fn(connected)
	}
	events.Publish(p.bus, events.TopicMQTTStatus, events.MQTTStatus{Connected: connected})
}
