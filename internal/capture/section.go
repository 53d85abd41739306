package capture

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/codec"
	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

// PIR holds the motion sensor settings as display values.
type PIR struct {
	Sensitivity float64 // 0-255
	BlindTime   float64 // seconds, 0.5-8
	Pulse       float64 // count, 1-4
	Window      float64 // seconds, 2-8
}

// PIRFromRegisters converts device registers to display values.
func PIRFromRegisters(t deviceconfig.TriggerParams) PIR {
	return PIR{
		Sensitivity: codec.SensitivityDisplay(t.Sensitivity),
		BlindTime:   codec.BlindTimeDisplay(t.Blind),
		Pulse:       codec.PulseDisplay(t.Pulse),
		Window:      codec.WindowDisplay(t.Window),
	}
}

// Registers converts display values to device registers, clamping each one.
func (p PIR) Registers() (sens, blind, pulse, window int) {
	return codec.SensitivityRegister(p.Sensitivity),
		codec.BlindTimeRegister(p.BlindTime),
		codec.PulseRegister(p.Pulse),
		codec.WindowRegister(p.Window)
}

// Section owns the capture and trigger parameter groups.
type Section struct {
	gw    deviceconfig.Gateway
	ports notify.Ports

	mu      sync.Mutex
	params  deviceconfig.CaptureParams
	trigger deviceconfig.TriggerParams
	memory  TriggerMemory
}

// NewSection creates a section holding factory defaults until Load.
func NewSection(gw deviceconfig.Gateway, ports notify.Ports) *Section {
	return &Section{
		gw:    gw,
		ports: ports.WithDefaults(),
		params: deviceconfig.CaptureParams{
			ScheduledCapture: 1,
			ScheduleMode:     deviceconfig.CaptureInterval,
			IntervalValue:    8,
			IntervalUnit:     deviceconfig.UnitHour,
			CamWarmupMs:      deviceconfig.DefaultCamWarmupMs,
		},
		trigger: deviceconfig.TriggerParams{
			Sensitivity: deviceconfig.DefaultTriggerSens,
			Blind:       deviceconfig.DefaultTriggerBlind,
			Pulse:       deviceconfig.DefaultTriggerPulse,
			Window:      deviceconfig.DefaultTriggerWindow,
		},
		memory: NewTriggerMemory(),
	}
}

// Params returns a copy of the capture group.
func (s *Section) Params() deviceconfig.CaptureParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Clone()
}

// Trigger returns the trigger group with the effective mode.
func (s *Section) Trigger() deviceconfig.TriggerParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.trigger
	t.Mode = s.memory.Current()
	return t
}

// Memory returns the trigger mode memory.
func (s *Section) Memory() TriggerMemory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory
}

// PIR returns the motion sensor settings as display values.
func (s *Section) PIR() PIR {
	return PIRFromRegisters(s.Trigger())
}

func (s *Section) fail(err error) error {
	s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
	return err
}

// Load reads the capture group and then the trigger group. The trigger
// group is not read if the capture read fails.
func (s *Section) Load(ctx context.Context) error {
	var params deviceconfig.CaptureParams
	if err := s.gw.Read(ctx, deviceconfig.GetCapParam, &params); err != nil {
		return s.fail(fmt.Errorf("read capture params: %w", err))
	}
	if params.CamWarmupMs == 0 {
		params.CamWarmupMs = deviceconfig.DefaultCamWarmupMs
	}

	s.mu.Lock()
	s.params = params
	s.mu.Unlock()

	return s.LoadTrigger(ctx)
}

// LoadTrigger reads the trigger group and reconciles the mode memory with
// it.
func (s *Section) LoadTrigger(ctx context.Context) error {
	var trigger deviceconfig.TriggerParams
	if err := s.gw.Read(ctx, deviceconfig.GetTriggerParam, &trigger); err != nil {
		return s.fail(fmt.Errorf("read trigger params: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trigger = trigger
	s.memory.Adopt(trigger.Mode, s.params.AlarmInCapture.Bool())
	logging.Debug("Trigger reconciled",
		zap.Int("device_mode", trigger.Mode),
		zap.Int("current", s.memory.Current()),
		zap.Int("saved", s.memory.Saved()),
	)
	return nil
}

func validate(p *deviceconfig.CaptureParams) error {
	if p.ScheduleMode == deviceconfig.CaptureInterval {
		if err := deviceconfig.ValidateInterval(p.IntervalValue); err != nil {
			return err
		}
	}
	if err := deviceconfig.ValidateRange("intervalUnit", p.IntervalUnit, deviceconfig.UnitMinute, deviceconfig.UnitDay); err != nil {
		return err
	}
	if err := deviceconfig.ValidateRange("scheCapMode", p.ScheduleMode, deviceconfig.CaptureTimed, deviceconfig.CaptureInterval); err != nil {
		return err
	}
	if p.CamWarmupMs < 0 {
		return deviceconfig.NewFieldError("camWarmupMs", "must not be negative")
	}
	return nil
}

// Save applies edit to a copy of the capture group, validates it and
// writes it. A validation failure sends nothing. A write failure leaves
// both groups as they were. After a successful write the trigger mode
// follows the trigger-capture flag.
func (s *Section) Save(ctx context.Context, edit func(p *deviceconfig.CaptureParams) error) error {
	s.mu.Lock()
	next := s.params.Clone()
	s.mu.Unlock()

	if edit != nil {
		if err := edit(&next); err != nil {
			return err
		}
	}
	if err := validate(&next); err != nil {
		return err
	}
	next.TimedCount = len(next.TimedNodes)
	if next.TimedNodes == nil {
		next.TimedNodes = []deviceconfig.TimedNode{}
	}

	if _, err := s.gw.Write(ctx, deviceconfig.SetCapParam, next); err != nil {
		return s.fail(fmt.Errorf("write capture params: %w", err))
	}

	s.mu.Lock()
	s.params = next
	enabled := next.AlarmInCapture.Bool()
	s.mu.Unlock()

	if !enabled {
		s.mu.Lock()
		s.memory.Disable()
		s.mu.Unlock()
		return s.writeTrigger(ctx, nil)
	}

	s.mu.Lock()
	wasDisabled := !s.memory.Enabled()
	s.memory.Enable()
	s.mu.Unlock()
	if wasDisabled {
		if err := s.writeTrigger(ctx, nil); err != nil {
			return err
		}
	}
	return s.LoadTrigger(ctx)
}

// writeTrigger sends the trigger group with the effective mode. regs, if
// given, replaces the PIR registers once the device accepts them.
func (s *Section) writeTrigger(ctx context.Context, regs *deviceconfig.TriggerParams) error {
	s.mu.Lock()
	payload := s.trigger
	if regs != nil {
		payload = *regs
	}
	payload.Mode = s.memory.Current()
	s.mu.Unlock()

	if _, err := s.gw.Write(ctx, deviceconfig.SetTriggerParam, payload); err != nil {
		return s.fail(fmt.Errorf("write trigger params: %w", err))
	}

	s.mu.Lock()
	s.trigger = payload
	s.mu.Unlock()
	return nil
}

// SetTriggerCapture switches trigger capture on or off.
func (s *Section) SetTriggerCapture(ctx context.Context, enabled bool) error {
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		p.AlarmInCapture = deviceconfig.FlagOf(enabled)
		return nil
	})
}

// SetTriggerMode changes the trigger mode. Trigger capture must be on.
func (s *Section) SetTriggerMode(ctx context.Context, mode int) error {
	s.mu.Lock()
	if !s.params.AlarmInCapture.Bool() {
		s.mu.Unlock()
		return deviceconfig.NewFieldError("trigger_mode", "trigger capture is disabled")
	}
	err := s.memory.Select(mode)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.writeTrigger(ctx, nil)
}

// SetPIR writes new motion sensor settings. Out-of-range values are
// clamped, never rejected.
func (s *Section) SetPIR(ctx context.Context, p PIR) error {
	regs := s.Trigger()
	regs.Sensitivity, regs.Blind, regs.Pulse, regs.Window = p.Registers()
	return s.writeTrigger(ctx, &regs)
}

// SetScheduledCapture switches scheduled capture on or off.
func (s *Section) SetScheduledCapture(ctx context.Context, enabled bool) error {
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		p.ScheduledCapture = deviceconfig.FlagOf(enabled)
		return nil
	})
}

// SetScheduleMode selects timed or interval capture.
func (s *Section) SetScheduleMode(ctx context.Context, mode int) error {
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		p.ScheduleMode = mode
		return nil
	})
}

// SetInterval sets the interval capture period.
func (s *Section) SetInterval(ctx context.Context, value, unit int) error {
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		p.IntervalValue = value
		p.IntervalUnit = unit
		return nil
	})
}

// AddTime adds a timed capture entry built from raw time fields.
func (s *Section) AddTime(ctx context.Context, day int, hour, minute, second string) error {
	node, err := deviceconfig.NewTimedNode(day, hour, minute, second)
	if err != nil {
		return err
	}
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		nodes, err := deviceconfig.AppendTimedNode(p.TimedNodes, node, deviceconfig.MaxCaptureNodes)
		p.TimedNodes = nodes
		return err
	})
}

// RemoveTime deletes the timed capture entry at index.
func (s *Section) RemoveTime(ctx context.Context, index int) error {
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		nodes, err := deviceconfig.RemoveTimedNode(p.TimedNodes, index)
		p.TimedNodes = nodes
		return err
	})
}

// SetWarmup sets the camera warm-up delay.
func (s *Section) SetWarmup(ctx context.Context, ms int) error {
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		p.CamWarmupMs = ms
		return nil
	})
}

// SetButtonCapture switches capture on button press on or off.
func (s *Section) SetButtonCapture(ctx context.Context, enabled bool) error {
	return s.Save(ctx, func(p *deviceconfig.CaptureParams) error {
		p.ButtonCapture = deviceconfig.FlagOf(enabled)
		return nil
	})
}
