package image

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

// Section owns the light and camera groups.
type Section struct {
	gw    deviceconfig.Gateway
	ports notify.Ports

	mu     sync.Mutex
	light  deviceconfig.LightParams
	camera deviceconfig.CameraParams
}

func NewSection(gw deviceconfig.Gateway, ports notify.Ports) *Section {
	return &Section{
		gw:    gw,
		ports: ports.WithDefaults(),
		light: deviceconfig.LightParams{
			Mode:      deviceconfig.LightAuto,
			Duty:      50,
			StartTime: DefaultStartHour + ":00",
			EndTime:   DefaultEndHour + ":00",
		},
		camera: deviceconfig.CameraParams{
			FrameSize: int(codec.DefaultFrameSize),
			Quality:   12,
		},
	}
}

// Light returns the light group, including the last luminance reading.
func (s *Section) Light() deviceconfig.LightParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.light
}

// Camera returns the camera group.
func (s *Section) Camera() deviceconfig.CameraParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *Section) fail(err error) error {
	s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
	return err
}

// Load reads the light group and then the camera group.
func (s *Section) Load(ctx context.Context) error {
	var light deviceconfig.LightParams
	if err := s.gw.Read(ctx, deviceconfig.GetLightParam, &light); err != nil {
		return s.fail(fmt.Errorf("read light params: %w", err))
	}
	s.mu.Lock()
	s.light = light
	s.mu.Unlock()

	var camera deviceconfig.CameraParams
	if err := s.gw.Read(ctx, deviceconfig.GetCamParam, &camera); err != nil {
		return s.fail(fmt.Errorf("read camera params: %w", err))
	}
	s.mu.Lock()
	s.camera = camera
	s.mu.Unlock()
	return nil
}

// RefreshLuminance re-reads the light group for its luminance reading.
// Only the reading is taken; the other light settings keep their local
// values.
func (s *Section) RefreshLuminance(ctx context.Context) (int, error) {
	var light deviceconfig.LightParams
	if err := s.gw.Read(ctx, deviceconfig.GetLightParam, &light); err != nil {
		return 0, s.fail(fmt.Errorf("refresh luminance: %w", err))
	}
	s.mu.Lock()
	s.light.Value = light.Value
	s.mu.Unlock()
	logging.Debug("Luminance refreshed", zap.Int("value", light.Value))
	return light.Value, nil
}

func (s *Section) saveLight(ctx context.Context, edit func(l *deviceconfig.LightParams) error) error {
	s.mu.Lock()
	next := s.light
	s.mu.Unlock()

	if err := edit(&next); err != nil {
		return err
	}
	if err := deviceconfig.ValidateRange("lightMode", next.Mode, deviceconfig.LightAuto, deviceconfig.LightOff); err != nil {
		return err
	}
	if err := deviceconfig.ValidateRange("duty", next.Duty, 0, 100); err != nil {
		return err
	}
	if next.Threshold < 0 {
		return deviceconfig.NewFieldError("threshold", "must not be negative")
	}

	payload := next
	payload.Value = 0
	if _, err := s.gw.Write(ctx, deviceconfig.SetLightParam, payload); err != nil {
		return s.fail(fmt.Errorf("write light params: %w", err))
	}

	s.mu.Lock()
	next.Value = s.light.Value
	s.light = next
	s.mu.Unlock()
	return nil
}

// SetLightMode selects auto, custom, always on or always off.
func (s *Section) SetLightMode(ctx context.Context, mode int) error {
	return s.saveLight(ctx, func(l *deviceconfig.LightParams) error {
		l.Mode = mode
		return nil
	})
}

// SetLightLevels sets the luminance threshold and the fill light duty.
func (s *Section) SetLightLevels(ctx context.Context, threshold, duty int) error {
	return s.saveLight(ctx, func(l *deviceconfig.LightParams) error {
		l.Threshold = threshold
		l.Duty = duty
		return nil
	})
}

// SetLightSchedule sets the window during which the fill light may turn
// on in custom mode. It returns the normalized start and end.
func (s *Section) SetLightSchedule(ctx context.Context, startHour, startMinute, endHour, endMinute string) (string, string, error) {
	start, end := NormalizeSchedule(startHour, startMinute, endHour, endMinute)
	err := s.saveLight(ctx, func(l *deviceconfig.LightParams) error {
		l.StartTime = start
		l.EndTime = end
		return nil
	})
	return start, end, err
}

func (s *Section) saveCamera(ctx context.Context, edit func(c *deviceconfig.CameraParams) error) error {
	s.mu.Lock()
	next := s.camera
	s.mu.Unlock()

	if err := edit(&next); err != nil {
		return err
	}
	next.Quality = codec.ClampQuality(next.Quality)

	if _, err := s.gw.Write(ctx, deviceconfig.SetCamParam, next); err != nil {
		return s.fail(fmt.Errorf("write camera params: %w", err))
	}

	s.mu.Lock()
	s.camera = next
	s.mu.Unlock()
	return nil
}

// SetFrameSize changes the capture resolution.
func (s *Section) SetFrameSize(ctx context.Context, size codec.FrameSize) error {
	if !size.Valid() {
		return deviceconfig.NewFieldError("frameSize", fmt.Sprintf("unsupported frame size %d", int(size)))
	}
	return s.saveCamera(ctx, func(c *deviceconfig.CameraParams) error {
		c.FrameSize = int(size)
		return nil
	})
}

// SetQuality sets the JPEG quality, clamped to [0,63], and returns the
// value sent.
func (s *Section) SetQuality(ctx context.Context, quality int) (int, error) {
	quality = codec.ClampQuality(quality)
	return quality, s.saveCamera(ctx, func(c *deviceconfig.CameraParams) error {
		c.Quality = quality
		return nil
	})
}

// Adjust applies edit to the camera group and writes it.
func (s *Section) Adjust(ctx context.Context, edit func(c *deviceconfig.CameraParams)) error {
	return s.saveCamera(ctx, func(c *deviceconfig.CameraParams) error {
		edit(c)
		return nil
	})
}

// ResetAdjustments zeroes brightness, contrast and saturation and turns
// both flips off. Exposure and gain are left alone.
func (s *Section) ResetAdjustments(ctx context.Context) error {
	return s.Adjust(ctx, func(c *deviceconfig.CameraParams) {
		c.Brightness = 0
		c.Contrast = 0
		c.Saturation = 0
		c.FlipHorizontal = 0
		c.FlipVertical = 0
	})
}
