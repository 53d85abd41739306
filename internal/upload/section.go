// Package upload manages the upload-schedule parameter group: when the
// camera pushes captured images to the data-report platform.
package upload

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/notify"
)

// DefaultRetryCount is the retry count shown before the device is read.
const DefaultRetryCount = 3

// Section owns the upload-schedule group.
type Section struct {
	gw    deviceconfig.Gateway
	ports notify.Ports

	mu     sync.Mutex
	params deviceconfig.UploadParams
}

func NewSection(gw deviceconfig.Gateway, ports notify.Ports) *Section {
	return &Section{
		gw:    gw,
		ports: ports.WithDefaults(),
		params: deviceconfig.UploadParams{
			Mode:       deviceconfig.UploadImmediate,
			TimedNodes: []deviceconfig.TimedNode{},
			RetryCount: DefaultRetryCount,
		},
	}
}

// Params returns a copy of the upload group.
func (s *Section) Params() deviceconfig.UploadParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Clone()
}

func (s *Section) Load(ctx context.Context) error {
	var params deviceconfig.UploadParams
	if err := s.gw.Read(ctx, deviceconfig.GetUploadParam, &params); err != nil {
		err = fmt.Errorf("read upload params: %w", err)
		s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return err
	}

	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
	return nil
}

func validate(p *deviceconfig.UploadParams) error {
	if err := deviceconfig.ValidateRange("uploadMode", p.Mode, deviceconfig.UploadImmediate, deviceconfig.UploadScheduled); err != nil {
		return err
	}
	// The firmware stores the count in a single byte.
	return deviceconfig.ValidateRange("retryCount", p.RetryCount, 0, 255)
}

// Save applies edit to a copy of the group, validates it and writes it.
// Local state changes only once the device has acknowledged the write.
func (s *Section) Save(ctx context.Context, edit func(p *deviceconfig.UploadParams) error) error {
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
	if next.TimedNodes == nil {
		next.TimedNodes = []deviceconfig.TimedNode{}
	}
	next.TimedCount = len(next.TimedNodes)

	if _, err := s.gw.Write(ctx, deviceconfig.SetUploadParam, next); err != nil {
		err = fmt.Errorf("write upload params: %w", err)
		s.ports.Notifier.Notify(notify.Error, deviceconfig.GetShortErrorMessage(err))
		return err
	}

	s.mu.Lock()
	s.params = next
	s.mu.Unlock()
	logging.Debug("Upload schedule saved",
		zap.Int("mode", next.Mode),
		zap.Int("timed_count", next.TimedCount),
	)
	return nil
}

// SetMode selects immediate or scheduled upload.
func (s *Section) SetMode(ctx context.Context, mode int) error {
	return s.Save(ctx, func(p *deviceconfig.UploadParams) error {
		p.Mode = mode
		return nil
	})
}

// AddTime adds a scheduled upload entry built from raw time fields.
func (s *Section) AddTime(ctx context.Context, day int, hour, minute, second string) error {
	node, err := deviceconfig.NewTimedNode(day, hour, minute, second)
	if err != nil {
		return err
	}
	return s.Save(ctx, func(p *deviceconfig.UploadParams) error {
		nodes, err := deviceconfig.AppendTimedNode(p.TimedNodes, node, deviceconfig.MaxUploadNodes)
		p.TimedNodes = nodes
		return err
	})
}

// RemoveTime deletes the scheduled upload entry at index.
func (s *Section) RemoveTime(ctx context.Context, index int) error {
	return s.Save(ctx, func(p *deviceconfig.UploadParams) error {
		nodes, err := deviceconfig.RemoveTimedNode(p.TimedNodes, index)
		p.TimedNodes = nodes
		return err
	})
}

// SetRetryCount stores the retry count. The firmware acts on it; this
// client never retries an upload itself.
func (s *Section) SetRetryCount(ctx context.Context, n int) error {
	return s.Save(ctx, func(p *deviceconfig.UploadParams) error {
		p.RetryCount = n
		return nil
	})
}
