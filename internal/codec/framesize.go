package codec

import "fmt"

// FrameSize is the camera resolution enum used by the firmware.
type FrameSize int

const (
	FrameQVGA  FrameSize = 5
	FrameVGA   FrameSize = 8
	FrameSVGA  FrameSize = 9
	FrameXGA   FrameSize = 10
	FrameHD    FrameSize = 11
	FrameSXGA  FrameSize = 12
	FrameUXGA  FrameSize = 13
	FrameFHD   FrameSize = 14
	FrameQXGA  FrameSize = 17
	FrameQSXGA FrameSize = 21
)

// DefaultFrameSize is 1920x1080.
const DefaultFrameSize = FrameFHD

var frameSizes = []struct {
	size          FrameSize
	width, height int
}{
	{FrameQVGA, 320, 240},
	{FrameVGA, 640, 480},
	{FrameSVGA, 800, 600},
	{FrameXGA, 1024, 768},
	{FrameHD, 1280, 720},
	{FrameSXGA, 1280, 1024},
	{FrameUXGA, 1600, 1200},
	{FrameFHD, 1920, 1080},
	{FrameQXGA, 2048, 1536},
	{FrameQSXGA, 2560, 1920},
}

// FrameSizes lists the supported resolutions in ascending order.
func FrameSizes() []FrameSize {
	out := make([]FrameSize, len(frameSizes))
	for i, f := range frameSizes {
		out[i] = f.size
	}
	return out
}

// Valid reports whether the camera accepts f.
func (f FrameSize) Valid() bool {
	_, _, ok := f.Dimensions()
	return ok
}

// Dimensions returns the width and height of f.
func (f FrameSize) Dimensions() (width, height int, ok bool) {
	for _, e := range frameSizes {
		if e.size == f {
			return e.width, e.height, true
		}
	}
	return 0, 0, false
}

// String returns a label like "1920×1080".
func (f FrameSize) String() string {
	w, h, ok := f.Dimensions()
	if !ok {
		return fmt.Sprintf("FrameSize(%d)", int(f))
	}
	return fmt.Sprintf("%d×%d", w, h)
}

// ParseFrameSize accepts either "1920x1080" or "1920×1080".
func ParseFrameSize(s string) (FrameSize, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		if _, err := fmt.Sscanf(s, "%d×%d", &w, &h); err != nil {
			return 0, fmt.Errorf("invalid frame size %q", s)
		}
	}
	for _, e := range frameSizes {
		if e.width == w && e.height == h {
			return e.size, nil
		}
	}
	return 0, fmt.Errorf("unsupported frame size %dx%d", w, h)
}

// Quality bounds. Lower values mean better JPEG quality.
const (
	QualityMin = 0
	QualityMax = 63
)

// ClampQuality limits a JPEG quality value to [0,63].
func ClampQuality(q int) int {
	return clampInt(q, QualityMin, QualityMax)
}
