package deviceconfig

import (
	"fmt"

	"github.com/muurk/ne101/internal/codec"
)

// Schedule capacities of the firmware's fixed-size node arrays.
const (
	MaxCaptureNodes = 8
	MaxUploadNodes  = 10
)

// NewTimedNode builds a schedule entry from raw time-of-day fields. Each
// field is clamped independently; only the day is validated.
func NewTimedNode(day int, hour, minute, second string) (TimedNode, error) {
	if err := ValidateRange("day", day, 0, EveryDay); err != nil {
		return TimedNode{}, err
	}
	return TimedNode{Day: day, Time: codec.ClockTime(hour, minute, second)}, nil
}

// AppendTimedNode returns nodes with n added, refusing to grow past max.
func AppendTimedNode(nodes []TimedNode, n TimedNode, max int) ([]TimedNode, error) {
	if len(nodes) >= max {
		return nodes, NewFieldError("timedNodes", fmt.Sprintf("at most %d times can be scheduled", max))
	}
	out := make([]TimedNode, 0, len(nodes)+1)
	out = append(out, nodes...)
	return append(out, n), nil
}

// RemoveTimedNode returns nodes without the entry at index i.
func RemoveTimedNode(nodes []TimedNode, i int) ([]TimedNode, error) {
	if i < 0 || i >= len(nodes) {
		return nodes, NewFieldError("timedNodes", fmt.Sprintf("no scheduled time at position %d", i+1))
	}
	out := make([]TimedNode, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	return append(out, nodes[i+1:]...), nil
}
