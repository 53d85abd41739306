package deviceconfig

import (
	"testing"
)

func TestNewTimedNode(t *testing.T) {
	tests := []struct {
		name                 string
		day                  int
		hour, minute, second string
		want                 string
		wantErr              bool
	}{
		{"plain", 1, "7", "5", "0", "07:05:00", false},
		{"clamped", EveryDay, "30", "75", "-3", "23:59:00", false},
		{"empty", 0, "", "", "", "00:00:00", false},
		{"bad day", 8, "1", "1", "1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewTimedNode(tt.day, tt.hour, tt.minute, tt.second)
			if tt.wantErr {
				if err == nil || !IsValidationError(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Time != tt.want || n.Day != tt.day {
				t.Errorf("got %+v, want day %d time %s", n, tt.day, tt.want)
			}
		})
	}
}

func TestAppendAndRemoveTimedNode(t *testing.T) {
	var nodes []TimedNode
	var err error
	for i := 0; i < MaxCaptureNodes; i++ {
		nodes, err = AppendTimedNode(nodes, TimedNode{Day: i % 8, Time: "08:00:00"}, MaxCaptureNodes)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if _, err := AppendTimedNode(nodes, TimedNode{}, MaxCaptureNodes); err == nil {
		t.Fatal("expected capacity error")
	}

	orig := append([]TimedNode(nil), nodes...)
	out, err := RemoveTimedNode(nodes, 2)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(out) != MaxCaptureNodes-1 || out[2] != orig[3] {
		t.Errorf("unexpected result %+v", out)
	}
	if nodes[2] != orig[2] {
		t.Error("remove mutated its input")
	}
	if _, err := RemoveTimedNode(nodes, MaxCaptureNodes); err == nil {
		t.Error("expected out of range error")
	}
}
