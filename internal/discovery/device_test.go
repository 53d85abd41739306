package discovery

import (
	"testing"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Model:    "NE101",
		ID:       "1A2B3C",
		Hostname: "NE101_1A2B3C.local.",
		IP:       "192.168.4.16",
		Port:     80,
	}

	expected := "NE101 1A2B3C (NE101_1A2B3C.local.) at http://192.168.4.16"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}

	device.Name = "Yard"
	device.Hostname = ""
	if got := device.String(); got != "Yard at http://192.168.4.16" {
		t.Errorf("Device.String() with name = %v", got)
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name:     "standard HTTP port",
			device:   &Device{IP: "192.168.4.16", Port: 80},
			expected: "http://192.168.4.16",
		},
		{
			name:     "unset port",
			device:   &Device{IP: "192.168.1.1"},
			expected: "http://192.168.1.1",
		},
		{
			name:     "custom port",
			device:   &Device{IP: "10.0.0.5", Port: 8080},
			expected: "http://10.0.0.5:8080",
		},
		{
			name:     "IPv6",
			device:   &Device{IP: "fe80::1", Port: 80},
			expected: "http://[fe80::1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{Metadata: map[string]string{"path": "/"}}

	if got := device.GetMetadata("path"); got != "/" {
		t.Errorf("GetMetadata(path) = %q, want /", got)
	}
	if got := device.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}
	if got := (&Device{}).GetMetadata("path"); got != "" {
		t.Errorf("GetMetadata on nil metadata = %q, want empty", got)
	}
}

func TestMacSuffix(t *testing.T) {
	tests := []struct {
		mac  string
		want string
	}{
		{"24:DC:C3:00:11:22", "001122"},
		{"24-dc-c3-aa-bb-cc", "AABBCC"},
		{"24DCC3ABCDEF", "ABCDEF"},
		{"12:34", "1234"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := macSuffix(tt.mac); got != tt.want {
			t.Errorf("macSuffix(%q) = %q, want %q", tt.mac, got, tt.want)
		}
	}
}
