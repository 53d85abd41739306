package config

import (
	"fmt"
	"sort"
	"time"
)

// Languages the client can be switched to.
const (
	LanguageEnglish = "en_US"
	LanguageChinese = "zh_CN"
)

// Defaults for a new registry.
const (
	DefaultNotificationClear = 5 * time.Second
	DefaultRequestTimeout    = time.Duration(0) // no per-request limit
)

// Registry represents the entire client configuration file.
type Registry struct {
	Version       int                `yaml:"version"`
	Language      string             `yaml:"language,omitempty"`
	DefaultDevice string             `yaml:"default_device,omitempty"`
	Devices       map[string]*Device `yaml:"devices,omitempty"` // Keyed by profile name
	Preferences   *Preferences       `yaml:"preferences,omitempty"`

	path string
}

// Device is one known camera.
type Device struct {
	URL      string    `yaml:"url"`                // Base URL of the configuration server
	Timezone string    `yaml:"timezone,omitempty"` // IANA zone used for time sync; local zone when empty
	Serial   string    `yaml:"serial,omitempty"`   // Last serial number the camera reported
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// Preferences represents client-wide preferences.
type Preferences struct {
	DesktopNotifications bool          `yaml:"desktop_notifications"`
	NotificationClear    time.Duration `yaml:"notification_clear"` // Notification auto-clear delay
	RequestTimeout       time.Duration `yaml:"request_timeout"`    // Per-request HTTP timeout; 0 waits indefinitely
}

func defaultPreferences() *Preferences {
	return &Preferences{
		NotificationClear: DefaultNotificationClear,
		RequestTimeout:    DefaultRequestTimeout,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Language:    LanguageEnglish,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// GetDevice retrieves a camera profile by name.
// Returns nil if the profile doesn't exist.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// SetDevice creates or updates the URL of a camera profile.
func (r *Registry) SetDevice(name, url string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	device, ok := r.Devices[name]
	if !ok {
		device = &Device{}
		r.Devices[name] = device
	}
	device.URL = url
	return device
}

// RemoveDevice deletes a profile, clearing the default if it pointed there.
func (r *Registry) RemoveDevice(name string) {
	delete(r.Devices, name)
	if r.DefaultDevice == name {
		r.DefaultDevice = ""
	}
}

// UpdateDeviceSeen records a successful session with a camera.
func (r *Registry) UpdateDeviceSeen(name, serial string) {
	device := r.Devices[name]
	if device == nil {
		return
	}
	device.LastSeen = time.Now()
	if serial != "" {
		device.Serial = serial
	}
}

// DeviceNames returns the profile names in sorted order.
func (r *Registry) DeviceNames() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the camera to talk to. An explicit value naming a profile
// selects it; any other explicit value is taken as a URL. Without one the
// default profile is used.
func (r *Registry) Resolve(explicit string) (name string, device *Device, err error) {
	if explicit != "" {
		if d := r.Devices[explicit]; d != nil {
			return explicit, d, nil
		}
		return "", &Device{URL: explicit}, nil
	}
	if r.DefaultDevice == "" {
		return "", nil, fmt.Errorf("no device given and no default device configured")
	}
	d := r.Devices[r.DefaultDevice]
	if d == nil {
		return "", nil, fmt.Errorf("default device %q is not configured", r.DefaultDevice)
	}
	return r.DefaultDevice, d, nil
}

// ValidLanguage reports whether lang is a supported language code.
func ValidLanguage(lang string) bool {
	return lang == LanguageEnglish || lang == LanguageChinese
}
