package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if dir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(dir, appName) {
		t.Errorf("GetConfigDir() = %v, should contain %v", dir, appName)
	}
}

func TestGetConfigDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, appName); dir != want {
		t.Errorf("GetConfigDir() = %v, want %v", dir, want)
	}
}

func TestGetConfigPathOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, want)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if path != want {
		t.Errorf("GetConfigPath() = %v, want %v", path, want)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Language != LanguageEnglish {
		t.Errorf("NewRegistry().Language = %v, want %v", reg.Language, LanguageEnglish)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.NotificationClear != DefaultNotificationClear {
		t.Errorf("NotificationClear = %v, want %v", reg.Preferences.NotificationClear, DefaultNotificationClear)
	}
	if reg.Preferences.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", reg.Preferences.RequestTimeout, DefaultRequestTimeout)
	}
}

func TestRegistrySetDevice(t *testing.T) {
	reg := NewRegistry()

	first := reg.SetDevice("yard", "http://192.168.1.1")
	first.Timezone = "Europe/Berlin"
	second := reg.SetDevice("yard", "http://10.0.0.7")

	if first != second {
		t.Error("SetDevice() should update the existing profile")
	}
	if second.URL != "http://10.0.0.7" {
		t.Errorf("URL = %v, want http://10.0.0.7", second.URL)
	}
	if second.Timezone != "Europe/Berlin" {
		t.Errorf("Timezone = %v, want it kept across updates", second.Timezone)
	}
}

func TestRegistryRemoveDevice(t *testing.T) {
	reg := NewRegistry()
	reg.SetDevice("yard", "http://192.168.1.1")
	reg.SetDevice("gate", "http://192.168.1.2")
	reg.DefaultDevice = "yard"

	reg.RemoveDevice("yard")

	if reg.GetDevice("yard") != nil {
		t.Error("profile should be gone after RemoveDevice()")
	}
	if reg.DefaultDevice != "" {
		t.Errorf("DefaultDevice = %v, want it cleared", reg.DefaultDevice)
	}

	reg.DefaultDevice = "gate"
	reg.RemoveDevice("other")
	if reg.DefaultDevice != "gate" {
		t.Error("removing another profile should keep the default")
	}
}

func TestRegistryUpdateDeviceSeen(t *testing.T) {
	reg := NewRegistry()
	reg.SetDevice("yard", "http://192.168.1.1")

	before := time.Now()
	reg.UpdateDeviceSeen("yard", "6D6E1A2B")
	reg.UpdateDeviceSeen("missing", "X")

	d := reg.GetDevice("yard")
	if d.Serial != "6D6E1A2B" {
		t.Errorf("Serial = %v, want 6D6E1A2B", d.Serial)
	}
	if d.LastSeen.Before(before) {
		t.Errorf("LastSeen = %v, want at or after %v", d.LastSeen, before)
	}

	reg.UpdateDeviceSeen("yard", "")
	if d.Serial != "6D6E1A2B" {
		t.Error("an empty serial should not overwrite the stored one")
	}
	if reg.GetDevice("missing") != nil {
		t.Error("UpdateDeviceSeen() should not create profiles")
	}
}

func TestRegistryDeviceNames(t *testing.T) {
	reg := NewRegistry()
	reg.SetDevice("yard", "a")
	reg.SetDevice("gate", "b")
	reg.SetDevice("attic", "c")

	got := strings.Join(reg.DeviceNames(), ",")
	if got != "attic,gate,yard" {
		t.Errorf("DeviceNames() = %v, want attic,gate,yard", got)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	reg.SetDevice("yard", "http://192.168.1.1")

	tests := []struct {
		name     string
		def      string
		explicit string
		wantName string
		wantURL  string
		wantErr  bool
	}{
		{"profile by name", "", "yard", "yard", "http://192.168.1.1", false},
		{"explicit url", "yard", "http://10.0.0.9", "", "http://10.0.0.9", false},
		{"default profile", "yard", "", "yard", "http://192.168.1.1", false},
		{"no default", "", "", "", "", true},
		{"dangling default", "gone", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg.DefaultDevice = tt.def
			name, device, err := reg.Resolve(tt.explicit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.wantName {
				t.Errorf("name = %v, want %v", name, tt.wantName)
			}
			if device.URL != tt.wantURL {
				t.Errorf("URL = %v, want %v", device.URL, tt.wantURL)
			}
		})
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() on missing file error = %v", err)
	}
	d := reg.SetDevice("yard", "http://192.168.1.1")
	d.Timezone = "Asia/Shanghai"
	reg.DefaultDevice = "yard"
	reg.Preferences.DesktopNotifications = true
	reg.Preferences.RequestTimeout = 10 * time.Second

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !strings.HasPrefix(string(data), "# NE101 client configuration") {
		t.Error("saved file should start with the header comment")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after Save()")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.DefaultDevice != "yard" {
		t.Errorf("DefaultDevice = %v, want yard", loaded.DefaultDevice)
	}
	got := loaded.GetDevice("yard")
	if got == nil {
		t.Fatal("profile should exist in loaded registry")
	}
	if got.URL != "http://192.168.1.1" || got.Timezone != "Asia/Shanghai" {
		t.Errorf("loaded device = %+v", got)
	}
	if !loaded.Preferences.DesktopNotifications {
		t.Error("DesktopNotifications should survive a round trip")
	}
	if loaded.Preferences.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", loaded.Preferences.RequestTimeout)
	}
}

func TestLoadFromFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if reg.Language != LanguageEnglish {
		t.Errorf("Language = %v, want %v", reg.Language, LanguageEnglish)
	}
	if reg.Devices == nil || reg.Preferences == nil {
		t.Fatal("Devices and Preferences should be initialized")
	}
	if reg.Preferences.NotificationClear != DefaultNotificationClear {
		t.Errorf("NotificationClear = %v, want default", reg.Preferences.NotificationClear)
	}
}

func TestLoadFromRequestTimeout(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Duration
	}{
		{"unset waits indefinitely", "version: 1\n", 0},
		{"explicit", "version: 1\npreferences:\n  request_timeout: 15s\n", 15 * time.Second},
		{"negative is cleared", "version: 1\npreferences:\n  request_timeout: -5s\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			reg, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
			if reg.Preferences.RequestTimeout != tt.want {
				t.Errorf("RequestTimeout = %v, want %v", reg.Preferences.RequestTimeout, tt.want)
			}
		})
	}
}

func TestLoadFromRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"bad language", "version: 1\nlanguage: fr_FR\n"},
		{"malformed yaml", "version: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom() should fail")
			}
		})
	}
}

func TestRegistrySetLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	reg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.SetLanguage("fr_FR"); err == nil {
		t.Error("SetLanguage() should reject unknown languages")
	}
	if reg.Language != LanguageEnglish {
		t.Errorf("Language = %v after rejected change", reg.Language)
	}

	if err := reg.SetLanguage(LanguageChinese); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Language != LanguageChinese {
		t.Errorf("persisted Language = %v, want %v", loaded.Language, LanguageChinese)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func TestLoadUsesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	t.Setenv(EnvConfigPath, path)

	reg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, err := reg.Path()
	if err != nil || got != path {
		t.Errorf("Path() = %v, %v; want %v", got, err, path)
	}
}
