package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "ne101"
	configFile = "config.yaml"

	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "NE101_CONFIG"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/ne101 or $HOME/.config/ne101
//   - macOS: $HOME/.config/ne101 (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\ne101
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file, honoring
// NE101_CONFIG.
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load loads the registry from the default location.
// If the file doesn't exist, returns a new default registry.
func Load() (*Registry, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom loads a registry from path. A missing file yields a default
// registry that saves to path.
func LoadFrom(path string) (*Registry, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		registry := NewRegistry()
		registry.path = path
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if registry.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", registry.Version)
	}
	if registry.Language != "" && !ValidLanguage(registry.Language) {
		return nil, fmt.Errorf("unsupported language %q in config file", registry.Language)
	}

	if registry.Language == "" {
		registry.Language = LanguageEnglish
	}
	if registry.Devices == nil {
		registry.Devices = make(map[string]*Device)
	}
	if registry.Preferences == nil {
		registry.Preferences = defaultPreferences()
	}
	if registry.Preferences.NotificationClear <= 0 {
		registry.Preferences.NotificationClear = DefaultNotificationClear
	}
	if registry.Preferences.RequestTimeout < 0 {
		registry.Preferences.RequestTimeout = DefaultRequestTimeout
	}
	registry.path = path

	return &registry, nil
}

// Path returns where Save writes.
func (r *Registry) Path() (string, error) {
	if r.path != "" {
		return r.path, nil
	}
	return GetConfigPath()
}

// Save saves the registry to disk.
// Performs an atomic write to prevent corruption on crash.
func (r *Registry) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	configPath, err := r.Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# NE101 client configuration
# Known cameras, the default camera and client preferences.
#
# Security Note: Wi-Fi and MQTT passwords are NEVER stored in this file.
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// SetLanguage changes the language preference and saves the registry.
func (r *Registry) SetLanguage(lang string) error {
	if !ValidLanguage(lang) {
		return fmt.Errorf("unsupported language %q (use %s or %s)", lang, LanguageEnglish, LanguageChinese)
	}
	previous := r.Language
	r.Language = lang
	if err := r.Save(); err != nil {
		r.Language = previous
		return err
	}
	return nil
}
