// Package config provides client configuration for the NE101 tools.
//
// A single YAML file stores known cameras (by profile name), the default
// camera, the interface language and a few client preferences. The file
// follows OS-specific conventions for storage location:
//   - Linux: $XDG_CONFIG_HOME/ne101/config.yaml or $HOME/.config/ne101/config.yaml
//   - macOS: $HOME/.config/ne101/config.yaml
//   - Windows: %LOCALAPPDATA%\ne101\config.yaml
//
// NE101_CONFIG overrides the location entirely.
//
// # Security
//
// Wi-Fi passwords, MQTT passwords and credential files are never written to
// this file. They live on the camera and are prompted for when needed.
//
// # Usage Example
//
//	registry, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.SetDevice("yard", "http://192.168.1.1")
//	registry.DefaultDevice = "yard"
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// A Registry is not safe for concurrent mutation. File operations are
// protected by a mutex and Save writes atomically.
package config
