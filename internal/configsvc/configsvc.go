// Package configsvc loads the turbo-keys settings file.
package configsvc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
)

// Settings tunes the peripheral layer. None of it changes protocol
// correctness; the defaults work for all known units.
type Settings struct {
	// VendorID and ProductIDs select which HID devices count as keypads.
	VendorID   uint16   `json:"vendorId"`
	ProductIDs []uint16 `json:"productIds"`

	// FrameDelayMs pauses between command frames to accommodate slow
	// firmware.
	FrameDelayMs int `json:"frameDelayMs"`

	// ReadTimeoutMs bounds each read in the traffic monitor.
	ReadTimeoutMs int `json:"readTimeoutMs"`
}

func Default() Settings {
	return Settings{
		VendorID:      0x1189,
		ProductIDs:    []uint16{0x8890, 0x8840},
		FrameDelayMs:  0,
		ReadTimeoutMs: 10,
	}
}

// Load reads the settings file, writing the defaults on first run so users
// have a file to edit.
func Load(path string) (Settings, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Default(), fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}
	settings, err := readSettings(absPath)
	switch {
	case os.IsNotExist(err):
		settings = Default()
		if err := writeSettings(absPath, settings); err != nil {
			return settings, fmt.Errorf("failed to initialize settings: %w", err)
		}
	case err != nil:
		return Default(), fmt.Errorf("failed to read settings: %w", err)
	}
	if settings.VendorID == 0 {
		settings.VendorID = Default().VendorID
	}
	if len(settings.ProductIDs) == 0 {
		settings.ProductIDs = Default().ProductIDs
	}
	return settings, nil
}

func readSettings(path string) (Settings, error) {
	def := Default()
	yamlB, err := os.ReadFile(path)
	if err != nil {
		return def, err
	}

	jsonB, err := yaml.YAMLToJSON(yamlB)
	if err != nil {
		return def, fmt.Errorf("failed to convert yaml to json: %w", err)
	}
	err = json.Unmarshal(jsonB, &def)
	if err != nil {
		return def, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	return def, nil
}

func writeSettings(path string, settings Settings) error {
	jsonB, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	yamlB, err := yaml.JSONToYAML(jsonB)
	if err != nil {
		return fmt.Errorf("failed to convert json to yaml: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	err = os.WriteFile(path, yamlB, 0644)
	if err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
