package configurator

// Config points to the on-disk locations of the configurator. Defaults are
// derived from the user config directory; flags override them.
type Config struct {
	DataDir      string `json:"dataDir"`
	SettingsFile string `json:"settingsFile"`
	Debug        bool   `json:"debug"`
}
