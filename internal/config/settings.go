package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/loopbridge/internal/logging"
)

// OSCSettings selects the engine endpoint pair.
type OSCSettings struct {
	Host        string `toml:"host" json:"host"`
	SendPort    int    `toml:"send_port" json:"send_port"`
	ReceivePort int    `toml:"receive_port" json:"receive_port"`
}

// MIDISettings selects the pedalboard output.
type MIDISettings struct {
	Device  string `toml:"device" json:"device"`
	Channel int    `toml:"channel" json:"channel"`
}

// Settings is the runtime-reloadable slice of the config file: the OSC
// endpoint pair, the MIDI device, and log levels. The watcher loads it fresh
// on every file change so handlers never see stale data.
type Settings struct {
	OSC     OSCSettings
	MIDI    MIDISettings
	Logging logging.Config
}

// DefaultSettings returns the built-in defaults: loop4r engine on localhost
// 9000/9001, no MIDI device configured.
func DefaultSettings() Settings {
	return Settings{
		OSC: OSCSettings{
			Host:        "127.0.0.1",
			SendPort:    9000,
			ReceivePort: 9001,
		},
		MIDI: MIDISettings{Channel: 1},
		Logging: logging.Config{
			Level:   "info",
			Format:  "text",
			Modules: make(map[string]string),
		},
	}
}

// LoadSettings reads the runtime settings from a TOML config file. Absent
// keys keep their defaults. A read or parse failure returns the defaults
// alongside the error so callers can keep running on them.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}

	var raw struct {
		OSC     OSCSettings       `toml:"osc"`
		MIDI    MIDISettings      `toml:"midi"`
		Logging map[string]string `toml:"logging"`
	}
	raw.OSC = s.OSC
	raw.MIDI = s.MIDI

	if err := toml.Unmarshal(data, &raw); err != nil {
		return s, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	s.OSC = raw.OSC
	s.MIDI = raw.MIDI
	s.Logging = loggingFromTable(raw.Logging)
	return s, nil
}

// loggingFromTable converts a flat [logging] table into a logging.Config.
// The level and format keys are reserved; every other key is a per-module
// level override.
func loggingFromTable(table map[string]string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	for key, value := range table {
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		default:
			cfg.Modules[key] = value
		}
	}

	return cfg
}
