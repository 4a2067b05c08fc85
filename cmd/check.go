package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smazurov/loopbridge/internal/config"
	"github.com/smazurov/loopbridge/internal/surface"
)

// CreateCheckCmd creates the check command, which validates the config file
// without starting the bridge.
func CreateCheckCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		Long: `Loads the configuration file, validates the OSC port pair, and checks ` +
			`that the configured MIDI device matches an available output port.`,
		Run: func(_ *cobra.Command, _ []string) {
			settings, err := config.LoadSettings(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", configFile, err)
				fmt.Println("Continuing with built-in defaults")
			}

			failed := false

			if settings.OSC.Host == "" {
				fmt.Println("FAIL: osc.host is empty")
				failed = true
			}
			for name, port := range map[string]int{
				"osc.send_port":    settings.OSC.SendPort,
				"osc.receive_port": settings.OSC.ReceivePort,
			} {
				if port < 1 || port > 65535 {
					fmt.Printf("FAIL: %s %d is outside 1-65535\n", name, port)
					failed = true
				}
			}
			if settings.OSC.SendPort == settings.OSC.ReceivePort {
				fmt.Printf("FAIL: send and receive port are both %d\n", settings.OSC.SendPort)
				failed = true
			}

			if ch := settings.MIDI.Channel; ch < 0 || ch > 16 {
				fmt.Printf("FAIL: midi.channel %d is outside 0-16\n", ch)
				failed = true
			}

			if settings.MIDI.Device == "" {
				fmt.Println("WARN: no MIDI device configured, frames will be dropped")
			} else if matched, err := findPort(settings.MIDI.Device); err != nil {
				fmt.Printf("WARN: could not list MIDI ports: %v\n", err)
			} else if matched == "" {
				fmt.Printf("FAIL: no MIDI output port matches %q\n", settings.MIDI.Device)
				failed = true
			} else {
				fmt.Printf("OK: MIDI device %q matches port %q\n", settings.MIDI.Device, matched)
			}

			if failed {
				os.Exit(1)
			}
			fmt.Println("Configuration OK")
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config.toml", "Path to configuration file")
	return cmd
}

// findPort returns the first output port matching the configured name as a
// case-insensitive substring, mirroring how the device is opened.
func findPort(device string) (string, error) {
	ports, err := surface.ListPorts()
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(device)
	for _, name := range ports {
		if strings.Contains(strings.ToLower(name), needle) {
			return name, nil
		}
	}
	return "", nil
}
