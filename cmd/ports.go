// Package cmd holds the cobra subcommands attached to the humacli root.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/loopbridge/internal/surface"
)

// CreatePortsCmd creates the ports command, which lists MIDI output ports so
// the user can pick a device name for the config file.
func CreatePortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available MIDI output ports",
		Long: `Lists every MIDI output port visible to the system. ` +
			`The configured device name is matched against these as a case-insensitive substring.`,
		Run: func(_ *cobra.Command, _ []string) {
			ports, err := surface.ListPorts()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to list MIDI ports: %v\n", err)
				os.Exit(1)
			}

			if len(ports) == 0 {
				fmt.Println("No MIDI output ports found")
				return
			}

			for _, name := range ports {
				fmt.Println(name)
			}
		},
	}
}
