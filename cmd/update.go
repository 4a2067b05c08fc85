package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/loopbridge/internal/logging"
	"github.com/smazurov/loopbridge/internal/updater"
	"github.com/smazurov/loopbridge/internal/version"
)

// CreateUpdateCmd creates the update command, which checks GitHub releases
// and optionally replaces the running binary.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool
	var prerelease bool
	var repository string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the binary from GitHub releases",
		Long:  `Checks the GitHub repository for a newer release and replaces the binary in place. With --check, only reports whether an update is available.`,
		Run: func(cmd *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})

			u, err := updater.New(&updater.Options{
				Repository: repository,
				Prerelease: prerelease,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Updater unavailable: %v\n", err)
				os.Exit(1)
			}

			info, err := u.CheckForUpdate(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Update check failed: %v\n", err)
				os.Exit(1)
			}

			if !info.UpdateAvailable {
				fmt.Printf("Already up to date (%s)\n", version.Version)
				return
			}

			fmt.Printf("Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if info.ReleaseURL != "" {
				fmt.Println(info.ReleaseURL)
			}
			if checkOnly {
				return
			}

			if err := u.ApplyUpdate(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Updated to %s, restart the service to run it\n", info.LatestVersion)
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for an update, do not apply it")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().StringVar(&repository, "repository", "smazurov/loopbridge", "GitHub repository slug")
	return cmd
}
