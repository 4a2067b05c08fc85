// Package updater checks GitHub releases and replaces the running binary in
// place. It is driven from the update CLI subcommand, so there is no state
// machine to coordinate: one check or apply runs at a time and the process
// exits afterwards.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/smazurov/loopbridge/internal/logging"
	"github.com/smazurov/loopbridge/internal/version"
)

// Options contains configuration for the updater.
type Options struct {
	Repository string // GitHub repo slug (e.g., "smazurov/loopbridge")
	Prerelease bool   // Whether to include prereleases
}

// UpdateInfo contains information about an available update.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes"`
	ReleaseURL      string    `json:"release_url"`
	PublishedAt     time.Time `json:"published_at"`
	AssetSize       int       `json:"asset_size"`
	UpdateAvailable bool      `json:"update_available"`
}

// Updater checks for and applies releases from a GitHub repository.
type Updater struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater

	latestRelease *selfupdate.Release

	logger *slog.Logger
}

// New creates an updater for the given repository. It fails early when the
// binary's directory is not writable, since an apply could never succeed.
func New(opts *Options) (*Updater, error) {
	logger := logging.GetLogger("updater")

	if ok, reason := checkWritePermission(); !ok {
		return nil, newError(ErrCodeDisabled, reason, nil)
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}

	u, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Updater{
		repository: selfupdate.ParseSlug(opts.Repository),
		updater:    u,
		logger:     logger,
	}, nil
}

func checkWritePermission() (bool, string) {
	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Sprintf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return false, fmt.Sprintf("failed to resolve symlinks: %v", err)
	}

	dir := filepath.Dir(exe)

	tmp := filepath.Join(dir, ".loopbridge.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	f.Close()
	os.Remove(tmp)
	return true, ""
}

// CheckForUpdate queries GitHub for the latest release and compares it
// against the current version. Returns update info without downloading.
func (u *Updater) CheckForUpdate(ctx context.Context) (*UpdateInfo, error) {
	currentVersion := version.Version

	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found {
		return nil, newError(ErrCodeCheckFailed, "repository not found or has no releases", nil)
	}

	// dev is always considered outdated
	isNewer := currentVersion == "dev" || release.GreaterThan(currentVersion)
	if !isNewer {
		return &UpdateInfo{
			CurrentVersion:  currentVersion,
			LatestVersion:   release.Version(),
			UpdateAvailable: false,
		}, nil
	}

	u.latestRelease = release

	return &UpdateInfo{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.Version(),
		ReleaseNotes:    release.ReleaseNotes,
		ReleaseURL:      release.URL,
		PublishedAt:     release.PublishedAt,
		AssetSize:       release.AssetByteSize,
		UpdateAvailable: true,
	}, nil
}

// ApplyUpdate downloads the latest release and replaces the running binary.
// CheckForUpdate runs first when it has not been called yet.
func (u *Updater) ApplyUpdate(ctx context.Context) error {
	if u.latestRelease == nil {
		info, err := u.CheckForUpdate(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return newError(ErrCodeNoUpdate, "no update available", nil)
		}
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return newError(ErrCodeApplyFailed, "failed to get executable path", err)
	}

	if err := u.updater.UpdateTo(ctx, u.latestRelease, exe); err != nil {
		return newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	u.logger.Info("Update applied", "version", u.latestRelease.Version())
	return nil
}
