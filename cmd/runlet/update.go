package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/output"
	"github.com/runlet-dev/runlet/internal/update"
)

// UpdateResult represents the update outcome for JSON output.
type UpdateResult struct {
	CurrentVersion string `json:"currentVersion"`
	LatestVersion  string `json:"latestVersion"`
	Updated        bool   `json:"updated"`
	ReleaseURL     string `json:"releaseURL,omitempty"`
}

func newUpdateCmd() *cobra.Command {
	var (
		checkOnly     bool
		targetVersion string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update runlet to the latest version",
		Long: `Update downloads and installs the latest runlet release, replacing the
current binary. Release checksums are verified before installation.

Set RUNLET_UPDATE_DISABLED=1 to suppress update checks entirely.`,
		Example: `  runlet update
  runlet update --check
  runlet update --version 1.2.3`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if update.IsDisabled() {
				return &clierrors.CLIError{
					Message: "Updates are disabled",
					Hint:    "Unset RUNLET_UPDATE_DISABLED to enable updates",
					Code:    clierrors.ExitConfig,
				}
			}

			if version == "dev" && !checkOnly {
				return &clierrors.CLIError{
					Message: "Cannot self-update a development build",
					Hint:    "Install a released binary or use 'runlet update --check' to see the latest version",
					Code:    clierrors.ExitGeneral,
				}
			}

			updater, err := update.NewUpdater()
			if err != nil {
				return clierrors.Wrap(clierrors.ExitGeneral, "Failed to initialize updater", err)
			}

			sp := out.Spinner("Checking for updates")
			sp.Start()

			info, err := updater.CheckLatest(cmd.Context(), version)
			if err != nil {
				sp.Stop()
				return clierrors.Wrap(clierrors.ExitGeneral, "Failed to check for updates", err).
					WithHint("Check your network connection and try again")
			}

			sp.Stop()

			// Cache the result so the passive post-run notice stays fresh.
			_ = update.SaveState(&update.State{
				LastCheckedAt:  time.Now(),
				LatestVersion:  info.LatestVersion,
				CurrentVersion: version,
				ReleaseURL:     info.ReleaseURL,
			})

			if checkOnly || !info.UpdateAvailable {
				if out.JSON {
					return out.PrintJSON(UpdateResult{
						CurrentVersion: info.CurrentVersion,
						LatestVersion:  info.LatestVersion,
						ReleaseURL:     info.ReleaseURL,
					})
				}

				if info.UpdateAvailable {
					out.Info("Update available: v%s → v%s", info.CurrentVersion, info.LatestVersion)
					out.Muted("  Run 'runlet update' to install it")
				} else {
					out.Success("runlet v%s is up to date", info.CurrentVersion)
				}

				return nil
			}

			// Installing into a root-owned prefix needs elevation.
			if execPath, pathErr := os.Executable(); pathErr == nil && update.NeedsElevation(execPath) {
				if reErr := update.ReExecWithSudo(); reErr != nil {
					return clierrors.Wrap(clierrors.ExitGeneral, "Update requires elevated permissions", reErr)
				}
			}

			sp = out.Spinner("Downloading v" + info.LatestVersion)
			sp.Start()

			if targetVersion != "" {
				_, err = updater.ApplyVersion(cmd.Context(), targetVersion)
			} else {
				err = updater.Apply(cmd.Context(), info.Release)
			}

			if err != nil {
				sp.StopWithFailure("Update failed")
				return clierrors.Wrap(clierrors.ExitGeneral, "Failed to apply update", err)
			}

			sp.Stop()

			installed := info.LatestVersion
			if targetVersion != "" {
				installed = targetVersion
			}

			if out.JSON {
				return out.PrintJSON(UpdateResult{
					CurrentVersion: info.CurrentVersion,
					LatestVersion:  installed,
					Updated:        true,
					ReleaseURL:     info.ReleaseURL,
				})
			}

			out.Success("Updated runlet v%s → v%s", info.CurrentVersion, installed)

			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Check for updates without installing")
	cmd.Flags().StringVar(&targetVersion, "version", "", "Install a specific version instead of the latest")

	return cmd
}
