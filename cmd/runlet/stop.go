package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/runlet-dev/runlet/internal/config"
	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/output"
	"github.com/runlet-dev/runlet/internal/pidfile"
	"github.com/runlet-dev/runlet/internal/proc"
)

// StopResult represents the stop outcome for JSON output.
type StopResult struct {
	PID    int    `json:"pid"`
	Forced bool   `json:"forced"`
	State  string `json:"state"` // "stopped" or "already-stopped"
}

func newStopCmd() *cobra.Command {
	var (
		flags workerFlags
		force bool
	)

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the tracked worker process",
		Long: `Stop reads the pidfile, asks the worker to terminate, and waits up to
worker.stop_timeout (default 10s) for it to exit. The pidfile is removed
once the worker is gone.

With --force the worker is killed outright instead of being asked.`,
		Example: `  runlet stop
  runlet stop --force
  runlet stop --dir /srv/app`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			logger := slog.Default()

			cfg := config.Load()
			spec := resolveSpec(cfg, flags)
			pidPath := pidfilePath(spec)

			pid, err := pidfile.Read(pidPath)
			if err != nil {
				if os.IsNotExist(err) {
					return clierrors.NotRunning(pidPath)
				}

				return clierrors.PidfileUnreadable(pidPath, err)
			}

			if !proc.Alive(pid) {
				// Stale pidfile: nothing to stop, but clean up the handle.
				_ = pidfile.Remove(pidPath)

				if out.JSON {
					return out.PrintJSON(StopResult{PID: pid, State: "already-stopped"})
				}

				out.Warning("Worker %d was not running; removed stale pidfile", pid)

				return nil
			}

			if force {
				if err := proc.Kill(pid); err != nil {
					return clierrors.SignalFailed(pid, err)
				}
			} else {
				if err := proc.Terminate(pid); err != nil {
					return clierrors.SignalFailed(pid, err)
				}
			}

			timeout := cfg.StopTimeout()

			sp := out.Spinner("Stopping worker")
			sp.Start()

			exited := proc.WaitExit(cmd.Context(), pid, timeout)

			sp.Stop()

			if !exited {
				return clierrors.StopTimedOut(pid, timeout.String())
			}

			if err := pidfile.Remove(pidPath); err != nil {
				return clierrors.Wrap(clierrors.ExitGeneral, "Worker stopped but the pidfile could not be removed", err)
			}

			logger.Info("worker stopped", "pid", pid, "forced", force)

			if out.JSON {
				return out.PrintJSON(StopResult{PID: pid, Forced: force, State: "stopped"})
			}

			out.Success("Worker %d stopped", pid)

			return nil
		},
	}

	addWorkerFlags(cmd.Flags(), &flags)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Kill the worker instead of asking it to terminate")

	return cmd
}
