package main

import (
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/runlet-dev/runlet/internal/config"
	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/launch"
	"github.com/runlet-dev/runlet/internal/output"
	"github.com/runlet-dev/runlet/internal/pidfile"
	"github.com/runlet-dev/runlet/internal/proc"
)

// StartResult represents the start outcome for JSON output.
type StartResult struct {
	PID     int    `json:"pid"`
	Script  string `json:"script"`
	Dir     string `json:"dir"`
	LogFile string `json:"logFile"`
	PIDFile string `json:"pidFile"`
}

func newStartCmd() *cobra.Command {
	var (
		flags      workerFlags
		foreground bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "start [-- script-args...]",
		Short: "Launch the worker as a detached background process",
		Long: `Start launches the configured worker script and returns immediately.

The worker runs detached from your terminal: it survives the launcher
exiting and the terminal closing. Its combined stdout and stderr are
redirected into the worker log (truncating any previous run's output),
and its process id is written to the pidfile so 'runlet status' and
'runlet stop' can find it later.

Arguments after '--' are passed through to the worker script.`,
		Example: `  runlet start
  runlet start --dir /srv/app --script worker.py
  runlet start -- --batch-size 50
  runlet start --foreground`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			logger := slog.Default()

			spec := resolveSpec(config.Load(), flags)
			spec.Args = args

			if err := preflight(&spec); err != nil {
				return err
			}

			// Refuse to double-start against a live pidfile unless forced.
			if !force {
				if pid, err := pidfile.Read(pidfilePath(spec)); err == nil && proc.Alive(pid) {
					return clierrors.AlreadyTracked(pid)
				}
			}

			if foreground {
				return runForeground(cmd, out, spec)
			}

			worker, err := launch.Start(spec)
			if err != nil {
				if worker != nil {
					// Spawn succeeded; only the pid bookkeeping failed.
					return clierrors.Wrap(clierrors.ExitGeneral,
						"Worker started but the pidfile could not be written", err).
						WithHint("'runlet stop' will not find this worker; stop it by pid " + strconv.Itoa(worker.PID))
				}

				return clierrors.SpawnFailed(err)
			}

			logger.Info("worker started",
				"pid", worker.PID,
				"dir", spec.Dir,
				"script", spec.Script,
				"log_file", worker.LogPath,
				"pid_file", worker.PIDPath)

			if out.JSON {
				return out.PrintJSON(StartResult{
					PID:     worker.PID,
					Script:  spec.Script,
					Dir:     spec.Dir,
					LogFile: worker.LogPath,
					PIDFile: worker.PIDPath,
				})
			}

			out.Print("Worker started with PID: %d\n", worker.PID)

			return nil
		},
	}

	addWorkerFlags(cmd.Flags(), &flags)
	cmd.Flags().BoolVar(&foreground, "foreground", false, "Run the worker attached; block until it exits")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Start even if the pidfile points at a live process")

	return cmd
}

// preflight validates the launch spec before anything is spawned or
// truncated, so a doomed start leaves the previous run's log and
// pidfile intact. It also normalizes the working directory to an
// absolute path so the recorded paths outlive a later chdir.
func preflight(spec *launch.Spec) error {
	absDir, err := filepath.Abs(spec.Dir)
	if err == nil {
		spec.Dir = absDir
	}

	info, err := os.Stat(spec.Dir)
	if err != nil {
		return clierrors.WorkdirMissing(spec.Dir, err)
	}

	if !info.IsDir() {
		return clierrors.WorkdirMissing(spec.Dir, nil).
			WithHint(spec.Dir + " exists but is not a directory")
	}

	if _, err := exec.LookPath(spec.Interpreter); err != nil {
		return clierrors.InterpreterNotFound(spec.Interpreter, err)
	}

	script := resolveAgainst(spec.Dir, spec.Script)
	if _, err := os.Stat(script); err != nil {
		return clierrors.ScriptNotFound(script)
	}

	return nil
}

// runForeground runs the worker attached, forwarding Ctrl-C as a
// termination request.
func runForeground(cmd *cobra.Command, out *output.Writer, spec launch.Spec) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out.Info("Running worker in the foreground; press Ctrl-C to stop")
	out.Muted("  Output goes to %s", logfilePath(spec))

	worker, err := launch.Run(ctx, spec)
	if err != nil {
		if worker == nil {
			return clierrors.SpawnFailed(err)
		}

		return clierrors.Wrap(clierrors.ExitExecution, "Worker exited with an error", err)
	}

	out.Success("Worker exited cleanly")

	return nil
}
