package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runlet-dev/runlet/internal/config"
	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/output"
	"github.com/runlet-dev/runlet/internal/pidfile"
	"github.com/runlet-dev/runlet/internal/proc"
)

// StatusResult represents worker status for JSON output.
type StatusResult struct {
	Running bool       `json:"running"`
	PIDFile string     `json:"pidFile"`
	LogFile string     `json:"logFile"`
	Stale   bool       `json:"stale,omitempty"`
	Process *proc.Stat `json:"process,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var flags workerFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the tracked worker is running",
		Long: `Status reads the pidfile and checks whether that process is still
alive. For a live worker it also reports uptime, CPU, and memory.

Exit code is 0 when the worker is running and 1 when it is not, so the
command works in shell conditionals.`,
		Example: `  runlet status
  runlet status --json
  runlet status && echo "worker is up"`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			spec := resolveSpec(config.Load(), flags)
			pidPath := pidfilePath(spec)
			logPath := logfilePath(spec)

			pid, err := pidfile.Read(pidPath)
			if err != nil {
				if os.IsNotExist(err) {
					if out.JSON {
						_ = out.PrintJSON(StatusResult{Running: false, PIDFile: pidPath, LogFile: logPath})
						return clierrors.New(clierrors.ExitGeneral, "")
					}

					return clierrors.NotRunning(pidPath)
				}

				return clierrors.PidfileUnreadable(pidPath, err)
			}

			if !proc.Alive(pid) {
				if out.JSON {
					_ = out.PrintJSON(StatusResult{Running: false, Stale: true, PIDFile: pidPath, LogFile: logPath})
					return clierrors.New(clierrors.ExitGeneral, "")
				}

				return clierrors.NotRunning(pidPath).
					WithHint(fmt.Sprintf("Pidfile %s holds pid %d, but that process is gone; 'runlet start' will overwrite it", pidPath, pid))
			}

			stat, statErr := proc.Inspect(pid)
			if statErr != nil {
				// The process exists but cannot be inspected; fall back
				// to the bare pid.
				stat = &proc.Stat{PID: pid}
			}

			if out.JSON {
				return out.PrintJSON(StatusResult{
					Running: true,
					PIDFile: pidPath,
					LogFile: logPath,
					Process: stat,
				})
			}

			out.Success("Worker is running (PID %d)", pid)

			if stat.Uptime != "" {
				out.Print("  uptime:  %s\n", stat.Uptime)
			}

			if stat.Cmdline != "" {
				out.Print("  command: %s\n", stat.Cmdline)
			}

			if stat.RSSBytes > 0 {
				out.Print("  memory:  %s\n", formatBytes(stat.RSSBytes))
			}

			if stat.CPUPercent > 0 {
				out.Print("  cpu:     %.1f%%\n", stat.CPUPercent)
			}

			out.Print("  log:     %s\n", logPath)
			out.Print("  pidfile: %s\n", pidPath)

			return nil
		},
	}

	addWorkerFlags(cmd.Flags(), &flags)

	return cmd
}

// formatBytes renders a byte count in human units.
func formatBytes(n uint64) string {
	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
