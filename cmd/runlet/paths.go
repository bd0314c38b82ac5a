package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runlet-dev/runlet/internal/config"
	"github.com/runlet-dev/runlet/internal/output"
	"github.com/runlet-dev/runlet/internal/paths"
)

// PathsInfo represents resolved paths for JSON output.
type PathsInfo struct {
	ConfigFile    string `json:"configFile,omitempty"`
	StateDir      string `json:"stateDir,omitempty"`
	CLILogFile    string `json:"cliLogFile,omitempty"`
	WorkerDir     string `json:"workerDir"`
	WorkerLog     string `json:"workerLog"`
	WorkerPidfile string `json:"workerPidfile"`
}

func newPathsCmd() *cobra.Command {
	var flags workerFlags

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the file locations Runlet uses",
		Long: `Paths prints where Runlet keeps its own files (config, state, CLI log)
and where the worker's log and pidfile resolve to under the current
configuration.`,
		Example: `  runlet paths
  runlet paths --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			spec := resolveSpec(config.Load(), flags)

			info := PathsInfo{
				WorkerDir:     spec.Dir,
				WorkerLog:     logfilePath(spec),
				WorkerPidfile: pidfilePath(spec),
			}

			if configDir, err := paths.ConfigRoot(); err == nil {
				info.ConfigFile = filepath.Join(configDir, "config.yaml")
			}

			if stateDir, err := paths.StateRoot(); err == nil {
				info.StateDir = stateDir
			}

			if cliLog, err := paths.DefaultLogFile(); err == nil {
				info.CLILogFile = cliLog
			}

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.Print("Worker:\n")
			out.Print("  dir:     %s\n", info.WorkerDir)
			out.Print("  log:     %s\n", info.WorkerLog)
			out.Print("  pidfile: %s\n", info.WorkerPidfile)
			out.Print("\nRunlet:\n")
			out.Print("  config:  %s\n", info.ConfigFile)
			out.Print("  state:   %s\n", info.StateDir)
			out.Print("  cli log: %s\n", info.CLILogFile)

			return nil
		},
	}

	addWorkerFlags(cmd.Flags(), &flags)

	return cmd
}
