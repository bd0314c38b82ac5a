package main

import (
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/runlet-dev/runlet/internal/config"
	"github.com/runlet-dev/runlet/internal/launch"
)

// workerFlags are the per-command overrides shared by the worker
// lifecycle commands. Empty values fall back to configuration.
type workerFlags struct {
	dir         string
	interpreter string
	script      string
	logFile     string
	pidFile     string
}

// resolveSpec merges flag overrides over configuration into a launch
// spec. Flags win, then RUNLET_* env vars, then the config file, then
// built-in defaults (python3 worker.py in the current directory).
func resolveSpec(cfg *config.Config, flags workerFlags) launch.Spec {
	spec := launch.Spec{
		Dir:         cfg.WorkerDir(),
		Interpreter: cfg.Interpreter(),
		Script:      cfg.Script(),
		LogPath:     cfg.LogFile(),
		PIDPath:     cfg.PIDFile(),
	}

	if flags.dir != "" {
		spec.Dir = flags.dir
	}

	if flags.interpreter != "" {
		spec.Interpreter = flags.interpreter
	}

	if flags.script != "" {
		spec.Script = flags.script
	}

	if flags.logFile != "" {
		spec.LogPath = flags.logFile
	}

	if flags.pidFile != "" {
		spec.PIDPath = flags.pidFile
	}

	return spec
}

// resolveAgainst joins path with dir unless path is already absolute.
func resolveAgainst(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}

// pidfilePath returns the effective pidfile location for the resolved spec.
func pidfilePath(spec launch.Spec) string {
	return resolveAgainst(spec.Dir, spec.PIDPath)
}

// logfilePath returns the effective worker log location for the resolved spec.
func logfilePath(spec launch.Spec) string {
	return resolveAgainst(spec.Dir, spec.LogPath)
}

// addWorkerFlags registers the shared override flags on a lifecycle command.
func addWorkerFlags(fs *pflag.FlagSet, flags *workerFlags) {
	fs.StringVarP(&flags.dir, "dir", "d", "", "Worker working directory (default: worker.dir config)")
	fs.StringVarP(&flags.interpreter, "interpreter", "i", "", "Interpreter to run the script with (default: worker.interpreter config)")
	fs.StringVarP(&flags.script, "script", "s", "", "Worker script path (default: worker.script config)")
	fs.StringVar(&flags.logFile, "log", "", "Worker log path, relative to the working directory")
	fs.StringVar(&flags.pidFile, "pid-file", "", "Pidfile path, relative to the working directory")
}
