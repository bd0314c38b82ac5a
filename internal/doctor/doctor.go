// Package doctor provides diagnostic checks for Runlet CLI health.
//
// This package implements a check framework that validates:
//   - Interpreter availability and version
//   - Worker working directory and script presence
//   - State directory writability
//   - Pidfile staleness
//   - CLI version against the cached update check
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/runlet-dev/runlet/internal/buildinfo"
	"github.com/runlet-dev/runlet/internal/config"
	"github.com/runlet-dev/runlet/internal/paths"
	"github.com/runlet-dev/runlet/internal/pidfile"
	"github.com/runlet-dev/runlet/internal/proc"
	"github.com/runlet-dev/runlet/internal/update"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a new diagnostic runner with the default checks.
func New() *Runner {
	r := &Runner{}

	r.AddCheck("Interpreter", checkInterpreter)
	r.AddCheck("Working Directory", checkWorkdir)
	r.AddCheck("Worker Script", checkScript)
	r.AddCheck("State Directory", checkStateDir)
	r.AddCheck("Pidfile", checkPidfile)
	r.AddCheck("CLI Version", checkCLIVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// checkInterpreter verifies the configured interpreter is on PATH.
func checkInterpreter(ctx context.Context) Result {
	interpreter := config.Load().Interpreter()

	path, err := exec.LookPath(interpreter)
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s not found in PATH", interpreter),
			Detail:  "Install it or set worker.interpreter to an absolute path",
		}
	}

	// Best effort version probe; many interpreters support --version.
	version := ""
	if out, verErr := exec.CommandContext(ctx, path, "--version").CombinedOutput(); verErr == nil {
		version = strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	}

	msg := path
	if version != "" {
		msg = fmt.Sprintf("%s (%s)", path, version)
	}

	return Result{Status: StatusPass, Message: msg}
}

// checkWorkdir verifies the worker's working directory exists.
func checkWorkdir(_ context.Context) Result {
	dir := config.Load().WorkerDir()

	info, err := os.Stat(dir)
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: dir,
			Detail:  err.Error(),
		}
	}

	if !info.IsDir() {
		return Result{
			Status:  StatusFail,
			Message: dir,
			Detail:  "not a directory",
		}
	}

	return Result{Status: StatusPass, Message: dir}
}

// checkScript verifies the worker script exists in the working directory.
func checkScript(_ context.Context) Result {
	cfg := config.Load()

	script := cfg.Script()
	if !filepath.IsAbs(script) {
		script = filepath.Join(cfg.WorkerDir(), script)
	}

	if _, err := os.Stat(script); err != nil {
		return Result{
			Status:  StatusFail,
			Message: script,
			Detail:  "worker script not found; check worker.script",
		}
	}

	return Result{Status: StatusPass, Message: script}
}

// checkStateDir verifies Runlet's state directory can be written.
func checkStateDir(_ context.Context) Result {
	root, err := paths.StateRoot()
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: "cannot resolve state directory",
			Detail:  err.Error(),
		}
	}

	if err := os.MkdirAll(root, 0o700); err != nil {
		return Result{
			Status:  StatusFail,
			Message: root,
			Detail:  err.Error(),
		}
	}

	probe := filepath.Join(root, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Result{
			Status:  StatusFail,
			Message: root,
			Detail:  "directory is not writable",
		}
	}

	_ = os.Remove(probe)

	return Result{Status: StatusPass, Message: root}
}

// checkPidfile reports the tracked worker's liveness; a pidfile whose
// process is gone is a warning, not a failure.
func checkPidfile(_ context.Context) Result {
	cfg := config.Load()

	pidPath := cfg.PIDFile()
	if !filepath.IsAbs(pidPath) {
		pidPath = filepath.Join(cfg.WorkerDir(), pidPath)
	}

	pid, err := pidfile.Read(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Status: StatusPass, Message: "no worker tracked"}
		}

		return Result{
			Status:  StatusWarn,
			Message: pidPath,
			Detail:  err.Error(),
		}
	}

	if !proc.Alive(pid) {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("stale pidfile (pid %d is not running)", pid),
			Detail:  "The next 'runlet start' will overwrite it",
		}
	}

	return Result{Status: StatusPass, Message: fmt.Sprintf("worker running (pid %d)", pid)}
}

// checkCLIVersion compares the running version with the cached update check.
func checkCLIVersion(_ context.Context) Result {
	current := buildinfo.Version
	if current == "dev" {
		return Result{
			Status:  StatusWarn,
			Message: "development build",
			Detail:  "Version checks are skipped for dev builds",
		}
	}

	state, err := update.LoadState()
	if err != nil || state.LatestVersion == "" {
		return Result{Status: StatusPass, Message: fmt.Sprintf("v%s", current)}
	}

	if state.HasUpdate(current) {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (v%s available)", current, state.LatestVersion),
			Detail:  "Run 'runlet update' to update",
		}
	}

	return Result{Status: StatusPass, Message: fmt.Sprintf("v%s (up to date)", current)}
}

// Symbol returns the display symbol for a status.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}
