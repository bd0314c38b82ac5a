// Package launch spawns the worker script as a child process.
//
// The launch contract is deliberately minimal: set the working
// directory, point combined stdout/stderr at the worker log
// (truncating prior content), detach from the launcher's session, and
// record the child's pid. Nothing here waits on, supervises, or
// restarts the child.
package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/runlet-dev/runlet/internal/pidfile"
)

// Spec describes a single worker launch.
type Spec struct {
	// Dir is the child's working directory, set before execution begins.
	Dir string

	// Interpreter is the runtime invoked on the script (e.g. python3).
	Interpreter string

	// Script is the worker script path, relative to Dir or absolute.
	Script string

	// Args are extra arguments passed to the script.
	Args []string

	// LogPath receives the child's combined stdout and stderr,
	// relative to Dir or absolute. Truncated on launch.
	LogPath string

	// PIDPath is where the child's pid is recorded, relative to Dir
	// or absolute. Overwritten on launch.
	PIDPath string
}

// Worker describes a successfully launched child.
type Worker struct {
	PID     int
	LogPath string
	PIDPath string
}

// resolve joins path with the spec's working directory unless it is
// already absolute.
func (s Spec) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(s.Dir, path)
}

// command builds the exec.Cmd shared by detached and foreground launches.
func (s Spec) command() *exec.Cmd {
	cmd := exec.Command(s.Interpreter, append([]string{s.Script}, s.Args...)...)
	cmd.Dir = s.Dir
	cmd.Stdin = nil // child reads from the null device, never our stdin

	return cmd
}

// openLog opens the worker log sink, discarding any previous content.
func (s Spec) openLog() (*os.File, error) {
	logPath := s.resolve(s.LogPath)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open worker log %s: %w", logPath, err)
	}

	return file, nil
}

// Start launches the worker detached from the current session and
// returns immediately. The pidfile is written only after the spawn
// succeeds, so a failed spawn leaves any previous pidfile untouched.
func Start(spec Spec) (*Worker, error) {
	logFile, err := spec.openLog()
	if err != nil {
		return nil, err
	}

	cmd := spec.command()
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = detachSysProcAttr()

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("start %s %s: %w", spec.Interpreter, spec.Script, err)
	}

	// The child holds its own descriptor for the log from here on.
	_ = logFile.Close()

	worker := &Worker{
		PID:     cmd.Process.Pid,
		LogPath: spec.resolve(spec.LogPath),
		PIDPath: spec.resolve(spec.PIDPath),
	}

	if err := pidfile.Write(worker.PIDPath, worker.PID); err != nil {
		// The worker is already running; report the bookkeeping
		// failure without tearing it down.
		return worker, err
	}

	// Fire and forget: drop the handle so the launcher never waits.
	_ = cmd.Process.Release()

	return worker, nil
}

// Run launches the worker in the foreground and blocks until it exits
// or ctx is canceled. Redirection and pid bookkeeping match Start; on
// cancelation the child is asked to terminate, and the pidfile is
// removed once the child is gone.
func Run(ctx context.Context, spec Spec) (*Worker, error) {
	logFile, err := spec.openLog()
	if err != nil {
		return nil, err
	}

	cmd := spec.command()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("start %s %s: %w", spec.Interpreter, spec.Script, err)
	}

	_ = logFile.Close()

	worker := &Worker{
		PID:     cmd.Process.Pid,
		LogPath: spec.resolve(spec.LogPath),
		PIDPath: spec.resolve(spec.PIDPath),
	}

	if err := pidfile.Write(worker.PIDPath, worker.PID); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return nil, err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error

	select {
	case <-ctx.Done():
		_ = terminateProcess(cmd.Process)
		waitErr = <-done
	case waitErr = <-done:
	}

	if rmErr := pidfile.Remove(worker.PIDPath); rmErr != nil && waitErr == nil {
		waitErr = rmErr
	}

	if waitErr != nil {
		return worker, fmt.Errorf("worker exited: %w", waitErr)
	}

	return worker, nil
}
