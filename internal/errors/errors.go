// Package errors provides structured CLI error types for Runlet.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI errors.
const (
	ExitSuccess   = 0  // Successful execution
	ExitGeneral   = 1  // General error
	ExitConfig    = 4  // Configuration error
	ExitExecution = 6  // Spawn or signal failure
	ExitUsage     = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// WorkdirMissing returns an error for a working directory that does not exist.
func WorkdirMissing(dir string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Working directory not found: %s", dir),
		Hint:    "Check the --dir flag or the worker.dir config value",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// InterpreterNotFound returns an error when the interpreter is not on PATH.
func InterpreterNotFound(interpreter string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Interpreter not found: %s", interpreter),
		Hint:    "Install it or set worker.interpreter to an absolute path",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ScriptNotFound returns an error for a missing worker script.
func ScriptNotFound(script string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Worker script not found: %s", script),
		Hint:    "Check the script path or the worker.script config value",
		Code:    ExitConfig,
	}
}

// SpawnFailed returns an error for a failed process spawn.
func SpawnFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Failed to start worker process",
		Cause:   cause,
		Code:    ExitExecution,
	}
}

// AlreadyTracked returns an error when the pidfile already points at a
// live process.
func AlreadyTracked(pid int) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("A worker is already running (PID %d)", pid),
		Hint:    "Run 'runlet stop' first, or pass --force to start anyway",
		Code:    ExitGeneral,
	}
}

// NotRunning returns an error when no live worker is tracked by the pidfile.
func NotRunning(pidPath string) *CLIError {
	return &CLIError{
		Message: "No running worker found",
		Hint:    fmt.Sprintf("Expected a live PID in %s; run 'runlet start' first", pidPath),
		Code:    ExitGeneral,
	}
}

// PidfileUnreadable returns an error for a pidfile that exists but cannot be parsed.
func PidfileUnreadable(pidPath string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot read pidfile: %s", pidPath),
		Hint:    "Remove the file if it is stale, then run 'runlet start' again",
		Cause:   cause,
		Code:    ExitGeneral,
	}
}

// SignalFailed returns an error when signaling the worker fails.
func SignalFailed(pid int, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to signal worker process %d", pid),
		Hint:    "The process may be owned by another user",
		Cause:   cause,
		Code:    ExitExecution,
	}
}

// StopTimedOut returns an error when the worker ignores the stop signal.
func StopTimedOut(pid int, timeout string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Worker %d did not exit within %s", pid, timeout),
		Hint:    "Rerun with --force to kill the process outright",
		Code:    ExitExecution,
	}
}

// LogFileMissing returns an error for a missing worker log file.
func LogFileMissing(path string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Worker log not found: %s", path),
		Hint:    "The log file is created when 'runlet start' runs",
		Code:    ExitGeneral,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your Runlet config directory or run 'runlet doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}
