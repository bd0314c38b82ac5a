//go:build unix

package launch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/runlet-dev/runlet/internal/pidfile"
	"github.com/runlet-dev/runlet/internal/proc"
)

// writeScript drops a shell script into dir and returns its name.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	return name
}

// reap kills a detached worker left over by a test.
func reap(pid int) {
	_ = syscall.Kill(pid, syscall.SIGKILL)
}

func TestStart_DetachedWorker(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "worker.sh", "#!/bin/sh\necho ready\nsleep 30\n")

	spec := Spec{
		Dir:         dir,
		Interpreter: "sh",
		Script:      script,
		LogPath:     "worker.log",
		PIDPath:     "worker.pid",
	}

	started := time.Now()

	worker, err := Start(spec)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	defer reap(worker.PID)

	// The launcher must not wait on the child.
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Errorf("Start took %v, should return without waiting", elapsed)
	}

	if !proc.Alive(worker.PID) {
		t.Fatal("worker should be alive immediately after Start")
	}

	pid, err := pidfile.Read(filepath.Join(dir, "worker.pid"))
	if err != nil {
		t.Fatalf("read pidfile: %v", err)
	}

	if pid != worker.PID {
		t.Errorf("pidfile pid = %d, want %d", pid, worker.PID)
	}

	// The child's stdout lands in the log file.
	waitForLogContent(t, filepath.Join(dir, "worker.log"), "ready")
}

func TestStart_TruncatesPreviousLog(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "worker.sh", "#!/bin/sh\necho fresh\nsleep 30\n")

	logPath := filepath.Join(dir, "worker.log")
	if err := os.WriteFile(logPath, []byte("stale content from a previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	worker, err := Start(Spec{
		Dir:         dir,
		Interpreter: "sh",
		Script:      script,
		LogPath:     "worker.log",
		PIDPath:     "worker.pid",
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	defer reap(worker.PID)

	waitForLogContent(t, logPath, "fresh")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(string(data), "stale content") {
		t.Error("previous log content should be truncated on launch")
	}
}

func TestStart_CombinesStdoutAndStderr(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "worker.sh", "#!/bin/sh\necho out-line\necho err-line >&2\nsleep 30\n")

	worker, err := Start(Spec{
		Dir:         dir,
		Interpreter: "sh",
		Script:      script,
		LogPath:     "worker.log",
		PIDPath:     "worker.pid",
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	defer reap(worker.PID)

	logPath := filepath.Join(dir, "worker.log")
	waitForLogContent(t, logPath, "out-line")
	waitForLogContent(t, logPath, "err-line")
}

func TestStart_SpawnFailureLeavesPidfileUntouched(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "worker.pid")

	if err := pidfile.Write(pidPath, 111); err != nil {
		t.Fatal(err)
	}

	_, err := Start(Spec{
		Dir:         dir,
		Interpreter: filepath.Join(dir, "no-such-interpreter"),
		Script:      "worker.sh",
		LogPath:     "worker.log",
		PIDPath:     "worker.pid",
	})
	if err == nil {
		t.Fatal("Start with a missing interpreter should fail")
	}

	pid, readErr := pidfile.Read(pidPath)
	if readErr != nil {
		t.Fatalf("pidfile should survive a failed spawn: %v", readErr)
	}

	if pid != 111 {
		t.Errorf("pidfile pid = %d, want the previous value 111", pid)
	}
}

func TestRun_ForegroundExit(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "worker.sh", "#!/bin/sh\necho short-lived\n")

	worker, err := Run(context.Background(), Spec{
		Dir:         dir,
		Interpreter: "sh",
		Script:      script,
		LogPath:     "worker.log",
		PIDPath:     "worker.pid",
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if proc.Alive(worker.PID) {
		t.Error("worker should have exited before Run returned")
	}

	if _, err := os.Stat(filepath.Join(dir, "worker.pid")); !os.IsNotExist(err) {
		t.Error("foreground run should remove the pidfile on exit")
	}

	data, err := os.ReadFile(filepath.Join(dir, "worker.log"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "short-lived") {
		t.Errorf("log content = %q, want worker output", data)
	}
}

func TestRun_CanceledContextStopsWorker(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "worker.sh", "#!/bin/sh\nsleep 30\n")

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	worker, err := Run(ctx, Spec{
		Dir:         dir,
		Interpreter: "sh",
		Script:      script,
		LogPath:     "worker.log",
		PIDPath:     "worker.pid",
	})
	if err == nil {
		// A terminated child reports a non-nil wait error; either way
		// it must be gone.
		t.Log("Run returned nil error after cancelation")
	}

	if worker != nil && proc.Alive(worker.PID) {
		reap(worker.PID)
		t.Error("worker should be stopped after context cancelation")
	}
}

// waitForLogContent polls until the log file contains want.
func waitForLogContent(t *testing.T, path, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), want) {
			return
		}

		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("log %s never contained %q", path, want)
}
