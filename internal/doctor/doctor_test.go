package doctor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
)

// isolateEnv points config and state at temp dirs so checks only see
// what the test sets up.
func isolateEnv(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_STATE_HOME", tmp)

	for _, key := range []string{
		"RUNLET_WORKER_DIR",
		"RUNLET_WORKER_INTERPRETER",
		"RUNLET_WORKER_SCRIPT",
		"RUNLET_WORKER_PID_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	return tmp
}

func TestRunner_ExecutesAllChecks(t *testing.T) {
	isolateEnv(t)

	r := New()
	results := r.Run(context.Background())

	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}

	for _, res := range results {
		if res.Name == "" {
			t.Error("every result should carry its check name")
		}
	}
}

func TestSummary(t *testing.T) {
	results := []Result{
		{Status: StatusPass},
		{Status: StatusPass},
		{Status: StatusWarn},
		{Status: StatusFail},
	}

	passed, failed, warnings := Summary(results)
	if passed != 2 || failed != 1 || warnings != 1 {
		t.Errorf("Summary = (%d, %d, %d), want (2, 1, 1)", passed, failed, warnings)
	}
}

func TestCheckWorkdir(t *testing.T) {
	tmp := isolateEnv(t)

	t.Setenv("RUNLET_WORKER_DIR", tmp)

	if res := checkWorkdir(context.Background()); res.Status != StatusPass {
		t.Errorf("existing dir should pass, got %+v", res)
	}

	t.Setenv("RUNLET_WORKER_DIR", filepath.Join(tmp, "missing"))

	if res := checkWorkdir(context.Background()); res.Status != StatusFail {
		t.Errorf("missing dir should fail, got %+v", res)
	}
}

func TestCheckScript(t *testing.T) {
	tmp := isolateEnv(t)
	t.Setenv("RUNLET_WORKER_DIR", tmp)

	if res := checkScript(context.Background()); res.Status != StatusFail {
		t.Errorf("absent script should fail, got %+v", res)
	}

	if err := os.WriteFile(filepath.Join(tmp, "worker.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if res := checkScript(context.Background()); res.Status != StatusPass {
		t.Errorf("present script should pass, got %+v", res)
	}
}

func TestCheckInterpreter_Missing(t *testing.T) {
	isolateEnv(t)
	t.Setenv("RUNLET_WORKER_INTERPRETER", "definitely-not-a-real-interpreter")

	if res := checkInterpreter(context.Background()); res.Status != StatusFail {
		t.Errorf("missing interpreter should fail, got %+v", res)
	}
}

func TestCheckPidfile(t *testing.T) {
	tmp := isolateEnv(t)
	t.Setenv("RUNLET_WORKER_DIR", tmp)

	// No pidfile at all: pass.
	if res := checkPidfile(context.Background()); res.Status != StatusPass {
		t.Errorf("no pidfile should pass, got %+v", res)
	}

	// Live pid: pass.
	pidPath := filepath.Join(tmp, "worker.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatal(err)
	}

	if res := checkPidfile(context.Background()); res.Status != StatusPass {
		t.Errorf("live pid should pass, got %+v", res)
	}

	// Stale pid: warn. Use a pid that is near-certainly unused.
	if runtime.GOOS != "windows" {
		if err := os.WriteFile(pidPath, []byte("999999"), 0o644); err != nil {
			t.Fatal(err)
		}

		if res := checkPidfile(context.Background()); res.Status != StatusWarn {
			t.Errorf("stale pid should warn, got %+v", res)
		}
	}
}

func TestStatusSymbol(t *testing.T) {
	if StatusPass.Symbol() == StatusFail.Symbol() {
		t.Error("pass and fail should render differently")
	}
}
