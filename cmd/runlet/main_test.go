package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	clierrors "github.com/runlet-dev/runlet/internal/errors"
	"github.com/runlet-dev/runlet/internal/output"
	"github.com/runlet-dev/runlet/internal/terminal"
)

func TestHandleErrorCLIError(t *testing.T) {
	var errBuf bytes.Buffer

	out := output.NewWriter(io.Discard, &errBuf, &terminal.Info{})

	err := &clierrors.CLIError{
		Message: "Something broke",
		Hint:    "Try again",
		Code:    clierrors.ExitConfig,
	}

	if code := handleError(out, err); code != clierrors.ExitConfig {
		t.Errorf("exit code = %d, want %d", code, clierrors.ExitConfig)
	}

	if !strings.Contains(errBuf.String(), "Something broke") {
		t.Errorf("stderr = %q, want error message", errBuf.String())
	}
}

func TestHandleErrorSilentCLIError(t *testing.T) {
	var errBuf bytes.Buffer

	out := output.NewWriter(io.Discard, &errBuf, &terminal.Info{})

	err := clierrors.New(clierrors.ExitGeneral, "")

	if code := handleError(out, err); code != clierrors.ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, clierrors.ExitGeneral)
	}

	if errBuf.Len() != 0 {
		t.Errorf("stderr = %q, want nothing for a silent error", errBuf.String())
	}
}

func TestHandleErrorUnknownCommand(t *testing.T) {
	var errBuf bytes.Buffer

	out := output.NewWriter(io.Discard, &errBuf, &terminal.Info{})

	root := newRootCmd()
	root.SetArgs([]string{"bogus"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for unknown command")
	}

	if code := handleError(out, err); code != clierrors.ExitUsage {
		t.Errorf("exit code = %d, want %d", code, clierrors.ExitUsage)
	}
}

func TestPickFlagOrEnv(t *testing.T) {
	t.Setenv("RUNLET_TEST_PICK", "from-env")

	tests := []struct {
		name     string
		flag     string
		envKey   string
		fallback string
		want     string
	}{
		{"flag wins", "from-flag", "RUNLET_TEST_PICK", "default", "from-flag"},
		{"env when no flag", "", "RUNLET_TEST_PICK", "default", "from-env"},
		{"fallback when nothing", "", "RUNLET_TEST_UNSET", "default", "default"},
		{"whitespace flag ignored", "   ", "RUNLET_TEST_PICK", "default", "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickFlagOrEnv(tt.flag, tt.envKey, tt.fallback); got != tt.want {
				t.Errorf("pickFlagOrEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickBoolFlagOrEnv(t *testing.T) {
	tests := []struct {
		name  string
		flag  bool
		env   string
		want  bool
	}{
		{"flag set", true, "", true},
		{"env 1", false, "1", true},
		{"env true", false, "true", true},
		{"env yes", false, "yes", true},
		{"env 0", false, "0", false},
		{"unset", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RUNLET_TEST_BOOL", tt.env)

			if got := pickBoolFlagOrEnv(tt.flag, "RUNLET_TEST_BOOL"); got != tt.want {
				t.Errorf("pickBoolFlagOrEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInteractiveCommand(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"runlet start", true},
		{"runlet logs", true},
		{"runlet status", false},
		{"runlet config list", false},
	}

	for _, tt := range tests {
		if got := isInteractiveCommand(tt.path); got != tt.want {
			t.Errorf("isInteractiveCommand(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
