//go:build unix

package launch

import (
	"os"
	"syscall"
)

// detachSysProcAttr starts the child in its own session so it survives
// the launcher and its controlling terminal.
func detachSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

// terminateProcess asks the child to exit gracefully.
func terminateProcess(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
