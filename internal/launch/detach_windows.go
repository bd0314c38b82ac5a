//go:build windows

package launch

import (
	"os"
	"syscall"
)

const detachedProcess = 0x00000008

// detachSysProcAttr detaches the child from the launcher's console so
// it survives the launcher exiting.
func detachSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}

// terminateProcess ends the child; Windows has no graceful SIGTERM
// equivalent for a detached console process.
func terminateProcess(p *os.Process) error {
	return p.Kill()
}
