// Package pidfile reads and writes worker pidfiles.
//
// A pidfile holds a single decimal process id and nothing else. It is
// overwritten on every launch; there is no locking and no staleness
// check — liveness is decided by whoever reads the file.
package pidfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Write records pid as the sole content of the file at path,
// replacing any previous content.
func Write(path string, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("refusing to write invalid pid %d", pid)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("write pidfile %s: %w", path, err)
	}

	return nil
}

// Read parses the process id stored at path. A trailing newline is
// tolerated; anything else is an error.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pidfile %s: %w", path, err)
	}

	if pid <= 0 {
		return 0, fmt.Errorf("pidfile %s holds invalid pid %d", path, pid)
	}

	return pid, nil
}

// Remove deletes the pidfile. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pidfile %s: %w", path, err)
	}

	return nil
}
