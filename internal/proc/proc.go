// Package proc inspects and signals worker processes by pid.
//
// The pid always comes from a pidfile, so every function here has to
// tolerate the process being gone already.
package proc

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// pollInterval is how often WaitExit re-checks liveness.
const pollInterval = 100 * time.Millisecond

// Alive reports whether a process with the given pid currently exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	exists, err := process.PidExists(int32(pid))

	return err == nil && exists
}

// Stat holds a point-in-time snapshot of a running worker process.
type Stat struct {
	PID        int       `json:"pid"`
	Cmdline    string    `json:"cmdline,omitempty"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	Uptime     string    `json:"uptime,omitempty"`
	CPUPercent float64   `json:"cpuPercent,omitempty"`
	RSSBytes   uint64    `json:"rssBytes,omitempty"`
}

// Inspect gathers process detail for a live pid. Fields that cannot be
// read (permissions, platform gaps) are left zero rather than failing
// the whole snapshot.
func Inspect(pid int) (*Stat, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("process %d not found: %w", pid, err)
	}

	stat := &Stat{PID: pid}

	if cmdline, err := p.Cmdline(); err == nil {
		stat.Cmdline = cmdline
	}

	if createMs, err := p.CreateTime(); err == nil && createMs > 0 {
		stat.StartedAt = time.UnixMilli(createMs)
		stat.Uptime = time.Since(stat.StartedAt).Round(time.Second).String()
	}

	if cpu, err := p.CPUPercent(); err == nil {
		stat.CPUPercent = cpu
	}

	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		stat.RSSBytes = mem.RSS
	}

	return stat, nil
}

// Terminate asks the process to exit (SIGTERM on unix).
func Terminate(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}

	if err := p.Terminate(); err != nil {
		return fmt.Errorf("terminate process %d: %w", pid, err)
	}

	return nil
}

// Kill forcibly ends the process (SIGKILL on unix).
func Kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}

	if err := p.Kill(); err != nil {
		return fmt.Errorf("kill process %d: %w", pid, err)
	}

	return nil
}

// WaitExit blocks until the process is gone, the timeout elapses, or
// ctx is canceled. It returns true if the process exited.
func WaitExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)

	defer ticker.Stop()

	for {
		if !Alive(pid) {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return !Alive(pid)
		case <-ticker.C:
		}
	}
}
