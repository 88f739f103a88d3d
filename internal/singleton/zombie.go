package singleton

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// inspector answers questions about other processes.
type inspector interface {
	Exists(ctx context.Context, pid int32) (bool, error)
	Status(ctx context.Context, pid int32) (string, error)
	Exe(ctx context.Context, pid int32) (string, error)
	Kill(ctx context.Context, pid int32) error
}

// gopsutilInspector is the inspector backed by gopsutil.
type gopsutilInspector struct{}

func (gopsutilInspector) Exists(ctx context.Context, pid int32) (bool, error) {
	return process.PidExistsWithContext(ctx, pid)
}

func (gopsutilInspector) Status(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil || len(status) == 0 {
		return "", err
	}
	return status[0], nil
}

func (gopsutilInspector) Exe(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return p.ExeWithContext(ctx)
}

func (gopsutilInspector) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return p.KillWithContext(ctx)
}

// deadStatuses are the gopsutil states of a process that will never answer.
var deadStatuses = map[string]bool{
	process.Zombie: true,
	"dead":         true,
}

// verdict is the outcome of inspecting a recorded owner.
type verdict int

const (
	ownerAlive   verdict = iota // responsive, or not ours to judge
	ownerGone                   // PID no longer exists or was reused
	ownerZombie                 // our executable, but it will never answer
	ownerHung                   // our executable, alive, not answering
)

func (v verdict) String() string {
	switch v {
	case ownerAlive:
		return "alive"
	case ownerGone:
		return "gone"
	case ownerZombie:
		return "zombie"
	case ownerHung:
		return "hung"
	default:
		return "unknown"
	}
}

// HuntForZombieProcesses cleans up after an owner that no longer answers:
// the lock file names a PID on this host that is missing, a zombie, or a
// hung instance of our executable. Hung or zombie owners are killed and
// the stale lock and socket removed. Failures are only logged.
func (c *Channel) HuntForZombieProcesses(ctx context.Context) {
	rec, err := readOwner(c.lockPath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("No usable singleton lock", zap.Error(err))
		}
		return
	}
	me := self()
	if rec.host != me.host || rec.pid == me.pid {
		return
	}

	v := c.inspect(ctx, rec)
	c.logger.Debug("Inspected singleton owner",
		zap.Int("pid", rec.pid),
		zap.Stringer("verdict", v))

	switch v {
	case ownerAlive:
		return
	case ownerZombie, ownerHung:
		c.mu.Lock()
		c.zombies = append(c.zombies, int32(rec.pid))
		c.mu.Unlock()
		if err := c.procs.Kill(ctx, int32(rec.pid)); err != nil {
			c.logger.Warn("Failed to kill unresponsive instance",
				zap.Int("pid", rec.pid), zap.Error(err))
			return
		}
		c.logger.Info("Killed unresponsive instance", zap.Int("pid", rec.pid))
	}
	c.removeStale()
}

func (c *Channel) inspect(ctx context.Context, rec owner) verdict {
	pid := int32(rec.pid)
	exists, err := c.procs.Exists(ctx, pid)
	if err != nil {
		return ownerAlive
	}
	if !exists {
		return ownerGone
	}

	if c.executable != "" {
		exe, err := c.procs.Exe(ctx, pid)
		if err == nil && exe != "" && !samePath(exe, c.executable) {
			return ownerGone
		}
	}

	if status, err := c.procs.Status(ctx, pid); err == nil && deadStatuses[strings.ToLower(status)] {
		return ownerZombie
	}
	if c.ping() {
		return ownerAlive
	}
	return ownerHung
}

// ping reports whether an owner answers on the socket.
func (c *Channel) ping() bool {
	return c.send(Request{Ping: true, PID: os.Getpid()}) == nil
}

func (c *Channel) removeStale() {
	for _, p := range []string{c.socketPath, c.lockPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("Failed to remove stale singleton file",
				zap.String("path", p), zap.Error(err))
		}
	}
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if ra, err := filepath.EvalSymlinks(a); err == nil {
		a = ra
	}
	if rb, err := filepath.EvalSymlinks(b); err == nil {
		b = rb
	}
	return strings.EqualFold(a, b)
}
