// Package singleton implements the per-user-data-directory rendezvous that
// lets a second launch hand its request to the running instance.
//
// The owner holds <dir>/SingletonLock (created with O_EXCL, content
// "host-pid") and listens on a Unix domain socket. A second launch dials
// the socket, writes one JSON request line and waits for "ACK".
package singleton

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/switches"
)

// ErrOwnedByOtherProcess is returned by Create when a live process already
// owns the user data directory.
var ErrOwnedByOtherProcess = errors.New("user data directory is in use by another process")

// DefaultNotifyTimeout bounds a hand-off when Options leaves it unset.
const DefaultNotifyTimeout = 20 * time.Second

// Handler receives delivered launch requests, one at a time, in order.
type Handler func(Request)

// Options configures a Channel.
type Options struct {
	// NotifyTimeout bounds dialing, sending and waiting for the reply.
	NotifyTimeout time.Duration
	// Executable is our binary, used to recognise our own hung instances.
	Executable string
	Logger     *zap.Logger
}

// Channel is the notification channel of one user data directory.
type Channel struct {
	dir        string
	lockPath   string
	socketPath string
	timeout    time.Duration
	executable string
	logger     *zap.Logger
	procs      inspector

	// deliverMu serializes handler calls and the locked check with Lock and
	// Unlock.
	deliverMu sync.Mutex

	mu       sync.Mutex
	handler  Handler
	listener net.Listener
	owned    bool
	locked   bool
	queue    []Request
	zombies  []int32
	done     chan struct{}
}

// New returns the channel of userDataDir. It has no side effects.
func New(userDataDir string, opts Options) *Channel {
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Channel{
		dir:        userDataDir,
		lockPath:   filepath.Join(userDataDir, lockFileName),
		socketPath: socketPath(userDataDir),
		timeout:    opts.NotifyTimeout,
		executable: opts.Executable,
		logger:     opts.Logger.Named("singleton"),
		procs:      gopsutilInspector{},
	}
}

// Dir returns the user data directory the channel is scoped to.
func (c *Channel) Dir() string { return c.dir }

// NotifyOtherProcess delivers the launch request to the live owner. It
// returns false when there is no owner or the owner did not acknowledge
// within the timeout.
func (c *Channel) NotifyOtherProcess(mode switches.ShowMode, argv []string, cwd string) bool {
	req := Request{
		ShowMode: mode.String(),
		Argv:     append([]string(nil), argv...),
		Cwd:      cwd,
		PID:      os.Getpid(),
	}
	if err := c.send(req); err != nil {
		c.logger.Debug("No instance to notify", zap.String("dir", c.dir), zap.Error(err))
		return false
	}
	c.logger.Info("Handed launch request to running instance", zap.String("dir", c.dir))
	return true
}

func (c *Channel) send(req Request) error {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.socketPath, err)
	}
	defer conn.Close()
	return writeRequest(conn, req, c.timeout)
}

// Create makes this process the owner and starts delivering requests to
// handler. A stale lock left by a process that is gone is replaced once.
func (c *Channel) Create(handler Handler) error {
	if handler == nil {
		return fmt.Errorf("singleton: nil handler")
	}
	if err := os.MkdirAll(c.dir, 0750); err != nil {
		return fmt.Errorf("creating user data directory: %w", err)
	}

	me := self()
	if err := c.claimLock(me); err != nil {
		return err
	}

	// We own the lock, so any socket left behind is stale.
	os.Remove(c.socketPath)
	ln, err := net.Listen("unix", c.socketPath)
	if err != nil {
		os.Remove(c.lockPath)
		return fmt.Errorf("listening on %s: %w", c.socketPath, err)
	}

	c.mu.Lock()
	c.handler = handler
	c.listener = ln
	c.owned = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.acceptLoop(ln)
	c.logger.Info("Notification channel created",
		zap.String("dir", c.dir),
		zap.String("socket", c.socketPath))
	return nil
}

func (c *Channel) claimLock(me owner) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := createLock(c.lockPath, me)
		if err == nil {
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("creating singleton lock: %w", err)
		}

		rec, rerr := readOwner(c.lockPath)
		if rerr == nil && (rec.host != me.host || c.ownerExists(rec.pid)) {
			return fmt.Errorf("%w (owner %s)", ErrOwnedByOtherProcess, rec)
		}
		c.logger.Info("Removing stale singleton lock", zap.String("path", c.lockPath))
		c.removeStale()
	}
	return ErrOwnedByOtherProcess
}

func (c *Channel) ownerExists(pid int) bool {
	exists, err := c.procs.Exists(context.Background(), int32(pid))
	return err != nil || exists
}

func (c *Channel) acceptLoop(ln net.Listener) {
	defer close(c.done)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			c.logger.Warn("Accept failed", zap.Error(err))
			continue
		}
		c.serve(conn)
	}
}

func (c *Channel) serve(conn net.Conn) {
	req, err := readRequest(conn, c.timeout)
	conn.Close()
	if err != nil {
		c.logger.Warn("Dropped malformed launch request", zap.Error(err))
		return
	}
	if req.Ping {
		return
	}

	// deliverMu orders this against Lock and Unlock: a request is either
	// queued or delivered before Lock returns.
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.mu.Lock()
	if c.locked {
		c.queue = append(c.queue, req)
		c.mu.Unlock()
		c.logger.Debug("Queued launch request while locked", zap.Int("from_pid", req.PID))
		return
	}
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(req)
	}
}

// Lock makes the channel queue requests instead of delivering them. It
// waits for a delivery already in progress to finish.
func (c *Channel) Lock() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
}

// Unlock delivers the queued requests in arrival order and resumes normal
// delivery.
func (c *Channel) Unlock() {
	c.deliverMu.Lock()
	c.mu.Lock()
	c.locked = false
	pending := c.queue
	c.queue = nil
	h := c.handler
	c.mu.Unlock()

	if h != nil {
		for _, r := range pending {
			h(r)
		}
	}
	c.deliverMu.Unlock()
}

// Locked reports whether deliveries are being queued.
func (c *Channel) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// ZombieCandidates returns the PIDs HuntForZombieProcesses judged dead or hung.
func (c *Channel) ZombieCandidates() []int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int32(nil), c.zombies...)
}

// Close stops listening and, if this process is the owner, removes the
// socket and lock. Safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	ln, owned, done := c.listener, c.owned, c.done
	c.listener = nil
	c.owned = false
	c.mu.Unlock()

	if !owned {
		return nil
	}
	err := ln.Close()
	<-done
	os.Remove(c.socketPath)
	if rerr := os.Remove(c.lockPath); rerr != nil && !os.IsNotExist(rerr) && err == nil {
		err = rerr
	}
	return err
}
