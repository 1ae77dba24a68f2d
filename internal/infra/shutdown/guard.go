package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yndnr/genback/internal/telemetry/logger"
)

// Signals handled by a started Guard.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

// Guard removes the tracked in-flight path when a termination signal
// arrives. It is safe for concurrent use.
type Guard struct {
	mu    sync.Mutex
	path  string
	hooks []func()

	exit   func(code int)
	log    logger.Logger
	cancel context.CancelFunc

	sigCh chan os.Signal
	stop  chan struct{}
	once  sync.Once
}

// Option configures a Guard.
type Option func(*Guard)

// WithExit replaces os.Exit. Tests use it to observe the exit code.
func WithExit(fn func(code int)) Option {
	return func(g *Guard) { g.exit = fn }
}

// WithLogger sets the logger used to report the interruption.
func WithLogger(l logger.Logger) Option {
	return func(g *Guard) { g.log = l }
}

// WithCancel sets the cancel function of the run context. It is called
// before the tracked path is removed so child processes bound to that
// context stop writing into it.
func WithCancel(cancel context.CancelFunc) Option {
	return func(g *Guard) { g.cancel = cancel }
}

// NewGuard creates a guard that tracks nothing.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		exit: os.Exit,
		log:  logger.Default(),
		stop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Track makes path the single in-flight directory, replacing any
// previously tracked one.
func (g *Guard) Track(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.path = path
}

// Clear forgets the tracked path.
func (g *Guard) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.path = ""
}

// Tracked returns the path currently tracked, or "".
func (g *Guard) Tracked() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path
}

// OnInterrupt registers a hook run after the tracked path is removed.
// Hooks are called in reverse order of registration.
func (g *Guard) OnInterrupt(hook func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, hook)
}

// Start installs the signal handler.
func (g *Guard) Start() {
	g.sigCh = make(chan os.Signal, 1)
	signal.Notify(g.sigCh, Signals...)
	go func() {
		select {
		case sig := <-g.sigCh:
			g.Handle(sig)
		case <-g.stop:
		}
	}()
}

// Stop uninstalls the signal handler. It is safe to call more than once.
func (g *Guard) Stop() {
	g.once.Do(func() {
		if g.sigCh != nil {
			signal.Stop(g.sigCh)
		}
		close(g.stop)
	})
}

// Handle performs the interruption sequence for sig. The lock is held
// throughout so the main goroutine cannot move on to another path while
// the tracked one is being removed.
func (g *Guard) Handle(sig os.Signal) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Warn("interrupted, cleaning up", "signal", sig.String(), "path", g.path)
	if g.cancel != nil {
		g.cancel()
	}
	if g.path != "" {
		if err := os.RemoveAll(g.path); err != nil {
			g.log.Error("failed to remove in-flight directory", "path", g.path, "error", err)
		}
		g.path = ""
	}
	for i := len(g.hooks) - 1; i >= 0; i-- {
		g.hooks[i]()
	}
	g.exit(ExitCode(sig))
}

// ExitCode returns the conventional shell exit status for a process
// killed by sig.
func ExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
