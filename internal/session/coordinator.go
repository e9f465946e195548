// Package session manages the lifetime of the authenticated session that
// gates access to favorites.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/runloop"
)

// DefaultTimeout is the session lifetime when none is configured
const DefaultTimeout = 5 * time.Minute

// Config holds Coordinator settings
type Config struct {
	Timeout  time.Duration    // Session lifetime; DefaultTimeout when zero
	Clock    Clock            // SystemClock when nil
	Executor runloop.Executor // Observer delivery context; runs inline when nil
}

// Coordinator is the session state machine.
//
// Unauthenticated -> Authenticating on Authenticate.
// Authenticating -> Authenticated or Failed depending on the challenge.
// Authenticated -> Unauthenticated on expiry, Lock or ResignActive.
//
// At most one challenge is in flight and at most one expiry timer is armed.
type Coordinator struct {
	auth    domain.Authenticator
	clock   Clock
	timeout time.Duration
	exec    runloop.Executor
	logger  *slog.Logger

	mu        sync.Mutex
	state     domain.AuthState
	expiresAt time.Time
	lastErr   error
	timer     Timer
	session   uint64 // Bumped whenever the armed timer becomes stale
	attempt   uint64 // Bumped whenever the in-flight challenge becomes stale
	cancel    context.CancelFunc
	outbox    []domain.AuthState // Changes not yet handed to the executor
	draining  bool

	obsMu     sync.Mutex
	observers map[int]func(domain.AuthState)
	nextObs   int
}

// NewCoordinator creates a coordinator in the Unauthenticated state
func NewCoordinator(auth domain.Authenticator, cfg Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Executor == nil {
		cfg.Executor = runloop.Immediate{}
	}
	return &Coordinator{
		auth:      auth,
		clock:     cfg.Clock,
		timeout:   cfg.Timeout,
		exec:      cfg.Executor,
		logger:    logger,
		state:     domain.AuthStateUnauthenticated,
		observers: make(map[int]func(domain.AuthState)),
	}
}

// Availability reports what the underlying capability can do
func (c *Coordinator) Availability() domain.BiometricAvailability {
	return domain.CheckAvailability(c.auth)
}

// Timeout returns the configured session lifetime
func (c *Coordinator) Timeout() time.Duration {
	return c.timeout
}

// Authenticate runs a challenge and, on success, starts a session.
// A call supersedes any challenge still in flight; the superseded call
// returns a SystemCancelled error and leaves the state alone.
// Errors are always *domain.AuthError.
func (c *Coordinator) Authenticate(ctx context.Context, reason string) error {
	if reason == "" {
		return domain.NewAuthError(domain.AuthInvalidContext)
	}

	if !c.Availability().CanAuthenticate() {
		err := domain.NewAuthError(domain.AuthUnavailable)
		c.mu.Lock()
		c.supersedeLocked()
		c.setLocked(domain.AuthStateFailed)
		c.lastErr = err
		c.mu.Unlock()
		c.flush()
		return err
	}

	c.mu.Lock()
	c.supersedeLocked()
	c.attempt++
	gen := c.attempt
	attemptCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.lastErr = nil
	c.setLocked(domain.AuthStateAuthenticating)
	c.mu.Unlock()
	c.flush()

	c.logger.Info("authenticating", "reason", reason, "kind", c.auth.Kind().DisplayName())
	challengeErr := c.auth.Challenge(attemptCtx, reason)
	interrupted := attemptCtx.Err() != nil
	cancel()

	c.mu.Lock()
	if gen != c.attempt {
		c.mu.Unlock()
		c.logger.Debug("authentication superseded")
		return domain.NewAuthError(domain.AuthSystemCancelled)
	}
	c.cancel = nil

	if challengeErr != nil {
		authErr := classify(challengeErr, interrupted)
		c.lastErr = authErr
		c.setLocked(domain.AuthStateFailed)
		c.mu.Unlock()
		c.logger.Info("authentication failed", "error", authErr, "recoverable", authErr.Recoverable())
		c.flush()
		return authErr
	}

	c.armLocked()
	expires := c.expiresAt
	c.setLocked(domain.AuthStateAuthenticated)
	c.mu.Unlock()
	c.logger.Info("session started", "expiresAt", expires)
	c.flush()
	return nil
}

// ExtendSession restarts the full timeout from now without a new challenge
func (c *Coordinator) ExtendSession() error {
	c.mu.Lock()
	if !c.activeLocked() {
		expired := c.state == domain.AuthStateAuthenticated
		if expired {
			c.endLocked()
		}
		c.mu.Unlock()
		if expired {
			c.auth.Invalidate()
			c.flush()
		}
		return domain.ErrSessionInactive
	}
	c.armLocked()
	expires := c.expiresAt
	c.mu.Unlock()

	c.logger.Debug("session extended", "expiresAt", expires)
	return nil
}

// Lock ends the session and cancels any in-flight challenge
func (c *Coordinator) Lock() {
	c.terminate("locked")
}

// ResignActive signals that the host lost foreground. The session ends immediately.
func (c *Coordinator) ResignActive() {
	c.terminate("resigned active")
}

// State returns the current state. An Authenticated session past its
// expiration reports Unauthenticated even if the timer has not run yet.
func (c *Coordinator) State() domain.AuthState {
	c.mu.Lock()
	if c.state == domain.AuthStateAuthenticated && !c.activeLocked() {
		c.endLocked()
		c.mu.Unlock()
		c.logger.Info("session expired")
		c.auth.Invalidate()
		c.flush()
		return domain.AuthStateUnauthenticated
	}
	defer c.mu.Unlock()
	return c.state
}

// IsActive reports whether an unexpired session exists
func (c *Coordinator) IsActive() bool {
	return c.State() == domain.AuthStateAuthenticated
}

// ExpiresAt returns the expiration of the active session
func (c *Coordinator) ExpiresAt() (time.Time, bool) {
	if !c.IsActive() {
		return time.Time{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiresAt, !c.expiresAt.IsZero()
}

// LastError returns the error of the most recent failed challenge
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Observe registers fn for every state change. Calls happen on the executor.
// The returned function unregisters fn.
func (c *Coordinator) Observe(fn func(domain.AuthState)) func() {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	return func() {
		c.obsMu.Lock()
		delete(c.observers, id)
		c.obsMu.Unlock()
	}
}

func (c *Coordinator) terminate(why string) {
	c.mu.Lock()
	c.supersedeLocked()
	prev := c.state
	c.endLocked()
	c.mu.Unlock()

	c.auth.Invalidate()
	if prev == domain.AuthStateAuthenticated {
		c.logger.Info("session ended", "reason", why)
	}
	c.flush()
}

func (c *Coordinator) expire(session uint64) {
	c.mu.Lock()
	if session != c.session || c.state != domain.AuthStateAuthenticated {
		c.mu.Unlock()
		return
	}
	c.endLocked()
	c.mu.Unlock()

	c.logger.Info("session expired")
	c.auth.Invalidate()
	c.flush()
}

// armLocked replaces any armed timer with a fresh one for the full timeout
func (c *Coordinator) armLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.session++
	gen := c.session
	c.expiresAt = c.clock.Now().Add(c.timeout)
	c.timer = c.clock.AfterFunc(c.timeout, func() { c.expire(gen) })
}

// endLocked drops the session and its timer
func (c *Coordinator) endLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.session++
	c.expiresAt = time.Time{}
	c.setLocked(domain.AuthStateUnauthenticated)
}

// supersedeLocked cancels the in-flight challenge and any running session
func (c *Coordinator) supersedeLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.attempt++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.session++
	c.expiresAt = time.Time{}
}

func (c *Coordinator) activeLocked() bool {
	return c.state == domain.AuthStateAuthenticated && c.clock.Now().Before(c.expiresAt)
}

// setLocked changes the state and queues the change for observers
func (c *Coordinator) setLocked(s domain.AuthState) {
	if c.state == s {
		return
	}
	c.state = s
	c.outbox = append(c.outbox, s)
}

// flush hands queued changes to the executor in the order they happened.
// Only one caller drains at a time; changes queued meanwhile, including
// ones made by observers running inline, are picked up by that caller.
func (c *Coordinator) flush() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.outbox) > 0 {
		batch := c.outbox
		c.outbox = nil
		c.mu.Unlock()
		for _, s := range batch {
			c.deliver(s)
		}
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

func (c *Coordinator) deliver(s domain.AuthState) {
	c.obsMu.Lock()
	fns := make([]func(domain.AuthState), 0, len(c.observers))
	for id := 0; id < c.nextObs; id++ {
		if fn, ok := c.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.obsMu.Unlock()
	if len(fns) == 0 {
		return
	}
	c.exec.Post(func() {
		for _, fn := range fns {
			fn(s)
		}
	})
}

// classify maps a challenge failure onto the auth taxonomy
func classify(err error, interrupted bool) *domain.AuthError {
	if ae, ok := domain.AsAuthError(err); ok {
		return ae
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewAuthError(domain.AuthTimeout)
	case errors.Is(err, context.Canceled), interrupted:
		return domain.NewAuthError(domain.AuthSystemCancelled)
	}
	return &domain.AuthError{Kind: domain.AuthUnknown, Detail: err.Error()}
}
