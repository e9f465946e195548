// Package biometric provides authentication capabilities for the session coordinator.
package biometric

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/mmcdole/citadel/internal/domain"
)

// MinPINLength is the shortest PIN accepted by HashPIN
const MinPINLength = 4

// ErrPINMismatch is returned by ReadNewPIN when the confirmation differs
var ErrPINMismatch = errors.New("PINs do not match")

// Terminal authenticates with a PIN typed on the controlling terminal.
// The PIN is compared against a bcrypt hash; after MaxAttempts consecutive
// failures every challenge reports LockedOut.
type Terminal struct {
	pinHash     []byte
	maxAttempts int
	fd          int
	out         io.Writer
	read        func() ([]byte, error)

	mu       sync.Mutex
	failures int
	cancel   context.CancelFunc
	pending  chan readResult // Read still outstanding from a cancelled challenge
}

type readResult struct {
	pin []byte
	err error
}

// TerminalOption configures a Terminal
type TerminalOption func(*Terminal)

// WithReader replaces terminal input, used for piped input and tests
func WithReader(read func() ([]byte, error)) TerminalOption {
	return func(t *Terminal) { t.read = read }
}

// WithOutput redirects prompts
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) { t.out = w }
}

// NewTerminal creates a terminal authenticator for the given bcrypt hash
func NewTerminal(pinHash string, maxAttempts int, opts ...TerminalOption) *Terminal {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	t := &Terminal{
		pinHash:     []byte(pinHash),
		maxAttempts: maxAttempts,
		fd:          int(syscall.Stdin),
		out:         os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IsAvailable reports whether a PIN can be read
func (t *Terminal) IsAvailable() bool {
	return t.read != nil || term.IsTerminal(t.fd)
}

// Kind always reports a passcode mechanism
func (t *Terminal) Kind() domain.AuthKind {
	return domain.AuthKindPasscode
}

// Challenge prompts for the PIN once
func (t *Terminal) Challenge(ctx context.Context, reason string) error {
	if len(t.pinHash) == 0 {
		return domain.NewAuthError(domain.AuthPasscodeNotSet)
	}

	t.mu.Lock()
	if t.failures >= t.maxAttempts {
		t.mu.Unlock()
		return domain.NewAuthError(domain.AuthLockedOut)
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()
	defer cancel()

	fmt.Fprintln(t.out, reason)
	fmt.Fprint(t.out, "PIN: ")

	done := t.startRead()
	var res readResult
	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.NewAuthError(domain.AuthTimeout)
		}
		return domain.NewAuthError(domain.AuthSystemCancelled)
	case res = <-done:
		t.mu.Lock()
		t.pending = nil
		t.mu.Unlock()
	}
	fmt.Fprintln(t.out)

	if res.err != nil {
		if errors.Is(res.err, io.EOF) {
			return domain.NewAuthError(domain.AuthUserCancelled)
		}
		return &domain.AuthError{Kind: domain.AuthUnknown, Detail: res.err.Error()}
	}
	pin := strings.TrimSpace(string(res.pin))
	if pin == "" {
		return domain.NewAuthError(domain.AuthUserCancelled)
	}

	if err := bcrypt.CompareHashAndPassword(t.pinHash, []byte(pin)); err != nil {
		t.mu.Lock()
		t.failures++
		locked := t.failures >= t.maxAttempts
		t.mu.Unlock()
		if locked {
			return domain.NewAuthError(domain.AuthLockedOut)
		}
		return domain.NewAuthError(domain.AuthChallengeFailed)
	}

	t.mu.Lock()
	t.failures = 0
	t.mu.Unlock()
	return nil
}

// Invalidate cancels a prompt in progress
func (t *Terminal) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// startRead returns the outstanding read, starting one if none is pending.
// A terminal read cannot be interrupted, so a read left behind by a cancelled
// challenge is handed to the next challenge instead of racing a second reader.
func (t *Terminal) startRead() chan readResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		ch := make(chan readResult, 1)
		t.pending = ch
		go func() {
			pin, err := t.readPIN()
			ch <- readResult{pin, err}
		}()
	}
	return t.pending
}

func (t *Terminal) readPIN() ([]byte, error) {
	if t.read != nil {
		return t.read()
	}
	return term.ReadPassword(t.fd)
}

// HashPIN validates pin and returns its bcrypt hash
func HashPIN(pin string) (string, error) {
	if len(pin) < MinPINLength {
		return "", fmt.Errorf("PIN must have at least %d digits", MinPINLength)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return "", fmt.Errorf("PIN must contain digits only")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

// ReadNewPIN prompts twice for a new PIN without echo and returns it once confirmed.
// Piped input falls back to line reads.
func ReadNewPIN(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	var lines *bufio.Scanner
	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if term.IsTerminal(fd) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", fmt.Errorf("failed to read PIN: %w", err)
			}
			return strings.TrimSpace(string(b)), nil
		}
		if lines == nil {
			lines = bufio.NewScanner(in)
		}
		if !lines.Scan() {
			return "", fmt.Errorf("failed to read PIN")
		}
		return strings.TrimSpace(lines.Text()), nil
	}

	pin, err := read("New PIN: ")
	if err != nil {
		return "", err
	}
	confirm, err := read("Confirm PIN: ")
	if err != nil {
		return "", err
	}
	if pin != confirm {
		return "", ErrPINMismatch
	}
	return pin, nil
}
