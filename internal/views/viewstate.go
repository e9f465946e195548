// Package views holds the presentation state of each screen. Every field is
// owned by the UI dispatcher: bus and session callbacks mutate it in place,
// and the exported methods do their I/O on the caller's goroutine before
// handing the result to the dispatcher.
package views

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/citadel/internal/domain"
)

// Phase is the load phase of a screen
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseEmpty
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseEmpty:
		return "empty"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// ViewState is what a screen renders besides its rows
type ViewState struct {
	Phase   Phase
	Message string // User-facing text for PhaseError
	Offline bool   // Rows came from the local cache after a remote failure
}

func loadedOrEmpty(n int) ViewState {
	if n == 0 {
		return ViewState{Phase: PhaseEmpty}
	}
	return ViewState{Phase: PhaseLoaded}
}

func errorState(err error) ViewState {
	return ViewState{Phase: PhaseError, Message: userMessage(err)}
}

// userMessage renders err for display
func userMessage(err error) string {
	if ae, ok := domain.AsAuthError(err); ok {
		return ae.Message()
	}
	var te *domain.TransportError
	if errors.As(err, &te) {
		switch te.Kind {
		case domain.TransportUnreachable:
			return "Unable to reach the server. Check your connection"
		case domain.TransportNotFound:
			return "Nothing found"
		case domain.TransportDecode:
			return "The server sent an unexpected response"
		}
	}
	return err.Error()
}

// background tracks goroutines started from callbacks so Close can wait for them.
// After Close, Go drops new work.
type background struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// Go runs fn on a new goroutine and reports whether it was started
func (b *background) Go(fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
	return true
}

// Wait blocks until every background reload has finished
func (b *background) Wait() {
	b.wg.Wait()
}

// Close stops accepting work and waits for what is running
func (b *background) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
