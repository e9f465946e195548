package biometric

import (
	"context"
	"sync"

	"github.com/mmcdole/citadel/internal/domain"
)

// Scripted is an in-memory Authenticator that replays queued outcomes.
// An empty queue means success.
type Scripted struct {
	mu            sync.Mutex
	available     bool
	kind          domain.AuthKind
	outcomes      []error
	reasons       []string
	invalidations int
	hold          chan struct{}
}

// NewScripted creates an available biometric authenticator
func NewScripted() *Scripted {
	return &Scripted{available: true, kind: domain.AuthKindBiometric}
}

// SetAvailability changes what IsAvailable and Kind report
func (s *Scripted) SetAvailability(available bool, kind domain.AuthKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
	s.kind = kind
}

// Enqueue appends outcomes for upcoming challenges. nil is success.
func (s *Scripted) Enqueue(outcomes ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcomes...)
}

// Hold makes challenges block until Release or context cancellation
func (s *Scripted) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = make(chan struct{})
}

// Release unblocks held challenges
func (s *Scripted) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold != nil {
		close(s.hold)
		s.hold = nil
	}
}

// Calls returns the number of challenges issued
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reasons)
}

// Reasons returns the reason strings passed to Challenge
func (s *Scripted) Reasons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reasons...)
}

// Invalidations returns how many times Invalidate was called
func (s *Scripted) Invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidations
}

func (s *Scripted) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *Scripted) Kind() domain.AuthKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

func (s *Scripted) Challenge(ctx context.Context, reason string) error {
	s.mu.Lock()
	s.reasons = append(s.reasons, reason)
	var outcome error
	if len(s.outcomes) > 0 {
		outcome = s.outcomes[0]
		s.outcomes = s.outcomes[1:]
	}
	hold := s.hold
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return domain.NewAuthError(domain.AuthSystemCancelled)
		}
	}
	return outcome
}

func (s *Scripted) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
}
