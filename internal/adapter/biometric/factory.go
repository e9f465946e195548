package biometric

import (
	"github.com/mmcdole/citadel/internal/adapter"
	"github.com/mmcdole/citadel/internal/domain"
)

// NewAuthenticator creates the authentication capability for the configuration.
// Without a PIN the terminal adapter still reports available so a challenge
// surfaces PasscodeNotSet with setup instructions.
func NewAuthenticator(cfg *adapter.AuthConfig, opts ...TerminalOption) domain.Authenticator {
	return NewTerminal(cfg.PINHash, cfg.MaxAttempts, opts...)
}
