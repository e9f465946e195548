package domain

// AuthKind identifies the authentication mechanism a device offers
type AuthKind int

const (
	AuthKindNone      AuthKind = iota
	AuthKindBiometric          // Face or fingerprint sensor
	AuthKindPasscode           // Device passcode / PIN
)

// DisplayName returns a human-readable mechanism name
func (k AuthKind) DisplayName() string {
	switch k {
	case AuthKindBiometric:
		return "Biometrics"
	case AuthKindPasscode:
		return "PIN"
	default:
		return "Not available"
	}
}

// BiometricAvailability summarizes the authentication capability of the device
type BiometricAvailability struct {
	Available bool
	Kind      AuthKind
}

// CanAuthenticate reports whether a challenge can be issued
func (b BiometricAvailability) CanAuthenticate() bool {
	return b.Available && b.Kind != AuthKindNone
}

// CheckAvailability queries an Authenticator
func CheckAvailability(a Authenticator) BiometricAvailability {
	if !a.IsAvailable() {
		return BiometricAvailability{Available: false, Kind: AuthKindNone}
	}
	return BiometricAvailability{Available: true, Kind: a.Kind()}
}

// AuthState is the state of the authenticated session
type AuthState int

const (
	AuthStateUnauthenticated AuthState = iota
	AuthStateAuthenticating
	AuthStateAuthenticated
	AuthStateFailed
)

// String returns a human-readable representation of the state
func (s AuthState) String() string {
	switch s {
	case AuthStateUnauthenticated:
		return "Unauthenticated"
	case AuthStateAuthenticating:
		return "Authenticating"
	case AuthStateAuthenticated:
		return "Authenticated"
	case AuthStateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
