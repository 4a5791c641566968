// Package token classifies bearer tokens by the exp claim in their
// payload segment. Decoding is unverified: the client never checks
// signatures, it only needs to know when to refresh. The server remains
// the authority on every request.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRefreshThreshold is how close to expiry a token may get before
// the pipeline refreshes it proactively.
const DefaultRefreshThreshold = 5 * time.Minute

// State is the lifecycle classification of a bearer token.
type State int

const (
	// Invalid means the token could not be decoded or carries no exp
	// claim. Callers treat it exactly like Expired; it must never pass
	// as Fresh.
	Invalid State = iota
	Expired
	ExpiringSoon
	Fresh
)

func (s State) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case Expired:
		return "expired"
	case ExpiringSoon:
		return "expiring_soon"
	default:
		return "fresh"
	}
}

// NeedsRefresh reports whether the pipeline should refresh before
// relying on the token.
func (s State) NeedsRefresh() bool {
	return s != Fresh
}

// Classify decodes the token's payload segment and classifies it
// against the given threshold. Any decode failure, malformed claims
// object, or missing exp claim yields Invalid. Pure: no I/O, safe to
// call on every outgoing request.
func Classify(raw string, threshold time.Duration) State {
	exp, ok := expiresAt(raw)
	if !ok {
		return Invalid
	}

	remaining := time.Until(exp)
	if remaining <= 0 {
		return Expired
	}

	if remaining <= threshold {
		return ExpiringSoon
	}

	return Fresh
}

// Remaining returns the time left until the token expires. ok is false
// when the token cannot be decoded; an already expired token returns a
// negative duration with ok true.
func Remaining(raw string) (time.Duration, bool) {
	exp, ok := expiresAt(raw)
	if !ok {
		return 0, false
	}

	return time.Until(exp), true
}

func expiresAt(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
