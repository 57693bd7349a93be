// Package biometric adapts platform biometric authentication (Face ID,
// Touch ID, fingerprint, Windows Hello) for the screen lock.
//
// The screen lock only needs four things from the platform: whether a
// user-verifying authenticator exists, a label to show, a way to enroll, and
// a way to ask for an assertion. Capability captures exactly that. WebAuthn
// implements it on top of go-webauthn and a Platform that performs the
// actual OS prompt.
package biometric

import (
	"context"
	"strings"
)

// Capability is the biometric collaborator of the lock engine.
//
// Register and Authenticate may block on a platform prompt; they honor ctx.
// Failures are never fatal to the caller: the screen lock keeps working with
// the passcode alone.
type Capability interface {
	IsAvailable(ctx context.Context) bool
	Label() string
	Register(ctx context.Context, purpose string) error
	Authenticate(ctx context.Context) error
	Remove(ctx context.Context) error
}

// LabelFor derives a human-readable method name from a user agent string.
// It is used for display only.
func LabelFor(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "iphone"):
		return "Face ID"
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return "Touch ID"
	case strings.Contains(ua, "android"):
		return "Fingerprint"
	case strings.Contains(ua, "mac"):
		return "Touch ID"
	case strings.Contains(ua, "windows"):
		return "Windows Hello"
	default:
		return "Biometric"
	}
}
