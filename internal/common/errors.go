// Package common defines shared constants and sentinel errors used across
// the screen lock components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Persistence failures abort the operation in progress.
	ErrPersistence = errors.New("lock configuration could not be persisted")

	// Passcode entry errors. Both are recoverable: the UI shakes and asks
	// for the passcode again.
	ErrPasscodeMismatch = errors.New("passcodes do not match")
	ErrWrongPasscode    = errors.New("wrong passcode")

	// Biometric errors. None of them changes the passcode state.
	ErrBiometricRegistration  = errors.New("biometric registration failed")
	ErrBiometricUnavailable   = errors.New("biometric authentication is not available")
	ErrBiometricNotRegistered = errors.New("biometric credential is not registered")

	// Precondition errors.
	ErrNotEnabled     = errors.New("screen lock is not enabled")
	ErrAlreadyEnabled = errors.New("screen lock is already enabled")
	ErrNotPaused      = errors.New("screen lock is not paused")
	ErrInvalidState   = errors.New("operation is not allowed in the current state")
	ErrInvalidTimeout = errors.New("invalid lock timeout")
)
