// Package models defines the screen lock data model shared by the store,
// the lock engine and the unlock gate.
package models

import (
	"fmt"
	"time"
)

// Timeout is the idle duration after which the screen lock requires the
// passcode again.
type Timeout string

const (
	TimeoutImmediately    Timeout = "immediately"
	TimeoutOneMinute      Timeout = "1min"
	TimeoutFiveMinutes    Timeout = "5min"
	TimeoutFifteenMinutes Timeout = "15min"
	TimeoutThirtyMinutes  Timeout = "30min"
	TimeoutNever          Timeout = "never"
)

// Timeouts lists every supported timeout in display order.
var Timeouts = []Timeout{
	TimeoutImmediately,
	TimeoutOneMinute,
	TimeoutFiveMinutes,
	TimeoutFifteenMinutes,
	TimeoutThirtyMinutes,
	TimeoutNever,
}

var timeoutDurations = map[Timeout]time.Duration{
	TimeoutImmediately:    0,
	TimeoutOneMinute:      time.Minute,
	TimeoutFiveMinutes:    5 * time.Minute,
	TimeoutFifteenMinutes: 15 * time.Minute,
	TimeoutThirtyMinutes:  30 * time.Minute,
}

// ParseTimeout converts a stored or user-supplied value into a Timeout.
func ParseTimeout(s string) (Timeout, error) {
	t := Timeout(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown timeout %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the supported values.
func (t Timeout) Valid() bool {
	if t == TimeoutNever {
		return true
	}
	_, ok := timeoutDurations[t]
	return ok
}

// Duration returns the idle duration of t. The second result is false for
// TimeoutNever, which never relocks on idle.
func (t Timeout) Duration() (time.Duration, bool) {
	d, ok := timeoutDurations[t]
	return d, ok
}

// Credential is the stored form of a passcode.
type Credential struct {
	Hash []byte
	Salt []byte
}

// IsZero reports whether no passcode is stored.
func (c Credential) IsZero() bool {
	return len(c.Hash) == 0 || len(c.Salt) == 0
}

// Mode describes the configuration at rest. Exactly one mode applies.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModePaused   Mode = "paused"
	ModeEnabled  Mode = "enabled"
)

// LockConfiguration is the persisted, process-wide screen lock configuration.
type LockConfiguration struct {
	Enabled           bool
	Paused            bool
	Passcode          Credential
	BiometricEnabled  bool
	Timeout           Timeout
	HideSensitiveData bool
}

// DefaultLockConfiguration is the configuration of a first run.
func DefaultLockConfiguration() LockConfiguration {
	return LockConfiguration{Timeout: TimeoutNever}
}

// HasPasscode reports whether a passcode credential is stored.
func (c LockConfiguration) HasPasscode() bool {
	return !c.Passcode.IsZero()
}

// ProtectionActive reports whether protected UI must verify the passcode
// before revealing sensitive values.
func (c LockConfiguration) ProtectionActive() bool {
	return c.Enabled && c.HideSensitiveData
}

// Mode returns the mode the configuration is in.
func (c LockConfiguration) Mode() Mode {
	switch {
	case c.Enabled:
		return ModeEnabled
	case c.Paused:
		return ModePaused
	default:
		return ModeDisabled
	}
}

// Clone returns a copy that shares no memory with c.
func (c LockConfiguration) Clone() LockConfiguration {
	out := c
	out.Passcode = Credential{
		Hash: append([]byte(nil), c.Passcode.Hash...),
		Salt: append([]byte(nil), c.Passcode.Salt...),
	}
	return out
}

// ConfigurationPatch is a partial update of LockConfiguration. Nil fields are
// left unchanged. Reset drops the whole record first, so the other fields
// apply on top of first-run defaults.
type ConfigurationPatch struct {
	Reset             bool
	Enabled           *bool
	Paused            *bool
	Passcode          *Credential
	ClearPasscode     bool
	BiometricEnabled  *bool
	Timeout           *Timeout
	HideSensitiveData *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p ConfigurationPatch) IsEmpty() bool {
	return !p.Reset && p.Enabled == nil && p.Paused == nil && p.Passcode == nil && !p.ClearPasscode &&
		p.BiometricEnabled == nil && p.Timeout == nil && p.HideSensitiveData == nil
}

// Apply returns c with the patch merged in.
func (p ConfigurationPatch) Apply(c LockConfiguration) LockConfiguration {
	if p.Reset {
		c = DefaultLockConfiguration()
	}
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	if p.Paused != nil {
		c.Paused = *p.Paused
	}
	if p.ClearPasscode {
		c.Passcode = Credential{}
	}
	if p.Passcode != nil {
		c.Passcode = *p.Passcode
	}
	if p.BiometricEnabled != nil {
		c.BiometricEnabled = *p.BiometricEnabled
	}
	if p.Timeout != nil {
		c.Timeout = *p.Timeout
	}
	if p.HideSensitiveData != nil {
		c.HideSensitiveData = *p.HideSensitiveData
	}
	return c
}

// Bool returns a pointer to v, for building patches.
func Bool(v bool) *bool { return &v }
