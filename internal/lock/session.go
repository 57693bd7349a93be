package lock

import (
	"context"

	"github.com/dmitrijs2005/screenlock/internal/models"
)

// IsLocked reports whether the app must be unlocked before use. The idle
// timeout is evaluated here, against the last recorded activity.
func (e *Engine) IsLocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lockedLocked()
}

// Touch records user activity. It returns false, and records nothing, when
// the session is already locked.
func (e *Engine) Touch() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lockedLocked() {
		return false
	}
	e.lastActive = e.clock.Now()
	return true
}

// Lock locks the session now. It has no effect while the lock is off.
func (e *Engine) Lock() {
	e.mu.Lock()
	defer e.release()

	if e.cfg.Enabled && !e.locked {
		e.locked = true
		e.log.Debug(context.Background(), "session locked")
	}
}

// Background is called when the app leaves the foreground. With the
// "immediately" timeout the session locks right away; longer timeouts are
// measured from the last activity by IsLocked.
func (e *Engine) Background() {
	e.mu.Lock()
	defer e.release()

	if e.cfg.Enabled && e.cfg.Timeout == models.TimeoutImmediately && !e.locked {
		e.locked = true
		e.log.Debug(context.Background(), "session locked on background")
	}
}

func (e *Engine) lockedLocked() bool {
	if !e.cfg.Enabled {
		return false
	}
	if e.locked {
		return true
	}
	d, finite := e.cfg.Timeout.Duration()
	if finite && d > 0 && e.clock.Now().Sub(e.lastActive) >= d {
		e.locked = true
		e.log.Debug(context.Background(), "session locked after idle timeout", "timeout", e.cfg.Timeout)
	}
	return e.locked
}

func (e *Engine) unlockSession() {
	e.locked = false
	e.lastActive = e.clock.Now()
}
