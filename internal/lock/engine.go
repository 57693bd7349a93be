// Package lock implements the passcode state machine that owns the screen
// lock configuration: enabling with a double-entry passcode, verifying the
// passcode for a purpose (disable, unlock, change, resume), toggling
// biometric unlock and tracking the idle session.
//
// The engine is the only writer of the lock configuration. Every call is
// serialised by a mutex; observer callbacks run after the mutex is released
// so they may call back into the engine.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/screenlock/internal/biometric"
	"github.com/dmitrijs2005/screenlock/internal/clock"
	"github.com/dmitrijs2005/screenlock/internal/common"
	"github.com/dmitrijs2005/screenlock/internal/cryptox"
	"github.com/dmitrijs2005/screenlock/internal/logging"
	"github.com/dmitrijs2005/screenlock/internal/models"
)

const (
	DefaultAdvanceDelay = 300 * time.Millisecond
	DefaultFailureDelay = 400 * time.Millisecond

	biometricPurpose = "screen-lock"
)

// Store persists the lock configuration. *passcodestore.Store implements it.
type Store interface {
	Load(ctx context.Context) (models.LockConfiguration, error)
	Save(ctx context.Context, patch models.ConfigurationPatch) error
}

// Options tunes an Engine. The zero value uses the real clock and no
// delays; front-ends normally pass DefaultAdvanceDelay and
// DefaultFailureDelay.
type Options struct {
	Clock clock.Clock

	// AdvanceDelay is the pause between the fourth digit of the first entry
	// and the switch to the confirmation row. Zero or less advances at once.
	AdvanceDelay time.Duration
	// FailureDelay is how long a wrong or mismatching entry stays visible
	// before it is cleared. Zero or less clears at once.
	FailureDelay time.Duration

	// OnChange, if set, receives a snapshot after every call that may have
	// changed the engine.
	OnChange func(Snapshot)
}

// Engine is the screen lock state machine.
type Engine struct {
	mu sync.Mutex

	store    Store
	bio      biometric.Capability
	clock    clock.Clock
	log      logging.Logger
	onChange func(Snapshot)

	advanceDelay time.Duration
	failureDelay time.Duration

	cfg models.LockConfiguration

	state    State
	reason   Reason
	changing bool
	first    digitBuffer
	confirm  digitBuffer
	verify   digitBuffer
	onDone   func(bool)
	attempts int
	lastErr  error
	refocus  bool

	timer    clock.Timer
	timerGen uint64
	pending  func()

	locked     bool
	lastActive time.Time

	// callbacks queued while mu is held.
	queued []func()
}

// New loads the persisted configuration and returns an engine in Idle. The
// session starts locked when the lock is enabled. bio may be nil when the
// device has no biometric support.
func New(ctx context.Context, store Store, bio biometric.Capability, log logging.Logger, opts Options) (*Engine, error) {
	cfg, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	e := &Engine{
		store:        store,
		bio:          bio,
		clock:        opts.Clock,
		log:          log.With("component", "lock"),
		onChange:     opts.OnChange,
		advanceDelay: opts.AdvanceDelay,
		failureDelay: opts.FailureDelay,
		cfg:          cfg,
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	e.locked = cfg.Enabled
	e.lastActive = e.clock.Now()

	e.log.Debug(ctx, "lock engine ready", "mode", cfg.Mode(), "timeout", cfg.Timeout)
	return e, nil
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() models.LockConfiguration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Clone()
}

// Snapshot returns the transient entry state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// BeginEnable starts passcode creation. A paused passcode is replaced once
// the new one is confirmed.
func (e *Engine) BeginEnable() error {
	e.mu.Lock()
	defer e.release()

	if e.cfg.Enabled {
		return common.ErrAlreadyEnabled
	}
	e.reset()
	e.state = StateCreatingFirst
	e.refocus = true
	e.log.Debug(context.Background(), "passcode creation started")
	return nil
}

// BeginChangePasscode asks for the current passcode and, once verified,
// continues into creation of the new one.
func (e *Engine) BeginChangePasscode() error {
	return e.BeginVerify(ReasonChangePasscode, nil)
}

// BeginVerify starts a verification for reason. onDone, if not nil, is
// called once with true after the reason's action has completed, or with
// false when the verification is cancelled or superseded.
//
// ReasonResume requires a paused lock; every other reason requires an
// enabled one.
func (e *Engine) BeginVerify(reason Reason, onDone func(verified bool)) error {
	e.mu.Lock()
	defer e.release()

	switch reason {
	case ReasonResume:
		if !e.cfg.Paused || !e.cfg.HasPasscode() {
			return common.ErrNotPaused
		}
	case ReasonDisablePause, ReasonDisableDelete, ReasonUnlockGate, ReasonUnlockApp, ReasonChangePasscode:
		if !e.cfg.Enabled {
			return common.ErrNotEnabled
		}
	default:
		return fmt.Errorf("%w: unknown reason %v", common.ErrInvalidState, reason)
	}

	e.reset()
	e.state = StateVerifying
	e.reason = reason
	e.onDone = onDone
	e.refocus = true
	e.log.Debug(context.Background(), "verification started", "reason", reason)
	return nil
}

// AppendDigit feeds one character of passcode input. Characters other than
// ASCII digits, input beyond four digits, input while a delayed transition is
// pending and input outside an entry flow are ignored.
//
// The fourth digit completes the row: it schedules the move to confirmation,
// completes enabling, or checks the passcode. ErrPasscodeMismatch and
// ErrWrongPasscode report a failed entry; the engine stays in its state.
func (e *Engine) AppendDigit(ctx context.Context, r rune) error {
	e.mu.Lock()
	defer e.release()

	if !common.IsDigit(r) || e.pending != nil {
		return nil
	}

	switch e.state {
	case StateCreatingFirst:
		if !e.first.push(r) {
			return nil
		}
		e.typed()
		if e.first.full() {
			e.schedule(e.advanceDelay, e.advanceToConfirm)
		}
	case StateConfirmingSecond:
		if !e.confirm.push(r) {
			return nil
		}
		e.typed()
		if e.confirm.full() {
			return e.completeEnable(ctx)
		}
	case StateVerifying:
		if !e.verify.push(r) {
			return nil
		}
		e.typed()
		if e.verify.full() {
			return e.checkPasscode(ctx)
		}
	}
	return nil
}

// Backspace removes the last digit of the active row. With an empty
// confirmation row it steps back to the first entry.
func (e *Engine) Backspace() {
	e.mu.Lock()
	defer e.release()

	switch e.state {
	case StateCreatingFirst:
		e.cancelTimer()
		e.first.pop()
	case StateConfirmingSecond:
		if e.pending != nil {
			return
		}
		if e.confirm.len() == 0 {
			e.state = StateCreatingFirst
			e.first.pop()
			e.refocus = true
			return
		}
		e.confirm.pop()
	case StateVerifying:
		if e.pending != nil {
			return
		}
		e.verify.pop()
	}
}

// Cancel abandons the current flow. Persisted configuration is untouched.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.release()

	if e.state != StateIdle {
		e.log.Debug(context.Background(), "entry cancelled", "state", e.state, "reason", e.reason)
	}
	e.reset()
}

// Settle runs a pending delayed transition now. Front-ends without
// animations call it after each entry.
func (e *Engine) Settle() {
	e.mu.Lock()
	defer e.release()

	if fn := e.pending; fn != nil {
		e.cancelTimer()
		fn()
	}
}

// UnlockWithBiometric completes an unlock verification with the platform
// biometric prompt instead of the passcode. Only ReasonUnlockGate and
// ReasonUnlockApp accept it; configuration changes always need the passcode.
func (e *Engine) UnlockWithBiometric(ctx context.Context) error {
	e.mu.Lock()
	defer e.release()

	if e.state != StateVerifying || (e.reason != ReasonUnlockGate && e.reason != ReasonUnlockApp) {
		return common.ErrInvalidState
	}
	if !e.cfg.BiometricEnabled || e.bio == nil {
		return common.ErrBiometricUnavailable
	}
	if err := e.bio.Authenticate(ctx); err != nil {
		e.log.Warn(ctx, "biometric unlock failed", "error", err)
		return fmt.Errorf("biometric unlock: %w", err)
	}
	return e.verified(ctx)
}

// SetBiometric turns biometric unlock on or off. Turning it on registers a
// platform credential first; if that fails nothing changes.
func (e *Engine) SetBiometric(ctx context.Context, on bool) error {
	e.mu.Lock()
	defer e.release()

	if !e.cfg.Enabled {
		return common.ErrNotEnabled
	}
	if e.cfg.BiometricEnabled == on {
		return nil
	}

	if on {
		if e.bio == nil || !e.bio.IsAvailable(ctx) {
			return fmt.Errorf("%w: %w", common.ErrBiometricRegistration, common.ErrBiometricUnavailable)
		}
		if err := e.bio.Register(ctx, biometricPurpose); err != nil {
			e.log.Warn(ctx, "biometric registration failed", "error", err)
			return fmt.Errorf("%w: %w", common.ErrBiometricRegistration, err)
		}
	}

	if err := e.save(ctx, models.ConfigurationPatch{BiometricEnabled: models.Bool(on)}); err != nil {
		return err
	}
	if !on {
		e.removeBiometric(ctx)
	}
	e.log.Info(ctx, "biometric unlock changed", "enabled", on)
	return nil
}

// SetTimeout changes the idle timeout. Setting the current value is a no-op.
func (e *Engine) SetTimeout(ctx context.Context, t models.Timeout) error {
	e.mu.Lock()
	defer e.release()

	if !t.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidTimeout, t)
	}
	if e.cfg.Timeout == t {
		return nil
	}
	if err := e.save(ctx, models.ConfigurationPatch{Timeout: &t}); err != nil {
		return err
	}
	e.log.Info(ctx, "lock timeout changed", "timeout", t)
	return nil
}

// SetHideSensitiveData changes whether protected values need the passcode.
// Setting the current value is a no-op.
func (e *Engine) SetHideSensitiveData(ctx context.Context, hide bool) error {
	e.mu.Lock()
	defer e.release()

	if e.cfg.HideSensitiveData == hide {
		return nil
	}
	if err := e.save(ctx, models.ConfigurationPatch{HideSensitiveData: models.Bool(hide)}); err != nil {
		return err
	}
	e.log.Info(ctx, "hide sensitive data changed", "hide", hide)
	return nil
}

// ForgetPaused erases the passcode retained by a paused lock. Protection is
// already off, so no verification is needed.
func (e *Engine) ForgetPaused(ctx context.Context) error {
	e.mu.Lock()
	defer e.release()

	if !e.cfg.Paused {
		return common.ErrNotPaused
	}
	if e.reason == ReasonResume {
		e.reset()
	}
	if err := e.save(ctx, models.ConfigurationPatch{Paused: models.Bool(false), ClearPasscode: true}); err != nil {
		return err
	}
	e.log.Info(ctx, "paused passcode forgotten")
	return nil
}

func (e *Engine) advanceToConfirm() {
	e.state = StateConfirmingSecond
	e.confirm.wipe()
	e.refocus = true
	e.log.Debug(context.Background(), "passcode confirmation started")
}

func (e *Engine) completeEnable(ctx context.Context) error {
	if !e.first.equal(&e.confirm) {
		e.lastErr = common.ErrPasscodeMismatch
		e.refocus = true
		e.log.Debug(ctx, "passcode confirmation mismatch")
		e.schedule(e.failureDelay, e.confirm.wipe)
		return common.ErrPasscodeMismatch
	}

	passcode := e.first.bytes()
	cred := cryptox.NewCredential(passcode)
	common.WipeByteArray(passcode)

	patch := models.ConfigurationPatch{
		Enabled:  models.Bool(true),
		Paused:   models.Bool(false),
		Passcode: &cred,
	}
	changing := e.changing
	if err := e.save(ctx, patch); err != nil {
		e.reset()
		return err
	}
	e.reset()
	e.unlockSession()

	if changing {
		e.log.Info(ctx, "passcode changed")
	} else {
		e.log.Info(ctx, "screen lock enabled")
	}
	return nil
}

func (e *Engine) checkPasscode(ctx context.Context) error {
	passcode := e.verify.bytes()
	ok := cryptox.VerifyPasscode(e.cfg.Passcode, passcode)
	common.WipeByteArray(passcode)

	if !ok {
		e.attempts++
		e.lastErr = common.ErrWrongPasscode
		e.refocus = true
		e.log.Warn(ctx, "wrong passcode", "reason", e.reason, "attempts", e.attempts)
		e.schedule(e.failureDelay, e.verify.wipe)
		return common.ErrWrongPasscode
	}
	return e.verified(ctx)
}

// verified performs the action of the current reason.
func (e *Engine) verified(ctx context.Context) error {
	reason := e.reason

	var patch models.ConfigurationPatch
	switch reason {
	case ReasonDisablePause:
		patch = models.ConfigurationPatch{
			Enabled:          models.Bool(false),
			Paused:           models.Bool(true),
			BiometricEnabled: models.Bool(false),
		}
	case ReasonDisableDelete:
		patch = models.ConfigurationPatch{Reset: true}
	case ReasonResume:
		patch = models.ConfigurationPatch{
			Enabled: models.Bool(true),
			Paused:  models.Bool(false),
		}
	}

	removeCredential := reason == ReasonDisableDelete || (e.cfg.BiometricEnabled && patch.BiometricEnabled != nil)
	if err := e.save(ctx, patch); err != nil {
		e.reset()
		return err
	}

	done := e.onDone
	e.onDone = nil
	e.reset()

	if removeCredential {
		e.removeBiometric(ctx)
	}
	if reason == ReasonChangePasscode {
		e.state = StateCreatingFirst
		e.reason = ReasonChangePasscode
		e.changing = true
		e.refocus = true
	}
	if e.cfg.Enabled {
		e.unlockSession()
	} else {
		e.locked = false
	}
	if done != nil {
		e.queue(func() { done(true) })
	}

	e.log.Info(ctx, "passcode verified", "reason", reason, "mode", e.cfg.Mode())
	return nil
}

// save persists patch and applies it to the in-memory configuration only on
// success.
func (e *Engine) save(ctx context.Context, patch models.ConfigurationPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := e.store.Save(ctx, patch); err != nil {
		e.log.Error(ctx, "persisting lock configuration failed", "error", err)
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	e.cfg = patch.Apply(e.cfg)
	return nil
}

func (e *Engine) removeBiometric(ctx context.Context) {
	if e.bio == nil {
		return
	}
	if err := e.bio.Remove(ctx); err != nil {
		e.log.Warn(ctx, "removing biometric credential failed", "error", err)
	}
}

// typed clears the feedback of the previous failed entry.
func (e *Engine) typed() {
	e.lastErr = nil
	e.refocus = false
}

// reset returns to Idle, wiping every buffer and cancelling timers. A
// pending onDone learns that its verification did not happen.
func (e *Engine) reset() {
	e.cancelTimer()
	e.first.wipe()
	e.confirm.wipe()
	e.verify.wipe()
	e.state = StateIdle
	e.reason = ReasonNone
	e.changing = false
	e.attempts = 0
	e.lastErr = nil
	e.refocus = false
	if done := e.onDone; done != nil {
		e.onDone = nil
		e.queue(func() { done(false) })
	}
}

// schedule runs fn after d, unless cancelled or superseded first. fn runs
// with mu held.
func (e *Engine) schedule(d time.Duration, fn func()) {
	e.cancelTimer()
	if d <= 0 {
		fn()
		return
	}

	gen := e.timerGen
	e.pending = fn
	e.timer = e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.release()
		if e.timerGen != gen {
			return
		}
		e.timer = nil
		e.pending = nil
		fn()
	})
}

func (e *Engine) cancelTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = nil
	e.timerGen++
}

func (e *Engine) queue(fn func()) {
	e.queued = append(e.queued, fn)
}

// release unlocks mu and then runs the queued callbacks and the observer.
func (e *Engine) release() {
	fns := e.queued
	e.queued = nil
	if e.onChange != nil {
		snap := e.snapshotLocked()
		fns = append(fns, func() { e.onChange(snap) })
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:      e.state,
		Reason:     e.reason,
		FirstLen:   e.first.len(),
		ConfirmLen: e.confirm.len(),
		VerifyLen:  e.verify.len(),
		Busy:       e.pending != nil,
		Err:        e.lastErr,
		Refocus:    e.refocus,
		Attempts:   e.attempts,
		Enabled:    e.cfg.Enabled,
		Locked:     e.lockedLocked(),
	}
}
