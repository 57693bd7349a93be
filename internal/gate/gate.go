// Package gate guards individual sensitive values behind the screen lock
// passcode. When protection is inactive access is granted immediately.
package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/screenlock/internal/lock"
	"github.com/dmitrijs2005/screenlock/internal/logging"
	"github.com/dmitrijs2005/screenlock/internal/models"
)

// Verifier runs passcode verifications. *lock.Engine implements it.
type Verifier interface {
	Config() models.LockConfiguration
	BeginVerify(reason lock.Reason, onDone func(verified bool)) error
	Cancel()
}

type request struct {
	purpose   string
	onGranted func()
}

// Gate hands out one-shot access grants. Nothing is cached: every request
// while protection is active needs its own verification.
type Gate struct {
	v   Verifier
	log logging.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]request
}

func New(v Verifier, log logging.Logger) *Gate {
	return &Gate{
		v:       v,
		log:     log.With("component", "gate"),
		pending: make(map[uuid.UUID]request),
	}
}

// IsProtectionActive reports whether sensitive values need the passcode. It
// reads the current configuration on every call.
func (g *Gate) IsProtectionActive() bool {
	return g.v.Config().ProtectionActive()
}

// RequestAccess calls onGranted once the caller may reveal the value for
// purpose. Without protection that happens before RequestAccess returns and
// the returned id is uuid.Nil. Otherwise a verification is started and the
// returned id identifies the pending request; onGranted runs at most once,
// and never if the verification is cancelled or superseded by a newer
// request.
func (g *Gate) RequestAccess(ctx context.Context, purpose string, onGranted func()) (uuid.UUID, error) {
	if !g.IsProtectionActive() {
		g.log.Debug(ctx, "access granted without verification", "purpose", purpose)
		onGranted()
		return uuid.Nil, nil
	}

	id := uuid.New()
	g.mu.Lock()
	g.pending[id] = request{purpose: purpose, onGranted: onGranted}
	g.mu.Unlock()

	err := g.v.BeginVerify(lock.ReasonUnlockGate, func(ok bool) { g.finish(ctx, id, ok) })
	if err != nil {
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
		return uuid.Nil, fmt.Errorf("request access to %s: %w", purpose, err)
	}

	g.log.Debug(ctx, "access requested", "purpose", purpose, "request", id)
	return id, nil
}

// Cancel abandons the pending request id. Unknown or finished ids are
// ignored.
func (g *Gate) Cancel(id uuid.UUID) {
	g.mu.Lock()
	_, ok := g.pending[id]
	g.mu.Unlock()

	if ok {
		g.v.Cancel()
	}
}

// Pending returns the number of requests awaiting verification.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Gate) finish(ctx context.Context, id uuid.UUID, ok bool) {
	g.mu.Lock()
	req, found := g.pending[id]
	delete(g.pending, id)
	g.mu.Unlock()

	if !found {
		return
	}
	if !ok {
		g.log.Debug(ctx, "access denied", "purpose", req.purpose, "request", id)
		return
	}
	g.log.Info(ctx, "access granted", "purpose", req.purpose, "request", id)
	req.onGranted()
}
