package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/screenlock/internal/common"
	"github.com/dmitrijs2005/screenlock/internal/lock"
)

// errEntryCancelled is returned when the user abandons a passcode entry.
var errEntryCancelled = errors.New("cancelled")

// runEntry drives the engine's current flow to completion, reading one
// line at a time. It returns nil once the engine is back in Idle after a
// successful entry.
func (a *App) runEntry(ctx context.Context) error {
	for {
		snap := a.eng.Snapshot()
		if snap.State == lock.StateIdle {
			return nil
		}

		line, err := GetSecret(a.in, a.fd, a.entryPrompt(snap), a.out)
		if err != nil {
			a.eng.Cancel()
			return err
		}

		err = a.feed(ctx, line)
		common.WipeByteArray(line)
		a.eng.Settle()

		switch {
		case err == nil:
		case errors.Is(err, errEntryCancelled):
			a.eng.Cancel()
			fmt.Fprintln(a.out, "Cancelled.")
			return err
		case errors.Is(err, common.ErrPasscodeMismatch):
			fmt.Fprintln(a.out, "Passcodes do not match, repeat the new passcode.")
		case errors.Is(err, common.ErrWrongPasscode):
			fmt.Fprintf(a.out, "Wrong passcode (attempt %d).\n", a.eng.Snapshot().Attempts)
		default:
			// persistence and biometric errors end the flow
			a.eng.Cancel()
			return err
		}
	}
}

// feed sends one input line to the engine. Digits stop at the end of the
// active row so that leftovers never spill into the next one.
func (a *App) feed(ctx context.Context, line []byte) error {
	switch string(line) {
	case "":
		return errEntryCancelled
	case "<":
		a.eng.Backspace()
		return nil
	case "bio":
		return a.eng.UnlockWithBiometric(ctx)
	}

	start := a.eng.Snapshot()
	for _, c := range line {
		if err := a.eng.AppendDigit(ctx, rune(c)); err != nil {
			return err
		}
		snap := a.eng.Snapshot()
		if snap.Busy || snap.State != start.State || snap.Reason != start.Reason {
			return nil
		}
	}
	return nil
}

func (a *App) entryPrompt(snap lock.Snapshot) string {
	var p string
	switch snap.State {
	case lock.StateCreatingFirst:
		p = "New passcode"
	case lock.StateConfirmingSecond:
		p = "Repeat new passcode"
	default:
		p = "Passcode"
		if a.biometricOffered(snap.Reason) {
			p += fmt.Sprintf(" (or 'bio' for %s)", a.bio.Label())
		}
	}
	if n := snap.Entered(); n > 0 {
		p += fmt.Sprintf(" [%d/%d]", n, common.PasscodeLength)
	}
	return p
}

func (a *App) biometricOffered(r lock.Reason) bool {
	return a.bio != nil && a.eng.Config().BiometricEnabled &&
		(r == lock.ReasonUnlockApp || r == lock.ReasonUnlockGate)
}
