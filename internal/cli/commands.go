package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/screenlock/internal/lock"
	"github.com/dmitrijs2005/screenlock/internal/models"
)

var errUsage = errors.New("invalid arguments, type 'help'")

// ensureUnlocked runs the app unlock flow when the session is locked and
// records activity otherwise.
func (a *App) ensureUnlocked(ctx context.Context) error {
	if a.eng.Touch() {
		return nil
	}
	fmt.Fprintln(a.out, "The app is locked.")
	if err := a.eng.BeginVerify(lock.ReasonUnlockApp, nil); err != nil {
		return err
	}
	return a.runEntry(ctx)
}

func (a *App) Status(ctx context.Context) error {
	cfg := a.eng.Config()

	bio := "off"
	if cfg.BiometricEnabled {
		bio = "on"
	}
	if a.bio == nil || !a.bio.IsAvailable(ctx) {
		bio += " (unavailable)"
	} else {
		bio += " (" + a.bio.Label() + ")"
	}

	fmt.Fprintf(a.out, "Screen lock: %s\n", cfg.Mode())
	fmt.Fprintf(a.out, "Biometric:   %s\n", bio)
	fmt.Fprintf(a.out, "Timeout:     %s\n", cfg.Timeout)
	fmt.Fprintf(a.out, "Hide data:   %s\n", onOff(cfg.HideSensitiveData))
	return nil
}

func (a *App) Enable(ctx context.Context) error {
	if err := a.eng.BeginEnable(); err != nil {
		return err
	}
	if err := a.runEntry(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Screen lock enabled.")
	return nil
}

func (a *App) Resume(ctx context.Context) error {
	if err := a.eng.BeginVerify(lock.ReasonResume, nil); err != nil {
		return err
	}
	if err := a.runEntry(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Screen lock enabled.")
	return nil
}

func (a *App) Forget(ctx context.Context) error {
	if err := a.eng.ForgetPaused(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Passcode erased.")
	return nil
}

func (a *App) Disable(ctx context.Context, mode string) error {
	var reason lock.Reason
	switch mode {
	case "pause":
		reason = lock.ReasonDisablePause
	case "delete":
		reason = lock.ReasonDisableDelete
	default:
		return errUsage
	}

	if err := a.eng.BeginVerify(reason, nil); err != nil {
		return err
	}
	if err := a.runEntry(ctx); err != nil {
		return err
	}
	if reason == lock.ReasonDisablePause {
		fmt.Fprintln(a.out, "Screen lock paused. Use 'resume' to turn it back on.")
	} else {
		fmt.Fprintln(a.out, "Screen lock disabled and passcode erased.")
	}
	return nil
}

func (a *App) Change(ctx context.Context) error {
	if err := a.eng.BeginChangePasscode(); err != nil {
		return err
	}
	if err := a.runEntry(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Passcode changed.")
	return nil
}

func (a *App) Biometric(ctx context.Context, arg string) error {
	on, err := parseOnOff(arg)
	if err != nil {
		return err
	}
	if err := a.eng.SetBiometric(ctx, on); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Biometric unlock %s.\n", onOff(on))
	return nil
}

func (a *App) Timeout(ctx context.Context, arg string) error {
	t, err := models.ParseTimeout(arg)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if err := a.eng.SetTimeout(ctx, t); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Timeout set to %s.\n", t)
	return nil
}

func (a *App) Hide(ctx context.Context, arg string) error {
	on, err := parseOnOff(arg)
	if err != nil {
		return err
	}
	if err := a.eng.SetHideSensitiveData(ctx, on); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Hide sensitive data %s.\n", onOff(on))
	return nil
}

func (a *App) Lock(context.Context) error {
	a.eng.Lock()
	return nil
}

func (a *App) Background(context.Context) error {
	a.eng.Background()
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	v, err := a.source.Balance(ctx)
	if err != nil {
		return err
	}
	return a.reveal(ctx, "balance", "Balance", v)
}

func (a *App) Card(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return errUsage
	}
	v, err := a.source.CardNumber(ctx, n)
	if err != nil {
		return err
	}
	return a.reveal(ctx, "card "+arg, "Card "+arg, v)
}

// reveal prints value through the gate, or its masked form when access is
// not granted.
func (a *App) reveal(ctx context.Context, purpose, label, value string) error {
	granted := false
	id, err := a.gate.RequestAccess(ctx, purpose, func() { granted = true })
	if err != nil {
		return err
	}

	if !granted {
		fmt.Fprintf(a.out, "%s: %s\n", label, mask(value))
		if err := a.runEntry(ctx); err != nil {
			a.gate.Cancel(id)
			if errors.Is(err, errEntryCancelled) {
				return nil
			}
			return err
		}
	}

	if granted {
		fmt.Fprintf(a.out, "%s: %s\n", label, value)
	}
	return nil
}

func parseOnOff(arg string) (bool, error) {
	switch arg {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, errUsage
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
