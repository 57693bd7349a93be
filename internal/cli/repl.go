package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a recording stub.
type execIface interface {
	ensureUnlocked(ctx context.Context) error
	Status(ctx context.Context) error
	Enable(ctx context.Context) error
	Resume(ctx context.Context) error
	Forget(ctx context.Context) error
	Disable(ctx context.Context, mode string) error
	Change(ctx context.Context) error
	Biometric(ctx context.Context, arg string) error
	Timeout(ctx context.Context, arg string) error
	Hide(ctx context.Context, arg string) error
	Lock(ctx context.Context) error
	Background(ctx context.Context) error
	Balance(ctx context.Context) error
	Card(ctx context.Context, arg string) error
}

const helpText = "Available commands: status, enable, resume, forget, disable pause|delete, change, " +
	"biometric on|off, timeout <immediately|1min|5min|15min|30min|never>, hide on|off, " +
	"lock, background, balance, card <n>, exit"

// runREPL reads commands from scanner and dispatches them to a until the
// user types "exit" or "quit" or input ends.
//
// Every command except help and exit first goes through ensureUnlocked, so
// a locked session asks for the passcode before anything else happens.
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("lock %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			printlnFn(helpText)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if err := a.ensureUnlocked(ctx); err != nil {
			printlnFn("Locked:", err)
			continue
		}

		var err error
		switch cmd {
		case "status":
			err = a.Status(ctx)
		case "enable":
			err = a.Enable(ctx)
		case "resume":
			err = a.Resume(ctx)
		case "forget":
			err = a.Forget(ctx)
		case "disable":
			err = a.Disable(ctx, arg)
		case "change":
			err = a.Change(ctx)
		case "biometric":
			err = a.Biometric(ctx, arg)
		case "timeout":
			err = a.Timeout(ctx, arg)
		case "hide":
			err = a.Hide(ctx, arg)
		case "lock":
			err = a.Lock(ctx)
		case "background":
			err = a.Background(ctx)
		case "balance":
			err = a.Balance(ctx)
		case "card":
			err = a.Card(ctx, arg)
		default:
			printlnFn("Unknown command:", cmd)
		}
		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
