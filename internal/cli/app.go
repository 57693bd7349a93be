package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/screenlock/internal/biometric"
	"github.com/dmitrijs2005/screenlock/internal/clock"
	"github.com/dmitrijs2005/screenlock/internal/config"
	"github.com/dmitrijs2005/screenlock/internal/filex"
	"github.com/dmitrijs2005/screenlock/internal/gate"
	"github.com/dmitrijs2005/screenlock/internal/lock"
	"github.com/dmitrijs2005/screenlock/internal/logging"
	"github.com/dmitrijs2005/screenlock/internal/passcodestore"
	"github.com/dmitrijs2005/screenlock/internal/repositories/metadata"
	"github.com/dmitrijs2005/screenlock/internal/storage"
)

type App struct {
	eng    *lock.Engine
	gate   *gate.Gate
	bio    biometric.Capability
	source SensitiveSource
	log    logging.Logger

	in  *bufio.Scanner
	fd  int
	out io.Writer

	db *sql.DB
}

// NewApp opens the local database under cfg.DataDir and wires the lock
// engine, the gate and the biometric adapter for a terminal session.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dir

	db, err := storage.Open(ctx, cfg.DBPath(), log)
	if err != nil {
		return nil, err
	}

	bio, err := biometric.NewWebAuthn(biometric.WebAuthnConfig{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigin:      cfg.RPOrigin,
		UserAgent:     cfg.UserAgent,
	}, biometric.NoPlatform{}, metadata.NewSQLiteRepository(db), log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	eng, err := lock.New(ctx, passcodestore.New(db, log), bio, log, lock.Options{
		Clock:        clock.Real(),
		AdvanceDelay: cfg.AdvanceDelay,
		FailureDelay: cfg.FailureDelay,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(eng, bio, DemoSource(), os.Stdin, int(os.Stdin.Fd()), os.Stdout, log)
	a.db = db
	return a, nil
}

// newApp builds an App around an existing engine. fd is the terminal used
// for hidden passcode entry; pass -1 to read passcodes from in.
func newApp(eng *lock.Engine, bio biometric.Capability, src SensitiveSource, in io.Reader, fd int, out io.Writer, log logging.Logger) *App {
	return &App{
		eng:    eng,
		gate:   gate.New(eng, log),
		bio:    bio,
		source: src,
		log:    log.With("component", "cli"),
		in:     bufio.NewScanner(in),
		fd:     fd,
		out:    out,
	}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Screen lock CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.in)
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) getStatus() string {
	cfg := a.eng.Config()
	if a.eng.IsLocked() {
		return "(locked)"
	}
	return fmt.Sprintf("(%s)", cfg.Mode())
}
