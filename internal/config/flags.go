package config

import (
	"flag"

	"github.com/dmitrijs2005/screenlock/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   data directory
//	-l string   log level
//
// Only these flags are picked out of args (see flagx.FilterArgs), so -c
// and unknown arguments do not interfere. Parse errors panic.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("screenlock", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-d", "-l"})); err != nil {
		panic(err)
	}
}
