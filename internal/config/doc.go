// Package config loads runtime configuration for the screenlock CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   data directory holding the SQLite database
//	-l string   log level: debug, info, warn or error
//
// # File schema
//
// Durations use timex.Duration, so "300ms" and integer nanoseconds both work:
//
//	data_dir: .screenlock
//	db_file: screenlock.db
//	advance_delay: 300ms
//	failure_delay: 400ms
//	rp_id: localhost
//	rp_display_name: Easy Card
//	rp_origin: https://localhost
//	user_agent: ""
//	log_level: info
//	log_format: text
//
// Fields missing from the file keep their default.
package config
