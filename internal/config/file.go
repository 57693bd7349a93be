package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/screenlock/internal/flagx"
	"github.com/dmitrijs2005/screenlock/internal/timex"
)

// FileConfig is the on-disk form of Config. Pointer fields tell a missing
// key apart from an empty value.
type FileConfig struct {
	DataDir       *string         `json:"data_dir" yaml:"data_dir"`
	DBFile        *string         `json:"db_file" yaml:"db_file"`
	AdvanceDelay  *timex.Duration `json:"advance_delay" yaml:"advance_delay"`
	FailureDelay  *timex.Duration `json:"failure_delay" yaml:"failure_delay"`
	RPID          *string         `json:"rp_id" yaml:"rp_id"`
	RPDisplayName *string         `json:"rp_display_name" yaml:"rp_display_name"`
	RPOrigin      *string         `json:"rp_origin" yaml:"rp_origin"`
	UserAgent     *string         `json:"user_agent" yaml:"user_agent"`
	LogLevel      *string         `json:"log_level" yaml:"log_level"`
	LogFormat     *string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file named by -c/-config in args. Without
// the flag nothing changes. Read or decode errors panic.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.DBFile, fc.DBFile)
	setString(&cfg.RPID, fc.RPID)
	setString(&cfg.RPDisplayName, fc.RPDisplayName)
	setString(&cfg.RPOrigin, fc.RPOrigin)
	setString(&cfg.UserAgent, fc.UserAgent)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.AdvanceDelay != nil {
		cfg.AdvanceDelay = fc.AdvanceDelay.Duration
	}
	if fc.FailureDelay != nil {
		cfg.FailureDelay = fc.FailureDelay.Duration
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
