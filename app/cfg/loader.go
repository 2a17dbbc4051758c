package cfg

import (
	"cmp"
	"fmt"
	"strconv"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Trigger configuration, mirroring the GitHub Actions input surface
	On    string `long:"on" env:"INPUT_ON" required:"true" description:"Trigger configuration: mapping of source key to source config (JSON or YAML)"`
	Cache string `long:"cache" env:"INPUT_CACHE" default:"true" description:"Enable the dedup ledger (set to false for local runs)"`

	// Cache configuration
	CacheDir string `long:"cache-dir" env:"ACTIONSLAW_CACHE_DIR" default:".actionslaw" description:"Directory holding the persistent cache store"`
	MediaDir string `long:"media-dir" env:"ACTIONSLAW_MEDIA_DIR" default:"media" description:"Scratch directory for media downloads"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"actionslaw/1.0" description:"User agent string for HTTP requests"`
	Timeout   int    `long:"timeout" env:"ACTIONSLAW_TIMEOUT" default:"30" description:"HTTP fetch timeout in seconds"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(raw.Cache)
	if err != nil {
		return nil, fmt.Errorf("invalid cache flag %q: %w", raw.Cache, err)
	}

	cfg := &Cfg{
		On:        raw.On,
		Cache:     cacheEnabled,
		CacheDir:  raw.CacheDir,
		MediaDir:  raw.MediaDir,
		UserAgent: raw.UserAgent,
		Timeout:   raw.Timeout,
		Debug:     raw.Debug,
		Version:   GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
