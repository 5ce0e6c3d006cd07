package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dupes-go/internal/config"
)

var (
	flagConfig   string
	flagWorkers  int
	flagSymlinks bool
	flagDetailed bool
	flagJSON     bool
	flagOutput   string
	flagRemove   bool
	flagForce    bool
	flagVerbose  bool
	flagProgress bool
	flagMinSize  int64
)

func bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flagConfig, "config", "c", config.DefaultPath, "Config file path")
	fs.IntVarP(&flagWorkers, "workers", "w", 0, "Number of hashing workers (default: config or number of CPUs)")
	fs.BoolVarP(&flagSymlinks, "symlinks", "l", false, "Follow symbolic links")
	fs.BoolVarP(&flagDetailed, "detailed", "d", false, "Print every duplicate group with its members")
	fs.BoolVarP(&flagJSON, "json", "j", false, "Print a JSON report")
	fs.StringVarP(&flagOutput, "output", "o", "", "Write the JSON report to this file")
	fs.BoolVarP(&flagRemove, "remove", "r", false, "Remove duplicates after listing them")
	fs.BoolVarP(&flagForce, "force", "f", false, "Remove without asking for confirmation")
	fs.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	fs.BoolVar(&flagProgress, "progress", false, "Show a hashing progress bar on stderr")
	fs.Int64Var(&flagMinSize, "min-size", 0, "Ignore files smaller than this many bytes")
}

// loadConfig reads the config file and applies the flags that were set on
// the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if flags.Changed("symlinks") {
		cfg.FollowSymlinks = flagSymlinks
	}
	if flags.Changed("min-size") {
		cfg.MinSize = flagMinSize
	}
	switch {
	case flagJSON || flagOutput != "":
		cfg.Output = config.OutputJSON
	case flagDetailed:
		cfg.Output = config.OutputDetailed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}
