// Package storyscript parses script runner flags and plays a Lua story script.
package storyscript

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/louisbranch/stories/internal/platform/cmd"
	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/tools/storyscript"
)

// Config holds storyscript command configuration.
type Config struct {
	Script     string `env:"SCRIPT_FILE"`
	Assertions bool   `env:"SCRIPT_ASSERT"  envDefault:"true"`
	Verbose    bool   `env:"SCRIPT_VERBOSE"`
	LogLevel   string `env:"LOG_LEVEL"      envDefault:"warn"`
}

// ParseConfig parses environment and flags into Config. A trailing
// positional argument names the script.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Script, "script", cfg.Script, "path to story script lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "stop at the first failed expectation (disable to log them)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log each step")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Script == "" && fs.NArg() > 0 {
		cfg.Script = fs.Arg(0)
	}
	return cfg, nil
}

// Run plays the configured script, writing its transcript to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Script == "" {
		return errors.New("script path is required")
	}
	level := cfg.LogLevel
	if cfg.Verbose && level != "debug" {
		level = "info"
	}
	logger, err := logging.New(level, true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	mode := storyscript.AssertionStrict
	if !cfg.Assertions {
		mode = storyscript.AssertionLogOnly
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScript, func(ctx context.Context) error {
		report, err := storyscript.RunFile(ctx, storyscript.Config{
			Assertions: mode,
			Verbose:    cfg.Verbose,
			Logger:     logger,
			Out:        out,
		}, cfg.Script)
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "game %s (seed %d): %d commands", report.GameID, report.Seed, report.Commands)
		if report.Terminated {
			fmt.Fprint(errOut, ", game over")
		}
		if n := len(report.Failures); n > 0 {
			fmt.Fprintf(errOut, ", %d failed expectations", n)
		}
		fmt.Fprintln(errOut)
		return nil
	})
}
