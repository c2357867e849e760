// RectFit computes the largest rectangle, at any rotation, that fits
// inside each polygon of an input file.
//
// Build:
//   go build -o rectfit ./cmd/rectfit
//
// Usage:
//   rectfit fit   -i slab.dxf -o report.pdf
//   rectfit batch -i regions.csv --store results.db
//   rectfit sweep -i slab.geojson
//   rectfit serve --addr :8080

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/piwi3910/RectFit/internal/config"
	"github.com/piwi3910/RectFit/internal/engine"
)

const usage = `Usage: rectfit <command> [flags]

Commands:
  fit     fit every polygon of an input file and export the results
  batch   precompute results in parallel and write them to a store
  sweep   compare search settings on every polygon of an input file
  serve   run the HTTP API

Run "rectfit <command> --help" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "rectfit:", err)
		os.Exit(1)
	}
}

// command is one subcommand.
type command func(ctx context.Context, env *env, args []string) error

var commands = map[string]command{
	"fit":   runFit,
	"batch": runBatch,
	"sweep": runSweep,
	"serve": runServe,
}

// env carries what every command needs after the common flags are parsed.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, &env{stdout: stdout, stderr: stderr}, args[1:])
}

// newFlagSet returns a flag set for the named command with the flags
// shared by every command already registered.
func (e *env) newFlagSet(name string) (fs *pflag.FlagSet, configPath *string, verbose *bool) {
	fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	configPath = fs.StringP("config", "c", "", "config file (default: ./rectfit.yaml if present)")
	verbose = fs.BoolP("verbose", "v", false, "log engine trace events")
	return fs, configPath, verbose
}

// setup loads the configuration and builds the logger. The engine logs
// through the same handler.
func (e *env) setup(configPath string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.verbose = verbose

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	e.logger = slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: level}))
	engine.SetLogger(e.logger)
	return nil
}

// engineOptions returns the optimizer options shared by a command's fits.
// A nil cache leaves the optimizer's default.
func (e *env) engineOptions(cache *engine.GridCache) []engine.Option {
	var opts []engine.Option
	if cache != nil {
		opts = append(opts, engine.WithCache(cache))
	}
	if e.verbose {
		opts = append(opts, engine.WithTracer(engine.NewSlogTracer(e.logger)))
	}
	return opts
}
