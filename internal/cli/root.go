// Package cli implements the orchard command shell.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"orchard/internal/block"
	"orchard/internal/config"
	"orchard/internal/core"
	"orchard/pkg/genome"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Trace      bool
}

// app carries per-invocation state shared by subcommands.
type app struct {
	opts      *RootOptions
	openStore func(ctx context.Context, cfg config.Config) (block.Store, error)
	random    genome.RandomSource

	cfg    config.Config
	logger *slog.Logger
}

func openConfiguredStore(ctx context.Context, cfg config.Config) (block.Store, error) {
	return block.Open(ctx, cfg.BlockConfig())
}

// NewRootCommand creates the root command for the orchard CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{openStore: openConfiguredStore})
}

func newRootCommand(a *app) *cobra.Command {
	a.opts = &RootOptions{}

	cmd := &cobra.Command{
		Use:           "orchard",
		Short:         "Badge genome shell",
		Long:          "Inspect and maintain the badge genome family persisted in block storage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&a.opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVar(&a.opts.Trace, "trace", false, "write operation spans as JSON lines to stderr")

	cmd.AddCommand(newGeneseqCommand(a))
	cmd.AddCommand(newGenameCommand(a))
	cmd.AddCommand(newGenestartCommand(a))
	cmd.AddCommand(newRegenerateCommand(a))
	cmd.AddCommand(newFamilyCommand(a))

	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "load config", Err: err}
	}
	a.cfg = cfg
	level := cfg.SlogLevel()
	if a.opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(stderr, handlerOpts)
	}
	a.logger = slog.New(handler)
	return nil
}

// randomSource returns the injected source, a seeded PCG when the config
// pins a seed, or nil to let FamilyStore seed from the clock.
func (a *app) randomSource() genome.RandomSource {
	if a.random != nil {
		return a.random
	}
	if seed := a.cfg.Genome.Seed; seed != nil {
		a.random = rand.New(rand.NewPCG(*seed, *seed))
		return a.random
	}
	return nil
}

// withFamilyStore opens the configured backend, runs fn and releases it.
func (a *app) withFamilyStore(cmd *cobra.Command, fn func(context.Context, *core.FamilyStore) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := a.openStore(ctx, a.cfg)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "open block store", Err: err}
	}
	defer func() {
		if cerr := block.Close(store); cerr != nil && err == nil {
			err = &ExitError{Code: ExitFailure, Message: "close block store", Err: cerr}
		}
	}()

	metrics, report, err := newMetrics(a.cfg.Metrics.Exporter)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "metrics", Err: err}
	}
	defer report(a.logger)

	opts := []core.Option{
		core.WithLogger(a.logger),
		core.WithBlock(block.ID(a.cfg.Genome.Block), a.cfg.Genome.Offset),
		core.WithRandomSource(a.randomSource()),
		core.WithMetricsRecorder(metrics),
	}
	if a.opts.Trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(cmd.ErrOrStderr())))
	}
	a.logger.Debug("block store opened", "driver", string(store.Driver()), "block", a.cfg.Genome.Block)
	return fn(ctx, core.NewFamilyStore(store, opts...))
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	return execute(NewRootCommand(), args, stdout, stderr)
}

func execute(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	if err != nil && !silent(err) {
		if _, werr := fmt.Fprintf(stderr, "Error: %v\n", err); werr != nil {
			return ExitFailure
		}
	}
	return ExitCode(err)
}
