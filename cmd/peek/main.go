package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/JackWReid/peek/internal/config"
	"github.com/JackWReid/peek/internal/pager"
)

var Version = "dev"

type options struct {
	configPath    string
	offset        int64
	noLineNumbers bool
	noWhitespace  bool
	logFile       string
	logLevel      string
}

func main() {
	cmd := newRootCommand(func() bool { return term.IsTerminal(int(os.Stdout.Fd())) })
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "peek: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the CLI. isTTY reports whether stdout is a terminal;
// when it is not, the file is copied to stdout instead of being paged.
func newRootCommand(isTTY func() bool) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "peek [flags] <file>",
		Short:         "Read-only, screen-paged file viewer",
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if opts.offset < 0 {
				return fmt.Errorf("invalid offset %d", opts.offset)
			}
			path := args[0]

			if !isTTY() {
				return copyFile(cmd.OutOrStdout(), path)
			}

			logger, closeLog, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = pager.New(path, opts.offset, cfg, logger).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/peek/config.yaml)")
	f.Int64Var(&opts.offset, "offset", 0, "byte offset to open the file at")
	f.BoolVar(&opts.noLineNumbers, "no-line-numbers", false, "hide the line number margin")
	f.BoolVar(&opts.noWhitespace, "no-whitespace", false, "draw whitespace as blanks")
	f.StringVar(&opts.logFile, "log-file", "", "write a debug log to this file")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return cmd
}

// loadConfig reads the config file and applies flags given on the command
// line over it.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if opts.noLineNumbers {
		cfg.LineNumbers = false
	}
	if opts.noWhitespace {
		cfg.ShowWhitespace = false
	}
	if f.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if f.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, cfg.Validate()
}

// newLogger returns a text logger writing to the configured file, or one
// that discards everything when no file is set.
func newLogger(l config.Log) (*slog.Logger, func(), error) {
	if l.File == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	level, err := config.ParseLevel(l.Level)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(l.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(h), func() { f.Close() }, nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
