// Command sheetdemo shows a scrolling sheet over a static background. Drag the
// list, scroll with the wheel or page keys, or fling it: the sheet expands
// before the list scrolls and collapses once the list is back at its top.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/xqrs/sheetview/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sheetdemo:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	app := newDemo(cfg, logger).app
	logger.Info("starting", "items", cfg.Demo.Items, "peekRows", cfg.Sheet.PeekRows)
	if err := app.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// newLogger returns a text logger writing to the configured file. The
// terminal belongs to the UI, so without a file logs are discarded.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	if cfg.Log.File == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
