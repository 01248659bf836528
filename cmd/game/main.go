package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/tomz197/cannonade/internal/audio"
	"github.com/tomz197/cannonade/internal/config"
	"github.com/tomz197/cannonade/internal/loop"
	"github.com/tomz197/cannonade/internal/tui"
	"golang.org/x/term"
)

func main() {
	configPath := flag.String("config", config.GetEnv("CANNONADE_CONFIG", ""), "path to a YAML config file")
	raw := flag.Bool("raw", false, "draw with plain ANSI output instead of tcell")
	sound := flag.Bool("sound", true, "play sound effects")
	logPath := flag.String("log", "", "write a debug log to this file")
	flag.Parse()

	if err := run(*configPath, *raw, *sound, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, raw, sound bool, logPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := loop.Options{Config: cfg, Logger: logger}
	if sound && cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio, logger)
		if err := player.Init(); err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer player.Close()
			opts.Sound = player
		}
	}

	var res loop.Result
	if raw {
		res, err = runRaw(ctx, cfg, opts)
	} else {
		res, err = runTcell(ctx, cfg, opts)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Final score: %d\n", res.Score)
	return nil
}

func runTcell(ctx context.Context, cfg *config.Config, opts loop.Options) (loop.Result, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return loop.Result{}, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return loop.Result{}, fmt.Errorf("init screen: %w", err)
	}
	fe := tui.New(screen, cfg.Screen.Width, cfg.Screen.Height)
	defer fe.Close()

	return loop.Run(ctx, fe, opts)
}

func runRaw(ctx context.Context, cfg *config.Config, opts loop.Options) (loop.Result, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return loop.Result{}, fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	fe := loop.NewTerminal(bufio.NewReader(os.Stdin), os.Stdout, nil, cfg.Screen.Width, cfg.Screen.Height)
	fe.Open()
	defer fe.Close()

	return loop.Run(ctx, fe, opts)
}

// newLogger logs to path, or nowhere when path is empty. The screen belongs
// to the game, so nothing is ever logged to the terminal.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		Prefix:          "cannonade",
	})
	return logger, func() { _ = f.Close() }, nil
}
