package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"parrot/internal/bootstrap"
	"parrot/internal/clipboard"
	"parrot/internal/config"
	"parrot/internal/logging"
	"parrot/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "parrot-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logPath := os.Getenv("PARROT_TUI_LOG")
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "parrot-tui.log")
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPath:  logPath,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := tui.NewSink()
	defer sink.Close()

	services, err := bootstrap.Build(cfg, bootstrap.Options{
		Events:    sink,
		Clipboard: clipboard.System{},
		Log:       logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("close services", zap.Error(err))
		}
	}()

	model := tui.NewModel(ctx, services.Controller, services.History, tui.Info{
		Recognition: services.RecognitionEngine,
		Speech:      services.SpeechEngine,
		Gateway:     cfg.Gateway.BaseURL,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	go sink.Forward(program.Send)

	logger.Info("terminal shell started",
		zap.String("recognition", services.RecognitionEngine),
		zap.String("speech", services.SpeechEngine),
	)
	_, runErr := program.Run()
	services.Controller.Stop()
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
