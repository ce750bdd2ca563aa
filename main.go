package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"parrot/internal/config"
	"parrot/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	_ = godotenv.Load()

	cfg, cfgErr := config.Load()
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		logger, err = logging.New(logging.Options{})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "parrot: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app := NewApp(cfg, cfgErr, logger)
	err = wails.Run(&options.App{
		Title:            "Parrot",
		Width:            760,
		Height:           860,
		MinWidth:         480,
		MinHeight:        600,
		AssetServer:      &assetserver.Options{Assets: assets},
		BackgroundColour: &options.RGBA{R: 15, G: 23, B: 42, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind:             []interface{}{app},
	})
	if err != nil {
		logger.Fatal("application failed", zap.Error(err))
	}
}
