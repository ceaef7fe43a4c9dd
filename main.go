package main

import (
	"fmt"
	"log/slog"
	"os"

	app "github.com/rocketscienceinc/gridgames-backend/internal"
	"github.com/rocketscienceinc/gridgames-backend/internal/config"
)

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := initConfig()
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize config.
func initConfig() *config.Config {
	path, err := config.Path()
	if err != nil {
		panic(err)
	}

	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.Level()})

	return slog.New(handler).With("service", "gridgames", "storage", conf.Storage)
}
