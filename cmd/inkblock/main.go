// cmd/inkblock/main.go
package main

import (
	"flag"
	"io"
	stlog "log"
	"os"

	"github.com/sylvim/inkblock/internal/app"
	"github.com/sylvim/inkblock/internal/config"
	"github.com/sylvim/inkblock/internal/logger"
)

func main() {
	// --- Flag parsing ---
	flags := config.RegisterFlags()
	flags.Parse()

	filePath := ""
	if flag.NArg() > 0 {
		filePath = flag.Arg(0)
	}

	// --- Configuration (defaults -> file -> flags) ---
	cfg, err := config.LoadConfig(flags.ConfigFile, flags)
	if err != nil {
		stlog.Printf("Warning: config load problem: %v", err)
	}

	// --- Logger initialization ---
	// A TUI owns the terminal, so stderr logging is useless while the app
	// runs; without a log file, logs are discarded.
	var logOutput io.Writer = io.Discard
	if cfg.Logger.LogFilePath != "" && cfg.Logger.LogFilePath != "-" {
		logFile, err := os.OpenFile(cfg.Logger.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			stlog.Fatalf("Failed to open log file '%s': %v", cfg.Logger.LogFilePath, err)
		}
		defer logFile.Close()
		logOutput = logFile
	}
	logger.Init(cfg.Logger, logOutput)

	logger.Infof("Starting %s...", config.AppName)
	if filePath != "" {
		logger.Debugf("Document path: %s", filePath)
	} else {
		logger.Debugf("No document specified, starting empty.")
	}

	// --- Create and run app ---
	inkApp, err := app.NewApp(cfg, filePath)
	if err != nil {
		logger.Errorf("Error initializing application: %v", err)
		stlog.Fatalf("Error initializing application: %v", err)
	}

	if err := inkApp.Run(); err != nil {
		logger.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}

	logger.Infof("%s finished.", config.AppName)
}
