package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/folioworks/folio/internal/app"
	"github.com/folioworks/folio/internal/common"
)

func main() {
	configPath := os.Getenv("FOLIO_CONFIG")

	a, err := app.NewApp(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	// Start the background sync scheduler
	a.StartSyncScheduler()

	a.Logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", a.Config.Environment).
		Msg("Server ready")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	a.Logger.Info().Msg("Shutdown signal received")

	a.Close()
	common.PrintShutdownBanner(a.Logger)
}
