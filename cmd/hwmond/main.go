package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mikkl/hwmond/internal/config"
	"codeberg.org/mikkl/hwmond/internal/connectivity"
	"codeberg.org/mikkl/hwmond/internal/core"
	"codeberg.org/mikkl/hwmond/internal/environ"
	"codeberg.org/mikkl/hwmond/internal/history"
	"codeberg.org/mikkl/hwmond/internal/logger"
	"codeberg.org/mikkl/hwmond/internal/portal"
	"codeberg.org/mikkl/hwmond/internal/render"
	"codeberg.org/mikkl/hwmond/internal/transport"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.ParseLevel(cfg.LogLevel), logger.IsService(), cfg.LogFile)
	logger.Debug().Msg("Config loaded")
}

func main() {
	source, err := transport.NewTCPSource(cfg.ListenAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open telemetry feed")
	}
	defer source.Close()

	settings := portal.NewService(cfg.PortalAddr)
	if err := settings.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start provisioning portal")
	}
	defer settings.Stop()

	var repo history.Repository
	if cfg.History {
		repo, err = history.NewRepository(cfg.HistoryDB)
		if err != nil {
			logger.Error().Err(err).Msg("history disabled, database unavailable")
		} else {
			defer repo.Close()
		}
	}

	runtime := core.New(core.Options{
		Source:           source,
		Renderer:         render.NewConsole(os.Stdout),
		Station:          connectivity.NewSystemStation(),
		AccessPoint:      connectivity.NewNopAccessPoint(),
		Credentials:      connectivity.NewFileStore(cfg.Credentials),
		Portal:           settings,
		Clock:            environ.NewNTPClock(environ.DefaultNTPHost),
		Locator:          environ.NewWebLocator("", nil),
		Conditions:       environ.NewWebConditions("", nil),
		History:          repo,
		TickInterval:     cfg.TickInterval(),
		TelemetryTimeout: cfg.TelemetryTimeout(),
		Cooldown:         cfg.Cooldown(),
		ClockRefresh:     cfg.ClockRefresh(),
		EnvironRefresh:   cfg.EnvironRefresh(),
		FetchTimeout:     cfg.FetchTimeout(),
		AssociateTimeout: cfg.AssociateTimeout(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel, runtime)

	if err := runtime.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

// handleSignals maps SIGUSR1 to a page-advance event, standing in for the
// hardware button, and terminates cleanly on SIGINT/SIGTERM.
func handleSignals(cancel context.CancelFunc, runtime *core.Runtime) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	for sig := range sigs {
		if sig == syscall.SIGUSR1 {
			runtime.PageEvent()

			continue
		}
		logger.Info().Msg("Received termination signal.")
		cancel()

		return
	}
}
