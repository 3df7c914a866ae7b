package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RelayScope/internal/assets"
	"RelayScope/internal/capture"
	"RelayScope/internal/config"
	"RelayScope/internal/engine/monitor"
	"RelayScope/internal/engine/tracker"
	"RelayScope/internal/geo"
	"RelayScope/internal/job"
	"RelayScope/internal/ports"
	"RelayScope/internal/relay"
	"RelayScope/internal/web"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	log.Println("Starting rs-monitor...")

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	rateWindow, err := config.Duration(cfg.Monitor.RateWindow, tracker.DefaultRateWindow)
	if err != nil {
		log.Fatalf("Invalid monitor.rate_window: %v", err)
	}
	idleTimeout, err := config.Duration(cfg.Monitor.IdleTimeout, tracker.DefaultIdleTimeout)
	if err != nil {
		log.Fatalf("Invalid monitor.idle_timeout: %v", err)
	}
	sweepInterval, err := config.Duration(cfg.Monitor.SweepInterval, monitor.DefaultSweepInterval)
	if err != nil {
		log.Fatalf("Invalid monitor.sweep_interval: %v", err)
	}
	broadcastInterval, err := config.Duration(cfg.Web.BroadcastInterval, web.DefaultBroadcastInterval)
	if err != nil {
		log.Fatalf("Invalid web.broadcast_interval: %v", err)
	}

	// 2. Provision the geo database and open the resolver. A failed
	// download is not fatal; sessions degrade to the No DB sentinel.
	if cfg.Geo.DownloadURL != "" && len(cfg.Geo.DatabasePaths) > 0 {
		if err := assets.Ensure(cfg.Geo.DatabasePaths[0], cfg.Geo.DownloadURL); err != nil {
			log.Printf("Geo database unavailable: %v", err)
		}
	}
	resolver := geo.Open(cfg.Geo.DatabasePaths)
	defer resolver.Close()

	// 3. Assemble the engine
	portSet := ports.NewSet()
	tr := tracker.NewTracker(resolver, rateWindow, idleTimeout)
	mon := monitor.NewMonitor(tr, portSet, sweepInterval, cfg.Monitor.SizeOfObservationChannel)
	mon.Start()

	// 4. Start the capture source
	source, err := capture.New(&cfg.Capture)
	if err != nil {
		log.Fatalf("Failed to build capture source: %v", err)
	}
	if err := source.Start(mon.InputChannel()); err != nil {
		log.Fatalf("Failed to start capture: %v", err)
	}

	// 5. Background jobs: port discovery and relay health
	controller := relay.NewController(cfg.Relay)
	checkJob := job.NewCheckRelayJob(controller)
	scheduler := job.NewScheduler()
	if err := scheduler.Add(cfg.Ports.RefreshSchedule, job.NewRefreshPortsJob(controller, portSet, cfg.Ports.Static)); err != nil {
		log.Fatalf("Failed to schedule port refresh: %v", err)
	}
	if err := scheduler.Add(cfg.Relay.CheckSchedule, checkJob); err != nil {
		log.Fatalf("Failed to schedule relay check: %v", err)
	}
	scheduler.Start()

	// 6. Dashboard
	ctx, cancel := context.WithCancel(context.Background())
	server := web.NewServer(cfg.Web.ListenAddr, mon, portSet, checkJob, broadcastInterval)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Failed to start dashboard: %v", err)
	}

	// 7. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	log.Println("Shutdown signal received, stopping...")
	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	server.Shutdown(shutdownCtx)
	shutdownCancel()

	source.Stop()
	mon.Stop()
	log.Println("Shutdown complete.")
}
