package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"RelayScope/internal/capture"
	"RelayScope/internal/config"
	"RelayScope/internal/model"
	"RelayScope/internal/probe"
)

func main() {
	mode := flag.String("mode", "sub", "Operating mode: 'pub' to capture and publish, 'sub' to subscribe and print.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch *mode {
	case "pub":
		runProbe(cfg)
	case "sub":
		runSubscriber(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runProbe captures locally and publishes every observation to NATS.
func runProbe(cfg *config.Config) {
	if cfg.Capture.Type == "nats" {
		log.Fatal("pub mode needs a local capture source, not capture type 'nats'.")
	}
	log.Printf("Starting rs-probe in PUB mode (capture type %s)...", cfg.Capture.Type)

	pub, err := probe.NewPublisher(cfg.Probe.NATSURL, cfg.Probe.Subject)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	source, err := capture.New(&cfg.Capture)
	if err != nil {
		log.Fatalf("Failed to build capture source: %v", err)
	}

	out := make(chan model.PacketObservation, 1024)
	if err := source.Start(out); err != nil {
		log.Fatalf("Failed to start capture: %v", err)
	}
	log.Println("Capture started successfully. Publishing observations to NATS...")

	go func() {
		published := 0
		for obs := range out {
			if err := pub.Publish(obs); err != nil {
				log.Printf("Failed to publish observation: %v", err)
			}
			published++
			if published%1000 == 0 {
				log.Printf("%d observations published...", published)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	source.Stop()
}

// runSubscriber prints the observation stream a remote probe publishes.
func runSubscriber(cfg *config.Config) {
	log.Println("Starting rs-probe in SUB mode...")

	sub, err := probe.NewSubscriber(cfg.Probe.NATSURL)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	handler := func(obs model.PacketObservation) {
		log.Printf("Received observation: src=%s port=%d size=%d", obs.SrcIP, obs.DstPort, obs.Size)
	}
	if err := sub.Start(cfg.Probe.Subject, handler); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
