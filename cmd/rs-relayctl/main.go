package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"RelayScope/internal/assets"
	"RelayScope/internal/config"
	"RelayScope/internal/relay"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: rs-relayctl [-config FILE] COMMAND

Commands:
  start    download the relay binary if needed and launch it
  stop     kill every matching relay process
  status   print relay liveness, pids, and bound UDP ports
`)
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		// relayctl is useful on hosts that only run the relay.
		log.Printf("No config at %s, using defaults.", *configPath)
		cfg = config.Default()
	} else if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	controller := relay.NewController(cfg.Relay)

	switch flag.Arg(0) {
	case "start":
		if cfg.Relay.DownloadURL != "" {
			if err := assets.Ensure(cfg.Relay.BinaryPath, cfg.Relay.DownloadURL); err != nil {
				log.Fatalf("Failed to provision relay binary: %v", err)
			}
			if err := os.Chmod(cfg.Relay.BinaryPath, 0o755); err != nil {
				log.Fatalf("Failed to mark relay binary executable: %v", err)
			}
		}
		if err := controller.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start relay: %v", err)
		}
	case "stop":
		n := controller.Stop()
		log.Printf("Stopped %d relay processes.", n)
	case "status":
		st := controller.Current()
		if !st.Running {
			fmt.Println("relay: not running")
			return
		}
		fmt.Printf("relay: running, pids %v\n", st.Pids)
		fmt.Printf("udp ports: %v\n", st.Ports)
	default:
		usage()
		os.Exit(2)
	}
}
