package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MonitorConfig tunes the aggregation engine.
type MonitorConfig struct {
	RateWindow               string `yaml:"rate_window"`
	IdleTimeout              string `yaml:"idle_timeout"`
	SweepInterval            string `yaml:"sweep_interval"`
	SizeOfObservationChannel int    `yaml:"size_of_observation_channel"`
}

// CaptureConfig selects and parameterizes the observation source.
type CaptureConfig struct {
	// Type is one of: command, pcap, pcapfile, stdin, nats.
	Type string `yaml:"type"`

	// Command-source fields.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// Live-capture fields.
	Interface string `yaml:"interface"`
	BPFFilter string `yaml:"bpf_filter"`

	// Offline-replay field.
	File string `yaml:"file"`

	// Remote-probe fields.
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`
}

// GeoConfig locates the geo databases and their download source.
type GeoConfig struct {
	DatabasePaths []string `yaml:"database_paths"`
	DownloadURL   string   `yaml:"download_url"`
}

// PortsConfig seeds and refreshes the monitored port set.
type PortsConfig struct {
	Static          []uint16 `yaml:"static"`
	RefreshSchedule string   `yaml:"refresh_schedule"`
}

// RelayConfig describes the supervised relay process.
type RelayConfig struct {
	ProcessName   string  `yaml:"process_name"`
	BinaryPath    string  `yaml:"binary_path"`
	DownloadURL   string  `yaml:"download_url"`
	MaxClients    int     `yaml:"max_clients"`
	BandwidthMbps float64 `yaml:"bandwidth_mbps"`
	MetricsAddr   string  `yaml:"metrics_addr"`
	CheckSchedule string  `yaml:"check_schedule"`
}

// WebConfig parameterizes the dashboard server.
type WebConfig struct {
	ListenAddr        string `yaml:"listen_addr"`
	BroadcastInterval string `yaml:"broadcast_interval"`
}

// ProbeConfig parameterizes the rs-probe publisher.
type ProbeConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Capture CaptureConfig `yaml:"capture"`
	Geo     GeoConfig     `yaml:"geo"`
	Ports   PortsConfig   `yaml:"ports"`
	Relay   RelayConfig   `yaml:"relay"`
	Web     WebConfig     `yaml:"web"`
	Probe   ProbeConfig   `yaml:"probe"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct with defaults applied.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no file is given: stdin
// capture with relay discovery against a conduit binary.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Capture.Type == "" {
		c.Capture.Type = "stdin"
	}
	if c.Capture.BPFFilter == "" {
		c.Capture.BPFFilter = "udp"
	}
	if c.Capture.NATSURL == "" {
		c.Capture.NATSURL = "nats://127.0.0.1:4222"
	}
	if len(c.Geo.DatabasePaths) == 0 {
		c.Geo.DatabasePaths = []string{"GeoLite2-Country.mmdb", "GeoLite2-City.mmdb"}
	}
	if c.Geo.DownloadURL == "" {
		c.Geo.DownloadURL = "https://github.com/P3TERX/GeoLite.mmdb/raw/download/GeoLite2-Country.mmdb"
	}
	if c.Ports.RefreshSchedule == "" {
		c.Ports.RefreshSchedule = "@every 2s"
	}
	if c.Relay.ProcessName == "" {
		c.Relay.ProcessName = "conduit"
	}
	if c.Relay.BinaryPath == "" {
		c.Relay.BinaryPath = "./conduit"
	}
	if c.Relay.MaxClients == 0 {
		c.Relay.MaxClients = 50
	}
	if c.Relay.BandwidthMbps == 0 {
		c.Relay.BandwidthMbps = 5
	}
	if c.Relay.MetricsAddr == "" {
		c.Relay.MetricsAddr = "127.0.0.1:9090"
	}
	if c.Relay.CheckSchedule == "" {
		c.Relay.CheckSchedule = "@every 10s"
	}
	if c.Web.ListenAddr == "" {
		c.Web.ListenAddr = ":8080"
	}
	if c.Probe.NATSURL == "" {
		c.Probe.NATSURL = "nats://127.0.0.1:4222"
	}
}

// Duration parses a duration field, falling back to def when the field is
// empty.
func Duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
