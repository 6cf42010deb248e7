// Package config loads the node's YAML configuration: Load,
// ApplyEnvOverrides, Validate, and LogConfig.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"chordring/internal/logger"

	"gopkg.in/yaml.v3"
)

// Config is the full node configuration.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	DHT       DHTConfig       `yaml:"dht"`
	Logger    LoggerConfig    `yaml:"logger"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type NodeConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DHTConfig struct {
	IDBits            uint          `yaml:"idBits"`
	StabilizeInterval time.Duration `yaml:"stabilizeInterval"`
	KeepAliveInterval time.Duration `yaml:"keepAliveInterval"`
	Bootstrap         BootstrapConfig `yaml:"bootstrap"`
}

type BootstrapConfig struct {
	Mode    string   `yaml:"mode"` // "init" | "static" | "dns"
	Peers   []string `yaml:"peers"`
	DNSName string   `yaml:"dnsName"`
	Register RegisterConfig `yaml:"register"`
}

type RegisterConfig struct {
	Enabled    bool   `yaml:"enabled"`
	HostedZone string `yaml:"hostedZone"`
	Record     string `yaml:"record"`
}

type LoggerConfig struct {
	Level    string         `yaml:"level"`
	Encoding string         `yaml:"encoding"`
	File     FileLoggerConfig `yaml:"file"`
}

type FileLoggerConfig struct {
	Enabled    bool `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"serviceName"`
}

// Default returns the configuration used when no file is supplied,
// matching the reference implementation's defaults (32-bit key space,
// five-second keep-alive).
func Default() Config {
	return Config{
		Node: NodeConfig{Host: "0.0.0.0", Port: 9000},
		DHT: DHTConfig{
			IDBits:            32,
			StabilizeInterval: time.Second,
			KeepAliveInterval: 5 * time.Second,
			Bootstrap:         BootstrapConfig{Mode: "init"},
		},
		Logger: LoggerConfig{Level: "info", Encoding: "console"},
	}
}

// Load reads and parses a YAML config file, starting from Default() so
// unset fields keep sane values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays environment variables on top of a loaded
// config, for container deployments where mounting a file is awkward.
func ApplyEnvOverrides(cfg Config) Config {
	if v := os.Getenv("CHORD_NODE_HOST"); v != "" {
		cfg.Node.Host = v
	}
	if v := os.Getenv("CHORD_NODE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Node.Port = p
		}
	}
	if v := os.Getenv("CHORD_DHT_ID_BITS"); v != "" {
		if b, err := strconv.Atoi(v); err == nil && b > 0 {
			cfg.DHT.IDBits = uint(b)
		}
	}
	if v := os.Getenv("CHORD_BOOTSTRAP_MODE"); v != "" {
		cfg.DHT.Bootstrap.Mode = v
	}
	if v := os.Getenv("CHORD_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	return cfg
}

// Validate accumulates every structural error into one message instead
// of failing on the first.
func Validate(cfg Config) error {
	var errs []string
	if cfg.Node.Port <= 0 || cfg.Node.Port > 65535 {
		errs = append(errs, "node.port must be in (0, 65535]")
	}
	if cfg.DHT.IDBits == 0 || cfg.DHT.IDBits > 64 {
		errs = append(errs, "dht.idBits must be in (0, 64]")
	}
	switch cfg.DHT.Bootstrap.Mode {
	case "init", "static", "dns":
	default:
		errs = append(errs, fmt.Sprintf("dht.bootstrap.mode %q is not one of init|static|dns", cfg.DHT.Bootstrap.Mode))
	}
	if cfg.DHT.Bootstrap.Mode == "static" && len(cfg.DHT.Bootstrap.Peers) == 0 {
		errs = append(errs, "dht.bootstrap.mode=static requires at least one peer")
	}
	if cfg.DHT.Bootstrap.Mode == "dns" && cfg.DHT.Bootstrap.DNSName == "" {
		errs = append(errs, "dht.bootstrap.mode=dns requires dnsName")
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %v", errs)
}

// LogConfig emits the resolved configuration at startup, for operators
// debugging a misconfigured node.
func LogConfig(log logger.Logger, cfg Config) {
	log.Info("resolved configuration",
		logger.F("node.host", cfg.Node.Host),
		logger.F("node.port", cfg.Node.Port),
		logger.F("dht.idBits", cfg.DHT.IDBits),
		logger.F("dht.bootstrap.mode", cfg.DHT.Bootstrap.Mode),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
	)
}
