// Package config loads the process configuration: where the chain and
// the indexer live, which factory to watch, and tuning knobs for log
// scanning and feed polling. Values come from an optional YAML file
// overridden by environment variables; nothing is reloadable at
// runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Discovery strategies.
const (
	DiscoveryScan    = "scan"
	DiscoveryIndexed = "indexed"
)

// Config is the full configuration surface.
type Config struct {
	RPCURL         string        `yaml:"rpc_url"`
	FactoryAddress string        `yaml:"factory_address"`
	SubgraphURL    string        `yaml:"subgraph_url"`
	Discovery      string        `yaml:"discovery"`
	LogWindow      uint64        `yaml:"log_window"`
	ActivityLimit  int           `yaml:"activity_limit"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	ListenAddr     string        `yaml:"listen_addr"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Discovery:     DiscoveryIndexed,
		LogWindow:     500,
		ActivityLimit: 10,
		PollInterval:  15 * time.Second,
		ListenAddr:    ":8787",
	}
}

// Load reads configuration from path (optional; "" skips the file),
// then applies environment overrides, then validates. Environment
// variables: CANVAS_RPC_URL, CANVAS_FACTORY_ADDRESS,
// CANVAS_SUBGRAPH_URL, CANVAS_DISCOVERY, CANVAS_LOG_WINDOW,
// CANVAS_POLL_INTERVAL, CANVAS_LISTEN_ADDR.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CANVAS_RPC_URL"); v != "" {
		c.RPCURL = v
	}
	if v := os.Getenv("CANVAS_FACTORY_ADDRESS"); v != "" {
		c.FactoryAddress = v
	}
	if v := os.Getenv("CANVAS_SUBGRAPH_URL"); v != "" {
		c.SubgraphURL = v
	}
	if v := os.Getenv("CANVAS_DISCOVERY"); v != "" {
		c.Discovery = v
	}
	if v := os.Getenv("CANVAS_LOG_WINDOW"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.LogWindow = n
		}
	}
	if v := os.Getenv("CANVAS_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("CANVAS_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
}

// Validate checks the configuration for use.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("config: rpc_url is required")
	}
	if !common.IsHexAddress(c.FactoryAddress) {
		return fmt.Errorf("config: factory_address %q is not a hex address", c.FactoryAddress)
	}
	switch c.Discovery {
	case DiscoveryScan:
	case DiscoveryIndexed:
		if c.SubgraphURL == "" {
			return fmt.Errorf("config: subgraph_url is required for indexed discovery")
		}
	default:
		return fmt.Errorf("config: unknown discovery strategy %q", c.Discovery)
	}
	if c.LogWindow == 0 {
		return fmt.Errorf("config: log_window must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive")
	}
	return nil
}

// Factory returns the parsed factory address. Call after Validate.
func (c Config) Factory() common.Address {
	return common.HexToAddress(c.FactoryAddress)
}
