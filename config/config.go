package config

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"gpiotwin/core"
)

// Backends selectable for the host device loop
const (
	BackendRegmap   = "regmap"
	BackendExpander = "expander"
	BackendPeriph   = "periph"
	BackendHTTP     = "http"
	BackendFile     = "file"
)

// Backends lists every known backend name.
var Backends = []string{BackendRegmap, BackendExpander, BackendPeriph, BackendHTTP, BackendFile}

// Config holds the host runtime settings.
type Config struct {
	Backend      string         `yaml:"backend"`
	PinsFile     string         `yaml:"pins_file"`
	PollInterval time.Duration  `yaml:"poll_interval"`
	Serial       SerialConfig   `yaml:"serial"`
	HTTP         HTTPConfig     `yaml:"http"`
	File         FileConfig     `yaml:"file"`
	Expander     ExpanderConfig `yaml:"expander"`
	Sim          SimConfig      `yaml:"sim"`
	Log          LogConfig      `yaml:"log"`
}

// SerialConfig selects the device line. An empty Device means stdin/stdout.
type SerialConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// HTTPConfig configures the simulator client.
type HTTPConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Attempts   int           `yaml:"attempts"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Timeout    time.Duration `yaml:"timeout"`
}

// FileConfig configures the file-backed simulator.
type FileConfig struct {
	Dir string `yaml:"dir"`
}

// ExpanderConfig configures the I2C GPIO expander backend.
type ExpanderConfig struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// SimConfig configures the HTTP GPIO simulator server.
type SimConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// LoadConfig parses YAML host settings and applies defaults
func LoadConfig(data []byte) (*Config, error) {
	var config Config

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, core.Errf(core.ConfigInvalid, "load_config", "", err)
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigFile reads settings from path. An empty path yields defaults.
func LoadConfigFile(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data)
}

// DefaultConfig returns the settings used when no file is given
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Backend) {
		return core.Errf(core.ConfigInvalid, "load_config", "",
			fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.HTTP.Attempts < 1 {
		return core.Errf(core.ConfigInvalid, "load_config", "",
			fmt.Errorf("http attempts must be at least 1"))
	}
	return nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	if config.Backend == "" {
		config.Backend = BackendRegmap
	}
	if config.PollInterval == 0 {
		config.PollInterval = 10 * time.Millisecond
	}

	// Serial line
	if config.Serial.Baud == 0 {
		config.Serial.Baud = 57600
	}
	if config.Serial.ReadTimeout == 0 {
		config.Serial.ReadTimeout = 100 * time.Millisecond
	}

	// HTTP simulator client: two attempts, 10ms apart
	if config.HTTP.BaseURL == "" {
		config.HTTP.BaseURL = "http://localhost:8080"
	}
	if config.HTTP.Attempts == 0 {
		config.HTTP.Attempts = 2
	}
	if config.HTTP.RetryDelay == 0 {
		config.HTTP.RetryDelay = 10 * time.Millisecond
	}
	if config.HTTP.Timeout == 0 {
		config.HTTP.Timeout = 2 * time.Second
	}

	if config.File.Dir == "" {
		config.File.Dir = "gpio_state"
	}

	// MCP23017 default address with A0-A2 low
	if config.Expander.Bus == "" {
		config.Expander.Bus = "1"
	}
	if config.Expander.Address == 0 {
		config.Expander.Address = 0x20
	}

	if config.Sim.Listen == "" {
		config.Sim.Listen = ":8080"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
}
