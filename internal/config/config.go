package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/iotaledger/hive.go/logger"
)

// Config holds the simulator configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Scripts ScriptsConfig `yaml:"scripts"`
	// Layout is the path of the trackside layout file.
	Layout  string        `yaml:"layout"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures the simulated ticks.
type EngineConfig struct {
	Ticks int `yaml:"ticks"`
	// TickInterval is the simulated time between two ticks.
	TickInterval string `yaml:"tick_interval"`
	// ScriptDebug enables DEBUG_HEADER and DEBUG_OUT output.
	ScriptDebug bool `yaml:"script_debug"`
	// Realtime waits one tick interval between ticks.
	Realtime bool `yaml:"realtime"`
}

// ScriptsConfig configures where scripts are loaded from and how they are cached.
type ScriptsConfig struct {
	Dir       string `yaml:"dir"`
	CacheSize int    `yaml:"cache_size"`
	CacheTTL  string `yaml:"cache_ttl"`
	// Watch reloads changed script files while running.
	Watch bool `yaml:"watch"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
}

// LoggingConfig configures the root logger.
type LoggingConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"output_paths"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Ticks:        10,
			TickInterval: "1s",
		},
		Scripts: ScriptsConfig{
			Dir:       "scripts",
			CacheSize: 1000,
			CacheTTL:  "1h",
		},
		Layout: "layout.yaml",
		Metrics: MetricsConfig{
			BindAddress: "localhost:9311",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Encoding:    "console",
			OutputPaths: []string{"stdout"},
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("SIGSCRIPT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if addr := os.Getenv("SIGSCRIPT_METRICS_ADDRESS"); addr != "" {
		c.Metrics.BindAddress = addr
		c.Metrics.Enabled = true
	}
	if dir := os.Getenv("SIGSCRIPT_SCRIPTS_DIR"); dir != "" {
		c.Scripts.Dir = dir
	}
}

// GetTickInterval returns the simulated tick interval.
func (c *Config) GetTickInterval() time.Duration {
	d, err := time.ParseDuration(c.Engine.TickInterval)
	if err != nil {
		return time.Second
	}
	return d
}

// GetCacheTTL returns the script cache TTL.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Scripts.CacheTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

var validLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {}, "dpanic": {}, "panic": {}, "fatal": {},
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Engine.Ticks < 0 {
		return errors.Errorf("negative tick count: %d", c.Engine.Ticks)
	}
	if _, err := time.ParseDuration(c.Engine.TickInterval); err != nil {
		return errors.Wrapf(err, "invalid tick interval %q", c.Engine.TickInterval)
	}
	if c.Scripts.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Scripts.CacheTTL); err != nil {
			return errors.Wrapf(err, "invalid cache ttl %q", c.Scripts.CacheTTL)
		}
	}
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return errors.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Metrics.Enabled && c.Metrics.BindAddress == "" {
		return errors.New("metrics enabled without bind address")
	}

	return nil
}

// LoggerConfig returns the root logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Logging.Level,
		Encoding:    c.Logging.Encoding,
		OutputPaths: c.Logging.OutputPaths,
	}
}
