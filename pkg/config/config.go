// Package config loads VXI-11 client configuration from defaults, a YAML
// file, and environment variables, in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// ConnectionConfig holds the §4.10 session defaults, overridable per
// deployment rather than hardcoded into every Connect call.
type ConnectionConfig struct {
	PortmapPort int           `mapstructure:"portmap_port" yaml:"portmap_port"`
	Device      string        `mapstructure:"device" yaml:"device"`
	IOTimeout   time.Duration `mapstructure:"io_timeout" yaml:"io_timeout"`
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`
	RequestSize uint32        `mapstructure:"request_size" yaml:"request_size"`
	TermChar    string        `mapstructure:"term_char" yaml:"term_char"`
}

// DiscoveryConfig controls broadcast Portmap discovery.
type DiscoveryConfig struct {
	BroadcastAddr string        `mapstructure:"broadcast_addr" yaml:"broadcast_addr"`
	IdleDeadline  time.Duration `mapstructure:"idle_deadline" yaml:"idle_deadline"`
}

// Config is the top-level VXI-11 client configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery" yaml:"discovery"`
}

// Default returns the configuration §4.10 specifies when nothing is
// overridden: port 111, device "inst0", 10s I/O and lock timeouts,
// 512-byte read chunks, '\n' termination.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
		Metrics: MetricsConfig{Enabled: false, Addr: ":9090"},
		Connection: ConnectionConfig{
			PortmapPort: 111,
			Device:      "inst0",
			IOTimeout:   10 * time.Second,
			LockTimeout: 10 * time.Second,
			RequestSize: 512,
			TermChar:    "\n",
		},
		Discovery: DiscoveryConfig{
			BroadcastAddr: "255.255.255.255:111",
			IdleDeadline:  2 * time.Second,
		},
	}
}

// Load reads configuration from configPath (if non-empty and it exists),
// then VXI11_-prefixed environment variables, layered over Default.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	cfg := Default()
	registerDefaults(v, cfg)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshalling on top of Default leaves fields untouched when
	// neither the file nor an environment variable sets them, whether
	// or not a config file was actually found.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return cfg, nil
}

// registerDefaults pre-registers every field path viper knows about, as
// flattened keys, so AutomaticEnv picks up an override during Unmarshal
// even for a key no config file ever defines.
func registerDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
	v.SetDefault("connection.portmap_port", cfg.Connection.PortmapPort)
	v.SetDefault("connection.device", cfg.Connection.Device)
	v.SetDefault("connection.io_timeout", cfg.Connection.IOTimeout)
	v.SetDefault("connection.lock_timeout", cfg.Connection.LockTimeout)
	v.SetDefault("connection.request_size", cfg.Connection.RequestSize)
	v.SetDefault("connection.term_char", cfg.Connection.TermChar)
	v.SetDefault("discovery.broadcast_addr", cfg.Discovery.BroadcastAddr)
	v.SetDefault("discovery.idle_deadline", cfg.Discovery.IdleDeadline)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("VXI11")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(defaultConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read: %w", err)
	}
	return true, nil
}

func defaultConfigDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "vxi11")
	}
	return "."
}

// TermCharByte returns the first byte of TermChar, or '\n' if unset.
func (c ConnectionConfig) TermCharByte() byte {
	if len(c.TermChar) == 0 {
		return '\n'
	}
	return c.TermChar[0]
}
