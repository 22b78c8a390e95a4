package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Manager configuration
	Manager ManagerConfig `mapstructure:"manager"`

	// Reasoning configuration
	Reasoning ReasoningConfig `mapstructure:"reasoning"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// AlertConfig holds configuration for alerting when the snapshot store trips
// its circuit breaker.
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// ErrorLogDir, when set, receives error records as Parquet files.
	ErrorLogDir string `mapstructure:"error_log_dir"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// StorageConfig holds snapshot persistence configuration
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // file, badger, parquet
	Path       string `mapstructure:"path"`    // file path, or directory for badger
	RepairJSON bool   `mapstructure:"repair_json"`
}

// ManagerConfig holds knowledge manager configuration
type ManagerConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	CacheSize int `mapstructure:"cache_size"`
}

// ReasoningConfig holds reasoning engine configuration
type ReasoningConfig struct {
	ExpansionDepth     int     `mapstructure:"expansion_depth"`
	ExpansionThreshold float64 `mapstructure:"expansion_threshold"`
	PathDepth          int     `mapstructure:"path_depth"`
	KeepLog            bool    `mapstructure:"keep_log"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Host: "localhost", Port: 8080, Mode: "debug"},
		Storage: StorageConfig{Backend: "file"},
		Manager: ManagerConfig{BatchSize: 100, CacheSize: 1024},
		Reasoning: ReasoningConfig{
			ExpansionDepth:     2,
			ExpansionThreshold: 0.3,
			PathDepth:          3,
		},
		Alert: AlertConfig{SMTPPort: 587},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:      1,
			Interval:         60,
			Timeout:          30,
			ReadyToTripRatio: 0.6,
		},
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Manager.BatchSize < 0 {
		return fmt.Errorf("manager.batch_size must not be negative, got %d", c.Manager.BatchSize)
	}
	if c.Reasoning.ExpansionThreshold <= 0 || c.Reasoning.ExpansionThreshold > 1 {
		return fmt.Errorf("reasoning.expansion_threshold must be within (0, 1], got %v", c.Reasoning.ExpansionThreshold)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	d := Default()

	// Log defaults
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("log.error_log_dir", d.Log.ErrorLogDir)

	// Server defaults
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.mode", d.Server.Mode)

	// Storage defaults
	viper.SetDefault("storage.backend", d.Storage.Backend)
	viper.SetDefault("storage.path", d.Storage.Path)
	viper.SetDefault("storage.repair_json", d.Storage.RepairJSON)

	// Manager defaults
	viper.SetDefault("manager.batch_size", d.Manager.BatchSize)
	viper.SetDefault("manager.cache_size", d.Manager.CacheSize)

	// Reasoning defaults
	viper.SetDefault("reasoning.expansion_depth", d.Reasoning.ExpansionDepth)
	viper.SetDefault("reasoning.expansion_threshold", d.Reasoning.ExpansionThreshold)
	viper.SetDefault("reasoning.path_depth", d.Reasoning.PathDepth)
	viper.SetDefault("reasoning.keep_log", d.Reasoning.KeepLog)

	// Alert defaults
	viper.SetDefault("alert.enabled", d.Alert.Enabled)
	viper.SetDefault("alert.smtp_host", d.Alert.SMTPHost)
	viper.SetDefault("alert.smtp_port", d.Alert.SMTPPort)
	viper.SetDefault("alert.username", d.Alert.Username)
	viper.SetDefault("alert.password", d.Alert.Password)
	viper.SetDefault("alert.from", d.Alert.From)
	viper.SetDefault("alert.to", d.Alert.To)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	viper.SetDefault("circuit_breaker.max_requests", d.CircuitBreaker.MaxRequests)
	viper.SetDefault("circuit_breaker.interval", d.CircuitBreaker.Interval)
	viper.SetDefault("circuit_breaker.timeout", d.CircuitBreaker.Timeout)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", d.CircuitBreaker.ReadyToTripRatio)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Storage settings
	if path := os.Getenv("KGREASON_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}
	if backend := os.Getenv("KGREASON_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Log settings
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
