package modelexpr

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// DefaultMaxDepth bounds expression nesting and '{ }' group nesting in path strings.
const DefaultMaxDepth = 128

// Config represents the modelexpr configuration
type Config struct {
	Dialect  string      `yaml:"dialect"`
	Schema   string      `yaml:"schema"` // schema YAML file (see Schema)
	Data     string      `yaml:"data"`   // instance YAML file (see InstanceDocument)
	MaxDepth int         `yaml:"max_depth"`
	Cache    CacheConfig `yaml:"cache"`
	Log      LogConfig   `yaml:"log"`
}

// CacheConfig represents expression cache settings
type CacheConfig struct {
	// Disabled bypasses the process-wide expression cache.
	Disabled bool `yaml:"disabled"`
}

// LogConfig represents logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// DialectValue returns the parsed dialect. Config validation guarantees it is valid.
func (c *Config) DialectValue() Dialect {
	d, err := ParseDialect(c.Dialect)
	if err != nil {
		return DialectNative
	}

	return d
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration, rejecting unknown fields.
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if _, err := ParseDialect(config.Dialect); err != nil {
		return err
	}

	if config.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must be non-negative, got %d", ErrConfigValidation, config.MaxDepth)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(config.Log.Level)] {
		return fmt.Errorf("%w: log.level '%s' is invalid: must be one of debug, info, warn, error", ErrConfigValidation, config.Log.Level)
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Dialect:  string(DialectNative),
		Schema:   "./schema.yaml",
		Data:     "./data.yaml",
		MaxDepth: DefaultMaxDepth,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.Dialect == "" {
		config.Dialect = defaults.Dialect
	}

	if config.Schema == "" {
		config.Schema = defaults.Schema
	}

	if config.Data == "" {
		config.Data = defaults.Data
	}

	if config.MaxDepth == 0 {
		config.MaxDepth = defaults.MaxDepth
	}

	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in path-like configuration values
func expandConfigEnvVars(config *Config) {
	config.Schema = expandEnvVars(config.Schema)
	config.Data = expandEnvVars(config.Data)
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}
