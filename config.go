package typedsql

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the typedsql project configuration
type Config struct {
	Dialect    string           `yaml:"dialect"`
	SchemaFile string           `yaml:"schema_file"`
	QueryFiles []string         `yaml:"query_files"`
	Generation GenerationConfig `yaml:"generation"`
}

// GenerationConfig represents code generation settings
type GenerationConfig struct {
	Package string `yaml:"package"` // Go package name for generated code
	Output  string `yaml:"output"`  // Output directory
	Workers int    `yaml:"workers"` // Parallel compile workers (0 = CPU count)
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		config := defaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

func defaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

func applyDefaults(config *Config) {
	if config.Dialect == "" {
		config.Dialect = string(DialectSQLite)
	}

	if config.SchemaFile == "" {
		config.SchemaFile = "schema.yaml"
	}

	if len(config.QueryFiles) == 0 {
		config.QueryFiles = []string{"queries.yaml"}
	}

	if config.Generation.Package == "" {
		config.Generation.Package = "queries"
	}

	if config.Generation.Output == "" {
		config.Generation.Output = "generated"
	}
}

func validateConfig(config *Config) error {
	if config.Dialect != "" && !Dialect(config.Dialect).IsValid() {
		return fmt.Errorf("%w: invalid dialect '%s': must be one of sqlite, postgres", ErrConfigValidation, config.Dialect)
	}

	if config.Generation.Workers < 0 {
		return fmt.Errorf("%w: generation.workers must not be negative", ErrConfigValidation)
	}

	return nil
}

// loadEnvFiles loads .env and .env.local when present. Missing files are not
// an error; a malformed file is.
func loadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}

		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}

	return nil
}

func expandConfigEnvVars(config *Config) {
	config.SchemaFile = expandEnvVars(config.SchemaFile)
	config.Generation.Output = expandEnvVars(config.Generation.Output)

	for i, file := range config.QueryFiles {
		config.QueryFiles[i] = expandEnvVars(file)
	}
}

func expandEnvVars(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}

	return os.Expand(value, os.Getenv)
}
