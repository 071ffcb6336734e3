package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	S3       S3Config       `yaml:"s3"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// StorageConfig selects and configures the blob backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // local, s3
	Path    string `yaml:"path"`
}

// DatabaseConfig holds the metadata database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// APIConfig holds API configuration.
type APIConfig struct {
	Key string `yaml:"key"`
}

// S3Config holds S3-compatible blob backend configuration.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Load reads configuration from CONFIG_PATH (default config.yaml),
// falling back to defaults when the file is missing. FILEHUB_API_KEY
// overrides the configured API key.
func Load() *Config {
	config := defaultConfig()

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("Failed to read config file, using defaults: %v", err)
	} else if err := yaml.Unmarshal(data, config); err != nil {
		log.Printf("Failed to parse config file, using defaults: %v", err)
		config = defaultConfig()
	}

	if envAPIKey := os.Getenv("FILEHUB_API_KEY"); envAPIKey != "" {
		config.API.Key = envAPIKey
	}

	return config
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the local backend")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Storage: StorageConfig{
			Backend: "local",
			Path:    "./storage",
		},
		Database: DatabaseConfig{
			Path: "./filehub.db",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}
