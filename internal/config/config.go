package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds infrastructure-level configuration for the vault service
type Config struct {
	// Database
	PostgresDSN string

	// At-rest record wrapping
	KeywrapProvider   string // none, local, aws-kms, or vault
	LocalMasterKeyHex string
	AWSKMSKeyID       string
	AWSKMSRegion      string
	VaultAddress      string
	VaultToken        string
	VaultTransitKey   string

	// Server
	Port             int
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		KeywrapProvider:   getEnv("KEYWRAP_PROVIDER", "none"),
		LocalMasterKeyHex: getEnv("KEYWRAP_LOCAL_MASTER_KEY", ""),
		AWSKMSKeyID:       getEnv("KEYWRAP_AWS_KMS_KEY_ID", ""),
		AWSKMSRegion:      getEnv("KEYWRAP_AWS_REGION", ""),
		VaultAddress:      getEnv("KEYWRAP_VAULT_ADDR", ""),
		VaultToken:        getEnv("KEYWRAP_VAULT_TOKEN", ""),
		VaultTransitKey:   getEnv("KEYWRAP_VAULT_TRANSIT_KEY", ""),
		Port:              getEnvInt("PORT", 8080),
		RateLimitEnabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}

	switch c.KeywrapProvider {
	case "none":
	case "local":
		if c.LocalMasterKeyHex == "" {
			return fmt.Errorf("KEYWRAP_LOCAL_MASTER_KEY is required when KEYWRAP_PROVIDER is 'local'")
		}
	case "aws-kms":
		if c.AWSKMSKeyID == "" || c.AWSKMSRegion == "" {
			return fmt.Errorf("KEYWRAP_AWS_KMS_KEY_ID and KEYWRAP_AWS_REGION are required when KEYWRAP_PROVIDER is 'aws-kms'")
		}
	case "vault":
		if c.VaultAddress == "" || c.VaultToken == "" || c.VaultTransitKey == "" {
			return fmt.Errorf("KEYWRAP_VAULT_ADDR, KEYWRAP_VAULT_TOKEN and KEYWRAP_VAULT_TRANSIT_KEY are required when KEYWRAP_PROVIDER is 'vault'")
		}
	default:
		return fmt.Errorf("KEYWRAP_PROVIDER must be 'none', 'local', 'aws-kms' or 'vault', got: %s", c.KeywrapProvider)
	}

	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}
