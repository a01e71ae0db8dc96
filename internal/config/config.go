package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings (Bhashini pipeline discovery results)
	CacheSize int
	CacheTTL  time.Duration

	// Bhashini settings
	BhashiniConfigURL    string
	BhashiniInferenceURL string
	BhashiniAPIKey       string
	BhashiniUserID       string
	BhashiniTimeout      time.Duration

	// Azure OpenAI settings
	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string
	AzureTimeout    time.Duration

	// Report storage settings
	ReportsDir string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:                 getEnv("HOST", "0.0.0.0"),
		Port:                 getEnv("PORT", "8080"),
		DatabasePath:         getEnv("DATABASE_PATH", "./data/bolonyay.db"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		BhashiniConfigURL:    getEnv("BHASHINI_CONFIG_URL", "https://meity-auth.ulcacontrib.org/ulca/apis/v0/model/getModelsPipeline"),
		BhashiniInferenceURL: getEnv("BHASHINI_INFERENCE_URL", "https://dhruva-api.bhashini.gov.in/services/inference/pipeline"),
		BhashiniAPIKey:       getEnv("BHASHINI_API_KEY", ""),
		BhashiniUserID:       getEnv("BHASHINI_USER_ID", ""),
		AzureEndpoint:        getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIKey:          getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureDeployment:      getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini"),
		AzureAPIVersion:      getEnv("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),
		ReportsDir:           getEnv("REPORTS_DIR", "./data/reports"),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	bhashiniTimeout, err := strconv.Atoi(getEnv("BHASHINI_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid BHASHINI_TIMEOUT: %w", err)
	}
	cfg.BhashiniTimeout = time.Duration(bhashiniTimeout) * time.Second

	azureTimeout, err := strconv.Atoi(getEnv("AZURE_OPENAI_TIMEOUT", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid AZURE_OPENAI_TIMEOUT: %w", err)
	}
	cfg.AzureTimeout = time.Duration(azureTimeout) * time.Second

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
