package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Elasticsearch ElasticsearchConfig
	Auth          AuthConfig
	Import        ImportConfig
	Archive       ArchiveConfig
	CORS          CORSConfig
	LogLevel      string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// ElasticsearchConfig holds the document store connection configuration
type ElasticsearchConfig struct {
	Scheme      string
	Host        string
	Port        int
	Username    string
	Password    string
	DataIndex   string
	VerifyCerts bool
}

// AuthConfig holds token verification configuration. Token issuance is
// handled by the identity service; this service only verifies.
type AuthConfig struct {
	JWTSecret string
}

// ImportConfig holds bulk import configuration
type ImportConfig struct {
	ChunkSize          int
	JobDBPath          string
	MaxUploadSizeBytes int64
}

// ArchiveConfig configures where raw uploaded spreadsheets are archived
type ArchiveConfig struct {
	Type         string // "local" or "s3"
	LocalBaseDir string
	S3Endpoint   string
	S3Bucket     string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// Load reads configuration from a .env file (if present) and environment variables
func Load() (*Config, error) {
	// A missing .env file is fine; the environment takes precedence anyway.
	_ = godotenv.Load()

	serverPort, err := strconv.Atoi(getEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	esPort, err := strconv.Atoi(getEnvOrDefault("ELASTICSEARCH_PORT", "9200"))
	if err != nil {
		return nil, fmt.Errorf("invalid ELASTICSEARCH_PORT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Elasticsearch: ElasticsearchConfig{
			Scheme:      getEnvOrDefault("ELASTICSEARCH_SCHEME", "http"),
			Host:        getEnvOrDefault("ELASTICSEARCH_HOST", "localhost"),
			Port:        esPort,
			Username:    os.Getenv("ELASTICSEARCH_USER"),
			Password:    os.Getenv("ELASTICSEARCH_PASSWORD"),
			DataIndex:   getEnvOrDefault("DATA_INDEX", "customs_data"),
			VerifyCerts: getBoolOrDefault("ELASTICSEARCH_VERIFY_CERTS", false),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"), // No default for security
		},
		Import: ImportConfig{
			ChunkSize:          getIntOrDefault("IMPORT_CHUNK_SIZE", 500),
			JobDBPath:          getEnvOrDefault("IMPORT_JOB_DB_PATH", "./importjobs.db"),
			MaxUploadSizeBytes: int64(getIntOrDefault("MAX_UPLOAD_SIZE_BYTES", 52428800)),
		},
		Archive: ArchiveConfig{
			Type:         getEnvOrDefault("ARCHIVE_TYPE", "local"),
			LocalBaseDir: getEnvOrDefault("ARCHIVE_LOCAL_BASE_DIR", "./archive"),
			S3Endpoint:   os.Getenv("ARCHIVE_S3_ENDPOINT"),
			S3Bucket:     getEnvOrDefault("ARCHIVE_S3_BUCKET", "tradeflow-archive"),
			S3Region:     getEnvOrDefault("ARCHIVE_S3_REGION", "us-east-1"),
			S3AccessKey:  os.Getenv("ARCHIVE_S3_ACCESS_KEY"),
			S3SecretKey:  os.Getenv("ARCHIVE_S3_SECRET_KEY"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   parseCommaSeparated(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
			AllowedMethods:   parseCommaSeparated(getEnvOrDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")),
			AllowedHeaders:   parseCommaSeparated(getEnvOrDefault("CORS_ALLOWED_HEADERS", "Content-Type,Authorization")),
			AllowCredentials: getBoolOrDefault("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getIntOrDefault("CORS_MAX_AGE", 3600),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Elasticsearch.Host == "" {
		return fmt.Errorf("ELASTICSEARCH_HOST is required")
	}
	if c.Elasticsearch.DataIndex == "" {
		return fmt.Errorf("DATA_INDEX is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Import.ChunkSize <= 0 {
		return fmt.Errorf("IMPORT_CHUNK_SIZE must be positive")
	}
	return nil
}

// Address returns the document store endpoint URL
func (c *ElasticsearchConfig) Address() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Host, c.Port)
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntOrDefault returns the integer value of an environment variable or a default value
func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolOrDefault returns the boolean value of an environment variable or a default value
func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// parseCommaSeparated splits a comma-separated string into a slice of trimmed strings
func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
