package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Registry source kinds accepted by REGISTRY_SOURCE.
const (
	SourceFile     = "file"
	SourceRedis    = "redis"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Resolution rules
	TenantDevSuffix       string
	TenantDevPort         int
	TenantFrontendDevPort int
	TenantDomains         []string
	TrustForwardedHost    bool

	// Registry source
	RegistrySource         string
	RegistryPath           string
	RegistryReloadInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	RedisKey      string

	DatabaseURL string

	RegistryS3Bucket    string
	RegistryS3Key       string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// HTTP surface
	AdminJWTSecret         string
	CORSAllowedOrigins     []string
	CORSAllowTenantOrigins bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TenantDevSuffix:       strings.ToLower(getEnv("TENANT_DEV_SUFFIX", "localhost")),
		TenantDevPort:         getEnvAsInt("TENANT_DEV_PORT", 8000),
		TenantFrontendDevPort: getEnvAsInt("TENANT_FRONTEND_DEV_PORT", 5174),
		TenantDomains:         getEnvAsList("TENANT_DOMAINS"),
		TrustForwardedHost:    getEnvAsBool("TRUST_FORWARDED_HOST", false),

		RegistrySource:         strings.ToLower(strings.TrimSpace(getEnv("REGISTRY_SOURCE", SourceFile))),
		RegistryPath:           getEnv("REGISTRY_PATH", "config/tenants.yaml"),
		RegistryReloadInterval: getEnvAsDuration("REGISTRY_RELOAD_INTERVAL", 0),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		RedisKey:      getEnv("REGISTRY_REDIS_KEY", "tenancy:registry"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RegistryS3Bucket:    getEnv("REGISTRY_S3_BUCKET", ""),
		RegistryS3Key:       getEnv("REGISTRY_S3_KEY", "tenancy/registry.yaml"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AdminJWTSecret:         getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS"),
		CORSAllowTenantOrigins: getEnvAsBool("CORS_ALLOW_TENANT_ORIGINS", true),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
