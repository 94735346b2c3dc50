package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/clinic-tenancy/internal/config"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRules maps the TENANT_* settings onto resolver rules.
func BuildRules(cfg *appconfig.Config) tenancy.Rules {
	if cfg == nil {
		return tenancy.DefaultRules()
	}
	return tenancy.Rules{
		DevSuffix:       cfg.TenantDevSuffix,
		DevPort:         cfg.TenantDevPort,
		FrontendDevPort: cfg.TenantFrontendDevPort,
		Domains:         cfg.TenantDomains,
	}
}
