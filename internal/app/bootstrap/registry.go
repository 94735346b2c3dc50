package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-tenancy/cmd/mainconfig"
	appconfig "github.com/wolfman30/clinic-tenancy/internal/config"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy/source"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

// BuildRegistrySource wires the registry source named by REGISTRY_SOURCE.
// The returned cleanup releases any connections the source holds and is
// never nil.
func BuildRegistrySource(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (source.Source, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.RegistrySource {
	case "", appconfig.SourceFile:
		if strings.TrimSpace(cfg.RegistryPath) == "" {
			return nil, noop, fmt.Errorf("bootstrap: REGISTRY_PATH is required for file source")
		}
		logger.Info("tenant registry source", "source", appconfig.SourceFile, "path", cfg.RegistryPath)
		return source.NewFileSource(cfg.RegistryPath), noop, nil

	case appconfig.SourceRedis:
		client := BuildRedisClient(ctx, cfg, logger, false)
		if client == nil {
			return nil, noop, fmt.Errorf("bootstrap: REDIS_ADDR is required for redis source")
		}
		logger.Info("tenant registry source", "source", appconfig.SourceRedis, "addr", cfg.RedisAddr, "key", cfg.RedisKey)
		return source.NewRedisStore(client, cfg.RedisKey), func() { _ = client.Close() }, nil

	case appconfig.SourcePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, noop, fmt.Errorf("bootstrap: DATABASE_URL is required for postgres source")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		logger.Info("tenant registry source", "source", appconfig.SourcePostgres)
		return source.NewPostgresSource(pool), pool.Close, nil

	case appconfig.SourceS3:
		if strings.TrimSpace(cfg.RegistryS3Bucket) == "" {
			return nil, noop, fmt.Errorf("bootstrap: REGISTRY_S3_BUCKET is required for s3 source")
		}
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			// LocalStack and MinIO only serve path-style URLs.
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		logger.Info("tenant registry source", "source", appconfig.SourceS3, "bucket", cfg.RegistryS3Bucket, "key", cfg.RegistryS3Key)
		return source.NewS3Source(client, cfg.RegistryS3Bucket, cfg.RegistryS3Key), noop, nil

	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown registry source %q", cfg.RegistrySource)
	}
}
