package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
)

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectDescriptors = `
SELECT host_key, display_name, theme, logo_path, primary_color, secondary_color, is_global_admin, is_fallback
FROM tenant_descriptors
ORDER BY host_key`

// PostgresSource reads descriptors from the tenant_descriptors table.
type PostgresSource struct {
	db Querier
}

func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Load(ctx context.Context) (*tenancy.Registry, error) {
	rows, err := s.db.Query(ctx, selectDescriptors)
	if err != nil {
		return nil, fmt.Errorf("source: postgres: query descriptors: %w", err)
	}
	defer rows.Close()

	var (
		descriptors []tenancy.Descriptor
		fallback    string
	)
	for rows.Next() {
		var (
			d          tenancy.Descriptor
			isFallback bool
		)
		if err := rows.Scan(&d.HostKey, &d.DisplayName, &d.Theme,
			&d.Branding.LogoPath, &d.Branding.PrimaryColor, &d.Branding.SecondaryColor,
			&d.IsGlobalAdmin, &isFallback); err != nil {
			return nil, fmt.Errorf("source: postgres: scan descriptor: %w", err)
		}
		if isFallback {
			if fallback != "" {
				return nil, fmt.Errorf("source: postgres: fallback rows %q and %q", fallback, d.HostKey)
			}
			fallback = d.HostKey
		}
		descriptors = append(descriptors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: postgres: iterate descriptors: %w", err)
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("source: postgres: %w", ErrRegistryNotFound)
	}

	reg, err := tenancy.NewRegistry(fallback, descriptors...)
	if err != nil {
		return nil, fmt.Errorf("source: postgres: %w", err)
	}
	return reg, nil
}
