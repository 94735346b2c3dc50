package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/clinic-tenancy/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-tenancy/internal/config"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy/source"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(appconfig.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cli struct {
	cfg          *appconfig.Config
	logger       *logging.Logger
	registryPath string
}

func newRootCmd(cfg *appconfig.Config) *cobra.Command {
	c := &cli{cfg: cfg, logger: logging.New("error")}

	root := &cobra.Command{
		Use:           "tenantctl",
		Short:         "Clinic tenant registry tool",
		Long:          `Validate, inspect and publish the host-to-clinic registry used by the tenancy API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.registryPath, "registry", "r", "",
		"registry document (YAML or JSON); defaults to the configured REGISTRY_SOURCE")

	root.AddCommand(
		c.validateCmd(),
		c.resolveCmd(),
		c.listCmd(),
		c.publishCmd(),
	)
	return root
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the registry loads and satisfies every invariant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, name, err := c.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %d tenants from %s, root host %s\n", reg.Len(), name, reg.RootHost())

			resolver := tenancy.NewResolver(reg, bootstrap.BuildRules(c.cfg))
			for _, host := range resolver.UncoveredHosts() {
				fmt.Fprintf(out, "warning: %s is outside TENANT_DOMAINS %v and will classify as unrecognized\n",
					host, resolver.Rules().Domains)
			}
			return nil
		},
	}
}

func (c *cli) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve HOST",
		Short: "Show what the portal would do for a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := c.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			resolver := tenancy.NewResolver(reg, bootstrap.BuildRules(c.cfg))
			resp := tenancy.NewHandler(resolver, nil, c.logger).Describe(args[0])

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := c.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}
			resolver := tenancy.NewResolver(reg, bootstrap.BuildRules(c.cfg))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "HOST\tNAME\tTHEME\tMODE")
			for _, d := range reg.Tenants() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.HostKey, d.DisplayName, d.Theme, resolver.Mode(d.HostKey))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) publishCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Validate a registry file and store it in Redis for running servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.registryPath == "" {
				return fmt.Errorf("publish: --registry is required")
			}
			doc, err := source.NewFileSource(c.registryPath).Document()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			client := bootstrap.BuildRedisClient(ctx, c.cfg, c.logger, true)
			if client == nil {
				return fmt.Errorf("publish: redis at %q is not reachable", c.cfg.RedisAddr)
			}
			defer func() { _ = client.Close() }()

			if key == "" {
				key = c.cfg.RedisKey
			}
			if err := source.NewRedisStore(client, key).Save(ctx, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d tenants to redis key %s\n", len(doc.Tenants), key)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "redis key (defaults to REGISTRY_REDIS_KEY)")
	return cmd
}

// loadRegistry reads --registry when given, otherwise the configured source.
func (c *cli) loadRegistry(ctx context.Context) (*tenancy.Registry, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.registryPath != "" {
		reg, err := source.NewFileSource(c.registryPath).Load(ctx)
		return reg, c.registryPath, err
	}

	src, cleanup, err := bootstrap.BuildRegistrySource(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, "", err
	}
	defer cleanup()
	reg, err := src.Load(ctx)
	return reg, src.Name(), err
}
