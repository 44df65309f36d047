package cmd

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/archway-network/alertrelay/internal/config"
	"github.com/archway-network/alertrelay/internal/httpserver"
	"github.com/archway-network/alertrelay/internal/notificationstore"
	"github.com/archway-network/alertrelay/internal/registry"
	"github.com/archway-network/alertrelay/internal/rulestore"
	"github.com/archway-network/alertrelay/internal/webhook"
)

// NewRunCmd wires the full service registry and blocks on an
// errgroup.Group, mirroring server/json_rpc.go's pattern of running
// goroutines under one group with shared cancellation. The only goroutine
// in the group is the health/metrics HTTP server.
func NewRunCmd(v *viper.Viper) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the alert relay service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := loggerFromFlags(v)

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			db, err := sql.Open("postgres", cfg.DBURL)
			if err != nil {
				return err
			}
			defer db.Close()

			rules := rulestore.NewPostgresStore(db)
			notifications := notificationstore.NewPostgresStore(db)
			endpoints := webhook.NewPostgresLookup(db)
			httpClient := &http.Client{Timeout: 30 * time.Second}

			reg := registry.New(rules, notifications, endpoints, httpClient, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return httpserver.Serve(gctx, logger, httpserver.Config{
					Addr: metricsAddr,
					Ready: func(ctx context.Context) error {
						_, err := reg.Rules.Get(ctx, rulestore.Filter{}, nil)
						return err
					},
				})
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "0.0.0.0:8124", "health/metrics server listen address")
	return cmd
}
