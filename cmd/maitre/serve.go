package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/maitre/internal/cli"
	httpAdapter "github.com/aretw0/maitre/pkg/adapters/http"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP booking API",
	Long:  `Serves booking conversations as a JSON API, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		cfg, logger, svc, err := bootstrap(sc, cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetString("port")
		}

		handler := httpAdapter.NewHandler(svc.Engine, svc.Sessions,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{})),
			httpAdapter.WithOnComplete(func(s *domain.Session) { svc.Metrics.RecordOutcome(s.Outcome) }),
		)
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(sc)
		g.Go(func() error {
			logger.Info("maitre server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("shutting down", "signal", sc.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides server.port)")
}
