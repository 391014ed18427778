package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/auth"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/checkout"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/config"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/graphql"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/logger"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/metrics"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/pricing"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/server"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	ServeCmd = &cobra.Command{
		Use:   ServeCmdName,
		Short: ServeCmdShort,
		Long:  ServeCmdLong,
		RunE:  serveCmdFunc(),
	}
)

func init() {
	ServeCmd.Flags().String("address", "", "listen address, overrides server.address")
	ServeCmd.Flags().String("log-level", "", "log level, overrides log.level")
	_ = viper.BindPFlag("server.address", ServeCmd.Flags().Lookup("address"))
	_ = viper.BindPFlag("log.level", ServeCmd.Flags().Lookup("log-level"))
}

func serveCmdFunc() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		logg := logger.New(logger.Options{
			ServiceName: RootCmdName,
			Level:       logger.ParseLevel(cfg.Log.Level),
			Format:      cfg.Log.Format,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logg.Info(ctx, "Started serve cmd")

		srv, cleanup, err := buildServer(ctx, cfg, logg)
		if err != nil {
			return err
		}
		defer cleanup()

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		logg.Info(logg.WithField(ctx, "address", cfg.Server.Address), "server.listening")

		select {
		case err := <-errCh:
			if err != nil {
				logg.Error(ctx, "server.failed", err)
				return err
			}
		case <-ctx.Done():
		}

		logg.Info(context.Background(), "Shutting down the server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// buildServer wires the upstream clients, session store and checkout
// service into the HTTP server.
func buildServer(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*http.Server, func(), error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	upstream := metrics.NewUpstreamMetrics(registry)

	clientOpts := graphql.Options{
		HTTPClient: &http.Client{Timeout: cfg.Services.Timeout},
		Timeout:    cfg.Services.Timeout,
		Metrics:    upstream,
		Logger:     logg,
	}
	vehicles := graphql.NewVehicleService(graphql.NewClient("vehicle", cfg.Services.VehicleURL, clientOpts))
	customers := graphql.NewCustomerService(graphql.NewClient("customer", cfg.Services.CustomerURL, clientOpts))
	orders := graphql.NewOrderService(graphql.NewClient("order", cfg.Services.OrderURL, clientOpts))

	store, cleanup, err := newSessionStore(ctx, cfg, logg)
	if err != nil {
		return nil, nil, err
	}

	rateValues, err := cfg.Pricing.RateTable()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	rates, err := pricing.NewRateTable(rateValues)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	calc := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.Shipping)

	gate, err := auth.NewAdminGate(cfg.Admin.PasswordHash)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("admin.password_hash: %w", err)
	}
	if !gate.Enabled() {
		logg.Warn(ctx, "admin.disabled")
	}

	handlerOpts := server.Options{
		Vehicles:   vehicles,
		Customers:  customers,
		Orders:     orders,
		Checkout:   checkout.NewService(vehicles, customers, orders, calc, rates, 0),
		Sessions:   store,
		Admin:      gate,
		Logger:     logg,
		Registry:   registry,
		CookieName: cfg.Session.CookieName,
	}
	srv := server.NewHTTPServer(cfg.Server.Address, handlerOpts, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	return srv, cleanup, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		store, err := session.NewRedisStore(ctx, cfg.Redis, cfg.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		logg.Info(ctx, "session.backend.redis")
		return store, func() { _ = store.Close() }, nil
	default:
		store := session.NewMemoryStore(cfg.Session.TTL)
		sweepCtx, cancel := context.WithCancel(ctx)
		go sweepSessions(sweepCtx, store, logg)
		logg.Info(ctx, "session.backend.memory")
		return store, cancel, nil
	}
}

func sweepSessions(ctx context.Context, store *session.MemoryStore, logg *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logg.Debug(logg.WithField(ctx, "expired", n), "session.sweep")
			}
		}
	}
}
