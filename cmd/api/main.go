package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/records-backend/api"
	"github.com/angelmondragon/records-backend/api/routes"
	"github.com/angelmondragon/records-backend/internal/logins"
	"github.com/angelmondragon/records-backend/internal/orders"
	"github.com/angelmondragon/records-backend/internal/products"
	"github.com/angelmondragon/records-backend/internal/users"
	"github.com/angelmondragon/records-backend/pkg/config"
	"github.com/angelmondragon/records-backend/pkg/db"
	"github.com/angelmondragon/records-backend/pkg/env"
	"github.com/angelmondragon/records-backend/pkg/instance"
	"github.com/angelmondragon/records-backend/pkg/logger"
	"github.com/angelmondragon/records-backend/pkg/migrate"
	"github.com/angelmondragon/records-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Info(ctx, "redis not configured, rate limiting per process")
	}

	usersSvc, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	loginsSvc, err := logins.NewService(logins.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	ordersSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	productsSvc, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:       dbClient,
		Redis:    redisClient,
		Registry: registry,
		Users:    usersSvc,
		Logins:   loginsSvc,
		Orders:   ordersSvc,
		Products: productsSvc,
	})

	addr := ":" + env.First(cfg.App.Port, "PORT")
	server := api.NewServer(addr, handler)

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"driver":   dbClient.Driver(),
		"instance": instance.ID("local"),
	})
	logg.Info(ctx, "starting api server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
