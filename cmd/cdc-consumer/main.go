package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/records-backend/internal/cdc"
	"github.com/angelmondragon/records-backend/pkg/config"
	"github.com/angelmondragon/records-backend/pkg/instance"
	"github.com/angelmondragon/records-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cdc-consumer"})

	_ = godotenv.Load()

	cfg, err := config.LoadConsumer()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cdc-consumer",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "cdc consumer stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.ConsumerConfig, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"group":    cfg.Kafka.GroupID,
		"topics":   cfg.Kafka.Topics,
		"brokers":  cfg.Kafka.Brokers,
		"instance": instance.ID("cdc-consumer-0"),
	})

	if err := cdc.WaitForBrokers(ctx, cfg.Kafka, logg, cdc.DialKafka); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	processor, err := cdc.NewProcessor(logg)
	if err != nil {
		return err
	}
	consumer, err := cdc.NewConsumer(cdc.NewReader(cfg.Kafka), processor, logg, cfg.Kafka.HandleTimeout)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, consumer.Close())
	}()

	logg.Info(ctx, "cdc consumer started")
	if err := consumer.Run(ctx); err != nil {
		return err
	}
	logg.Info(ctx, "cdc consumer shutting down")
	return nil
}
