package cdc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/angelmondragon/records-backend/pkg/config"
	"github.com/angelmondragon/records-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const fetchBackoff = time.Second

// MessageReader is the subset of *kafka.Reader the consumer drives.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DialFunc checks that a broker address answers.
type DialFunc func(ctx context.Context, address string) error

// Consumer fetches, handles and commits messages one at a time.
type Consumer struct {
	reader        MessageReader
	processor     *Processor
	logg          *logger.Logger
	handleTimeout time.Duration
}

// NewReader builds a consumer-group reader over every configured topic,
// starting from the earliest offset when the group has none committed.
func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		StartOffset: kafka.FirstOffset,
		Dialer: &kafka.Dialer{
			ClientID:  cfg.ClientID,
			Timeout:   10 * time.Second,
			DualStack: true,
		},
	})
}

// NewConsumer wires a reader to a processor.
func NewConsumer(reader MessageReader, processor *Processor, logg *logger.Logger, handleTimeout time.Duration) (*Consumer, error) {
	if reader == nil {
		return nil, fmt.Errorf("kafka reader required")
	}
	if processor == nil {
		return nil, fmt.Errorf("processor required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if handleTimeout <= 0 {
		handleTimeout = 10 * time.Second
	}
	return &Consumer{
		reader:        reader,
		processor:     processor,
		logg:          logg,
		handleTimeout: handleTimeout,
	}, nil
}

// Run consumes until ctx is cancelled. Every fetched message is committed
// once handled, including ones that could not be decoded.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "cdc.fetch_failed")
			if !sleep(ctx, fetchBackoff) {
				return nil
			}
			continue
		}

		handleCtx, cancel := context.WithTimeout(ctx, c.handleTimeout)
		c.processor.Handle(handleCtx, msg)
		cancel()

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logg.Error(c.logg.WithField(ctx, "offset", msg.Offset), "cdc.commit_failed", err)
		}
	}
}

// Close releases the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DialKafka opens and closes a TCP connection to a broker.
func DialKafka(ctx context.Context, address string) error {
	conn, err := kafka.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}

// WaitForBrokers retries until one broker answers, up to cfg.ConnectTries
// attempts spaced cfg.ConnectPause apart.
func WaitForBrokers(ctx context.Context, cfg config.KafkaConfig, logg *logger.Logger, dial DialFunc) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	tries := cfg.ConnectTries
	if tries <= 0 {
		tries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		for _, broker := range cfg.Brokers {
			if lastErr = dial(ctx, broker); lastErr == nil {
				logg.Info(logg.WithField(ctx, "broker", broker), "cdc.connected")
				return nil
			}
		}
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"attempt":  attempt,
			"attempts": tries,
			"error":    lastErr.Error(),
		}), "cdc.kafka_not_ready")
		if attempt == tries {
			break
		}
		if !sleep(ctx, cfg.ConnectPause) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("kafka unreachable after %d attempts: %w", tries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
