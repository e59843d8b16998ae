package cdc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/records-backend/pkg/config"
	"github.com/angelmondragon/records-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	fetchErrs []error
	committed []int64
	closed    bool
	drained   context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		f.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(f.messages) > 0 {
		msg := f.messages[0]
		f.messages = f.messages[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	f.drained()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range msgs {
		f.committed = append(f.committed, msg.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestConsumerCommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages: []kafka.Message{
			{Topic: TopicUsers, Offset: 1, Value: []byte(`{"c":{"id":{"v":"1"}}}`)},
			{Topic: TopicOrders, Offset: 2, Value: []byte(`not json`)},
			{Topic: TopicUsers, Offset: 3},
		},
		drained: cancel,
	}
	processor, _ := NewProcessor(logger.Nop())
	consumer, err := NewConsumer(reader, processor, logger.Nop(), time.Second)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}

	if err := consumer.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(reader.committed) != 3 {
		t.Fatalf("expected 3 commits, got %v", reader.committed)
	}
	if err := consumer.Close(); err != nil || !reader.closed {
		t.Fatalf("expected reader closed")
	}
}

func TestConsumerBacksOffOnFetchErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		fetchErrs: []error{errors.New("broker gone")},
		messages:  []kafka.Message{{Topic: TopicUsers, Offset: 9, Value: []byte(`{}`)}},
		drained:   cancel,
	}
	processor, _ := NewProcessor(logger.Nop())
	consumer, _ := NewConsumer(reader, processor, logger.Nop(), 0)

	start := time.Now()
	if err := consumer.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if time.Since(start) < fetchBackoff {
		t.Fatalf("expected backoff after fetch error")
	}
	if len(reader.committed) != 1 || reader.committed[0] != 9 {
		t.Fatalf("unexpected commits %v", reader.committed)
	}
}

func TestNewConsumerRequiresDependencies(t *testing.T) {
	processor, _ := NewProcessor(logger.Nop())
	if _, err := NewConsumer(nil, processor, logger.Nop(), time.Second); err == nil {
		t.Fatalf("expected reader error")
	}
	if _, err := NewConsumer(&fakeReader{}, nil, logger.Nop(), time.Second); err == nil {
		t.Fatalf("expected processor error")
	}
	if _, err := NewProcessor(nil); err == nil {
		t.Fatalf("expected logger error")
	}
}

func TestWaitForBrokersRetries(t *testing.T) {
	cfg := config.KafkaConfig{Brokers: []string{"a:9092", "b:9092"}, ConnectTries: 3, ConnectPause: time.Millisecond}
	var calls []string
	dial := func(ctx context.Context, address string) error {
		calls = append(calls, address)
		if len(calls) < 4 {
			return errors.New("connection refused")
		}
		return nil
	}

	if err := WaitForBrokers(context.Background(), cfg, logger.Nop(), dial); err != nil {
		t.Fatalf("expected success on second attempt: %v", err)
	}
	if len(calls) != 4 || calls[3] != "b:9092" {
		t.Fatalf("unexpected dial sequence %v", calls)
	}
}

func TestWaitForBrokersGivesUp(t *testing.T) {
	cfg := config.KafkaConfig{Brokers: []string{"a:9092"}, ConnectTries: 2, ConnectPause: time.Millisecond}
	attempts := 0
	dial := func(ctx context.Context, address string) error {
		attempts++
		return errors.New("connection refused")
	}

	if err := WaitForBrokers(context.Background(), cfg, logger.Nop(), dial); err == nil {
		t.Fatalf("expected failure")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if err := WaitForBrokers(context.Background(), config.KafkaConfig{}, logger.Nop(), dial); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
