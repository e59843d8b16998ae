package cdc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/records-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const (
	TopicUsers  = "users"
	TopicOrders = "orders"

	source        = "ticdc"
	rawPreviewLen = 200
)

// Entry is the structured record logged for each consumed change.
type Entry struct {
	Source    string    `json:"source"`
	Topic     string    `json:"topic"`
	Partition int       `json:"partition"`
	Offset    int64     `json:"offset"`
	Table     string    `json:"table,omitempty"`
	Operation Operation `json:"operation,omitempty"`
	Data      any       `json:"data"`
}

func (e Entry) fields() map[string]any {
	fields := map[string]any{
		"source":    e.Source,
		"topic":     e.Topic,
		"partition": e.Partition,
		"offset":    e.Offset,
		"data":      e.Data,
	}
	if e.Table != "" {
		fields["table"] = e.Table
	}
	if e.Operation != "" {
		fields["operation"] = e.Operation
	}
	return fields
}

// Processor logs change-data-capture messages.
type Processor struct {
	logg *logger.Logger
}

// NewProcessor builds a processor writing to logg.
func NewProcessor(logg *logger.Logger) (*Processor, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Processor{logg: logg}, nil
}

// Describe decodes msg into a log entry. The users topic is read as TiCDC row
// changes; every other topic is passed through as parsed JSON.
func Describe(msg kafka.Message) (Entry, error) {
	entry := Entry{
		Source:    source,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
	var parsed any
	if err := json.Unmarshal(msg.Value, &parsed); err != nil {
		return entry, err
	}
	if msg.Topic != TopicUsers {
		entry.Data = parsed
		return entry, nil
	}
	change := Classify(parsed)
	entry.Table = TopicUsers
	entry.Operation = change.Operation
	entry.Data = change.Data
	return entry, nil
}

// Handle logs one message. Empty values are skipped and undecodable values
// are logged as parse errors; neither stops the consumer.
func (p *Processor) Handle(ctx context.Context, msg kafka.Message) {
	if len(msg.Value) == 0 {
		return
	}
	entry, err := Describe(msg)
	if err != nil {
		preview := msg.Value
		if len(preview) > rawPreviewLen {
			preview = preview[:rawPreviewLen]
		}
		logCtx := p.logg.WithFields(ctx, map[string]any{
			"kind":      "JSON_PARSE_ERROR",
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
			"raw_value": string(preview),
		})
		p.logg.Error(logCtx, "cdc.parse_error", err)
		return
	}
	p.logg.Info(p.logg.WithFields(ctx, entry.fields()), "cdc.change")
}
