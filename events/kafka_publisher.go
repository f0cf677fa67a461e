package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per committed match, keyed by match id.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not provided")
	}
	if topic == "" {
		return nil, errors.New("kafka topic not provided")
	}
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With(slog.String("component", "kafka_publisher"), slog.String("topic", topic)),
	}, nil
}

// MatchRecorded publishes the match. The hash balancer keeps all events of a
// match on one partition.
func (p *KafkaPublisher) MatchRecorded(ctx context.Context, match *models.Match) error {
	value, err := json.Marshal(NewMatchRecorded(match))
	if err != nil {
		return fmt.Errorf("marshal match event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(match.ID)),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeMatchRecorded)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish match event", slog.Int("match_id", match.ID), slog.Any("error", err))
		return fmt.Errorf("publish match %d: %w", match.ID, err)
	}

	p.logger.DebugContext(ctx, "published match event", slog.Int("match_id", match.ID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
