package mail

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type KafkaConfig struct {
	Broker   string
	Topic    string
	GroupID  string
	Username string
	Password string
}

// KafkaSender publishes messages to the mail topic; cmd/mailer delivers them.
type KafkaSender struct {
	writer *kafka.Writer
}

func NewKafkaSender(cfg KafkaConfig) *KafkaSender {
	transport := &kafka.Transport{}
	if cfg.Username != "" {
		transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		transport.TLS = &tls.Config{}
	}

	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Broker),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Transport:    transport,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("publish mail message: %w", err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

// Relay consumes the mail topic and hands each message to a Sender.
type Relay struct {
	reader *kafka.Reader
	sender Sender
	logger *slog.Logger
}

func NewRelay(cfg KafkaConfig, sender Sender, logger *slog.Logger) *Relay {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.Username != "" {
		dialer.SASLMechanism = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		dialer.TLS = &tls.Config{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Relay{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  []string{cfg.Broker},
			GroupID:  cfg.GroupID,
			Topic:    cfg.Topic,
			MinBytes: 10e3,
			MaxBytes: 10e6,
			Dialer:   dialer,
		}),
		sender: sender,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled. Offsets are committed only after a
// message has been handled, so a crash redelivers rather than drops.
func (r *Relay) Run(ctx context.Context) error {
	for {
		m, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			r.logger.Error("mail relay fetch failed", "error", err)
			continue
		}

		if err := r.Handle(ctx, m.Value); err != nil {
			r.logger.Error("mail relay delivery failed", "offset", m.Offset, "error", err)
		}

		if err := r.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			r.logger.Error("mail relay commit failed", "offset", m.Offset, "error", err)
		}
	}
}

func (r *Relay) Handle(ctx context.Context, value []byte) error {
	var msg Message
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("decode mail message: %w", err)
	}
	if msg.To == "" || msg.From == "" {
		return errors.New("mail message missing sender or recipient")
	}

	if err := r.sender.Send(ctx, msg); err != nil {
		return err
	}

	r.logger.Info("mail delivered", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (r *Relay) Close() error {
	return r.reader.Close()
}
