// Package consumer ingests payment events delivered through Kafka.
package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/service/ledgerservice"
	"github.com/GlebRadaev/servicehub/pkg/signature"
)

//go:generate mockgen -source=consumer.go -destination=mock_consumer.go -package=consumer

const (
	SignatureHeader = "signature"

	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

type Ingester interface {
	Ingest(ctx context.Context, body []byte, signatureHeader string) (ledgerservice.Outcome, error)
}

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader     Reader
	ingester   Ingester
	minBackoff time.Duration
}

func New(brokers []string, topic, groupID string, ingester Ingester) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     groupID,
			MinBytes:    1,
			MaxBytes:    10e6,
			MaxWait:     time.Second,
			StartOffset: kafka.FirstOffset,
		}),
		ingester:   ingester,
		minBackoff: minBackoff,
	}
}

// Run consumes until ctx is done. A message is committed once it was handled
// durably or rejected for good; transient failures are retried in place.
func (c *Consumer) Run(ctx context.Context) {
	zap.L().Info("payment event consumer started")
	defer func() {
		if err := c.reader.Close(); err != nil {
			zap.L().Error("failed to close kafka reader", zap.Error(err))
		}
		zap.L().Info("payment event consumer stopped")
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.L().Error("failed to fetch payment event", zap.Error(err))
			if !c.sleep(ctx, c.minBackoff) {
				return
			}
			continue
		}

		if !c.process(ctx, msg) {
			return
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			zap.L().Error("failed to commit payment event",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// process returns false only when ctx ended before the message was handled.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	header := headerValue(msg, SignatureHeader)
	backoff := c.minBackoff

	for {
		outcome, err := c.ingester.Ingest(ctx, msg.Value, header)
		if err == nil {
			zap.L().Debug("payment event consumed", zap.Int64("offset", msg.Offset), zap.String("outcome", string(outcome)))
			return true
		}
		if isPermanent(err) {
			zap.L().Warn("payment event rejected, skipping",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return true
		}

		zap.L().Error("payment event failed, retrying",
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if !c.sleep(ctx, backoff) {
			return false
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, signature.ErrInvalidSignature) || errors.Is(err, domain.ErrMalformedEvent)
}

func (c *Consumer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
