package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/config"
)

// ErrRetryLater marks a handler error that says nothing about the message
// itself, such as an open circuit breaker. Such messages are redelivered
// without counting against MaxRedeliveries.
var ErrRetryLater = errors.New("retry later")

type MessageHandler interface {
	Handle(ctx context.Context, msg kafkago.Message) error
}

type Reader interface {
	Config() kafkago.ReaderConfig
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NewReader builds a consumer-group reader for the work item topic.
func NewReader(cfg config.Kafka) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.Group,
		Topic:       cfg.Topic,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

// Consumer handles one message at a time and commits in fetch order, so an
// offset is never committed past a message that has not been handled.
type Consumer struct {
	handler MessageHandler
	reader  Reader
	zlogger *zap.Logger

	maxRedeliveries int
	backoff         func(attempt int) time.Duration
}

func NewConsumer(handler MessageHandler, reader Reader, cfg config.Kafka, logger *zap.Logger) *Consumer {
	return &Consumer{
		handler:         handler,
		reader:          reader,
		zlogger:         logger,
		maxRedeliveries: cfg.MaxRedeliveries,
		backoff:         redeliveryBackoff,
	}
}

// Start runs the fetch loop until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	rc := c.reader.Config()
	c.zlogger.Info("Starting Kafka consumer",
		zap.Strings("brokers", rc.Brokers),
		zap.String("group", rc.GroupID),
		zap.String("topic", rc.Topic),
		zap.Int("max_redeliveries", c.maxRedeliveries),
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if isBenignFetchTimeout(err) {
				c.zlogger.Debug("fetch timeout (idle), backing off", zap.Error(err))
				sleepWithContext(ctx, 10*time.Second)
				continue
			}
			c.zlogger.Warn("FetchMessage error, backing off", zap.Error(err))
			sleepWithContext(ctx, 500*time.Millisecond)
			continue
		}

		if !c.deliver(ctx, msg) {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.zlogger.Warn("commit failed",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			continue
		}
		c.zlogger.Debug("message committed",
			zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
	}
}

// deliver hands msg to the handler until it is handled or the redelivery
// bound is reached. Errors wrapping ErrRetryLater never reach the bound.
// It reports false when ctx ended first.
func (c *Consumer) deliver(ctx context.Context, msg kafkago.Message) bool {
	failures, waits := 0, 0
	for {
		err := c.handle(ctx, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		var delay time.Duration
		if errors.Is(err, ErrRetryLater) {
			waits++
			delay = c.backoff(waits)
			c.zlogger.Warn("handler not ready; message will be redelivered",
				zap.Error(err),
				zap.Duration("delay", delay),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
		} else {
			failures++
			waits = 0
			if c.maxRedeliveries > 0 && failures > c.maxRedeliveries {
				c.zlogger.Error("giving up on message after redeliveries",
					zap.Error(err),
					zap.Int("attempts", failures),
					zap.String("topic", msg.Topic),
					zap.Int("partition", msg.Partition),
					zap.Int64("offset", msg.Offset),
				)
				return true
			}
			delay = c.backoff(failures)
			c.zlogger.Warn("handler failed; message will be redelivered",
				zap.Error(err),
				zap.Int("attempt", failures),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
		}
		if !sleepWithContext(ctx, delay) {
			return false
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafkago.Message) error {
	start := time.Now()
	err := c.handler.Handle(ctx, msg)
	c.zlogger.Debug("message handled",
		zap.Bool("ok", err == nil),
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.Int("value_bytes", len(msg.Value)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}

func redeliveryBackoff(attempt int) time.Duration {
	d := 200 * time.Millisecond
	for i := 1; i < attempt && d < 10*time.Second; i++ {
		d *= 2
	}
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

// sleepWithContext reports false when ctx ended before d elapsed.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func isBenignFetchTimeout(err error) bool {
	s := err.Error()
	return strings.Contains(s, "Request Timed Out") ||
		strings.Contains(s, "no messages received from kafka within the allocated time")
}
