package handler

import (
	"context"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/kafka"
	"github.com/TemirB/invoice-processor/internal/pkg/retry"
)

//go:generate mockgen -source handler.go -destination=handler_mock_test.go -package=handler

var ErrCircuitOpen = errors.New("circuit breaker open")

type Processor interface {
	Process(ctx context.Context, payload []byte) error
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

// Handler feeds queued work items to the ingestor. A failing ingest trips the
// breaker so a broken blob store or table is not hammered by redeliveries.
type Handler struct {
	processor Processor
	breaker   brk
	logger    *zap.Logger
}

func NewHandler(processor Processor, breaker brk, logger *zap.Logger) *Handler {
	return &Handler{
		processor: processor,
		breaker:   breaker,
		logger:    logger,
	}
}

// Handle is called by the consumer for a single message. A nil return lets
// the consumer commit the offset; any error leaves the message for redelivery.
// While the breaker is open the error wraps kafka.ErrRetryLater, so waiting
// for it does not use up the message's redeliveries.
//
// Failures wrapping retry.ErrPermanent (a missing or empty document, a record
// the store refuses) are logged and acknowledged. They say nothing about the
// health of the blob store or table and do not count against the breaker.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return fmt.Errorf("%w: %w: %w", ErrCircuitOpen, kafka.ErrRetryLater, err)
	}

	err := h.processor.Process(ctx, message.Value)
	switch {
	case err == nil:
	case errors.Is(err, retry.ErrPermanent):
		h.breaker.Success()
		h.logger.Error("invoice work item dropped",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	default:
		h.breaker.Failure()
		h.logger.Error("invoice work item failed",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return err
	}

	h.breaker.Success()
	h.logger.Debug("invoice work item handled",
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
		zap.Int("value_bytes", len(message.Value)),
	)
	return nil
}
