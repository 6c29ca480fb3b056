package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/blob"
	"github.com/TemirB/invoice-processor/internal/config"
	"github.com/TemirB/invoice-processor/internal/domain"
	"github.com/TemirB/invoice-processor/internal/invoice"
	"github.com/TemirB/invoice-processor/internal/observability"
	"github.com/TemirB/invoice-processor/internal/pkg/retry"
	"github.com/TemirB/invoice-processor/internal/workitem"
)

//go:generate mockgen -source ingest.go -destination=ingest_mock_test.go -package=service

var (
	ErrParseInvoice = errors.New("failed to parse invoice")
	ErrPersist      = errors.New("failed to persist order records")
)

type Parser interface {
	Parse(r io.Reader, logger *zap.Logger) invoice.Result
}

type DocumentOpener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

type RecordSink interface {
	Append(ctx context.Context, rec domain.OrderRecord) error
}

// Ingestor runs one work item through validate, open, parse and persist.
type Ingestor struct {
	parser      Parser
	opener      DocumentOpener
	sink        RecordSink
	retryPolicy config.Retry
	logger      *zap.Logger
	metrics     observability.Metrics
}

func NewIngestor(
	parser Parser,
	opener DocumentOpener,
	sink RecordSink,
	retryPolicy config.Retry,
	logger *zap.Logger,
	metrics observability.Metrics,
) *Ingestor {
	return &Ingestor{
		parser:      parser,
		opener:      opener,
		sink:        sink,
		retryPolicy: retryPolicy,
		logger:      logger,
		metrics:     metrics,
	}
}

// Process handles one event payload. Rejected work items are logged and
// acknowledged (nil). A document that cannot be read returns ErrParseInvoice
// and nothing is written. Records that cannot be written are skipped and
// reported together as ErrPersist once the rest of the batch is stored.
//
// Failures a redelivery cannot fix also wrap retry.ErrPermanent: a missing or
// empty document, or a batch whose every failed record was refused by the
// store as invalid.
func (i *Ingestor) Process(ctx context.Context, payload []byte) error {
	start := time.Now()
	i.logger.Info("Invoice work item received", zap.Int("bytes", len(payload)))

	item, rej := workitem.Validate(payload)
	if rej != nil {
		i.logger.Error(rej.Message(),
			zap.String("kind", string(rej.Kind)),
			zap.Error(rej.Err),
		)
		i.metrics.ObserveInvocation(observability.OutcomeRejected, observability.SinceMs(start))
		return nil
	}

	log := i.logger.With(
		zap.String("correlation_id", item.CorrelationID),
		zap.String("transaction_id", item.TransactionID.String()),
		zap.String("location", item.Location),
	)

	res, err := i.parseDocument(ctx, item.Location, log)
	if err == nil && !res.OK {
		err = res.Err
	}
	if err != nil {
		log.Error("Failed to parse invoice.", zap.Error(err))
		i.metrics.ObserveInvocation(observability.OutcomeParseFailed, observability.SinceMs(start))
		if permanentDocumentError(err) {
			return fmt.Errorf("%w: %w: %w", ErrParseInvoice, retry.ErrPermanent, err)
		}
		return fmt.Errorf("%w: %w", ErrParseInvoice, err)
	}
	for _, f := range res.Failures {
		i.metrics.IncSegmentFailure(string(f.Kind))
	}

	var errs, transient []error
	for _, order := range res.Orders {
		if err := i.persist(ctx, item.UserEmail, order); err != nil {
			log.Error("failed to persist order record",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
			errs = append(errs, err)
			if !errors.Is(err, retry.ErrPermanent) {
				transient = append(transient, err)
			}
			continue
		}
		log.Info("Added table record for order number: " + order.OrderNumber)
	}

	if len(errs) > 0 {
		i.metrics.ObserveInvocation(observability.OutcomePartial, observability.SinceMs(start))
		// one retryable failure makes the whole item worth redelivering
		if len(transient) > 0 {
			return fmt.Errorf("%w: %w", ErrPersist, errors.Join(transient...))
		}
		return fmt.Errorf("%w: %w", ErrPersist, errors.Join(errs...))
	}

	log.Info("Invoice processed",
		zap.Int("orders", len(res.Orders)),
		zap.Int("skipped_segments", len(res.Failures)),
	)
	i.metrics.ObserveInvocation(observability.OutcomeProcessed, observability.SinceMs(start))
	return nil
}

func (i *Ingestor) parseDocument(ctx context.Context, location string, log *zap.Logger) (invoice.Result, error) {
	t0 := time.Now()
	rc, err := i.opener.Open(ctx, location)
	i.metrics.ObserveFetch(err == nil, observability.SinceMs(t0))
	if err != nil {
		return invoice.Result{}, fmt.Errorf("open %s: %w", location, err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			log.Warn("close invoice document", zap.Error(cerr))
		}
	}()

	return i.parser.Parse(rc, log), nil
}

func (i *Ingestor) persist(ctx context.Context, userEmail string, order domain.Order) error {
	rec, err := domain.NewOrderRecord(userEmail, order)
	if err != nil {
		i.metrics.IncPersisted(false)
		return fmt.Errorf("%w: %w", retry.ErrPermanent, err)
	}

	err = retry.Do(ctx, i.retryPolicy, func() error {
		err := i.sink.Append(ctx, rec)
		if errors.Is(err, domain.ErrEmptyPartition) || errors.Is(err, domain.ErrEmptyRowKey) {
			return fmt.Errorf("%w: %w", retry.ErrPermanent, err)
		}
		return err
	})
	i.metrics.IncPersisted(err == nil)
	return err
}

func permanentDocumentError(err error) bool {
	return errors.Is(err, blob.ErrNotFound) ||
		errors.Is(err, blob.ErrInvalidLocation) ||
		errors.Is(err, invoice.ErrEmptyDocument)
}
