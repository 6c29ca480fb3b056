// Command publisher puts one invoice work item on the ingestor topic. With
// -file the invoice is uploaded to the configured blob store first.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/blob"
	"github.com/TemirB/invoice-processor/internal/config"
	"github.com/TemirB/invoice-processor/internal/domain"
	"github.com/TemirB/invoice-processor/internal/kafka"
)

type uploader interface {
	Upload(ctx context.Context, location string, r io.Reader) error
}

func main() {
	_ = godotenv.Load("env/.env")

	var (
		brokers  = flag.String("brokers", envOr("KAFKA_BROKERS", "localhost:9092"), "comma separated kafka brokers")
		topic    = flag.String("topic", envOr("KAFKA_TOPIC", "workiteminvoice"), "work item topic")
		email    = flag.String("email", "", "requester email (partition key)")
		location = flag.String("location", "", "container/blob of the invoice document")
		locType  = flag.String("type", domain.LocationAzureBlob.String(), "data location type")
		file     = flag.String("file", "", "local invoice file to upload to -location first")
		driver   = flag.String("blob", envOr("BLOB_DRIVER", config.BlobAzure), "blob driver for -file: azure or local")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	lt, err := domain.ParseLocationType(*locType)
	if err != nil {
		logger.Fatal("bad -type", zap.Error(err))
	}

	if *file != "" {
		if err := upload(ctx, *driver, *location, *file, logger); err != nil {
			logger.Fatal("upload failed", zap.Error(err))
		}
		logger.Info("invoice uploaded", zap.String("location", *location))
	}

	item := domain.WorkItem{
		CorrelationID: uuid.NewString(),
		TransactionID: uuid.New(),
		UserEmail:     *email,
		LocationType:  lt,
		Location:      *location,
	}

	pub := kafka.NewPublisher(config.Kafka{Brokers: splitBrokers(*brokers), Topic: *topic})
	defer pub.Close()

	if err := pub.Publish(ctx, item); err != nil {
		logger.Fatal("publish failed", zap.Error(err))
	}
	logger.Info("work item published",
		zap.String("topic", *topic),
		zap.String("correlation_id", item.CorrelationID),
		zap.String("transaction_id", item.TransactionID.String()),
	)
}

func upload(ctx context.Context, driver, location, path string, logger *zap.Logger) error {
	var up uploader
	switch driver {
	case config.BlobLocal:
		up = blob.NewLocalOpener(envOr("BLOB_LOCAL_ROOT", "data/blobs"))
	case config.BlobAzure:
		az, err := blob.NewAzureOpener(os.Getenv("AZURE_STORAGE_CONNECTION_STRING"), logger)
		if err != nil {
			return err
		}
		up = az
	default:
		return fmt.Errorf("unknown blob driver %q", driver)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return up.Upload(ctx, location, f)
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitBrokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
