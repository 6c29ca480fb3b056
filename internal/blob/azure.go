package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"
)

type azureClient interface {
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
}

// AzureOpener reads documents from Azure Blob Storage.
type AzureOpener struct {
	client azureClient
	logger *zap.Logger
}

func NewAzureOpener(connectionString string, logger *zap.Logger) (*AzureOpener, error) {
	c, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azblob client: %w", err)
	}
	return &AzureOpener{client: c, logger: logger}, nil
}

func (o *AzureOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	container, name, err := SplitLocation(location)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, fmt.Errorf("download %s: %w", location, err)
	}

	o.logger.Debug("blob stream opened",
		zap.String("container", container),
		zap.String("blob", name),
	)
	return resp.Body, nil
}

func (o *AzureOpener) Upload(ctx context.Context, location string, r io.Reader) error {
	container, name, err := SplitLocation(location)
	if err != nil {
		return err
	}
	if _, err := o.client.UploadStream(ctx, container, name, r, nil); err != nil {
		return fmt.Errorf("upload %s: %w", location, err)
	}
	return nil
}
