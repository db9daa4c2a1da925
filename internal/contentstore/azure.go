package contentstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"redshift-ddl/internal/domain"
)

// Compile-time check: AzureStore implements domain.ContentStore.
var _ domain.ContentStore = (*AzureStore)(nil)

// AzureBlobAPI is the subset of the azblob client used by AzureStore.
type AzureBlobAPI interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureStore stores documents in Azure Blob Storage. References use the
// az://container/key form; the container plays the role of the bucket.
type AzureStore struct {
	client AzureBlobAPI
}

// NewAzureStore creates a store around an azblob client.
func NewAzureStore(client AzureBlobAPI) *AzureStore {
	return &AzureStore{client: client}
}

// NewAzureStoreFromSharedKey creates a store authenticated with an account key.
func NewAzureStoreFromSharedKey(accountName, accountKey string) (*AzureStore, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, NoRetryClientOptions())
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return NewAzureStore(client), nil
}

// NoRetryClientOptions makes the azblob pipeline send each request once.
func NoRetryClientOptions() *azblob.ClientOptions {
	return &azblob.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}
}

// Scheme implements domain.ContentStore.
func (s *AzureStore) Scheme() string { return "az" }

// Put uploads body as a block blob, replacing any existing blob.
func (s *AzureStore) Put(ctx context.Context, container, key string, body []byte) error {
	_, err := s.client.UploadBuffer(ctx, container, key, body, &azblob.UploadBufferOptions{})
	if err != nil {
		return fmt.Errorf("upload az://%s/%s: %w", container, key, err)
	}
	return nil
}

// Get downloads the blob body.
func (s *AzureStore) Get(ctx context.Context, container, key string) ([]byte, error) {
	ref := domain.ContentRef{Scheme: s.Scheme(), Bucket: container, Key: key}.String()

	resp, err := s.client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, &domain.ContentNotFoundError{Ref: ref, Err: err}
		}
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return body, nil
}
