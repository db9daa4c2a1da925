package contentstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"redshift-ddl/internal/domain"
)

// Compile-time check: S3Store implements domain.ContentStore.
var _ domain.ContentStore = (*S3Store)(nil)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store stores documents in Amazon S3 or an S3-compatible service.
type S3Store struct {
	client S3API
}

// NewS3Store creates a store around an S3 client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// S3StaticOptions configures an S3-compatible endpoint with static keys
// (MinIO, Hetzner, LocalStack). Path-style addressing is always used.
type S3StaticOptions struct {
	Endpoint string // host[:port] or full URL
	Region   string
	KeyID    string
	Secret   string
}

// NewS3ClientStatic creates an S3 client for an S3-compatible endpoint.
// Requests are sent once; failures surface to the caller unretried.
func NewS3ClientStatic(opts S3StaticOptions) *s3.Client {
	endpoint := opts.Endpoint
	if !hasScheme(endpoint) {
		endpoint = fmt.Sprintf("https://%s", endpoint)
	}
	return s3.New(s3.Options{
		Region: opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.KeyID, opts.Secret, "",
		),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Retryer:      aws.NopRetryer{},
	})
}

// Scheme implements domain.ContentStore.
func (s *S3Store) Scheme() string { return "s3" }

// Put uploads body in a single PutObject call, so readers observe either the
// previous object or the whole new one.
func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/sql; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Get downloads the object body.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	ref := domain.ContentRef{Scheme: s.Scheme(), Bucket: bucket, Key: key}.String()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, &domain.ContentNotFoundError{Ref: ref, Err: err}
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	defer out.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return body, nil
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

func hasScheme(endpoint string) bool {
	return strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
}
