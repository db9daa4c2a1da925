package contentstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redshift-ddl/internal/domain"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	getErr  error
	lastPut *s3.PutObjectInput
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.lastPut = in
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func TestS3Store_PutGet(t *testing.T) {
	f := newFakeS3()
	store := NewS3Store(f)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bucket", "host1/db1/sales_ddl.sql", []byte("CREATE TABLE t (id INT);")))
	assert.Equal(t, int64(24), aws.ToInt64(f.lastPut.ContentLength))

	got, err := store.Get(ctx, "bucket", "host1/db1/sales_ddl.sql")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE t (id INT);", string(got))

	// Overwrite replaces the whole object.
	require.NoError(t, store.Put(ctx, "bucket", "host1/db1/sales_ddl.sql", []byte("")))
	got, err = store.Get(ctx, "bucket", "host1/db1/sales_ddl.sql")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestS3Store_GetNotFound(t *testing.T) {
	store := NewS3Store(newFakeS3())

	_, err := store.Get(context.Background(), "bucket", "missing_ddl.sql")
	var notFound *domain.ContentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "s3://bucket/missing_ddl.sql", notFound.Ref)
}

func TestS3Store_GetHTTP404(t *testing.T) {
	f := newFakeS3()
	f.getErr = &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
			Err:      errors.New("NotFound"),
		},
	}

	_, err := NewS3Store(f).Get(context.Background(), "bucket", "k_ddl.sql")
	var notFound *domain.ContentNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestS3Store_GetOtherError(t *testing.T) {
	f := newFakeS3()
	f.getErr = errors.New("AccessDenied")

	_, err := NewS3Store(f).Get(context.Background(), "bucket", "k_ddl.sql")
	require.Error(t, err)
	var notFound *domain.ContentNotFoundError
	assert.False(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), "s3://bucket/k_ddl.sql")
}

func TestS3Store_PutError(t *testing.T) {
	f := newFakeS3()
	f.putErr = errors.New("SlowDown")

	err := NewS3Store(f).Put(context.Background(), "bucket", "k_ddl.sql", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put s3://bucket/k_ddl.sql")
}

func TestNewS3ClientStatic(t *testing.T) {
	client := NewS3ClientStatic(S3StaticOptions{
		Endpoint: "localhost:9000",
		Region:   "us-east-1",
		KeyID:    "minio",
		Secret:   "minio123",
	})
	opts := client.Options()
	assert.Equal(t, "https://localhost:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	client = NewS3ClientStatic(S3StaticOptions{Endpoint: "http://localstack:4566", Region: "us-east-1"})
	assert.Equal(t, "http://localstack:4566", aws.ToString(client.Options().BaseEndpoint))
}

func TestNewS3ClientStatic_ServerErrorSentOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<Error><Code>InternalError</Code><Message>try again later</Message></Error>`))
	}))
	defer srv.Close()

	client := NewS3ClientStatic(S3StaticOptions{Endpoint: srv.URL, Region: "us-east-1", KeyID: "minio", Secret: "minio123"})
	_, err := NewS3Store(client).Get(context.Background(), "bucket", "legacy/dev/sales_ddl.sql")
	require.Error(t, err)

	var notFound *domain.ContentNotFoundError
	assert.False(t, errors.As(err, &notFound))
	assert.Equal(t, int32(1), hits.Load())
}
