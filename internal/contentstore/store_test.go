package contentstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redshift-ddl/internal/domain"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.ContentRef
		wantErr string
	}{
		{
			name:  "s3",
			input: "s3://bucket/host1/db1/sales_ddl.sql",
			want:  domain.ContentRef{Scheme: "s3", Bucket: "bucket", Key: "host1/db1/sales_ddl.sql"},
		},
		{
			name:  "gs",
			input: "gs://ddl-archive/h/d/public_ddl.sql",
			want:  domain.ContentRef{Scheme: "gs", Bucket: "ddl-archive", Key: "h/d/public_ddl.sql"},
		},
		{
			name:  "uppercase scheme",
			input: "S3://bucket/k_ddl.sql",
			want:  domain.ContentRef{Scheme: "s3", Bucket: "bucket", Key: "k_ddl.sql"},
		},
		{
			name:  "key kept verbatim",
			input: "s3://bucket/h/d/odd %20#name?_ddl.sql",
			want:  domain.ContentRef{Scheme: "s3", Bucket: "bucket", Key: "h/d/odd %20#name?_ddl.sql"},
		},
		{
			name:  "leading slashes stripped",
			input: "s3://bucket//h/d/s_ddl.sql",
			want:  domain.ContentRef{Scheme: "s3", Bucket: "bucket", Key: "h/d/s_ddl.sql"},
		},
		{name: "no scheme", input: "bucket/key", wantErr: "expected scheme://bucket/key"},
		{name: "empty scheme", input: "://bucket/key", wantErr: "expected scheme://bucket/key"},
		{name: "empty bucket", input: "s3:///key", wantErr: "empty bucket"},
		{name: "bucket only", input: "s3://bucket", wantErr: "empty key"},
		{name: "bucket with slash", input: "s3://bucket/", wantErr: "empty key"},
		{name: "empty", input: "", wantErr: "expected scheme://bucket/key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				var refErr *domain.InvalidReferenceError
				require.ErrorAs(t, err, &refErr)
				assert.Equal(t, tt.input, refErr.Ref)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRef_RoundTripsContentRef(t *testing.T) {
	ref := domain.ContentRef{Scheme: "s3", Bucket: "b", Key: `h/d/we"ird schema_ddl.sql`}
	got, err := ParseRef(ref.String())
	require.NoError(t, err)
	assert.Equal(t, ref, got)
}

type namedStore struct{ scheme string }

func (s namedStore) Scheme() string                                      { return s.scheme }
func (s namedStore) Put(context.Context, string, string, []byte) error   { return nil }
func (s namedStore) Get(context.Context, string, string) ([]byte, error) { return nil, nil }

func TestRouter(t *testing.T) {
	r := NewRouter(namedStore{"s3"}, namedStore{"gs"})
	assert.Equal(t, []string{"gs", "s3"}, r.Schemes())

	ref, store, err := r.Resolve("gs://bucket/h/d/s_ddl.sql")
	require.NoError(t, err)
	assert.Equal(t, "gs", store.Scheme())
	assert.Equal(t, "h/d/s_ddl.sql", ref.Key)

	_, _, err = r.Resolve("az://container/h/d/s_ddl.sql")
	var refErr *domain.InvalidReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Contains(t, err.Error(), `unsupported scheme "az"`)

	_, err = r.Store("az")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured: gs, s3")

	s, err := r.Store("S3")
	require.NoError(t, err)
	assert.Equal(t, "s3", s.Scheme())
}
