package schedule

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redshift-ddl/internal/domain"
)

const scheduleYAML = `
jobs:
  - name: nightly-legacy
    cron: "0 2 * * *"
    connection:
      host: legacy-cluster
      port: 5439
      db: dev
      user: admin
      password_secret_arn: arn:aws:secretsmanager:eu-west-1:123456789012:secret:legacy
    schemas: [sales, finance]
  - name: hourly-local
    cron: "@hourly"
    connection:
      host: local
      db: warehouse
      user: admin
    schemas: [public]
`

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type recordingExtractor struct {
	mu    sync.Mutex
	calls []string
	ids   []string
	err   error
}

func (r *recordingExtractor) Extract(ctx context.Context, conn domain.ConnectionDescriptor, schemas []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, conn.Host+":"+strings.Join(schemas, ","))
	r.ids = append(r.ids, domain.InvocationIDFromContext(ctx))
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]string, len(schemas))
	for _, s := range schemas {
		out[s] = "s3://b/" + conn.Host + "/" + conn.Database + "/" + s + "_ddl.sql"
	}
	return out, nil
}

func TestParse(t *testing.T) {
	jobs, err := Parse([]byte(scheduleYAML))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "nightly-legacy", jobs[0].Name)
	assert.Equal(t, domain.ConnectionDescriptor{
		Host:          "legacy-cluster",
		Port:          5439,
		Database:      "dev",
		User:          "admin",
		CredentialRef: "arn:aws:secretsmanager:eu-west-1:123456789012:secret:legacy",
	}, jobs[0].Connection.Descriptor())
	assert.Equal(t, []string{"sales", "finance"}, jobs[0].Schemas)
	assert.Equal(t, "@hourly", jobs[1].Cron)
}

func TestParse_Empty(t *testing.T) {
	jobs, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "unknown field",
			yaml:    "jobs:\n  - name: a\n    schedule: '* * * * *'\n",
			wantMsg: "invalid schedule YAML",
		},
		{
			name:    "missing name",
			yaml:    "jobs:\n  - cron: '@daily'\n    connection: {host: h, db: d, user: u}\n    schemas: [s]\n",
			wantMsg: "name is required",
		},
		{
			name:    "bad cron",
			yaml:    "jobs:\n  - name: a\n    cron: 'every day'\n    connection: {host: h, db: d, user: u}\n    schemas: [s]\n",
			wantMsg: "invalid cron expression",
		},
		{
			name:    "bad connection",
			yaml:    "jobs:\n  - name: a\n    cron: '@daily'\n    connection: {host: h, user: u}\n    schemas: [s]\n",
			wantMsg: "db is required",
		},
		{
			name:    "no schemas",
			yaml:    "jobs:\n  - name: a\n    cron: '@daily'\n    connection: {host: h, db: d, user: u}\n",
			wantMsg: "at least one schema",
		},
		{
			name: "duplicate names",
			yaml: "jobs:\n" +
				"  - {name: a, cron: '@daily', connection: {host: h, db: d, user: u}, schemas: [s]}\n" +
				"  - {name: a, cron: '@daily', connection: {host: h, db: d, user: u}, schemas: [t]}\n",
			wantMsg: "duplicate job name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var ve *domain.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scheduleYAML), 0o600))

	jobs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScheduler_Start(t *testing.T) {
	jobs, err := Parse([]byte(scheduleYAML))
	require.NoError(t, err)

	s := NewScheduler(&recordingExtractor{}, jobs, discardLogger())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	assert.Len(t, s.cron.Entries(), 2)

	next, ok := s.NextRun("nightly-legacy")
	require.True(t, ok)
	assert.True(t, next.After(time.Now()), "next run %v is in the future", next)

	_, ok = s.NextRun("unknown")
	assert.False(t, ok)
}

func TestScheduler_StartRejectsBadCron(t *testing.T) {
	s := NewScheduler(&recordingExtractor{}, []Job{{Name: "a", Cron: "nope"}}, discardLogger())
	err := s.Start(context.Background())
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestScheduler_RunJob(t *testing.T) {
	jobs, err := Parse([]byte(scheduleYAML))
	require.NoError(t, err)

	x := &recordingExtractor{}
	s := NewScheduler(x, jobs, discardLogger())

	out, err := s.RunJob(context.Background(), jobs[0])
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"sales":   "s3://b/legacy-cluster/dev/sales_ddl.sql",
		"finance": "s3://b/legacy-cluster/dev/finance_ddl.sql",
	}, out)
	require.Len(t, x.ids, 1)
	assert.True(t, strings.HasPrefix(x.ids[0], "schedule-nightly-legacy-"))

	x.err = &domain.ConnectionError{Host: "legacy-cluster", Err: errors.New("refused")}
	_, err = s.RunJob(context.Background(), jobs[0])
	var ce *domain.ConnectionError
	assert.ErrorAs(t, err, &ce)
}
