// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"fmt"
	"sync"

	"redshift-ddl/internal/domain"
)

// === Secret Resolver Mock ===

// MockSecretResolver implements domain.SecretResolver for testing.
type MockSecretResolver struct {
	ResolveFn func(ctx context.Context, ref string) (string, error)

	mu   sync.Mutex
	Refs []string // collected references for assertions
}

// Resolve implements the interface method for testing.
func (m *MockSecretResolver) Resolve(ctx context.Context, ref string) (string, error) {
	m.mu.Lock()
	m.Refs = append(m.Refs, ref)
	m.mu.Unlock()
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, ref)
	}
	return "password", nil
}

// === Content Store ===

// MemoryStore is an in-memory domain.ContentStore. Objects are replaced
// whole under a lock, matching object-store put semantics.
type MemoryStore struct {
	StoreScheme string // defaults to "s3"
	PutFn       func(ctx context.Context, bucket, key string, body []byte) error
	GetFn       func(ctx context.Context, bucket, key string) ([]byte, error)

	mu      sync.Mutex
	objects map[string][]byte
	Puts    int
	Gets    int
}

// NewMemoryStore creates an empty store for scheme.
func NewMemoryStore(scheme string) *MemoryStore {
	return &MemoryStore{StoreScheme: scheme}
}

// Scheme implements domain.ContentStore.
func (m *MemoryStore) Scheme() string {
	if m.StoreScheme == "" {
		return "s3"
	}
	return m.StoreScheme
}

// Put implements domain.ContentStore.
func (m *MemoryStore) Put(ctx context.Context, bucket, key string, body []byte) error {
	if m.PutFn != nil {
		if err := m.PutFn(ctx, bucket, key, body); err != nil {
			return err
		}
	}
	cp := append([]byte(nil), body...)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[bucket+"/"+key] = cp
	m.Puts++
	return nil
}

// Get implements domain.ContentStore.
func (m *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, bucket, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	body, ok := m.objects[bucket+"/"+key]
	if !ok {
		ref := domain.ContentRef{Scheme: m.Scheme(), Bucket: bucket, Key: key}
		return nil, &domain.ContentNotFoundError{Ref: ref.String(), Err: fmt.Errorf("no such key")}
	}
	return append([]byte(nil), body...), nil
}

// Object returns a stored object and whether it exists.
func (m *MemoryStore) Object(bucket, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[bucket+"/"+key]
	return string(body), ok
}

// Seed stores an object without counting it as a Put.
func (m *MemoryStore) Seed(bucket, key, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[bucket+"/"+key] = []byte(body)
}

// === Warehouse Mocks ===

// MockDialect implements domain.Dialect for testing.
type MockDialect struct {
	OpenFn func(ctx context.Context, conn domain.ConnectionDescriptor, password string) (domain.WarehouseSession, error)

	mu        sync.Mutex
	Opens     int
	Passwords []string
}

// Name implements the interface method for testing.
func (m *MockDialect) Name() string { return "mock" }

// Open implements the interface method for testing.
func (m *MockDialect) Open(ctx context.Context, conn domain.ConnectionDescriptor, password string) (domain.WarehouseSession, error) {
	m.mu.Lock()
	m.Opens++
	m.Passwords = append(m.Passwords, password)
	m.mu.Unlock()
	if m.OpenFn != nil {
		return m.OpenFn(ctx, conn, password)
	}
	panic("unexpected call to MockDialect.Open")
}

// MockSession implements domain.WarehouseSession for testing. Every call is
// recorded in Calls as "<method>:<argument>".
type MockSession struct {
	SchemaDDLFn    func(ctx context.Context, schema string) ([]string, error)
	EnsureSchemaFn func(ctx context.Context, schema string) error
	ExecDDLFn      func(ctx context.Context, ddl string) error

	mu     sync.Mutex
	Calls  []string
	Closed int
}

func (m *MockSession) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// SchemaDDL implements the interface method for testing.
func (m *MockSession) SchemaDDL(ctx context.Context, schema string) ([]string, error) {
	m.record("schema_ddl:" + schema)
	if m.SchemaDDLFn != nil {
		return m.SchemaDDLFn(ctx, schema)
	}
	return nil, nil
}

// EnsureSchema implements the interface method for testing.
func (m *MockSession) EnsureSchema(ctx context.Context, schema string) error {
	m.record("ensure_schema:" + schema)
	if m.EnsureSchemaFn != nil {
		return m.EnsureSchemaFn(ctx, schema)
	}
	return nil
}

// ExecDDL implements the interface method for testing.
func (m *MockSession) ExecDDL(ctx context.Context, ddl string) error {
	m.record("exec_ddl:" + ddl)
	if m.ExecDDLFn != nil {
		return m.ExecDDLFn(ctx, ddl)
	}
	return nil
}

// Close implements the interface method for testing.
func (m *MockSession) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
	return nil
}

// DialectFor returns a MockDialect that always opens session.
func DialectFor(session *MockSession) *MockDialect {
	return &MockDialect{
		OpenFn: func(context.Context, domain.ConnectionDescriptor, string) (domain.WarehouseSession, error) {
			return session, nil
		},
	}
}
