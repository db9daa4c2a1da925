// Package contentstore persists DDL documents in object storage. Each backend
// handles one reference scheme (s3://, gs://, az://) and the Router picks the
// backend for a stored reference.
package contentstore

import (
	"fmt"
	"sort"
	"strings"

	"redshift-ddl/internal/domain"
)

// ParseRef splits a "scheme://bucket/key" reference. The key is taken
// verbatim (no percent-decoding, no fragment handling) so every key the
// extractor writes parses back to itself.
func ParseRef(raw string) (domain.ContentRef, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return domain.ContentRef{}, &domain.InvalidReferenceError{Ref: raw, Reason: "expected scheme://bucket/key"}
	}
	bucket, key, _ := strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" {
		return domain.ContentRef{}, &domain.InvalidReferenceError{Ref: raw, Reason: "empty bucket"}
	}
	if key == "" {
		return domain.ContentRef{}, &domain.InvalidReferenceError{Ref: raw, Reason: "empty key"}
	}
	return domain.ContentRef{Scheme: strings.ToLower(scheme), Bucket: bucket, Key: key}, nil
}

// Router maps reference schemes to content stores.
type Router struct {
	stores map[string]domain.ContentStore
}

// NewRouter creates a Router over the given stores. A later store replaces an
// earlier one with the same scheme.
func NewRouter(stores ...domain.ContentStore) *Router {
	r := &Router{stores: make(map[string]domain.ContentStore, len(stores))}
	for _, s := range stores {
		r.stores[s.Scheme()] = s
	}
	return r
}

// Store returns the store registered for scheme.
func (r *Router) Store(scheme string) (domain.ContentStore, error) {
	s, ok := r.stores[strings.ToLower(scheme)]
	if !ok {
		return nil, fmt.Errorf("no content store configured for scheme %q (configured: %s)", scheme, strings.Join(r.Schemes(), ", "))
	}
	return s, nil
}

// Resolve parses raw and returns it together with the store that serves it.
func (r *Router) Resolve(raw string) (domain.ContentRef, domain.ContentStore, error) {
	ref, err := ParseRef(raw)
	if err != nil {
		return domain.ContentRef{}, nil, err
	}
	s, ok := r.stores[ref.Scheme]
	if !ok {
		return domain.ContentRef{}, nil, &domain.InvalidReferenceError{
			Ref:    raw,
			Reason: fmt.Sprintf("unsupported scheme %q", ref.Scheme),
		}
	}
	return ref, s, nil
}

// Schemes lists the configured schemes in sorted order.
func (r *Router) Schemes() []string {
	out := make([]string, 0, len(r.stores))
	for k := range r.stores {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
