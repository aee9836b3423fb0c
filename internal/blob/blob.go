// Package blob provides durable key-value storage for large image payloads,
// kept outside the record store's serialization path. Stored payloads are
// addressed by generated "ref://" keys so consumers can tell a stored
// reference apart from an inline data URI.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RefScheme prefixes every blob store reference.
const RefScheme = "ref://"

// ErrNotFound is returned by Get for keys with no stored payload. Callers
// treat absence as "image missing", not as a fatal condition.
var ErrNotFound = errors.New("blob not found")

// Store is the payload storage abstraction used by the record mutation layer
// and the import/export reconciler. The store has no knowledge of which
// records reference its entries; reclaiming unreferenced payloads is the
// caller's responsibility.
type Store interface {
	// Put persists the payload under a fresh key and returns its reference.
	// Existing entries are never overwritten.
	Put(ctx context.Context, payload string) (string, error)
	// Get returns the payload for a reference, or ErrNotFound.
	Get(ctx context.Context, ref string) (string, error)
	// DeleteMany removes the referenced payloads. Missing references are
	// skipped; a failure on one does not abort deletion of the others.
	DeleteMany(ctx context.Context, refs []string) error
}

// IsRef reports whether the value is a blob store reference.
func IsRef(value string) bool {
	return strings.HasPrefix(value, RefScheme)
}

// IsInline reports whether the value is an inline data URI payload.
func IsInline(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// NewRef generates a fresh, globally unique reference.
func NewRef() string {
	return RefScheme + uuid.NewString()
}

// KeyFromRef extracts the storage key from a reference.
func KeyFromRef(ref string) (string, error) {
	if !IsRef(ref) {
		return "", fmt.Errorf("not a blob reference: %s", ref)
	}
	key := strings.TrimPrefix(ref, RefScheme)
	if key == "" {
		return "", fmt.Errorf("empty blob reference")
	}
	return key, nil
}
