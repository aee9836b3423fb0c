package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLStore implements Store on top of the local SQLite database.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Put persists the payload under a fresh key and returns its reference.
func (s *SQLStore) Put(ctx context.Context, payload string) (string, error) {
	ref := NewRef()
	key, err := KeyFromRef(ref)
	if err != nil {
		return "", fmt.Errorf("KeyFromRef(%s) > %w", ref, err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO blobs (blob_key, payload) VALUES (?, ?)", key, payload); err != nil {
		return "", fmt.Errorf("db.ExecContext(insert blob) > %w", err)
	}
	return ref, nil
}

// Get returns the payload for a reference, or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, ref string) (string, error) {
	key, err := KeyFromRef(ref)
	if err != nil {
		return "", fmt.Errorf("KeyFromRef(%s) > %w", ref, err)
	}

	var payload string
	err = s.db.GetContext(ctx, &payload, "SELECT payload FROM blobs WHERE blob_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("db.GetContext(blob) > %w", err)
	}
	return payload, nil
}

// DeleteMany removes the referenced payloads. Malformed references are
// skipped; missing keys are silently ignored by the delete itself.
func (s *SQLStore) DeleteMany(ctx context.Context, refs []string) error {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		key, err := KeyFromRef(ref)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM blobs WHERE blob_key IN (?)", keys)
	if err != nil {
		return fmt.Errorf("sqlx.In(delete blobs) > %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("db.ExecContext(delete blobs) > %w", err)
	}
	return nil
}

// Keys returns every stored blob reference. Used by the orphan sweep.
func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, "SELECT blob_key FROM blobs ORDER BY blob_key"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(blob keys) > %w", err)
	}

	refs := make([]string, len(keys))
	for i, key := range keys {
		refs[i] = RefScheme + key
	}
	return refs, nil
}
