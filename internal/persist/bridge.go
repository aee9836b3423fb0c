// Package persist keeps a durable, restart-surviving mirror of the record
// store's metadata and rehydrates it at startup. Large image payloads are not
// part of the mirror; only blob store references survive serialization.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"

	"github.com/hnakamura/examdeck/internal/blob"
	"github.com/hnakamura/examdeck/internal/database"
	"github.com/hnakamura/examdeck/internal/deck"
)

// Fixed keys in the snapshots table, one per collection.
const (
	KeyExams     = "exams"
	KeyQuestions = "questions"
	KeyTags      = "tags"
)

const writeAttempts = 3

// Bridge mirrors record store state to the snapshots table. Writes are
// fire-and-forget: Mirror coalesces to the latest state and a single worker
// goroutine persists it, so a burst of changes costs one durable write. A
// change may be lost if the process exits before Close.
type Bridge struct {
	db *sqlx.DB

	mu     sync.Mutex
	latest *deck.State

	kick chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewBridge creates a bridge writing to db and starts its write worker.
func NewBridge(db *sqlx.DB) *Bridge {
	b := &Bridge{
		db:   db,
		kick: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
	b.wg.Add(1)
	go b.worker()
	return b
}

// Mirror schedules a durable write of the given state. It never blocks;
// an unwritten earlier state is superseded.
func (b *Bridge) Mirror(state deck.State) {
	b.mu.Lock()
	b.latest = &state
	b.mu.Unlock()

	select {
	case b.kick <- struct{}{}:
	default:
	}
}

// Close flushes any pending write and stops the worker.
func (b *Bridge) Close() error {
	b.once.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()

	if state := b.takeLatest(); state != nil {
		return b.write(*state)
	}
	return nil
}

func (b *Bridge) worker() {
	defer b.wg.Done()
	for {
		select {
		case <-b.quit:
			return
		case <-b.kick:
			state := b.takeLatest()
			if state == nil {
				continue
			}
			if err := b.write(*state); err != nil {
				slog.Warn("failed to mirror state to durable storage", "error", err)
			}
		}
	}
}

func (b *Bridge) takeLatest() *deck.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.latest
	b.latest = nil
	return state
}

func (b *Bridge) write(state deck.State) error {
	exams, err := json.Marshal(state.Exams)
	if err != nil {
		return fmt.Errorf("json.Marshal(exams) > %w", err)
	}
	questions, err := json.Marshal(stripInlinePayloads(state.Questions))
	if err != nil {
		return fmt.Errorf("json.Marshal(questions) > %w", err)
	}
	tags, err := json.Marshal(state.Tags)
	if err != nil {
		return fmt.Errorf("json.Marshal(tags) > %w", err)
	}

	rows := map[string][]byte{
		KeyExams:     exams,
		KeyQuestions: questions,
		KeyTags:      tags,
	}

	return retry.Do(
		func() error {
			return database.RunInTx(context.Background(), b.db, func(ctx context.Context, tx *sqlx.Tx) error {
				for key, value := range rows {
					if _, err := tx.ExecContext(ctx, `
						INSERT INTO snapshots (snapshot_key, value, updated_at)
						VALUES (?, ?, datetime('now'))
						ON CONFLICT (snapshot_key)
						DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
						key, string(value)); err != nil {
						return fmt.Errorf("tx.ExecContext(upsert %s) > %w", key, err)
					}
				}
				return nil
			})
		},
		retry.Attempts(writeAttempts),
		retry.Delay(50*time.Millisecond),
	)
}

// stripInlinePayloads drops image values that are not blob store references.
// Inline payloads should have been migrated to the blob store by the mutation
// that produced them; anything left inline would bloat the metadata mirror.
func stripInlinePayloads(questions []deck.Question) []deck.Question {
	out := make([]deck.Question, len(questions))
	copy(out, questions)
	for i := range out {
		if out[i].ImageURL != "" && !blob.IsRef(out[i].ImageURL) {
			out[i].ImageURL = ""
		}
		if out[i].Answer == nil {
			continue
		}
		answer := *out[i].Answer
		var refs []string
		for _, url := range answer.ImageURLs {
			if blob.IsRef(url) {
				refs = append(refs, url)
			}
		}
		answer.ImageURLs = refs
		out[i].Answer = &answer
	}
	return out
}

// Load reconstructs the initial record store state from durable storage.
// Absent or corrupt rows fall back to empty collections; this never fails
// the startup path short of a storage-level query error.
func (b *Bridge) Load(ctx context.Context) (deck.State, error) {
	exams, err := loadCollection[deck.Exam](ctx, b.db, KeyExams)
	if err != nil {
		return deck.State{}, err
	}
	questions, err := loadCollection[deck.Question](ctx, b.db, KeyQuestions)
	if err != nil {
		return deck.State{}, err
	}
	tags, err := loadCollection[deck.Tag](ctx, b.db, KeyTags)
	if err != nil {
		return deck.State{}, err
	}
	return deck.State{Exams: exams, Questions: questions, Tags: tags}, nil
}

func loadCollection[T any](ctx context.Context, db *sqlx.DB, key string) ([]T, error) {
	var value string
	err := db.GetContext(ctx, &value, "SELECT value FROM snapshots WHERE snapshot_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(snapshot %s) > %w", key, err)
	}

	var records []T
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		slog.Warn("corrupt persisted collection, falling back to empty", "key", key, "error", err)
		return nil, nil
	}
	return records, nil
}
