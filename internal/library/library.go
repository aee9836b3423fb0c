// Package library exposes the collaborator-facing API over the record store,
// blob store and persistence bridge. It owns record lifecycle: ids and
// timestamps are generated here so the reducer below stays pure, and every
// mutation that removes the last reference to a blob reclaims it.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hnakamura/examdeck/internal/blob"
	"github.com/hnakamura/examdeck/internal/database"
	"github.com/hnakamura/examdeck/internal/deck"
	"github.com/hnakamura/examdeck/internal/persist"
)

// Library is the facade consumed by presentation collaborators.
type Library struct {
	store  *deck.Store
	blobs  blob.Store
	bridge *persist.Bridge

	degraded bool
	now      func() time.Time
	newID    func() string
}

// New creates a library over an already constructed store, blob store and
// optional bridge. A nil bridge means changes are not mirrored to durable
// storage.
func New(store *deck.Store, blobs blob.Store, bridge *persist.Bridge) *Library {
	lib := &Library{
		store:  store,
		blobs:  blobs,
		bridge: bridge,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	if bridge != nil {
		store.Subscribe(bridge.Mirror)
	}
	return lib
}

// Open opens the database at databasePath, rehydrates the record store from
// it and wires the persistence bridge. When the database cannot be opened the
// library degrades to in-memory-only operation with a single logged warning
// instead of failing; nothing survives the process in that mode.
func Open(ctx context.Context, databasePath string) (*Library, error) {
	db, err := database.Open(databasePath)
	if err != nil {
		slog.Warn("durable storage unavailable, running in memory only", "path", databasePath, "error", err)
		lib := New(deck.NewStore(deck.State{}), blob.NewMemoryStore(), nil)
		lib.degraded = true
		return lib, nil
	}

	bridge := persist.NewBridge(db)
	state, err := bridge.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("bridge.Load() > %w", err)
	}
	return New(deck.NewStore(state), blob.NewSQLStore(db), bridge), nil
}

// Degraded reports whether the library runs without durable storage.
func (l *Library) Degraded() bool {
	return l.degraded
}

// State returns the current record store state.
func (l *Library) State() deck.State {
	return l.store.State()
}

// Close flushes any pending durable write.
func (l *Library) Close() error {
	if l.bridge == nil {
		return nil
	}
	return l.bridge.Close()
}

// CreateExamInput carries the user-supplied fields of a new exam.
type CreateExamInput struct {
	Name       string
	Subject    string
	TargetDate *time.Time
}

// CreateExam appends a new exam and returns it.
func (l *Library) CreateExam(ctx context.Context, input CreateExamInput) (deck.Exam, error) {
	if input.Name == "" {
		return deck.Exam{}, fmt.Errorf("exam name is required")
	}

	now := l.now().UTC()
	exam := deck.Exam{
		ID:         l.newID(),
		Name:       input.Name,
		Subject:    input.Subject,
		TargetDate: input.TargetDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	l.store.Dispatch(deck.AddExam{Exam: exam})
	return exam, nil
}

// UpdateExam applies a partial update to the exam. An unknown id is a no-op.
func (l *Library) UpdateExam(ctx context.Context, id string, patch deck.ExamPatch) error {
	l.store.Dispatch(deck.UpdateExam{ID: id, Patch: patch, Now: l.now().UTC()})
	return nil
}

// DeleteExam removes the exam, cascades to its questions and tags, and
// reclaims every blob those questions referenced.
func (l *Library) DeleteExam(ctx context.Context, id string) error {
	refs := collectRefs(l.store.State().QuestionsByExam(id))
	l.store.Dispatch(deck.DeleteExam{ID: id})
	return l.reclaim(ctx, refs)
}

// collectRefs gathers every blob reference held by the given questions.
func collectRefs(questions []deck.Question) []string {
	var refs []string
	for _, q := range questions {
		for _, value := range q.ImageValues() {
			if blob.IsRef(value) {
				refs = append(refs, value)
			}
		}
	}
	return refs
}

func (l *Library) reclaim(ctx context.Context, refs []string) error {
	if len(refs) == 0 {
		return nil
	}
	if err := l.blobs.DeleteMany(ctx, refs); err != nil {
		return fmt.Errorf("blobs.DeleteMany() > %w", err)
	}
	return nil
}
