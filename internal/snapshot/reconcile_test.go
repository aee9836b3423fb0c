package snapshot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnakamura/examdeck/internal/blob"
	"github.com/hnakamura/examdeck/internal/deck"
)

// failingPutStore wraps a MemoryStore and fails every Put.
type failingPutStore struct {
	*blob.MemoryStore
}

func (s *failingPutStore) Put(ctx context.Context, payload string) (string, error) {
	return "", fmt.Errorf("disk full")
}

func testClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func seededState(t *testing.T, blobs blob.Store) deck.State {
	t.Helper()
	ctx := context.Background()

	questionImage, err := blobs.Put(ctx, "data:image/png;base64,UVVFU1RJT04=")
	require.NoError(t, err)
	answerImage, err := blobs.Put(ctx, "data:image/png;base64,QU5TV0VS")
	require.NoError(t, err)

	now := testClock()
	return deck.State{
		Exams: []deck.Exam{
			{ID: "exam-1", Name: "Midterm", Subject: "Biology", CreatedAt: now, UpdatedAt: now},
			{ID: "exam-2", Name: "Final", CreatedAt: now, UpdatedAt: now},
		},
		Questions: []deck.Question{
			{ID: "q-1", ExamID: "exam-1", Kind: deck.KindImage, ImageURL: questionImage,
				TagIDs:     []string{"tag-1"},
				Difficulty: deck.DifficultyHard, Status: deck.StatusSeen,
				Answer:    &deck.Answer{Text: "an answer", ImageURLs: []string{answerImage}},
				CreatedAt: now, UpdatedAt: now},
			{ID: "q-2", ExamID: "exam-2", Kind: deck.KindText, Text: "Define osmosis",
				Difficulty: deck.DifficultyNormal, Status: deck.StatusNew,
				CreatedAt: now, UpdatedAt: now},
		},
		Tags: []deck.Tag{
			{ID: "tag-1", ExamID: "exam-1", Name: "cells", Color: "#0f0"},
		},
	}
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("whole dataset inlines blob references", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		state := seededState(t, blobs)

		doc, result, err := NewExporter(blobs).Export(ctx, state, ExportOptions{})
		require.NoError(t, err)

		require.NotNil(t, doc.Data)
		assert.Equal(t, Version, doc.Version)
		assert.Equal(t, 2, result.Exams)
		assert.Equal(t, 2, result.Questions)
		assert.Equal(t, 1, result.Tags)
		assert.Zero(t, result.MissingImages)

		questions := *doc.Data.Questions
		assert.Equal(t, "data:image/png;base64,UVVFU1RJT04=", questions[0].ImageURL)
		require.NotNil(t, questions[0].Answer)
		assert.Equal(t, []string{"data:image/png;base64,QU5TV0VS"}, questions[0].Answer.ImageURLs)

		// The live state still holds references.
		assert.True(t, blob.IsRef(state.Questions[0].ImageURL))
		assert.True(t, blob.IsRef(state.Questions[0].Answer.ImageURLs[0]))
	})

	t.Run("per-exam scope produces the per-exam shape", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		state := seededState(t, blobs)

		doc, result, err := NewExporter(blobs).Export(ctx, state, ExportOptions{ExamID: "exam-1"})
		require.NoError(t, err)

		require.True(t, doc.PerExam())
		assert.Equal(t, "exam-1", doc.Exam.ID)
		require.Len(t, *doc.Questions, 1)
		assert.Equal(t, "q-1", (*doc.Questions)[0].ID)
		assert.Equal(t, 1, result.Tags)
	})

	t.Run("unknown exam scope fails", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		state := seededState(t, blobs)

		_, _, err := NewExporter(blobs).Export(ctx, state, ExportOptions{ExamID: "nope"})
		assert.Error(t, err)
	})

	t.Run("filters select matching questions only", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		state := seededState(t, blobs)

		doc, result, err := NewExporter(blobs).Export(ctx, state, ExportOptions{Difficulty: deck.DifficultyHard})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Questions)
		assert.Equal(t, "q-1", (*doc.Data.Questions)[0].ID)

		_, result, err = NewExporter(blobs).Export(ctx, state, ExportOptions{Status: deck.StatusMastered})
		require.NoError(t, err)
		assert.Zero(t, result.Questions)
	})

	t.Run("dangling reference is dropped and counted", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		state := seededState(t, blobs)
		require.NoError(t, blobs.DeleteMany(ctx, []string{state.Questions[0].ImageURL}))

		doc, result, err := NewExporter(blobs).Export(ctx, state, ExportOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.MissingImages)
		assert.Empty(t, (*doc.Data.Questions)[0].ImageURL)
	})
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()

	inlineDoc := func() *Document {
		exams := []deck.Exam{{ID: "exam-1", Name: "Imported", CreatedAt: testClock(), UpdatedAt: testClock()}}
		questions := []deck.Question{
			{ID: "q-1", ExamID: "exam-1", Kind: deck.KindImage,
				ImageURL:   "data:image/png;base64,UVVFU1RJT04=",
				Difficulty: deck.DifficultyNormal, Status: deck.StatusNew,
				Answer:    &deck.Answer{ImageURLs: []string{"data:image/png;base64,QU5TV0VS"}},
				CreatedAt: testClock(), UpdatedAt: testClock()},
		}
		tags := []deck.Tag{{ID: "tag-1", ExamID: "exam-1", Name: "cells"}}
		return &Document{
			Version:   Version,
			CreatedAt: testClock(),
			Data:      &Data{Exams: &exams, Questions: &questions, Tags: &tags},
		}
	}

	t.Run("inline payloads are extracted before commit", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		store := deck.NewStore(deck.State{})

		result, err := NewImporter(blobs, store).Import(ctx, inlineDoc(), ModeMerge)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Exams)
		assert.Equal(t, 1, result.Questions)
		assert.Equal(t, 1, result.Tags)
		assert.Zero(t, result.FailedImages)

		q := store.State().QuestionByID("q-1")
		require.NotNil(t, q)
		require.True(t, blob.IsRef(q.ImageURL), "inline payload must be rewritten to a reference")
		payload, err := blobs.Get(ctx, q.ImageURL)
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,UVVFU1RJT04=", payload)

		require.NotNil(t, q.Answer)
		require.Len(t, q.Answer.ImageURLs, 1)
		assert.True(t, blob.IsRef(q.Answer.ImageURLs[0]))
	})

	t.Run("merge keeps local records and wins per field", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		store := deck.NewStore(deck.State{
			Exams: []deck.Exam{
				{ID: "exam-1", Name: "Local name", Subject: "Biology"},
				{ID: "exam-local", Name: "Local only"},
			},
		})

		_, err := NewImporter(blobs, store).Import(ctx, inlineDoc(), ModeMerge)
		require.NoError(t, err)

		state := store.State()
		assert.Len(t, state.Exams, 2)
		merged := state.ExamByID("exam-1")
		assert.Equal(t, "Imported", merged.Name)
		assert.Equal(t, "Biology", merged.Subject, "absent incoming field keeps local value")
		assert.NotNil(t, state.ExamByID("exam-local"))
	})

	t.Run("replace substitutes state and reclaims outgoing blobs", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		existing := seededState(t, blobs)
		store := deck.NewStore(existing)
		outgoingRef := existing.Questions[0].ImageURL

		_, err := NewImporter(blobs, store).Import(ctx, inlineDoc(), ModeReplace)
		require.NoError(t, err)

		state := store.State()
		assert.Len(t, state.Exams, 1)
		assert.Len(t, state.Questions, 1)
		assert.Nil(t, state.ExamByID("exam-2"))

		_, err = blobs.Get(ctx, outgoingRef)
		assert.ErrorIs(t, err, blob.ErrNotFound, "blobs of the replaced state are reclaimed")
	})

	t.Run("per-exam document cannot be imported in replace mode", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		store := deck.NewStore(deck.State{})
		exam := deck.Exam{ID: "exam-1", Name: "Midterm"}
		questions := []deck.Question{}
		doc := &Document{Version: Version, Exam: &exam, Questions: &questions}

		_, err := NewImporter(blobs, store).Import(ctx, doc, ModeReplace)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("invalid document is rejected before any mutation", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		store := deck.NewStore(deck.State{})
		doc := &Document{Version: Version}

		_, err := NewImporter(blobs, store).Import(ctx, doc, ModeMerge)
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.Empty(t, store.State().Exams)
		assert.Zero(t, blobs.Len())
	})

	t.Run("failed blob write drops the image and completes the import", func(t *testing.T) {
		blobs := &failingPutStore{MemoryStore: blob.NewMemoryStore()}
		store := deck.NewStore(deck.State{})

		result, err := NewImporter(blobs, store).Import(ctx, inlineDoc(), ModeMerge)
		require.NoError(t, err)
		assert.Equal(t, 2, result.FailedImages)
		assert.Equal(t, 1, result.Questions)

		q := store.State().QuestionByID("q-1")
		require.NotNil(t, q)
		assert.Empty(t, q.ImageURL)
		assert.Empty(t, q.Answer.ImageURLs)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore()
	original := seededState(t, blobs)
	store := deck.NewStore(original)

	doc, _, err := NewExporter(blobs).Export(ctx, store.State(), ExportOptions{})
	require.NoError(t, err)

	encoded, err := doc.Encode(FormatJSON)
	require.NoError(t, err)
	parsed, err := Parse(encoded)
	require.NoError(t, err)

	_, err = NewImporter(blobs, store).Import(ctx, parsed, ModeReplace)
	require.NoError(t, err)

	restored := store.State()
	require.Len(t, restored.Exams, len(original.Exams))
	require.Len(t, restored.Questions, len(original.Questions))
	require.Len(t, restored.Tags, len(original.Tags))
	assert.Equal(t, original.Exams, restored.Exams)
	assert.Equal(t, original.Tags, restored.Tags)

	// Blob reference strings are regenerated on import; the payload bytes
	// behind them must be identical.
	restoredQ := restored.QuestionByID("q-1")
	require.NotNil(t, restoredQ)
	assert.NotEqual(t, original.Questions[0].ImageURL, restoredQ.ImageURL)
	payload, err := blobs.Get(ctx, restoredQ.ImageURL)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,UVVFU1RJT04=", payload)

	answerPayload, err := blobs.Get(ctx, restoredQ.Answer.ImageURLs[0])
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QU5TV0VS", answerPayload)

	// Non-image fields survive unchanged.
	assert.Equal(t, original.Questions[0].Text, restoredQ.Text)
	assert.Equal(t, original.Questions[0].TagIDs, restoredQ.TagIDs)
	assert.Equal(t, original.Questions[0].Difficulty, restoredQ.Difficulty)
	assert.Equal(t, original.Questions[0].Status, restoredQ.Status)
}
