package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hnakamura/examdeck/internal/blob"
	"github.com/hnakamura/examdeck/internal/deck"
)

// ImportMode selects how imported records are committed.
type ImportMode string

const (
	// ModeMerge unions imported records into existing state by id.
	ModeMerge ImportMode = "merge"
	// ModeReplace discards existing state and substitutes the import.
	ModeReplace ImportMode = "replace"
)

// ParseImportMode parses a user-supplied mode name.
func ParseImportMode(raw string) (ImportMode, error) {
	switch ImportMode(raw) {
	case ModeMerge:
		return ModeMerge, nil
	case ModeReplace:
		return ModeReplace, nil
	}
	return "", fmt.Errorf("invalid import mode: %s (expected merge or replace)", raw)
}

// ImportResult reports what an import committed.
type ImportResult struct {
	Exams     int
	Questions int
	Tags      int
	// FailedImages counts inline payloads that could not be written to the
	// blob store; the affected image fields were dropped and the import
	// completed regardless.
	FailedImages int
}

// Importer reconciles parsed snapshot documents into the record store.
// All inline payloads are extracted to the blob store before any record is
// committed, so live questions never reference a blob that is not stored yet.
type Importer struct {
	blobs blob.Store
	store *deck.Store
}

// NewImporter creates a new Importer.
func NewImporter(blobs blob.Store, store *deck.Store) *Importer {
	return &Importer{blobs: blobs, store: store}
}

// Import validates the document and commits its records. Replace mode first
// reclaims every blob referenced by the outgoing state; merge mode deletes
// nothing. Per-exam documents are always merged: a replace request with a
// per-exam document is rejected rather than silently wiping unrelated exams.
func (imp *Importer) Import(ctx context.Context, doc *Document, mode ImportMode) (*ImportResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.PerExam() && mode == ModeReplace {
		return nil, fmt.Errorf("%w: per-exam documents can only be merged", ErrInvalidDocument)
	}

	var result ImportResult
	incoming := doc.records()

	questions := make([]deck.Question, len(incoming.Questions))
	copy(questions, incoming.Questions)
	for i := range questions {
		questions[i] = imp.extractQuestion(ctx, questions[i], &result)
	}
	incoming.Questions = questions

	result.Exams = len(incoming.Exams)
	result.Questions = len(incoming.Questions)
	result.Tags = len(incoming.Tags)

	switch mode {
	case ModeReplace:
		var outgoing []string
		for _, q := range imp.store.State().Questions {
			for _, value := range q.ImageValues() {
				if blob.IsRef(value) {
					outgoing = append(outgoing, value)
				}
			}
		}
		if len(outgoing) > 0 {
			if err := imp.blobs.DeleteMany(ctx, outgoing); err != nil {
				slog.Warn("failed to reclaim blobs of replaced state", "error", err)
			}
		}
		imp.store.Dispatch(deck.ReplaceData{Data: incoming})
	default:
		imp.store.Dispatch(deck.MergeData{Data: incoming})
	}

	return &result, nil
}

// extractQuestion rewrites every inline payload on the question to a fresh
// blob store reference. This happens on every import, merge included, so
// inline payloads never leak into the live record store. A failed write
// drops the field and counts it; the import continues.
func (imp *Importer) extractQuestion(ctx context.Context, q deck.Question, result *ImportResult) deck.Question {
	if blob.IsInline(q.ImageURL) {
		ref, err := imp.blobs.Put(ctx, q.ImageURL)
		if err != nil {
			slog.Warn("failed to store question image, dropping it", "question", q.ID, "error", err)
			result.FailedImages++
			q.ImageURL = ""
		} else {
			q.ImageURL = ref
		}
	}

	if q.Answer == nil {
		return q
	}
	answer := *q.Answer
	urls := make([]string, 0, len(answer.ImageURLs))
	for _, url := range answer.ImageURLs {
		if !blob.IsInline(url) {
			urls = append(urls, url)
			continue
		}
		ref, err := imp.blobs.Put(ctx, url)
		if err != nil {
			slog.Warn("failed to store answer image, dropping it", "question", q.ID, "error", err)
			result.FailedImages++
			continue
		}
		urls = append(urls, ref)
	}
	answer.ImageURLs = urls
	q.Answer = &answer
	return q
}
