package library

import (
	"context"
	"fmt"

	"github.com/hnakamura/examdeck/internal/blob"
	"github.com/hnakamura/examdeck/internal/deck"
)

// QuestionInput carries the user-supplied fields of a new question. Image and
// Answer.ImageURLs hold inline data URI payloads as uploaded; the library
// migrates them to blob store references before the record is committed.
type QuestionInput struct {
	Kind       deck.QuestionKind
	Image      string
	Text       string
	Difficulty deck.Difficulty
	Status     deck.Status
	Answer     *deck.Answer
}

// AddResult reports what a batch insert committed.
type AddResult struct {
	Created []deck.Question
	// Skipped counts inputs whose image digest matched a question already in
	// the exam. Duplicate uploads are recognized by content, not by filename.
	Skipped int
}

// AddQuestions inserts a batch of questions into the exam, in order. Inputs
// whose image bytes duplicate an existing question of the exam are skipped.
func (l *Library) AddQuestions(ctx context.Context, examID string, inputs []QuestionInput) (*AddResult, error) {
	state := l.store.State()
	if state.ExamByID(examID) == nil {
		return nil, fmt.Errorf("exam %s not found", examID)
	}

	digests := map[string]struct{}{}
	for _, q := range state.QuestionsByExam(examID) {
		if q.Notes != "" {
			digests[q.Notes] = struct{}{}
		}
	}

	var result AddResult
	for _, input := range inputs {
		var digest string
		if input.Image != "" {
			digest = blob.Digest([]byte(input.Image))
			if _, seen := digests[digest]; seen {
				result.Skipped++
				continue
			}
			digests[digest] = struct{}{}
		}

		question, err := l.buildQuestion(ctx, examID, input, digest)
		if err != nil {
			return nil, err
		}
		result.Created = append(result.Created, question)
	}

	if len(result.Created) > 0 {
		l.store.Dispatch(deck.AddQuestions{Questions: result.Created})
	}
	return &result, nil
}

func (l *Library) buildQuestion(ctx context.Context, examID string, input QuestionInput, digest string) (deck.Question, error) {
	now := l.now().UTC()
	question := deck.Question{
		ID:         l.newID(),
		ExamID:     examID,
		Kind:       input.Kind,
		Text:       input.Text,
		Difficulty: input.Difficulty,
		Status:     input.Status,
		Notes:      digest,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if question.Difficulty == "" {
		question.Difficulty = deck.DifficultyNormal
	}
	if question.Status == "" {
		question.Status = deck.StatusNew
	}

	if input.Image != "" {
		ref, err := l.migrateImage(ctx, input.Image)
		if err != nil {
			return deck.Question{}, err
		}
		question.ImageURL = ref
	}
	if input.Answer != nil {
		answer, err := l.migrateAnswer(ctx, *input.Answer)
		if err != nil {
			return deck.Question{}, err
		}
		question.Answer = answer
	}
	return question, nil
}

// migrateImage stores an inline payload and returns its reference. Values
// that already are references pass through unchanged.
func (l *Library) migrateImage(ctx context.Context, value string) (string, error) {
	if blob.IsRef(value) {
		return value, nil
	}
	ref, err := l.blobs.Put(ctx, value)
	if err != nil {
		return "", fmt.Errorf("blobs.Put() > %w", err)
	}
	return ref, nil
}

func (l *Library) migrateAnswer(ctx context.Context, answer deck.Answer) (*deck.Answer, error) {
	urls := make([]string, 0, len(answer.ImageURLs))
	for _, url := range answer.ImageURLs {
		ref, err := l.migrateImage(ctx, url)
		if err != nil {
			return nil, err
		}
		urls = append(urls, ref)
	}
	answer.ImageURLs = urls
	return &answer, nil
}

// UpdateQuestion applies a partial update to one question. An inline image in
// the patch is migrated to the blob store first, and a replaced reference is
// reclaimed.
func (l *Library) UpdateQuestion(ctx context.Context, id string, patch deck.QuestionPatch) error {
	patch, outgoing, err := l.preparePatch(ctx, id, patch)
	if err != nil {
		return err
	}
	l.store.Dispatch(deck.UpdateQuestion{ID: id, Patch: patch, Now: l.now().UTC()})
	return l.reclaim(ctx, outgoing)
}

// UpdateQuestions applies the same partial update to every matching question.
// Image fields are not accepted in bulk updates: reference reclaim is
// per-question and bulk patches are meant for triage metadata.
func (l *Library) UpdateQuestions(ctx context.Context, ids []string, patch deck.QuestionPatch) error {
	if patch.ImageURL != nil || patch.Answer != nil {
		return fmt.Errorf("image fields cannot be updated in bulk")
	}
	l.store.Dispatch(deck.UpdateQuestions{IDs: ids, Patch: patch, Now: l.now().UTC()})
	return nil
}

// preparePatch migrates inline payloads in the patch and returns the blob
// references the patched question will no longer hold.
func (l *Library) preparePatch(ctx context.Context, id string, patch deck.QuestionPatch) (deck.QuestionPatch, []string, error) {
	current := l.store.State().QuestionByID(id)
	if current == nil {
		return patch, nil, nil
	}

	var outgoing []string
	if patch.ImageURL != nil {
		migrated, err := l.migrateImage(ctx, *patch.ImageURL)
		if err != nil {
			return patch, nil, err
		}
		patch.ImageURL = &migrated
		if blob.IsRef(current.ImageURL) && current.ImageURL != migrated {
			outgoing = append(outgoing, current.ImageURL)
		}
	}
	if patch.Answer != nil {
		migrated, err := l.migrateAnswer(ctx, *patch.Answer)
		if err != nil {
			return patch, nil, err
		}
		patch.Answer = migrated

		kept := map[string]struct{}{}
		for _, url := range migrated.ImageURLs {
			kept[url] = struct{}{}
		}
		if current.Answer != nil {
			for _, url := range current.Answer.ImageURLs {
				if _, ok := kept[url]; !ok && blob.IsRef(url) {
					outgoing = append(outgoing, url)
				}
			}
		}
	}
	return patch, outgoing, nil
}

// DeleteQuestion removes one question and reclaims its blobs.
func (l *Library) DeleteQuestion(ctx context.Context, id string) error {
	return l.DeleteQuestions(ctx, []string{id})
}

// DeleteQuestions removes the matching questions and reclaims every blob
// they referenced. Unknown ids are skipped.
func (l *Library) DeleteQuestions(ctx context.Context, ids []string) error {
	state := l.store.State()
	var doomed []deck.Question
	for _, id := range ids {
		if q := state.QuestionByID(id); q != nil {
			doomed = append(doomed, *q)
		}
	}
	refs := collectRefs(doomed)
	l.store.Dispatch(deck.DeleteQuestions{IDs: ids})
	return l.reclaim(ctx, refs)
}

// MarkReviewed records a review pass over the question, stamping
// lastReviewedAt and moving it to the given status.
func (l *Library) MarkReviewed(ctx context.Context, id string, status deck.Status) error {
	now := l.now().UTC()
	l.store.Dispatch(deck.UpdateQuestion{
		ID:    id,
		Patch: deck.QuestionPatch{Status: &status, LastReviewedAt: &now},
		Now:   now,
	})
	return nil
}
