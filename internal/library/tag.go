package library

import (
	"context"
	"fmt"

	"github.com/hnakamura/examdeck/internal/deck"
)

// CreateTag appends a new tag scoped to the exam and returns it.
func (l *Library) CreateTag(ctx context.Context, examID, name, color string) (deck.Tag, error) {
	if name == "" {
		return deck.Tag{}, fmt.Errorf("tag name is required")
	}
	if l.store.State().ExamByID(examID) == nil {
		return deck.Tag{}, fmt.Errorf("exam %s not found", examID)
	}

	tag := deck.Tag{
		ID:     l.newID(),
		ExamID: examID,
		Name:   name,
		Color:  color,
	}
	l.store.Dispatch(deck.AddTag{Tag: tag})
	return tag, nil
}

// UpdateTag applies a partial update to the tag. An unknown id is a no-op.
func (l *Library) UpdateTag(ctx context.Context, id string, patch deck.TagPatch) error {
	l.store.Dispatch(deck.UpdateTag{ID: id, Patch: patch, Now: l.now().UTC()})
	return nil
}

// DeleteTag removes the tag and strips its id from every question's tag set.
func (l *Library) DeleteTag(ctx context.Context, id string) error {
	l.store.Dispatch(deck.DeleteTag{ID: id})
	return nil
}

// AddTagToQuestions adds the tag to every matching question's tag set. A tag
// can only be applied to questions of its own exam; global (unscoped) tags
// apply anywhere. Re-adding an already-present tag is a no-op per question.
func (l *Library) AddTagToQuestions(ctx context.Context, ids []string, tagID string) error {
	state := l.store.State()
	tag := state.TagByID(tagID)
	if tag == nil {
		return fmt.Errorf("tag %s not found", tagID)
	}
	if tag.ExamID != "" {
		for _, id := range ids {
			q := state.QuestionByID(id)
			if q != nil && q.ExamID != tag.ExamID {
				return fmt.Errorf("tag %s is scoped to exam %s and cannot be applied to question %s", tagID, tag.ExamID, id)
			}
		}
	}

	l.store.Dispatch(deck.AddTagToQuestions{IDs: ids, TagID: tagID, Now: l.now().UTC()})
	return nil
}

// RemoveTagFromQuestions removes the tag from every matching question's tag
// set. Questions without the tag are untouched.
func (l *Library) RemoveTagFromQuestions(ctx context.Context, ids []string, tagID string) error {
	l.store.Dispatch(deck.RemoveTagFromQuestions{IDs: ids, TagID: tagID, Now: l.now().UTC()})
	return nil
}
