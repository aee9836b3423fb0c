// Package testutil provides shared test helpers for creating config files and
// record fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hnakamura/examdeck/internal/deck"
)

// FixtureTime is the creation timestamp every fixture record carries.
var FixtureTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// SetupTestConfig creates a config file whose storage directory points at
// tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := fmt.Sprintf(`storage:
  directory: %s
  database_file: examdeck.db
log:
  level: warn
`, tmpDir)

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// ExamOption configures optional fields when creating an exam fixture.
type ExamOption func(*deck.Exam)

// WithSubject sets the exam's subject.
func WithSubject(subject string) ExamOption {
	return func(exam *deck.Exam) {
		exam.Subject = subject
	}
}

// WithTargetDate sets the exam's target date.
func WithTargetDate(date time.Time) ExamOption {
	return func(exam *deck.Exam) {
		exam.TargetDate = &date
	}
}

// NewExam creates an exam fixture with deterministic timestamps.
func NewExam(id, name string, opts ...ExamOption) deck.Exam {
	exam := deck.Exam{
		ID:        id,
		Name:      name,
		CreatedAt: FixtureTime,
		UpdatedAt: FixtureTime,
	}
	for _, opt := range opts {
		opt(&exam)
	}
	return exam
}

// QuestionOption configures optional fields when creating a question fixture.
type QuestionOption func(*deck.Question)

// WithImage sets the question kind to image and its image value.
func WithImage(value string) QuestionOption {
	return func(q *deck.Question) {
		q.Kind = deck.KindImage
		q.ImageURL = value
	}
}

// WithTags sets the question's tag ids.
func WithTags(tagIDs ...string) QuestionOption {
	return func(q *deck.Question) {
		q.TagIDs = tagIDs
	}
}

// WithDifficulty sets the question's difficulty.
func WithDifficulty(difficulty deck.Difficulty) QuestionOption {
	return func(q *deck.Question) {
		q.Difficulty = difficulty
	}
}

// WithStatus sets the question's status.
func WithStatus(status deck.Status) QuestionOption {
	return func(q *deck.Question) {
		q.Status = status
	}
}

// WithAnswer sets the question's answer.
func WithAnswer(answer deck.Answer) QuestionOption {
	return func(q *deck.Question) {
		q.Answer = &answer
	}
}

// NewQuestion creates a text question fixture with defaults. Options switch
// the kind or fill optional fields.
func NewQuestion(id, examID string, opts ...QuestionOption) deck.Question {
	question := deck.Question{
		ID:         id,
		ExamID:     examID,
		Kind:       deck.KindText,
		Text:       "question " + id,
		Difficulty: deck.DifficultyNormal,
		Status:     deck.StatusNew,
		CreatedAt:  FixtureTime,
		UpdatedAt:  FixtureTime,
	}
	for _, opt := range opts {
		opt(&question)
	}
	return question
}

// NewTag creates a tag fixture scoped to the exam.
func NewTag(id, examID, name string) deck.Tag {
	return deck.Tag{
		ID:     id,
		ExamID: examID,
		Name:   name,
	}
}
