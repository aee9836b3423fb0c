// Package deck provides the canonical in-memory state of exams, questions and
// tags, and the pure state transitions that mutate it.
package deck

import (
	"fmt"
	"strings"
	"time"
)

// QuestionKind defines how a question presents its prompt.
type QuestionKind string

const (
	KindImage QuestionKind = "image"
	KindText  QuestionKind = "text"
)

// Difficulty defines the triage buckets used in study mode.
type Difficulty string

const (
	DifficultyNormal      Difficulty = "normal"
	DifficultyHard        Difficulty = "hard"
	DifficultyNightBefore Difficulty = "night-before"
)

// Status defines the review lifecycle states of a question.
type Status string

const (
	StatusNew        Status = "new"
	StatusSeen       Status = "seen"
	StatusInProgress Status = "in-progress"
	StatusMastered   Status = "mastered"
)

var validDifficulties = map[Difficulty]struct{}{
	DifficultyNormal:      {},
	DifficultyHard:        {},
	DifficultyNightBefore: {},
}

var validStatuses = map[Status]struct{}{
	StatusNew:        {},
	StatusSeen:       {},
	StatusInProgress: {},
	StatusMastered:   {},
}

// ParseDifficulty parses a user-supplied difficulty value.
func ParseDifficulty(raw string) (Difficulty, error) {
	value := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := validDifficulties[value]; !ok {
		return "", fmt.Errorf("invalid difficulty: %s", raw)
	}
	return value, nil
}

// ParseStatus parses a user-supplied status value.
func ParseStatus(raw string) (Status, error) {
	value := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := validStatuses[value]; !ok {
		return "", fmt.Errorf("invalid status: %s", raw)
	}
	return value, nil
}

// Exam is a named collection of questions representing one study unit.
type Exam struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Subject    string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	TargetDate *time.Time `json:"targetDate,omitempty" yaml:"targetDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// Answer holds the optional text and images shown on demand during study.
type Answer struct {
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty" yaml:"imageUrls,omitempty"`
}

// Question is a single flashcard-like item with triage metadata.
// ImageURL and Answer.ImageURLs hold either blob store references or inline
// data URIs; Notes transiently holds the content digest used for dedup.
type Question struct {
	ID             string       `json:"id" yaml:"id"`
	ExamID         string       `json:"examId" yaml:"examId"`
	Kind           QuestionKind `json:"kind" yaml:"kind"`
	ImageURL       string       `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Text           string       `json:"text,omitempty" yaml:"text,omitempty"`
	TagIDs         []string     `json:"tagIds,omitempty" yaml:"tagIds,omitempty"`
	Difficulty     Difficulty   `json:"difficulty" yaml:"difficulty"`
	Status         Status       `json:"status" yaml:"status"`
	Notes          string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	Answer         *Answer      `json:"answer,omitempty" yaml:"answer,omitempty"`
	CreatedAt      time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt" yaml:"updatedAt"`
	LastReviewedAt *time.Time   `json:"lastReviewedAt,omitempty" yaml:"lastReviewedAt,omitempty"`
}

// ImageValues returns every image-valued string on the question, whether a
// blob reference or an inline payload. The question's own image comes first,
// answer images follow in order.
func (q Question) ImageValues() []string {
	var values []string
	if q.ImageURL != "" {
		values = append(values, q.ImageURL)
	}
	if q.Answer != nil {
		for _, url := range q.Answer.ImageURLs {
			if url != "" {
				values = append(values, url)
			}
		}
	}
	return values
}

// HasTag reports whether the question carries the given tag id.
func (q Question) HasTag(tagID string) bool {
	for _, id := range q.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// Tag is a user-defined label scoped to one exam. An empty ExamID marks a
// global tag imported from a document that predates exam-scoped tags.
type Tag struct {
	ID     string `json:"id" yaml:"id"`
	ExamID string `json:"examId,omitempty" yaml:"examId,omitempty"`
	Name   string `json:"name" yaml:"name"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
}

// State is the full record store contents.
type State struct {
	Exams     []Exam     `json:"exams" yaml:"exams"`
	Questions []Question `json:"questions" yaml:"questions"`
	Tags      []Tag      `json:"tags" yaml:"tags"`
}

// ExamByID returns the exam with the given id, or nil.
func (s State) ExamByID(id string) *Exam {
	for i := range s.Exams {
		if s.Exams[i].ID == id {
			return &s.Exams[i]
		}
	}
	return nil
}

// QuestionByID returns the question with the given id, or nil.
func (s State) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// TagByID returns the tag with the given id, or nil.
func (s State) TagByID(id string) *Tag {
	for i := range s.Tags {
		if s.Tags[i].ID == id {
			return &s.Tags[i]
		}
	}
	return nil
}

// QuestionsByExam returns all questions belonging to the exam, in store order.
func (s State) QuestionsByExam(examID string) []Question {
	var questions []Question
	for _, q := range s.Questions {
		if q.ExamID == examID {
			questions = append(questions, q)
		}
	}
	return questions
}

// TagsForExam returns tags scoped to the exam plus global (unscoped) tags.
func (s State) TagsForExam(examID string) []Tag {
	var tags []Tag
	for _, tag := range s.Tags {
		if tag.ExamID == examID || tag.ExamID == "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
