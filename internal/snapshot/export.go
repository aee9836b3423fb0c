package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hnakamura/examdeck/internal/blob"
	"github.com/hnakamura/examdeck/internal/deck"
)

// ExportOptions selects the export scope and optional question filters.
// A non-empty ExamID switches to the per-exam document shape.
type ExportOptions struct {
	ExamID     string
	Difficulty deck.Difficulty
	Status     deck.Status
	TagID      string
}

// ExportResult reports what an export produced.
type ExportResult struct {
	Exams         int
	Questions     int
	Tags          int
	MissingImages int
}

// Exporter walks record store state and produces portable documents with
// every blob reference resolved to its inline payload. The live state is
// never mutated; questions are deep-copied before rewriting.
type Exporter struct {
	blobs blob.Store
	now   func() time.Time
}

// NewExporter creates a new Exporter.
func NewExporter(blobs blob.Store) *Exporter {
	return &Exporter{blobs: blobs, now: time.Now}
}

// Export produces a snapshot document for the given state. Blob references
// that no longer resolve are dropped from the exported copy and counted as
// missing rather than failing the export.
func (e *Exporter) Export(ctx context.Context, state deck.State, opts ExportOptions) (*Document, *ExportResult, error) {
	var result ExportResult

	if opts.ExamID != "" {
		exam := state.ExamByID(opts.ExamID)
		if exam == nil {
			return nil, nil, fmt.Errorf("exam %s not found", opts.ExamID)
		}

		questions, err := e.inlineQuestions(ctx, filterQuestions(state.QuestionsByExam(opts.ExamID), opts), &result)
		if err != nil {
			return nil, nil, err
		}
		tags := state.TagsForExam(opts.ExamID)
		if tags == nil {
			tags = []deck.Tag{}
		}

		examCopy := *exam
		result.Exams = 1
		result.Questions = len(questions)
		result.Tags = len(tags)
		return &Document{
			Version:   Version,
			CreatedAt: e.now().UTC(),
			Exam:      &examCopy,
			Questions: &questions,
			Tags:      &tags,
		}, &result, nil
	}

	questions, err := e.inlineQuestions(ctx, filterQuestions(state.Questions, opts), &result)
	if err != nil {
		return nil, nil, err
	}

	exams := make([]deck.Exam, len(state.Exams))
	copy(exams, state.Exams)
	tags := make([]deck.Tag, len(state.Tags))
	copy(tags, state.Tags)

	result.Exams = len(exams)
	result.Questions = len(questions)
	result.Tags = len(tags)
	return &Document{
		Version:   Version,
		CreatedAt: e.now().UTC(),
		Data: &Data{
			Exams:     &exams,
			Questions: &questions,
			Tags:      &tags,
		},
	}, &result, nil
}

func filterQuestions(questions []deck.Question, opts ExportOptions) []deck.Question {
	var out []deck.Question
	for _, q := range questions {
		if opts.Difficulty != "" && q.Difficulty != opts.Difficulty {
			continue
		}
		if opts.Status != "" && q.Status != opts.Status {
			continue
		}
		if opts.TagID != "" && !q.HasTag(opts.TagID) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// inlineQuestions deep-copies the questions and replaces every blob reference
// with the stored payload.
func (e *Exporter) inlineQuestions(ctx context.Context, questions []deck.Question, result *ExportResult) ([]deck.Question, error) {
	out := make([]deck.Question, len(questions))
	copy(out, questions)

	for i := range out {
		if blob.IsRef(out[i].ImageURL) {
			payload, err := e.resolve(ctx, out[i].ImageURL, result)
			if err != nil {
				return nil, err
			}
			out[i].ImageURL = payload
		}

		if out[i].Answer == nil {
			continue
		}
		answer := *out[i].Answer
		urls := make([]string, 0, len(answer.ImageURLs))
		for _, url := range answer.ImageURLs {
			if !blob.IsRef(url) {
				urls = append(urls, url)
				continue
			}
			payload, err := e.resolve(ctx, url, result)
			if err != nil {
				return nil, err
			}
			if payload != "" {
				urls = append(urls, payload)
			}
		}
		answer.ImageURLs = urls
		out[i].Answer = &answer
	}
	return out, nil
}

func (e *Exporter) resolve(ctx context.Context, ref string, result *ExportResult) (string, error) {
	payload, err := e.blobs.Get(ctx, ref)
	if errors.Is(err, blob.ErrNotFound) {
		result.MissingImages++
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("blobs.Get(%s) > %w", ref, err)
	}
	return payload, nil
}
