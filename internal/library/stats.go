package library

import (
	"context"
	"fmt"

	"github.com/hnakamura/examdeck/internal/blob"
	"github.com/hnakamura/examdeck/internal/deck"
)

// ExamStats summarizes one exam's questions.
type ExamStats struct {
	Exam      deck.Exam
	Questions int
	Tags      int
}

// Stats summarizes the whole dataset for the info command.
type Stats struct {
	Exams        int
	Questions    int
	Tags         int
	ByStatus     map[deck.Status]int
	ByDifficulty map[deck.Difficulty]int
	PerExam      []ExamStats
}

// Stats computes dataset counts from the current state.
func (l *Library) Stats(ctx context.Context) *Stats {
	state := l.store.State()

	stats := &Stats{
		Exams:        len(state.Exams),
		Questions:    len(state.Questions),
		Tags:         len(state.Tags),
		ByStatus:     map[deck.Status]int{},
		ByDifficulty: map[deck.Difficulty]int{},
	}
	for _, q := range state.Questions {
		stats.ByStatus[q.Status]++
		stats.ByDifficulty[q.Difficulty]++
	}
	for _, exam := range state.Exams {
		questions := state.QuestionsByExam(exam.ID)
		tags := 0
		for _, tag := range state.Tags {
			if tag.ExamID == exam.ID {
				tags++
			}
		}
		stats.PerExam = append(stats.PerExam, ExamStats{
			Exam:      exam,
			Questions: len(questions),
			Tags:      tags,
		})
	}
	return stats
}

// keyLister is satisfied by blob stores that can enumerate their entries.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// SweepOrphans finds blob entries no live record references and, when purge
// is set, reclaims them. Orphans only appear after an aborted import left
// extracted payloads behind; normal mutations reclaim their own references.
func (l *Library) SweepOrphans(ctx context.Context, purge bool) ([]string, error) {
	lister, ok := l.blobs.(keyLister)
	if !ok {
		return nil, fmt.Errorf("blob store does not support enumeration")
	}
	stored, err := lister.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("Keys() > %w", err)
	}

	live := map[string]struct{}{}
	for _, ref := range collectRefs(l.store.State().Questions) {
		live[ref] = struct{}{}
	}

	var orphans []string
	for _, ref := range stored {
		if _, ok := live[ref]; !ok {
			orphans = append(orphans, ref)
		}
	}
	if purge && len(orphans) > 0 {
		if err := l.blobs.DeleteMany(ctx, orphans); err != nil {
			return orphans, fmt.Errorf("blobs.DeleteMany() > %w", err)
		}
	}
	return orphans, nil
}

var _ keyLister = (*blob.SQLStore)(nil)
var _ keyLister = (*blob.MemoryStore)(nil)
