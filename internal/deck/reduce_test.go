package deck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	bumpTime = time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
)

func fixtureState() State {
	return State{
		Exams: []Exam{
			{ID: "exam-1", Name: "Midterm", Subject: "Biology", CreatedAt: baseTime, UpdatedAt: baseTime},
			{ID: "exam-2", Name: "Final", CreatedAt: baseTime, UpdatedAt: baseTime},
		},
		Questions: []Question{
			{ID: "q-1", ExamID: "exam-1", Kind: KindImage, ImageURL: "ref://blob-1",
				Difficulty: DifficultyNormal, Status: StatusNew, CreatedAt: baseTime, UpdatedAt: baseTime},
			{ID: "q-2", ExamID: "exam-1", Kind: KindText, Text: "What is mitosis?",
				TagIDs:     []string{"tag-1"},
				Difficulty: DifficultyHard, Status: StatusSeen, CreatedAt: baseTime, UpdatedAt: baseTime},
			{ID: "q-3", ExamID: "exam-2", Kind: KindText, Text: "Define osmosis",
				Difficulty: DifficultyNormal, Status: StatusNew, CreatedAt: baseTime, UpdatedAt: baseTime},
		},
		Tags: []Tag{
			{ID: "tag-1", ExamID: "exam-1", Name: "cells", Color: "#00ff00"},
			{ID: "tag-2", ExamID: "exam-2", Name: "transport", Color: "#0000ff"},
		},
	}
}

func TestApply_Exams(t *testing.T) {
	newName := "Midterm v2"

	tests := []struct {
		name    string
		command Command
		verify  func(t *testing.T, got State)
	}{
		{
			name:    "add exam appends",
			command: AddExam{Exam: Exam{ID: "exam-3", Name: "Quiz", CreatedAt: bumpTime, UpdatedAt: bumpTime}},
			verify: func(t *testing.T, got State) {
				require.Len(t, got.Exams, 3)
				assert.Equal(t, "exam-3", got.Exams[2].ID)
			},
		},
		{
			name:    "update exam replaces patched fields and bumps UpdatedAt",
			command: UpdateExam{ID: "exam-1", Patch: ExamPatch{Name: &newName}, Now: bumpTime},
			verify: func(t *testing.T, got State) {
				exam := got.ExamByID("exam-1")
				require.NotNil(t, exam)
				assert.Equal(t, newName, exam.Name)
				assert.Equal(t, "Biology", exam.Subject)
				assert.Equal(t, bumpTime, exam.UpdatedAt)
			},
		},
		{
			name:    "update unknown exam is a no-op",
			command: UpdateExam{ID: "nope", Patch: ExamPatch{Name: &newName}, Now: bumpTime},
			verify: func(t *testing.T, got State) {
				assert.Equal(t, fixtureState(), got)
			},
		},
		{
			name:    "delete exam cascades to questions and tags",
			command: DeleteExam{ID: "exam-1"},
			verify: func(t *testing.T, got State) {
				assert.Nil(t, got.ExamByID("exam-1"))
				require.Len(t, got.Questions, 1)
				assert.Equal(t, "q-3", got.Questions[0].ID)
				require.Len(t, got.Tags, 1)
				assert.Equal(t, "tag-2", got.Tags[0].ID)
			},
		},
		{
			name:    "delete unknown exam is a no-op",
			command: DeleteExam{ID: "nope"},
			verify: func(t *testing.T, got State) {
				assert.Equal(t, fixtureState(), got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := fixtureState()
			got := Apply(state, tt.command)
			tt.verify(t, got)
			assert.Equal(t, fixtureState(), state, "input state must not be mutated")
		})
	}
}

func TestApply_Questions(t *testing.T) {
	hardDifficulty := DifficultyNightBefore
	masteredStatus := StatusMastered

	tests := []struct {
		name    string
		command Command
		verify  func(t *testing.T, got State)
	}{
		{
			name: "add questions preserves batch order",
			command: AddQuestions{Questions: []Question{
				{ID: "q-4", ExamID: "exam-1", Kind: KindText, Text: "a", CreatedAt: bumpTime, UpdatedAt: bumpTime},
				{ID: "q-5", ExamID: "exam-1", Kind: KindText, Text: "b", CreatedAt: bumpTime, UpdatedAt: bumpTime},
			}},
			verify: func(t *testing.T, got State) {
				require.Len(t, got.Questions, 5)
				assert.Equal(t, "q-4", got.Questions[3].ID)
				assert.Equal(t, "q-5", got.Questions[4].ID)
			},
		},
		{
			name:    "update question merges patched fields",
			command: UpdateQuestion{ID: "q-1", Patch: QuestionPatch{Difficulty: &hardDifficulty}, Now: bumpTime},
			verify: func(t *testing.T, got State) {
				q := got.QuestionByID("q-1")
				require.NotNil(t, q)
				assert.Equal(t, DifficultyNightBefore, q.Difficulty)
				assert.Equal(t, "ref://blob-1", q.ImageURL)
				assert.Equal(t, bumpTime, q.UpdatedAt)
			},
		},
		{
			name:    "update questions bumps each matching question",
			command: UpdateQuestions{IDs: []string{"q-1", "q-3"}, Patch: QuestionPatch{Status: &masteredStatus}, Now: bumpTime},
			verify: func(t *testing.T, got State) {
				assert.Equal(t, StatusMastered, got.QuestionByID("q-1").Status)
				assert.Equal(t, StatusMastered, got.QuestionByID("q-3").Status)
				assert.Equal(t, StatusSeen, got.QuestionByID("q-2").Status)
				assert.Equal(t, baseTime, got.QuestionByID("q-2").UpdatedAt)
			},
		},
		{
			name:    "delete questions removes matches only",
			command: DeleteQuestions{IDs: []string{"q-1", "q-2", "unknown"}},
			verify: func(t *testing.T, got State) {
				require.Len(t, got.Questions, 1)
				assert.Equal(t, "q-3", got.Questions[0].ID)
			},
		},
		{
			name:    "update unknown question is a no-op",
			command: UpdateQuestion{ID: "nope", Patch: QuestionPatch{Status: &masteredStatus}, Now: bumpTime},
			verify: func(t *testing.T, got State) {
				assert.Equal(t, fixtureState(), got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := fixtureState()
			got := Apply(state, tt.command)
			tt.verify(t, got)
			assert.Equal(t, fixtureState(), state, "input state must not be mutated")
		})
	}
}

func TestApply_Tags(t *testing.T) {
	t.Run("delete tag strips the id from every question", func(t *testing.T) {
		state := fixtureState()
		got := Apply(state, DeleteTag{ID: "tag-1"})

		assert.Nil(t, got.TagByID("tag-1"))
		assert.Empty(t, got.QuestionByID("q-2").TagIDs)
		// Stripping tag ids does not delete the questions themselves.
		assert.Len(t, got.Questions, 3)
		assert.Equal(t, fixtureState(), state)
	})

	t.Run("update tag patches name and keeps color", func(t *testing.T) {
		newName := "cell biology"
		state := fixtureState()
		got := Apply(state, UpdateTag{ID: "tag-1", Patch: TagPatch{Name: &newName}, Now: bumpTime})

		tag := got.TagByID("tag-1")
		require.NotNil(t, tag)
		assert.Equal(t, newName, tag.Name)
		assert.Equal(t, "#00ff00", tag.Color)
	})
}

func TestApply_TagSetIdempotence(t *testing.T) {
	state := fixtureState()

	once := Apply(state, AddTagToQuestions{IDs: []string{"q-1", "q-2"}, TagID: "tag-1", Now: bumpTime})
	twice := Apply(once, AddTagToQuestions{IDs: []string{"q-1", "q-2"}, TagID: "tag-1", Now: bumpTime.Add(time.Hour)})

	assert.Equal(t, once.QuestionByID("q-1").TagIDs, twice.QuestionByID("q-1").TagIDs)
	assert.Equal(t, once.QuestionByID("q-2").TagIDs, twice.QuestionByID("q-2").TagIDs)

	// q-2 already carried tag-1, so the first add must not bump it either.
	assert.Equal(t, baseTime, once.QuestionByID("q-2").UpdatedAt)
	assert.Equal(t, bumpTime, once.QuestionByID("q-1").UpdatedAt)

	// The second, fully redundant add changes nothing at all.
	assert.Equal(t, once, twice)

	removed := Apply(twice, RemoveTagFromQuestions{IDs: []string{"q-1", "q-2"}, TagID: "tag-1", Now: bumpTime})
	removedAgain := Apply(removed, RemoveTagFromQuestions{IDs: []string{"q-1", "q-2"}, TagID: "tag-1", Now: bumpTime.Add(time.Hour)})
	assert.Equal(t, removed, removedAgain)
	assert.Empty(t, removed.QuestionByID("q-1").TagIDs)
}

func TestApply_ReplaceData(t *testing.T) {
	replacement := State{
		Exams:     []Exam{{ID: "exam-9", Name: "Retake", CreatedAt: bumpTime, UpdatedAt: bumpTime}},
		Questions: []Question{{ID: "q-9", ExamID: "exam-9", Kind: KindText, Text: "x", CreatedAt: bumpTime, UpdatedAt: bumpTime}},
		Tags:      nil,
	}

	state := fixtureState()
	got := Apply(state, ReplaceData{Data: replacement})

	assert.Equal(t, replacement, got)
	assert.Equal(t, fixtureState(), state)
}

func TestApply_MergeData(t *testing.T) {
	t.Run("merge is additive and never deletes local records", func(t *testing.T) {
		state := fixtureState()
		incoming := State{
			Exams:     []Exam{{ID: "exam-3", Name: "Imported", CreatedAt: bumpTime, UpdatedAt: bumpTime}},
			Questions: []Question{{ID: "q-9", ExamID: "exam-3", Kind: KindText, Text: "new", CreatedAt: bumpTime, UpdatedAt: bumpTime}},
		}

		got := Apply(state, MergeData{Data: incoming})

		assert.Len(t, got.Exams, 3)
		assert.Len(t, got.Questions, 4)
		assert.Len(t, got.Tags, 2)
	})

	t.Run("incoming fields win on id collision", func(t *testing.T) {
		state := fixtureState()
		incoming := State{
			Exams: []Exam{{ID: "exam-1", Name: "Midterm (updated)"}},
		}

		got := Apply(state, MergeData{Data: incoming})

		exam := got.ExamByID("exam-1")
		require.NotNil(t, exam)
		assert.Equal(t, "Midterm (updated)", exam.Name)
		// Absent incoming fields keep local values.
		assert.Equal(t, "Biology", exam.Subject)
		assert.Equal(t, baseTime, exam.CreatedAt)
	})

	t.Run("tag shallow merge keeps local color when incoming omits it", func(t *testing.T) {
		state := State{
			Tags: []Tag{{ID: "tag-1", ExamID: "exam-1", Name: "A", Color: "#000"}},
		}
		incoming := State{
			Tags: []Tag{{ID: "tag-1", Name: "A2"}},
		}

		got := Apply(state, MergeData{Data: incoming})

		require.Len(t, got.Tags, 1)
		assert.Equal(t, "A2", got.Tags[0].Name)
		assert.Equal(t, "#000", got.Tags[0].Color)
		assert.Equal(t, "exam-1", got.Tags[0].ExamID)
	})
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		raw     string
		want    Difficulty
		wantErr bool
	}{
		{raw: "normal", want: DifficultyNormal},
		{raw: " Hard ", want: DifficultyHard},
		{raw: "night-before", want: DifficultyNightBefore},
		{raw: "impossible", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDifficulty(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("In-Progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}
