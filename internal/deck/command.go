package deck

import "time"

// Command is a discrete, named state transition. Each command is applied by
// Apply as a pure function over the current state; unknown record ids are
// treated as no-ops rather than errors.
type Command interface {
	isCommand()
}

// ExamPatch carries a partial exam update. Nil fields are left unchanged.
type ExamPatch struct {
	Name       *string
	Subject    *string
	TargetDate *time.Time
}

// QuestionPatch carries a partial question update. Nil fields are left
// unchanged; a non-nil TagIDs or Answer replaces the previous value.
type QuestionPatch struct {
	Kind           *QuestionKind
	ImageURL       *string
	Text           *string
	TagIDs         *[]string
	Difficulty     *Difficulty
	Status         *Status
	Notes          *string
	Answer         *Answer
	LastReviewedAt *time.Time
}

// TagPatch carries a partial tag update. Nil fields are left unchanged.
type TagPatch struct {
	Name  *string
	Color *string
}

// AddExam appends a new exam. The caller generates id and timestamps.
type AddExam struct {
	Exam Exam
}

// UpdateExam replaces the matching exam's patched fields and bumps UpdatedAt.
type UpdateExam struct {
	ID    string
	Patch ExamPatch
	Now   time.Time
}

// DeleteExam removes the exam and cascades to its questions and tags.
type DeleteExam struct {
	ID string
}

// AddQuestions appends a batch of questions in the order given.
type AddQuestions struct {
	Questions []Question
}

// UpdateQuestion merges patched fields into the matching question.
type UpdateQuestion struct {
	ID    string
	Patch QuestionPatch
	Now   time.Time
}

// UpdateQuestions applies the same patch to every matching question,
// bumping each UpdatedAt independently.
type UpdateQuestions struct {
	IDs   []string
	Patch QuestionPatch
	Now   time.Time
}

// DeleteQuestion removes one question.
type DeleteQuestion struct {
	ID string
}

// DeleteQuestions removes every matching question.
type DeleteQuestions struct {
	IDs []string
}

// AddTag appends a new tag.
type AddTag struct {
	Tag Tag
}

// UpdateTag replaces the matching tag's patched fields.
type UpdateTag struct {
	ID    string
	Patch TagPatch
	Now   time.Time
}

// DeleteTag removes the tag and strips its id from every question's tag set.
type DeleteTag struct {
	ID string
}

// AddTagToQuestions adds the tag id to every matching question's tag set.
// Questions that already carry the tag are untouched.
type AddTagToQuestions struct {
	IDs   []string
	TagID string
	Now   time.Time
}

// RemoveTagFromQuestions removes the tag id from every matching question's
// tag set. Questions without the tag are untouched.
type RemoveTagFromQuestions struct {
	IDs   []string
	TagID string
	Now   time.Time
}

// ReplaceData substitutes all three collections.
type ReplaceData struct {
	Data State
}

// MergeData unions incoming records into the state by id. Incoming fields win
// per present field; local-only records are never deleted.
type MergeData struct {
	Data State
}

func (AddExam) isCommand()                {}
func (UpdateExam) isCommand()             {}
func (DeleteExam) isCommand()             {}
func (AddQuestions) isCommand()           {}
func (UpdateQuestion) isCommand()         {}
func (UpdateQuestions) isCommand()        {}
func (DeleteQuestion) isCommand()         {}
func (DeleteQuestions) isCommand()        {}
func (AddTag) isCommand()                 {}
func (UpdateTag) isCommand()              {}
func (DeleteTag) isCommand()              {}
func (AddTagToQuestions) isCommand()      {}
func (RemoveTagFromQuestions) isCommand() {}
func (ReplaceData) isCommand()            {}
func (MergeData) isCommand()              {}
