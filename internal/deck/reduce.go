package deck

import "time"

// Apply computes the next state for a command. The given state is never
// mutated; collections are copied when they change and shared otherwise.
// Commands referencing unknown ids leave the state untouched.
func Apply(state State, command Command) State {
	switch cmd := command.(type) {
	case AddExam:
		next := state
		next.Exams = append(copyExams(state.Exams), cmd.Exam)
		return next

	case UpdateExam:
		return applyUpdateExam(state, cmd)

	case DeleteExam:
		return applyDeleteExam(state, cmd)

	case AddQuestions:
		if len(cmd.Questions) == 0 {
			return state
		}
		next := state
		next.Questions = append(copyQuestions(state.Questions), cmd.Questions...)
		return next

	case UpdateQuestion:
		return applyUpdateQuestions(state, []string{cmd.ID}, cmd.Patch, cmd.Now)

	case UpdateQuestions:
		return applyUpdateQuestions(state, cmd.IDs, cmd.Patch, cmd.Now)

	case DeleteQuestion:
		return applyDeleteQuestions(state, []string{cmd.ID})

	case DeleteQuestions:
		return applyDeleteQuestions(state, cmd.IDs)

	case AddTag:
		next := state
		next.Tags = append(copyTags(state.Tags), cmd.Tag)
		return next

	case UpdateTag:
		return applyUpdateTag(state, cmd)

	case DeleteTag:
		return applyDeleteTag(state, cmd)

	case AddTagToQuestions:
		return applyTagSetChange(state, cmd.IDs, cmd.TagID, cmd.Now, true)

	case RemoveTagFromQuestions:
		return applyTagSetChange(state, cmd.IDs, cmd.TagID, cmd.Now, false)

	case ReplaceData:
		return cmd.Data

	case MergeData:
		return applyMergeData(state, cmd.Data)
	}
	return state
}

func applyUpdateExam(state State, cmd UpdateExam) State {
	index := indexOfExam(state.Exams, cmd.ID)
	if index < 0 {
		return state
	}

	exams := copyExams(state.Exams)
	exam := exams[index]
	if cmd.Patch.Name != nil {
		exam.Name = *cmd.Patch.Name
	}
	if cmd.Patch.Subject != nil {
		exam.Subject = *cmd.Patch.Subject
	}
	if cmd.Patch.TargetDate != nil {
		date := *cmd.Patch.TargetDate
		exam.TargetDate = &date
	}
	exam.UpdatedAt = cmd.Now
	exams[index] = exam

	next := state
	next.Exams = exams
	return next
}

func applyDeleteExam(state State, cmd DeleteExam) State {
	if indexOfExam(state.Exams, cmd.ID) < 0 {
		return state
	}

	next := state
	exams := make([]Exam, 0, len(state.Exams)-1)
	for _, exam := range state.Exams {
		if exam.ID != cmd.ID {
			exams = append(exams, exam)
		}
	}
	next.Exams = exams

	questions := make([]Question, 0, len(state.Questions))
	for _, q := range state.Questions {
		if q.ExamID != cmd.ID {
			questions = append(questions, q)
		}
	}
	next.Questions = questions

	tags := make([]Tag, 0, len(state.Tags))
	for _, tag := range state.Tags {
		if tag.ExamID != cmd.ID {
			tags = append(tags, tag)
		}
	}
	next.Tags = tags
	return next
}

func applyUpdateQuestions(state State, ids []string, patch QuestionPatch, now time.Time) State {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	changed := false
	questions := copyQuestions(state.Questions)
	for i := range questions {
		if _, ok := idSet[questions[i].ID]; !ok {
			continue
		}
		questions[i] = patchQuestion(questions[i], patch)
		questions[i].UpdatedAt = now
		changed = true
	}
	if !changed {
		return state
	}

	next := state
	next.Questions = questions
	return next
}

func patchQuestion(q Question, patch QuestionPatch) Question {
	if patch.Kind != nil {
		q.Kind = *patch.Kind
	}
	if patch.ImageURL != nil {
		q.ImageURL = *patch.ImageURL
	}
	if patch.Text != nil {
		q.Text = *patch.Text
	}
	if patch.TagIDs != nil {
		q.TagIDs = copyStrings(*patch.TagIDs)
	}
	if patch.Difficulty != nil {
		q.Difficulty = *patch.Difficulty
	}
	if patch.Status != nil {
		q.Status = *patch.Status
	}
	if patch.Notes != nil {
		q.Notes = *patch.Notes
	}
	if patch.Answer != nil {
		answer := *patch.Answer
		answer.ImageURLs = copyStrings(answer.ImageURLs)
		q.Answer = &answer
	}
	if patch.LastReviewedAt != nil {
		reviewed := *patch.LastReviewedAt
		q.LastReviewedAt = &reviewed
	}
	return q
}

func applyDeleteQuestions(state State, ids []string) State {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	questions := make([]Question, 0, len(state.Questions))
	for _, q := range state.Questions {
		if _, ok := idSet[q.ID]; !ok {
			questions = append(questions, q)
		}
	}
	if len(questions) == len(state.Questions) {
		return state
	}

	next := state
	next.Questions = questions
	return next
}

func applyUpdateTag(state State, cmd UpdateTag) State {
	index := indexOfTag(state.Tags, cmd.ID)
	if index < 0 {
		return state
	}

	tags := copyTags(state.Tags)
	tag := tags[index]
	if cmd.Patch.Name != nil {
		tag.Name = *cmd.Patch.Name
	}
	if cmd.Patch.Color != nil {
		tag.Color = *cmd.Patch.Color
	}
	tags[index] = tag

	next := state
	next.Tags = tags
	return next
}

func applyDeleteTag(state State, cmd DeleteTag) State {
	if indexOfTag(state.Tags, cmd.ID) < 0 {
		return state
	}

	next := state
	tags := make([]Tag, 0, len(state.Tags)-1)
	for _, tag := range state.Tags {
		if tag.ID != cmd.ID {
			tags = append(tags, tag)
		}
	}
	next.Tags = tags

	questions := copyQuestions(state.Questions)
	for i := range questions {
		if !questions[i].HasTag(cmd.ID) {
			continue
		}
		tagIDs := make([]string, 0, len(questions[i].TagIDs)-1)
		for _, id := range questions[i].TagIDs {
			if id != cmd.ID {
				tagIDs = append(tagIDs, id)
			}
		}
		questions[i].TagIDs = tagIDs
	}
	next.Questions = questions
	return next
}

// applyTagSetChange adds or removes a tag id across many questions. The tag
// set is a set: re-adding a present tag or removing an absent one is a no-op
// for that question, and UpdatedAt bumps only when the set actually changes.
func applyTagSetChange(state State, ids []string, tagID string, now time.Time, add bool) State {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	changed := false
	questions := copyQuestions(state.Questions)
	for i := range questions {
		if _, ok := idSet[questions[i].ID]; !ok {
			continue
		}
		has := questions[i].HasTag(tagID)
		if add && !has {
			questions[i].TagIDs = append(copyStrings(questions[i].TagIDs), tagID)
		} else if !add && has {
			tagIDs := make([]string, 0, len(questions[i].TagIDs)-1)
			for _, id := range questions[i].TagIDs {
				if id != tagID {
					tagIDs = append(tagIDs, id)
				}
			}
			questions[i].TagIDs = tagIDs
		} else {
			continue
		}
		questions[i].UpdatedAt = now
		changed = true
	}
	if !changed {
		return state
	}

	next := state
	next.Questions = questions
	return next
}

func applyMergeData(state State, incoming State) State {
	next := state

	exams := copyExams(state.Exams)
	for _, in := range incoming.Exams {
		if index := indexOfExam(exams, in.ID); index >= 0 {
			exams[index] = mergeExam(exams[index], in)
		} else {
			exams = append(exams, in)
		}
	}
	next.Exams = exams

	questions := copyQuestions(state.Questions)
	for _, in := range incoming.Questions {
		index := -1
		for i := range questions {
			if questions[i].ID == in.ID {
				index = i
				break
			}
		}
		if index >= 0 {
			questions[index] = mergeQuestion(questions[index], in)
		} else {
			questions = append(questions, in)
		}
	}
	next.Questions = questions

	tags := copyTags(state.Tags)
	for _, in := range incoming.Tags {
		if index := indexOfTag(tags, in.ID); index >= 0 {
			tags[index] = mergeTag(tags[index], in)
		} else {
			tags = append(tags, in)
		}
	}
	next.Tags = tags
	return next
}

// mergeExam overlays the incoming exam's present fields over the local one.
// A field is present when it is non-zero; absent incoming fields keep the
// local value.
func mergeExam(local, incoming Exam) Exam {
	merged := local
	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Subject != "" {
		merged.Subject = incoming.Subject
	}
	if incoming.TargetDate != nil {
		merged.TargetDate = incoming.TargetDate
	}
	if !incoming.CreatedAt.IsZero() {
		merged.CreatedAt = incoming.CreatedAt
	}
	if !incoming.UpdatedAt.IsZero() {
		merged.UpdatedAt = incoming.UpdatedAt
	}
	return merged
}

func mergeQuestion(local, incoming Question) Question {
	merged := local
	if incoming.ExamID != "" {
		merged.ExamID = incoming.ExamID
	}
	if incoming.Kind != "" {
		merged.Kind = incoming.Kind
	}
	if incoming.ImageURL != "" {
		merged.ImageURL = incoming.ImageURL
	}
	if incoming.Text != "" {
		merged.Text = incoming.Text
	}
	if incoming.TagIDs != nil {
		merged.TagIDs = copyStrings(incoming.TagIDs)
	}
	if incoming.Difficulty != "" {
		merged.Difficulty = incoming.Difficulty
	}
	if incoming.Status != "" {
		merged.Status = incoming.Status
	}
	if incoming.Notes != "" {
		merged.Notes = incoming.Notes
	}
	if incoming.Answer != nil {
		answer := *incoming.Answer
		answer.ImageURLs = copyStrings(answer.ImageURLs)
		merged.Answer = &answer
	}
	if !incoming.CreatedAt.IsZero() {
		merged.CreatedAt = incoming.CreatedAt
	}
	if !incoming.UpdatedAt.IsZero() {
		merged.UpdatedAt = incoming.UpdatedAt
	}
	if incoming.LastReviewedAt != nil {
		merged.LastReviewedAt = incoming.LastReviewedAt
	}
	return merged
}

func mergeTag(local, incoming Tag) Tag {
	merged := local
	if incoming.ExamID != "" {
		merged.ExamID = incoming.ExamID
	}
	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Color != "" {
		merged.Color = incoming.Color
	}
	return merged
}

func indexOfExam(exams []Exam, id string) int {
	for i := range exams {
		if exams[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfTag(tags []Tag, id string) int {
	for i := range tags {
		if tags[i].ID == id {
			return i
		}
	}
	return -1
}

func copyExams(exams []Exam) []Exam {
	out := make([]Exam, len(exams))
	copy(out, exams)
	return out
}

func copyQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

func copyTags(tags []Tag) []Tag {
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
