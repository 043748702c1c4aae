package domain

// Question is a single prompt with its correct answer.
type Question struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// Exam is a named, ordered collection of questions as presented to callers.
type Exam struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	QuestionCount int        `json:"questionCount"`
	CreatedAt     string     `json:"createdAt"`
	Questions     []Question `json:"questions"`
	Revision      int64      `json:"revision,omitempty"`
}

// NewExam builds an Exam keeping QuestionCount in step with Questions.
func NewExam(id, name, createdAt string, questions []Question) Exam {
	if questions == nil {
		questions = []Question{}
	}
	return Exam{
		ID:            id,
		Name:          name,
		QuestionCount: len(questions),
		CreatedAt:     createdAt,
		Questions:     questions,
	}
}

// ExamPatch carries the mutable fields of an update. Nil fields are left untouched.
type ExamPatch struct {
	Name      *string
	Questions *[]Question
	// ExpectedRevision enables an optimistic check; nil means last write wins.
	ExpectedRevision *int64
}

// Empty reports whether the patch supplies no field to write.
func (p ExamPatch) Empty() bool {
	return p.Name == nil && p.Questions == nil
}

// CloneQuestions copies a question list so callers cannot alias stored state.
func CloneQuestions(questions []Question) []Question {
	if questions == nil {
		return nil
	}
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}
