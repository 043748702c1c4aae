package app

import (
	"context"
	"strings"

	"exambank/internal/domain"
	"golang.org/x/text/cases"
)

// Search returns the exams from ListAll whose name or any answer contains
// term, ignoring case. Question prompts are not searched and ListAll order
// is kept. Every call scans all exams and questions; there is no index.
// An empty term matches everything, so callers wanting "no filter" should
// call ListAll instead.
func (s *ExamService) Search(ctx context.Context, term string) ListResult {
	all := s.ListAll(ctx)
	matched := make([]domain.Exam, 0, len(all.Exams))
	needle := fold(term)
	for _, exam := range all.Exams {
		if matches(exam, needle) {
			matched = append(matched, exam)
		}
	}
	return ListResult{Exams: matched, Source: all.Source}
}

func matches(exam domain.Exam, needle string) bool {
	if strings.Contains(fold(exam.Name), needle) {
		return true
	}
	for _, q := range exam.Questions {
		if strings.Contains(fold(q.Answer), needle) {
			return true
		}
	}
	return false
}

// FilterQuestions returns the questions of exam whose prompt or answer
// contains term, ignoring case, in their original order. A blank term
// returns every question.
func (s *ExamService) FilterQuestions(exam domain.Exam, term string) []domain.Question {
	if strings.TrimSpace(term) == "" {
		return domain.CloneQuestions(exam.Questions)
	}
	needle := fold(term)
	matched := make([]domain.Question, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		if strings.Contains(fold(q.Question), needle) || strings.Contains(fold(q.Answer), needle) {
			matched = append(matched, q)
		}
	}
	return matched
}

// fold uses a fresh caser per call; cases.Caser is not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}
