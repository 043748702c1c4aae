package app_test

import (
	"context"
	"errors"
	"testing"

	"exambank/internal/app"
	"exambank/internal/domain"
)

func TestSearchFallbackByAnswer(t *testing.T) {
	service, _ := newTestService(app.Options{})

	result := service.Search(context.Background(), "กรุงเทพ")
	if len(result.Exams) != 1 || result.Exams[0].ID != app.SampleExamID2 {
		t.Fatalf("expected only the second sample, got %+v", result.Exams)
	}
	if !result.Fallback() {
		t.Fatalf("expected fallback source, got %s", result.Source)
	}
}

func TestSearchMatchesNameCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(app.Options{})
	_, _ = service.Create(ctx, "Biology Basics", []domain.Question{{Question: "Cell unit?", Answer: "cell"}})
	_, _ = service.Create(ctx, "Chemistry", []domain.Question{{Question: "H2O is?", Answer: "Water"}})

	result := service.Search(ctx, "BIOLOGY")
	if len(result.Exams) != 1 || result.Exams[0].Name != "Biology Basics" {
		t.Fatalf("expected Biology Basics, got %+v", result.Exams)
	}

	result = service.Search(ctx, "water")
	if len(result.Exams) != 1 || result.Exams[0].Name != "Chemistry" {
		t.Fatalf("expected Chemistry by answer, got %+v", result.Exams)
	}
}

func TestSearchIgnoresQuestionText(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(app.Options{})
	_, _ = service.Create(ctx, "Physics", []domain.Question{{Question: "What is gravity?", Answer: "a force"}})

	if result := service.Search(ctx, "gravity"); len(result.Exams) != 0 {
		t.Fatalf("prompt text should not match, got %+v", result.Exams)
	}
}

func TestSearchKeepsListOrderAndSubset(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(app.Options{})
	_, _ = service.Create(ctx, "alpha quiz", []domain.Question{{Question: "q", Answer: "x"}})
	_, _ = service.Create(ctx, "beta", []domain.Question{{Question: "q", Answer: "QUIZ answer"}})
	_, _ = service.Create(ctx, "gamma", []domain.Question{{Question: "quiz?", Answer: "no"}})
	_, _ = service.Create(ctx, "delta quiz", []domain.Question{{Question: "q", Answer: "y"}})

	all := service.ListAll(ctx)
	result := service.Search(ctx, "quiz")

	var want []string
	for _, exam := range all.Exams {
		if exam.Name != "gamma" {
			want = append(want, exam.ID)
		}
	}
	if len(result.Exams) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(result.Exams))
	}
	for i, id := range want {
		if result.Exams[i].ID != id {
			t.Fatalf("match %d: expected %s, got %s", i, id, result.Exams[i].ID)
		}
	}
}

func TestSearchEmptyTermMatchesEverything(t *testing.T) {
	service, _ := newTestService(app.Options{})
	if result := service.Search(context.Background(), ""); len(result.Exams) != 2 {
		t.Fatalf("expected every exam, got %d", len(result.Exams))
	}
}

func TestSearchOnUnavailableStore(t *testing.T) {
	service := app.NewExamService(&failingStore{err: errors.New("down")}, app.Options{}, nullLogger())

	result := service.Search(context.Background(), "77")
	if result.Source != app.SourceFallbackUnavailable {
		t.Fatalf("expected fallback-unavailable, got %s", result.Source)
	}
	if len(result.Exams) != 1 || result.Exams[0].ID != app.SampleExamID2 {
		t.Fatalf("expected second sample, got %+v", result.Exams)
	}
}

func TestFilterQuestionsMatchesPromptOrAnswer(t *testing.T) {
	service, _ := newTestService(app.Options{})
	exam := domain.NewExam("e1", "Mixed", "01/05/2025", []domain.Question{
		{Question: "What is Gravity?", Answer: "a force"},
		{Question: "Boiling point of water", Answer: "100 C"},
		{Question: "Unit of force", Answer: "newton"},
		{Question: "Capital of France", Answer: "Paris"},
	})

	got := service.FilterQuestions(exam, "GRAVITY")
	if len(got) != 1 || got[0].Question != "What is Gravity?" {
		t.Fatalf("expected prompt match, got %+v", got)
	}

	got = service.FilterQuestions(exam, "force")
	if len(got) != 2 || got[0].Answer != "a force" || got[1].Question != "Unit of force" {
		t.Fatalf("expected answer and prompt matches in order, got %+v", got)
	}

	if got = service.FilterQuestions(exam, "chemistry"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestFilterQuestionsBlankTermKeepsAll(t *testing.T) {
	service, _ := newTestService(app.Options{})
	exam, err := service.GetByID(context.Background(), app.SampleExamID1)
	if err != nil {
		t.Fatalf("get sample: %v", err)
	}

	got := service.FilterQuestions(exam, "   ")
	if len(got) != len(exam.Questions) {
		t.Fatalf("expected all %d questions, got %d", len(exam.Questions), len(got))
	}
	for i := range got {
		if got[i] != exam.Questions[i] {
			t.Fatalf("question %d out of order: %+v", i, got[i])
		}
	}
}
