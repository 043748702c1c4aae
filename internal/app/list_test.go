package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"exambank/internal/app"
	"exambank/internal/domain"
)

func TestListAllAfterCreateSeesTheWrite(t *testing.T) {
	gated := newGatedStore(domain.NewExam("seed", "seed", "30/04/2025", nil))
	defer gated.open()
	svc := app.NewExamService(gated, app.Options{}, nullLogger())

	go svc.ListAll(context.Background())
	<-gated.entered

	id, err := svc.Create(context.Background(), "mine", []domain.Question{{Question: "q", Answer: "a"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done := make(chan app.ListResult, 1)
	go func() { done <- svc.ListAll(context.Background()) }()
	select {
	case result := <-done:
		if result.Source != app.SourceStore {
			t.Fatalf("expected store source, got %s", result.Source)
		}
		if len(result.Exams) != 2 || result.Exams[0].ID != id {
			t.Fatalf("expected the new exam first, got %+v", result.Exams)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("ListAll after create joined a read started before the write")
	}
}

func TestListAllCallerCancellationDoesNotLeak(t *testing.T) {
	gated := newGatedStore(domain.NewExam("seed", "seed", "30/04/2025", nil))
	defer gated.open()
	svc := app.NewExamService(gated, app.Options{}, nullLogger())

	ctxA, cancelA := context.WithCancel(context.Background())
	resultA := make(chan app.ListResult, 1)
	go func() { resultA <- svc.ListAll(ctxA) }()
	<-gated.entered

	resultB := make(chan app.ListResult, 1)
	go func() { resultB <- svc.ListAll(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case got := <-resultA:
		if got.Source != app.SourceFallbackUnavailable {
			t.Fatalf("cancelled caller: expected fallback-unavailable, got %s", got.Source)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancelled caller kept waiting on the shared read")
	}

	gated.open()
	select {
	case got := <-resultB:
		if got.Source != app.SourceStore || len(got.Exams) != 1 || got.Exams[0].ID != "seed" {
			t.Fatalf("live caller: expected the stored exam, got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("live caller never got a result")
	}
}

func TestListAllResultsDoNotShareQuestions(t *testing.T) {
	shared := &fixedStore{
		failingStore: &failingStore{err: errors.New("unused")},
		exams: []domain.Exam{
			domain.NewExam("e1", "one", "01/05/2025", []domain.Question{{Question: "q", Answer: "a"}}),
		},
	}
	svc := app.NewExamService(shared, app.Options{}, nullLogger())

	first := svc.ListAll(context.Background())
	first.Exams[0].Questions[0].Answer = "tampered"

	second := svc.ListAll(context.Background())
	if got := second.Exams[0].Questions[0].Answer; got != "a" {
		t.Fatalf("expected untouched answer, got %q", got)
	}
	if got := shared.exams[0].Questions[0].Answer; got != "a" {
		t.Fatalf("store state was modified: %q", got)
	}
}

// gatedStore holds its first ListExams call until open is called.
type gatedStore struct {
	mu      sync.Mutex
	exams   []domain.Exam
	calls   int
	seq     int
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(exams ...domain.Exam) *gatedStore {
	return &gatedStore{
		exams:   exams,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) open() { s.once.Do(func() { close(s.release) }) }

func (s *gatedStore) CreateExam(_ context.Context, name string, questions []domain.Question) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("%s-%d", name, s.seq)
	s.exams = append([]domain.Exam{domain.NewExam(id, name, "01/05/2025", questions)}, s.exams...)
	return id, nil
}

func (s *gatedStore) ListExams(ctx context.Context) ([]domain.Exam, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	snapshot := append([]domain.Exam(nil), s.exams...)
	s.mu.Unlock()

	if first {
		close(s.entered)
		<-s.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *gatedStore) GetExam(context.Context, string) (domain.Exam, error) {
	return domain.Exam{}, domain.ErrExamNotFound
}

func (s *gatedStore) UpdateExam(context.Context, string, domain.ExamPatch) error { return nil }

func (s *gatedStore) DeleteExam(context.Context, string) error { return nil }

// fixedStore hands out its own slice on every list, like a careless cache.
type fixedStore struct {
	*failingStore
	exams []domain.Exam
}

func (s *fixedStore) ListExams(context.Context) ([]domain.Exam, error) { return s.exams, nil }
