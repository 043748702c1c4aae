package app

import (
	"context"
	"errors"

	"exambank/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ExamStore is the persistence handle the service reads and writes through.
type ExamStore interface {
	CreateExam(ctx context.Context, name string, questions []domain.Question) (string, error)
	ListExams(ctx context.Context) ([]domain.Exam, error)
	GetExam(ctx context.Context, id string) (domain.Exam, error)
	UpdateExam(ctx context.Context, id string, patch domain.ExamPatch) error
	DeleteExam(ctx context.Context, id string) error
}

// Options tune the service's failure policy.
type Options struct {
	// StrictWrites reports update/delete store failures as failed instead of
	// swallowing them.
	StrictWrites bool
}

const listKey = "list"

// ExamService implements the exam use cases over an ExamStore, substituting
// sample data when the store is empty or unreachable.
type ExamService struct {
	store ExamStore
	opts  Options
	log   logrus.FieldLogger
	sf    singleflight.Group
}

// NewExamService builds the service. A nil store behaves as permanently unavailable.
func NewExamService(store ExamStore, opts Options, log logrus.FieldLogger) *ExamService {
	return &ExamService{
		store: store,
		opts:  opts,
		log:   log.WithField("component", "exams"),
	}
}

// Create persists a new exam and returns its id. It is the only operation
// whose store failure reaches the caller, as a *domain.PersistenceError.
func (s *ExamService) Create(ctx context.Context, name string, questions []domain.Question) (string, error) {
	if s.store == nil {
		return "", &domain.PersistenceError{Op: "create", Err: domain.ErrStoreUnavailable}
	}
	id, err := s.store.CreateExam(ctx, name, questions)
	if err != nil {
		s.log.WithError(err).WithField("name", name).Error("add exam")
		return "", &domain.PersistenceError{Op: "create", Err: err}
	}
	s.sf.Forget(listKey)
	return id, nil
}

// ListAll returns every exam newest first, or the sample exams when the
// store has none or cannot be read.
func (s *ExamService) ListAll(ctx context.Context) ListResult {
	if s.store == nil {
		return fallbackResult(SourceFallbackUnavailable)
	}

	// Overlapping callers share one read. The read runs detached from any
	// single caller's cancellation; each caller stops waiting on its own ctx.
	ch := s.sf.DoChan(listKey, func() (interface{}, error) {
		return s.store.ListExams(context.WithoutCancel(ctx))
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		s.log.WithError(ctx.Err()).Warn("list exams abandoned, using sample data")
		return fallbackResult(SourceFallbackUnavailable)
	}
	if res.Err != nil {
		s.log.WithError(res.Err).Warn("list exams failed, using sample data")
		return fallbackResult(SourceFallbackUnavailable)
	}

	exams := res.Val.([]domain.Exam)
	if len(exams) == 0 {
		s.log.Info("no exams stored, using sample data")
		return fallbackResult(SourceFallbackEmpty)
	}
	out := make([]domain.Exam, len(exams))
	for i, exam := range exams {
		exam.Questions = domain.CloneQuestions(exam.Questions)
		out[i] = exam
	}
	return ListResult{Exams: out, Source: SourceStore}
}

// GetByID returns the exam with id. Reserved sample ids never reach the
// store. Store errors are logged and reported as domain.ErrExamNotFound.
func (s *ExamService) GetByID(ctx context.Context, id string) (domain.Exam, error) {
	if exam, ok := sampleExam(id); ok {
		return exam, nil
	}
	if s.store == nil {
		return domain.Exam{}, domain.ErrExamNotFound
	}
	exam, err := s.store.GetExam(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrExamNotFound) {
			s.log.WithError(err).WithField("id", id).Error("get exam")
		}
		return domain.Exam{}, domain.ErrExamNotFound
	}
	return exam, nil
}

// Update writes the supplied fields of patch. Id and creation time are
// never touched.
func (s *ExamService) Update(ctx context.Context, id string, patch domain.ExamPatch) WriteResult {
	if IsSampleID(id) {
		s.log.WithField("id", id).Info("simulated update of sample exam")
		return WriteResult{Status: WriteSimulated}
	}
	if patch.Empty() {
		return WriteResult{Status: WriteApplied}
	}
	return s.writeResult("update", id, s.apply(func() error {
		return s.store.UpdateExam(ctx, id, patch)
	}))
}

// Delete removes the exam. It is unconditional and irreversible.
func (s *ExamService) Delete(ctx context.Context, id string) WriteResult {
	if IsSampleID(id) {
		s.log.WithField("id", id).Info("simulated delete of sample exam")
		return WriteResult{Status: WriteSimulated}
	}
	return s.writeResult("delete", id, s.apply(func() error {
		return s.store.DeleteExam(ctx, id)
	}))
}

func (s *ExamService) apply(write func() error) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	return write()
}

func (s *ExamService) writeResult(op, id string, err error) WriteResult {
	if err == nil {
		// A read already in flight may predate this write.
		s.sf.Forget(listKey)
		return WriteResult{Status: WriteApplied}
	}
	entry := s.log.WithError(err).WithFields(logrus.Fields{"op": op, "id": id})
	if s.opts.StrictWrites {
		entry.Error("exam write failed")
		return WriteResult{Status: WriteFailed, Err: err}
	}
	entry.Warn("exam write failed, reporting success")
	return WriteResult{Status: WriteSwallowed, Err: err}
}
