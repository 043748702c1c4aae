package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"exambank/internal/domain"
	"exambank/internal/store"
	"github.com/google/uuid"
)

// ExamStore is an in-process store.Backend. It backs the empty configuration
// and tests.
type ExamStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	seq     int64
	records map[string]storedExam
}

type storedExam struct {
	rec store.Record
	seq int64
}

func NewExamStore() *ExamStore {
	return NewExamStoreWithClock(time.Now)
}

// NewExamStoreWithClock allows deterministic creation times in tests.
func NewExamStoreWithClock(now func() time.Time) *ExamStore {
	return &ExamStore{
		clock:   now,
		records: make(map[string]storedExam),
	}
}

func (s *ExamStore) Insert(_ context.Context, name string, questions []domain.Question) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.seq++
	s.records[id] = storedExam{
		rec: store.Record{
			ID:        id,
			Name:      name,
			Questions: domain.CloneQuestions(questions),
			CreatedAt: store.ServerTime(s.clock()),
			Revision:  1,
		},
		seq: s.seq,
	}
	return id, nil
}

// Put stores a record verbatim, keeping its timestamp. Used to seed legacy shapes.
func (s *ExamStore) Put(rec store.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rec.Questions = domain.CloneQuestions(rec.Questions)
	s.records[rec.ID] = storedExam{rec: rec, seq: s.seq}
}

func (s *ExamStore) FindAll(_ context.Context) ([]store.Record, error) {
	s.mu.RLock()
	entries := make([]storedExam, 0, len(s.records))
	for _, entry := range s.records {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].rec.CreatedAt.Time, entries[j].rec.CreatedAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].seq > entries[j].seq
	})

	records := make([]store.Record, 0, len(entries))
	for _, entry := range entries {
		rec := entry.rec
		rec.Questions = domain.CloneQuestions(rec.Questions)
		records = append(records, rec)
	}
	return records, nil
}

func (s *ExamStore) Find(_ context.Context, id string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.records[id]
	if !ok {
		return store.Record{}, domain.ErrExamNotFound
	}
	rec := entry.rec
	rec.Questions = domain.CloneQuestions(rec.Questions)
	return rec, nil
}

func (s *ExamStore) Patch(_ context.Context, id string, patch domain.ExamPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[id]
	if !ok {
		return domain.ErrExamNotFound
	}
	if patch.ExpectedRevision != nil && *patch.ExpectedRevision != entry.rec.Revision {
		return domain.ErrRevisionConflict
	}
	if patch.Name != nil {
		entry.rec.Name = *patch.Name
	}
	if patch.Questions != nil {
		entry.rec.Questions = domain.CloneQuestions(*patch.Questions)
	}
	entry.rec.Revision++
	s.records[id] = entry
	return nil
}

func (s *ExamStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *ExamStore) Close() error {
	return nil
}
