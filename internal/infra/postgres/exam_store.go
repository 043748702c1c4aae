package postgres

import (
	"context"
	"encoding/json"
	"time"

	"exambank/internal/domain"
	"exambank/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// ExamStore keeps each exam as a JSONB document in the exams table.
// created_at is assigned by the database; a "createdAt" string inside data
// is honoured as a label when created_at is NULL.
type ExamStore struct {
	pool *pgxpool.Pool
}

func NewExamStore(pool *pgxpool.Pool) *ExamStore {
	return &ExamStore{pool: pool}
}

// Connect dials a pool for dsn.
func Connect(ctx context.Context, dsn string) (*ExamStore, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	return NewExamStore(pool), nil
}

type document struct {
	Name      string            `json:"name"`
	Questions []domain.Question `json:"questions,omitempty"`
	CreatedAt string            `json:"createdAt,omitempty"`
}

func (s *ExamStore) Insert(ctx context.Context, name string, questions []domain.Question) (string, error) {
	if questions == nil {
		questions = []domain.Question{}
	}
	data, err := json.Marshal(map[string]any{"name": name, "questions": questions})
	if err != nil {
		return "", errors.Wrap(err, "marshal exam")
	}
	id := uuid.New()
	if _, err := s.pool.Exec(ctx, `INSERT INTO exams (id, data) VALUES ($1, $2::jsonb)`, id, string(data)); err != nil {
		return "", errors.Wrap(err, "insert exam")
	}
	return id.String(), nil
}

func (s *ExamStore) FindAll(ctx context.Context) ([]store.Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT id::text, data, created_at, revision FROM exams ORDER BY created_at DESC NULLS LAST`)
	if err != nil {
		return nil, errors.Wrap(err, "query exams")
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate exams")
	}
	return records, nil
}

func (s *ExamStore) Find(ctx context.Context, id string) (store.Record, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return store.Record{}, domain.ErrExamNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT id::text, data, created_at, revision FROM exams WHERE id=$1`, uid)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Record{}, domain.ErrExamNotFound
	}
	return rec, err
}

func (s *ExamStore) Patch(ctx context.Context, id string, patch domain.ExamPatch) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrExamNotFound
	}
	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Questions != nil {
		qs := *patch.Questions
		if qs == nil {
			qs = []domain.Question{}
		}
		fields["questions"] = qs
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "marshal patch")
	}

	query := `UPDATE exams SET data = data || $2::jsonb, revision = revision + 1 WHERE id=$1`
	args := []any{uid, string(data)}
	if patch.ExpectedRevision != nil {
		query += ` AND revision=$3`
		args = append(args, *patch.ExpectedRevision)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "update exam")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM exams WHERE id=$1)`, uid).Scan(&exists); err != nil {
		return errors.Wrap(err, "check exam")
	}
	if exists {
		return domain.ErrRevisionConflict
	}
	return domain.ErrExamNotFound
}

func (s *ExamStore) Remove(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM exams WHERE id=$1`, uid); err != nil {
		return errors.Wrap(err, "delete exam")
	}
	return nil
}

func (s *ExamStore) Close() error {
	s.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (store.Record, error) {
	var (
		id        string
		raw       []byte
		createdAt *time.Time
		revision  int64
	)
	if err := row.Scan(&id, &raw, &createdAt, &revision); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Record{}, err
		}
		return store.Record{}, errors.Wrap(err, "scan exam")
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Malformed documents degrade to an empty exam rather than failing the read.
		doc = document{}
	}
	rec := store.Record{
		ID:        id,
		Name:      doc.Name,
		Questions: doc.Questions,
		Revision:  revision,
	}
	if createdAt != nil {
		rec.CreatedAt = store.ServerTime(*createdAt)
	} else {
		rec.CreatedAt = store.Timestamp{Label: doc.CreatedAt}
	}
	return rec, nil
}
