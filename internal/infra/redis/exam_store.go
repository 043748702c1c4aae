package redis

import (
	"context"
	"encoding/json"
	"time"

	"exambank/internal/domain"
	"exambank/internal/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ExamStore keeps one JSON document per exam and a sorted-set index by
// creation time:
//
//	SET  {prefix}exam:{id}   {"name":…,"questions":[…],"createdAt":<µs>,"revision":n}
//	ZADD {prefix}exams       <µs> {id}
//
// Creation times come from the Redis server clock.
type ExamStore struct {
	client *redis.Client
	prefix string
}

func NewExamStore(client *redis.Client, prefix string) *ExamStore {
	return &ExamStore{client: client, prefix: prefix}
}

type document struct {
	Name      string            `json:"name"`
	Questions []domain.Question `json:"questions,omitempty"`
	// CreatedAt is a number of microseconds for server timestamps or a
	// plain string label.
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	Revision  int64           `json:"revision"`
}

func (s *ExamStore) Insert(ctx context.Context, name string, questions []domain.Question) (string, error) {
	now, err := s.client.Time(ctx).Result()
	if err != nil {
		return "", errors.Wrap(err, "redis time")
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	micros := now.UnixMicro()
	createdAt, _ := json.Marshal(micros)
	data, err := json.Marshal(document{
		Name:      name,
		Questions: questions,
		CreatedAt: createdAt,
		Revision:  1,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal exam")
	}

	id := uuid.NewString()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.examKey(id), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(micros), Member: id})
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "store exam")
	}
	return id, nil
}

func (s *ExamStore) FindAll(ctx context.Context) ([]store.Record, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read exam index")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.examKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read exams")
	}

	records := make([]store.Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document
			continue
		}
		records = append(records, decodeRecord(ids[i], []byte(raw)))
	}
	return records, nil
}

func (s *ExamStore) Find(ctx context.Context, id string) (store.Record, error) {
	raw, err := s.client.Get(ctx, s.examKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.Record{}, domain.ErrExamNotFound
	}
	if err != nil {
		return store.Record{}, errors.Wrap(err, "read exam")
	}
	return decodeRecord(id, raw), nil
}

func (s *ExamStore) Patch(ctx context.Context, id string, patch domain.ExamPatch) error {
	key := s.examKey(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrExamNotFound
		}
		if err != nil {
			return errors.Wrap(err, "read exam")
		}

		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errors.Wrap(err, "decode exam")
		}
		if patch.ExpectedRevision != nil && *patch.ExpectedRevision != doc.Revision {
			return domain.ErrRevisionConflict
		}
		if patch.Name != nil {
			doc.Name = *patch.Name
		}
		if patch.Questions != nil {
			doc.Questions = *patch.Questions
		}
		doc.Revision++

		data, err := json.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "marshal exam")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrRevisionConflict
	}
	return err
}

func (s *ExamStore) Remove(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.examKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "delete exam")
	}
	return nil
}

func (s *ExamStore) Close() error {
	return s.client.Close()
}

func (s *ExamStore) examKey(id string) string {
	return s.prefix + "exam:" + id
}

func (s *ExamStore) indexKey() string {
	return s.prefix + "exams"
}

func decodeRecord(id string, raw []byte) store.Record {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return store.Record{ID: id}
	}
	return store.Record{
		ID:        id,
		Name:      doc.Name,
		Questions: doc.Questions,
		CreatedAt: decodeCreatedAt(doc.CreatedAt),
		Revision:  doc.Revision,
	}
}

func decodeCreatedAt(raw json.RawMessage) store.Timestamp {
	if len(raw) == 0 || string(raw) == "null" {
		return store.Timestamp{}
	}
	var micros int64
	if err := json.Unmarshal(raw, &micros); err == nil {
		if micros == 0 {
			return store.Timestamp{}
		}
		return store.ServerTime(time.UnixMicro(micros))
	}
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return store.Timestamp{Label: label}
	}
	return store.Timestamp{}
}
