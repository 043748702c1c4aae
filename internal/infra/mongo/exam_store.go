package mongo

import (
	"context"
	"time"

	"exambank/internal/domain"
	"exambank/internal/store"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExamStore keeps exams in a MongoDB collection. Ids are ObjectIDs;
// createdAt is a BSON date, or a string label for older documents.
type ExamStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials uri and selects database.collection.
func Connect(ctx context.Context, uri, database, collection string) (*ExamStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	return NewExamStore(client, database, collection), nil
}

func NewExamStore(client *mongo.Client, database, collection string) *ExamStore {
	return &ExamStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// document fields other than _id stay raw so a malformed field degrades
// in toRecord instead of failing the whole read.
type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      bson.RawValue      `bson:"name"`
	Questions bson.RawValue      `bson:"questions,omitempty"`
	CreatedAt bson.RawValue      `bson:"createdAt,omitempty"`
	Revision  bson.RawValue      `bson:"revision"`
}

// Insert upserts a fresh ObjectID so $currentDate can stamp createdAt with
// the server clock.
func (s *ExamStore) Insert(ctx context.Context, name string, questions []domain.Question) (string, error) {
	if questions == nil {
		questions = []domain.Question{}
	}
	oid := primitive.NewObjectID()
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$setOnInsert": bson.M{
			"name":      name,
			"questions": questions,
			"revision":  int64(1),
		},
		"$currentDate": bson.M{"createdAt": true},
	}, options.Update().SetUpsert(true))
	if err != nil {
		return "", errors.Wrap(err, "insert exam")
	}
	return oid.Hex(), nil
}

func (s *ExamStore) FindAll(ctx context.Context) ([]store.Record, error) {
	cur, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find exams")
	}
	defer cur.Close(ctx)

	var records []store.Record
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode exam")
		}
		records = append(records, toRecord(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate exams")
	}
	return records, nil
}

func (s *ExamStore) Find(ctx context.Context, id string) (store.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.Record{}, domain.ErrExamNotFound
	}
	var doc document
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Record{}, domain.ErrExamNotFound
	}
	if err != nil {
		return store.Record{}, errors.Wrap(err, "find exam")
	}
	return toRecord(doc), nil
}

func (s *ExamStore) Patch(ctx context.Context, id string, patch domain.ExamPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrExamNotFound
	}
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Questions != nil {
		qs := *patch.Questions
		if qs == nil {
			qs = []domain.Question{}
		}
		set["questions"] = qs
	}

	filter := bson.M{"_id": oid}
	if patch.ExpectedRevision != nil {
		filter["revision"] = *patch.ExpectedRevision
	}
	res, err := s.collection.UpdateOne(ctx, filter, bson.M{
		"$set": set,
		"$inc": bson.M{"revision": int64(1)},
	})
	if err != nil {
		return errors.Wrap(err, "update exam")
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "check exam")
	}
	if n > 0 {
		return domain.ErrRevisionConflict
	}
	return domain.ErrExamNotFound
}

func (s *ExamStore) Remove(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return errors.Wrap(err, "delete exam")
	}
	return nil
}

func (s *ExamStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func toRecord(doc document) store.Record {
	name, _ := doc.Name.StringValueOK()
	return store.Record{
		ID:        doc.ID.Hex(),
		Name:      name,
		Questions: decodeQuestions(doc.Questions),
		CreatedAt: decodeCreatedAt(doc.CreatedAt),
		Revision:  decodeRevision(doc.Revision),
	}
}

// decodeQuestions yields nil unless v is an array of question documents.
func decodeQuestions(v bson.RawValue) []domain.Question {
	if v.Type != bsontype.Array {
		return nil
	}
	var qs []domain.Question
	if err := v.Unmarshal(&qs); err != nil {
		return nil
	}
	return qs
}

func decodeRevision(v bson.RawValue) int64 {
	switch v.Type {
	case bsontype.Int64:
		return v.Int64()
	case bsontype.Int32:
		return int64(v.Int32())
	case bsontype.Double:
		return int64(v.Double())
	}
	return 0
}

func decodeCreatedAt(v bson.RawValue) store.Timestamp {
	switch v.Type {
	case bsontype.DateTime:
		return store.ServerTime(v.Time())
	case bsontype.Timestamp:
		sec, _ := v.Timestamp()
		return store.ServerTime(time.Unix(int64(sec), 0))
	case bsontype.String:
		return store.Timestamp{Label: v.StringValue()}
	}
	return store.Timestamp{}
}
