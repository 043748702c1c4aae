package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodeCreatedAtVariants(t *testing.T) {
	at := time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)

	got := decodeCreatedAt(rawValue(t, primitive.NewDateTimeFromTime(at)))
	if !got.Time.Equal(at) {
		t.Fatalf("expected %v, got %+v", at, got)
	}

	got = decodeCreatedAt(rawValue(t, "01/05/2025"))
	if got.Label != "01/05/2025" || !got.Time.IsZero() {
		t.Fatalf("expected label, got %+v", got)
	}

	got = decodeCreatedAt(rawValue(t, int32(12)))
	if got.Label != "" || !got.Time.IsZero() {
		t.Fatalf("expected empty timestamp for numbers, got %+v", got)
	}

	if got := decodeCreatedAt(bson.RawValue{}); got.Label != "" || !got.Time.IsZero() {
		t.Fatalf("expected empty timestamp for missing field, got %+v", got)
	}
}

func TestToRecordKeepsQuestionOrder(t *testing.T) {
	var doc document
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "name", Value: "Geo"},
		{Key: "questions", Value: bson.A{
			bson.D{{Key: "question", Value: "q1"}, {Key: "answer", Value: "a1"}},
			bson.D{{Key: "question", Value: "q2"}, {Key: "answer", Value: "a2"}},
		}},
		{Key: "revision", Value: int64(4)},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec := toRecord(doc)
	if rec.Name != "Geo" || rec.Revision != 4 || len(rec.Questions) != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Questions[0].Answer != "a1" || rec.Questions[1].Question != "q2" {
		t.Fatalf("question order lost: %+v", rec.Questions)
	}
	if rec.ID != doc.ID.Hex() {
		t.Fatalf("expected hex id, got %s", rec.ID)
	}
}

func TestToRecordDegradesMalformedFields(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":       primitive.NewObjectID(),
		"name":      "legacy",
		"questions": "not-a-list",
		"createdAt": "01/05/2025",
		"revision":  "one",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("malformed fields must not fail the decode: %v", err)
	}

	rec := toRecord(doc)
	if rec.Name != "legacy" || len(rec.Questions) != 0 || rec.Revision != 0 {
		t.Fatalf("expected degraded record, got %+v", rec)
	}
	if rec.CreatedAt.Label != "01/05/2025" {
		t.Fatalf("expected label passthrough, got %+v", rec.CreatedAt)
	}

	bad := []interface{}{bson.A{"q1", "q2"}, int32(3), nil}
	for _, v := range bad {
		if qs := decodeQuestions(rawValue(t, v)); len(qs) != 0 {
			t.Fatalf("expected no questions for %v, got %+v", v, qs)
		}
	}
	if rev := decodeRevision(rawValue(t, int32(7))); rev != 7 {
		t.Fatalf("expected int32 revision 7, got %d", rev)
	}
}

func rawValue(t *testing.T, v interface{}) bson.RawValue {
	t.Helper()
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bson.Raw(raw).Lookup("v")
}
