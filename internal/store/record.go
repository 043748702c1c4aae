package store

import (
	"time"

	"exambank/internal/domain"
)

// UnknownDate is rendered when a record carries no usable creation time.
const UnknownDate = "ไม่ระบุวันที่"

// DateLayout renders creation timestamps as DD/MM/YYYY.
const DateLayout = "02/01/2006"

// Timestamp is a stored creation time. Backends fill Time for
// server-assigned instants and Label for values persisted as plain text.
type Timestamp struct {
	Time  time.Time
	Label string
}

// ServerTime wraps a server-assigned instant.
func ServerTime(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Record is an exam as a backend returns it, before conversion.
type Record struct {
	ID        string
	Name      string
	Questions []domain.Question
	CreatedAt Timestamp
	Revision  int64
}

// Convert maps a stored record to the Exam shape. Missing or malformed
// fields degrade to defaults; it never fails.
func Convert(rec Record, loc *time.Location) domain.Exam {
	exam := domain.NewExam(rec.ID, rec.Name, formatCreatedAt(rec.CreatedAt, loc), domain.CloneQuestions(rec.Questions))
	exam.Revision = rec.Revision
	return exam
}

func formatCreatedAt(ts Timestamp, loc *time.Location) string {
	if !ts.Time.IsZero() {
		if loc == nil {
			loc = time.Local
		}
		return ts.Time.In(loc).Format(DateLayout)
	}
	if ts.Label != "" {
		return ts.Label
	}
	return UnknownDate
}
