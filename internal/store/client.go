package store

import (
	"context"
	"time"

	"exambank/internal/domain"
	"github.com/sirupsen/logrus"
)

// Client is a named handle over a Backend that speaks in domain.Exam values.
type Client struct {
	name    string
	backend Backend
	loc     *time.Location
	log     logrus.FieldLogger
}

// NewClient wraps a backend. A nil location renders dates in time.Local.
func NewClient(name string, backend Backend, loc *time.Location, log logrus.FieldLogger) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		name:    name,
		backend: backend,
		loc:     loc,
		log:     log.WithField("store", name),
	}
}

// Name returns the handle name the client was registered under.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) CreateExam(ctx context.Context, name string, questions []domain.Question) (string, error) {
	return c.backend.Insert(ctx, name, questions)
}

func (c *Client) ListExams(ctx context.Context) ([]domain.Exam, error) {
	records, err := c.backend.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	exams := make([]domain.Exam, 0, len(records))
	for _, rec := range records {
		exams = append(exams, Convert(rec, c.loc))
	}
	return exams, nil
}

func (c *Client) GetExam(ctx context.Context, id string) (domain.Exam, error) {
	rec, err := c.backend.Find(ctx, id)
	if err != nil {
		return domain.Exam{}, err
	}
	return Convert(rec, c.loc), nil
}

func (c *Client) UpdateExam(ctx context.Context, id string, patch domain.ExamPatch) error {
	return c.backend.Patch(ctx, id, patch)
}

func (c *Client) DeleteExam(ctx context.Context, id string) error {
	return c.backend.Remove(ctx, id)
}

// Close releases the backend connection.
func (c *Client) Close() error {
	c.log.Debug("closing store handle")
	return c.backend.Close()
}
