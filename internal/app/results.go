package app

import "exambank/internal/domain"

// Source tells where a list of exams came from.
type Source string

const (
	SourceStore               Source = "store"
	SourceFallbackEmpty       Source = "fallback-empty"
	SourceFallbackUnavailable Source = "fallback-unavailable"
)

// ListResult is an ordered list of exams with its provenance.
type ListResult struct {
	Exams  []domain.Exam `json:"exams"`
	Source Source        `json:"source"`
}

// Fallback reports whether the exams are sample data.
func (r ListResult) Fallback() bool {
	return r.Source != SourceStore
}

// WriteStatus is the outcome of an update or delete.
type WriteStatus string

const (
	WriteApplied   WriteStatus = "applied"
	WriteSimulated WriteStatus = "simulated"
	// WriteSwallowed is a store failure reported as success.
	WriteSwallowed WriteStatus = "swallowed"
	WriteFailed    WriteStatus = "failed"
)

// WriteResult carries a write's status and, when the store failed, why.
type WriteResult struct {
	Status WriteStatus
	Err    error
}

// OK is the success indicator shown to users.
func (r WriteResult) OK() bool {
	return r.Status != WriteFailed
}
