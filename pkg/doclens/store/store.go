package store

import (
	"context"
	"time"
)

// Store persists finalized pipeline runs and their reports.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// Reports
	SaveReport(ctx context.Context, r ReportRecord) error
	GetReport(ctx context.Context, runID string) (ReportRecord, bool, error)
	ListReports(ctx context.Context, limit int) ([]ReportRecord, error)
}

// RunRecord is the persisted form of a finalized pipeline run.
type RunRecord struct {
	ID        string
	Status    string
	StartedAt time.Time
	ElapsedMS int64
	Stages    []StageRecord
}

// StageRecord is the persisted form of one stage result.
type StageRecord struct {
	Name      string
	Status    string
	Reason    string
	ElapsedMS int64
}

// ReportRecord is the persisted form of a synthesized report, keyed by
// the run it was built from. Body holds the serialized report JSON.
type ReportRecord struct {
	RunID       string
	GeneratedAt time.Time
	Body        string
}
