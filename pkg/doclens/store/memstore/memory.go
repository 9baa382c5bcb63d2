package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/doclens/pkg/doclens/store"
)

// Store is an in-memory implementation of store.Store for tests and
// single-process use.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]store.RunRecord
	reports map[string]store.ReportRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:    make(map[string]store.RunRecord),
		reports: make(map[string]store.ReportRecord),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun inserts or replaces a run record, keyed by run ID.
func (s *Store) SaveRun(ctx context.Context, r store.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		return nil
	}
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run record by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.runs[id]; ok {
		return copyRun(r), true, nil
	}
	return store.RunRecord{}, false, nil
}

// ListRuns returns run records, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.RunRecord, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, copyRun(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveReport inserts or replaces a report record, keyed by run ID.
func (s *Store) SaveReport(ctx context.Context, r store.ReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.RunID == "" {
		return nil
	}
	s.reports[r.RunID] = r
	return nil
}

// GetReport returns a report record by run ID.
func (s *Store) GetReport(ctx context.Context, runID string) (store.ReportRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.reports[runID]; ok {
		return r, true, nil
	}
	return store.ReportRecord{}, false, nil
}

// ListReports returns report records, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]store.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ReportRecord, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyRun(r store.RunRecord) store.RunRecord {
	out := r
	out.Stages = append([]store.StageRecord(nil), r.Stages...)
	return out
}
