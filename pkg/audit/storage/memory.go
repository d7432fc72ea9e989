package storage

import (
	"cmp"
	"context"
	"sort"
	"sync"

	"mercator-hq/vesta/pkg/audit"
)

// MemoryStorage keeps audit records in process memory. It backs tests and
// the `audit.backend: memory` setting, where records are lost on restart.
type MemoryStorage struct {
	records map[string]*audit.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store saves a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = cloneRecord(record)
	return nil
}

// Query returns matching records, sorted and paginated.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	results := s.collect(query)
	s.mu.RUnlock()

	return paginate(results, query), nil
}

// QueryStream delivers the results of Query on a channel.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Record, <-chan error, error) {
	recordsCh := make(chan *audit.Record, streamBuffer)
	errCh := make(chan error, 1)

	s.mu.RLock()
	results := paginate(s.collect(query), query)
	s.mu.RUnlock()

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, rec := range results {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- rec:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, rec := range s.records {
		if query.Matches(rec) {
			count++
		}
	}
	return count, nil
}

// Delete removes matching records.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, rec := range s.records {
		if query.Matches(rec) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*audit.Record)
	return nil
}

// Size returns the number of stored records.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// GetByID returns a copy of the record with id, or nil.
func (s *MemoryStorage) GetByID(id string) *audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	return cloneRecord(rec)
}

// collect copies the matching records and sorts them. Callers hold mu.
func (s *MemoryStorage) collect(query *audit.Query) []*audit.Record {
	results := make([]*audit.Record, 0)
	for _, rec := range s.records {
		if query.Matches(rec) {
			results = append(results, cloneRecord(rec))
		}
	}
	SortRecords(results, sortField(query), sortDescending(query))
	return results
}

func paginate(records []*audit.Record, query *audit.Query) []*audit.Record {
	if query == nil {
		return records
	}
	if query.Offset >= len(records) {
		return []*audit.Record{}
	}
	if query.Offset > 0 {
		records = records[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(records) {
		records = records[:query.Limit]
	}
	return records
}

// SortRecords orders records by one of the audit.SortBy* fields. Ties are
// broken by ID so results are stable across calls.
func SortRecords(records []*audit.Record, field string, descending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		c := compareRecords(records[i], records[j], field)
		if c == 0 {
			return records[i].ID < records[j].ID
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func compareRecords(a, b *audit.Record, field string) int {
	switch field {
	case audit.SortByToxicityScore:
		return cmp.Compare(a.ToxicityScore, b.ToxicityScore)
	case audit.SortBySentimentScore:
		return cmp.Compare(a.SentimentScore, b.SentimentScore)
	case audit.SortByConfidence:
		return cmp.Compare(a.Confidence, b.Confidence)
	default:
		return a.AnalyzedAt.Compare(b.AnalyzedAt)
	}
}

func sortField(query *audit.Query) string {
	if query == nil || query.SortBy == "" {
		return audit.SortByAnalyzedAt
	}
	return query.SortBy
}

func sortDescending(query *audit.Query) bool {
	if query == nil || query.SortOrder == "" {
		return true
	}
	return query.SortOrder == "desc" || query.SortOrder == "DESC"
}

func cloneRecord(r *audit.Record) *audit.Record {
	c := *r
	if r.Topics != nil {
		c.Topics = append([]string(nil), r.Topics...)
	}
	if r.Flags != nil {
		c.Flags = append([]audit.FlagRecord(nil), r.Flags...)
	}
	return &c
}
