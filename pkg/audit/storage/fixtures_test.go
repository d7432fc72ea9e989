package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/vesta/pkg/audit"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// sampleRecords returns five records one minute apart, oldest first.
func sampleRecords() []*audit.Record {
	return []*audit.Record{
		{
			ID: "rec-1", ContentHash: "h1", Language: "en", Topics: []string{"fitness"},
			ToxicityScore: 0.0, SentimentScore: 0.6, Confidence: 0.7,
			Flags: []audit.FlagRecord{}, RecommendedAction: "approve",
			AnalyzedAt: baseTime,
		},
		{
			ID: "rec-2", ContentHash: "h2", Language: "es", Topics: []string{},
			ToxicityScore: 0.9, SentimentScore: -0.8, Confidence: 0.9,
			Flags: []audit.FlagRecord{{Kind: "hate_speech", Confidence: 0.9, Reason: "hate speech detected: subhuman"}},
			RecommendedAction: "reject", AnalyzedAt: baseTime.Add(time.Minute),
		},
		{
			ID: "rec-3", ContentHash: "h1", RequestID: "req-3", Language: "en", Topics: []string{"fitness", "wellness"},
			ToxicityScore: 0.5, SentimentScore: -0.2, Confidence: 0.6, MentionCount: 2,
			Flags: []audit.FlagRecord{{Kind: "spam", Confidence: 0.7, Reason: "promotional content or links"}},
			RecommendedAction: "review", AnalyzedAt: baseTime.Add(2 * time.Minute),
		},
		{
			ID: "rec-4", ContentHash: "h4", Language: "fr", Topics: []string{"sports"},
			ToxicityScore: 0.7, SentimentScore: 0.1, Confidence: 0.8,
			Flags: []audit.FlagRecord{{Kind: "toxicity", Confidence: 0.8}, {Kind: "spam", Confidence: 0.6}},
			RecommendedAction: "auto_hide", AnalyzedAt: baseTime.Add(3 * time.Minute),
		},
		{
			ID: "rec-5", ContentHash: "h5", Language: "en",
			ToxicityScore: 0.0, Confidence: 0.5, Degraded: true,
			RecommendedAction: "approve", AnalyzedAt: baseTime.Add(4 * time.Minute),
		},
	}
}

func seed(t *testing.T, s audit.Storage) {
	t.Helper()
	for _, rec := range sampleRecords() {
		if err := s.Store(context.Background(), rec); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}
}

func ids(records []*audit.Record) string {
	out := ""
	for i, r := range records {
		if i > 0 {
			out += ","
		}
		out += r.ID
	}
	return out
}

// runStorageSuite checks the behaviour every backend must share.
func runStorageSuite(t *testing.T, newStore func(t *testing.T) audit.Storage) {
	ctx := context.Background()
	minTox := 0.5
	degraded := true
	start := baseTime.Add(time.Minute)
	end := baseTime.Add(3 * time.Minute)

	queries := []struct {
		name  string
		query *audit.Query
		want  string
	}{
		{"default newest first", &audit.Query{}, "rec-5,rec-4,rec-3,rec-2,rec-1"},
		{"ascending", &audit.Query{SortOrder: "asc"}, "rec-1,rec-2,rec-3,rec-4,rec-5"},
		{"time window", &audit.Query{StartTime: &start, EndTime: &end, SortOrder: "asc"}, "rec-2,rec-3,rec-4"},
		{"action", &audit.Query{Action: "approve"}, "rec-5,rec-1"},
		{"language", &audit.Query{Language: "en", SortOrder: "asc"}, "rec-1,rec-3,rec-5"},
		{"flag kind", &audit.Query{FlagKind: "spam", SortOrder: "asc"}, "rec-3,rec-4"},
		{"topic", &audit.Query{Topic: "fitness", SortOrder: "asc"}, "rec-1,rec-3"},
		{"content hash", &audit.Query{ContentHash: "h1", SortOrder: "asc"}, "rec-1,rec-3"},
		{"request id", &audit.Query{RequestID: "req-3"}, "rec-3"},
		{"min toxicity", &audit.Query{MinToxicity: &minTox, SortBy: audit.SortByToxicityScore}, "rec-2,rec-4,rec-3"},
		{"degraded", &audit.Query{Degraded: &degraded}, "rec-5"},
		{"by sentiment", &audit.Query{SortBy: audit.SortBySentimentScore, SortOrder: "asc", Limit: 2}, "rec-2,rec-3"},
		{"pagination", &audit.Query{SortOrder: "asc", Limit: 2, Offset: 1}, "rec-2,rec-3"},
		{"offset past end", &audit.Query{Offset: 10}, ""},
	}

	t.Run("Query", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		seed(t, s)

		for _, tt := range queries {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.Query(ctx, tt.query)
				if err != nil {
					t.Fatalf("Query() failed: %v", err)
				}
				if ids(got) != tt.want {
					t.Errorf("Expected %q, got %q", tt.want, ids(got))
				}
			})
		}
	})

	t.Run("RoundTripFields", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		seed(t, s)

		got, err := s.Query(ctx, &audit.Query{RequestID: "req-3"})
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(got))
		}
		rec := got[0]
		if !rec.AnalyzedAt.Equal(baseTime.Add(2 * time.Minute)) {
			t.Errorf("Expected analyzed_at %v, got %v", baseTime.Add(2*time.Minute), rec.AnalyzedAt)
		}
		if len(rec.Topics) != 2 || rec.Topics[1] != "wellness" {
			t.Errorf("Unexpected topics: %v", rec.Topics)
		}
		if len(rec.Flags) != 1 || rec.Flags[0].Reason != "promotional content or links" {
			t.Errorf("Unexpected flags: %+v", rec.Flags)
		}
		if rec.MentionCount != 2 {
			t.Errorf("Expected mention count 2, got %d", rec.MentionCount)
		}
	})

	t.Run("CountAndDelete", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		seed(t, s)

		n, err := s.Count(ctx, &audit.Query{Language: "en"})
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if n != 3 {
			t.Errorf("Expected 3 english records, got %d", n)
		}

		cutoff := baseTime.Add(time.Minute)
		deleted, err := s.Delete(ctx, &audit.Query{EndTime: &cutoff})
		if err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if deleted != 2 {
			t.Errorf("Expected 2 deleted, got %d", deleted)
		}

		total, _ := s.Count(ctx, &audit.Query{})
		if total != 3 {
			t.Errorf("Expected 3 remaining, got %d", total)
		}
	})

	t.Run("QueryStream", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		seed(t, s)

		records, errs, err := s.QueryStream(ctx, &audit.Query{SortOrder: "asc", Limit: 3})
		if err != nil {
			t.Fatalf("QueryStream() failed: %v", err)
		}
		var got []*audit.Record
		for rec := range records {
			got = append(got, rec)
		}
		if err := <-errs; err != nil {
			t.Fatalf("stream error: %v", err)
		}
		if ids(got) != "rec-1,rec-2,rec-3" {
			t.Errorf("Unexpected stream order: %s", ids(got))
		}
	})

	t.Run("ConcurrentStore", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		const n = 50
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			go func(i int) {
				errs <- s.Store(ctx, &audit.Record{
					ID:                fmt.Sprintf("c-%d", i),
					ContentHash:       "h",
					Language:          "en",
					RecommendedAction: "approve",
					AnalyzedAt:        baseTime.Add(time.Duration(i) * time.Second),
				})
			}(i)
		}
		for i := 0; i < n; i++ {
			if err := <-errs; err != nil {
				t.Fatalf("Store() failed: %v", err)
			}
		}

		count, err := s.Count(ctx, &audit.Query{})
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if count != n {
			t.Errorf("Expected %d records, got %d", n, count)
		}
	})
}
