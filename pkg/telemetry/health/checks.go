package health

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/vesta/pkg/moderation"
)

// canaryComment is analyzed by AnalyzerCheck. It is benign in every
// supported configuration.
const canaryComment = "Thanks for sharing, this was really helpful!"

// Pinger is implemented by storage backends that can verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Analyzer is the part of the engine AnalyzerCheck exercises.
type Analyzer interface {
	AnalyzeComment(ctx context.Context, text string) *moderation.AnalysisResult
}

// StorageCheck pings the audit store.
func StorageCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("audit storage unreachable: %w", err)
		}
		return nil
	}
}

// AnalyzerCheck runs a canary comment through the engine and fails if any
// analyzer degraded.
func AnalyzerCheck(a Analyzer) CheckFunc {
	return func(ctx context.Context) error {
		res := a.AnalyzeComment(ctx, canaryComment)
		if res == nil {
			return errors.New("analyzer returned no result")
		}
		if res.Degraded {
			return errors.New("analyzer degraded on canary comment")
		}
		return nil
	}
}

// QueueCheck fails when a queue is at least 90% full. depth reports the
// current length and capacity.
func QueueCheck(depth func() (pending, capacity int)) CheckFunc {
	return func(context.Context) error {
		pending, capacity := depth()
		if capacity > 0 && pending*10 >= capacity*9 {
			return fmt.Errorf("queue near capacity: %d/%d", pending, capacity)
		}
		return nil
	}
}
