package engine

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"pirate-scout/internal/galaxy"
)

// DefaultPageSize is the page size for paginating a ranked result list.
const DefaultPageSize = 50

// Progress is one observation from a running batch. Err is set for per-item
// failures, which never abort the batch.
type Progress struct {
	Done       int
	Total      int
	SystemName string
	Result     *ScoreResult
	Err        error
}

// Orchestrator scores batches of systems with bounded parallelism.
type Orchestrator struct {
	scorer      *Scorer
	concurrency int64
	log         zerolog.Logger
}

// NewOrchestrator creates an Orchestrator. concurrency <= 0 uses the number
// of CPUs.
func NewOrchestrator(scorer *Scorer, concurrency int, log zerolog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Orchestrator{scorer: scorer, concurrency: int64(concurrency), log: log}
}

// ScoreAll scores every record, at most N at a time, and returns the results
// ranked by descending final score. Per-item failures are reported through
// the observer and skipped. Cancelling the context abandons unscheduled
// items; already-running items finish or abort on their own context checks.
//
// The observer is decoupled from the scoring loop: notifications are
// delivered on a separate goroutine and dropped when the observer cannot
// keep up, so a slow listener never stalls scoring.
func (o *Orchestrator) ScoreAll(ctx context.Context, records []*galaxy.SystemRecord, observe func(Progress)) ([]*ScoreResult, error) {
	total := len(records)

	notify, closeNotify := startNotifier(observe)
	defer closeNotify()

	sem := semaphore.NewWeighted(o.concurrency)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*ScoreResult
		done    int
	)

	for _, rec := range records {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: abandon everything not yet scheduled.
			break
		}
		wg.Add(1)
		go func(rec *galaxy.SystemRecord) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := o.scorer.Score(ctx, rec)

			mu.Lock()
			done++
			current := done
			if err == nil && res != nil {
				results = append(results, res)
			}
			mu.Unlock()

			if err != nil {
				o.log.Warn().Err(err).Str("system", rec.Name).Msg("scoring failed")
			}
			notify(Progress{
				Done:       current,
				Total:      total,
				SystemName: rec.Name,
				Result:     res,
				Err:        err,
			})
		}(rec)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	return results, ctx.Err()
}

// startNotifier returns a non-blocking send function feeding a dedicated
// observer goroutine, plus a close function that drains it.
func startNotifier(observe func(Progress)) (func(Progress), func()) {
	if observe == nil {
		return func(Progress) {}, func() {}
	}

	ch := make(chan Progress, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range ch {
			observe(p)
		}
	}()

	send := func(p Progress) {
		select {
		case ch <- p:
		default:
			// Observer too slow; drop rather than stall scoring.
		}
	}
	closeFn := func() {
		close(ch)
		wg.Wait()
	}
	return send, closeFn
}

// Page returns the fixed-size page of an already-ranked result list. It is a
// read-only view: out-of-range pages yield an empty slice. size <= 0 uses
// DefaultPageSize.
func Page(results []*ScoreResult, page, size int) []*ScoreResult {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 0 {
		return nil
	}
	start := page * size
	if start >= len(results) {
		return nil
	}
	end := start + size
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
