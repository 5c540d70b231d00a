package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"pirate-scout/internal/galaxy"
)

// SystemProvider finds systems near a reference point and lets enriched
// results be written back to its cache.
type SystemProvider interface {
	SearchSystemsNear(ctx context.Context, reference string, radiusLy int) ([]*galaxy.SystemRecord, error)
	UpdateSearchCache(reference string, radiusLy int, records []*galaxy.SystemRecord) error
}

// Analyzer is the high-level search-and-score entry point callers use. It
// also keeps per-process lookup maps from system name to the latest record
// and result, guarded for concurrent use.
type Analyzer struct {
	provider SystemProvider
	orch     *Orchestrator
	log      zerolog.Logger

	mu      sync.RWMutex
	records map[string]*galaxy.SystemRecord
	results map[string]*ScoreResult
}

// NewAnalyzer wires a provider and an orchestrator together.
func NewAnalyzer(provider SystemProvider, orch *Orchestrator, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		orch:     orch,
		log:      log,
		records:  make(map[string]*galaxy.SystemRecord),
		results:  make(map[string]*ScoreResult),
	}
}

// SearchAndScore fetches systems near reference within radiusLy, scores them
// and returns the ranked results. After a successful batch the now
// market-enriched records are written back into the provider's cache so a
// later hit can skip market fetches. An empty result list means the search
// itself found nothing (or failed entirely); the caller should say so
// explicitly rather than present an empty success.
func (a *Analyzer) SearchAndScore(ctx context.Context, reference string, radiusLy int, observe func(Progress)) ([]*ScoreResult, error) {
	records, err := a.provider.SearchSystemsNear(ctx, reference, radiusLy)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		a.log.Info().Str("reference", reference).Int("radius_ly", radiusLy).Msg("search returned no systems")
		return nil, nil
	}

	a.log.Info().Str("reference", reference).Int("radius_ly", radiusLy).
		Int("systems", len(records)).Msg("scoring systems")

	results, err := a.orch.ScoreAll(ctx, records, observe)
	if err != nil {
		return results, err
	}

	a.mu.Lock()
	for _, rec := range records {
		a.records[rec.Name] = rec
	}
	for _, res := range results {
		a.results[res.SystemName] = res
	}
	a.mu.Unlock()

	if err := a.provider.UpdateSearchCache(reference, radiusLy, records); err != nil {
		a.log.Warn().Err(err).Msg("cache write-back failed")
	}
	return results, nil
}

// Record returns the most recent record seen for a system name.
func (a *Analyzer) Record(name string) (*galaxy.SystemRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.records[name]
	return rec, ok
}

// Result returns the most recent score computed for a system name.
func (a *Analyzer) Result(name string) (*ScoreResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, ok := a.results[name]
	return res, ok
}
