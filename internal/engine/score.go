// Package engine computes piracy scores for star systems and orchestrates
// scoring over whole search batches.
package engine

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"pirate-scout/internal/config"
	"pirate-scout/internal/galaxy"
)

// marketScoreFloor is the preliminary score (on the 0-100 scale) a system
// must reach before market data is worth fetching. Market lookups cost one
// HTTP round-trip per station, so systems that cannot reach a useful final
// score skip them.
const marketScoreFloor = 75.0

// sentinelName is an upstream placeholder, never a real system.
const sentinelName = "Test"

// marketStationConcurrency bounds parallel per-station market fetches.
const marketStationConcurrency = 5

// MarketProvider supplies commodity listings for a station market.
type MarketProvider interface {
	MarketData(ctx context.Context, marketID int64) ([]galaxy.Commodity, error)
}

// Scorer converts a system record plus the scoring rubric into a ScoreResult.
type Scorer struct {
	cfg    *config.ScoringConfig
	market MarketProvider
	log    zerolog.Logger
}

// NewScorer creates a Scorer. market may be nil, in which case the market
// sub-score is only ever computed from commodities already on the record.
func NewScorer(cfg *config.ScoringConfig, market MarketProvider, log zerolog.Logger) *Scorer {
	return &Scorer{cfg: cfg, market: market, log: log}
}

// Score computes the full score for one record. It returns (nil, nil) for a
// nil record or the upstream placeholder name: "no result for this input",
// not an error. The record's BestCommodities list is rebuilt when a full
// market pass runs.
func (s *Scorer) Score(ctx context.Context, rec *galaxy.SystemRecord) (*ScoreResult, error) {
	if rec == nil || rec.Name == sentinelName {
		return nil, nil
	}

	result := &ScoreResult{SystemName: rec.Name}

	result.EconomyScore = s.economyScore(rec.PrimaryEconomy, rec.SecondaryEconomy) * s.cfg.EconomyScoreWeight
	result.GovernmentScore = s.governmentScore(rec.Government) * s.cfg.GovernmentScoreWeight
	result.SecurityScore = s.securityScore(rec.Security) * s.cfg.SecurityScoreWeight
	result.FactionStateScore = s.factionStateScore(rec.FactionState) * s.cfg.FactionStateScoreWeight
	result.PopulationScore = PopulationScore(rec.Population, s.cfg.PopulationMultipliers) * s.cfg.PopulationScoreWeight

	result.HasIndustrialEconomy = rec.PrimaryEconomy == "Industrial"
	result.HasExtractionEconomy = rec.PrimaryEconomy == "Extraction"
	result.HasAnarchyGovernment = rec.Government == "Anarchy"
	result.HasLowSecurity = rec.Security == "Low" || rec.Security == "None" || rec.Security == "Anarchy"
	result.HasPirateFaction = rec.HasPirateFaction()

	scoreWithoutMarket := result.EconomyScore + result.GovernmentScore +
		result.SecurityScore + result.FactionStateScore + result.PopulationScore

	// The rings sub-score only exists when the data source carried body
	// data. An unknown ring state must not be scored as "no rings".
	if rec.RingDataKnown {
		noRings := !rec.HasRings() && !rec.HasBeltClusters()
		result.HasNoRings = noRings
		if noRings {
			result.NoRingsScore = s.cfg.NoRingsScoreWeight
		}
		scoreWithoutMarket += result.NoRingsScore
	}

	shouldFetchMarket := scoreWithoutMarket*100 >= marketScoreFloor || len(rec.BestCommodities) > 0
	if shouldFetchMarket {
		if len(rec.BestCommodities) > 0 {
			result.MarketDemandScore = s.marketScoreFromExisting(rec) * s.cfg.MarketDemandScoreWeight
		} else {
			raw, err := s.marketScore(ctx, rec)
			if err != nil {
				return nil, err
			}
			result.MarketDemandScore = raw * s.cfg.MarketDemandScoreWeight
		}
	} else {
		result.SkippedMarket = true
	}

	// Scale to 0-100 exactly once, here.
	result.FinalScore = round2(scoreWithoutMarket+result.MarketDemandScore) * 100
	result.BestCommodity = s.bestCommodity(rec)

	return result, nil
}

// economyScore blends the primary and secondary economy 70/30. Economies
// absent from the table contribute zero.
func (s *Scorer) economyScore(primary, secondary string) float64 {
	return s.cfg.EconomyMultipliers[primary]*0.7 + s.cfg.EconomyMultipliers[secondary]*0.3
}

// governmentScore defaults unknown non-empty governments to 0.3: an exotic
// government is still more pirate-friendly than none on record.
func (s *Scorer) governmentScore(government string) float64 {
	if government == "" {
		return 0
	}
	if m, ok := s.cfg.GovernmentMultipliers[government]; ok {
		return m
	}
	return 0.3
}

func (s *Scorer) securityScore(security string) float64 {
	return s.cfg.SecurityMultipliers[security]
}

// factionStateScore mirrors governmentScore's unknown-value default.
func (s *Scorer) factionStateScore(state string) float64 {
	if state == "" {
		return 0
	}
	if m, ok := s.cfg.FactionStateMultipliers[state]; ok {
		return m
	}
	return 0.3
}

// PopulationScore buckets the population into one of five ranges (inclusive
// lower bound, exclusive upper) and returns the matching multiplier.
// Negative populations score zero.
func PopulationScore(population int64, multipliers map[string]float64) float64 {
	if population < 0 {
		return 0
	}
	switch {
	case population >= 10_000_000_000:
		return multipliers[config.PopOver10B]
	case population >= 1_000_000_000:
		return multipliers[config.Pop1Bto10B]
	case population >= 100_000_000:
		return multipliers[config.Pop100Mto1B]
	case population >= 1_000_000:
		return multipliers[config.Pop1Mto100M]
	default:
		return multipliers[config.PopUnder1M]
	}
}

// marketScore performs the full market pass: fetch the commodity listing of
// every market station with bounded parallelism, keep valuable commodities
// in high demand on the record, and return the best kept weight. Failures
// for individual stations drop that station's data, nothing more.
func (s *Scorer) marketScore(ctx context.Context, rec *galaxy.SystemRecord) (float64, error) {
	rec.BestCommodities = nil
	if s.market == nil {
		return 0, nil
	}

	stations := rec.MarketStations()
	if len(stations) == 0 {
		return 0, nil
	}

	sem := semaphore.NewWeighted(marketStationConcurrency)
	listings := make([][]galaxy.Commodity, len(stations))
	errs := make([]error, len(stations))

	done := make(chan int, len(stations))
	for i, st := range stations {
		if err := sem.Acquire(ctx, 1); err != nil {
			return 0, err
		}
		go func(i int, marketID int64) {
			defer sem.Release(1)
			listings[i], errs[i] = s.market.MarketData(ctx, marketID)
			done <- i
		}(i, st.MarketID)
	}
	for range stations {
		<-done
	}

	high := s.cfg.HighDemandThreshold()
	var kept []galaxy.Commodity
	for i := range listings {
		if errs[i] != nil {
			s.log.Warn().Err(errs[i]).
				Str("system", rec.Name).
				Int64("market_id", stations[i].MarketID).
				Msg("market fetch failed, skipping station")
			continue
		}
		for _, cm := range listings[i] {
			if _, valuable := s.cfg.ValuableCommodities[cm.Name]; valuable && float64(cm.Demand) >= high {
				kept = append(kept, cm)
			}
		}
	}
	rec.BestCommodities = kept

	return s.maxCommodityWeight(kept), nil
}

// marketScoreFromExisting recomputes the market sub-score from commodities
// already on the record, with no network calls. This is the cache-reuse path.
func (s *Scorer) marketScoreFromExisting(rec *galaxy.SystemRecord) float64 {
	return s.maxCommodityWeight(rec.BestCommodities)
}

func (s *Scorer) maxCommodityWeight(commodities []galaxy.Commodity) float64 {
	best := 0.0
	for _, cm := range commodities {
		if w := s.cfg.ValuableCommodities[cm.Name]; w > best {
			best = w
		}
	}
	return best
}

// bestCommodity picks the single best listing among those with demand:
// highest configured weight first, demand as the tie-break.
func (s *Scorer) bestCommodity(rec *galaxy.SystemRecord) *galaxy.Commodity {
	var candidates []galaxy.Commodity
	for _, cm := range rec.BestCommodities {
		if cm.Demand > 0 {
			candidates = append(candidates, cm)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		wi := s.cfg.ValuableCommodities[candidates[i].Name]
		wj := s.cfg.ValuableCommodities[candidates[j].Name]
		if wi != wj {
			return wi > wj
		}
		return candidates[i].Demand > candidates[j].Demand
	})
	best := candidates[0]
	return &best
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
