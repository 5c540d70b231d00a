package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pirate-scout/internal/config"
	"pirate-scout/internal/galaxy"
)

// stubMarket serves canned commodity listings and counts calls.
type stubMarket struct {
	mu    sync.Mutex
	calls int
	data  map[int64][]galaxy.Commodity
	errs  map[int64]error
}

func (m *stubMarket) MarketData(_ context.Context, marketID int64) ([]galaxy.Commodity, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if err := m.errs[marketID]; err != nil {
		return nil, err
	}
	return m.data[marketID], nil
}

func (m *stubMarket) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestScorer(market MarketProvider) *Scorer {
	return NewScorer(config.DefaultScoring(), market, zerolog.Nop())
}

// hotspotRecord is a system that clears the market floor without market
// data: 0.175 + 0.2 + 0.135 + 0.1 + 0.15 = 0.76.
func hotspotRecord() *galaxy.SystemRecord {
	return &galaxy.SystemRecord{
		Name:           "HIP 20277",
		PrimaryEconomy: "Extraction",
		Government:     "Anarchy",
		Security:       "Low",
		FactionState:   "Civil Unrest",
		Population:     2_000_000_000,
		Stations: []galaxy.Station{
			{Name: "Fabian City", MarketID: 128001, HasMarket: true},
		},
	}
}

func TestPopulationScore_Brackets(t *testing.T) {
	multipliers := config.DefaultScoring().PopulationMultipliers

	tests := []struct {
		name       string
		population int64
		want       float64
	}{
		{"negative clamps to zero", -5, 0},
		{"zero is under 1M", 0, 0.2},
		{"just under 1M", 999_999, 0.2},
		{"lower bound 1M is inclusive", 1_000_000, 0.6},
		{"lower bound 100M", 100_000_000, 0.8},
		{"sweet spot 1B", 1_000_000_000, 1.0},
		{"just under 10B", 9_999_999_999, 1.0},
		{"10B and up tapers", 10_000_000_000, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PopulationScore(tt.population, multipliers))
		})
	}
}

func TestEconomyScore_Blend(t *testing.T) {
	s := newTestScorer(nil)

	assert.InDelta(t, 0.97, s.economyScore("Extraction", "Industrial"), 1e-9)
	assert.InDelta(t, 0.7, s.economyScore("Extraction", ""), 1e-9)
	assert.Zero(t, s.economyScore("", ""))
	assert.Zero(t, s.economyScore("Barter", "Gift"))
}

func TestCategoryDefaults(t *testing.T) {
	s := newTestScorer(nil)

	// Unknown but present values get the 0.3 default; empty gets zero.
	assert.InDelta(t, 0.3, s.governmentScore("Techno-Feudalism"), 1e-9)
	assert.Zero(t, s.governmentScore(""))
	assert.InDelta(t, 0.3, s.factionStateScore("Infested"), 1e-9)
	assert.Zero(t, s.factionStateScore(""))

	// Security has no unknown-value default.
	assert.Zero(t, s.securityScore("Fortified"))
	assert.Zero(t, s.securityScore(""))
}

func TestScore_NilAndPlaceholderRecords(t *testing.T) {
	s := newTestScorer(nil)

	res, err := s.Score(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = s.Score(context.Background(), &galaxy.SystemRecord{Name: "Test"})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestScore_SkipsMarketBelowFloor(t *testing.T) {
	market := &stubMarket{}
	s := newTestScorer(market)

	rec := &galaxy.SystemRecord{
		Name:           "Shinrarta Dezhra",
		PrimaryEconomy: "Agriculture",
		Government:     "Democracy",
		Security:       "High",
		FactionState:   "Boom",
		Population:     85_000_000,
		Stations: []galaxy.Station{
			{Name: "Jameson Memorial", MarketID: 128666762, HasMarket: true},
		},
	}

	res, err := s.Score(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.SkippedMarket)
	assert.Zero(t, res.MarketDemandScore)
	assert.Zero(t, market.callCount(), "market must not be queried below the floor")
	assert.Empty(t, rec.BestCommodities)
}

func TestScore_FetchesMarketAboveFloor(t *testing.T) {
	market := &stubMarket{
		data: map[int64][]galaxy.Commodity{
			128001: {
				{Name: "Platinum", Demand: 20000, SellPrice: 220000},
				{Name: "Gold", Demand: 500, SellPrice: 48000},  // demand too low
				{Name: "Biowaste", Demand: 90000, SellPrice: 30}, // not valuable
			},
		},
	}
	s := newTestScorer(market)
	rec := hotspotRecord()

	res, err := s.Score(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.False(t, res.SkippedMarket)
	assert.Equal(t, 1, market.callCount())
	assert.InDelta(t, 0.1, res.MarketDemandScore, 1e-9)
	assert.InDelta(t, 86.0, res.FinalScore, 1e-9)

	// Only Platinum survives the demand and value filters.
	require.Len(t, rec.BestCommodities, 1)
	assert.Equal(t, "Platinum", rec.BestCommodities[0].Name)
	require.NotNil(t, res.BestCommodity)
	assert.Equal(t, "Platinum", res.BestCommodity.Name)

	assert.True(t, res.HasExtractionEconomy)
	assert.True(t, res.HasAnarchyGovernment)
	assert.True(t, res.HasLowSecurity)
}

func TestScore_ReusesCachedCommodities(t *testing.T) {
	market := &stubMarket{}
	s := newTestScorer(market)

	// Even a system below the floor scores its market when a previous run
	// already attached commodities.
	rec := &galaxy.SystemRecord{
		Name:           "Lave",
		PrimaryEconomy: "Agriculture",
		Government:     "Dictatorship",
		Security:       "Medium",
		Population:     25_000_000_000,
		BestCommodities: []galaxy.Commodity{
			{Name: "Gold", Demand: 15000},
		},
	}

	res, err := s.Score(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.False(t, res.SkippedMarket)
	assert.Zero(t, market.callCount(), "cached commodities must not trigger fetches")
	assert.InDelta(t, 0.8*0.1, res.MarketDemandScore, 1e-9)
	require.NotNil(t, res.BestCommodity)
	assert.Equal(t, "Gold", res.BestCommodity.Name)
}

func TestScore_RingSubScoreNeedsBodyData(t *testing.T) {
	s := newTestScorer(nil)

	unknown := hotspotRecord()
	unknown.Stations = nil
	res, err := s.Score(context.Background(), unknown)
	require.NoError(t, err)
	assert.Zero(t, res.NoRingsScore)
	assert.False(t, res.HasNoRings)

	bare := hotspotRecord()
	bare.Stations = nil
	bare.RingDataKnown = true
	res, err = s.Score(context.Background(), bare)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, res.NoRingsScore, 1e-9)
	assert.True(t, res.HasNoRings)

	ringed := hotspotRecord()
	ringed.Stations = nil
	ringed.RingDataKnown = true
	ringed.Rings = []galaxy.Ring{{Name: "A Ring"}}
	res, err = s.Score(context.Background(), ringed)
	require.NoError(t, err)
	assert.Zero(t, res.NoRingsScore)
	assert.False(t, res.HasNoRings)

	belted := hotspotRecord()
	belted.Stations = nil
	belted.RingDataKnown = true
	belted.Planets = []galaxy.Planet{{Name: "Kirre's Icebox", Type: "Belt Cluster"}}
	res, err = s.Score(context.Background(), belted)
	require.NoError(t, err)
	assert.Zero(t, res.NoRingsScore)
}

func TestScore_StationFailureDropsOnlyThatStation(t *testing.T) {
	market := &stubMarket{
		data: map[int64][]galaxy.Commodity{
			128002: {{Name: "Painite", Demand: 30000}},
		},
		errs: map[int64]error{
			128001: errors.New("market unavailable"),
		},
	}
	s := newTestScorer(market)

	rec := hotspotRecord()
	rec.Stations = append(rec.Stations, galaxy.Station{
		Name: "Cleve Hub", MarketID: 128002, HasMarket: true,
	})

	res, err := s.Score(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 2, market.callCount())
	assert.InDelta(t, 0.9*0.1, res.MarketDemandScore, 1e-9)
	require.NotNil(t, res.BestCommodity)
	assert.Equal(t, "Painite", res.BestCommodity.Name)
}

func TestScore_NoMarketStations(t *testing.T) {
	market := &stubMarket{}
	s := newTestScorer(market)

	rec := hotspotRecord()
	rec.Stations = []galaxy.Station{
		{Name: "Outpost", MarketID: 0, HasMarket: true},
		{Name: "Settlement", MarketID: 9, HasMarket: false},
	}

	res, err := s.Score(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.False(t, res.SkippedMarket)
	assert.Zero(t, market.callCount())
	assert.Zero(t, res.MarketDemandScore)
	assert.InDelta(t, 76.0, res.FinalScore, 1e-9)
}

func TestBestCommodity_WeightWinsThenDemand(t *testing.T) {
	s := newTestScorer(nil)

	rec := &galaxy.SystemRecord{
		BestCommodities: []galaxy.Commodity{
			{Name: "Gold", Demand: 50000},     // weight 0.8
			{Name: "Platinum", Demand: 12000}, // weight 1.0 wins despite lower demand
			{Name: "Osmium", Demand: 0},       // no demand, ignored
		},
	}
	best := s.bestCommodity(rec)
	require.NotNil(t, best)
	assert.Equal(t, "Platinum", best.Name)

	// Equal weights fall back to demand.
	rec.BestCommodities = []galaxy.Commodity{
		{Name: "Platinum", Demand: 12000},
		{Name: "Low Temperature Diamonds", Demand: 40000},
	}
	best = s.bestCommodity(rec)
	require.NotNil(t, best)
	assert.Equal(t, "Low Temperature Diamonds", best.Name)

	rec.BestCommodities = nil
	assert.Nil(t, s.bestCommodity(rec))
}

func TestScore_NilMarketProvider(t *testing.T) {
	s := newTestScorer(nil)
	rec := hotspotRecord()

	res, err := s.Score(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.False(t, res.SkippedMarket)
	assert.Zero(t, res.MarketDemandScore)
	assert.InDelta(t, 76.0, res.FinalScore, 1e-9)
}
