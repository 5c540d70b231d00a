package engine

import (
	"fmt"
	"time"

	"pirate-scout/internal/galaxy"
)

// ScoreResult is the scored outcome for one system. Sub-scores are already
// weighted; FinalScore is their sum scaled to 0-100 once, at the end.
// Immutable after scoring except for SavedAt, which the persistence layer
// stamps when the user saves the result.
type ScoreResult struct {
	SystemName string `json:"system_name"`

	EconomyScore      float64 `json:"economy_score"`
	NoRingsScore      float64 `json:"no_rings_score"`
	GovernmentScore   float64 `json:"government_score"`
	SecurityScore     float64 `json:"security_score"`
	FactionStateScore float64 `json:"faction_state_score"`
	PopulationScore   float64 `json:"population_score"`
	MarketDemandScore float64 `json:"market_demand_score"`

	FinalScore float64 `json:"final_score"`

	// SkippedMarket marks that the market sub-score was not computed
	// because the system could not reach a useful final score anyway.
	SkippedMarket bool `json:"skipped_market"`

	// Explanatory flags for display; they do not feed the score.
	HasIndustrialEconomy bool `json:"has_industrial_economy"`
	HasExtractionEconomy bool `json:"has_extraction_economy"`
	HasAnarchyGovernment bool `json:"has_anarchy_government"`
	HasLowSecurity       bool `json:"has_low_security"`
	HasPirateFaction     bool `json:"has_pirate_faction"`
	HasNoRings           bool `json:"has_no_rings"`

	BestCommodity *galaxy.Commodity `json:"best_commodity,omitempty"`

	SavedAt time.Time `json:"saved_at,omitempty"`
}

// String renders a human-readable score breakdown.
func (r *ScoreResult) String() string {
	return fmt.Sprintf("%s: %.2f/100\n"+
		"  Economy: %.2f\n"+
		"  No Rings/Belts: %.2f\n"+
		"  Government: %.2f\n"+
		"  Security: %.2f\n"+
		"  Faction State: %.2f\n"+
		"  Population: %.2f\n"+
		"  Market Demand: %.2f",
		r.SystemName, r.FinalScore,
		r.EconomyScore, r.NoRingsScore, r.GovernmentScore, r.SecurityScore,
		r.FactionStateScore, r.PopulationScore, r.MarketDemandScore)
}
