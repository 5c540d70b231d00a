package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ScoringConfig is the weighted rubric used to score a system for piracy.
// Weights say how much each category contributes; the multiplier tables map
// categorical values onto [0, 1]. Lookups of values absent from a table fall
// back to per-category defaults inside the engine, so the tables never need
// to be exhaustive. Treated as read-only after load.
type ScoringConfig struct {
	EconomyScoreWeight      float64 `json:"economy_score_weight"`
	NoRingsScoreWeight      float64 `json:"no_rings_score_weight"`
	GovernmentScoreWeight   float64 `json:"government_score_weight"`
	SecurityScoreWeight     float64 `json:"security_score_weight"`
	FactionStateScoreWeight float64 `json:"faction_state_score_weight"`
	PopulationScoreWeight   float64 `json:"population_score_weight"`
	MarketDemandScoreWeight float64 `json:"market_demand_score_weight"`

	EconomyMultipliers      map[string]float64 `json:"economy_multipliers"`
	GovernmentMultipliers   map[string]float64 `json:"government_multipliers"`
	SecurityMultipliers     map[string]float64 `json:"security_multipliers"`
	FactionStateMultipliers map[string]float64 `json:"faction_state_multipliers"`
	PopulationMultipliers   map[string]float64 `json:"population_multipliers"`

	DemandThresholds    map[string]float64 `json:"demand_thresholds"`
	ValuableCommodities map[string]float64 `json:"valuable_commodities"`
}

// Population bracket keys. Lower bounds are inclusive, upper bounds exclusive.
const (
	PopUnder1M   = "<1M"
	Pop1Mto100M  = "1M-100M"
	Pop100Mto1B  = "100M-1B"
	Pop1Bto10B   = "1B-10B"
	PopOver10B   = "10B+"
)

// DefaultScoring returns the built-in rubric. Anarchy, extraction and low
// security push a system up; market demand tops it off.
func DefaultScoring() *ScoringConfig {
	return &ScoringConfig{
		EconomyScoreWeight:      0.25,
		NoRingsScoreWeight:      0.05,
		GovernmentScoreWeight:   0.20,
		SecurityScoreWeight:     0.15,
		FactionStateScoreWeight: 0.10,
		PopulationScoreWeight:   0.15,
		MarketDemandScoreWeight: 0.10,

		EconomyMultipliers: map[string]float64{
			"Extraction":  1.0,
			"Industrial":  0.9,
			"Refinery":    0.8,
			"High Tech":   0.7,
			"Terraforming": 0.5,
			"Military":    0.4,
			"Tourism":     0.4,
			"Service":     0.3,
			"Colony":      0.3,
			"Agriculture": 0.1,
		},
		GovernmentMultipliers: map[string]float64{
			"Anarchy":       1.0,
			"Feudal":        0.7,
			"Dictatorship":  0.6,
			"Prison Colony": 0.5,
			"Patronage":     0.5,
			"Confederacy":   0.5,
			"Corporate":     0.4,
			"Communism":     0.4,
			"Cooperative":   0.4,
			"Theocracy":     0.4,
			"Democracy":     0.1,
		},
		SecurityMultipliers: map[string]float64{
			"Anarchy": 1.0,
			"None":    0.95,
			"Low":     0.9,
			"Medium":  0.3,
			"High":    0.0,
		},
		FactionStateMultipliers: map[string]float64{
			"Civil Unrest": 1.0,
			"War":          0.9,
			"Civil War":    0.9,
			"Bust":         0.8,
			"Famine":       0.8,
			"Outbreak":     0.7,
			"Lockdown":     0.6,
			"Retreat":      0.5,
			"Election":     0.4,
			"Boom":         0.4,
			"Expansion":    0.3,
			"Investment":   0.3,
			"None":         0.2,
		},
		PopulationMultipliers: map[string]float64{
			PopUnder1M:  0.2,
			Pop1Mto100M: 0.6,
			Pop100Mto1B: 0.8,
			Pop1Bto10B:  1.0,
			PopOver10B:  0.9,
		},
		DemandThresholds: map[string]float64{
			"Low":    1000,
			"Medium": 5000,
			"High":   10000,
		},
		ValuableCommodities: map[string]float64{
			"Platinum":                 1.0,
			"Low Temperature Diamonds": 1.0,
			"Painite":                  0.9,
			"Palladium":                0.9,
			"Gold":                     0.8,
			"Osmium":                   0.7,
			"Silver":                   0.7,
			"Tritium":                  0.6,
			"Bertrandite":              0.5,
		},
	}
}

// LoadScoring reads a rubric from a JSON file. Fields absent from the file
// keep their default values, so a partial override is fine.
func LoadScoring(path string) (*ScoringConfig, error) {
	cfg := DefaultScoring()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scoring config: %w", err)
	}
	return cfg, nil
}

// HighDemandThreshold returns the demand a commodity listing must meet to
// count toward the market sub-score.
func (c *ScoringConfig) HighDemandThreshold() float64 {
	if v, ok := c.DemandThresholds["High"]; ok {
		return v
	}
	return 10000
}
