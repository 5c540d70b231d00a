// Package galaxy holds the domain records shared by the data providers and
// the scoring engine: star systems, their stations, factions and market data.
package galaxy

import "strings"

// SystemRecord is one star system as assembled from the upstream APIs.
// BestCommodities is populated lazily during scoring; everything else is
// immutable once parsed.
type SystemRecord struct {
	Name               string `json:"name"`
	Security           string `json:"security"`
	Population         int64  `json:"population"`
	PrimaryEconomy     string `json:"primary_economy"`
	SecondaryEconomy   string `json:"secondary_economy"`
	Government         string `json:"government"`
	Allegiance         string `json:"allegiance,omitempty"`
	ControllingFaction string `json:"controlling_faction,omitempty"`
	FactionState       string `json:"faction_state"`

	// RingDataKnown reports whether the source payload carried body/ring
	// data at all. When false, ring-related scoring is omitted rather than
	// guessed.
	RingDataKnown bool `json:"ring_data_known"`

	Rings    []Ring            `json:"rings,omitempty"`
	Planets  []Planet          `json:"planets,omitempty"`
	Stations []Station         `json:"stations,omitempty"`
	Factions []FactionPresence `json:"minor_faction_presences,omitempty"`
	Traffic  *Traffic          `json:"traffic,omitempty"`

	// BestCommodities is cleared and rebuilt by each full market pass.
	BestCommodities []Commodity `json:"best_commodities,omitempty"`
}

// Station is a dockable station inside a system. Fleet carriers are filtered
// out during parsing and never appear here.
type Station struct {
	ID                int64   `json:"id,omitempty"`
	MarketID          int64   `json:"market_id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	DistanceToArrival float64 `json:"distance_to_arrival"`
	HasMarket         bool    `json:"has_market"`
}

// FactionPresence is a minor faction present in a system. Influence is not
// used by scoring but is kept for callers.
type FactionPresence struct {
	Name      string  `json:"name"`
	State     string  `json:"state,omitempty"`
	Influence float64 `json:"influence,omitempty"`
}

// Planet is a body in the system, kept for ring/belt detection.
type Planet struct {
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	HasRings          bool    `json:"has_rings"`
	DistanceToArrival float64 `json:"distance_to_arrival"`
}

// Ring is a planetary ring.
type Ring struct {
	Name        string `json:"name"`
	Composition string `json:"composition,omitempty"`
}

// Traffic is EDSM traffic telemetry for a system.
type Traffic struct {
	Total int `json:"total"`
	Week  int `json:"week"`
	Day   int `json:"day"`
}

// Commodity is one market listing kept after demand filtering.
type Commodity struct {
	Name          string `json:"name"`
	BuyPrice      int    `json:"buy_price"`
	SellPrice     int    `json:"sell_price"`
	Demand        int    `json:"demand"`
	Stock         int    `json:"stock"`
	DemandBracket int    `json:"demand_bracket"`
	StockBracket  int    `json:"stock_bracket"`
}

// MarketStations returns the stations that actually trade: a market flag and
// a usable market id.
func (s *SystemRecord) MarketStations() []Station {
	var out []Station
	for _, st := range s.Stations {
		if st.HasMarket && st.MarketID > 0 {
			out = append(out, st)
		}
	}
	return out
}

// HasPirateFaction reports whether any resident faction name marks the system
// as pirate-aligned.
func (s *SystemRecord) HasPirateFaction() bool {
	for _, f := range s.Factions {
		if strings.Contains(f.Name, "Pirate") || strings.Contains(f.Name, "Criminal") {
			return true
		}
	}
	return false
}

// HasRings reports whether any ring was recorded for the system.
func (s *SystemRecord) HasRings() bool {
	return len(s.Rings) > 0
}

// HasBeltClusters reports whether any body is an asteroid belt cluster.
func (s *SystemRecord) HasBeltClusters() bool {
	for _, p := range s.Planets {
		if strings.EqualFold(p.Type, "Belt Cluster") {
			return true
		}
	}
	return false
}

// IsCarrierStation reports whether a station type denotes a player-owned
// fleet carrier. Carriers move around and are useless for scoring.
func IsCarrierStation(stationType string) bool {
	return strings.Contains(stationType, "Carrier")
}
