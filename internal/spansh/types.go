package spansh

// Wire shapes for the Spansh systems search API. Unknown or missing fields
// decode to zero values; parsing never fails on an individual field.

type searchRequest struct {
	Filters         searchFilters `json:"filters"`
	Sort            []any         `json:"sort"`
	Size            int           `json:"size"`
	ReferenceSystem string        `json:"reference_system"`
}

type searchFilters struct {
	Distance distanceFilter `json:"distance"`
}

type distanceFilter struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type searchCreateResponse struct {
	SearchReference string `json:"search_reference"`
}

type recallResponse struct {
	Results []systemPayload `json:"results"`
}

type systemPayload struct {
	Name                         string           `json:"name"`
	Security                     string           `json:"security"`
	Population                   int64            `json:"population"`
	PrimaryEconomy               string           `json:"primary_economy"`
	SecondaryEconomy             string           `json:"secondary_economy"`
	Government                   string           `json:"government"`
	ControllingMinorFactionState string           `json:"controlling_minor_faction_state"`
	Bodies                       []bodyPayload    `json:"bodies"`
	Stations                     []stationPayload `json:"stations"`
	MinorFactionPresences        []factionPayload `json:"minor_faction_presences"`
}

type bodyPayload struct {
	Name              string        `json:"name"`
	Type              string        `json:"type"`
	DistanceToArrival float64       `json:"distance_to_arrival"`
	Rings             []ringPayload `json:"rings"`
}

type ringPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type stationPayload struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	DistanceToArrival float64 `json:"distance_to_arrival"`
	HasMarket         bool    `json:"has_market"`
	MarketID          int64   `json:"market_id"`
}

type factionPayload struct {
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Influence float64 `json:"influence"`
}
