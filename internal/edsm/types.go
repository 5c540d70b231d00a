package edsm

// Wire shapes for the EDSM v1 APIs.

type systemResponse struct {
	Name        string             `json:"name"`
	Information *systemInformation `json:"information"`
	Traffic     *trafficPayload    `json:"traffic"`
}

type systemInformation struct {
	Security           string `json:"security"`
	Population         int64  `json:"population"`
	Economy            string `json:"economy"`
	SecondEconomy      string `json:"secondEconomy"`
	Government         string `json:"government"`
	Allegiance         string `json:"allegiance"`
	ControllingFaction string `json:"controllingFaction"`
	FactionState       string `json:"factionState"`
}

type trafficPayload struct {
	Total int `json:"total"`
	Week  int `json:"week"`
	Day   int `json:"day"`
}

type bodiesResponse struct {
	Name   string        `json:"name"`
	Bodies []bodyPayload `json:"bodies"`
}

type bodyPayload struct {
	ID                int64         `json:"id"`
	Name              string        `json:"name"`
	Type              string        `json:"type"`
	SubType           string        `json:"subType"`
	DistanceToArrival float64       `json:"distanceToArrival"`
	Rings             []ringPayload `json:"rings"`
}

type ringPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type stationsResponse struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Stations []stationPayload `json:"stations"`
}

type stationPayload struct {
	ID                int64   `json:"id"`
	MarketID          int64   `json:"marketId"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	DistanceToArrival float64 `json:"distanceToArrival"`
	HaveMarket        bool    `json:"haveMarket"`
}

type marketResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Commodities []commodityPayload `json:"commodities"`
}

type commodityPayload struct {
	Name          string `json:"name"`
	BuyPrice      int    `json:"buyPrice"`
	SellPrice     int    `json:"sellPrice"`
	Demand        int    `json:"demand"`
	Stock         int    `json:"stock"`
	DemandBracket int    `json:"demandBracket"`
	StockBracket  int    `json:"stockBracket"`
}
