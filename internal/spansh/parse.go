package spansh

import "pirate-scout/internal/galaxy"

// parseSystem converts one search-result element into a SystemRecord.
// Carrier stations are dropped here so downstream code never sees them.
// Ring data is only marked known when the payload actually carried a bodies
// list; an absent list means "unknown", not "no rings".
func parseSystem(p systemPayload) *galaxy.SystemRecord {
	rec := &galaxy.SystemRecord{
		Name:             p.Name,
		Security:         p.Security,
		Population:       p.Population,
		PrimaryEconomy:   p.PrimaryEconomy,
		SecondaryEconomy: p.SecondaryEconomy,
		Government:       p.Government,
		FactionState:     p.ControllingMinorFactionState,
		RingDataKnown:    p.Bodies != nil,
	}

	for _, b := range p.Bodies {
		rec.Planets = append(rec.Planets, galaxy.Planet{
			Name:              b.Name,
			Type:              b.Type,
			HasRings:          len(b.Rings) > 0,
			DistanceToArrival: b.DistanceToArrival,
		})
		for _, r := range b.Rings {
			rec.Rings = append(rec.Rings, galaxy.Ring{
				Name:        r.Name,
				Composition: r.Type,
			})
		}
	}

	for _, s := range p.Stations {
		if galaxy.IsCarrierStation(s.Type) {
			continue
		}
		rec.Stations = append(rec.Stations, galaxy.Station{
			ID:                s.ID,
			Name:              s.Name,
			Type:              s.Type,
			DistanceToArrival: s.DistanceToArrival,
			HasMarket:         s.HasMarket,
			MarketID:          s.MarketID,
		})
	}

	for _, f := range p.MinorFactionPresences {
		rec.Factions = append(rec.Factions, galaxy.FactionPresence{
			Name:      f.Name,
			State:     f.State,
			Influence: f.Influence,
		})
	}

	return rec
}
