// Package edsm fetches per-system and per-station data from EDSM: market
// listings by market id, plus system information, bodies and stations merged
// into a complete record. EDSM enforces per-key rate limits, so the client
// refuses to start without a configured API key, throttles itself, and
// memoizes responses in-process with singleflight-coalesced fetches.
package edsm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"pirate-scout/internal/galaxy"
)

// DefaultBaseURL is the public EDSM API root.
const DefaultBaseURL = "https://www.edsm.net"

// ErrAPIKeyMissing is returned by NewClient when no API key is configured.
var ErrAPIKeyMissing = errors.New("edsm: api key is not configured")

// KeyProvider supplies the EDSM API key.
type KeyProvider interface {
	Key() string
	IsConfigured() bool
}

// Per-endpoint memoization TTLs. Market data is the most volatile.
const (
	systemTTL   = time.Hour
	bodiesTTL   = 6 * time.Hour
	stationsTTL = 3 * time.Hour
	marketTTL   = 30 * time.Minute
)

type memoEntry struct {
	value   any
	expires time.Time
}

// Client is a rate-limited EDSM API client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	group   singleflight.Group
	log     zerolog.Logger

	mu   sync.RWMutex
	memo map[string]memoEntry
}

// NewClient creates an EDSM client. It fails fast when the key provider has
// no key: unauthenticated calls run under a much tighter rate limit and
// would poison the whole batch.
func NewClient(baseURL string, keys KeyProvider, log zerolog.Logger) (*Client, error) {
	if keys == nil || !keys.IsConfigured() || keys.Key() == "" {
		return nil, ErrAPIKeyMissing
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  keys.Key(),
		limiter: rate.NewLimiter(rate.Limit(4), 4),
		sem:     semaphore.NewWeighted(2),
		log:     log,
		memo:    make(map[string]memoEntry),
	}, nil
}

// MarketData returns the commodity listing for a station market.
func (c *Client) MarketData(ctx context.Context, marketID int64) ([]galaxy.Commodity, error) {
	key := fmt.Sprintf("market_%d", marketID)
	v, err := c.cached(ctx, key, marketTTL, func() (any, error) {
		var resp marketResponse
		q := url.Values{"marketId": {fmt.Sprintf("%d", marketID)}}
		if err := c.getJSON(ctx, "/api-system-v1/stations/market", q, &resp); err != nil {
			return nil, err
		}
		out := make([]galaxy.Commodity, 0, len(resp.Commodities))
		for _, cm := range resp.Commodities {
			out = append(out, galaxy.Commodity{
				Name:          cm.Name,
				BuyPrice:      cm.BuyPrice,
				SellPrice:     cm.SellPrice,
				Demand:        cm.Demand,
				Stock:         cm.Stock,
				DemandBracket: cm.DemandBracket,
				StockBracket:  cm.StockBracket,
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]galaxy.Commodity), nil
}

// systemInfo returns basic system information and traffic telemetry.
func (c *Client) systemInfo(ctx context.Context, name string) (*systemResponse, error) {
	key := "system_" + name
	v, err := c.cached(ctx, key, systemTTL, func() (any, error) {
		var resp systemResponse
		q := url.Values{"systemName": {name}, "showInformation": {"1"}}
		if err := c.getJSON(ctx, "/api-v1/system", q, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*systemResponse), nil
}

func (c *Client) bodies(ctx context.Context, name string) (*bodiesResponse, error) {
	key := "bodies_" + name
	v, err := c.cached(ctx, key, bodiesTTL, func() (any, error) {
		var resp bodiesResponse
		q := url.Values{"systemName": {name}}
		if err := c.getJSON(ctx, "/api-system-v1/bodies", q, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*bodiesResponse), nil
}

func (c *Client) stations(ctx context.Context, name string) ([]stationPayload, error) {
	key := "stations_" + name
	v, err := c.cached(ctx, key, stationsTTL, func() (any, error) {
		var resp stationsResponse
		q := url.Values{"systemName": {name}}
		if err := c.getJSON(ctx, "/api-system-v1/stations", q, &resp); err != nil {
			return nil, err
		}
		return resp.Stations, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]stationPayload), nil
}

// CompleteSystem fetches system information, bodies and stations in parallel
// and merges them into one record. Unlike the search provider, this path
// carries ring data, so the record's RingDataKnown is set.
func (c *Client) CompleteSystem(ctx context.Context, name string) (*galaxy.SystemRecord, error) {
	var (
		info     *systemResponse
		bodies   *bodiesResponse
		stations []stationPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = c.systemInfo(gctx, name)
		return err
	})
	g.Go(func() error {
		var err error
		bodies, err = c.bodies(gctx, name)
		return err
	})
	g.Go(func() error {
		var err error
		stations, err = c.stations(gctx, name)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := &galaxy.SystemRecord{Name: name, RingDataKnown: true}
	if info != nil && info.Information != nil {
		rec.Security = info.Information.Security
		rec.Population = info.Information.Population
		rec.PrimaryEconomy = info.Information.Economy
		rec.SecondaryEconomy = info.Information.SecondEconomy
		rec.Government = info.Information.Government
		rec.Allegiance = info.Information.Allegiance
		rec.ControllingFaction = info.Information.ControllingFaction
		rec.FactionState = info.Information.FactionState
	}
	if info != nil && info.Traffic != nil {
		rec.Traffic = &galaxy.Traffic{
			Total: info.Traffic.Total,
			Week:  info.Traffic.Week,
			Day:   info.Traffic.Day,
		}
	}
	if bodies != nil {
		for _, b := range bodies.Bodies {
			rec.Planets = append(rec.Planets, galaxy.Planet{
				Name:              b.Name,
				Type:              b.Type,
				HasRings:          len(b.Rings) > 0,
				DistanceToArrival: b.DistanceToArrival,
			})
			for _, r := range b.Rings {
				rec.Rings = append(rec.Rings, galaxy.Ring{Name: r.Name, Composition: r.Type})
			}
		}
	}
	for _, s := range stations {
		if galaxy.IsCarrierStation(s.Type) {
			continue
		}
		rec.Stations = append(rec.Stations, galaxy.Station{
			ID:                s.ID,
			MarketID:          s.MarketID,
			Name:              s.Name,
			Type:              s.Type,
			DistanceToArrival: s.DistanceToArrival,
			HasMarket:         s.HaveMarket,
		})
	}
	return rec, nil
}

// cached serves key from the in-process memo, coalescing concurrent fetches
// for the same key through singleflight.
func (c *Client) cached(ctx context.Context, key string, ttl time.Duration, fetch func() (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.memo[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expires) {
		return e.value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check: another flight may have refreshed the entry.
		c.mu.RLock()
		e, ok := c.memo[key]
		c.mu.RUnlock()
		if ok && time.Now().Before(e.expires) {
			return e.value, nil
		}

		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.sem.Release(1)

		value, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.memo[key] = memoEntry{value: value, expires: time.Now().Add(ttl)}
		c.mu.Unlock()
		return value, nil
	})
	return v, err
}

// getJSON performs a rate-limited GET with the API key appended.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	query.Set("apiKey", c.apiKey)
	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pirate-scout/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("edsm %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// StaticKey is a KeyProvider for a key known up front (tests, env overrides).
type StaticKey string

// Key returns the key value.
func (s StaticKey) Key() string { return string(s) }

// IsConfigured reports whether the key is non-empty.
func (s StaticKey) IsConfigured() bool { return s != "" }
