// Package spansh searches star systems near a reference point using the
// Spansh systems API: create a saved search, page through its results, and
// fall back to a direct per-system lookup when the search protocol fails.
// All results are memoized through the file cache for a day.
package spansh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"pirate-scout/internal/cache"
	"pirate-scout/internal/galaxy"
)

const (
	// DefaultBaseURL is the public Spansh API root.
	DefaultBaseURL = "https://spansh.co.uk/api"

	// pageSize is the maximum systems per result page. A short page marks
	// the end of the result set.
	pageSize = 500

	searchTTL = 24 * time.Hour
)

// ErrSearchCreation means the search-create call returned no reference token.
var ErrSearchCreation = errors.New("spansh: search reference missing from response")

// sentinelName is a placeholder entry in the upstream dataset, never a real
// system; it is dropped during parsing.
const sentinelName = "Test"

// Client talks to the Spansh systems API.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	cache   *cache.Cache
	log     zerolog.Logger

	// Politeness delays; shortened in tests.
	createDelay time.Duration
	pageDelay   time.Duration
}

// NewClient creates a Spansh client backed by the given file cache.
func NewClient(baseURL string, fileCache *cache.Cache, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		limiter:     rate.NewLimiter(rate.Limit(5), 5),
		cache:       fileCache,
		log:         log,
		createDelay: 500 * time.Millisecond,
		pageDelay:   100 * time.Millisecond,
	}
}

// SearchKey is the cache key for a reference+radius search.
func SearchKey(reference string, radiusLy int) string {
	return fmt.Sprintf("Search_%s_%d", reference, radiusLy)
}

// SearchSystemsNear returns the systems within radiusLy light years of the
// reference system. Network failures degrade internally, first to the
// per-system fallback and finally to an empty list; an empty list is the
// only way total failure is reported. The returned error is reserved for
// context cancellation.
func (c *Client) SearchSystemsNear(ctx context.Context, reference string, radiusLy int) ([]*galaxy.SystemRecord, error) {
	key := SearchKey(reference, radiusLy)

	return cache.GetOrCreate(c.cache, key, searchTTL, func() ([]*galaxy.SystemRecord, error) {
		ref, err := c.createSearch(ctx, reference, radiusLy)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Err(err).Str("reference", reference).Msg("search create failed, using fallback")
			return c.systemFallback(ctx, reference)
		}

		// Give the saved search a moment to become recallable.
		if err := sleepCtx(ctx, c.createDelay); err != nil {
			return nil, err
		}

		systems, err := c.recallAll(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Err(err).Str("reference", reference).Msg("search recall failed, using fallback")
			return c.systemFallback(ctx, reference)
		}
		return systems, nil
	})
}

// UpdateSearchCache replaces the cached result set for a search key with the
// given (typically market-enriched) records, so the next cache hit can skip
// re-fetching market data.
func (c *Client) UpdateSearchCache(reference string, radiusLy int, records []*galaxy.SystemRecord) error {
	return cache.Put(c.cache, SearchKey(reference, radiusLy), records)
}

// createSearch posts the filter description and returns the opaque
// search-reference token.
func (c *Client) createSearch(ctx context.Context, reference string, radiusLy int) (string, error) {
	payload := searchRequest{
		Filters: searchFilters{
			Distance: distanceFilter{Min: "0", Max: fmt.Sprintf("%d", radiusLy)},
		},
		Sort:            []any{},
		Size:            pageSize,
		ReferenceSystem: reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/systems/search/save", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spansh search create: status %d", resp.StatusCode)
	}

	var created searchCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("spansh search create: %w", err)
	}
	if created.SearchReference == "" {
		return "", ErrSearchCreation
	}
	return created.SearchReference, nil
}

// recallAll pages through the saved search until a short page. A failure on
// the first page is an error (the caller falls back); a failure on a later
// page ends pagination with the systems collected so far.
func (c *Client) recallAll(ctx context.Context, searchRef string) ([]*galaxy.SystemRecord, error) {
	var systems []*galaxy.SystemRecord

	for page := 0; ; page++ {
		results, err := c.recallPage(ctx, searchRef, page)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			c.log.Warn().Err(err).Int("page", page).Msg("page fetch failed, stopping pagination")
			return systems, nil
		}

		for _, p := range results {
			if p.Name == sentinelName {
				continue
			}
			systems = append(systems, parseSystem(p))
		}

		if len(results) < pageSize {
			return systems, nil
		}
		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return systems, err
		}
	}
}

func (c *Client) recallPage(ctx context.Context, searchRef string, page int) ([]systemPayload, error) {
	recallURL := fmt.Sprintf("%s/systems/search/recall/%s", c.baseURL, searchRef)
	if page > 0 {
		recallURL = fmt.Sprintf("%s/%d", recallURL, page)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recallURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spansh recall page %d: status %d", page, resp.StatusCode)
	}

	var recall recallResponse
	if err := json.NewDecoder(resp.Body).Decode(&recall); err != nil {
		return nil, fmt.Errorf("spansh recall page %d: %w", page, err)
	}
	return recall.Results, nil
}

// systemFallback looks up a single system by name against the direct systems
// endpoint. Returns at most one record; an empty list when that fails too.
func (c *Client) systemFallback(ctx context.Context, name string) ([]*galaxy.SystemRecord, error) {
	key := "System_" + name

	return cache.GetOrCreate(c.cache, key, searchTTL, func() ([]*galaxy.SystemRecord, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		reqURL := c.baseURL + "/systems/" + url.PathEscape(name)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return []*galaxy.SystemRecord{}, nil
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Warn().Err(err).Str("system", name).Msg("fallback lookup failed")
			return []*galaxy.SystemRecord{}, nil
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			c.log.Warn().Int("status", resp.StatusCode).Str("system", name).Msg("fallback lookup failed")
			return []*galaxy.SystemRecord{}, nil
		}

		var p systemPayload
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			c.log.Warn().Err(err).Str("system", name).Msg("fallback parse failed")
			return []*galaxy.SystemRecord{}, nil
		}
		if p.Name == "" || p.Name == sentinelName {
			return []*galaxy.SystemRecord{}, nil
		}
		return []*galaxy.SystemRecord{parseSystem(p)}, nil
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
