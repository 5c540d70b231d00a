package edsm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_FailsFastWithoutKey(t *testing.T) {
	_, err := NewClient(DefaultBaseURL, StaticKey(""), zerolog.Nop())
	assert.ErrorIs(t, err, ErrAPIKeyMissing)

	_, err = NewClient(DefaultBaseURL, nil, zerolog.Nop())
	assert.ErrorIs(t, err, ErrAPIKeyMissing)

	c, err := NewClient(DefaultBaseURL, StaticKey("k"), zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestMarketData_RoundTrip(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/api-system-v1/stations/market", r.URL.Path)
		assert.Equal(t, "3228342528", r.URL.Query().Get("marketId"))
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		w.Write([]byte(`{
			"id": 3228342528, "name": "Azeban City",
			"commodities": [
				{"name":"Gold","buyPrice":9000,"sellPrice":9400,"demand":12000,"stock":0,"demandBracket":3,"stockBracket":0}
			]
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, StaticKey("secret"), zerolog.Nop())
	require.NoError(t, err)

	listing, err := c.MarketData(context.Background(), 3228342528)
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, "Gold", listing[0].Name)
	assert.Equal(t, 12000, listing[0].Demand)
	assert.Equal(t, 3, listing[0].DemandBracket)

	// Second call comes from the memo.
	_, err = c.MarketData(context.Background(), 3228342528)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteSystem_MergesSystemBodiesStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api-v1/system":
			assert.Equal(t, "Eranin", r.URL.Query().Get("systemName"))
			w.Write([]byte(`{
				"name": "Eranin",
				"information": {
					"security": "Anarchy", "population": 450000,
					"economy": "Extraction", "secondEconomy": "Industrial",
					"government": "Anarchy", "allegiance": "Independent",
					"controllingFaction": "Eranin Peoples Party", "factionState": "Civil Unrest"
				},
				"traffic": {"total": 977, "week": 53, "day": 7}
			}`))
		case "/api-system-v1/bodies":
			w.Write([]byte(`{
				"name": "Eranin",
				"bodies": [
					{"name":"Eranin A","type":"Star","rings":[]},
					{"name":"Eranin 2","type":"Planet","rings":[{"name":"Eranin 2 A Ring","type":"Rocky"}]}
				]
			}`))
		case "/api-system-v1/stations":
			w.Write([]byte(`{
				"name": "Eranin",
				"stations": [
					{"id":1,"marketId":55,"name":"Azeban City","type":"Coriolis Starport","haveMarket":true},
					{"id":2,"marketId":66,"name":"H9K-T3M","type":"Fleet Carrier","haveMarket":true}
				]
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, StaticKey("secret"), zerolog.Nop())
	require.NoError(t, err)

	rec, err := c.CompleteSystem(context.Background(), "Eranin")
	require.NoError(t, err)

	assert.Equal(t, "Eranin", rec.Name)
	assert.Equal(t, "Anarchy", rec.Security)
	assert.Equal(t, int64(450000), rec.Population)
	assert.Equal(t, "Extraction", rec.PrimaryEconomy)
	assert.Equal(t, "Civil Unrest", rec.FactionState)
	assert.True(t, rec.RingDataKnown)
	assert.True(t, rec.HasRings())
	require.NotNil(t, rec.Traffic)
	assert.Equal(t, 977, rec.Traffic.Total)

	// Carrier dropped, real station kept.
	require.Len(t, rec.Stations, 1)
	assert.Equal(t, "Azeban City", rec.Stations[0].Name)
	assert.Equal(t, int64(55), rec.Stations[0].MarketID)
}

func TestCompleteSystem_ErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, StaticKey("secret"), zerolog.Nop())
	require.NoError(t, err)

	_, err = c.CompleteSystem(context.Background(), "Eranin")
	assert.Error(t, err)
}
