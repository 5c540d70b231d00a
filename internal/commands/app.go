package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pirate-scout/internal/cache"
	"pirate-scout/internal/config"
	"pirate-scout/internal/edsm"
	"pirate-scout/internal/engine"
	"pirate-scout/internal/logger"
	"pirate-scout/internal/spansh"
	"pirate-scout/internal/store"
)

// app holds the wired-up dependencies a command needs. Build one per command
// invocation and Close it when done.
type app struct {
	settings *config.Settings
	scoring  *config.ScoringConfig
	log      zerolog.Logger

	cache  *cache.Cache
	store  *store.Store
	spansh *spansh.Client

	// edsm is nil until an API key is configured.
	edsm *edsm.Client

	scorer   *engine.Scorer
	orch     *engine.Orchestrator
	analyzer *engine.Analyzer
}

func newApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(level, settings.LogFormat)

	scoring := config.DefaultScoring()
	if scoringFile != "" {
		scoring, err = config.LoadScoring(scoringFile)
		if err != nil {
			return nil, err
		}
	}

	fileCache, err := cache.New(settings.CacheDir, 24*time.Hour, log)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	st, err := store.Open(settings.DataDir, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: settings,
		scoring:  scoring,
		log:      log,
		cache:    fileCache,
		store:    st,
		spansh:   spansh.NewClient(settings.SpanshBaseURL, fileCache, log),
	}

	// EDSM needs an API key; without one, market and system lookups are
	// simply unavailable rather than fatal.
	edsmClient, err := edsm.NewClient(settings.EDSMBaseURL, st.KeyProvider(), log)
	switch {
	case err == nil:
		a.edsm = edsmClient
	case errors.Is(err, edsm.ErrAPIKeyMissing):
		log.Debug().Msg("no EDSM API key configured, market data disabled")
	default:
		st.Close()
		return nil, err
	}

	var market engine.MarketProvider
	if a.edsm != nil {
		market = a.edsm
	}
	a.scorer = engine.NewScorer(scoring, market, log)
	a.orch = engine.NewOrchestrator(a.scorer, settings.Concurrency, log)
	a.analyzer = engine.NewAnalyzer(a.spansh, a.orch, log)

	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
