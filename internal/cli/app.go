package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/config"
	"github.com/youruser/deckbuilder/internal/deck"
	"github.com/youruser/deckbuilder/internal/logging"
	"github.com/youruser/deckbuilder/internal/ratelimit"
	"github.com/youruser/deckbuilder/internal/storage"
)

// app holds the long-lived dependencies every command builds from config.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	db      *sql.DB
	catalog cards.Catalog
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	catalog, err := newCatalog(cfg.Catalog, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db, catalog: catalog}, nil
}

func newCatalog(cfg config.CatalogConfig, logger *zap.Logger) (cards.Catalog, error) {
	if cfg.Source == config.CatalogLocal {
		all, err := cards.LoadCardsFromDataDir(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load local catalog: %w", err)
		}
		local := cards.NewLocalCatalog(all)
		logger.Info("local catalog loaded", zap.String("dir", cfg.DataDir), zap.Int("cards", local.Len()))
		return local, nil
	}
	return cards.NewClient(cfg.BaseURL,
		cards.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		cards.WithLogger(logger.Named("catalog")),
	), nil
}

func (a *app) engine() *deck.Engine {
	return deck.NewEngine(storage.NewDeckStore(a.db),
		deck.WithLogger(a.logger.Named("deck")),
		deck.WithSaveLimit(a.cfg.Decks.SaveLimit),
	)
}

// limiter builds the request limiter. Memory counters are swept once per
// window until ctx ends.
func (a *app) limiter(ctx context.Context) *ratelimit.Limiter {
	rl := a.cfg.RateLimit
	if rl.Store == config.RateStoreSQLite {
		return ratelimit.New(storage.NewRateLimitStore(a.db), rl.Limit, rl.Window)
	}
	mem := ratelimit.NewMemoryStore()
	go func() {
		t := time.NewTicker(rl.Window)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := mem.Sweep(now, rl.Window); n > 0 {
					a.logger.Debug("rate limit windows swept", zap.Int("count", n))
				}
			}
		}
	}()
	return ratelimit.New(mem, rl.Limit, rl.Window)
}

func (a *app) Close() {
	a.db.Close()
	_ = a.logger.Sync()
}
