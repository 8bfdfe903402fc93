package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/domain/session"
	"storefront/internal/handler"
	"storefront/internal/storage/catalogfile"
	"storefront/internal/storage/kv"
	"storefront/internal/storage/kvstore"
	"storefront/internal/storage/postgres"
	"storefront/pkg/health"
	"storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Durable state store. A failure to open falls back to a memory-only
	// store: the session runs, nothing outlives the process.
	store, err := openStore(lg, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Catalog provider: database when configured, otherwise a feed file,
	// otherwise the embedded seed.
	provider, pool, err := openCatalog(ctx, lg, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("state-store", 5*time.Second,
		health.RoundTripCheck("health-probe", store.Set, store.Get))
	if pool != nil {
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Typed repositories over the state store.
	cartRepo := kvstore.NewCartRepository(store)
	sessionRepo := kvstore.NewSessionRepository(store)
	orderRepo := kvstore.NewOrderRepository(store)

	// Domain state, seeded from whatever survived the last run. Unreadable
	// blobs resolve to empty defaults; only store-level failures surface
	// here, and they downgrade to a warning.
	cartLines, err := cartRepo.Load()
	if err != nil {
		lg.Warn("Cart state unavailable, starting empty", zap.Error(err))
	}
	carts := cart.NewEngine(cartRepo, cartLines)

	issuer := session.NewTokenIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL)
	sessions := session.NewStore(sessionRepo, issuer, carts)
	if err := sessions.Restore(); err != nil {
		lg.Warn("Session state unavailable, starting anonymous", zap.Error(err))
	}

	history, err := orderRepo.Load()
	if err != nil {
		lg.Warn("Order history unavailable, starting empty", zap.Error(err))
	}
	orders := order.NewService(carts, orderRepo, history)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(provider, sessions, carts, orders, nil).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openStore opens the embedded store at dir. When the store cannot be opened
// the app degrades to memory-only state instead of refusing to start.
func openStore(lg *zap.Logger, dir string) (kv.Store, error) {
	db, err := kv.OpenPebble(dir)
	if err != nil {
		lg.Warn("State store unavailable, running memory-only",
			zap.String("dir", dir),
			zap.Error(err),
		)
		return kv.NewMemory(), nil
	}
	return db, nil
}

// openCatalog selects a catalog provider. The returned pool is non-nil only
// for the database-backed provider; the caller owns closing it.
func openCatalog(ctx context.Context, lg *zap.Logger, cfg *Config) (catalog.Provider, *pgxpool.Pool, error) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		lg.Info("Catalog source: postgres")
		return postgres.NewCatalogProvider(pool), pool, nil

	case cfg.CatalogFile != "":
		lg.Info("Catalog source: file", zap.String("path", cfg.CatalogFile))
		return catalogfile.NewFileProvider(cfg.CatalogFile), nil, nil

	default:
		lg.Info("Catalog source: embedded seed")
		return catalogfile.NewEmbeddedProvider(), nil, nil
	}
}
