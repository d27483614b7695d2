// Command server runs the bank account API. Stores are selected by
// configuration: with DATABASE_URL set everything persists in PostgreSQL,
// without it the service runs entirely in memory. REDIS_URL enables the
// account read cache.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	accallocator "finbank/internal/accounts/allocator"
	acccache "finbank/internal/accounts/cache"
	acchandler "finbank/internal/accounts/handler"
	accmetrics "finbank/internal/accounts/metrics"
	accservice "finbank/internal/accounts/service"
	accstore "finbank/internal/accounts/store"
	"finbank/internal/audit"
	authhandler "finbank/internal/auth/handler"
	authservice "finbank/internal/auth/service"
	httpapi "finbank/internal/http"
	ledgerhandler "finbank/internal/ledger/handler"
	ledgermetrics "finbank/internal/ledger/metrics"
	ledgerservice "finbank/internal/ledger/service"
	ledgerstore "finbank/internal/ledger/store"
	"finbank/internal/platform/config"
	"finbank/internal/platform/httpserver"
	"finbank/internal/platform/logger"
	"finbank/internal/platform/metrics"
	"finbank/internal/platform/postgres"
	"finbank/internal/platform/ratelimit"
	"finbank/internal/platform/redis"
	userhandler "finbank/internal/users/handler"
	usermetrics "finbank/internal/users/metrics"
	userservice "finbank/internal/users/service"
	userstore "finbank/internal/users/store"
)

const auditInboxSize = 256

func main() {
	log := logger.New()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info("postgres connected")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	// Stores.
	var (
		users    userservice.Store
		accounts accservice.Store
		checker  accallocator.NumberChecker
		finder   ledgerservice.AccountFinder
		counter  userservice.AccountCounter
		ledger   ledgerservice.Store
		auditDst audit.Store
	)
	if db != nil {
		users = userstore.NewPostgres(db)
		accStore := accstore.NewPostgres(db)
		accounts, checker, finder, counter = accStore, accStore, accStore, accStore
		ledger = ledgerstore.NewPostgres(db)
		auditDst = audit.NewPostgresStore(db)
	} else {
		users = userstore.NewInMemory()
		accStore := accstore.NewInMemory()
		accounts, checker, finder, counter = accStore, accStore, accStore, accStore
		ledger = ledgerstore.NewInMemory(accStore)
		auditDst = audit.NewInMemoryStore()
	}

	// Audit pipeline: services emit into a bounded inbox, the worker drains
	// it to the store. Emission never blocks a request.
	inbox := make(chan audit.Event, auditInboxSize)
	recorder := audit.NewPublisher(inbox, log)
	auditWorker := audit.NewWorker(auditDst, inbox, log)

	platformMetrics := metrics.New()

	// Services.
	userSvc := userservice.New(users, counter,
		userservice.WithLogger(log),
		userservice.WithMetrics(usermetrics.New()),
		userservice.WithAuditRecorder(recorder),
	)
	authSvc := authservice.New(userSvc, cfg.JWTSigningKey, cfg.JWTTTL, authservice.WithLogger(log))

	alloc := accallocator.New(checker)
	accOpts := []accservice.Option{
		accservice.WithLogger(log),
		accservice.WithMetrics(accmetrics.New()),
		accservice.WithAuditRecorder(recorder),
	}
	ledgerOpts := []ledgerservice.Option{
		ledgerservice.WithLogger(log),
		ledgerservice.WithMetrics(ledgermetrics.New()),
		ledgerservice.WithAuditRecorder(recorder),
	}
	if redisClient != nil {
		accountCache := acccache.NewRedis(redisClient.Client, cfg.AccountCacheTTL)
		accOpts = append(accOpts, accservice.WithCache(accountCache))
		ledgerOpts = append(ledgerOpts, ledgerservice.WithCacheInvalidator(accountCache))
	}
	accSvc := accservice.New(accounts, alloc, accOpts...)
	ledgerSvc := ledgerservice.New(ledger, finder, ledgerOpts...)

	// Login throttling: Redis-backed when available so the limit holds
	// across replicas, per-process counters otherwise.
	var loginLimiter *ratelimit.Limiter
	if cfg.LoginRateLimit > 0 {
		var primary ratelimit.Store
		if redisClient != nil {
			primary = ratelimit.NewRedisStore(redisClient.Client)
		}
		loginLimiter = ratelimit.New(primary, cfg.LoginRateLimit, cfg.LoginRateWindow,
			ratelimit.WithLogger(log),
			ratelimit.WithMetrics(ratelimit.NewMetrics()),
		)
	}

	// Transport.
	health := map[string]httpapi.HealthChecker{}
	if db != nil {
		health["postgres"] = db.PingContext
	}
	if redisClient != nil {
		health["redis"] = redisClient.Health
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Metrics:   platformMetrics,
		Validator: authSvc,
		Users:     userhandler.New(userSvc, log),
		Auth:      authhandler.New(authSvc, log),
		Accounts:  acchandler.New(accSvc, log),
		Ledger:    ledgerhandler.New(ledgerSvc, log),

		LoginLimiter: loginLimiter,

		Health: health,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
