// Command server runs the user directory service: account management,
// login and the operational endpoints.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userdir/internal/auth/limiter"
	"userdir/internal/auth/password"
	authservice "userdir/internal/auth/service"
	"userdir/internal/auth/token"
	identityservice "userdir/internal/identity/service"
	"userdir/internal/identity/store"
	idtypestore "userdir/internal/identity/store/idtype"
	rolestore "userdir/internal/identity/store/role"
	userstore "userdir/internal/identity/store/user"
	"userdir/internal/platform/config"
	"userdir/internal/platform/httpserver"
	"userdir/internal/platform/logger"
	"userdir/internal/platform/metrics"
	"userdir/internal/platform/postgres"
	"userdir/internal/platform/redis"
	httptransport "userdir/internal/transport/http"
	"userdir/pkg/audit"
	auditkafka "userdir/pkg/audit/kafka"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := token.New(cfg.JWT.SigningKey)
	if err != nil {
		log.Error("invalid signing key", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	hasher := password.NewBcrypt(cfg.Accounts.BcryptCost)

	// Stores: Postgres when a database is configured, otherwise in-memory
	// with seeded reference data.
	var (
		users   identityservice.UserStore
		idTypes identityservice.IdTypeStore
		roles   identityservice.RoleStore
	)
	var healthChecks []httptransport.HealthCheck
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		healthChecks = append(healthChecks, db.PingContext)
		users = userstore.NewPostgres(db)
		idTypes = idtypestore.NewPostgres(db)
		roles = rolestore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		memUsers := userstore.New()
		memIdTypes := idtypestore.New()
		memRoles := rolestore.New()
		store.SeedReferenceData(memIdTypes, memRoles)
		users, idTypes, roles = memUsers, memIdTypes, memRoles
		log.Info("using in-memory stores")
	}

	// Limiter: Redis-backed when configured, so lockouts hold across
	// instances; in-process otherwise.
	lockoutCfg := limiter.Config{
		MaxFailures:  cfg.Lockout.MaxFailures,
		Window:       cfg.Lockout.Window,
		LockDuration: cfg.Lockout.LockDuration,
	}
	var attempts limiter.Limiter = limiter.NewMemory(lockoutCfg)
	if cfg.RedisURL != "" {
		rdb, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		healthChecks = append(healthChecks, rdb.Health)
		attempts = limiter.NewRedis(rdb, lockoutCfg)
		log.Info("using redis-backed attempt limiter")
	}

	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := auditkafka.NewPublisher(ctx, cfg.KafkaBrokers, auditkafka.WithTopic(cfg.AuditTopic))
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kp.Close()
		publisher = kp
		log.Info("audit events publishing to kafka", "brokers", cfg.KafkaBrokers)
	}

	auth, err := authservice.New(attempts, users, roles, hasher, codec,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(publisher),
		authservice.WithMetrics(m),
		authservice.WithTokenTTL(cfg.JWT.TokenTTL),
	)
	if err != nil {
		log.Error("building auth service failed", "error", err)
		os.Exit(1)
	}

	directory, err := identityservice.New(users, idTypes, roles, hasher,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(publisher),
		identityservice.WithMetrics(m),
		identityservice.WithSalaryBounds(identityservice.SalaryBounds{
			Min: cfg.Accounts.MinBaseSalary,
			Max: cfg.Accounts.MaxBaseSalary,
		}),
	)
	if err != nil {
		log.Error("building directory service failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(
		httptransport.NewUserHandler(directory, log),
		httptransport.NewAuthHandler(auth, directory, log),
		healthChecks...,
	)

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
