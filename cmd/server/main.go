package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	jwttoken "markpart/internal/jwt_token"
	"markpart/internal/participant/auditlog"
	"markpart/internal/participant/cache"
	"markpart/internal/participant/handler"
	"markpart/internal/participant/metrics"
	"markpart/internal/participant/service"
	"markpart/internal/platform/config"
	"markpart/internal/platform/httpserver"
	"markpart/internal/platform/logger"
	"markpart/internal/platform/migrate"
	platformredis "markpart/internal/platform/redis"
	httptransport "markpart/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Reconstruction logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.PingContext(startupCtx); err != nil {
		log.Error("database unreachable", "error", err)
		os.Exit(1)
	}
	if err := migrate.Up(db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(startupCtx, cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	var auditCache *cache.AuditLogCache
	checks := map[string]httptransport.HealthChecker{dbCheckName: dbChecker{db}}
	if redisClient != nil {
		defer redisClient.Close()
		auditCache = cache.New(redisClient.Client, cfg.Redis.CacheTTL)
		checks["redis"] = redisClient
	}

	repos, err := buildRepositories(startupCtx, db)
	if err != nil {
		log.Error("audit sources unavailable", "error", err)
		os.Exit(1)
	}

	svc := service.New(repos, auditCache, metrics.New(), log)
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "markpart", "markpart-api")

	router := httptransport.NewRouter(httptransport.Deps{
		AuditLogs: handler.New(svc, log),
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Logger:    log,
		Checks:    checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting markpart", "addr", cfg.Addr, "cache", auditCache != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

const dbCheckName = "database"

type dbChecker struct{ db *sql.DB }

func (c dbChecker) Health(ctx context.Context) error { return c.db.PingContext(ctx) }

// buildRepositories constructs every audit source. Each constructor verifies
// that its table pair exists, so a schema drift fails the boot instead of
// the first request.
func buildRepositories(ctx context.Context, db *sql.DB) (service.Repositories, error) {
	actors, err := auditlog.NewActorRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	contacts, err := auditlog.NewContactRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	organizations, err := auditlog.NewOrganizationRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	gridAreas, err := auditlog.NewGridAreaRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	delegations, err := auditlog.NewDelegationRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	users, err := auditlog.NewUserRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	permissions, err := auditlog.NewPermissionRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	userRoles, err := auditlog.NewUserRoleRepository(ctx, db)
	if err != nil {
		return service.Repositories{}, err
	}
	return service.Repositories{
		Actors:        actors,
		Contacts:      contacts,
		Organizations: organizations,
		GridAreas:     gridAreas,
		Delegations:   delegations,
		Users:         users,
		Permissions:   permissions,
		UserRoles:     userRoles,
	}, nil
}
