package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sopatech/rolegate/internal/assignments"
	"github.com/sopatech/rolegate/internal/auth"
	"github.com/sopatech/rolegate/internal/authz"
	"github.com/sopatech/rolegate/internal/config"
	apphttp "github.com/sopatech/rolegate/internal/http"
	"github.com/sopatech/rolegate/internal/infra"
	"github.com/sopatech/rolegate/internal/metrics"
	"github.com/sopatech/rolegate/internal/roles"
)

func main() {
	// --- Logger and config ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}
	config.LogConfigVars(logger, cfg)
	ctx := context.Background()

	// --- Role catalog: built-in tables unless a YAML file is configured ---
	catalog := roles.Default()
	if cfg.RoleCatalogPath != "" {
		catalog, err = roles.LoadCatalogFile(cfg.RoleCatalogPath)
		if err != nil {
			logger.Error("load role catalog", "path", cfg.RoleCatalogPath, "err", err)
			os.Exit(1)
		}
	}
	logger.Info("role catalog loaded",
		"platform_roles", len(catalog.PlatformRoles()),
		"event_roles", len(catalog.EventRoles()),
	)

	// --- DynamoDB ---
	db, err := infra.NewDynamo(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
	if err != nil {
		logger.Error("dynamo init", "err", err)
		os.Exit(1)
	}
	if cfg.DynamoCreateTable {
		if err := db.EnsureTable(ctx, cfg.DynamoTable); err != nil {
			logger.Error("ensure table", "table", cfg.DynamoTable, "err", err)
			os.Exit(1)
		}
	}

	// --- Assignments: store, optional Redis cache, service ---
	opts := []assignments.Option{assignments.WithLogger(logger)}
	rdb, err := infra.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis init", "err", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, assignments.WithCache(assignments.NewCache(rdb, cfg.AssignmentTTL)))
	} else {
		logger.Warn("REDIS_ADDR not set, assignment cache disabled")
	}
	assignmentsService := assignments.NewService(assignments.NewStore(db, cfg.DynamoTable), catalog, opts...)

	// --- Authorization: facade, decision metrics, JWT key ---
	authorizer := authz.NewAuthorizer(catalog)
	recorder, err := metrics.NewDecisionRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("register decision counters", "err", err)
		os.Exit(1)
	}
	jwtPublicKey, err := auth.LoadRSAPublicKey(cfg.JWTPublicKeyPath)
	if err != nil {
		logger.Error("load JWT public key", "err", err)
		os.Exit(1)
	}
	assignmentsHandler := assignments.NewHandler(assignmentsService, authorizer, recorder, logger)
	enforcer := apphttp.NewEnforcer(authorizer, assignmentsService, recorder, logger)

	// --- Router and HTTP server ---
	r := apphttp.NewRouter(logger, assignmentsHandler, enforcer, metrics.Handler(), jwtPublicKey)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	logger.Info("listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server", "err", err)
		os.Exit(1)
	}
}
