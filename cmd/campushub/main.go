package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/campushub/campushub/config"
	"github.com/campushub/campushub/internal/adapters/firestoredb"
	"github.com/campushub/campushub/internal/adapters/identitytoolkit"
	"github.com/campushub/campushub/internal/adapters/postgres"
	redisadapter "github.com/campushub/campushub/internal/adapters/redis"
	"github.com/campushub/campushub/internal/bootstrap"
	"github.com/campushub/campushub/internal/ports"
	"github.com/campushub/campushub/internal/sdk"
	"github.com/campushub/campushub/internal/service"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	// The mock verifier needs no provider project at all.
	if cfg.Auth.Verifier != config.VerifierModeMock {
		if err = cfg.Firebase.Validate(); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "starting campushub",
		"verifier", cfg.Auth.Verifier,
		"edge_verify", cfg.Auth.EdgeVerify,
		"dev", cfg.IsDev)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	db, audit, err := initAudit(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database failed", "error", cerr)
			}
		}()
	}

	sdkBoot := sdk.New(cfg.Firebase, logger)
	defer func() {
		if cerr := sdkBoot.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close firebase clients failed", "error", cerr)
		}
	}()

	verifier, err := bootstrap.BuildVerifier(ctx, bootstrap.VerifierDeps{
		Config:      cfg,
		SDK:         sdkBoot,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build verifier: %w", err)
	}

	sessions := service.NewSessions(verifier, audit, cfg.Auth.Session.TTL, logger)

	var authSvc *service.Auth
	if cfg.Firebase.APIKey != "" {
		identity, idErr := identitytoolkit.NewClient(identitytoolkit.Config{APIKey: cfg.Firebase.APIKey})
		if idErr != nil {
			return fmt.Errorf("build identity client: %w", idErr)
		}

		authSvc = service.NewAuth(service.AuthDeps{
			Identity: identity,
			Profiles: buildProfileStore(ctx, cfg, sdkBoot, logger),
			Cache:    redisadapter.NewProfileCache(redisClient, cfg.Cache.ProfileTTL),
			Audit:    audit,
			Logger:   logger,
		})
		defer authSvc.Close()

		syncer := service.NewSyncer(authSvc, cfg.HTTP.BaseURL, logger)
		defer syncer.Close()
	} else {
		// Only possible in mock verifier mode; the session endpoint and
		// gate still work, the password flows are simply not routed.
		logger.WarnContext(ctx, "no provider API key, auth API disabled")
	}

	server := bootstrap.StartHTTPServer(bootstrap.HTTPServerConfig{
		Config:   cfg,
		Auth:     authSvc,
		Sessions: sessions,
		Logger:   logger,
	})

	<-ctx.Done()
	return bootstrap.ShutdownHTTPServer(context.Background(), server, logger)
}

// initAudit connects Postgres and builds the audit repo when the audit
// trail is enabled. The auth flow works without it.
func initAudit(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*sql.DB, ports.AuditLog, error) {
	if !cfg.Postgres.Enabled {
		logger.InfoContext(ctx, "audit log disabled via config")
		return nil, nil, nil
	}

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cfg.Postgres,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
			closeErr := db.Close()
			if closeErr != nil {
				err = errors.Join(err, fmt.Errorf("close database: %w", closeErr))
			}
			return nil, nil, err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	return db, postgres.NewAuditRepo(db), nil
}

// buildProfileStore acquires the shared Firestore handle. Profile
// documents are optional; on failure the portal runs without them.
func buildProfileStore(ctx context.Context, cfg config.AppConfig, sdkBoot *sdk.Bootstrap, logger *slog.Logger) ports.ProfileStore {
	if cfg.Auth.Verifier == config.VerifierModeMock {
		logger.InfoContext(ctx, "profile store disabled in mock verifier mode")
		return nil
	}

	handles, err := sdkBoot.Acquire(ctx)
	if err != nil {
		logger.WarnContext(ctx, "firestore unavailable, profiles disabled", "error", err)
		return nil
	}

	store, err := firestoredb.NewProfileStore(handles.Firestore)
	if err != nil {
		logger.WarnContext(ctx, "profile store build failed, profiles disabled", "error", err)
		return nil
	}
	return store
}
