package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/campushub/campushub/config"
	"github.com/campushub/campushub/internal/adapters/firebaseadmin"
	"github.com/campushub/campushub/internal/adapters/mockauth"
	redisadapter "github.com/campushub/campushub/internal/adapters/redis"
	"github.com/campushub/campushub/internal/adapters/securetoken"
	"github.com/campushub/campushub/internal/ports"
	"github.com/campushub/campushub/internal/sdk"
)

// VerifierDeps contains everything BuildVerifier may need. SDK is
// required for firebase mode; RedisClient for securetoken mode.
type VerifierDeps struct {
	Config      config.AppConfig
	SDK         *sdk.Bootstrap
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildVerifier creates the credential verifier selected by
// AUTH_VERIFIER. The mock verifier is refused outside development mode.
//
//nolint:ireturn // the verifier implementation is chosen at runtime.
func BuildVerifier(ctx context.Context, deps VerifierDeps) (ports.CredentialVerifier, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch deps.Config.Auth.Verifier {
	case config.VerifierModeFirebase:
		verifier, err := buildFirebaseVerifier(ctx, deps, logger)
		if err != nil {
			return nil, err
		}
		return verifier, nil

	case config.VerifierModeSecureToken:
		verifier, err := buildSecureTokenVerifier(ctx, deps, logger)
		if err != nil {
			return nil, err
		}
		return verifier, nil

	case config.VerifierModeMock:
		if !deps.Config.IsDev {
			return nil, errors.New("mock verifier is only available in development mode")
		}
		logger.Warn("using mock credential verifier; authentication is bypassed")
		return mockauth.NewVerifier(logger), nil

	default:
		return nil, fmt.Errorf("unknown verifier mode %q", deps.Config.Auth.Verifier)
	}
}

func buildFirebaseVerifier(ctx context.Context, deps VerifierDeps, logger *slog.Logger) (*firebaseadmin.Verifier, error) {
	if deps.SDK == nil {
		return nil, errors.New("firebase verifier requires the SDK bootstrap")
	}
	handles, err := deps.SDK.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire firebase handles: %w", err)
	}
	return firebaseadmin.NewVerifier(handles.Auth, logger)
}

func buildSecureTokenVerifier(ctx context.Context, deps VerifierDeps, logger *slog.Logger) (*securetoken.Verifier, error) {
	if deps.RedisClient == nil {
		return nil, errors.New("securetoken verifier requires a redis client for the session store")
	}
	sessions := redisadapter.NewSessionStore(deps.RedisClient)
	verifier, err := securetoken.NewVerifier(ctx, deps.Config.Firebase.ProjectID, sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("build securetoken verifier: %w", err)
	}
	return verifier, nil
}
