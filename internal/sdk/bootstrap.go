package sdk

// Package sdk owns the provider SDK handles (admin app, auth client,
// document store client). Handles are created lazily on first use and
// shared; concurrent first users share one in-flight initialization.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/option"

	"github.com/campushub/campushub/config"
)

const (
	maxBackoff      = 10 * time.Second
	appSettleDelay  = 300 * time.Millisecond
	authSettleDelay = 100 * time.Millisecond
)

// Handles bundles the initialized provider clients.
type Handles struct {
	App       *firebase.App
	Auth      *fbauth.Client
	Firestore *firestore.Client
}

// InitFunc creates the handle set. The default talks to the provider;
// tests inject their own.
type InitFunc func(ctx context.Context) (*Handles, error)

// Bootstrap lazily initializes and caches the provider handles.
type Bootstrap struct {
	cfg     config.FirebaseConfig
	logger  *slog.Logger
	initFn  InitFunc
	sleep   func(ctx context.Context, d time.Duration) error
	group   singleflight.Group
	mu      sync.Mutex
	handles *Handles
}

// New creates a Bootstrap for the given provider config.
func New(cfg config.FirebaseConfig, logger *slog.Logger) *Bootstrap {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bootstrap{
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
	}
	b.initFn = b.defaultInit
	return b
}

// WithInitFunc overrides the initializer. Test seam.
func (b *Bootstrap) WithInitFunc(fn InitFunc) *Bootstrap {
	b.initFn = fn
	return b
}

// Acquire returns the shared handles, initializing them on first call.
// Concurrent callers during initialization share the single attempt.
// Incomplete configuration fails immediately and is never retried;
// transient failures are retried with exponential backoff, and a
// failed round leaves the bootstrap ready for a later Acquire to try
// again.
func (b *Bootstrap) Acquire(ctx context.Context) (*Handles, error) {
	b.mu.Lock()
	cached := b.handles
	b.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := b.group.Do("init", func() (any, error) {
		handles, initErr := b.initWithRetry(ctx)
		if initErr != nil {
			return nil, initErr
		}
		b.mu.Lock()
		b.handles = handles
		b.mu.Unlock()
		return handles, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handles), nil
}

// Close releases the held clients. Safe to call before Acquire.
func (b *Bootstrap) Close() error {
	b.mu.Lock()
	handles := b.handles
	b.handles = nil
	b.mu.Unlock()

	if handles == nil || handles.Firestore == nil {
		return nil
	}
	if err := handles.Firestore.Close(); err != nil {
		return fmt.Errorf("close firestore client: %w", err)
	}
	return nil
}

func (b *Bootstrap) initWithRetry(ctx context.Context) (*Handles, error) {
	if err := b.cfg.Validate(); err != nil {
		// Bad configuration never heals on its own; retrying just
		// delays the real failure.
		return nil, fmt.Errorf("sdk bootstrap: %w", err)
	}

	maxRetries := b.cfg.MaxRetries
	base := b.cfg.RetryBackoff
	if base <= 0 {
		base = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := min(base<<(attempt-1), maxBackoff)
			b.logger.WarnContext(ctx, "sdk initialization failed, retrying",
				"attempt", attempt, "backoff", backoff, "error", lastErr)
			if err := b.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		handles, err := b.initFn(ctx)
		if err == nil {
			b.logger.InfoContext(ctx, "sdk initialized", "attempts", attempt+1)
			return handles, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("sdk bootstrap: initialization failed after %d attempts: %w",
		maxRetries+1, lastErr)
}

// defaultInit builds the real provider clients. Brief settle delays
// between steps keep slow credential propagation from tripping the
// dependent client constructors.
func (b *Bootstrap) defaultInit(ctx context.Context) (*Handles, error) {
	opts, err := b.clientOptions()
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     b.cfg.ProjectID,
		StorageBucket: b.cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}
	if err := b.sleep(ctx, appSettleDelay); err != nil {
		return nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("create auth client: %w", err)
	}
	if err := b.sleep(ctx, authSettleDelay); err != nil {
		return nil, err
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Handles{App: app, Auth: authClient, Firestore: fsClient}, nil
}

func (b *Bootstrap) clientOptions() ([]option.ClientOption, error) {
	if b.cfg.CredentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(b.cfg.CredentialsFile)}, nil
	}
	if b.cfg.HasServiceAccount() {
		creds, err := json.Marshal(map[string]string{
			"type":         "service_account",
			"project_id":   b.cfg.ProjectID,
			"client_email": b.cfg.ClientEmail,
			"private_key":  b.cfg.NormalizedPrivateKey(),
		})
		if err != nil {
			return nil, fmt.Errorf("build service account credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(creds)}, nil
	}
	// Application default credentials.
	return nil, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var errNotInitialized = errors.New("sdk: not initialized")

// MustAuth returns the cached auth client or an error if Acquire has
// not succeeded yet.
func (b *Bootstrap) MustAuth() (*fbauth.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handles == nil {
		return nil, errNotInitialized
	}
	return b.handles.Auth, nil
}
