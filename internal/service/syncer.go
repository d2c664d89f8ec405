package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	sessionEndpointPath = "/api/auth/session"
	syncTimeout         = 10 * time.Second
)

// Syncer keeps the session cookie aligned with identity state. It
// watches the facade's event feed: a present principal pushes a fresh
// ID token to the session endpoint, an absent one tears the session
// down. Sync calls are fire-and-forget with logged errors, and at most
// one is in flight at a time; queued transitions are coalesced so only
// the newest state is applied.
type Syncer struct {
	client *resty.Client
	logger *slog.Logger
	cancel func()
	done   chan struct{}
}

// NewSyncer subscribes to the facade feed and starts the sync loop.
// baseURL is the portal's own origin.
func NewSyncer(auth *Auth, baseURL string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	events, cancel := auth.Subscribe()

	s := &Syncer{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(syncTimeout),
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(events)
	return s
}

// Close unsubscribes and waits for the sync loop to drain.
func (s *Syncer) Close() {
	s.cancel()
	<-s.done
}

func (s *Syncer) run(events <-chan Event) {
	defer close(s.done)

	for ev := range events {
		// Coalesce anything queued behind this event; a newer
		// transition supersedes an unapplied older one.
		closed := false
	drain:
		for {
			select {
			case next, ok := <-events:
				if !ok {
					closed = true
					break drain
				}
				ev = next
			default:
				break drain
			}
		}

		s.apply(ev)
		if closed {
			return
		}
	}
}

func (s *Syncer) apply(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	switch ev.Kind {
	case EventSignedIn, EventTokenRefresh:
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(map[string]string{"idToken": ev.IDToken}).
			Post(sessionEndpointPath)
		if err != nil {
			s.logger.Warn("session sync failed", "kind", ev.Kind, "error", err)
			return
		}
		if resp.IsError() {
			s.logger.Warn("session sync rejected", "kind", ev.Kind, "status", resp.StatusCode())
		}
	case EventSignedOut:
		if _, err := s.client.R().SetContext(ctx).Delete(sessionEndpointPath); err != nil {
			s.logger.Warn("session teardown failed", "error", err)
		}
	}
}
