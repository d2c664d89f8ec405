package service

import (
	"sync"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
)

// EventKind classifies identity-state transitions on the facade feed.
type EventKind string

const (
	EventSignedIn     EventKind = "signed_in"
	EventSignedOut    EventKind = "signed_out"
	EventTokenRefresh EventKind = "token_refresh"
)

// Event is one identity-state transition. SignedIn and TokenRefresh
// carry the fresh ID token for the session synchronizer.
type Event struct {
	Kind      EventKind
	Principal domainauth.Principal
	IDToken   string
}

// eventFeed fans identity events out to subscribers. Slow subscribers
// drop events rather than block the auth flow; each event carries full
// state so a dropped one is superseded by the next.
type eventFeed struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newEventFeed() *eventFeed {
	return &eventFeed{subs: map[int]chan Event{}}
}

// subscribe returns a buffered event channel and a cancel function.
// Cancel closes the channel; ranging subscribers terminate cleanly.
func (f *eventFeed) subscribe() (<-chan Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan Event, 16)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (f *eventFeed) publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (f *eventFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
