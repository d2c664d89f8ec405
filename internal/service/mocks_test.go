package service

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

// Hand-written doubles for the facade's collaborators.

type fakeIdentity struct {
	signInFunc func(ctx context.Context, email, password string) (ports.IdentitySession, error)
	signUpFunc func(ctx context.Context, email, password string) (ports.IdentitySession, error)

	updateErr error
	verifyErr error
	resetErr  error

	mu          sync.Mutex
	updates     []ports.AccountUpdate
	verifySends int
	resetEmails []string
	callOrder   []string
}

var _ ports.IdentityClient = (*fakeIdentity)(nil)

func (f *fakeIdentity) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callOrder = append(f.callOrder, call)
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (ports.IdentitySession, error) {
	f.record("SignIn")
	if f.signInFunc != nil {
		return f.signInFunc(ctx, email, password)
	}
	return ports.IdentitySession{UID: "uid-1", Email: email, IDToken: "id-token"}, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (ports.IdentitySession, error) {
	f.record("SignUp")
	if f.signUpFunc != nil {
		return f.signUpFunc(ctx, email, password)
	}
	return ports.IdentitySession{UID: "uid-new", Email: email, IDToken: "id-token"}, nil
}

func (f *fakeIdentity) UpdateAccount(_ context.Context, _ string, upd ports.AccountUpdate) error {
	f.record("UpdateAccount")
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, upd)
	return nil
}

func (f *fakeIdentity) Lookup(_ context.Context, _ string) (domainauth.Principal, error) {
	f.record("Lookup")
	return domainauth.Principal{UID: "uid-1"}, nil
}

func (f *fakeIdentity) SendPasswordReset(_ context.Context, email string) error {
	f.record("SendPasswordReset")
	if f.resetErr != nil {
		return f.resetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetEmails = append(f.resetEmails, email)
	return nil
}

func (f *fakeIdentity) SendEmailVerification(_ context.Context, _ string) error {
	f.record("SendEmailVerification")
	if f.verifyErr != nil {
		return f.verifyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifySends++
	return nil
}

type fakeProfiles struct {
	mu        sync.Mutex
	profiles  map[string]domainauth.Profile
	touched   []string
	createErr error
	mergeErr  error
	getErr    error
}

var _ ports.ProfileStore = (*fakeProfiles)(nil)

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]domainauth.Profile{}}
}

func (f *fakeProfiles) Create(_ context.Context, profile domainauth.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.UID] = profile
	return nil
}

func (f *fakeProfiles) Get(_ context.Context, uid string) (domainauth.Profile, error) {
	if f.getErr != nil {
		return domainauth.Profile{}, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[uid]
	if !ok {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfiles) Merge(_ context.Context, uid string, upd domainauth.ProfileUpdate) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := f.profiles[uid]
	profile.UID = uid
	if upd.DisplayName != nil {
		profile.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		profile.PhotoURL = *upd.PhotoURL
	}
	if upd.Department != nil {
		profile.Department = *upd.Department
	}
	if upd.StudentID != nil {
		profile.StudentID = *upd.StudentID
	}
	if upd.Bio != nil {
		profile.Bio = *upd.Bio
	}
	f.profiles[uid] = profile
	return nil
}

func (f *fakeProfiles) TouchLastLogin(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, uid)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domainauth.Profile
	puts    int
}

var _ ports.ProfileCache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]domainauth.Profile{}}
}

func (f *fakeCache) Get(_ context.Context, uid string) (domainauth.Profile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.entries[uid]
	return profile, ok, nil
}

func (f *fakeCache) Put(_ context.Context, profile domainauth.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[profile.UID] = profile
	f.puts++
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, uid)
	return nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []domainauth.AuditEvent
	err    error
}

var _ ports.AuditLog = (*fakeAudit)(nil)

func (f *fakeAudit) Record(_ context.Context, event domainauth.AuditEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAudit) actions() []domainauth.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domainauth.AuditAction, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Action)
	}
	return out
}

type fakeVerifier struct {
	mintFunc  func(ctx context.Context, idToken string, ttl time.Duration) (string, domainauth.Principal, error)
	checkFunc func(ctx context.Context, artifact string) (domainauth.Principal, error)
	revokeErr error

	mu      sync.Mutex
	revoked []string
}

var _ ports.CredentialVerifier = (*fakeVerifier)(nil)

func (f *fakeVerifier) MintSession(ctx context.Context, idToken string, ttl time.Duration) (string, domainauth.Principal, error) {
	if f.mintFunc != nil {
		return f.mintFunc(ctx, idToken, ttl)
	}
	if idToken == "" {
		return "", domainauth.Principal{}, ports.ErrInvalidSession
	}
	return "artifact-for-" + idToken, domainauth.Principal{UID: "uid-1"}, nil
}

func (f *fakeVerifier) CheckSession(ctx context.Context, artifact string) (domainauth.Principal, error) {
	if f.checkFunc != nil {
		return f.checkFunc(ctx, artifact)
	}
	if artifact == "" {
		return domainauth.Principal{}, ports.ErrInvalidSession
	}
	return domainauth.Principal{UID: "uid-1"}, nil
}

func (f *fakeVerifier) RevokeSession(_ context.Context, artifact string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, artifact)
	return nil
}
