package service

// Package service holds the auth orchestration: the facade consumed by
// handlers and forms, the session exchange service, and the state
// synchronizer that keeps the session cookie aligned with identity
// state.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

// Result is the uniform success payload for sign-in and sign-up.
type Result struct {
	Principal domainauth.Principal
	IDToken   string
}

// SignUpFields carries the optional profile fields collected at
// registration time.
type SignUpFields struct {
	DisplayName string
	Department  string
	StudentID   string
}

// identityState is the facade's view of one signed-in principal. The
// held ID token backs provider calls that need a fresh credential.
type identityState struct {
	principal domainauth.Principal
	idToken   string
}

// Auth is the operation surface for authentication flows. All methods
// return *AuthError with a user-presentable message on failure and
// never leak provider error codes. State is keyed by UID; callers
// identify the acting user per request, never from ambient state.
type Auth struct {
	identity ports.IdentityClient
	profiles ports.ProfileStore
	cache    ports.ProfileCache
	audit    ports.AuditLog
	logger   *slog.Logger
	feed     *eventFeed
	now      func() time.Time

	mu     sync.RWMutex
	states map[string]*identityState
}

// AuthDeps bundles the facade's collaborators. Identity and Profiles
// are required; Cache and Audit are optional.
type AuthDeps struct {
	Identity ports.IdentityClient
	Profiles ports.ProfileStore
	Cache    ports.ProfileCache
	Audit    ports.AuditLog
	Logger   *slog.Logger
}

func NewAuth(deps AuthDeps) *Auth {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{
		identity: deps.Identity,
		profiles: deps.Profiles,
		cache:    deps.Cache,
		audit:    deps.Audit,
		logger:   logger,
		feed:     newEventFeed(),
		now:      time.Now,
		states:   map[string]*identityState{},
	}
}

// Subscribe returns a channel of identity-state transitions and a
// cancel function. Used by the session synchronizer.
func (a *Auth) Subscribe() (<-chan Event, func()) {
	return a.feed.subscribe()
}

// Close tears down the event feed.
func (a *Auth) Close() {
	a.feed.close()
}

// PrincipalFor reports the held identity state for uid, if any.
func (a *Auth) PrincipalFor(uid string) (domainauth.Principal, bool) {
	state, ok := a.stateFor(uid)
	if !ok {
		return domainauth.Principal{}, false
	}
	return state.principal, true
}

// SignIn verifies the email/password pair, records identity state, and
// emits a signed-in event. The last-login stamp on the mirrored
// profile is best effort.
func (a *Auth) SignIn(ctx context.Context, email, password string) (Result, *AuthError) {
	sess, err := a.identity.SignIn(ctx, email, password)
	if err != nil {
		a.logger.WarnContext(ctx, "sign in failed", "email", email, "error", err)
		return Result{}, mapProviderErr(err, signInErrors, msgSignInFailed)
	}

	principal := principalFromIdentity(sess)
	a.setState(principal, sess.IDToken)

	if a.profiles != nil {
		if touchErr := a.profiles.TouchLastLogin(ctx, principal.UID); touchErr != nil {
			a.logger.WarnContext(ctx, "last login touch failed", "uid", principal.UID, "error", touchErr)
		}
	}
	a.recordAudit(ctx, principal.UID, domainauth.AuditSignIn, map[string]any{"email": email})
	a.feed.publish(Event{Kind: EventSignedIn, Principal: principal, IDToken: sess.IDToken})

	return Result{Principal: principal, IDToken: sess.IDToken}, nil
}

// SignUp creates the account, then best-effort: sets the display name,
// sends the verification email, and writes the initial profile
// document. Account creation failure aborts everything after it.
func (a *Auth) SignUp(ctx context.Context, email, password string, fields SignUpFields) (Result, *AuthError) {
	sess, err := a.identity.SignUp(ctx, email, password)
	if err != nil {
		a.logger.WarnContext(ctx, "sign up failed", "email", email, "error", err)
		return Result{}, mapProviderErr(err, signUpErrors, msgSignUpFailed)
	}

	if fields.DisplayName != "" {
		upd := ports.AccountUpdate{DisplayName: fields.DisplayName}
		if updErr := a.identity.UpdateAccount(ctx, sess.IDToken, upd); updErr != nil {
			a.logger.WarnContext(ctx, "display name update failed", "uid", sess.UID, "error", updErr)
		} else {
			sess.DisplayName = fields.DisplayName
		}
	}

	if verifyErr := a.identity.SendEmailVerification(ctx, sess.IDToken); verifyErr != nil {
		a.logger.WarnContext(ctx, "verification email send failed", "uid", sess.UID, "error", verifyErr)
	}

	principal := principalFromIdentity(sess)
	a.setState(principal, sess.IDToken)

	if a.profiles != nil {
		profile := domainauth.Profile{
			UID:         sess.UID,
			Email:       sess.Email,
			DisplayName: fields.DisplayName,
			Role:        domainauth.RoleStudent,
			Department:  fields.Department,
			StudentID:   fields.StudentID,
			CreatedAt:   a.now(),
		}
		if createErr := a.profiles.Create(ctx, profile); createErr != nil {
			a.logger.ErrorContext(ctx, "initial profile write failed", "uid", sess.UID, "error", createErr)
		}
	}

	a.recordAudit(ctx, sess.UID, domainauth.AuditSignUp, map[string]any{"email": email})
	a.feed.publish(Event{Kind: EventSignedIn, Principal: principal, IDToken: sess.IDToken})

	return Result{Principal: principal, IDToken: sess.IDToken}, nil
}

// SignOut clears the identity state held for uid and emits a
// signed-out event. The synchronizer picks the event up and tears the
// session cookie down. Signing out a uid with no held state still
// succeeds; the cookie is the source of truth for the session.
func (a *Auth) SignOut(ctx context.Context, uid string) *AuthError {
	a.mu.Lock()
	delete(a.states, uid)
	a.mu.Unlock()

	a.recordAudit(ctx, uid, domainauth.AuditSignOut, nil)
	a.feed.publish(Event{Kind: EventSignedOut})
	return nil
}

// ResetPassword sends a password-reset email.
func (a *Auth) ResetPassword(ctx context.Context, email string) *AuthError {
	if err := a.identity.SendPasswordReset(ctx, email); err != nil {
		a.logger.WarnContext(ctx, "password reset send failed", "email", email, "error", err)
		return mapProviderErr(err, resetErrors, msgResetFailed)
	}
	return nil
}

// SendVerificationEmail re-sends the verification email for uid. The
// provider call needs the ID token captured at sign-in; a uid with no
// held token cannot be served until they sign in again.
func (a *Auth) SendVerificationEmail(ctx context.Context, uid string) *AuthError {
	if uid == "" {
		return notSignedInErr()
	}
	state, ok := a.stateFor(uid)
	if !ok {
		a.logger.WarnContext(ctx, "verification email send failed", "uid", uid, "error", errNoFreshToken)
		return authErr(msgVerifyFailed, errNoFreshToken)
	}

	if err := a.identity.SendEmailVerification(ctx, state.idToken); err != nil {
		a.logger.WarnContext(ctx, "verification email send failed", "uid", uid, "error", err)
		return authErr(msgVerifyFailed, err)
	}
	return nil
}

// UpdateProfile applies the update for uid: display name and photo go
// to the identity provider, everything else merges into the profile
// document. Provider fields need the ID token captured at sign-in;
// document-only updates work without one. The cache snapshot is
// refreshed last.
func (a *Auth) UpdateProfile(ctx context.Context, uid string, upd domainauth.ProfileUpdate) *AuthError {
	if uid == "" {
		return notSignedInErr()
	}
	if upd.IsZero() {
		return nil
	}

	accountUpd := ports.AccountUpdate{}
	if upd.DisplayName != nil {
		accountUpd.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		accountUpd.PhotoURL = *upd.PhotoURL
	}
	if accountUpd.DisplayName != "" || accountUpd.PhotoURL != "" {
		state, ok := a.stateFor(uid)
		if !ok {
			a.logger.WarnContext(ctx, "account update failed", "uid", uid, "error", errNoFreshToken)
			return authErr(msgUpdateFailed, errNoFreshToken)
		}
		if err := a.identity.UpdateAccount(ctx, state.idToken, accountUpd); err != nil {
			a.logger.WarnContext(ctx, "account update failed", "uid", uid, "error", err)
			return authErr(msgUpdateFailed, err)
		}
	}

	if a.profiles != nil {
		if err := a.profiles.Merge(ctx, uid, upd); err != nil {
			a.logger.WarnContext(ctx, "profile merge failed", "uid", uid, "error", err)
			return authErr(msgUpdateFailed, err)
		}
	}

	a.applyStateUpdate(uid, upd)
	a.refreshCachedProfile(ctx, uid)
	return nil
}

// Profile returns the mirrored profile for uid, serving from the cache
// when the snapshot is fresh.
func (a *Auth) Profile(ctx context.Context, uid string) (domainauth.Profile, error) {
	if a.profiles == nil {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}
	if a.cache != nil {
		if profile, ok, err := a.cache.Get(ctx, uid); err == nil && ok {
			return profile, nil
		} else if err != nil {
			a.logger.WarnContext(ctx, "profile cache read failed", "uid", uid, "error", err)
		}
	}

	profile, err := a.profiles.Get(ctx, uid)
	if err != nil {
		return domainauth.Profile{}, err
	}
	if a.cache != nil {
		if cacheErr := a.cache.Put(ctx, profile); cacheErr != nil {
			a.logger.WarnContext(ctx, "profile cache write failed", "uid", uid, "error", cacheErr)
		}
	}
	return profile, nil
}

func (a *Auth) setState(principal domainauth.Principal, idToken string) {
	a.mu.Lock()
	a.states[principal.UID] = &identityState{principal: principal, idToken: idToken}
	a.mu.Unlock()
}

func (a *Auth) stateFor(uid string) (*identityState, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	state, ok := a.states[uid]
	return state, ok
}

func (a *Auth) applyStateUpdate(uid string, upd domainauth.ProfileUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	state, ok := a.states[uid]
	if !ok {
		return
	}
	if upd.DisplayName != nil {
		state.principal.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		state.principal.PhotoURL = *upd.PhotoURL
	}
}

func (a *Auth) refreshCachedProfile(ctx context.Context, uid string) {
	if a.cache == nil || a.profiles == nil {
		return
	}
	profile, err := a.profiles.Get(ctx, uid)
	if err != nil {
		if invErr := a.cache.Invalidate(ctx, uid); invErr != nil {
			a.logger.WarnContext(ctx, "profile cache invalidate failed", "uid", uid, "error", invErr)
		}
		return
	}
	if err := a.cache.Put(ctx, profile); err != nil {
		a.logger.WarnContext(ctx, "profile cache refresh failed", "uid", uid, "error", err)
	}
}

func (a *Auth) recordAudit(ctx context.Context, uid string, action domainauth.AuditAction, detail map[string]any) {
	if a.audit == nil {
		return
	}
	event := domainauth.AuditEvent{UID: uid, Action: action, OccurredAt: a.now(), Detail: detail}
	if err := a.audit.Record(ctx, event); err != nil {
		a.logger.WarnContext(ctx, "audit record failed", "action", action, "error", err)
	}
}

func principalFromIdentity(sess ports.IdentitySession) domainauth.Principal {
	return domainauth.Principal{
		UID:         sess.UID,
		Email:       sess.Email,
		DisplayName: sess.DisplayName,
		PhotoURL:    sess.PhotoURL,
	}
}
