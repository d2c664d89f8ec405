package identitytoolkit

// Package identitytoolkit is a thin client for the Identity Toolkit REST
// API, the password-credential surface of Firebase Authentication. The
// admin SDK deliberately has no password sign-in; this is the supported
// server-side path.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Client implements ports.IdentityClient against the Identity Toolkit API.
type Client struct {
	resty  *resty.Client
	apiKey string
}

// Config holds configuration for the Identity Toolkit client.
type Config struct {
	APIKey string
	// BaseURL overrides the production endpoint; used by tests and the
	// Auth emulator.
	BaseURL string
	Timeout time.Duration // defaults to 15s
}

// NewClient creates a new Identity Toolkit client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("identitytoolkit: API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{resty: rc, apiKey: cfg.APIKey}, nil
}

// signInResponse covers both signInWithPassword and signUp payloads.
type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (r signInResponse) toSession() ports.IdentitySession {
	sess := ports.IdentitySession{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		PhotoURL:     r.PhotoURL,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
	}
	if secs, err := strconv.Atoi(r.ExpiresIn); err == nil {
		sess.ExpiresIn = time.Duration(secs) * time.Second
	}
	return sess
}

func (c *Client) SignIn(ctx context.Context, email, password string) (ports.IdentitySession, error) {
	var out signInResponse
	err := c.post(ctx, "/accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return ports.IdentitySession{}, fmt.Errorf("sign in: %w", err)
	}
	return out.toSession(), nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (ports.IdentitySession, error) {
	var out signInResponse
	err := c.post(ctx, "/accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return ports.IdentitySession{}, fmt.Errorf("sign up: %w", err)
	}
	return out.toSession(), nil
}

func (c *Client) UpdateAccount(ctx context.Context, idToken string, upd ports.AccountUpdate) error {
	if upd.DisplayName == "" && upd.PhotoURL == "" {
		return nil
	}
	body := map[string]any{
		"idToken":           idToken,
		"returnSecureToken": false,
	}
	if upd.DisplayName != "" {
		body["displayName"] = upd.DisplayName
	}
	if upd.PhotoURL != "" {
		body["photoUrl"] = upd.PhotoURL
	}
	if err := c.post(ctx, "/accounts:update", body, nil); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// lookupResponse wraps the accounts:lookup payload.
type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		DisplayName   string `json:"displayName"`
		PhotoURL      string `json:"photoUrl"`
	} `json:"users"`
}

func (c *Client) Lookup(ctx context.Context, idToken string) (domainauth.Principal, error) {
	var out lookupResponse
	err := c.post(ctx, "/accounts:lookup", map[string]any{"idToken": idToken}, &out)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("lookup: %w", err)
	}
	if len(out.Users) == 0 {
		return domainauth.Principal{}, errors.New("lookup: no user for token")
	}
	u := out.Users[0]
	return domainauth.Principal{
		UID:           u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
	}, nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	err := c.post(ctx, "/accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
	if err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	return nil
}

func (c *Client) SendEmailVerification(ctx context.Context, idToken string) error {
	err := c.post(ctx, "/accounts:sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     idToken,
	}, nil)
	if err != nil {
		return fmt.Errorf("send email verification: %w", err)
	}
	return nil
}

// apiError is the Identity Toolkit error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var apiErr apiError
	req := c.resty.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetError(&apiErr)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("identitytoolkit %s: %w", path, err)
	}
	if resp.IsError() {
		return &ports.ProviderError{
			Code:       normalizeCode(apiErr.Error.Message),
			StatusCode: resp.StatusCode(),
		}
	}
	return nil
}

// normalizeCode strips the free-text suffix some provider errors carry,
// e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account ..." keeps
// only the leading code token.
func normalizeCode(message string) string {
	code, _, _ := strings.Cut(message, ":")
	code = strings.TrimSpace(code)
	if code == "" {
		return "UNKNOWN"
	}
	return code
}
